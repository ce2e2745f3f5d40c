package config

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequired supplies the fields with no usable default so Load can pass.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("EASEL_ADMIN_PASSWORD", "hunter2")
}

func TestDefaultConfig(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	require.NoError(t, err)
	want := DefaultAppConfig
	want.AdminPassword = "hunter2"
	assert.EqualValues(t, want, *cfg)
}

func TestAdminPasswordRequired(t *testing.T) {
	_, err := Load()
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("EASEL_ADDR", "127.0.0.1:9000")
	t.Setenv("EASEL_MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("EASEL_RECONCILE_EVERY", "5m")
	t.Setenv("EASEL_RECONCILE_PRUNE", "true")
	t.Setenv("EASEL_COOKIE_SECURE", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, int64(1<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 5*time.Minute, cfg.ReconcileEvery)
	assert.True(t, cfg.ReconcilePrune)
	assert.True(t, cfg.CookieSecure)
}

func TestS3BackendRequiresSettings(t *testing.T) {
	setRequired(t)
	t.Setenv("EASEL_STORAGE_BACKEND", "s3")
	_, err := Load()
	require.Error(t, err, "bucket/region/public url missing")

	t.Setenv("EASEL_S3_BUCKET", "art")
	t.Setenv("EASEL_S3_REGION", "us-east-1")
	t.Setenv("EASEL_PUBLIC_BASE_URL", "https://cdn.example.com")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendS3, cfg.StorageBackend)
	assert.Equal(t, "art", cfg.S3Bucket)
}

func TestUnknownBackendRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("EASEL_STORAGE_BACKEND", "carrier-pigeon")
	_, err := Load()
	assert.Error(t, err)
}

func TestSigningSecretFallback(t *testing.T) {
	cfg := Config{AdminPassword: "pw"}
	assert.Equal(t, "pw", cfg.SigningSecret())
	cfg.SessionSecret = "dedicated"
	assert.Equal(t, "dedicated", cfg.SigningSecret())
}

func TestValidPaths(t *testing.T) {
	setRequired(t)
	valid := []string{
		"data",
		"/var/lib/easel",
		"./data",
		"relative/path/to/data",
		"nested/dir/structure",
	}
	for _, p := range valid {
		t.Setenv("EASEL_DATA_DIR", p)
		cfg, err := Load()
		if err != nil {
			t.Errorf("expected valid path %q, got error: %v", p, err)
			continue
		}
		if cfg.DataDir != p {
			t.Errorf("expected DataDir %q, got %q", p, cfg.DataDir)
		}
	}
}

func TestInvalidPaths(t *testing.T) {
	setRequired(t)
	invalid := []string{
		".",
		"/",
		"//",
		"../data",
		"data/..",
		"data/../../../etc",
	}
	for _, p := range invalid {
		t.Setenv("EASEL_DATA_DIR", p)
		if _, err := Load(); err == nil {
			t.Errorf("expected error for invalid path %q, got nil", p)
		}
	}
}

func TestValidIPPort(t *testing.T) {
	type sample struct {
		Addr string `validate:"ip_port"`
	}

	v := validator.New()
	require.NoError(t, v.RegisterValidation("ip_port", validIPPort))

	tests := []struct {
		name  string
		addr  string
		valid bool
	}{
		{name: "empty", addr: "", valid: false},
		{name: "missing_port", addr: "127.0.0.1", valid: false},
		{name: "just_colon_port", addr: ":8080", valid: true},
		{name: "loopback_ipv4", addr: "127.0.0.1:8080", valid: true},
		{name: "ipv6_loopback", addr: "[::1]:8080", valid: true},
		{name: "ipv6_any", addr: "[::]:443", valid: true},
		{name: "hostname_not_ip", addr: "localhost:8080", valid: false},
		{name: "non_numeric_port", addr: "127.0.0.1:http", valid: false},
		{name: "port_zero", addr: "127.0.0.1:0", valid: false},
		{name: "port_max_valid", addr: "127.0.0.1:65535", valid: true},
		{name: "port_overflow", addr: "127.0.0.1:65536", valid: false},
		{name: "trailing_space", addr: "127.0.0.1:8080 ", valid: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := sample{Addr: tc.addr}
			err := v.Struct(&s)
			if tc.valid && err != nil {
				t.Fatalf("expected valid, got error: %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}
