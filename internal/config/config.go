// Package config provides environment-driven configuration loading for the
// Easel service: struct defaults overlaid with EASEL_* environment
// variables, then validated.
package config

import (
	"fmt"
	"net"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces all configuration environment variables.
const envPrefix = "EASEL_"

// Backend names accepted by storage_backend.
const (
	BackendS3         = "s3"
	BackendFilesystem = "filesystem"
)

// Config holds the merged runtime configuration for the Easel service.
// Precedence (lowest to highest): struct defaults, environment.
type Config struct {
	Addr           string        `koanf:"addr" validate:"required,ip_port"`
	DataDir        string        `koanf:"data_dir" validate:"required,safe_path"`
	StorageBackend string        `koanf:"storage_backend" validate:"required,oneof=s3 filesystem"`
	Prefix         string        `koanf:"prefix" validate:"required"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes" validate:"gt=0"`
	AdminPassword  string        `koanf:"admin_password" validate:"required"`
	SessionSecret  string        `koanf:"session_secret"`
	CookieSecure   bool          `koanf:"cookie_secure"`
	MetricsToken   string        `koanf:"metrics_token"`
	ReconcileEvery time.Duration `koanf:"reconcile_every" validate:"gt=0"`
	ReconcilePrune bool          `koanf:"reconcile_prune"`

	// S3 backend settings; validated only when the backend is "s3".
	S3Bucket      string `koanf:"s3_bucket" validate:"required_if=StorageBackend s3"`
	S3Region      string `koanf:"s3_region" validate:"required_if=StorageBackend s3"`
	S3Endpoint    string `koanf:"s3_endpoint"`
	S3AccessKey   string `koanf:"s3_access_key"`
	S3SecretKey   string `koanf:"s3_secret_key"`
	PublicBaseURL string `koanf:"public_base_url" validate:"required_if=StorageBackend s3,omitempty,url"`
}

// DefaultAppConfig is the baseline every deployment starts from.
var DefaultAppConfig = Config{
	Addr:           ":8080",
	DataDir:        "./data",
	StorageBackend: BackendFilesystem,
	Prefix:         "portfolio/",
	MaxUploadBytes: 50 << 20, // 50 MiB
	ReconcileEvery: 15 * time.Minute,
}

// SigningSecret returns the session signing secret: the dedicated secret
// when set, else the admin password. Empty means the service must refuse to
// start rather than fall back to a known default.
func (c Config) SigningSecret() string {
	if c.SessionSecret != "" {
		return c.SessionSecret
	}
	return c.AdminPassword
}

// Load builds the configuration from defaults and environment variables and
// validates it. It returns all validation problems joined into one error.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultAppConfig, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	v := validator.New()
	if err := v.RegisterValidation("ip_port", validIPPort); err != nil {
		return nil, fmt.Errorf("register ip_port: %w", err)
	}
	if err := v.RegisterValidation("safe_path", validSafePath); err != nil {
		return nil, fmt.Errorf("register safe_path: %w", err)
	}
	if err := v.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// validIPPort accepts ":port" or "ip:port" listen addresses with a numeric
// port in [1, 65535]. Hostnames are rejected; binding is by address.
func validIPPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host != "" {
		if net.ParseIP(host) == nil {
			return false
		}
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// validSafePath rejects empty, root, and traversal-bearing data paths.
func validSafePath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if p == "" || p == "." || p == "/" || p == "//" {
		return false
	}
	for _, part := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return path.Clean(p) != "/"
}
