package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/agrivision-api/internal/locale"
)

// DefaultClasses is the class sequence of the bundled plant disease model.
var DefaultClasses = []string{
	"Pepper__bell__Bacterial_spot",
	"Pepper__bell__healthy",
	"Potato Early blight",
	"Potato__Late_blight",
	"Potato__Healthy",
	"Tomato_Bacterial_spot",
	"Tomato_Early_blight",
	"Tomato_Late_blight",
	"Tomato_Leaf_Mold",
	"Tomato_Septoria_leaf_spot",
	"Tomato_Spider_mites_Two_spotted_spider_mite",
	"Tomato__Target_Spot",
	"Tomato__Tomato_YellowLeaf__Curl_Virus",
	"Tomato__Tomato_mosaic_virus",
	"Tomato_healthy",
}

// Config holds the server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Locale  LocaleConfig  `yaml:"locale"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	ReleaseMode     bool     `yaml:"release_mode"`
	MaxUploadBytes  int64    `yaml:"max_upload_bytes"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// ModelConfig locates the model artifact and its class sequence.
type ModelConfig struct {
	Path              string   `yaml:"path"`
	MetadataPath      string   `yaml:"metadata_path"`
	SharedLibraryPath string   `yaml:"shared_library_path"`
	Classes           []string `yaml:"classes"`
}

// LocaleConfig configures disease information lookup.
type LocaleConfig struct {
	Dir             string `yaml:"dir"`
	DefaultLanguage string `yaml:"default_language"`
	Extension       string `yaml:"extension"`
	KeyMode         string `yaml:"key_mode"` // composite, per-token
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: "15s",
			MaxUploadBytes:  10 << 20,
			AllowedOrigins:  []string{"http://localhost", "http://localhost:3000"},
		},
		Model: ModelConfig{
			Path:         "models/model.onnx",
			MetadataPath: "models/model_metadata.json",
			Classes:      append([]string(nil), DefaultClasses...),
		},
		Locale: LocaleConfig{
			Dir:             "locales",
			DefaultLanguage: "en",
			Extension:       "json",
			KeyMode:         string(locale.KeyModeComposite),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and applies environment overrides.
// A missing file yields the defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("MODEL_METADATA_PATH"); v != "" {
		c.Model.MetadataPath = v
	}
	if v := os.Getenv("ONNXRUNTIME_LIB"); v != "" {
		c.Model.SharedLibraryPath = v
	}
	if v := os.Getenv("LOCALES_DIR"); v != "" {
		c.Locale.Dir = v
	}
	if v := os.Getenv("DEFAULT_LANGUAGE"); v != "" {
		c.Locale.DefaultLanguage = v
	}
	if v := os.Getenv("LOCALE_KEY_MODE"); v != "" {
		c.Locale.KeyMode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address not configured")
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown timeout %q: %w", c.Server.ShutdownTimeout, err)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Model.Path == "" || c.Model.MetadataPath == "" {
		return fmt.Errorf("model path and metadata path are required")
	}
	if len(c.Model.Classes) == 0 {
		return fmt.Errorf("no class labels configured")
	}
	if c.Locale.Dir == "" || c.Locale.DefaultLanguage == "" {
		return fmt.Errorf("locale directory and default language are required")
	}
	if _, err := locale.ParseKeyMode(c.Locale.KeyMode); err != nil {
		return err
	}
	return nil
}

// GetShutdownTimeout returns the shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetKeyMode returns the parsed locale key mode.
func (c *Config) GetKeyMode() locale.KeyMode {
	mode, err := locale.ParseKeyMode(c.Locale.KeyMode)
	if err != nil {
		return locale.KeyModeComposite
	}
	return mode
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
