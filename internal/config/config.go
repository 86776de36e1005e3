package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Limits  LimitsConfig  `yaml:"limits"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// BackendConfig selects and parameterizes the embedding backend.
type BackendConfig struct {
	Kind      string `yaml:"kind"`       // deterministic | llama | remote
	Model     string `yaml:"model"`      // model identifier reported in responses
	ModelPath string `yaml:"model_path"` // GGUF file for the llama backend
	Precision string `yaml:"precision"`  // float16 | bfloat16 | float32

	// llama engine tuning
	ContextSize int `yaml:"context_size"`
	GPULayers   int `yaml:"gpu_layers"`
	Threads     int `yaml:"threads"`

	// remote backend
	RemoteBaseURL    string `yaml:"remote_base_url"`
	RemoteAPIKey     string `yaml:"-"` // env-only, never in YAML
	RemoteDimensions int    `yaml:"remote_dimensions"`
}

// LimitsConfig bounds what a single request may ask for.
type LimitsConfig struct {
	MaxLength    int   `yaml:"max_length"` // default truncation bound
	MaxItems     int   `yaml:"max_items"`
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("EMBEDD_CONFIG_PATH", "config/embedd.yaml")

	// Load YAML file if it exists (missing file is not an error)
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	cfg.applyFloors()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and for an explicitly provided config file.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyFloors()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values. The backend defaults
// match the reference deployment: a local Qwen3 embedding model feeding a
// 4096-wide pipeline.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8844,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(120 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Backend: BackendConfig{
			Kind:             "llama",
			Model:            "Qwen/Qwen3-Embedding-8B",
			ModelPath:        "models/qwen3-embedding-8b.gguf",
			Precision:        "float16",
			ContextSize:      4096,
			RemoteDimensions: 4096,
		},
		Limits: LimitsConfig{
			MaxLength:    512,
			MaxItems:     64,
			MaxBodyBytes: 2_000_000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("EMBEDD_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("EMBEDD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("EMBEDD_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = Duration(d)
		}
	}
	if v := os.Getenv("EMBEDD_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = Duration(d)
		}
	}
	if v := os.Getenv("EMBEDD_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}

	// Backend
	if v := os.Getenv("EMBEDD_BACKEND"); v != "" {
		cfg.Backend.Kind = v
	}
	if v := os.Getenv("EMBEDD_MODEL"); v != "" {
		cfg.Backend.Model = v
	}
	if v := os.Getenv("EMBEDD_MODEL_PATH"); v != "" {
		cfg.Backend.ModelPath = v
	}
	if v := os.Getenv("EMBEDD_PRECISION"); v != "" {
		cfg.Backend.Precision = v
	}
	if v := os.Getenv("EMBEDD_CONTEXT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.ContextSize = n
		}
	}
	if v := os.Getenv("EMBEDD_GPU_LAYERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.GPULayers = n
		}
	}
	if v := os.Getenv("EMBEDD_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.Threads = n
		}
	}
	if v := os.Getenv("EMBEDD_REMOTE_BASE_URL"); v != "" {
		cfg.Backend.RemoteBaseURL = v
	}
	if v := os.Getenv("EMBEDD_REMOTE_API_KEY"); v != "" {
		cfg.Backend.RemoteAPIKey = v
	}
	if v := os.Getenv("EMBEDD_REMOTE_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.RemoteDimensions = n
		}
	}

	// Limits
	if v := os.Getenv("EMBEDD_MAX_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxLength = n
		}
	}
	if v := os.Getenv("EMBEDD_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxItems = n
		}
	}
	if v := os.Getenv("EMBEDD_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxBodyBytes = n
		}
	}

	// Log
	if v := os.Getenv("EMBEDD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("EMBEDD_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// applyFloors raises limit values to their minimums. Out-of-range limits are
// corrected rather than rejected, matching the request-level clamp behavior.
func (c *Config) applyFloors() {
	if c.Limits.MaxLength < 8 {
		c.Limits.MaxLength = 8
	}
	if c.Limits.MaxItems < 1 {
		c.Limits.MaxItems = 1
	}
	if c.Limits.MaxBodyBytes < 1024 {
		c.Limits.MaxBodyBytes = 1024
	}
}

// validate checks that required configuration values are set.
func (c *Config) validate() error {
	switch c.Backend.Kind {
	case "deterministic", "llama", "remote":
	default:
		return fmt.Errorf("unsupported backend: %q", c.Backend.Kind)
	}

	switch c.Backend.Precision {
	case "float16", "bfloat16", "float32":
	default:
		return fmt.Errorf("unsupported precision: %q", c.Backend.Precision)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
