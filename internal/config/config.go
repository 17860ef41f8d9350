package config

import (
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultModel is used when the inbound request does not name a model.
const DefaultModel = "gemini-2.0-flash"

// DefaultUpstreamBaseURL is the Gemini API host the relay forwards to.
const DefaultUpstreamBaseURL = "https://generativelanguage.googleapis.com"

type Config struct {
	Server struct {
		Listen  string `yaml:"listen"`
		PidFile string `yaml:"pid_file"`
	} `yaml:"server"`

	Upstream struct {
		// BaseURL is the scheme://host[:port] of the Gemini API.
		BaseURL string `yaml:"base_url"`
		// DefaultModel is substituted when requests omit "model".
		DefaultModel string `yaml:"default_model"`
	} `yaml:"upstream"`

	Gemini struct {
		// APIKey is the upstream secret. Usually left empty here and
		// supplied via GEMINI_API_KEY (optionally from a .env file).
		APIKey string `yaml:"api_key"`
	} `yaml:"gemini"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`

	Logging struct {
		AccessLog     bool   `yaml:"access_log"`
		AccessLogPath string `yaml:"access_log_path"`
	} `yaml:"logging"`
}

// LoadDotenv loads a .env file into the process environment if one exists.
// A missing file is not an error; the relay runs degraded without a key.
func LoadDotenv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// Load reads the YAML config at path. A missing file yields defaults only,
// so the relay can run with no config file at all.
func Load(path string) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = ":5000"
	}
	if strings.TrimSpace(cfg.Upstream.BaseURL) == "" {
		cfg.Upstream.BaseURL = DefaultUpstreamBaseURL
	}
	if strings.TrimSpace(cfg.Upstream.DefaultModel) == "" {
		cfg.Upstream.DefaultModel = DefaultModel
	}
	// default true for local debugging
	if !cfg.Logging.AccessLog {
		cfg.Logging.AccessLog = true
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("RELAY_LISTEN")); v != "" {
		cfg.Server.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("RELAY_PID_FILE")); v != "" {
		cfg.Server.PidFile = v
	}
	if v := strings.TrimSpace(os.Getenv("RELAY_UPSTREAM_BASE_URL")); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("RELAY_DEFAULT_MODEL")); v != "" {
		cfg.Upstream.DefaultModel = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		cfg.Gemini.APIKey = v
	}
	cfg.Metrics.Enabled = envBool("RELAY_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Logging.AccessLog = envBool("RELAY_ACCESS_LOG", cfg.Logging.AccessLog)
	if v := strings.TrimSpace(os.Getenv("RELAY_ACCESS_LOG_PATH")); v != "" {
		cfg.Logging.AccessLogPath = v
	}
}

func validate(cfg *Config) error {
	u, err := url.Parse(strings.TrimSpace(cfg.Upstream.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("upstream.base_url must be a valid http(s) URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("upstream.base_url must use http or https")
	}
	// Note: an empty gemini.api_key is valid. The relay starts and answers
	// every proxy request with a configuration error until a key is set.
	return nil
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
