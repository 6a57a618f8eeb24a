package edit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const configFile = "service.yaml"

// Config selects and tunes the inpainting engine.
type Config struct {
	// Endpoint is the URL of a remote inpainting service. Empty means
	// use the local engine.
	Endpoint string `yaml:"endpoint"`

	// APIKey is sent as a bearer token when set.
	APIKey string `yaml:"api_key"`

	// TimeoutSeconds bounds a remote edit request.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Method selects the local algorithm: "telea" or "ns".
	Method string `yaml:"method"`

	// InpaintRadius is the local engine's neighborhood radius in pixels.
	InpaintRadius float64 `yaml:"inpaint_radius"`

	// DilationRadius grows the mask before local inpainting so stroke
	// edges fully cover watermark fringes. 0 disables dilation.
	DilationRadius int `yaml:"dilation_radius"`
}

// DefaultConfig returns the local-engine defaults.
func DefaultConfig() Config {
	return Config{
		TimeoutSeconds: 120,
		Method:         "telea",
		InpaintRadius:  5,
		DilationRadius: 2,
	}
}

// Timeout returns the configured request timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig reads ~/.config/qushuiyin/service.yaml, falling back to
// defaults when the file does not exist.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	path := filepath.Join(configDir, "qushuiyin", configFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read service config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse service config: %w", err)
	}
	return cfg, nil
}

// ParseConfig parses a YAML payload over the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse service config: %w", err)
	}
	return cfg, nil
}
