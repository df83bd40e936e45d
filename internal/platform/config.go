package platform

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the file/environment configuration consumed by the CLI.
// Precedence, lowest to highest: defaults, silt.yaml, SILT_* environment
// variables (including any loaded from a .env file).
type Config struct {
	DataDir  string `yaml:"data_dir"`
	Database string `yaml:"database"`
	LogLevel string `yaml:"log_level"`
}

// ConfigFile is the name of the optional YAML configuration file looked
// up in the working directory.
const ConfigFile = "silt.yaml"

// LoadConfig assembles the configuration from defaults, the optional YAML
// file and the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:  "data",
		Database: DefaultDatabase,
		LogLevel: "info",
	}

	if data, err := os.ReadFile(ConfigFile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	if v := os.Getenv("SILT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SILT_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("SILT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}
