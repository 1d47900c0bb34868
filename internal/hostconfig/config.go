// Package hostconfig resolves the one setting the vault core needs from
// its host: where the key file lives. It is the CLI's realization of the
// "host-provided config directory path" the core otherwise stays
// agnostic about.
package hostconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	appDirName  = "securevault"
	keyFileName = "vault.key"
	envOverride = "SECUREVAULT_CONFIG_DIR"
)

// Config is the resolved set of paths the CLI needs to locate the vault.
type Config struct {
	ConfigDir   string `mapstructure:"config_dir"`
	KeyFilePath string `mapstructure:"-"`
}

// Load resolves the config directory (env override, else
// os.UserConfigDir()/securevault) and derives the key file path from it.
// A missing or unreadable config file is not an error: defaults apply.
func Load() (*Config, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetDefault("config_dir", dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := &Config{ConfigDir: v.GetString("config_dir")}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = dir
	}
	cfg.KeyFilePath = filepath.Join(cfg.ConfigDir, keyFileName)
	return cfg, nil
}

// configDir resolves the directory securevault's files live under,
// honoring SECUREVAULT_CONFIG_DIR for test and power-user overrides.
func configDir() (string, error) {
	if override := os.Getenv(envOverride); override != "" {
		return override, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("cannot determine config directory: %w", err)
		}
		return filepath.Join(home, "."+appDirName), nil
	}
	return filepath.Join(base, appDirName), nil
}

// EnsureConfigDir creates the config directory if it does not exist yet.
func (c *Config) EnsureConfigDir() error {
	return os.MkdirAll(c.ConfigDir, 0700)
}

// SaveConfigFile persists the resolved config_dir into
// <ConfigDir>/config.yaml, so the file exists for hand-editing after a
// vault is created. Any fields already present in the file are parsed
// into a generic map first and written back untouched; only the keys
// this version knows about are updated.
func (c *Config) SaveConfigFile() error {
	path := filepath.Join(c.ConfigDir, "config.yaml")

	// #nosec G304 -- path is derived from the resolved config dir, not user input
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read config file: %w", err)
	}

	var configMap map[string]interface{}
	if len(content) > 0 {
		if err := yaml.Unmarshal(content, &configMap); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	}
	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	configMap["config_dir"] = c.ConfigDir

	newContent, err := yaml.Marshal(configMap)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, newContent, 0600)
}
