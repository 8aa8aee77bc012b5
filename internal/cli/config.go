package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/linebalance/pkg/pipeline"
)

// config holds user defaults loaded from the TOML config file.
// Command-line flags override config values, which override built-in defaults.
type config struct {
	Strategy string  `toml:"strategy"`
	Seed     uint64  `toml:"seed"`
	Margin   float64 `toml:"margin"`
	Addr     string  `toml:"addr"`
	Redis    string  `toml:"redis"`
}

// defaultConfig returns the built-in defaults. Strategy stays empty so the
// construct command can tell "not configured" from an explicit choice.
func defaultConfig() config {
	return config{
		Seed:   pipeline.DefaultSeed,
		Margin: pipeline.DefaultMargin,
		Addr:   ":8080",
	}
}

// configPath returns the config file location using XDG standard
// (~/.config/linebalance/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config file at path, falling back to the default
// location when path is empty. A missing file is not an error; a file given
// explicitly via --config must exist.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// configKey is the context key for storing the loaded config.
const configKey ctxKey = 1

// withConfig returns a new context with the given config attached.
func withConfig(ctx context.Context, cfg config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext retrieves the config from ctx.
// If no config is attached, it returns the built-in defaults.
func configFromContext(ctx context.Context) config {
	if cfg, ok := ctx.Value(configKey).(config); ok {
		return cfg
	}
	return defaultConfig()
}
