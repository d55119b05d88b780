// Package config loads filtercache configuration and owns the cache
// freshness timestamp. Config files are JSONC (JSON with comments),
// parsed through hujson.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	CacheDir    string `json:"cache_dir"`              //nolint:tagliatelle // snake_case for config file
	FPSBaseURL  string `json:"fps_base_url,omitempty"` //nolint:tagliatelle // snake_case for config file
	HTTPTimeout string `json:"http_timeout,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// ConfigFileName is the global config file name under the app config
// directory.
const ConfigFileName = "config.json"

const appDir = "filtercache"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigInvalid      = errors.New("invalid config file")
	errCacheDirEmpty      = errors.New("cache_dir cannot be empty")
)

// DefaultConfig returns the defaults: cache under the user cache
// directory, the public FPS endpoint, a 60s HTTP timeout.
func DefaultConfig() Config {
	return Config{
		CacheDir:    defaultCacheDir(),
		HTTPTimeout: "60s",
	}
}

// defaultCacheDir returns $XDG_CACHE_HOME/filtercache, falling back to
// ~/.cache/filtercache, or a relative directory when no home exists.
func defaultCacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, appDir)
	}

	return appDir
}

// globalConfigPath returns the path of the global config file.
// Uses $XDG_CONFIG_HOME/filtercache/config.json if set, otherwise
// ~/.config/filtercache/config.json. Empty when no home directory can
// be determined.
func globalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, appDir, ConfigFileName)
		}
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appDir, ConfigFileName)
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", appDir, ConfigFileName)
	}

	return ""
}

// Load loads configuration with the following precedence (highest
// wins): defaults, global user config, explicit config file via
// configPath, CLI overrides.
func Load(configPath string, cliOverrides Config, env []string) (Config, error) {
	cfg := DefaultConfig()

	globalCfg, _, err := loadGlobalConfig(env)
	if err != nil {
		return Config{}, err
	}

	cfg = merge(cfg, globalCfg)

	if configPath != "" {
		fileCfg, loadErr := loadConfigFile(configPath, true)
		if loadErr != nil {
			return Config{}, loadErr
		}

		cfg = merge(cfg, fileCfg)
	}

	if cliOverrides.CacheDir != "" {
		cfg.CacheDir = cliOverrides.CacheDir
	}

	if cliOverrides.FPSBaseURL != "" {
		cfg.FPSBaseURL = cliOverrides.FPSBaseURL
	}

	if cfg.CacheDir == "" {
		return Config{}, errCacheDirEmpty
	}

	if cfg.HTTPTimeout != "" {
		_, parseErr := time.ParseDuration(cfg.HTTPTimeout)
		if parseErr != nil {
			return Config{}, fmt.Errorf("%w: http_timeout: %w", errConfigInvalid, parseErr)
		}
	}

	return cfg, nil
}

// Timeout returns the parsed HTTP timeout. Zero when unset; Load has
// already rejected unparseable values.
func (c Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0
	}

	return d
}

// loadGlobalConfig loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobalConfig(env []string) (Config, string, error) {
	path := globalConfigPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		return Config{}, "", nil
	}

	cfg, err := loadConfigFile(path, false)
	if err != nil {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadConfigFile loads one config file. If mustExist is false, a
// missing file returns zero config.
func loadConfigFile(path string, mustExist bool) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
			}

			return Config{}, nil
		}

		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, parseErr := parse(data)
	if parseErr != nil {
		return Config{}, fmt.Errorf("%w %s: %w", errConfigInvalid, path, parseErr)
	}

	return cfg, nil
}

func parse(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	decodeErr := json.Unmarshal(standardized, &cfg)
	if decodeErr != nil {
		return Config{}, decodeErr
	}

	return cfg, nil
}

// merge overlays non-empty fields of overlay onto base.
func merge(base, overlay Config) Config {
	if overlay.CacheDir != "" {
		base.CacheDir = overlay.CacheDir
	}

	if overlay.FPSBaseURL != "" {
		base.FPSBaseURL = overlay.FPSBaseURL
	}

	if overlay.HTTPTimeout != "" {
		base.HTTPTimeout = overlay.HTTPTimeout
	}

	return base
}
