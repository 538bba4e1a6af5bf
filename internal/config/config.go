// Package config loads the tilegrid configuration file.
//
// The file is TOML, read from --config or $XDG_CONFIG_HOME/tilegrid/config.toml
// (falling back to ~/.config/tilegrid/config.toml). A missing default file is
// not an error; every field has a default. Loading applies defaults, decodes
// the file on top, normalizes and validates, in that order.
//
//	[grid]
//	columns = 8
//	rows = 4
//
//	[metrics]
//	cell_size = 64.0
//	spacing = 8.0
//
//	[store]
//	backend = "file"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tilegrid/pkg/drag"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/store"
)

const appName = "tilegrid"

// Config is the full configuration.
type Config struct {
	Grid    grid.Grid    `toml:"grid"`
	Metrics drag.Metrics `toml:"metrics"`
	Store   store.Config `toml:"store"`
	Server  Server       `toml:"server"`
}

// Server configures `tilegrid serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Grid:    grid.Default(),
		Metrics: drag.DefaultMetrics(),
		Store:   store.DefaultConfig(),
		Server:  Server{Addr: ":8080"},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path. An empty path means the default
// location, which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		cfg := Default()
		cfg.Normalize()
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults, then normalizes and validates.
// Unknown keys are rejected so that typos do not go unnoticed.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize cleans up values that have an obvious canonical form.
func (c *Config) Normalize() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = store.BackendFile
	}
	if c.Store.Dir != "" {
		c.Store.Dir = expandHome(c.Store.Dir)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = Default().Server.Addr
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "config [grid]")
	}
	if err := c.Metrics.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "config [metrics]")
	}
	if err := c.Store.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "config [store]")
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
