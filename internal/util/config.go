package util

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPrompt        = ">> "
	DefaultHistoryDriver = "sqlite3"
	DefaultJobs          = 4
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	Prompt      string `toml:"prompt"`
	HistoryFile string `toml:"history_file"` // line-editor history, one entry per line

	HistoryDriver string `toml:"history_driver"` // sqlite3, mysql or postgres
	HistoryDSN    string `toml:"history_dsn"`    // empty disables the session history store

	DebugAST string `toml:"debug_ast"` // "", "json" or "yaml"
	Jobs     int    `toml:"jobs"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Prompt:        DefaultPrompt,
		HistoryDriver: DefaultHistoryDriver,
		Jobs:          DefaultJobs,
		LogLevel:      "none",
	}
}

// LoadConfigFile overlays the keys present in a TOML file on top of cfg.
// Keys missing from the file keep their current value.
func LoadConfigFile(path string, cfg Configuration) (Configuration, error) {
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("reading config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

func (c Configuration) Validate() error {
	switch c.DebugAST {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("debug_ast must be json or yaml, got %q", c.DebugAST)
	}
	switch c.HistoryDriver {
	case "sqlite3", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported history driver %q", c.HistoryDriver)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	return nil
}
