package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

const (
	FileName        = "mailcheck.toml"
	DefaultDBPath   = "emails.db"
	DefaultSeedPath = "base.txt"
	DefaultLogFile  = "mailcheck.log"
)

// Config holds the settings that locate the store and seed document and tune
// output. Relative paths are resolved against BaseDir, which defaults to the
// directory of the running executable.
type Config struct {
	DBPath   string `toml:"db_path"`
	SeedPath string `toml:"seed_path"`
	Theme    string `toml:"theme"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	BaseDir string `toml:"-"`
}

func Default(baseDir string) *Config {
	return &Config{
		DBPath:   DefaultDBPath,
		SeedPath: DefaultSeedPath,
		Theme:    "classic",
		LogLevel: "info",
		LogFile:  DefaultLogFile,
		BaseDir:  baseDir,
	}
}

// ExecutableDir returns the directory containing the running binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Load applies defaults, then the TOML file at path. An empty path means
// mailcheck.toml in baseDir, which may be absent; an explicit path must exist.
func Load(path, baseDir string) (*Config, error) {
	cfg := Default(baseDir)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(baseDir, FileName)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}
	return cfg, nil
}

// Finalize validates values and makes paths absolute.
func (c *Config) Finalize() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	switch c.Theme {
	case "classic", "neon", "mono":
	default:
		c.Theme = "classic"
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path: empty")
	}
	c.DBPath = c.resolve(c.DBPath)
	c.SeedPath = c.resolve(c.SeedPath)
	c.LogFile = c.resolve(c.LogFile)
	return nil
}

// Level returns the parsed log level, info when invalid.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}
