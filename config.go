package main

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	ConfigFileName = "carousel.toml"

	defaultHost        = "127.0.0.1"
	defaultPort        = 1225
	defaultHistorySize = 100
)

// Flags are the command line settings that feed into Config.
type Flags struct {
	ConfigPath string
}

type tomlConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	Members     []string `toml:"members"`
	HistorySize *int     `toml:"history_size"`
	AutoAdvance string   `toml:"auto_advance"`
	Pinout      []int    `toml:"pinout"`
	LogLevel    string   `toml:"log_level"`
}

type Config struct {
	path        string
	toml        tomlConfig
	host        string
	port        int
	autoAdvance time.Duration
	logLevel    zerolog.Level
}

// NewConfig loads the TOML config file and applies environment overrides.
// An explicit path in flags must exist; otherwise ./carousel.toml and
// ~/.config/carousel/carousel.toml are tried in order, and defaults are
// used when neither exists.
func NewConfig(fs CarouselFS, flags Flags, getenv func(string) string) (*Config, error) {
	c := &Config{}

	path, err := findConfigFile(fs, flags)
	if err != nil {
		return nil, err
	}

	if path != "" {
		c.path = path
		if err := c.readFile(fs, path); err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Msg("Loaded config file")
	} else {
		log.Debug().Msg("No config file found, using defaults")
	}

	if err := c.resolve(getenv); err != nil {
		return nil, err
	}

	return c, nil
}

func findConfigFile(fs CarouselFS, flags Flags) (string, error) {
	if flags.ConfigPath != "" {
		path, err := fs.Abs(flags.ConfigPath)
		if err != nil {
			return "", err
		}
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", fmt.Errorf("config file %q does not exist", path)
		}
		return path, nil
	}

	var candidates []string
	if local, err := fs.Abs(ConfigFileName); err == nil {
		candidates = append(candidates, local)
	}
	if home, err := fs.HomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "carousel", ConfigFileName))
	}

	for _, candidate := range candidates {
		exists, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", err
		}
		if exists {
			return candidate, nil
		}
	}

	return "", nil
}

func (c *Config) readFile(fs CarouselFS, path string) error {
	f, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := toml.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&c.toml); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s: %s", ErrValidation, path, strict.String())
		}
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

func (c *Config) resolve(getenv func(string) string) error {
	c.host = c.toml.Host
	if v := getenv("CAROUSEL_HOST"); v != "" {
		c.host = v
	}
	if c.host == "" {
		c.host = defaultHost
	}

	c.port = c.toml.Port
	if v := getenv("CAROUSEL_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CAROUSEL_PORT %q is not a number", ErrValidation, v)
		}
		c.port = p
	}
	if c.port == 0 {
		c.port = defaultPort
	}
	if c.port < 0 || c.port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrValidation, c.port)
	}

	if c.toml.HistorySize != nil && *c.toml.HistorySize < 1 {
		return fmt.Errorf("%w: history_size must be at least 1, got %d", ErrValidation, *c.toml.HistorySize)
	}

	if c.toml.AutoAdvance != "" {
		d, err := time.ParseDuration(c.toml.AutoAdvance)
		if err != nil {
			return fmt.Errorf("%w: auto_advance: %s", ErrValidation, err)
		}
		if d < 0 {
			return fmt.Errorf("%w: auto_advance cannot be negative", ErrValidation)
		}
		c.autoAdvance = d
	}

	c.logLevel = zerolog.InfoLevel
	if c.toml.LogLevel != "" {
		level, err := zerolog.ParseLevel(c.toml.LogLevel)
		if err != nil {
			return fmt.Errorf("%w: log_level: %s", ErrValidation, err)
		}
		c.logLevel = level
	}

	return nil
}

// Path is the config file that was loaded, or "" when running on defaults.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) Host() string {
	return c.host
}

func (c *Config) Port() int {
	return c.port
}

func (c *Config) Address() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

func (c *Config) Members() []string {
	return append([]string(nil), c.toml.Members...)
}

func (c *Config) HistorySize() int {
	if c.toml.HistorySize == nil {
		return defaultHistorySize
	}
	return *c.toml.HistorySize
}

// AutoAdvance is how often the rotation advances on its own. Zero means never.
func (c *Config) AutoAdvance() time.Duration {
	return c.autoAdvance
}

func (c *Config) Pinout() []int {
	return append([]int(nil), c.toml.Pinout...)
}

func (c *Config) LogLevel() zerolog.Level {
	return c.logLevel
}
