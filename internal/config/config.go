package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPort     = "/dev/cu.usbmodem11303"
	DefaultBaud     = 115200
	DefaultMovement = "serpensortia"
	DefaultHeader   = "Time, AccX, AccY, AccZ, GyroX, GyroY, GyroZ"
	DefaultSentinel = "End Data Collection"
)

type Config struct {
	Port             string `toml:"port"`
	Baud             int    `toml:"baud"`
	ReadTimeoutMs    int    `toml:"read_timeout_ms"`
	Movement         string `toml:"movement"`
	DataRoot         string `toml:"data_root"`
	DBPath           string `toml:"db_path"`
	Header           string `toml:"header"`
	Sentinel         string `toml:"sentinel"`
	CollisionRetries int    `toml:"collision_retries"`
	LogLevel         string `toml:"log_level"`
}

// ReadTimeout returns the serial read timeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

// MovementDir is the directory session files for the configured movement go to.
func (c *Config) MovementDir() string {
	return filepath.Join(c.DataRoot, c.Movement)
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(home, ".config", "senlog", "config.toml"), home)
}

// LoadFile builds the defaults and overlays cfgPath when it exists.
func LoadFile(cfgPath, home string) (*Config, error) {
	cfg := Defaults(home)

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}

	// expand ~ in paths
	cfg.Port = expandHome(cfg.Port, home)
	cfg.DataRoot = expandHome(cfg.DataRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func Defaults(home string) *Config {
	return &Config{
		Port:             DefaultPort,
		Baud:             DefaultBaud,
		ReadTimeoutMs:    1000,
		Movement:         DefaultMovement,
		DataRoot:         "collected_data",
		DBPath:           filepath.Join(home, ".config", "senlog", "senlog.db"),
		Header:           DefaultHeader,
		Sentinel:         DefaultSentinel,
		CollisionRetries: 1,
		LogLevel:         "info",
	}
}

func (c *Config) validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("port must not be empty")
	case c.Baud <= 0:
		return fmt.Errorf("baud must be positive, got %d", c.Baud)
	case c.ReadTimeoutMs <= 0:
		return fmt.Errorf("read_timeout_ms must be positive, got %d", c.ReadTimeoutMs)
	case c.Movement == "":
		return fmt.Errorf("movement must not be empty")
	case filepath.Base(c.Movement) != c.Movement:
		return fmt.Errorf("movement %q must be a plain name", c.Movement)
	case c.Sentinel == "":
		return fmt.Errorf("sentinel must not be empty")
	case c.CollisionRetries < 0:
		return fmt.Errorf("collision_retries must not be negative")
	}
	return nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
