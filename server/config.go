package server

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the process configuration, loaded from a TOML file with coded
// defaults. A missing file is not an error; environment overrides are
// layered on top either way.
type Config struct {
	Server ServerConfig `toml:"server"`
	Game   GameConfig   `toml:"game"`
}

type ServerConfig struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
	LogFile   string `toml:"log_file"`
	LogLevel  string `toml:"log_level"`
}

type GameConfig struct {
	CountdownMs  int `toml:"countdown_ms"`  // starting → playing delay
	RoundResetMs int `toml:"round_reset_ms"` // round_end → playing delay
}

func (c *Config) Countdown() time.Duration {
	return time.Duration(c.Game.CountdownMs) * time.Millisecond
}

func (c *Config) RoundReset() time.Duration {
	return time.Duration(c.Game.RoundResetMs) * time.Millisecond
}

// LoadConfig reads the TOML file at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":3000",
			StaticDir: "web",
			LogFile:   "app.log",
			LogLevel:  "info",
		},
		Game: GameConfig{
			CountdownMs:  2000,
			RoundResetMs: 2000,
		},
	}
}

// applyEnv layers process-environment overrides on top of the file. A .env
// file is honored when present; PORT overrides the listen address, matching
// how the original deployment picked its port.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
}
