package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// ConfigFileName is the file looked up inside the agent config directory.
	ConfigFileName = "mypi.toml"
	// AgentDirEnv overrides the default agent config directory.
	AgentDirEnv = "PI_CODING_AGENT_DIR"

	DefaultHTTPAddr = ":8930"

	AuthNone   = "none"
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

type Config struct {
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	SearXNG SearXNGConfig `toml:"searxng"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// SearXNGConfig carries the search endpoint and its forwarded credentials.
// An empty BaseURL means the search tool is unconfigured; the fetch tool
// never reads this section.
type SearXNGConfig struct {
	BaseURL  string `toml:"base_url"`
	AuthType string `toml:"auth_type"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Token    string `toml:"token"`
}

func (c SearXNGConfig) Configured() bool {
	return c.BaseURL != ""
}

func defaults() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		SearXNG: SearXNGConfig{
			AuthType: AuthNone,
		},
	}
}

// DefaultPath resolves the config file location: $PI_CODING_AGENT_DIR/mypi.toml
// when the variable is set, otherwise ~/.pi/agent/mypi.toml.
func DefaultPath() string {
	if dir := os.Getenv(AgentDirEnv); dir != "" {
		return filepath.Join(dir, ConfigFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(home, ".pi", "agent", ConfigFileName)
}

// Load reads the TOML config at path (DefaultPath when empty). A missing or
// malformed file yields the defaults rather than an error so a broken config
// never prevents the tools from registering.
func Load(path string) Config {
	cfg := defaults()

	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("config: cannot stat file, using defaults", "path", path, "error", err)
		}
		return cfg
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		slog.Warn("config: malformed file, using defaults", "path", path, "error", err)
		return defaults()
	}

	switch cfg.SearXNG.AuthType {
	case AuthNone, AuthBasic, AuthBearer:
	case "":
		cfg.SearXNG.AuthType = AuthNone
	default:
		slog.Warn("config: unknown searxng auth_type, treating as none", "auth_type", cfg.SearXNG.AuthType)
		cfg.SearXNG.AuthType = AuthNone
	}

	return cfg
}
