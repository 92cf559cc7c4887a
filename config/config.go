package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the operational settings of the escrow daemon. The money rules
// themselves (penalty rate, cancellation fee) are fixed by the contract and
// deliberately not configurable.
type Config struct {
	RPCAddress  string `toml:"RPCAddress"`
	DataDir     string `toml:"DataDir"`
	ServiceName string `toml:"ServiceName"`
	Environment string `toml:"Environment"`
	LogFile     string `toml:"LogFile"`
	// AuthTokenEnv names the environment variable carrying the bearer token
	// required for mutating RPC methods. Empty disables auth.
	AuthTokenEnv string `toml:"AuthTokenEnv"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s contains unknown field %s", path, undecoded[0])
	}

	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./escrowd-data"
	}
	if strings.TrimSpace(cfg.ServiceName) == "" {
		cfg.ServiceName = "escrowd"
	}

	return cfg, nil
}

// AuthToken resolves the configured bearer token, if any.
func (c *Config) AuthToken() string {
	if c == nil || strings.TrimSpace(c.AuthTokenEnv) == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.AuthTokenEnv))
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:   ":8080",
		DataDir:      "./escrowd-data",
		ServiceName:  "escrowd",
		Environment:  "local",
		AuthTokenEnv: "ESCROWD_RPC_TOKEN",
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
