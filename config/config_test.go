package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escrowd.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.RPCAddress)
	require.Equal(t, "escrowd", cfg.ServiceName)
	require.Equal(t, "ESCROWD_RPC_TOKEN", cfg.AuthTokenEnv)

	// The default file was persisted and loads back identically.
	_, err = os.Stat(path)
	require.NoError(t, err)
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escrowd.toml")
	require.NoError(t, os.WriteFile(path, []byte("Environment = \"prod\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Environment)
	require.Equal(t, ":8080", cfg.RPCAddress)
	require.Equal(t, "./escrowd-data", cfg.DataDir)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escrowd.toml")
	require.NoError(t, os.WriteFile(path, []byte("Bogus = true\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestAuthTokenResolvesEnv(t *testing.T) {
	cfg := &Config{AuthTokenEnv: "ESCROWD_TEST_TOKEN"}
	t.Setenv("ESCROWD_TEST_TOKEN", " secret ")
	require.Equal(t, "secret", cfg.AuthToken())

	cfg.AuthTokenEnv = ""
	require.Equal(t, "", cfg.AuthToken())
}
