package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults_DriverDerivation(t *testing.T) {
	cfg := NewForTesting()
	cfg.DBDriver = "auto"
	cfg.PostgresDSN = ""
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "sqlite", cfg.DBDriver)

	cfg = NewForTesting()
	cfg.DBDriver = "auto"
	cfg.PostgresDSN = "postgres://localhost:5432/taskpilot"
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "postgres", cfg.DBDriver)
}

func TestResolveDefaults_Validation(t *testing.T) {
	cfg := NewForTesting()
	cfg.DBDriver = "mongodb"
	require.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.DBDriver = "postgres"
	cfg.PostgresDSN = ""
	require.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.HistoryLimit = 0
	require.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.MaxToolRounds = -1
	require.Error(t, cfg.ResolveDefaults())
}

func TestGetHTTPAddr(t *testing.T) {
	cfg := NewForTesting()
	cfg.HTTPPort = 9090
	assert.Equal(t, ":9090", cfg.GetHTTPAddr())
}
