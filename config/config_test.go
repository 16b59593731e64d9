package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-fol-planner/config"
	"github.com/theoremus-urban-solutions/transit-fol-planner/fare"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 16181, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Prover.Budget.MaxSeconds)

	policy, err := cfg.FarePolicy()
	require.NoError(t, err)
	assert.Equal(t, 45, policy.ValidityMinutes)
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  allowedOrigins: ["http://localhost:3000"]
feed:
  gtfsPath: /data/bucharest.zip
  serviceAlertsURL: https://example.org/alerts.pb
fare:
  validityMinutes: 90
  price: 5
prover:
  mace4Path: /opt/ladr/mace4
  prover9Path: /opt/ladr/prover9
  maxWeight: 40
  maxSeconds: 10
  prover9TimeoutMS: 15000
  maxConcurrent: 2
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "/data/bucharest.zip", cfg.Feed.GTFSPath)
	assert.Equal(t, 5, cfg.Feed.DefaultMinutes)
	assert.Equal(t, 90, cfg.Fare.ValidityMinutes)
	assert.Equal(t, "RON", cfg.Fare.Currency)
	assert.Equal(t, 40, cfg.Prover.Budget.MaxWeight)
	assert.Equal(t, 500, cfg.Prover.Budget.SOSLimit)

	mace4, prover9 := cfg.Engines()
	assert.Equal(t, "/opt/ladr/mace4", mace4.Path)
	assert.Equal(t, 15*time.Second, prover9.Timeout)
	assert.Equal(t, int64(2), cfg.OrchestratorOptions().MaxConcurrent)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PLANNER_PORT", "7000")
	t.Setenv("PLANNER_MACE4_PATH", "/usr/local/bin/mace4")
	t.Setenv("PLANNER_ARTIFACT_DIR", "/var/lib/planner")
	t.Setenv("PLANNER_ENV", "production")

	cfg, err := config.Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/usr/local/bin/mace4", cfg.Prover.Mace4Path)
	assert.Equal(t, "/var/lib/planner", cfg.Artifacts.Dir)
	assert.Equal(t, filepath.Join("/var/lib/planner", "catalog.db"), cfg.Artifacts.Catalog)
	assert.Equal(t, "production", cfg.Server.Environment)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad port", "server:\n  port: 70000\n", "Port"},
		{"bad environment", "server:\n  environment: staging\n", "Environment"},
		{"no feed source", "feed:\n  gtfsPath: \"\"\n", "GTFSPath"},
		{"timeout within budget", "prover:\n  maxSeconds: 60\n  prover9TimeoutMS: 60000\n", "prover9TimeoutMS"},
		{"zero weight", "prover:\n  maxWeight: -1\n", "MaxWeight"},
		{"malformed yaml", "server: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("fare error is typed", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "fare:\n  validityMinutes: 0\n"))
		var cfgErr *fare.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "validity window", cfgErr.Field)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})

	t.Run("bad env port", func(t *testing.T) {
		t.Setenv("PLANNER_PORT", "eighty")
		_, err := config.Load(writeConfig(t, ""))
		assert.ErrorContains(t, err, "PLANNER_PORT")
	})
}
