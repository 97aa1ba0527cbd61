package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repeat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "repeat.db", cfg.DBPath)
	assert.Equal(t, 0.9, cfg.Scheduler.DesiredRetention)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/cards.db
card_limit: 40
scheduler:
  desired_retention: 0.85
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cards.db", cfg.DBPath)
	assert.Equal(t, 40, cfg.CardLimit)
	assert.Equal(t, 0.85, cfg.Scheduler.DesiredRetention)
	// Untouched keys keep their defaults.
	assert.Equal(t, "repos", cfg.ReposDir)
	assert.Equal(t, -0.5, cfg.Scheduler.Decay)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REPEAT_NEW_CARD_LIMIT", "5")
	t.Setenv("REPEAT_SCHEDULER__EASY_BONUS", "2.5")
	t.Setenv("REPEAT_SCHEDULER__FACTOR", "0.3")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.NewCardLimit)
	assert.Equal(t, 2.5, cfg.Scheduler.EasyBonus)
	assert.Equal(t, 0.3, cfg.Scheduler.Factor)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "card_limit: 40\n")
	t.Setenv("REPEAT_CARD_LIMIT", "7")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.CardLimit)
}

func TestFlagsOverrideEverything(t *testing.T) {
	path := writeConfig(t, "db_path: /tmp/from-file.db\n")
	t.Setenv("REPEAT_DB_PATH", "/tmp/from-env.db")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db-path", Default().DBPath, "")
	require.NoError(t, fs.Set("db-path", "/tmp/from-flag.db"))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-flag.db", cfg.DBPath)
}

func TestUnchangedFlagsDoNotMaskLowerLayers(t *testing.T) {
	path := writeConfig(t, "db_path: /tmp/from-file.db\n")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db-path", Default().DBPath, "")

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-file.db", cfg.DBPath)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"retention must be below one":     "scheduler:\n  desired_retention: 1.5\n",
		"decay must be negative":          "scheduler:\n  decay: 0.5\n",
		"factor must be positive":         "scheduler:\n  factor: -1\n",
		"card limit must not be negative": "card_limit: -1\n",
		"db path is required":             "db_path: \"\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content), nil)
			assert.Error(t, err)
		})
	}
}
