package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcal/internal/model"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_NormalizesPartialFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "listen: 0.0.0.0:9000\nweek_start: Monday\ndefault_view: week\nhour_height: 48\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, time.Monday, cfg.Weekday())
	assert.Equal(t, model.Week, cfg.DefaultView)
	assert.InDelta(t, 48.0, cfg.Mapper().HourHeight, 1e-9)
	assert.InDelta(t, 20.0, cfg.Mapper().MinExtent, 1e-9)
	assert.Equal(t, SeedSample, cfg.Seed)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_view: year\n"), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, model.ErrUnknownGranularity)

	_, err = Load("")
	require.Error(t, err)
}

func TestNormalize_UnknownWeekStart(t *testing.T) {
	t.Parallel()

	cfg := &Config{WeekStart: "friday"}
	cfg.Normalize()
	assert.Equal(t, "sunday", cfg.WeekStart)
	assert.Equal(t, time.Sunday, cfg.Weekday())
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"WEBCAL_LISTEN":    ":7000",
		"WEBCAL_LOG_LEVEL": "debug",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, SeedSample, cfg.Seed)
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}
	cfg.Seed = "/srv/seed.ics"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	require.Error(t, Save(path, nil))
}
