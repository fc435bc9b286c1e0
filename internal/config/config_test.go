package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"scrollcal/internal/text"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	st, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
feed_url: https://calendar.example.com/basic.ics
timezone: UTC
day_cutoff_hour: 42
fonts:
  event:
    path: /usr/share/fonts/mplus-1m-medium.ttf
    size: 14
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://calendar.example.com/basic.ics", cfg.FeedURL)
	require.Equal(t, 3, cfg.DayCutoffHour)
	require.Equal(t, 7, cfg.HorizonDays)
	require.Equal(t, 10, cfg.MaxParseErrors)
	require.Equal(t, "DEVEL", cfg.BranchName)
	require.Equal(t, "medium", cfg.Fonts.Event.Weight)
	require.Equal(t, 21.6, cfg.Fonts.DayHeader.Size)
	require.Equal(t, 16.0, cfg.HeaderMargin)

	f, err := cfg.Fonts.Event.Font()
	require.NoError(t, err)
	require.Equal(t, text.Font{Path: "/usr/share/fonts/mplus-1m-medium.ttf", Size: 14, Weight: text.Medium}, f)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.RefreshCron = "every now and then"
	require.ErrorContains(t, cfg.Validate(), "refresh")

	cfg = DefaultConfig()
	cfg.Timezone = "Mars/Olympus"
	require.ErrorContains(t, cfg.Validate(), "timezone")

	cfg = DefaultConfig()
	cfg.Fonts.Time.Weight = "heavy"
	require.ErrorContains(t, cfg.Validate(), "fonts.time")

	cfg = DefaultConfig()
	cfg.BasicAuth = &BasicAuthConfig{}
	require.Error(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("horizon_days: [\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)

	require.Error(t, Save("", DefaultConfig()))
	require.Error(t, Save(path, nil))
}
