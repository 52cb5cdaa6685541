package salvo_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/salvo"
)

func TestPresetsAreValid(t *testing.T) {
	t.Parallel()

	for _, env := range []salvo.Environment{
		salvo.EnvironmentOutdoor,
		salvo.EnvironmentIndoor,
		salvo.EnvironmentSuppressed,
	} {
		require.NoError(t, salvo.ConfigForEnvironment(env).Validate(), env.String())
	}

	assert.Equal(t, salvo.DefaultOutdoorConfig(), salvo.DefaultConfig())
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(*salvo.Config)
	}{
		{"threshold too low", func(c *salvo.Config) { c.PeakThresholdStd = 0.05 }},
		{"threshold too high", func(c *salvo.Config) { c.PeakThresholdStd = 5.5 }},
		{"threshold NaN", func(c *salvo.Config) { c.PeakThresholdStd = math.NaN() }},
		{"spacing too low", func(c *salvo.Config) { c.MinShotSpacing = 0.005 }},
		{"spacing too high", func(c *salvo.Config) { c.MinShotSpacing = 1.5 }},
		{"gap too low", func(c *salvo.Config) { c.BurstGapThreshold = 0.01 }},
		{"gap too high", func(c *salvo.Config) { c.BurstGapThreshold = 3 }},
		{"window too low", func(c *salvo.Config) { c.WindowSize = 0.0005 }},
		{"window too high", func(c *salvo.Config) { c.WindowSize = 0.02 }},
		{"window infinite", func(c *salvo.Config) { c.WindowSize = math.Inf(1) }},
		{"prominence too low", func(c *salvo.Config) { c.MinPeakProminence = 0 }},
		{"prominence too high", func(c *salvo.Config) { c.MinPeakProminence = 1.5 }},
		{"burst count zero", func(c *salvo.Config) { c.MinBurstCount = 0 }},
		{"burst count too high", func(c *salvo.Config) { c.MinBurstCount = 51 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := salvo.DefaultConfig()
			tc.mutate(&cfg)

			require.ErrorIs(t, cfg.Validate(), salvo.ErrInvalidConfiguration)
		})
	}
}

func TestValidateBoundsInclusive(t *testing.T) {
	t.Parallel()

	cfg := salvo.Config{
		PeakThresholdStd:  0.1,
		MinShotSpacing:    1.0,
		BurstGapThreshold: 0.05,
		WindowSize:        0.01,
		MinPeakProminence: 0.01,
		MinBurstCount:     50,
	}

	require.NoError(t, cfg.Validate())
}

func TestValidateReportsEveryField(t *testing.T) {
	t.Parallel()

	err := salvo.Config{}.Validate()
	require.ErrorIs(t, err, salvo.ErrInvalidConfiguration)

	for _, field := range []string{"threshold", "spacing", "gap", "window", "prominence", "burst count"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	t.Parallel()

	cfg, err := salvo.LoadConfig(strings.NewReader("min_burst_count: 5\nwindow_size: 0.003\n"), salvo.DefaultConfig())
	require.NoError(t, err)

	want := salvo.DefaultConfig()
	want.MinBurstCount = 5
	want.WindowSize = 0.003

	assert.Equal(t, want, cfg)
}

func TestLoadConfigEmptyDocument(t *testing.T) {
	t.Parallel()

	cfg, err := salvo.LoadConfig(strings.NewReader(""), salvo.DefaultIndoorConfig())
	require.NoError(t, err)
	assert.Equal(t, salvo.DefaultIndoorConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		doc  string
	}{
		{"unknown key", "min_shots: 3\n"},
		{"wrong type", "min_burst_count: many\n"},
		{"out of range", "peak_threshold_std: 9\n"},
		{"malformed", "window_size: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := salvo.LoadConfig(strings.NewReader(tc.doc), salvo.DefaultConfig())
			require.ErrorIs(t, err, salvo.ErrInvalidConfiguration)
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	t.Parallel()

	for _, env := range []salvo.Environment{
		salvo.EnvironmentOutdoor,
		salvo.EnvironmentIndoor,
		salvo.EnvironmentSuppressed,
	} {
		parsed, err := salvo.ParseEnvironment(env.String())
		require.NoError(t, err)
		assert.Equal(t, env, parsed)
	}

	parsed, err := salvo.ParseEnvironment("")
	require.NoError(t, err)
	assert.Equal(t, salvo.EnvironmentOutdoor, parsed)

	_, err = salvo.ParseEnvironment("underwater")
	require.Error(t, err)
}

func TestEnvironmentPresetsDiffer(t *testing.T) {
	t.Parallel()

	outdoor := salvo.DefaultOutdoorConfig()
	indoor := salvo.DefaultIndoorConfig()
	suppressed := salvo.DefaultSuppressedConfig()

	assert.Greater(t, indoor.MinPeakProminence, outdoor.MinPeakProminence)
	assert.Greater(t, indoor.MinShotSpacing, outdoor.MinShotSpacing)
	assert.Less(t, suppressed.PeakThresholdStd, outdoor.PeakThresholdStd)
}
