package output_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/salvo"
	"github.com/farcloser/salvo/internal/output"
)

func clicks(length int, at ...int) salvo.Buffer {
	samples := make([]float64, length)
	for _, idx := range at {
		samples[idx] = 1
	}

	return salvo.Buffer{Samples: samples, SampleRate: 8000}
}

func TestResultToMap(t *testing.T) {
	t.Parallel()

	result, err := salvo.Analyze(clicks(4800, 800, 1600, 2400, 3200, 4000), salvo.DefaultConfig())
	require.NoError(t, err)

	meta := output.ResultToMap(result)

	for _, key := range []string{"session", "revision", "recording", "config", "summary", "findings", "detection", "condition", "shots", "bursts"} {
		assert.Contains(t, meta, key)
	}

	assert.Equal(t, result.SessionID.String(), meta["session"])

	shots, ok := meta["shots"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 5, shots["count"])

	bursts, ok := meta["bursts"].([]any)
	require.True(t, ok)
	require.Len(t, bursts, 1)

	burst, ok := bursts[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 5, burst["num_shots"])
	assert.InDelta(t, 600, burst["rate_rpm"], 1e-6)

	// The map serializes cleanly, including an empty issue list.
	encoded, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"worst_severity":"no issue"`)
}

func TestResultToMapEmpty(t *testing.T) {
	t.Parallel()

	result, err := salvo.Analyze(salvo.Buffer{SampleRate: 8000}, salvo.DefaultConfig())
	require.NoError(t, err)

	encoded, err := json.Marshal(output.ResultToMap(result))
	require.NoError(t, err)

	assert.Contains(t, string(encoded), `"bursts":[]`)
	assert.Contains(t, string(encoded), `"issues":[]`)
	assert.Contains(t, string(encoded), `"times_sec":[]`)
}

func TestResultToMapSilence(t *testing.T) {
	t.Parallel()

	result, err := salvo.Analyze(clicks(100), salvo.DefaultConfig())
	require.NoError(t, err)

	meta := output.ResultToMap(result)

	findings, ok := meta["findings"].(map[string]any)
	require.True(t, ok)

	issues, ok := findings["issues"].([]any)
	require.True(t, ok)
	require.Len(t, issues, 2)

	checks := make([]any, 0, len(issues))

	for _, entry := range issues {
		issue, ok := entry.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, false, issue["detected"])

		checks = append(checks, issue["check"])
	}

	assert.ElementsMatch(t, []any{"clipping", "dc-offset"}, checks)
	assert.Contains(t, meta, "condition")

	encoded, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"bursts":[]`)
	assert.Contains(t, string(encoded), `"times_sec":[]`)
}

func TestIssuesToListNil(t *testing.T) {
	t.Parallel()

	encoded, err := json.Marshal(output.IssuesToList(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(encoded))
}

func TestConfigToMap(t *testing.T) {
	t.Parallel()

	cfg := salvo.DefaultIndoorConfig()
	meta := output.ConfigToMap(cfg)

	assert.InDelta(t, cfg.MinShotSpacing, meta["min_shot_spacing"], 1e-12)
	assert.Equal(t, cfg.MinBurstCount, meta["min_burst_count"])
	assert.Len(t, meta, 6)
}
