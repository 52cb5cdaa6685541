package tests_test

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const fixtureRate = 8000

// clicks returns length silent samples with full-scale clicks at the given indices.
func clicks(length int, at ...int) []int {
	data := make([]int, length)
	for _, idx := range at {
		data[idx] = 32767
	}

	return data
}

// train returns count indices starting at first, step samples apart.
func train(first, step, count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = first + i*step
	}

	return out
}

// writeWAV writes 16-bit mono samples at fixtureRate and returns the path.
func writeWAV(t *testing.T, name string, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	encoder := wav.NewEncoder(file, fixtureRate, 16, 1, 1)

	if err := encoder.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: fixtureRate, NumChannels: 1},
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatal(err)
	}

	if err := encoder.Close(); err != nil {
		t.Fatal(err)
	}

	if err := file.Close(); err != nil {
		t.Fatal(err)
	}

	return path
}

// writePCM writes headerless 16-bit little-endian mono samples and returns the path.
func writePCM(t *testing.T, name string, data []int) string {
	t.Helper()

	raw := make([]byte, 2*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(int16(v))) //nolint:gosec // fixture values fit 16 bits
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// writeFile writes a text fixture and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// expectSummary returns a comparator verifying the shot and burst counts of the console summary line.
func expectSummary(shots, bursts int) test.Comparator {
	return expectContains(fmt.Sprintf("%d shots, %d bursts", shots, bursts))
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectNotContains returns a comparator verifying the output does not contain a substring.
func expectNotContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("unexpected substring %q found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}
