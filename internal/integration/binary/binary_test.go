package binary_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/farcloser/primordium/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/salvo/internal/integration/binary"
)

func TestLookupMissing(t *testing.T) {
	t.Parallel()

	_, err := binary.Lookup("salvo-no-such-tool")
	require.ErrorIs(t, err, fault.ErrMissingRequirements)
}

func TestRun(t *testing.T) {
	t.Parallel()

	if _, err := binary.Lookup("sh"); err != nil {
		t.Skip("sh not available")
	}

	var out bytes.Buffer

	require.NoError(t, binary.Run(context.Background(), "sh", time.Minute, &out, "-c", "printf shots"))
	assert.Equal(t, "shots", out.String())

	err := binary.Run(context.Background(), "sh", time.Minute, &out, "-c", "echo broken >&2; exit 3")
	require.ErrorIs(t, err, fault.ErrCommandFailure)
	assert.Contains(t, err.Error(), "broken")

	err = binary.Run(context.Background(), "sh", 50*time.Millisecond, &out, "-c", "exec sleep 5")
	require.ErrorIs(t, err, fault.ErrTimeout)
}
