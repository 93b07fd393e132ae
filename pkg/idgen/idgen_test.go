package idgen

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSonyflakeGenerator_Monotonic(t *testing.T) {
	gen, err := NewSonyflakeGenerator(7)
	require.NoError(t, err)

	var prev uint64
	for i := 0; i < 100; i++ {
		id, err := gen.NextID()
		require.NoError(t, err)
		n, err := strconv.ParseUint(id, 10, 64)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
}

func TestNewUUID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		id := NewUUID()
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 50)
}

func TestNextID_Default(t *testing.T) {
	id, err := NextID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
