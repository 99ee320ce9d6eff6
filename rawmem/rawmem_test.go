package rawmem_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/memlab/api"
	"github.com/momentics/memlab/rawmem"
)

func TestAlloc_InvalidSize(t *testing.T) {
	for _, n := range []int{0, -1} {
		b, err := rawmem.Alloc(n)
		assert.Nil(t, b)
		assert.True(t, errors.Is(err, api.ErrInvalidArgument), "size %d: got %v", n, err)
	}
}

func TestAllocFree_Balance(t *testing.T) {
	before := rawmem.ReadStats()

	blocks := make([][]byte, 0, 4)
	for range 4 {
		b, err := rawmem.Alloc(4096)
		require.NoError(t, err)
		require.Len(t, b, 4096)
		b[0], b[4095] = 1, 2
		blocks = append(blocks, b)
	}
	mid := rawmem.ReadStats()
	assert.Equal(t, before.Allocs+4, mid.Allocs)
	assert.Equal(t, before.Outstanding+4, mid.Outstanding)
	assert.Equal(t, before.OutstandingBytes+4*4096, mid.OutstandingBytes)

	for _, b := range blocks {
		require.NoError(t, rawmem.Free(b))
	}
	after := rawmem.ReadStats()
	assert.Equal(t, before.Outstanding, after.Outstanding)
	assert.Equal(t, before.OutstandingBytes, after.OutstandingBytes)
	assert.Equal(t, before.Frees+4, after.Frees)
}

func TestFree_Empty(t *testing.T) {
	before := rawmem.ReadStats()
	require.NoError(t, rawmem.Free(nil))
	assert.Equal(t, before, rawmem.ReadStats())
}
