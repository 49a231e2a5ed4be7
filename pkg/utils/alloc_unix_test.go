//go:build unix

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlloc(t *testing.T) {
	before := AllocMemory()
	b, err := Alloc(5000)
	require.NoError(t, err)
	require.Len(t, b, 5000)
	assert.Equal(t, before+5000, AllocMemory())
	b[0], b[4999] = 1, 2
	Free(b)
	assert.Equal(t, before, AllocMemory())

	_, err = Alloc(0)
	assert.Error(t, err)
	Free(nil)
}

func TestRusage(t *testing.T) {
	ru := GetRusage()
	assert.GreaterOrEqual(t, ru.GetUtime(), 0.0)
	assert.GreaterOrEqual(t, ru.GetStime(), 0.0)
}
