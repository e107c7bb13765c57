package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetween_Range(t *testing.T) {
	src := New(42)
	for range 1000 {
		v := Between(src, 3, 7)
		require.GreaterOrEqual(t, v, 3)
		require.LessOrEqual(t, v, 7)
	}
}

func TestBetween_Inverted(t *testing.T) {
	src := New(7)
	gotLo, gotHi := false, false
	for range 1000 {
		v := Between(src, 5, 2)
		require.GreaterOrEqual(t, v, 2)
		require.LessOrEqual(t, v, 5)
		gotLo = gotLo || v == 2
		gotHi = gotHi || v == 5
	}
	assert.True(t, gotLo, "never rolled lower bound")
	assert.True(t, gotHi, "never rolled upper bound")
}

func TestBetween_Equal(t *testing.T) {
	assert.Equal(t, 4, Between(New(1), 4, 4))
}

func TestChance_Bounds(t *testing.T) {
	src := New(1)
	for range 100 {
		assert.False(t, Chance(src, 0))
		assert.False(t, Chance(src, -1))
		assert.True(t, Chance(src, 1))
		assert.True(t, Chance(src, 1.5))
	}
}

func TestNew_Deterministic(t *testing.T) {
	a, b := New(99), New(99)
	for range 50 {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestNewSeed(t *testing.T) {
	_, err := NewSeed()
	require.NoError(t, err)
}
