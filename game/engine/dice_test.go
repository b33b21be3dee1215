package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededDiceIsReproducible(t *testing.T) {
	a := NewSeededDice(42)
	b := NewSeededDice(42)
	counts := make(map[int]int)

	for i := 0; i < 600; i++ {
		va, vb := a.Roll(), b.Roll()
		assert.Equal(t, va, vb)
		assert.True(t, va >= 1 && va <= DiceFaces, "roll %d", va)
		counts[va]++
	}
	assert.Len(t, counts, DiceFaces, "every face comes up")
}

func TestSeedFromString(t *testing.T) {
	assert.Equal(t, SeedFromString("tuesday"), SeedFromString("tuesday"))
	assert.NotEqual(t, SeedFromString("tuesday"), SeedFromString("wednesday"))
}

func TestFixedDice(t *testing.T) {
	d := NewFixedDice(4, 2)
	assert.Equal(t, 4, d.Roll())
	assert.Equal(t, 2, d.Roll())
	assert.Equal(t, 4, d.Roll())
	assert.Equal(t, 3, d.Rolled())

	assert.Equal(t, 1, NewFixedDice().Roll())
}
