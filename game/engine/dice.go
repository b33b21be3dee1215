package engine

import (
	"hash/fnv"
	"math/rand"
	"sync"
	"time"
)

// DiceSource produces committed die values in [1, DiceFaces]
type DiceSource interface {
	Roll() int
}

type randomDice struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededDice returns a reproducible die
func NewSeededDice(seed int64) DiceSource {
	return &randomDice{rng: rand.New(rand.NewSource(seed))}
}

// NewRandomDice returns a die seeded from the wall clock
func NewRandomDice() DiceSource {
	return NewSeededDice(time.Now().UnixNano())
}

func (d *randomDice) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Intn(DiceFaces) + 1
}

// SeedFromString hashes a human-friendly seed such as "tuesday-night" into
// an int64 suitable for NewSeededDice.
func SeedFromString(seed string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return int64(h.Sum64())
}

// FixedDice replays a scripted sequence of values, cycling when exhausted.
type FixedDice struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewFixedDice creates a die that returns values in order
func NewFixedDice(values ...int) *FixedDice {
	return &FixedDice{values: append([]int(nil), values...)}
}

// Roll returns the next scripted value, or 1 if none were given
func (d *FixedDice) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.values) == 0 {
		return 1
	}
	v := d.values[d.next%len(d.values)]
	d.next++
	return v
}

// Rolled reports how many values have been consumed
func (d *FixedDice) Rolled() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}
