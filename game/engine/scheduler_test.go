package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualScheduler_Order(t *testing.T) {
	s := NewManualScheduler()
	var order []string

	s.Schedule(200*time.Millisecond, func() { order = append(order, "b") })
	s.Schedule(100*time.Millisecond, func() { order = append(order, "a") })
	s.Schedule(200*time.Millisecond, func() { order = append(order, "c") })

	s.Advance(150 * time.Millisecond)
	assert.Equal(t, []string{"a"}, order)
	assert.Equal(t, 150*time.Millisecond, s.Now())
	assert.Equal(t, 2, s.Pending())

	s.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, s.Pending())
}

func TestManualScheduler_NestedTasks(t *testing.T) {
	s := NewManualScheduler()
	var at []time.Duration

	s.Schedule(100*time.Millisecond, func() {
		at = append(at, s.Now())
		s.Schedule(100*time.Millisecond, func() {
			at = append(at, s.Now())
			s.Schedule(0, func() { at = append(at, s.Now()) })
		})
	})

	s.Advance(time.Second)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond}, at)
	assert.Equal(t, time.Second, s.Now())
}

func TestManualScheduler_RunUntilIdle(t *testing.T) {
	s := NewManualScheduler()
	ran := 0
	s.Schedule(time.Hour, func() { ran++ })
	s.Schedule(time.Minute, func() { ran++ })

	assert.Equal(t, 2, s.RunUntilIdle(10))
	assert.Equal(t, 2, ran)
	assert.Equal(t, time.Hour, s.Now())

	var loop func()
	loop = func() { s.Schedule(time.Millisecond, loop) }
	s.Schedule(0, loop)
	assert.Equal(t, 5, s.RunUntilIdle(5), "limit stops self-rescheduling tasks")
	assert.Equal(t, 1, s.Pending())
}

func TestTimerScheduler(t *testing.T) {
	done := make(chan struct{})
	TimerScheduler{}.Schedule(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestTiming(t *testing.T) {
	d := DefaultTiming()
	assert.Equal(t, time.Second, d.Roll)
	assert.Equal(t, 4100*time.Millisecond, d.Total())

	fast := d.Scaled(0.1)
	assert.Equal(t, 100*time.Millisecond, fast.Roll)
	assert.Equal(t, 70*time.Millisecond, fast.HazardMove)
	assert.Equal(t, 410*time.Millisecond, fast.Total())
}

func TestEngineOnWallClock(t *testing.T) {
	e := NewEngine(
		WithDice(NewFixedDice(3)),
		WithTiming(DefaultTiming().Scaled(0.001)),
		WithLogger(quietLogger()),
	)
	require.NoError(t, e.InitGame(2, 10))

	settled := make(chan GameState, 64)
	e.Subscribe(func(s GameState) {
		if !s.MoveInProgress && !s.Dice.Rolling && s.CurrentPlayerIndex == 1 {
			settled <- s
		}
	})
	require.True(t, e.RollDice())

	select {
	case s := <-settled:
		assert.Equal(t, 3, s.Players[0].Position)
	case <-time.After(2 * time.Second):
		t.Fatal("roll never settled")
	}
}
