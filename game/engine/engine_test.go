package engine

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/snakes-ladders/game/board"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestEngine(t *testing.T, rolls ...int) (*GameEngine, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	e := NewEngine(
		WithDice(NewFixedDice(rolls...)),
		WithScheduler(sched),
		WithLogger(quietLogger()),
	)
	return e, sched
}

// place puts a player on a square without recording a move
func place(e *GameEngine, playerID, position int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playerLocked(playerID).Position = position
}

func assertTurnInvariants(t *testing.T, s GameState) {
	t.Helper()
	if s.Status != StatusPlaying {
		return
	}
	require.Equal(t, 1, s.ActivePlayers(), "exactly one active player")
	cur, ok := s.CurrentPlayer()
	require.True(t, ok)
	assert.True(t, cur.IsActive)
	for _, p := range s.Players {
		assert.True(t, p.Position >= 0 && p.Position <= s.MaxPosition(), "position %d", p.Position)
	}
}

func TestNewEngine(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.State()

	assert.Equal(t, StatusSetup, s.Status)
	assert.Empty(t, s.Players)
	assert.Equal(t, 10, s.Settings.BoardSize)
	assert.Equal(t, 1, s.Dice.Value)
	assert.False(t, s.Dice.Rolling)
	assert.Nil(t, s.Winner)
	assert.Equal(t, msgWelcome, s.Message)
	assert.Empty(t, s.GameID)
}

func TestInitGame(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.InitGame(4, 10))

	s := e.State()
	assert.Equal(t, StatusPlaying, s.Status)
	assert.NotEmpty(t, s.GameID)
	assert.Equal(t, 4, s.Settings.NumberOfPlayers)
	assert.Equal(t, 0, s.Settings.TurnCount)
	require.Len(t, s.Players, 4)

	for i, p := range s.Players {
		assert.Equal(t, i+1, p.ID)
		assert.Equal(t, Palette[i], p.Color)
		assert.Equal(t, 0, p.Position)
		assert.Equal(t, i == 0, p.IsActive)
		assert.NotNil(t, p.MoveHistory)
		assert.Empty(t, p.MoveHistory)
	}
	assert.Equal(t, "Player 1", s.Players[0].Name)
	assert.Equal(t, 0, s.CurrentPlayerIndex)
	assert.Equal(t, msgStarted, s.Message)
	assertTurnInvariants(t, s)
}

func TestInitGame_Validation(t *testing.T) {
	e, _ := newTestEngine(t)

	tests := []struct {
		name    string
		players int
		size    int
		want    error
	}{
		{"one player", 1, 10, ErrInvalidPlayerCount},
		{"seven players", 7, 10, ErrInvalidPlayerCount},
		{"unsupported size", 2, 9, ErrUnsupportedBoardSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := e.State()
			err := e.InitGame(tt.players, tt.size)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, before, e.State(), "failed init must not change state")
		})
	}
}

func TestInitGame_EachSupportedSize(t *testing.T) {
	for _, size := range board.SupportedSizes {
		e, _ := newTestEngine(t)
		require.NoError(t, e.InitGame(MaxPlayers, size))
		s := e.State()
		assert.Equal(t, size, s.Settings.BoardSize)
		assert.Equal(t, size*size, s.MaxPosition())
		assert.Len(t, s.Players, MaxPlayers)
	}
}

func TestInitGame_NewGameIDEachTime(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.InitGame(2, 10))
	first := e.State().GameID
	require.NoError(t, e.InitGame(2, 10))
	assert.NotEqual(t, first, e.State().GameID)
}

func TestInitGameWithBoard_RejectsInvalidBoard(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.InitGameWithBoard(2, &board.Board{Size: 5, Ladders: []board.Ladder{{Start: 9, End: 2}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, board.ErrInvalidBoard))

	err = e.InitGameWithBoard(2, nil)
	assert.True(t, errors.Is(err, board.ErrInvalidBoard))
	assert.Equal(t, StatusSetup, e.State().Status)
}

// Player 1 on 12 rolls a 4, lands on the snake at 16 and slides to 6.
func TestRoll_SnakeChain(t *testing.T) {
	e, sched := newTestEngine(t, 4)
	require.NoError(t, e.InitGame(2, 10))
	place(e, 1, 12)
	timing := DefaultTiming()

	require.True(t, e.RollDice())
	s := e.State()
	assert.True(t, s.Dice.Rolling)
	assert.Equal(t, msgRolling, s.Message)

	sched.Advance(timing.Roll)
	s = e.State()
	assert.False(t, s.Dice.Rolling)
	assert.Equal(t, 4, s.Dice.Value)
	assert.True(t, s.MoveInProgress)
	assert.Equal(t, "Player 1 rolled a 4. Moving from 12 to 16.", s.Message)

	sched.Advance(timing.MoveDelay)
	s = e.State()
	assert.Equal(t, 16, s.Players[0].Position)
	assert.True(t, s.Players[0].Animating)
	assert.Equal(t, 1, s.Settings.TurnCount)

	sched.Advance(timing.Settle)
	assert.False(t, e.State().Players[0].Animating)

	sched.Advance(timing.Resolve + timing.HazardNotice)
	assert.Equal(t, "🐍 Oh no! Player 1 landed on a snake at 16!", e.State().Message)

	sched.Advance(timing.HazardMove)
	s = e.State()
	assert.Equal(t, 6, s.Players[0].Position)
	assert.Equal(t, "🐍 Oh no! You landed on a snake! Moving from 16 to 6.", s.Message)

	sched.Advance(timing.Settle + timing.Resolve)
	s = e.State()
	p := s.Players[0]
	assert.Equal(t, 6, p.Position)
	assert.Equal(t, []Move{
		{From: 12, To: 16, DiceValue: 4, TurnNumber: 1},
		{From: 16, To: 6, DiceValue: 0, IsSnake: true, TurnNumber: 1},
	}, p.MoveHistory)
	require.NotNil(t, p.LastMove)
	assert.True(t, p.LastMove.IsSnake)
	assert.Equal(t, 1, s.Settings.TurnCount, "snake move does not count as a turn")
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.False(t, s.MoveInProgress)
	assert.Equal(t, "Player 2's turn. Roll the dice!", s.Message)
	assert.Equal(t, 0, sched.Pending())
	assertTurnInvariants(t, s)
}

func TestRoll_LadderChain(t *testing.T) {
	e, sched := newTestEngine(t, 4)
	require.NoError(t, e.InitGame(3, 10))

	require.True(t, e.RollDice())
	sched.Advance(DefaultTiming().Total())

	s := e.State()
	p := s.Players[0]
	assert.Equal(t, 14, p.Position)
	assert.Equal(t, []Move{
		{From: 0, To: 4, DiceValue: 4, TurnNumber: 1},
		{From: 4, To: 14, IsLadder: true, TurnNumber: 1},
	}, p.MoveHistory)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
}

// Player 1 on 96 rolls a 5 and overshoots 100.
func TestRoll_OvershootPassesTurn(t *testing.T) {
	e, sched := newTestEngine(t, 5)
	require.NoError(t, e.InitGame(2, 10))
	place(e, 1, 96)
	timing := DefaultTiming()

	require.True(t, e.RollDice())
	sched.Advance(timing.Roll)
	s := e.State()
	assert.True(t, s.MoveInProgress)
	assert.False(t, e.RollDice(), "cannot roll while the overshoot resolves")

	sched.Advance(timing.MoveDelay)
	s = e.State()
	assert.Equal(t, 96, s.Players[0].Position)
	assert.Empty(t, s.Players[0].MoveHistory)
	assert.Equal(t, 0, s.Settings.TurnCount)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.False(t, s.MoveInProgress)
	assert.Equal(t, 5, s.Dice.Value)
	assert.Equal(t, "Player 1 needs an exact roll to reach 100. Player 2's turn. Roll the dice!", s.Message)
	assertTurnInvariants(t, s)
}

// Player 1 on 97 rolls a 3 and wins.
func TestRoll_ExactLandingWins(t *testing.T) {
	e, sched := newTestEngine(t, 3)
	require.NoError(t, e.InitGame(2, 10))
	place(e, 1, 97)

	require.True(t, e.RollDice())
	sched.Advance(DefaultTiming().Total())

	s := e.State()
	assert.Equal(t, StatusGameOver, s.Status)
	require.NotNil(t, s.Winner)
	assert.Equal(t, 1, s.Winner.ID)
	assert.Equal(t, 100, s.Winner.Position)
	assert.Equal(t, 1, s.Settings.TurnCount)
	assert.False(t, s.MoveInProgress)
	assert.Equal(t, "🎉 Player 1 wins the game after 1 turns!", s.Message)

	assert.False(t, e.RollDice(), "no rolls after game over")
	assert.False(t, e.NextTurn())
	assert.True(t, errors.Is(e.MovePlayer(2, 5, 0, false, false), ErrNotPlaying))
}

func TestRoll_Reentrancy(t *testing.T) {
	e, sched := newTestEngine(t, 2)
	require.NoError(t, e.InitGame(2, 10))

	require.True(t, e.RollDice())
	v := e.State().Version
	assert.False(t, e.RollDice(), "second roll while rolling is rejected")
	assert.Equal(t, v, e.State().Version, "rejected roll publishes nothing")

	sched.Advance(DefaultTiming().Roll + DefaultTiming().MoveDelay)
	assert.True(t, e.State().MoveInProgress)
	assert.False(t, e.RollDice(), "roll while moving is rejected")
}

func TestRoll_RequiresPlaying(t *testing.T) {
	e, sched := newTestEngine(t)
	assert.False(t, e.RollDice())
	assert.Equal(t, 0, sched.Pending())
}

func TestRoll_AnimatedFacesWhileRolling(t *testing.T) {
	e, sched := newTestEngine(t, 6)
	require.NoError(t, e.InitGame(2, 10))

	seen := 0
	e.Subscribe(func(s GameState) {
		if s.Dice.Rolling {
			seen++
			assert.True(t, s.Dice.Value >= 1 && s.Dice.Value <= DiceFaces)
		}
	})

	require.True(t, e.RollDice())
	sched.Advance(350 * time.Millisecond)
	assert.True(t, e.State().Dice.Rolling)
	assert.Equal(t, 4, seen, "the roll itself plus one snapshot per face change")

	sched.Advance(DefaultTiming().Roll)
	s := e.State()
	assert.False(t, s.Dice.Rolling)
	assert.Equal(t, 6, s.Dice.Value, "committed value comes from the dice source")
}

// A snake or ladder reached through a snake or ladder is not followed.
func TestRoll_ChainIsOneHazardLong(t *testing.T) {
	e, sched := newTestEngine(t, 3)
	b := &board.Board{
		Name:    "chain",
		Size:    5,
		Ladders: []board.Ladder{{Start: 3, End: 10}},
		Snakes:  []board.Snake{{Start: 10, End: 5}},
	}
	require.NoError(t, e.InitGameWithBoard(2, b))

	require.True(t, e.RollDice())
	sched.Advance(DefaultTiming().Total())

	s := e.State()
	assert.Equal(t, 10, s.Players[0].Position)
	assert.Len(t, s.Players[0].MoveHistory, 2)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, "chain", s.Settings.BoardName)
}

func TestStaleTransitions(t *testing.T) {
	timing := DefaultTiming()

	t.Run("reset mid roll", func(t *testing.T) {
		e, sched := newTestEngine(t, 4)
		require.NoError(t, e.InitGame(2, 10))
		require.True(t, e.RollDice())
		sched.Advance(timing.Roll + timing.MoveDelay)

		e.ResetGame()
		sched.Advance(10 * time.Second)

		s := e.State()
		assert.Equal(t, StatusSetup, s.Status)
		assert.Empty(t, s.Players)
		assert.False(t, s.MoveInProgress)
		assert.Equal(t, msgReset, s.Message)
		assert.Equal(t, 0, sched.Pending())
	})

	t.Run("re-init mid roll", func(t *testing.T) {
		e, sched := newTestEngine(t, 4)
		require.NoError(t, e.InitGame(2, 10))
		require.True(t, e.RollDice())
		sched.Advance(timing.Roll)

		require.NoError(t, e.InitGame(3, 8))
		v := e.State().Version
		sched.Advance(10 * time.Second)

		s := e.State()
		assert.Equal(t, v, s.Version, "old steps publish nothing")
		for _, p := range s.Players {
			assert.Equal(t, 0, p.Position)
			assert.Empty(t, p.MoveHistory)
		}
		assert.False(t, s.Dice.Rolling)
		assert.False(t, s.MoveInProgress)
	})

	t.Run("next turn mid move", func(t *testing.T) {
		e, sched := newTestEngine(t, 4)
		require.NoError(t, e.InitGame(2, 10))
		place(e, 1, 12)
		require.True(t, e.RollDice())
		sched.Advance(timing.Roll + timing.MoveDelay + 100*time.Millisecond)
		require.Equal(t, 16, e.State().Players[0].Position)

		require.True(t, e.NextTurn())
		sched.Advance(10 * time.Second)

		s := e.State()
		assert.Equal(t, 16, s.Players[0].Position, "snake never fires")
		assert.False(t, s.Players[0].Animating)
		assert.Equal(t, 1, s.CurrentPlayerIndex)
		assert.False(t, s.MoveInProgress)
		assertTurnInvariants(t, s)

		assert.True(t, e.RollDice(), "player 2 can roll")
	})

	t.Run("manual move supersedes roll", func(t *testing.T) {
		e, sched := newTestEngine(t, 4)
		require.NoError(t, e.InitGame(2, 10))
		require.True(t, e.RollDice())
		sched.Advance(timing.Roll)

		require.NoError(t, e.MovePlayer(1, 50, 0, false, false))
		sched.Advance(10 * time.Second)

		s := e.State()
		assert.Equal(t, 50, s.Players[0].Position)
		assert.Equal(t, []Move{{From: 0, To: 50, TurnNumber: 1}}, s.Players[0].MoveHistory)
		assert.Equal(t, 1, s.CurrentPlayerIndex)
	})
}

func TestMovePlayer(t *testing.T) {
	e, sched := newTestEngine(t)
	require.NoError(t, e.InitGame(2, 10))

	assert.True(t, errors.Is(e.MovePlayer(9, 5, 0, false, false), ErrUnknownPlayer))
	assert.True(t, errors.Is(e.MovePlayer(1, 101, 0, false, false), ErrInvalidPosition))
	assert.True(t, errors.Is(e.MovePlayer(1, -1, 0, false, false), ErrInvalidPosition))
	assert.True(t, errors.Is(e.MovePlayer(1, 20, 0, true, true), ErrInvalidMove))

	// Landing on a ladder foot through a plain move follows the ladder.
	require.NoError(t, e.MovePlayer(1, 21, 5, false, false))
	sched.Advance(DefaultTiming().Total())
	s := e.State()
	assert.Equal(t, 42, s.Players[0].Position)
	assert.Equal(t, 1, s.Settings.TurnCount)

	// A hazard-flagged move shares the turn number and is not resolved.
	require.NoError(t, e.MovePlayer(2, 16, 0, true, false))
	sched.Advance(DefaultTiming().Total())
	s = e.State()
	assert.Equal(t, 16, s.Players[1].Position)
	assert.Equal(t, 1, s.Settings.TurnCount)
	assert.True(t, s.Players[1].MoveHistory[0].IsSnake)
}

func TestMovePlayer_ToFinalSquareWins(t *testing.T) {
	e, sched := newTestEngine(t)
	require.NoError(t, e.InitGame(2, 8))
	require.NoError(t, e.MovePlayer(2, 64, 0, false, false))
	sched.Advance(DefaultTiming().Total())

	s := e.State()
	assert.Equal(t, StatusGameOver, s.Status)
	require.NotNil(t, s.Winner)
	assert.Equal(t, 2, s.Winner.ID)
}

func TestNextTurn(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.False(t, e.NextTurn(), "not playing")

	require.NoError(t, e.InitGame(3, 10))
	for want := 1; want <= 6; want++ {
		require.True(t, e.NextTurn())
		s := e.State()
		assert.Equal(t, want%3, s.CurrentPlayerIndex)
		assertTurnInvariants(t, s)
	}
	assert.Equal(t, 0, e.State().Settings.TurnCount, "skipping does not count as a turn")
}

func TestUpdatePlayerName(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.InitGame(2, 10))

	v := e.State().Version
	changed, err := e.UpdatePlayerName(2, "  ")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "Player 2", e.State().Players[1].Name)
	assert.Equal(t, v, e.State().Version)

	changed, err = e.UpdatePlayerName(2, "  Ada ")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Ada", e.State().Players[1].Name)

	changed, err = e.UpdatePlayerName(2, "Ada")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = e.UpdatePlayerName(7, "Bob")
	assert.True(t, errors.Is(err, ErrUnknownPlayer))
}

func TestResetGame(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.InitGame(2, 12))
	v := e.State().Version

	e.ResetGame()
	s := e.State()
	assert.Equal(t, StatusSetup, s.Status)
	assert.Empty(t, s.Players)
	assert.Empty(t, s.GameID)
	assert.Equal(t, 10, s.Settings.BoardSize)
	assert.Greater(t, s.Version, v, "versions never go backwards")
}

func TestStateIsDeepCopy(t *testing.T) {
	e, sched := newTestEngine(t, 4)
	require.NoError(t, e.InitGame(2, 10))
	require.True(t, e.RollDice())
	sched.Advance(DefaultTiming().Total())

	s := e.State()
	s.Players[0].Position = 99
	s.Players[0].MoveHistory[0].To = 99
	s.Players[0].LastMove.To = 99
	s.Settings.Snakes[0].End = 99

	fresh := e.State()
	assert.Equal(t, 14, fresh.Players[0].Position)
	assert.Equal(t, 4, fresh.Players[0].MoveHistory[0].To)
	assert.Equal(t, 14, fresh.Players[0].LastMove.To)
	assert.Equal(t, 6, fresh.Settings.Snakes[0].End)
	assert.Equal(t, 6, e.Board().Snakes[0].End)
}

func TestSubscribe(t *testing.T) {
	e, sched := newTestEngine(t, 4)

	var versions []uint64
	unsubscribe := e.Subscribe(func(s GameState) {
		versions = append(versions, s.Version)
		assertTurnInvariants(t, s)
	})

	require.NoError(t, e.InitGame(2, 10))
	require.True(t, e.RollDice())
	sched.Advance(DefaultTiming().Total())

	require.NotEmpty(t, versions)
	for i := 1; i < len(versions); i++ {
		assert.Equal(t, versions[i-1]+1, versions[i])
	}
	assert.Equal(t, e.State().Version, versions[len(versions)-1])

	unsubscribe()
	count := len(versions)
	e.NextTurn()
	assert.Len(t, versions, count)
}

func TestFullGameWithSeededDice(t *testing.T) {
	for _, size := range board.SupportedSizes {
		sched := NewManualScheduler()
		e := NewEngine(
			WithDice(NewSeededDice(int64(size))),
			WithScheduler(sched),
			WithLogger(quietLogger()),
		)
		require.NoError(t, e.InitGame(3, size))

		plainMoves := 0
		e.Subscribe(func(s GameState) { assertTurnInvariants(t, s) })

		for i := 0; i < 10000 && e.State().Status == StatusPlaying; i++ {
			require.True(t, e.RollDice())
			sched.RunUntilIdle(1000)
		}

		s := e.State()
		require.Equal(t, StatusGameOver, s.Status, "size %d never finished", size)
		require.NotNil(t, s.Winner)
		assert.Equal(t, size*size, s.Winner.Position)
		for _, p := range s.Players {
			for _, m := range p.MoveHistory {
				if !m.IsSnake && !m.IsLadder {
					plainMoves++
				}
			}
		}
		assert.Equal(t, s.Settings.TurnCount, plainMoves)
	}
}
