package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/snakes-ladders/game/board"
)

var (
	ErrInvalidPlayerCount   = errors.New("invalid number of players")
	ErrUnsupportedBoardSize = board.ErrUnsupportedSize
	ErrNotPlaying           = errors.New("game is not in progress")
	ErrUnknownPlayer        = errors.New("unknown player")
	ErrInvalidPosition      = errors.New("position out of range")
	ErrInvalidMove          = errors.New("invalid move")
)

const (
	msgWelcome = "Welcome to Snakes and Ladders! Start a new game."
	msgStarted = "Game started! Roll the dice to begin."
	msgRolling = "Rolling the dice..."
	msgReset   = "Game reset. Set up a new game!"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	InitGame(numberOfPlayers, boardSize int) error
	InitGameWithBoard(numberOfPlayers int, b *board.Board) error
	ResetGame()

	// Turn operations
	RollDice() bool
	MovePlayer(playerID, newPosition, diceValue int, isSnake, isLadder bool) error
	NextTurn() bool
	UpdatePlayerName(playerID int, name string) (bool, error)

	// Observation
	State() GameState
	Board() *board.Board
	Subscribe(fn func(GameState)) (unsubscribe func())
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithDice sets the source of committed die values
func WithDice(d DiceSource) Option {
	return func(e *GameEngine) { e.dice = d }
}

// WithScheduler sets where delayed steps run
func WithScheduler(s Scheduler) Option {
	return func(e *GameEngine) { e.sched = s }
}

// WithTiming sets the step delays
func WithTiming(t Timing) Option {
	return func(e *GameEngine) { e.timing = t }
}

// WithLogger sets the base log entry
func WithLogger(l *logrus.Entry) Option {
	return func(e *GameEngine) { e.baseLog = l }
}

type subscriber struct {
	id int
	fn func(GameState)
}

// GameEngine implements the Engine interface. It is the only writer of its
// GameState; every exported method is safe for concurrent use.
type GameEngine struct {
	mu    sync.Mutex
	pubMu sync.Mutex // serialises publication so listeners see versions in order

	state  GameState
	board  *board.Board
	dice   DiceSource
	faces  *rand.Rand
	sched  Scheduler
	timing Timing
	seq    uint64

	subs    []subscriber
	nextSub int

	baseLog *logrus.Entry
	log     *logrus.Entry
}

// NewEngine creates an engine in the setup phase with the default board
func NewEngine(opts ...Option) *GameEngine {
	e := &GameEngine{
		dice:    NewRandomDice(),
		faces:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sched:   TimerScheduler{},
		timing:  DefaultTiming(),
		baseLog: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.baseLog

	b, _ := board.Default(board.DefaultSize)
	e.board = b
	e.state = setupState(b, msgWelcome)
	return e
}

func setupState(b *board.Board, message string) GameState {
	return GameState{
		Settings:           settingsFor(b, MinPlayers),
		Players:            []Player{},
		CurrentPlayerIndex: 0,
		Dice:               Dice{Value: 1},
		Status:             StatusSetup,
		Message:            message,
	}
}

func settingsFor(b *board.Board, players int) Settings {
	return Settings{
		BoardName:       b.Name,
		BoardSize:       b.Size,
		NumberOfPlayers: players,
		Snakes:          append([]board.Snake{}, b.Snakes...),
		Ladders:         append([]board.Ladder{}, b.Ladders...),
	}
}

// InitGame starts a new game on the built-in board of the given size
func (e *GameEngine) InitGame(numberOfPlayers, boardSize int) error {
	b, err := board.Default(boardSize)
	if err != nil {
		return err
	}
	return e.start(numberOfPlayers, b)
}

// InitGameWithBoard starts a new game on a custom board
func (e *GameEngine) InitGameWithBoard(numberOfPlayers int, b *board.Board) error {
	if b == nil {
		return fmt.Errorf("%w: board cannot be nil", board.ErrInvalidBoard)
	}
	if err := b.Validate(); err != nil {
		return err
	}
	return e.start(numberOfPlayers, b.Clone())
}

func (e *GameEngine) start(numberOfPlayers int, b *board.Board) error {
	if numberOfPlayers < MinPlayers || numberOfPlayers > MaxPlayers {
		return fmt.Errorf("%w: %d (must be between %d and %d)",
			ErrInvalidPlayerCount, numberOfPlayers, MinPlayers, MaxPlayers)
	}

	players := make([]Player, numberOfPlayers)
	for i := range players {
		players[i] = Player{
			ID:          i + 1,
			Name:        fmt.Sprintf("Player %d", i+1),
			Color:       Palette[i],
			IsActive:    i == 0,
			MoveHistory: []Move{},
		}
	}

	gameID := uuid.NewString()
	e.mutate(func() bool {
		e.seq++
		e.board = b
		e.log = e.baseLog.WithField("game_id", gameID)
		e.state = GameState{
			GameID:             gameID,
			Version:            e.state.Version,
			Settings:           settingsFor(b, numberOfPlayers),
			Players:            players,
			CurrentPlayerIndex: 0,
			Dice:               Dice{Value: 1},
			Status:             StatusPlaying,
			Message:            msgStarted,
		}
		return true
	})

	e.log.WithFields(logrus.Fields{
		"players": numberOfPlayers,
		"board":   b.Name,
		"size":    b.Size,
	}).Info("Game started")
	return nil
}

// ResetGame abandons the current game and returns to setup. Pending steps
// from the abandoned game are dropped when they fire.
func (e *GameEngine) ResetGame() {
	e.mutate(func() bool {
		e.seq++
		b, _ := board.Default(board.DefaultSize)
		e.board = b
		version := e.state.Version
		e.state = setupState(b, msgReset)
		e.state.Version = version
		e.log.Info("Game reset")
		e.log = e.baseLog
		return true
	})
}

// NextTurn ends the current turn immediately, abandoning any roll or move
// chain still in flight.
func (e *GameEngine) NextTurn() bool {
	advanced := false
	e.mutate(func() bool {
		if e.state.Status != StatusPlaying {
			return false
		}
		e.seq++
		e.state.Dice.Rolling = false
		e.state.MoveInProgress = false
		for i := range e.state.Players {
			e.state.Players[i].Animating = false
		}
		e.advanceTurnLocked("")
		advanced = true
		return true
	})
	return advanced
}

// UpdatePlayerName renames a player. Blank names and unchanged names are
// ignored and report false.
func (e *GameEngine) UpdatePlayerName(playerID int, name string) (bool, error) {
	var err error
	changed := false
	e.mutate(func() bool {
		p := e.playerLocked(playerID)
		if p == nil {
			err = fmt.Errorf("%w: %d", ErrUnknownPlayer, playerID)
			return false
		}
		trimmed := strings.TrimSpace(name)
		if trimmed == "" || trimmed == p.Name {
			return false
		}
		p.Name = trimmed
		if e.state.Winner != nil && e.state.Winner.ID == playerID {
			e.state.Winner.Name = trimmed
		}
		changed = true
		return true
	})
	return changed, err
}

// State returns a deep copy of the current game state
func (e *GameEngine) State() GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Board returns a copy of the board in play
func (e *GameEngine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.Clone()
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Listeners run outside the engine lock but must not call mutating engine
// methods synchronously.
func (e *GameEngine) Subscribe(fn func(GameState)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextSub++
	id := e.nextSub
	e.subs = append(e.subs, subscriber{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// mutate runs fn under the engine lock. When fn reports a change the
// version is bumped and a snapshot is published to every listener.
func (e *GameEngine) mutate(fn func() bool) {
	e.mu.Lock()
	if !fn() {
		e.mu.Unlock()
		return
	}
	e.state.Version++
	snapshot := e.state.clone()
	subs := append([]subscriber(nil), e.subs...)

	e.pubMu.Lock()
	e.mu.Unlock()
	defer e.pubMu.Unlock()

	for _, s := range subs {
		s.fn(snapshot.clone())
	}
}

func (e *GameEngine) playerLocked(id int) *Player {
	for i := range e.state.Players {
		if e.state.Players[i].ID == id {
			return &e.state.Players[i]
		}
	}
	return nil
}

func (e *GameEngine) currentLocked() *Player {
	if e.state.CurrentPlayerIndex < 0 || e.state.CurrentPlayerIndex >= len(e.state.Players) {
		return nil
	}
	return &e.state.Players[e.state.CurrentPlayerIndex]
}

// advanceTurnLocked hands the turn to the next player in order. prefix is
// prepended to the turn announcement.
func (e *GameEngine) advanceTurnLocked(prefix string) {
	n := len(e.state.Players)
	if n == 0 {
		return
	}
	next := (e.state.CurrentPlayerIndex + 1) % n
	for i := range e.state.Players {
		e.state.Players[i].IsActive = i == next
	}
	e.state.CurrentPlayerIndex = next

	msg := fmt.Sprintf("%s's turn. Roll the dice!", e.state.Players[next].Name)
	if prefix != "" {
		msg = prefix + " " + msg
	}
	e.state.Message = msg
}
