package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/snakes-ladders/game/archive"
	"github.com/wricardo/snakes-ladders/game/board"
	"github.com/wricardo/snakes-ladders/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, boardName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	InitGame(ctx context.Context, sessionID string, req InitRequest) (*engine.GameState, error)
	RollDice(ctx context.Context, sessionID string) (*ActionResult, error)
	MovePlayer(ctx context.Context, sessionID string, req MoveRequest) (*engine.GameState, error)
	NextTurn(ctx context.Context, sessionID string) (*ActionResult, error)
	UpdatePlayerName(ctx context.Context, sessionID string, playerID int, name string) (*ActionResult, error)
	ResetGame(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetBoard(ctx context.Context, sessionID string) (*BoardView, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Boards
	ListBoards(ctx context.Context) ([]*BoardInfo, error)
	LoadBoard(ctx context.Context, boardName string) (*board.Board, error)
	SaveBoard(ctx context.Context, boardName string, b *board.Board) error

	// Results
	ListResults(ctx context.Context, limit int) ([]archive.Result, error)

	// Close waits for results that are still being written
	Close() error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, opts ...engine.Option) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// BoardManager handles board loading
type BoardManager interface {
	LoadBoard(name string) (*board.Board, error)
	ListBoards() ([]*BoardInfo, error)
	GetDefault() *board.Board
	SaveBoard(name string, b *board.Board) error
}

// ResultStore keeps finished games
type ResultStore interface {
	RecordResult(ctx context.Context, r archive.Result) error
	ListResults(ctx context.Context, limit int) ([]archive.Result, error)
}

// Publisher receives every snapshot of every session
type Publisher interface {
	PublishState(sessionID string, state engine.GameState)
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         engine.Engine
	Board          *board.Board // board used when InitGame names none
	CreatedAt      time.Time
	LastAccessedAt time.Time // set at creation, then use Touch and LastAccessed

	mu          sync.Mutex
	unsubscribe func()
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.LastAccessedAt = t
	s.mu.Unlock()
}

// LastAccessed returns the time of the most recent access
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastAccessedAt
}

// Close stops the session's engine from delivering snapshots to the
// service. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Session) setUnsubscribe(fn func()) {
	s.mu.Lock()
	s.unsubscribe = fn
	s.mu.Unlock()
}
