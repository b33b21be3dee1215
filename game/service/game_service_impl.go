package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/snakes-ladders/game/archive"
	"github.com/wricardo/snakes-ladders/game/board"
	"github.com/wricardo/snakes-ladders/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrBoardNotFound   = errors.New("board not found")
)

const recordTimeout = 5 * time.Second

// Option configures the game service
type Option func(*gameServiceImpl)

// WithResults records every finished game in store
func WithResults(store ResultStore) Option {
	return func(s *gameServiceImpl) { s.results = store }
}

// WithPublisher forwards every engine snapshot to p
func WithPublisher(p Publisher) Option {
	return func(s *gameServiceImpl) { s.publisher = p }
}

// WithEngineOptions applies opts to every engine the service creates
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *gameServiceImpl) { s.engineOpts = append(s.engineOpts, opts...) }
}

// WithLogger sets the service log entry
func WithLogger(l *logrus.Entry) Option {
	return func(s *gameServiceImpl) { s.log = l }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions   SessionManager
	boards     BoardManager
	results    ResultStore
	publisher  Publisher
	engineOpts []engine.Option
	log        *logrus.Entry
	mu         sync.RWMutex

	recordMu sync.Mutex
	recorded map[string]string // session ID -> last game ID sent to the archive
	pending  sync.WaitGroup
	closed   bool
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, boards BoardManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		boards:   boards,
		log:      logrus.WithField("component", "service"),
		recorded: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session that plays on boardName, or on
// the default board when boardName is empty.
func (s *gameServiceImpl) CreateSession(ctx context.Context, boardName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.boards.GetDefault()
	if boardName != "" {
		var err error
		b, err = s.loadBoard(boardName)
		if err != nil {
			return nil, err
		}
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", s.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.Board = b

	id := sess.ID
	unsubscribe := sess.Engine.Subscribe(func(state engine.GameState) {
		s.onState(id, state)
	})
	sess.setUnsubscribe(func() {
		unsubscribe()
		s.forget(id)
	})

	s.log.WithFields(logrus.Fields{"session_id": id, "board": b.Name}).Info("Session created")
	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session and abandons its game
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	sess.Close()
	// Drops any pending roll steps
	sess.Engine.ResetGame()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.log.WithField("session_id", sess.ID).Info("Session deleted")
	return nil
}

// InitGame starts a new game in the session
func (s *gameServiceImpl) InitGame(ctx context.Context, sessionID string, req InitRequest) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	players := req.Players
	if players == 0 {
		players = engine.MinPlayers
	}

	switch {
	case req.BoardName != "":
		b, err := s.loadBoard(req.BoardName)
		if err != nil {
			return nil, err
		}
		if err := sess.Engine.InitGameWithBoard(players, b); err != nil {
			return nil, err
		}
		s.mu.Lock()
		sess.Board = b
		s.mu.Unlock()

	case req.BoardSize != 0:
		if err := sess.Engine.InitGame(players, req.BoardSize); err != nil {
			return nil, err
		}
		s.mu.Lock()
		sess.Board = sess.Engine.Board()
		s.mu.Unlock()

	default:
		s.mu.RLock()
		b := sess.Board
		s.mu.RUnlock()
		if err := sess.Engine.InitGameWithBoard(players, b); err != nil {
			return nil, err
		}
	}

	state := sess.Engine.State()
	return &state, nil
}

// RollDice starts a roll for the current player. The result reports
// whether the engine accepted it; the committed value appears in later
// snapshots.
func (s *gameServiceImpl) RollDice(ctx context.Context, sessionID string) (*ActionResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	before := sess.Engine.State()
	accepted := sess.Engine.RollDice()
	state := sess.Engine.State()

	result := &ActionResult{Accepted: accepted, GameState: &state}
	if !accepted {
		result.Reason = busyReason(before)
	}
	return result, nil
}

// MovePlayer places a player directly on a square
func (s *gameServiceImpl) MovePlayer(ctx context.Context, sessionID string, req MoveRequest) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.MovePlayer(req.PlayerID, req.Position, req.DiceValue, req.IsSnake, req.IsLadder); err != nil {
		return nil, err
	}
	state := sess.Engine.State()
	return &state, nil
}

// NextTurn passes the turn to the next player
func (s *gameServiceImpl) NextTurn(ctx context.Context, sessionID string) (*ActionResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	accepted := sess.Engine.NextTurn()
	state := sess.Engine.State()

	result := &ActionResult{Accepted: accepted, GameState: &state}
	if !accepted {
		result.Reason = engine.ErrNotPlaying.Error()
	}
	return result, nil
}

// UpdatePlayerName renames a player
func (s *gameServiceImpl) UpdatePlayerName(ctx context.Context, sessionID string, playerID int, name string) (*ActionResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	changed, err := sess.Engine.UpdatePlayerName(playerID, name)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.State()

	result := &ActionResult{Accepted: changed, GameState: &state}
	if !changed {
		result.Reason = "name is blank or unchanged"
	}
	return result, nil
}

// ResetGame returns the session to setup
func (s *gameServiceImpl) ResetGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.ResetGame()
	state := sess.Engine.State()
	return &state, nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.State()
	return &state, nil
}

// GetBoard returns the board in play with hazard colours and token
// coordinates resolved
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string) (*BoardView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.State()
	b := sess.Engine.Board()

	view := &BoardView{
		Name:    b.Name,
		Size:    b.Size,
		Cells:   board.GenerateBoard(b.Size, b.Snakes, b.Ladders),
		Snakes:  make([]HazardView, 0, len(b.Snakes)),
		Ladders: make([]HazardView, 0, len(b.Ladders)),
		Tokens:  make([]TokenView, 0, len(state.Players)),
	}

	for i, sn := range b.Snakes {
		view.Snakes = append(view.Snakes, HazardView{
			ID:        i,
			Start:     sn.Start,
			End:       sn.End,
			Color:     board.SnakeColor(i),
			StartGrid: board.PositionToGrid(sn.Start, b.Size),
			EndGrid:   board.PositionToGrid(sn.End, b.Size),
		})
	}
	for i, l := range b.Ladders {
		view.Ladders = append(view.Ladders, HazardView{
			ID:        i,
			Start:     l.Start,
			End:       l.End,
			Color:     board.LadderColor(i),
			StartGrid: board.PositionToGrid(l.Start, b.Size),
			EndGrid:   board.PositionToGrid(l.End, b.Size),
		})
	}
	for _, p := range state.Players {
		view.Tokens = append(view.Tokens, TokenView{
			PlayerID: p.ID,
			Name:     p.Name,
			Color:    p.Color,
			Position: p.Position,
			Grid:     board.PositionToGrid(p.Position, b.Size),
			Active:   p.IsActive,
		})
	}

	return view, nil
}

// GetMoveHistory returns paginated move history merged across players in
// play order
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.State()
	history := mergeHistory(state.Players, opts.PlayerID)
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []HistoryEntry{}
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListBoards returns the board catalogue
func (s *gameServiceImpl) ListBoards(ctx context.Context) ([]*BoardInfo, error) {
	return s.boards.ListBoards()
}

// LoadBoard loads a board from the catalogue
func (s *gameServiceImpl) LoadBoard(ctx context.Context, boardName string) (*board.Board, error) {
	return s.loadBoard(boardName)
}

// SaveBoard saves a custom board
func (s *gameServiceImpl) SaveBoard(ctx context.Context, boardName string, b *board.Board) error {
	return s.boards.SaveBoard(boardName, b)
}

// ListResults returns recently finished games. Without an archive the list
// is empty.
func (s *gameServiceImpl) ListResults(ctx context.Context, limit int) ([]archive.Result, error) {
	if s.results == nil {
		return []archive.Result{}, nil
	}
	return s.results.ListResults(ctx, limit)
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// loadBoard wraps not-found errors with the names that do exist
func (s *gameServiceImpl) loadBoard(name string) (*board.Board, error) {
	b, err := s.boards.LoadBoard(name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, ErrBoardNotFound) {
		return nil, fmt.Errorf("failed to load board %s: %w", name, err)
	}

	available, listErr := s.boards.ListBoards()
	if listErr != nil || len(available) == 0 {
		return nil, fmt.Errorf("%w: '%s'. Use /api/boards to list available boards", ErrBoardNotFound, name)
	}
	ids := make([]string, 0, len(available))
	for _, info := range available {
		ids = append(ids, info.BoardID)
	}
	return nil, fmt.Errorf("%w: '%s'. Available boards: %v", ErrBoardNotFound, name, ids)
}

// onState runs for every snapshot of every session
func (s *gameServiceImpl) onState(sessionID string, state engine.GameState) {
	if s.publisher != nil {
		s.publisher.PublishState(sessionID, state)
	}

	if s.results == nil || state.Status != engine.StatusGameOver || state.Winner == nil {
		return
	}

	s.recordMu.Lock()
	if s.closed || s.recorded[sessionID] == state.GameID {
		s.recordMu.Unlock()
		return
	}
	s.recorded[sessionID] = state.GameID
	s.pending.Add(1)
	s.recordMu.Unlock()

	go func() {
		defer s.pending.Done()
		s.record(sessionID, state)
	}()
}

// forget drops the archive bookkeeping of a closed session
func (s *gameServiceImpl) forget(sessionID string) {
	s.recordMu.Lock()
	delete(s.recorded, sessionID)
	s.recordMu.Unlock()
}

// Close waits for in-flight result writes. Games finishing afterwards are
// not recorded.
func (s *gameServiceImpl) Close() error {
	s.recordMu.Lock()
	s.closed = true
	s.recordMu.Unlock()

	s.pending.Wait()
	return nil
}

func (s *gameServiceImpl) record(sessionID string, state engine.GameState) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	r := resultFromState(sessionID, state)
	log := s.log.WithFields(logrus.Fields{"session_id": sessionID, "game_id": state.GameID})
	if err := s.results.RecordResult(ctx, r); err != nil {
		log.WithError(err).Warn("Failed to record result")
		return
	}
	log.WithField("winner", r.WinnerName).Info("Result recorded")
}

func resultFromState(sessionID string, state engine.GameState) archive.Result {
	r := archive.Result{
		GameID:      state.GameID,
		SessionID:   sessionID,
		BoardName:   state.Settings.BoardName,
		BoardSize:   state.Settings.BoardSize,
		WinnerID:    state.Winner.ID,
		WinnerName:  state.Winner.Name,
		WinnerColor: string(state.Winner.Color),
		Turns:       state.Settings.TurnCount,
		Players:     make([]archive.PlayerResult, 0, len(state.Players)),
		FinishedAt:  time.Now(),
	}
	for _, p := range state.Players {
		r.Players = append(r.Players, archive.PlayerResult{
			ID:       p.ID,
			Name:     p.Name,
			Color:    string(p.Color),
			Position: p.Position,
			Moves:    len(p.MoveHistory),
		})
	}
	return r
}

func sessionInfo(sess *Session) *SessionInfo {
	state := sess.Engine.State()
	info := &SessionInfo{
		ID:             sess.ID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		GameState:      &state,
	}
	if sess.Board != nil {
		info.BoardName = sess.Board.Name
	}
	return info
}

// busyReason explains why the engine ignored a roll
func busyReason(state engine.GameState) string {
	switch {
	case state.Status != engine.StatusPlaying:
		return engine.ErrNotPlaying.Error()
	case state.Dice.Rolling:
		return "dice are already rolling"
	case state.MoveInProgress:
		return "a move is in progress"
	default:
		return "roll ignored"
	}
}

// mergeHistory flattens every player's moves into play order. Moves sharing
// a turn number keep their per-player order.
func mergeHistory(players []engine.Player, playerID int) []HistoryEntry {
	var entries []HistoryEntry
	for _, p := range players {
		if playerID != 0 && p.ID != playerID {
			continue
		}
		for _, m := range p.MoveHistory {
			entries = append(entries, HistoryEntry{PlayerID: p.ID, PlayerName: p.Name, Move: m})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TurnNumber < entries[j].TurnNumber
	})
	return entries
}
