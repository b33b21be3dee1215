package service

import (
	"time"

	"github.com/wricardo/snakes-ladders/game/board"
	"github.com/wricardo/snakes-ladders/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	BoardName      string            `json:"board_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

// InitRequest starts a game. BoardName takes precedence over BoardSize;
// with neither, the session's board is used.
type InitRequest struct {
	Players   int    `json:"players"`
	BoardSize int    `json:"board_size,omitempty"`
	BoardName string `json:"board_name,omitempty"`
}

// MoveRequest places a player directly on a square
type MoveRequest struct {
	PlayerID  int  `json:"player_id"`
	Position  int  `json:"position"`
	DiceValue int  `json:"dice_value"`
	IsSnake   bool `json:"is_snake"`
	IsLadder  bool `json:"is_ladder"`
}

// ActionResult reports a command that may be ignored by the engine
type ActionResult struct {
	Accepted  bool              `json:"accepted"`
	Reason    string            `json:"reason,omitempty"` // why the command was ignored
	GameState *engine.GameState `json:"game_state"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Order    string `json:"order"`     // "asc" or "desc"
	PlayerID int    `json:"player_id"` // 0 = every player
}

// HistoryEntry is one move with the player who made it
type HistoryEntry struct {
	PlayerID   int    `json:"player_id"`
	PlayerName string `json:"player_name"`
	engine.Move
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []HistoryEntry `json:"moves"`
	TotalMoves  int            `json:"total_moves"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// BoardInfo provides information about a board in the catalogue
type BoardInfo struct {
	Filename    string `json:"filename,omitempty"`
	BoardID     string `json:"board_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	Size        int    `json:"size"`
	Snakes      int    `json:"snakes"`
	Ladders     int    `json:"ladders"`
	Builtin     bool   `json:"builtin"`
}

// HazardView is a snake or ladder with its render colour and grid endpoints
type HazardView struct {
	ID        int                `json:"id"`
	Start     int                `json:"start"`
	End       int                `json:"end"`
	Color     string             `json:"color"`
	StartGrid board.GridPosition `json:"start_grid"`
	EndGrid   board.GridPosition `json:"end_grid"`
}

// TokenView locates a player's token on the grid
type TokenView struct {
	PlayerID int                `json:"player_id"`
	Name     string             `json:"name"`
	Color    engine.PlayerColor `json:"color"`
	Position int                `json:"position"`
	Grid     board.GridPosition `json:"grid"`
	Active   bool               `json:"active"`
}

// BoardView is everything a renderer needs to draw the board
type BoardView struct {
	Name    string       `json:"name"`
	Size    int          `json:"size"`
	Cells   []board.Cell `json:"cells"`
	Snakes  []HazardView `json:"snakes"`
	Ladders []HazardView `json:"ladders"`
	Tokens  []TokenView  `json:"tokens"`
}
