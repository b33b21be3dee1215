package engine

import "github.com/wricardo/snakes-ladders/game/board"

// Status is the lifecycle phase of a game
type Status string

const (
	StatusSetup    Status = "setup"
	StatusPlaying  Status = "playing"
	StatusGameOver Status = "gameOver"

	// Validation constants
	MinPlayers = 2
	MaxPlayers = 6
	DiceFaces  = 6
)

// PlayerColor is a token colour from the fixed palette
type PlayerColor string

const (
	Red    PlayerColor = "red"
	Blue   PlayerColor = "blue"
	Green  PlayerColor = "green"
	Yellow PlayerColor = "yellow"
	Purple PlayerColor = "purple"
	Orange PlayerColor = "orange"
)

// Palette assigns colours by turn order. It has exactly MaxPlayers entries.
var Palette = [MaxPlayers]PlayerColor{Red, Blue, Green, Yellow, Purple, Orange}

// Move is an immutable record of one position change
type Move struct {
	From       int  `json:"from"`
	To         int  `json:"to"`
	DiceValue  int  `json:"dice_value"`
	IsSnake    bool `json:"is_snake"`
	IsLadder   bool `json:"is_ladder"`
	TurnNumber int  `json:"turn_number"`
}

// Player represents one seat at the table
type Player struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Color       PlayerColor `json:"color"`
	Position    int         `json:"position"` // 0 = not yet on the board
	IsActive    bool        `json:"is_active"`
	MoveHistory []Move      `json:"move_history"`
	LastMove    *Move       `json:"last_move"`
	Animating   bool        `json:"animating"`
}

// Dice is the die as currently displayed. Value is only authoritative once
// Rolling is false.
type Dice struct {
	Value   int  `json:"value"`
	Rolling bool `json:"rolling"`
}

// Settings holds the board configuration and the running turn counter
type Settings struct {
	BoardName       string         `json:"board_name"`
	BoardSize       int            `json:"board_size"`
	NumberOfPlayers int            `json:"number_of_players"`
	Snakes          []board.Snake  `json:"snakes"`
	Ladders         []board.Ladder `json:"ladders"`
	TurnCount       int            `json:"turn_count"`
}

// GameState represents the complete game state
type GameState struct {
	GameID             string   `json:"game_id,omitempty"`
	Version            uint64   `json:"version"`
	Settings           Settings `json:"settings"`
	Players            []Player `json:"players"`
	CurrentPlayerIndex int      `json:"current_player_index"`
	Dice               Dice     `json:"dice"`
	Winner             *Player  `json:"winner"`
	Status             Status   `json:"status"`
	MoveInProgress     bool     `json:"move_in_progress"`
	Message            string   `json:"message"`
}
