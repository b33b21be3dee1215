package board

// Cell is one numbered square annotated with the hazards that touch it.
// SnakeID and LadderID are hazard indexes, used to pick consistent colours.
type Cell struct {
	Number         int  `json:"number"`
	HasSnakeHead   bool `json:"has_snake_head,omitempty"`
	HasSnakeTail   bool `json:"has_snake_tail,omitempty"`
	HasLadderStart bool `json:"has_ladder_start,omitempty"`
	HasLadderEnd   bool `json:"has_ladder_end,omitempty"`
	SnakeID        *int `json:"snake_id,omitempty"`
	LadderID       *int `json:"ladder_id,omitempty"`
}

// GridPosition is a 0-based row/column pair. Row 0 is the top of the board.
type GridPosition struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// GenerateBoard returns size² cells in square order, marking hazard endpoints.
// Endpoints that fall outside the board are ignored.
func GenerateBoard(size int, snakes []Snake, ladders []Ladder) []Cell {
	total := size * size
	if total <= 0 {
		return []Cell{}
	}

	cells := make([]Cell, total)
	for i := range cells {
		cells[i] = Cell{Number: i + 1}
	}

	at := func(square int) *Cell {
		if square < 1 || square > total {
			return nil
		}
		return &cells[square-1]
	}

	for i, s := range snakes {
		id := i
		if head := at(s.Start); head != nil {
			head.HasSnakeHead = true
			head.SnakeID = &id
		}
		if tail := at(s.End); tail != nil {
			tail.HasSnakeTail = true
			tail.SnakeID = &id
		}
	}

	for i, l := range ladders {
		id := i
		if foot := at(l.Start); foot != nil {
			foot.HasLadderStart = true
			foot.LadderID = &id
		}
		if top := at(l.End); top != nil {
			top.HasLadderEnd = true
			top.LadderID = &id
		}
	}

	return cells
}

// PositionToGrid maps a square number to grid coordinates.
// Position 0 maps to the off-board sentinel (size, -1).
func PositionToGrid(position, size int) GridPosition {
	if position == 0 {
		return GridPosition{Row: size, Col: -1}
	}

	offset := position - 1
	band := offset / size
	row := size - 1 - band
	col := offset % size

	// Even bands (counted from the bottom) run right to left.
	if band%2 == 0 {
		col = size - 1 - col
	}

	return GridPosition{Row: row, Col: col}
}

// GridToPosition is the inverse of PositionToGrid for on-board coordinates.
// It returns false when row or col is outside the board.
func GridToPosition(row, col, size int) (int, bool) {
	if row < 0 || row >= size || col < 0 || col >= size {
		return 0, false
	}

	band := size - 1 - row
	offset := col
	if band%2 == 0 {
		offset = size - 1 - col
	}

	return band*size + offset + 1, true
}

var snakeColors = []string{
	"#ef4444", // red
	"#f97316", // orange
	"#84cc16", // lime
	"#06b6d4", // cyan
	"#8b5cf6", // violet
	"#ec4899", // pink
}

var ladderColors = []string{
	"#eab308", // yellow
	"#22c55e", // green
	"#3b82f6", // blue
	"#d946ef", // fuchsia
	"#f43f5e", // rose
	"#0ea5e9", // sky
}

// SnakeColor returns the display colour for the snake with index id.
func SnakeColor(id int) string {
	return snakeColors[mod(id, len(snakeColors))]
}

// LadderColor returns the display colour for the ladder with index id.
func LadderColor(id int) string {
	return ladderColors[mod(id, len(ladderColors))]
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
