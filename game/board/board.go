package board

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

const (
	// Validation constants
	MinSize     = 4
	MaxSize     = 20
	DefaultSize = 10
)

var (
	ErrInvalidBoard    = errors.New("invalid board")
	ErrUnsupportedSize = errors.New("unsupported board size")
)

// SupportedSizes lists the sizes that have a built-in default board.
var SupportedSizes = []int{8, 10, 12}

// Snake slides a player from Start down to End.
type Snake struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Ladder lifts a player from Start up to End.
type Ladder struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Board describes a playable board: its size and hazards.
type Board struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Size        int      `json:"size" yaml:"size"`
	Snakes      []Snake  `json:"snakes" yaml:"snakes"`
	Ladders     []Ladder `json:"ladders" yaml:"ladders"`
}

// MaxPosition returns the final square number (Size²).
func (b *Board) MaxPosition() int {
	return b.Size * b.Size
}

// SnakeAt returns the snake whose head is on position, if any.
func (b *Board) SnakeAt(position int) (Snake, bool) {
	for _, s := range b.Snakes {
		if s.Start == position {
			return s, true
		}
	}
	return Snake{}, false
}

// LadderAt returns the ladder whose foot is on position, if any.
func (b *Board) LadderAt(position int) (Ladder, bool) {
	for _, l := range b.Ladders {
		if l.Start == position {
			return l, true
		}
	}
	return Ladder{}, false
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := *b
	c.Snakes = append([]Snake(nil), b.Snakes...)
	c.Ladders = append([]Ladder(nil), b.Ladders...)
	return &c
}

// Validate checks the board invariants and reports every violation at once.
// The returned error wraps ErrInvalidBoard.
func (b *Board) Validate() error {
	problems := b.Problems()
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidBoard, multierr.Combine(problems...))
}

// Problems returns the individual invariant violations, or nil for a valid board.
func (b *Board) Problems() []error {
	var errs error

	if b.Size < MinSize || b.Size > MaxSize {
		errs = multierr.Append(errs, fmt.Errorf("size must be between %d and %d, got %d", MinSize, MaxSize, b.Size))
		return multierr.Errors(errs)
	}

	last := b.MaxPosition()
	starts := make(map[int]string, len(b.Snakes)+len(b.Ladders))

	claim := func(label string, start int) error {
		if other, taken := starts[start]; taken {
			return fmt.Errorf("%s starts on square %d, already used by %s", label, start, other)
		}
		starts[start] = label
		return nil
	}

	for i, s := range b.Snakes {
		label := fmt.Sprintf("snake %d (%d->%d)", i, s.Start, s.End)
		errs = multierr.Append(errs, checkEndpoints(label, s.Start, s.End, last))
		if s.End >= s.Start {
			errs = multierr.Append(errs, fmt.Errorf("%s must end below its start", label))
		}
		errs = multierr.Append(errs, claim(label, s.Start))
	}

	for i, l := range b.Ladders {
		label := fmt.Sprintf("ladder %d (%d->%d)", i, l.Start, l.End)
		errs = multierr.Append(errs, checkEndpoints(label, l.Start, l.End, last))
		if l.End <= l.Start {
			errs = multierr.Append(errs, fmt.Errorf("%s must end above its start", label))
		}
		errs = multierr.Append(errs, claim(label, l.Start))
	}

	return multierr.Errors(errs)
}

// checkEndpoints rejects hazard squares outside the open range (1, last).
func checkEndpoints(label string, start, end, last int) error {
	var errs error
	if start <= 1 || start >= last {
		errs = multierr.Append(errs, fmt.Errorf("%s start must be between 2 and %d, got %d", label, last-1, start))
	}
	if end <= 1 || end >= last {
		errs = multierr.Append(errs, fmt.Errorf("%s end must be between 2 and %d, got %d", label, last-1, end))
	}
	return errs
}

// IsSupportedSize reports whether size has a built-in default board.
func IsSupportedSize(size int) bool {
	_, ok := builtins[size]
	return ok
}

// Default returns a copy of the built-in board for size.
func Default(size int) (*Board, error) {
	b, ok := builtins[size]
	if !ok {
		return nil, fmt.Errorf("%w: %d (supported: %v)", ErrUnsupportedSize, size, SupportedSizes)
	}
	return b.Clone(), nil
}

// Builtins returns copies of every built-in board, ordered by size.
func Builtins() []*Board {
	boards := make([]*Board, 0, len(SupportedSizes))
	for _, size := range SupportedSizes {
		boards = append(boards, builtins[size].Clone())
	}
	return boards
}

// BuiltinName returns the catalogue name of the built-in board for size.
func BuiltinName(size int) string {
	return fmt.Sprintf("classic-%d", size)
}

var builtins = map[int]*Board{
	8: {
		Name:        BuiltinName(8),
		Description: "Quick 8x8 board",
		Size:        8,
		Snakes: []Snake{
			{Start: 17, End: 7},
			{Start: 31, End: 14},
			{Start: 44, End: 22},
			{Start: 52, End: 35},
			{Start: 62, End: 43},
		},
		Ladders: []Ladder{
			{Start: 3, End: 20},
			{Start: 8, End: 29},
			{Start: 19, End: 38},
			{Start: 33, End: 50},
			{Start: 41, End: 58},
		},
	},
	10: {
		Name:        BuiltinName(10),
		Description: "Classic 10x10 board",
		Size:        10,
		Snakes: []Snake{
			{Start: 16, End: 6},
			{Start: 47, End: 26},
			{Start: 49, End: 11},
			{Start: 56, End: 53},
			{Start: 62, End: 19},
			{Start: 64, End: 60},
			{Start: 87, End: 24},
			{Start: 93, End: 73},
			{Start: 95, End: 75},
			{Start: 98, End: 78},
		},
		Ladders: []Ladder{
			{Start: 2, End: 38},
			{Start: 4, End: 14},
			{Start: 9, End: 31},
			{Start: 21, End: 42},
			{Start: 28, End: 84},
			{Start: 36, End: 44},
			{Start: 51, End: 67},
			{Start: 71, End: 91},
			{Start: 80, End: 99},
		},
	},
	12: {
		Name:        BuiltinName(12),
		Description: "Long 12x12 board",
		Size:        12,
		Snakes: []Snake{
			{Start: 25, End: 5},
			{Start: 47, End: 19},
			{Start: 68, End: 44},
			{Start: 83, End: 61},
			{Start: 99, End: 54},
			{Start: 112, End: 90},
			{Start: 127, End: 96},
			{Start: 138, End: 117},
			{Start: 142, End: 103},
		},
		Ladders: []Ladder{
			{Start: 3, End: 22},
			{Start: 11, End: 40},
			{Start: 30, End: 57},
			{Start: 52, End: 78},
			{Start: 73, End: 95},
			{Start: 88, End: 109},
			{Start: 104, End: 131},
			{Start: 120, End: 139},
		},
	},
}
