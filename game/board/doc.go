// Package board holds the Snakes and Ladders board model and its geometry.
//
// A Board is a square of Size×Size numbered squares (1..Size²) plus a set of
// snakes and ladders. Everything in this package is stateless: boards are
// plain values, and the geometry helpers only need the board size and the
// hazard lists.
//
// Geometry:
//
// Squares are numbered in a boustrophedon (zig-zag) path that starts in the
// bottom-right corner. Row 0 is the top row and row Size-1 is the entry row:
//
//	// 3x3 board
//	row 0:  9 8 7
//	row 1:  4 5 6
//	row 2:  3 2 1
//
// Position 0 means "not yet on the board" and maps to the sentinel grid
// position (Size, -1), one row below the board and off its left edge.
//
// Usage:
//
//	b, err := board.Default(10)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cells := board.GenerateBoard(b.Size, b.Snakes, b.Ladders)
//	pos := board.PositionToGrid(16, b.Size) // {Row: 8, Col: 5}
package board
