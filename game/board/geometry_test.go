package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionToGrid_KnownSquares(t *testing.T) {
	tests := []struct {
		position int
		size     int
		want     GridPosition
	}{
		{position: 0, size: 10, want: GridPosition{Row: 10, Col: -1}},
		{position: 0, size: 8, want: GridPosition{Row: 8, Col: -1}},
		{position: 1, size: 10, want: GridPosition{Row: 9, Col: 9}},
		{position: 10, size: 10, want: GridPosition{Row: 9, Col: 0}},
		{position: 11, size: 10, want: GridPosition{Row: 8, Col: 0}},
		{position: 16, size: 10, want: GridPosition{Row: 8, Col: 5}},
		{position: 20, size: 10, want: GridPosition{Row: 8, Col: 9}},
		{position: 21, size: 10, want: GridPosition{Row: 7, Col: 9}},
		{position: 91, size: 10, want: GridPosition{Row: 0, Col: 0}},
		{position: 100, size: 10, want: GridPosition{Row: 0, Col: 9}},
		{position: 1, size: 3, want: GridPosition{Row: 2, Col: 2}},
		{position: 4, size: 3, want: GridPosition{Row: 1, Col: 0}},
		{position: 9, size: 3, want: GridPosition{Row: 0, Col: 0}},
		{position: 7, size: 3, want: GridPosition{Row: 0, Col: 2}},
	}

	for _, tt := range tests {
		got := PositionToGrid(tt.position, tt.size)
		assert.Equal(t, tt.want, got, "position %d on %dx%d", tt.position, tt.size, tt.size)
	}
}

func TestPositionToGrid_Bijection(t *testing.T) {
	for size := 2; size <= 12; size++ {
		seen := make(map[GridPosition]int, size*size)
		for p := 1; p <= size*size; p++ {
			g := PositionToGrid(p, size)
			require.True(t, g.Row >= 0 && g.Row < size, "row out of range for %d on %d", p, size)
			require.True(t, g.Col >= 0 && g.Col < size, "col out of range for %d on %d", p, size)

			if prev, dup := seen[g]; dup {
				t.Fatalf("size %d: squares %d and %d share %+v", size, prev, p, g)
			}
			seen[g] = p

			back, ok := GridToPosition(g.Row, g.Col, size)
			require.True(t, ok)
			assert.Equal(t, p, back)
		}
		assert.Len(t, seen, size*size)
	}
}

func TestPositionToGrid_ZigZagContinuity(t *testing.T) {
	for size := 2; size <= 12; size++ {
		for p := 1; p < size*size; p++ {
			a := PositionToGrid(p, size)
			b := PositionToGrid(p+1, size)
			dist := abs(a.Row-b.Row) + abs(a.Col-b.Col)
			assert.Equal(t, 1, dist, "squares %d and %d on %dx%d are not adjacent", p, p+1, size, size)
		}
	}
}

func TestGridToPosition_OutOfBounds(t *testing.T) {
	for _, rc := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}, {10, -1}} {
		_, ok := GridToPosition(rc[0], rc[1], 10)
		assert.False(t, ok, "row %d col %d", rc[0], rc[1])
	}
}

func TestGenerateBoard(t *testing.T) {
	snakes := []Snake{{Start: 16, End: 6}, {Start: 47, End: 26}}
	ladders := []Ladder{{Start: 4, End: 14}}

	cells := GenerateBoard(10, snakes, ladders)
	require.Len(t, cells, 100)

	for i, c := range cells {
		assert.Equal(t, i+1, c.Number)
	}

	head := cells[15]
	assert.True(t, head.HasSnakeHead)
	require.NotNil(t, head.SnakeID)
	assert.Equal(t, 0, *head.SnakeID)

	tail := cells[25]
	assert.True(t, tail.HasSnakeTail)
	require.NotNil(t, tail.SnakeID)
	assert.Equal(t, 1, *tail.SnakeID)

	foot := cells[3]
	assert.True(t, foot.HasLadderStart)
	require.NotNil(t, foot.LadderID)
	assert.Equal(t, 0, *foot.LadderID)
	assert.True(t, cells[13].HasLadderEnd)

	plain := cells[49]
	assert.Equal(t, Cell{Number: 50}, plain)
}

func TestGenerateBoard_IgnoresOffBoardEndpoints(t *testing.T) {
	cells := GenerateBoard(8, []Snake{{Start: 87, End: 24}}, nil)
	require.Len(t, cells, 64)
	assert.True(t, cells[23].HasSnakeTail)
	for _, c := range cells {
		assert.False(t, c.HasSnakeHead)
	}
}

func TestGenerateBoard_EmptySize(t *testing.T) {
	assert.Empty(t, GenerateBoard(0, nil, nil))
}

func TestHazardColorsAreCyclic(t *testing.T) {
	for id := 0; id < 18; id++ {
		assert.Equal(t, SnakeColor(id), SnakeColor(id+6))
		assert.Equal(t, LadderColor(id), LadderColor(id+6))
	}
	assert.NotEqual(t, SnakeColor(0), SnakeColor(1))
	assert.Equal(t, "#ef4444", SnakeColor(0))
	assert.Equal(t, "#eab308", LadderColor(0))
	assert.Equal(t, SnakeColor(5), SnakeColor(-1))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
