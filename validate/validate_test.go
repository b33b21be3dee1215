package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/snakes-ladders/game/board"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func hasMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateBoardFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		content   string
		wantValid bool
		wantMsg   string
	}{
		{
			name: "valid json",
			file: "mini.json",
			content: `{"name": "mini", "size": 6,
				"snakes": [{"start": 30, "end": 12}],
				"ladders": [{"start": 4, "end": 20}]}`,
			wantValid: true,
			wantMsg:   "✓ Reachability: square 36",
		},
		{
			name: "valid yaml",
			file: "mini.yaml",
			content: `name: mini-yaml
size: 5
snakes:
  - {start: 20, end: 3}
ladders:
  - {start: 6, end: 18}
`,
			wantValid: true,
			wantMsg:   "✓ Grid: 5x5 (final square 25)",
		},
		{
			name:      "invalid json",
			file:      "broken.json",
			content:   `{"name": "broken", "size": `,
			wantValid: false,
			wantMsg:   "failed to parse broken.json",
		},
		{
			name:      "size out of range",
			file:      "huge.json",
			content:   `{"name": "huge", "size": 30}`,
			wantValid: false,
			wantMsg:   "size must be between",
		},
		{
			name:      "snake going up",
			file:      "upside.json",
			content:   `{"name": "upside", "size": 8, "snakes": [{"start": 10, "end": 40}]}`,
			wantValid: false,
			wantMsg:   "must end below its start",
		},
		{
			name: "shared start square",
			file: "shared.json",
			content: `{"name": "shared", "size": 8,
				"snakes": [{"start": 20, "end": 5}],
				"ladders": [{"start": 20, "end": 50}]}`,
			wantValid: false,
			wantMsg:   "already used by",
		},
		{
			name:      "missing name",
			file:      "anon.json",
			content:   `{"size": 8}`,
			wantValid: false,
			wantMsg:   "Board name is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			result := validateBoardFile(path)

			if result.File != tt.file {
				t.Errorf("Expected file %s, got %s", tt.file, result.File)
			}
			if result.Valid != tt.wantValid {
				t.Errorf("Expected valid=%v, got %v (%v)", tt.wantValid, result.Valid, result.Errors)
			}
			if !hasMessage(result.Errors, tt.wantMsg) {
				t.Errorf("Expected message containing %q, got %v", tt.wantMsg, result.Errors)
			}
		})
	}
}

func TestValidateBoardFile_Missing(t *testing.T) {
	result := validateBoardFile(filepath.Join(t.TempDir(), "nope.json"))
	if result.Valid {
		t.Error("Expected missing file to be invalid")
	}
	if !hasMessage(result.Errors, "failed to read board file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateBoard_Builtins(t *testing.T) {
	for _, b := range board.Builtins() {
		result := validateBoard(b)
		if !result.Valid {
			t.Errorf("Built-in board %s should be valid: %v", b.Name, result.Errors)
		}
	}
}

func TestValidateReachability(t *testing.T) {
	t.Run("plain board", func(t *testing.T) {
		b := &board.Board{Name: "plain", Size: 4}
		result := validateReachability(b)
		if !result.Valid {
			t.Fatalf("Expected plain board to be reachable: %v", result.Errors)
		}
		// 16 squares: 6 + 6 + 4
		if !hasMessage(result.Errors, "square 16 in at least 3 rolls") {
			t.Errorf("Unexpected message: %v", result.Errors)
		}
	})

	t.Run("ladder shortcut", func(t *testing.T) {
		b := &board.Board{Name: "shortcut", Size: 4, Ladders: []board.Ladder{{Start: 2, End: 15}}}
		result := validateReachability(b)
		if !hasMessage(result.Errors, "square 16 in at least 2 rolls") {
			t.Errorf("Expected the ladder to shorten the game: %v", result.Errors)
		}
	})

	t.Run("wall of snakes", func(t *testing.T) {
		b := &board.Board{
			Name: "wall",
			Size: 4,
			Snakes: []board.Snake{
				{Start: 5, End: 2}, {Start: 6, End: 2}, {Start: 7, End: 3},
				{Start: 8, End: 3}, {Start: 9, End: 4}, {Start: 10, End: 4},
			},
		}
		if err := b.Validate(); err != nil {
			t.Fatalf("board should pass the structural checks: %v", err)
		}

		result := validateReachability(b)
		if result.Valid {
			t.Fatal("Expected final square to be unreachable")
		}
		if !hasMessage(result.Errors, "block the board from square 5") {
			t.Errorf("Expected wall hint, got %v", result.Errors)
		}

		full := validateBoard(b)
		if full.Valid {
			t.Error("Expected validateBoard to reject the wall")
		}
	})
}

func TestHazardWall(t *testing.T) {
	b := &board.Board{
		Size:    10,
		Snakes:  []board.Snake{{Start: 50, End: 10}, {Start: 52, End: 10}, {Start: 54, End: 10}},
		Ladders: []board.Ladder{{Start: 51, End: 90}, {Start: 53, End: 90}},
	}
	if got := hazardWall(b); got != 0 {
		t.Errorf("Expected no wall with five heads in a row, got %d", got)
	}

	b.Ladders = append(b.Ladders, board.Ladder{Start: 55, End: 90})
	if got := hazardWall(b); got != 50 {
		t.Errorf("Expected wall at 50, got %d", got)
	}
}

func TestBoardFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "name: b\nsize: 8\n")
	writeFile(t, dir, "a.json", `{"name": "a", "size": 8}`)
	writeFile(t, dir, "notes.txt", "ignored")
	single := writeFile(t, t.TempDir(), "c.yml", "name: c\nsize: 8\n")

	files, err := boardFiles([]string{dir, single})
	if err != nil {
		t.Fatalf("boardFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 files, got %v", files)
	}
	for _, f := range files {
		if strings.HasSuffix(f, ".txt") {
			t.Errorf("Unexpected file %s", f)
		}
	}

	if _, err := boardFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("Expected error for missing path")
	}
}

func TestCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `{"name": "good", "size": 8, "ladders": [{"start": 3, "end": 30}]}`)

	var buf bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &buf

	if err := cmd.Run(context.Background(), []string{"validate", "--builtins", dir}); err != nil {
		t.Fatalf("Expected all boards to be valid: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "All 4 boards are valid") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}

	writeFile(t, dir, "bad.json", `{"name": "bad", "size": 8, "ladders": [{"start": 3, "end": 99}]}`)
	buf.Reset()
	cmd = newCommand()
	cmd.Writer = &buf

	err := cmd.Run(context.Background(), []string{"validate", dir})
	if err == nil {
		t.Fatal("Expected error for invalid board")
	}
	if !strings.Contains(err.Error(), "bad.json is invalid") {
		t.Errorf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "❌ INVALID") {
		t.Errorf("Expected invalid marker in output:\n%s", buf.String())
	}
}
