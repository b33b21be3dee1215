// Command validate checks Snakes and Ladders board files (JSON or YAML). It
// checks:
//   - File structure
//   - Board size within range
//   - Snake and ladder endpoints on the board and pointing the right way
//   - No two hazards starting on the same square
//   - Reachability: the final square can be reached with a six-sided die
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/wricardo/snakes-ladders/game/board"
	"github.com/wricardo/snakes-ladders/game/config"
	"github.com/wricardo/snakes-ladders/game/engine"
)

// ValidationResult captures the outcome of validating a single board.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateBoardFile loads and validates a single board file
func validateBoardFile(filePath string) ValidationResult {
	b, err := config.DecodeBoard(filePath)
	if err != nil {
		return ValidationResult{
			File:   filepath.Base(filePath),
			Valid:  false,
			Errors: []string{err.Error()},
		}
	}

	result := validateBoard(b)
	result.File = filepath.Base(filePath)
	return result
}

// validateBoard checks the board invariants and, when they hold, whether the
// final square can be reached.
func validateBoard(b *board.Board) ValidationResult {
	result := ValidationResult{
		File:   b.Name,
		Valid:  true,
		Errors: []string{},
	}

	if strings.TrimSpace(b.Name) == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Board name is empty")
	}

	for _, problem := range b.Problems() {
		result.Valid = false
		result.Errors = append(result.Errors, problem.Error())
	}

	if !result.Valid {
		return result
	}

	reachability := validateReachability(b)
	if !reachability.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, reachability.Errors...)

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", b.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d (final square %d)", b.Size, b.Size, b.MaxPosition()))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Snakes: %d", len(b.Snakes)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Ladders: %d", len(b.Ladders)))
	}

	return result
}

// validateReachability walks every square a player can stand on, starting
// off the board. A roll onto a snake head or ladder foot continues to the
// other end, which is not resolved again. A run of six hazard heads in a row
// can wall off the rest of the board.
func validateReachability(b *board.Board) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	last := b.MaxPosition()
	rolls := make([]int, last+1)
	for i := range rolls {
		rolls[i] = -1
	}
	rolls[0] = 0
	queue := []int{0}

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]

		for face := 1; face <= engine.DiceFaces; face++ {
			target := pos + face
			if target > last {
				break
			}
			if s, ok := b.SnakeAt(target); ok {
				target = s.End
			} else if l, ok := b.LadderAt(target); ok {
				target = l.End
			}
			if rolls[target] < 0 {
				rolls[target] = rolls[pos] + 1
				queue = append(queue, target)
			}
		}
	}

	if rolls[last] < 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Reachability failure: square %d cannot be reached", last))
		if wall := hazardWall(b); wall > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Six hazard heads in a row block the board from square %d", wall))
		}
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Reachability: square %d in at least %d rolls", last, rolls[last]))
	return result
}

// hazardWall returns the first square of a run of DiceFaces consecutive
// hazard heads, or 0 if there is none.
func hazardWall(b *board.Board) int {
	heads := make([]int, 0, len(b.Snakes)+len(b.Ladders))
	for _, s := range b.Snakes {
		heads = append(heads, s.Start)
	}
	for _, l := range b.Ladders {
		heads = append(heads, l.Start)
	}
	sort.Ints(heads)

	run := 1
	for i := 1; i < len(heads); i++ {
		if heads[i] == heads[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run == engine.DiceFaces {
			return heads[i] - engine.DiceFaces + 1
		}
	}
	return 0
}

// boardFiles expands directories into the board files they contain
func boardFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(path, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	sort.Strings(files)
	return files, nil
}

func printResult(w io.Writer, result ValidationResult) {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Fprintln(w, "✅ VALID")
		for _, info := range result.Errors {
			fmt.Fprintln(w, "  "+info)
		}
		return
	}

	fmt.Fprintln(w, "❌ INVALID")
	for _, err := range result.Errors {
		if !strings.HasPrefix(err, "✓") {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate Snakes and Ladders board files",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "builtins", Usage: "Also validate the built-in boards"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer

			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				paths = []string{"boards"}
			}
			files, err := boardFiles(paths)
			if err != nil {
				return err
			}

			var results []ValidationResult
			if cmd.Bool("builtins") {
				for _, b := range board.Builtins() {
					results = append(results, validateBoard(b))
				}
			}
			for _, file := range files {
				results = append(results, validateBoardFile(file))
			}

			var errs error
			for _, result := range results {
				printResult(w, result)
				if !result.Valid {
					errs = multierr.Append(errs, fmt.Errorf("%s is invalid", result.File))
				}
			}

			fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
			if errs != nil {
				fmt.Fprintln(w, "❌ Some boards have errors")
				return errs
			}
			fmt.Fprintf(w, "✅ All %d boards are valid!\n", len(results))
			return nil
		},
	}
}

// main validates the named board files or directories (./boards by default),
// exiting with non-zero status if any are invalid.
func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
		os.Exit(1)
	}
}
