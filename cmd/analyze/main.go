// Command analyze plays many simulated games on each board and prints how
// long games last, how often players meet snakes and ladders, and how wins
// split by seat. Games run on the real engine with seeded dice and a virtual
// clock, so a run is reproducible and finishes in seconds.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/snakes-ladders/game/board"
	"github.com/wricardo/snakes-ladders/game/config"
	"github.com/wricardo/snakes-ladders/game/engine"
)

// stepsPerRoll bounds the scheduler work for one roll. A roll with a hazard
// takes seven steps when face animation is off.
const stepsPerRoll = 64

// Stats aggregates the games played on one board
type Stats struct {
	Board      string
	Size       int
	Players    int
	Games      int
	Unfinished int
	Turns      []int // turn count of each finished game
	Snakes     int
	Ladders    int
	Wasted     int           // rolls that overshot the final square
	Wins       []int         // wins by seat, index 0 is player 1
	TableTime  time.Duration // summed virtual play time at interactive pace
}

type gameResult struct {
	finished bool
	winner   int
	turns    int
	snakes   int
	ladders  int
	wasted   int
	elapsed  time.Duration
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Simulate games and report board statistics",
		ArgsUsage: "[board names...]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Value: 1000, Usage: "Games to play per board"},
			&cli.IntFlag{Name: "players", Value: 2, Usage: "Players per game"},
			&cli.StringFlag{Name: "seed", Value: "analyze", Usage: "Dice seed"},
			&cli.IntFlag{Name: "max-rolls", Value: 10000, Usage: "Abandon a game after this many rolls"},
			&cli.StringFlag{Name: "boards-dir", Usage: "Directory of custom boards", Sources: cli.EnvVars("BOARDS_DIR")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			manager, err := config.NewManager(cmd.String("boards-dir"))
			if err != nil {
				return err
			}

			names := cmd.Args().Slice()
			if len(names) == 0 {
				infos, err := manager.ListBoards()
				if err != nil {
					return err
				}
				for _, info := range infos {
					names = append(names, info.BoardID)
				}
			}

			seed := engine.SeedFromString(cmd.String("seed"))
			for _, name := range names {
				b, err := manager.LoadBoard(name)
				if err != nil {
					return err
				}
				stats, err := simulate(b, int(cmd.Int("players")), int(cmd.Int("games")), seed, int(cmd.Int("max-rolls")))
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				report(cmd.Root().Writer, stats)
			}
			return nil
		},
	}
}

// simulate plays games on b with one seeded die shared across all of them
func simulate(b *board.Board, players, games int, seed int64, maxRolls int) (*Stats, error) {
	if players < engine.MinPlayers || players > engine.MaxPlayers {
		return nil, fmt.Errorf("%w: %d (must be between %d and %d)",
			engine.ErrInvalidPlayerCount, players, engine.MinPlayers, engine.MaxPlayers)
	}
	if games < 0 {
		return nil, fmt.Errorf("games must not be negative, got %d", games)
	}

	stats := &Stats{
		Board:   b.Name,
		Size:    b.Size,
		Players: players,
		Wins:    make([]int, players),
	}

	dice := engine.NewSeededDice(seed)
	for i := 0; i < games; i++ {
		res, err := playGame(b, players, dice, maxRolls)
		if err != nil {
			return nil, err
		}
		stats.Games++
		stats.Snakes += res.snakes
		stats.Ladders += res.ladders
		stats.Wasted += res.wasted
		stats.TableTime += res.elapsed
		if !res.finished {
			stats.Unfinished++
			continue
		}
		stats.Turns = append(stats.Turns, res.turns)
		stats.Wins[res.winner-1]++
	}
	return stats, nil
}

func playGame(b *board.Board, players int, dice engine.DiceSource, maxRolls int) (gameResult, error) {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	timing := engine.DefaultTiming()
	timing.FaceInterval = 0

	sched := engine.NewManualScheduler()
	e := engine.NewEngine(
		engine.WithDice(dice),
		engine.WithScheduler(sched),
		engine.WithTiming(timing),
		engine.WithLogger(logrus.NewEntry(quiet)),
	)
	if err := e.InitGameWithBoard(players, b); err != nil {
		return gameResult{}, err
	}

	var res gameResult
	rolls := 0
	for rolls < maxRolls {
		if !e.RollDice() {
			return res, fmt.Errorf("roll %d was refused", rolls+1)
		}
		rolls++
		sched.RunUntilIdle(stepsPerRoll)

		if e.State().Status == engine.StatusGameOver {
			break
		}
	}

	state := e.State()
	res.elapsed = sched.Now()
	res.turns = state.Settings.TurnCount

	moves := 0
	for _, p := range state.Players {
		for _, m := range p.MoveHistory {
			switch {
			case m.IsSnake:
				res.snakes++
			case m.IsLadder:
				res.ladders++
			default:
				moves++
			}
		}
	}
	res.wasted = rolls - moves

	if state.Winner != nil {
		res.finished = true
		res.winner = state.Winner.ID
	}
	return res, nil
}

func report(w io.Writer, s *Stats) {
	fmt.Fprintf(w, "\n=== %s (%dx%d) ===\n", s.Board, s.Size, s.Size)
	fmt.Fprintf(w, "Games: %s with %d players\n", humanize.Comma(int64(s.Games)), s.Players)
	if s.Games == 0 {
		return
	}

	if len(s.Turns) > 0 {
		turns := append([]int(nil), s.Turns...)
		sort.Ints(turns)
		total := 0
		for _, t := range turns {
			total += t
		}
		fmt.Fprintf(w, "Turns to win: mean %s, median %d, min %d, max %d\n",
			humanize.FormatFloat("#,###.#", float64(total)/float64(len(turns))),
			turns[len(turns)/2], turns[0], turns[len(turns)-1])
	}

	games := float64(s.Games)
	fmt.Fprintf(w, "Per game: %s snakes, %s ladders, %s wasted rolls\n",
		humanize.FormatFloat("#,###.#", float64(s.Snakes)/games),
		humanize.FormatFloat("#,###.#", float64(s.Ladders)/games),
		humanize.FormatFloat("#,###.#", float64(s.Wasted)/games))
	fmt.Fprintf(w, "Table time: %s average\n", (s.TableTime / time.Duration(s.Games)).Round(time.Second))

	fmt.Fprint(w, "Wins by seat:")
	finished := len(s.Turns)
	for seat, wins := range s.Wins {
		pct := 0.0
		if finished > 0 {
			pct = 100 * float64(wins) / float64(finished)
		}
		fmt.Fprintf(w, "  %d: %s%%", seat+1, humanize.FormatFloat("#.#", pct))
	}
	fmt.Fprintln(w)

	if s.Unfinished > 0 {
		fmt.Fprintf(w, "⚠️  %s games hit the roll limit without a winner\n", humanize.Comma(int64(s.Unfinished)))
	} else {
		fmt.Fprintln(w, "✅ Every game finished")
	}
}
