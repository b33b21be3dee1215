package engine

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// transition identifies the game a delayed step was scheduled against.
// A step only runs if the engine is still in exactly that game.
type transition struct {
	seq      uint64
	playerID int
	position int
	turn     int
}

func (t transition) at(position int) transition {
	t.position = position
	return t
}

// beginLocked starts a new move chain for p, invalidating any other chain
func (e *GameEngine) beginLocked(p *Player) transition {
	e.seq++
	return transition{
		seq:      e.seq,
		playerID: p.ID,
		position: p.Position,
		turn:     e.state.CurrentPlayerIndex,
	}
}

// liveLocked returns the player t refers to, or nil if t is stale
func (e *GameEngine) liveLocked(t transition) *Player {
	if t.seq != e.seq || e.state.Status != StatusPlaying || e.state.CurrentPlayerIndex != t.turn {
		return nil
	}
	p := e.playerLocked(t.playerID)
	if p == nil || p.Position != t.position {
		return nil
	}
	return p
}

// after schedules step to run once d has elapsed, provided t is still live
func (e *GameEngine) after(d time.Duration, t transition, name string, step func(p *Player) bool) {
	e.sched.Schedule(d, func() {
		e.mutate(func() bool {
			p := e.liveLocked(t)
			if p == nil {
				e.log.WithFields(logrus.Fields{
					"step":      name,
					"player_id": t.playerID,
				}).Debug("Dropping stale transition")
				return false
			}
			return step(p)
		})
	})
}

// RollDice starts a roll for the current player. It reports false and does
// nothing unless a game is playing with no roll or move in progress.
func (e *GameEngine) RollDice() bool {
	accepted := false
	e.mutate(func() bool {
		if e.state.Status != StatusPlaying || e.state.Dice.Rolling || e.state.MoveInProgress {
			return false
		}
		p := e.currentLocked()
		if p == nil {
			return false
		}

		t := e.beginLocked(p)
		e.state.Dice.Rolling = true
		e.state.Message = msgRolling

		e.after(e.timing.Roll, t, "commit_roll", func(p *Player) bool {
			return e.commitRollLocked(t, p)
		})
		e.scheduleFaceLocked(t)

		accepted = true
		return true
	})
	return accepted
}

// scheduleFaceLocked shows a random face while the die is still rolling
func (e *GameEngine) scheduleFaceLocked(t transition) {
	if e.timing.FaceInterval <= 0 {
		return
	}
	e.after(e.timing.FaceInterval, t, "dice_face", func(p *Player) bool {
		if !e.state.Dice.Rolling {
			return false
		}
		e.state.Dice.Value = e.faces.Intn(DiceFaces) + 1
		e.scheduleFaceLocked(t)
		return true
	})
}

func (e *GameEngine) commitRollLocked(t transition, p *Player) bool {
	if !e.state.Dice.Rolling {
		return false
	}
	value := e.dice.Roll()
	e.state.Dice = Dice{Value: value, Rolling: false}
	e.state.MoveInProgress = true

	target := p.Position + value
	if target > e.board.MaxPosition() {
		e.state.Message = fmt.Sprintf("%s rolled a %d. %d is past the final square.", p.Name, value, target)
	} else {
		e.state.Message = fmt.Sprintf("%s rolled a %d. Moving from %d to %d.", p.Name, value, p.Position, target)
	}

	e.log.WithFields(logrus.Fields{
		"player_id": p.ID,
		"value":     value,
		"from":      p.Position,
	}).Debug("Dice committed")

	e.after(e.timing.MoveDelay, t, "apply_roll", func(p *Player) bool {
		return e.applyRollLocked(t, p, value)
	})
	return true
}

func (e *GameEngine) applyRollLocked(t transition, p *Player, value int) bool {
	last := e.board.MaxPosition()
	target := p.Position + value
	if target > last {
		// Overshoot: the player stays put and the turn passes.
		e.state.MoveInProgress = false
		e.advanceTurnLocked(fmt.Sprintf("%s needs an exact roll to reach %d.", p.Name, last))
		return true
	}
	e.moveLocked(t, p, target, value, false, false)
	return true
}

// moveLocked relocates p, records the move and schedules the settle and
// resolve steps. Snake and ladder moves share the turn number of the roll
// that triggered them.
func (e *GameEngine) moveLocked(t transition, p *Player, to, diceValue int, isSnake, isLadder bool) {
	hazard := isSnake || isLadder
	if !hazard {
		e.state.Settings.TurnCount++
	}

	move := Move{
		From:       p.Position,
		To:         to,
		DiceValue:  diceValue,
		IsSnake:    isSnake,
		IsLadder:   isLadder,
		TurnNumber: e.state.Settings.TurnCount,
	}
	p.MoveHistory = append(p.MoveHistory, move)
	p.LastMove = &move
	p.Position = to
	p.Animating = true
	e.state.MoveInProgress = true

	msg := fmt.Sprintf("Moving from %d to %d.", move.From, move.To)
	switch {
	case isSnake:
		msg = "🐍 Oh no! You landed on a snake! " + msg
	case isLadder:
		msg = "🪜 Great! You found a ladder! " + msg
	}
	e.state.Message = msg

	next := t.at(to)
	e.after(e.timing.Settle, next, "settle", func(p *Player) bool {
		p.Animating = false
		e.after(e.timing.Resolve, next, "resolve", func(p *Player) bool {
			return e.resolveLocked(next, p, hazard)
		})
		return true
	})
}

// resolveLocked follows a snake or ladder at the player's square. A square
// reached by a snake or ladder is never itself resolved, so a chain is at
// most one hazard long.
func (e *GameEngine) resolveLocked(t transition, p *Player, afterHazard bool) bool {
	if !afterHazard {
		if s, ok := e.board.SnakeAt(p.Position); ok {
			e.after(e.timing.HazardNotice, t, "snake_notice", func(p *Player) bool {
				e.state.Message = fmt.Sprintf("🐍 Oh no! %s landed on a snake at %d!", p.Name, p.Position)
				e.after(e.timing.HazardMove, t, "snake_slide", func(p *Player) bool {
					e.moveLocked(t, p, s.End, 0, true, false)
					return true
				})
				return true
			})
			return false
		}
		if l, ok := e.board.LadderAt(p.Position); ok {
			e.after(e.timing.HazardNotice, t, "ladder_notice", func(p *Player) bool {
				e.state.Message = fmt.Sprintf("🪜 Great! %s found a ladder at %d!", p.Name, p.Position)
				e.after(e.timing.HazardMove, t, "ladder_climb", func(p *Player) bool {
					e.moveLocked(t, p, l.End, 0, false, true)
					return true
				})
				return true
			})
			return false
		}
	}
	return e.finishTurnLocked(p)
}

// finishTurnLocked declares a winner on the final square, otherwise passes
// the turn.
func (e *GameEngine) finishTurnLocked(p *Player) bool {
	e.state.MoveInProgress = false
	if p.Position == e.board.MaxPosition() {
		winner := p.clone()
		e.state.Winner = &winner
		e.state.Status = StatusGameOver
		e.state.Message = fmt.Sprintf("🎉 %s wins the game after %d turns!", p.Name, e.state.Settings.TurnCount)
		e.log.WithFields(logrus.Fields{
			"winner": p.Name,
			"turns":  e.state.Settings.TurnCount,
		}).Info("Game won")
		return true
	}
	e.advanceTurnLocked("")
	return true
}

// MovePlayer places a player directly on newPosition, bypassing the die.
// isSnake or isLadder mark the move as a hazard move, which does not count
// as a new turn and is not itself resolved further.
func (e *GameEngine) MovePlayer(playerID, newPosition, diceValue int, isSnake, isLadder bool) error {
	var err error
	e.mutate(func() bool {
		if e.state.Status != StatusPlaying {
			err = ErrNotPlaying
			return false
		}
		p := e.playerLocked(playerID)
		if p == nil {
			err = fmt.Errorf("%w: %d", ErrUnknownPlayer, playerID)
			return false
		}
		if last := e.board.MaxPosition(); newPosition < 0 || newPosition > last {
			err = fmt.Errorf("%w: %d (board has %d squares)", ErrInvalidPosition, newPosition, last)
			return false
		}
		if isSnake && isLadder {
			err = fmt.Errorf("%w: a move cannot be both a snake and a ladder", ErrInvalidMove)
			return false
		}

		t := e.beginLocked(p)
		e.state.Dice.Rolling = false
		e.moveLocked(t, p, newPosition, diceValue, isSnake, isLadder)
		return true
	})
	return err
}
