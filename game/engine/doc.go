// Package engine provides the core game logic for Snakes and Ladders.
//
// The engine package implements the turn/move state machine:
//   - Game lifecycle (setup, playing, gameOver)
//   - Dice rolls with an animated rolling phase
//   - Position updates and move history
//   - Chained snake and ladder transitions
//   - Exact-landing win detection and turn advancement
//
// Core Types:
//
// Engine is the single authority over one game. It owns a GameState and is
// the only thing that mutates it; consumers read deep-copied snapshots via
// State or receive them through Subscribe after every mutation.
//
// Timing:
//
// A roll is a sequence of delayed steps (rolling → commit → move → settle →
// resolve → optional snake/ladder move → win check or next turn). Steps are
// handed to a Scheduler. Each step carries a transition token and is dropped
// when it fires against a game that has since been reset, re-initialised,
// moved on to another turn, or had the player repositioned.
//
// Usage:
//
//	eng := engine.NewEngine(
//		engine.WithDice(engine.NewSeededDice(42)),
//	)
//	if err := eng.InitGame(2, 10); err != nil {
//		log.Fatal(err)
//	}
//
//	eng.Subscribe(func(state engine.GameState) {
//		fmt.Println(state.Message)
//	})
//	eng.RollDice()
//
// Tests drive the same steps on a virtual clock with ManualScheduler and
// FixedDice so that exact move chains can be asserted.
package engine
