// Package config provides the board catalogue for Snakes and Ladders.
//
// The config package handles:
//   - Serving the built-in boards (classic-8, classic-10, classic-12)
//   - Loading custom boards from JSON or YAML files
//   - Board validation before anything is cached or saved
//   - Board discovery and listing
//
// Board Format:
//
// A board file names its size and the start/end squares of every snake and
// ladder:
//
//	name: river
//	description: Long snakes near the finish
//	size: 8
//	snakes:
//	  - {start: 62, end: 19}
//	ladders:
//	  - {start: 3, end: 22}
//
// Usage:
//
//	manager, err := config.NewManager("boards")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	b, err := manager.LoadBoard("river")
//	boards, err := manager.ListBoards()
//
// Boards that fail validation are skipped by ListBoards and rejected by
// LoadBoard and SaveBoard with board.ErrInvalidBoard.
package config
