// Package service provides the business logic layer for Snakes and Ladders.
//
// The service package implements:
//   - Multi-session game management
//   - Board selection from the catalogue
//   - Game commands routed to each session's engine
//   - Merged, paginated move history
//   - Board views for renderers
//   - Recording of finished games
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// BoardManager loads, lists and saves boards.
// ResultStore archives finished games; Publisher fans snapshots out to
// live viewers.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine. The service subscribes
// to every engine it creates, forwards each snapshot to the Publisher and
// records a result once per finished game.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	boardMgr, _ := config.NewManager("boards")
//	gameService := service.NewGameService(sessionMgr, boardMgr,
//		service.WithPublisher(hub),
//		service.WithResults(store),
//	)
//
//	info, err := gameService.CreateSession(ctx, "classic-10")
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameService.InitGame(ctx, info.ID, service.InitRequest{Players: 3})
//	gameService.RollDice(ctx, info.ID)
//
// Commands the engine ignores (a roll while the dice are rolling, a blank
// name) are not errors; they come back as an ActionResult with Accepted set
// to false and a Reason.
package service
