// Package mcp exposes Snakes and Ladders to AI agents over the Model Context
// Protocol.
//
// The Client is a thin MCP front end over the REST API: every tool call is
// translated into one or more HTTP requests against a running server and the
// JSON answer is rendered as text an agent can read.
//
// Tools:
//   - create_session, list_sessions, get_session: session management
//   - init_game, roll_dice, next_turn, rename_player, reset_game: commands
//   - game_state, move_history, describe_square: observation
//   - list_boards, recent_results, game_instructions: reference
//
// A roll plays out over a few seconds. roll_dice waits for the dice and the
// token to settle by default (wait=false returns straight away) and reports
// the square the roller ended on.
//
// Transports:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// stdio, for local MCP hosts
//	server.ServeStdio(client.GetMCPServer())
//
//	// JSON-RPC over HTTP POST
//	router.Handle("/mcp", client.HTTPHandler())
package mcp
