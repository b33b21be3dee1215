// Package api provides HTTP REST API handlers for Snakes and Ladders.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"board_name": "classic-8"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - POST /api/sessions/{id}/init - Start a game ({"players": 3, "board_size": 10})
//   - POST /api/sessions/{id}/roll - Roll for the current player
//   - POST /api/sessions/{id}/move - Place a player on a square
//   - POST /api/sessions/{id}/next-turn - Pass the turn
//   - PUT /api/sessions/{id}/players/{playerId}/name - Rename a player
//   - POST /api/sessions/{id}/reset - Back to setup
//
// Game State:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - GET /api/sessions/{id}/board - Cells, hazards and tokens for rendering
//   - GET /api/sessions/{id}/history - Moves (?page&limit&order&player)
//
// Boards and Results:
//   - GET /api/boards, POST /api/boards, GET /api/boards/{name}
//   - GET /api/results?limit=N - Finished games, newest first
//
// Live updates are served on /ws?session={id}.
//
// Rolls, turn passes and renames the engine ignores are answered with 200 and
// {"accepted": false, "reason": "..."}. Errors are JSON bodies of the form
// {"error": "message"}: unknown sessions, boards and players are 404, bad
// input is 400, and commands that need a running game are 409.
package api
