// Package websocket pushes live game snapshots to browser viewers.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a pair of
// goroutines that read, write and clean up.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// A session_closed event is sent when the session is deleted. Viewers are
// read-only; anything a client sends is discarded.
//
// Session Integration:
//
// Clients pick a session with the ?session= query parameter. The first
// message on a new connection is the current snapshot. After that every
// snapshot the engine publishes is delivered in version order.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	svc := service.NewGameService(sessions, boards, service.WithPublisher(hub))
package websocket
