package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/snakes-ladders/game/archive"
	"github.com/wricardo/snakes-ladders/game/board"
	"github.com/wricardo/snakes-ladders/game/engine"
	"github.com/wricardo/snakes-ladders/game/service"
)

const (
	defaultSettleTimeout = 15 * time.Second
	maxSettleTimeout     = 60 * time.Second
)

var errNotSettled = errors.New("dice did not settle in time")

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer

	// poll paces roll_dice while it waits for the dice to settle
	poll backoff.Backoff
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		poll: backoff.Backoff{
			Min:    100 * time.Millisecond,
			Max:    time.Second,
			Factor: 1.5,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Snakes and Ladders",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Snakes and Ladders - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Be the first player to land exactly on the final square. Players take turns
rolling one six-sided die. Landing on a snake's head slides you down to its
tail; landing at the foot of a ladder climbs you to its top.

TYPICAL FLOW:
1. create_session (optionally pick a board from list_boards)
2. init_game with 2-6 players
3. roll_dice with wait=true, repeatedly, until there is a winner

AVAILABLE TOOLS:
- create_session, list_sessions, get_session: manage sessions
- init_game: start a game with a player count and board
- roll_dice: roll for the current player (wait=true returns the settled result)
- next_turn: pass the turn without rolling
- rename_player: give a player a display name
- reset_game: back to setup
- game_state: current positions, dice and message
- move_history: every move, paginated
- list_boards: boards available for new sessions
- describe_square: what is on a square and where it is on the grid
- recent_results: finished games
- game_instructions: full rules`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional board selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"board_name": map[string]interface{}{
					"type":        "string",
					"description": "Board to use, e.g. classic-8 (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "init_game",
		Description: "Start a new game in the session. Any game in progress is discarded.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"players": map[string]interface{}{
					"type":        "integer",
					"minimum":     engine.MinPlayers,
					"maximum":     engine.MaxPlayers,
					"description": "Number of players (default 2)",
				},
				"board_size": map[string]interface{}{
					"type":        "integer",
					"enum":        board.SupportedSizes,
					"description": "Use the built-in board of this size (optional)",
				},
				"board_name": map[string]interface{}{
					"type":        "string",
					"description": "Use a named board; overrides board_size (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleInitGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "roll_dice",
		Description: "Roll the die for the current player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "Wait until the roll, move and any snake or ladder have finished (default true)",
				},
				"timeout_seconds": map[string]interface{}{
					"type":        "number",
					"description": "How long to wait for the roll to settle (default 15)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRollDice)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "next_turn",
		Description: "Pass the turn to the next player without rolling",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleNextTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rename_player",
		Description: "Change a player's display name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"player_id": map[string]interface{}{
					"type":        "integer",
					"description": "Player ID (1-based)",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "New name",
				},
			},
			Required: []string{"session_id", "player_id", "name"},
		},
	}, c.handleRenamePlayer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the session back to setup",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the move history with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Moves per page (default 20)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
				"player_id": map[string]interface{}{
					"type":        "integer",
					"description": "Only this player's moves (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	// Boards and results
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_boards",
		Description: "List boards available for new sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListBoards)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_square",
		Description: "Describe a square: snakes or ladders on it, players standing on it and its grid position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"square": map[string]interface{}{
					"type":        "integer",
					"description": "Square number (1 to the final square)",
				},
			},
			Required: []string{"session_id", "square"},
		},
	}, c.handleDescribeSquare)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "recent_results",
		Description: "List recently finished games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "How many results (default 10)",
				},
			},
		},
	}, c.handleRecentResults)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and how the tools fit together",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler answers MCP JSON-RPC messages posted to a single endpoint
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments, or an empty map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if boardName := cast.ToString(args["board_name"]); boardName != "" {
		body["board_name"] = boardName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nBoard: %s\nNext: call init_game with session_id=%s\n",
		session.ID, session.BoardName, session.ID)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "unknown"
		if s.GameState != nil {
			status = string(s.GameState.Status)
		}
		fmt.Fprintf(&b, "- %s (Board: %s, Status: %s, Created: %s)\n",
			s.ID, s.BoardName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleInitGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	req := service.InitRequest{
		Players:   cast.ToInt(args["players"]),
		BoardSize: cast.ToInt(args["board_size"]),
		BoardName: cast.ToString(args["board_name"]),
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/init"), req, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleRollDice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	wait := true
	if v, ok := args["wait"]; ok {
		wait = cast.ToBool(v)
	}

	timeout := defaultSettleTimeout
	if secs := cast.ToFloat64(args["timeout_seconds"]); secs > 0 {
		timeout = time.Duration(secs * float64(time.Second))
		if timeout > maxSettleTimeout {
			timeout = maxSettleTimeout
		}
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/roll"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !result.Accepted {
		return mcp.NewToolResultText(fmt.Sprintf("Roll ignored: %s\n\n%s",
			result.Reason, formatGameState(result.GameState))), nil
	}
	if !wait {
		return mcp.NewToolResultText("Rolling...\n\n" + formatGameState(result.GameState)), nil
	}

	state, err := c.waitSettled(ctx, sessionID, timeout)
	if err != nil {
		if errors.Is(err, errNotSettled) && state != nil {
			return mcp.NewToolResultText(fmt.Sprintf("Still moving after %s; call game_state to check again.\n\n%s",
				timeout, formatGameState(state))), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRollOutcome(result.GameState, state)), nil
}

// waitSettled polls the session until the dice have stopped and no move is in
// progress. On timeout it returns the last state seen with errNotSettled.
func (c *Client) waitSettled(ctx context.Context, sessionID string, timeout time.Duration) (*engine.GameState, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	poll := c.poll
	poll.Reset()

	var last *engine.GameState
	for {
		var state engine.GameState
		err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state)
		if err != nil {
			if ctx.Err() != nil && last != nil {
				return last, errNotSettled
			}
			return nil, err
		}
		last = &state
		if settled(&state) {
			return last, nil
		}

		select {
		case <-ctx.Done():
			return last, errNotSettled
		case <-time.After(poll.Duration()):
		}
	}
}

func settled(state *engine.GameState) bool {
	return !state.Dice.Rolling && !state.MoveInProgress
}

func (c *Client) handleNextTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/next-turn"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult("Turn passed", &result)), nil
}

func (c *Client) handleRenamePlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])
	playerID := cast.ToInt(args["player_id"])
	body := map[string]string{"name": cast.ToString(args["name"])}

	var result service.ActionResult
	path := sessionPath(sessionID, fmt.Sprintf("/players/%d/name", playerID))
	if err := c.apiCall(ctx, "PUT", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult("Player renamed", &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	params := url.Values{}
	if page := cast.ToInt(args["page"]); page > 0 {
		params.Set("page", cast.ToString(page))
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		params.Set("limit", cast.ToString(limit))
	}
	if order := cast.ToString(args["order"]); order != "" {
		params.Set("order", order)
	}
	if playerID := cast.ToInt(args["player_id"]); playerID > 0 {
		params.Set("player", cast.ToString(playerID))
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var boards []service.BoardInfo
	if err := c.apiCall(ctx, "GET", "/api/boards", nil, &boards); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Boards:\n\n")
	for _, info := range boards {
		kind := "custom"
		if info.Builtin {
			kind = "built-in"
		}
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Grid: %dx%d, Snakes: %d, Ladders: %d\n\n",
			info.BoardID, kind, info.Description, info.Size, info.Size, info.Snakes, info.Ladders)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeSquare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])
	square := cast.ToInt(args["square"])

	var view service.BoardView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/board"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	last := view.Size * view.Size
	if square < 1 || square > last {
		return mcp.NewToolResultError(fmt.Sprintf("Square %d is off the board. Squares run from 1 to %d.", square, last)), nil
	}

	return mcp.NewToolResultText(describeSquare(&view, square)), nil
}

func (c *Client) handleRecentResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := cast.ToInt(arguments(request)["limit"])
	if limit <= 0 {
		limit = 10
	}

	var response struct {
		Count   int              `json:"count"`
		Results []archive.Result `json:"results"`
	}
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/results?limit=%d", limit), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatResults(response.Results)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `SNAKES AND LADDERS

SETUP
- 2 to 6 players. Everyone starts off the board on square 0.
- Boards are square grids: classic-8 (64 squares), classic-10 (100) and
  classic-12 (144), plus any custom boards from list_boards.
- Squares are numbered from the bottom-right corner, right to left on the
  bottom row, then left to right on the next row up, and so on.

TURNS
- The current player rolls one six-sided die and moves forward that many
  squares.
- Landing on a snake's head slides the token down to the snake's tail.
- Landing at the foot of a ladder climbs the token to the top of the ladder.
- Only one snake or ladder applies per roll; the square you arrive on is not
  checked again.
- A roll that would pass the final square is wasted.
  You need the exact number to finish.
- The first player to land exactly on the final square wins.

TIMING
A roll takes a few seconds: the die tumbles, the token moves, then any snake
or ladder is announced and applied. While that happens further rolls are
ignored. roll_dice with wait=true (the default) returns once everything has
settled.

TOOLS
- create_session -> init_game -> roll_dice (repeat) is all you need to play.
- next_turn skips the current player.
- describe_square shows what is on a square and who is standing there.
- move_history lists every move; recent_results lists finished games.`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nBoard: %s\nCreated: %s\n\n%s",
		session.ID, session.BoardName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	settings := state.Settings
	fmt.Fprintf(&b, "Status: %s | Board: %s (%dx%d, final square %d) | Version: %d\n",
		state.Status, settings.BoardName, settings.BoardSize, settings.BoardSize,
		state.MaxPosition(), state.Version)

	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	if len(state.Players) == 0 {
		b.WriteString("\nNo players yet. Call init_game to start.\n")
		return b.String()
	}

	dice := "-"
	if state.Dice.Value > 0 {
		dice = cast.ToString(state.Dice.Value)
	}
	if state.Dice.Rolling {
		dice += " (rolling)"
	}
	fmt.Fprintf(&b, "Turn: %d | Dice: %s", settings.TurnCount, dice)
	if state.MoveInProgress {
		b.WriteString(" | Move in progress")
	}
	b.WriteString("\n\nPlayers:\n")

	for _, p := range state.Players {
		marker := "  "
		if p.IsActive {
			marker = "▶ "
		}
		fmt.Fprintf(&b, "%s%d. %s (%s) on square %d", marker, p.ID, p.Name, p.Color, p.Position)
		if p.LastMove != nil {
			fmt.Fprintf(&b, " | last: %s", formatMove(*p.LastMove))
		}
		b.WriteString("\n")
	}

	if state.Winner != nil {
		fmt.Fprintf(&b, "\n🏆 Winner: %s\n", state.Winner.Name)
	}

	return b.String()
}

func formatMove(m engine.Move) string {
	s := fmt.Sprintf("%d→%d", m.From, m.To)
	if m.DiceValue > 0 {
		s = fmt.Sprintf("rolled %d, %s", m.DiceValue, s)
	}
	switch {
	case m.IsSnake:
		s += " 🐍"
	case m.IsLadder:
		s += " 🪜"
	}
	return s
}

// formatRollOutcome summarises a settled roll for the player who rolled
func formatRollOutcome(before, after *engine.GameState) string {
	if before == nil || after == nil {
		return formatGameState(after)
	}

	roller, ok := before.CurrentPlayer()
	if !ok {
		return formatGameState(after)
	}

	var b strings.Builder
	if p, ok := after.PlayerByID(roller.ID); ok {
		fmt.Fprintf(&b, "%s rolled %d: square %d → %d\n", p.Name, after.Dice.Value, roller.Position, p.Position)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(after))
	return b.String()
}

func formatActionResult(label string, result *service.ActionResult) string {
	if !result.Accepted {
		return fmt.Sprintf("Ignored: %s\n\n%s", result.Reason, formatGameState(result.GameState))
	}
	return fmt.Sprintf("%s\n\n%s", label, formatGameState(result.GameState))
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	if len(history.Moves) == 0 {
		b.WriteString("(no moves yet)\n")
		return b.String()
	}

	for _, move := range history.Moves {
		fmt.Fprintf(&b, "Turn %d. %s: %s\n", move.TurnNumber, move.PlayerName, formatMove(move.Move))
	}

	return b.String()
}

func formatResults(results []archive.Result) string {
	if len(results) == 0 {
		return "No finished games yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent Results (%d):\n\n", len(results))
	for _, r := range results {
		fmt.Fprintf(&b, "- %s won on %s after %d turns (%d players, session %s, %s)\n",
			r.WinnerName, r.BoardName, r.Turns, len(r.Players), r.SessionID,
			r.FinishedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func describeSquare(view *service.BoardView, square int) string {
	var b strings.Builder
	grid := board.PositionToGrid(square, view.Size)
	fmt.Fprintf(&b, "Square %d on %s: row %d, column %d (row 0 is the top)\n",
		square, view.Name, grid.Row, grid.Col)

	last := view.Size * view.Size
	if square == last {
		b.WriteString("This is the final square. Land on it exactly to win.\n")
	}

	found := false
	for _, s := range view.Snakes {
		if s.Start == square {
			fmt.Fprintf(&b, "🐍 Snake head: slides down to %d\n", s.End)
			found = true
		}
		if s.End == square {
			fmt.Fprintf(&b, "Tail of the snake from %d\n", s.Start)
			found = true
		}
	}
	for _, l := range view.Ladders {
		if l.Start == square {
			fmt.Fprintf(&b, "🪜 Ladder foot: climbs to %d\n", l.End)
			found = true
		}
		if l.End == square {
			fmt.Fprintf(&b, "Top of the ladder from %d\n", l.Start)
			found = true
		}
	}
	if !found && square != last {
		b.WriteString("Plain square, no snakes or ladders.\n")
	}

	var here []string
	for _, t := range view.Tokens {
		if t.Position == square {
			here = append(here, fmt.Sprintf("%s (%s)", t.Name, t.Color))
		}
	}
	if len(here) > 0 {
		fmt.Fprintf(&b, "Players here: %s\n", strings.Join(here, ", "))
	}

	return b.String()
}
