// Command snakes-ladders starts the Snakes and Ladders game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, the boards directory, the results database, dice
// seeding, animation speed, debug logging and optional ngrok tunneling.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jpillora/backoff"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/snakes-ladders/api"
	"github.com/wricardo/snakes-ladders/game/archive"
	"github.com/wricardo/snakes-ladders/game/config"
	"github.com/wricardo/snakes-ladders/game/engine"
	"github.com/wricardo/snakes-ladders/game/service"
	"github.com/wricardo/snakes-ladders/game/session"
	"github.com/wricardo/snakes-ladders/transport/mcp"
	"github.com/wricardo/snakes-ladders/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Snakes and Ladders Server"
)

const (
	cleanupInterval = time.Hour
	shutdownTimeout = 10 * time.Second
)

var log = logrus.WithField("component", "main")

// options is the parsed command line
type options struct {
	host        string
	port        int
	boardsDir   string
	dbPath      string
	seed        string
	fast        bool
	debug       bool
	sessionTTL  time.Duration
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("Error loading .env file")
		}
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("Exiting")
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "snakes-ladders",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "boards-dir", Usage: "Directory of custom JSON/YAML boards (built-ins only when empty)", Sources: cli.EnvVars("BOARDS_DIR")},
			&cli.StringFlag{Name: "db", Usage: "SQLite file for finished games (disabled when empty)", Sources: cli.EnvVars("RESULTS_DB")},
			&cli.StringFlag{Name: "seed", Usage: "Seed the dice for reproducible games"},
			&cli.BoolFlag{Name: "fast", Usage: "Play animations ten times faster"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "Reset sessions idle for longer than this"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runHTTPServer(ctx, optionsFrom(cmd))
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runHTTPServer(ctx, optionsFrom(cmd))
				},
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, starting an internal HTTP server if none is running",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, optionsFrom(cmd))
				},
			},
		},
	}
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:        cmd.String("host"),
		port:        int(cmd.Int("port")),
		boardsDir:   cmd.String("boards-dir"),
		dbPath:      cmd.String("db"),
		seed:        cmd.String("seed"),
		fast:        cmd.Bool("fast"),
		debug:       cmd.Bool("debug"),
		sessionTTL:  cmd.Duration("session-ttl"),
		ngrok:       cmd.Bool("ngrok"),
		ngrokAuth:   cmd.String("ngrok-auth"),
		ngrokDomain: cmd.String("ngrok-domain"),
	}
}

func setupLogging(debug bool) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// services bundles everything a server process owns
type services struct {
	game     service.GameService
	sessions *session.Manager
	hub      *websocket.Hub
	results  *archive.Store
}

// Close waits for pending result writes, then closes the results database
func (s *services) Close() {
	if s.game != nil {
		if err := s.game.Close(); err != nil {
			log.WithError(err).Warn("Failed to flush game results")
		}
	}
	if s.results != nil {
		if err := s.results.Close(); err != nil {
			log.WithError(err).Warn("Failed to close results database")
		}
	}
}

// initializeServices wires the board catalogue, session store, results
// archive and websocket hub into the game service.
func initializeServices(opts options) (*services, error) {
	boards, err := config.NewManager(opts.boardsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create board manager: %w", err)
	}

	s := &services{
		sessions: session.NewManager(),
		hub:      websocket.NewHub(),
	}

	serviceOpts := []service.Option{
		service.WithPublisher(s.hub),
		service.WithEngineOptions(engineOptions(opts)...),
	}

	if opts.dbPath != "" {
		store, err := archive.New(opts.dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open results database: %w", err)
		}
		s.results = store
		serviceOpts = append(serviceOpts, service.WithResults(store))
	}

	s.game = service.NewGameService(s.sessions, boards, serviceOpts...)
	return s, nil
}

func engineOptions(opts options) []engine.Option {
	var engineOpts []engine.Option
	if opts.seed != "" {
		engineOpts = append(engineOpts, engine.WithDice(engine.NewSeededDice(engine.SeedFromString(opts.seed))))
	}
	if opts.fast {
		engineOpts = append(engineOpts, engine.WithTiming(engine.DefaultTiming().Scaled(0.1)))
	}
	return engineOpts
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, opts options) error {
	svc, err := initializeServices(opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	addr := opts.addr()
	apiServer := api.NewServer(svc.game, svc.hub)
	mcpClient := mcp.NewClient("http://" + addr)
	apiServer.Handle("/mcp", mcpClient.HTTPHandler())

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		svc.hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":      addr,
			"api":       fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Infof("%s v%s listening", AppName, Version)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sessionCleanupRoutine(ctx, svc.sessions, opts.sessionTTL, cleanupInterval)
		return nil
	})

	if opts.ngrok {
		g.Go(func() error {
			runNgrok(ctx, opts, apiServer)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("HTTP server shutdown error")
		}
		return nil
	})

	err = g.Wait()
	log.Info("Server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done. Tunnel
// failures are logged and never stop the local server.
func runNgrok(ctx context.Context, opts options, handler http.Handler) {
	if opts.ngrokAuth == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.WithField("domain", opts.ngrokDomain).Info("Using custom ngrok domain")
	}

	log.Info("Starting ngrok tunnel...")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.WithFields(logrus.Fields{
		"api":       url + "/api",
		"websocket": url + "/ws?session=<session_id>",
		"mcp":       url + "/mcp",
	}).Infof("🚀 Ngrok tunnel established: %s", url)

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// sessionCleanupRoutine resets sessions that have not been accessed within
// ttl, checking every interval until ctx is done.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.WithField("sessions", removed).Info("Cleaned up expired sessions")
			}
		}
	}
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening on
// host:port when there is one; otherwise it starts an internal HTTP API on a
// random loopback port and targets that.
func runStdioMCP(ctx context.Context, opts options) error {
	externalURL := "http://" + opts.addr()
	log.WithField("url", externalURL).Info("Checking for external API server")

	baseURL := externalURL
	if !serverReady(ctx, externalURL, 2) {
		log.Info("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(opts)
		if err != nil {
			return err
		}
		defer svc.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hubCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go svc.hub.Run(hubCtx)

		httpServer := &http.Server{Handler: api.NewServer(svc.game, svc.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		if !serverReady(ctx, baseURL, 10) {
			return fmt.Errorf("internal HTTP server at %s did not become ready", baseURL)
		}
	}

	log.WithField("api", baseURL).Info("MCP stdio server ready")
	mcpClient := mcp.NewClient(baseURL)
	return server.ServeStdio(mcpClient.GetMCPServer())
}

// serverReady probes baseURL's health endpoint up to attempts times with
// exponential backoff.
func serverReady(ctx context.Context, baseURL string, attempts int) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	b := &backoff.Backoff{Min: 50 * time.Millisecond, Max: time.Second, Factor: 2}

	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(b.Duration()):
		}
	}
	return false
}
