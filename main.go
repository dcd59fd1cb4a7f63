// Command rotationwalls serves the rotation wall tracker.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (and .env), and flags override them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/rotationwalls/api"
	"github.com/wricardo/mcp-training/rotationwalls/game/config"
	"github.com/wricardo/mcp-training/rotationwalls/game/service"
	"github.com/wricardo/mcp-training/rotationwalls/game/session"
	"github.com/wricardo/mcp-training/rotationwalls/transport/mcp"
	"github.com/wricardo/mcp-training/rotationwalls/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Rotation Walls Tracker"
)

func main() {
	settings, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(settings).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// newCommand builds the CLI. Environment settings become flag defaults.
func newCommand(defaults Settings) *cli.Command {
	flags := []cli.Flag{
		&cli.IntFlag{Name: "port", Value: defaults.Port, Usage: "HTTP server port"},
		&cli.StringFlag{Name: "host", Value: defaults.Host, Usage: "HTTP server host"},
		&cli.StringFlag{Name: "config-dir", Value: defaults.ConfigDir, Usage: "Directory containing rulesets"},
		&cli.BoolFlag{Name: "debug", Value: defaults.Debug, Usage: "Enable debug logging"},
		&cli.DurationFlag{Name: "session-ttl", Value: defaults.SessionTTL, Usage: "Remove sessions idle for longer than this"},
		&cli.BoolFlag{Name: "ngrok", Value: defaults.NgrokEnabled, Usage: "Enable ngrok tunnel"},
		&cli.StringFlag{Name: "ngrok-auth", Value: defaults.NgrokAuthToken, Usage: "Ngrok auth token"},
		&cli.StringFlag{Name: "ngrok-domain", Value: defaults.NgrokDomain, Usage: "Custom ngrok domain (optional)"},
	}

	serve := func(ctx context.Context, cmd *cli.Command) error {
		return run(ctx, settingsFrom(cmd, defaults), runHTTPServer)
	}

	return &cli.Command{
		Name:    "rotationwalls",
		Usage:   AppName,
		Version: Version,
		Flags:   flags,
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  serve,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return run(ctx, settingsFrom(cmd, defaults), runStdioMCP)
				},
			},
		},
	}
}

// settingsFrom applies flag values on top of the environment settings
func settingsFrom(cmd *cli.Command, s Settings) Settings {
	s.Port = cmd.Int("port")
	s.Host = cmd.String("host")
	s.ConfigDir = cmd.String("config-dir")
	s.Debug = cmd.Bool("debug")
	s.SessionTTL = cmd.Duration("session-ttl")
	s.NgrokEnabled = cmd.Bool("ngrok")
	s.NgrokAuthToken = cmd.String("ngrok-auth")
	s.NgrokDomain = cmd.String("ngrok-domain")
	return s
}

type runner func(ctx context.Context, s Settings, app *application) error

// application is the wired service graph shared by both modes
type application struct {
	service  service.GameService
	sessions *session.Manager
	logger   *zap.Logger
}

func run(ctx context.Context, s Settings, fn runner) error {
	logger, err := newLogger(s.Debug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	app, err := initializeServices(s, logger)
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}

	logger.Info("starting", zap.String("app", AppName), zap.String("version", Version))
	return fn(ctx, s, app)
}

// initializeServices wires the ruleset and session managers into the service
func initializeServices(s Settings, logger *zap.Logger) (*application, error) {
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager(logger)

	return &application{
		service:  service.NewGameService(sessionManager, configManager, logger),
		sessions: sessionManager,
		logger:   logger,
	}, nil
}

// newHandler mounts the API at the root and the MCP endpoint at /mcp
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mux
}

// mcpHandler serves one JSON-RPC message per POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runHTTPServer serves the API, WebSocket hub and /mcp until ctx is cancelled.
// With ngrok enabled the same handler is also served through a tunnel.
func runHTTPServer(ctx context.Context, s Settings, app *application) error {
	logger := app.logger
	g, ctx := errgroup.WithContext(ctx)

	hub := websocket.NewHub(logger)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	handler := newHandler(api.NewServer(app.service, hub, logger), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		logger.Info("HTTP server listening",
			zap.String("rest", "http://"+addr+"/api"),
			zap.String("websocket", "ws://"+addr+"/ws?session=<session_id>"),
			zap.String("mcp", "http://"+addr+"/mcp"),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		cleanupSessions(ctx, app.sessions, s.CleanupInterval, s.SessionTTL)
		return nil
	})

	if s.NgrokEnabled {
		g.Go(func() error {
			serveNgrok(ctx, s, handler, logger)
			return nil
		})
	}

	err := g.Wait()
	logger.Info("server stopped")
	return err
}

// serveNgrok exposes handler through an ngrok tunnel. Tunnel failures are
// logged and do not stop the local server.
func serveNgrok(ctx context.Context, s Settings, handler http.Handler, logger *zap.Logger) {
	if s.NgrokAuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if s.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(s.NgrokDomain))
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(s.NgrokAuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	url := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", url),
		zap.String("rest", url+"/api"),
		zap.String("mcp", url+"/mcp"),
	)

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		logger.Error("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// cleanupSessions removes idle sessions every interval until ctx is cancelled
func cleanupSessions(ctx context.Context, manager *session.Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(ttl)
		}
	}
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening on
// the configured address, otherwise it serves an internal one on a random
// loopback port.
func runStdioMCP(ctx context.Context, s Settings, app *application) error {
	logger := app.logger
	externalURL := fmt.Sprintf("http://%s:%d", s.Host, s.Port)

	baseURL, err := probeAPI(ctx, externalURL)
	if err != nil {
		logger.Info("no external API server found, starting internal HTTP server", zap.String("probed", externalURL))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(app.service, hub, logger)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
	}

	logger.Info("MCP stdio server ready", zap.String("api", baseURL))

	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

// probeAPI returns baseURL when a tracker API answers its health check there
func probeAPI(ctx context.Context, baseURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return baseURL, nil
}
