// Command babasolver searches Baba Is You levels for winning move sequences.
//
// Subcommands:
//  1. "solve" runs the exhaustive solver in the foreground and prints a report
//  2. "simulate" replays a move list and prints the resulting board
//  3. "levels" lists, shows, imports and validates level files
//  4. "serve" runs the HTTP server exposing REST API, WebSocket and an /mcp endpoint
//  5. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Every flag can also be set from the environment, and a .env file in the
// working directory is loaded first.
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

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/babasolver/api"
	"github.com/wricardo/mcp-training/babasolver/game/config"
	"github.com/wricardo/mcp-training/babasolver/game/service"
	"github.com/wricardo/mcp-training/babasolver/transport/mcp"
	"github.com/wricardo/mcp-training/babasolver/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Baba Solver"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("command-failed")
		os.Exit(1)
	}
}

// newRootCommand builds the command tree
func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "babasolver",
		Usage:   "exhaustive solver for the floatiest platforms puzzle",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Usage:   "directory containing level files",
				Value:   "configs",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "default-level",
				Usage:   "level used when none is named (default \"floatiest_platforms\")",
				Sources: cli.EnvVars("BABA_DEFAULT_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("BABA_DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.Logger = newLogger(os.Stderr, cmd.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			solveCommand(),
			simulateCommand(),
			levelsCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}
}

// newLogger writes human-readable logs, at debug level when requested
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// newLevelManager opens the level directory. defaultLevel may be empty.
func newLevelManager(configDir, defaultLevel string) (*config.Manager, error) {
	levels, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}
	if defaultLevel != "" {
		if err := levels.SetDefault(defaultLevel); err != nil {
			return nil, fmt.Errorf("default level: %w", err)
		}
	}
	return levels, nil
}

// initializeServices wires the level manager and the solve service
func initializeServices(configDir, defaultLevel string, publisher service.ProgressPublisher, logger zerolog.Logger) (service.SolveService, error) {
	levels, err := newLevelManager(configDir, defaultLevel)
	if err != nil {
		return nil, err
	}
	return service.NewSolveService(levels, publisher, logger), nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runHTTPServer(ctx, cmd)
		},
	}
}

// newHandler combines the REST API with the /mcp endpoint, which proxies
// tool calls back to the API at baseURL
func newHandler(apiServer *api.Server, baseURL string) http.Handler {
	mcpClient := mcp.NewClient(baseURL)

	apiServer.Router().HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}).Methods("POST")

	return apiServer
}

// runHTTPServer serves until ctx is cancelled, then cancels running solves
// and drains connections. With ngrok enabled the same handler is also
// served through a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command) error {
	logger := log.Logger

	hub := websocket.NewHub(logger)
	solveService, err := initializeServices(cmd.String("config-dir"), cmd.String("default-level"), hub, logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	handler := newHandler(api.NewServer(solveService, hub, logger), "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		logger.Info().
			Str("addr", addr).
			Str("api", "http://"+addr+"/api").
			Str("websocket", "ws://"+addr+"/ws?job=<job_id>").
			Str("mcp", "http://"+addr+"/mcp").
			Msg("http-server-listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if cmd.Bool("ngrok") {
		g.Go(func() error {
			runNgrokTunnel(ctx, cmd, handler, logger)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting-down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := solveService.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("solve-service-shutdown")
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info().Msg("server-stopped")
	return err
}

func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler, logger zerolog.Logger) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		logger.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info().Str("domain", domain).Msg("ngrok-custom-domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error().Err(err).Msg("ngrok-listen-failed")
		return
	}

	ngrokURL := tun.URL()
	logger.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok-tunnel-established")

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()
	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("ngrok-server-error")
	}
	logger.Info().Msg("ngrok-tunnel-closed")
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run an MCP stdio server backed by the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "REST API to proxy; an internal server is started when it is unreachable",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("BABA_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStdioMCP(ctx, cmd)
		},
	}
}

// apiAvailable probes the health endpoint of an external API
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCP serves MCP over stdio. It reuses an external API when one
// answers at --api-url; otherwise it starts an internal API bound to a
// random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	logger := log.Logger
	baseURL := cmd.String("api-url")

	if apiAvailable(ctx, baseURL) {
		logger.Info().Str("url", baseURL).Msg("using-external-api")
	} else {
		logger.Info().Str("url", baseURL).Msg("external-api-unavailable")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		solveService, err := initializeServices(cmd.String("config-dir"), cmd.String("default-level"), hub, logger)
		if err != nil {
			listener.Close()
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			solveService.Shutdown(shutdownCtx)
		}()

		httpServer := &http.Server{Handler: api.NewServer(solveService, hub, logger)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("internal-http-server-error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info().Str("url", baseURL).Msg("internal-api-started")
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info().Msg("mcp-stdio-ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
