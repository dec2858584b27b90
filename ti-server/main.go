package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ti-dashboard/ti-data/internal/config"
	"github.com/ti-dashboard/ti-data/internal/logging"
	"github.com/ti-dashboard/ti-data/internal/metrics"
	"github.com/ti-dashboard/ti-data/internal/pipeline"
)

// ServerConfig is shared by every tool handler. Each call loads a fresh
// snapshot of the source, so edits to the workbook show up immediately.
type ServerConfig struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

type NoArgs struct{}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		addr        = flag.String("addr", ":8080", "HTTP listen address")
		mcpPath     = flag.String("path", "/mcp", "HTTP path for MCP endpoint")
		configPath  = flag.String("config", "", "YAML config file (optional)")
		sourcePath  = flag.String("source", "", "source workbook, CSV directory, DuckDB or SQLite file")
		requireAuth = flag.Bool("require-auth", true, "require API key auth via TI_MCP_API_KEY")
		authHeader  = flag.String("auth-header", "X-API-Key", "HTTP header to read API key from")
		logLevel    = flag.String("log-level", env.LogLevel, "debug|info|warn|error")
	)
	flag.Parse()

	logger, err := logging.New(*logLevel, env.LogDev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *sourcePath != "" {
		cfg.Source.Path = *sourcePath
	}

	apiKey := strings.TrimSpace(env.APIKey)
	if *requireAuth && apiKey == "" {
		logger.Fatal("TI_MCP_API_KEY is required (set env var or run with --require-auth=false)")
	}

	sc := ServerConfig{Config: cfg, Logger: logger, Metrics: metrics.NewCollector()}
	server, registry := newMCPServer(sc)
	router := newRouter(sc, server, registry, apiKey, *authHeader, *mcpPath)

	logger.Info("MCP HTTP server listening",
		zap.String("addr", *addr),
		zap.String("path", *mcpPath),
		zap.String("source", cfg.Source.Path),
		zap.Bool("auth", apiKey != ""))
	if err := http.ListenAndServe(*addr, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newMCPServer(cfg ServerConfig) (*mcp.Server, []toolInfo) {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "ti-data",
			Version: "0.1.0",
		},
		nil,
	)

	registry := make([]toolInfo, 0, 10)

	addTool(server, &registry, cfg, &mcp.Tool{
		Name:        "ti_document",
		Description: "The full dashboard document: games with participants, players and factions",
	}, func(ctx context.Context, args NoArgs) (any, error) {
		return buildDocument(ctx, cfg)
	})

	addTool(server, &registry, cfg, &mcp.Tool{
		Name:        "list_players",
		Description: "Sorted names of every player with at least one result",
	}, func(ctx context.Context, args NoArgs) (any, error) {
		return buildPlayerList(ctx, cfg)
	})

	addTool(server, &registry, cfg, &mcp.Tool{
		Name:        "list_factions",
		Description: "Factions with full names and icon paths",
	}, func(ctx context.Context, args NoArgs) (any, error) {
		return buildFactionList(ctx, cfg)
	})

	addTool(server, &registry, cfg, &mcp.Tool{
		Name:        "game_details",
		Description: "One game with its participants sorted by victory points",
	}, func(ctx context.Context, args GameDetailsArgs) (any, error) {
		return buildGameDetails(ctx, cfg, args)
	})

	addTool(server, &registry, cfg, &mcp.Tool{
		Name:        "player_career",
		Description: "A player's game-by-game record with running win rate",
	}, func(ctx context.Context, args PlayerCareerArgs) (any, error) {
		return buildPlayerCareer(ctx, cfg, args)
	})

	addTool(server, &registry, cfg, &mcp.Tool{
		Name:        "player_stats",
		Description: "Games, wins, points and win rate per player, plus overall game numbers",
	}, func(ctx context.Context, args PlayerStatsArgs) (any, error) {
		return buildPlayerStats(ctx, cfg, args)
	})

	addTool(server, &registry, cfg, &mcp.Tool{
		Name:        "faction_stats",
		Description: "Games and win rate per faction with the best and most played faction",
	}, func(ctx context.Context, args FactionStatsArgs) (any, error) {
		return buildFactionStats(ctx, cfg, args)
	})

	addTool(server, &registry, cfg, &mcp.Tool{
		Name:        "starting_positions",
		Description: "Win rate per starting position against the equal-seat expectation",
	}, func(ctx context.Context, args GameFilterOnlyArgs) (any, error) {
		return buildStartingPositions(ctx, cfg, args)
	})

	addTool(server, &registry, cfg, &mcp.Tool{
		Name:        "round_distribution",
		Description: "How many games ended after each number of rounds, with percentages",
	}, func(ctx context.Context, args GameFilterOnlyArgs) (any, error) {
		return buildRoundDistribution(ctx, cfg, args)
	})

	addTool(server, &registry, cfg, &mcp.Tool{
		Name:        "data_quality",
		Description: "Unresolved factions, orphan results and missing values in the source",
	}, func(ctx context.Context, args NoArgs) (any, error) {
		return buildDataQuality(ctx, cfg)
	})

	return server, registry
}

func newRouter(cfg ServerConfig, server *mcp.Server, registry []toolInfo, apiKey, authHeader, mcpPath string) http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	router := mux.NewRouter()
	router.Use(apiKeyAuth(apiKey, authHeader))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/tools", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"tools": registry})
	}).Methods(http.MethodGet)

	router.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	router.Handle(mcpPath, handler)

	return router
}

// addTool registers a tool whose builder returns a JSON-encodable value.
// Builder errors become IsError results rather than protocol errors.
func addTool[T any](server *mcp.Server, registry *[]toolInfo, cfg ServerConfig, tool *mcp.Tool, build func(context.Context, T) (any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args T) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		out, err := build(ctx, args)
		if cfg.Metrics != nil {
			cfg.Metrics.RecordToolCall(tool.Name, time.Since(start), err)
		}
		if err != nil {
			cfg.logger().Warn("tool call failed", zap.String("tool", tool.Name), zap.Error(err))
			return failedResult(tool.Name, err), nil, nil
		}
		res, err := documentResult(out)
		if err != nil {
			return failedResult(tool.Name, err), nil, nil
		}
		return res, nil, nil
	})
}

// snapshot loads the source and runs the pipeline for one tool call.
func (c ServerConfig) snapshot(ctx context.Context) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, c.Config, c.logger())
	if err != nil {
		if c.Metrics != nil {
			c.Metrics.RecordSourceError()
		}
		return nil, err
	}
	if c.Metrics != nil {
		c.Metrics.RecordBuild(res.Took, len(res.Document.Games), len(res.Document.Players))
	}
	return res, nil
}

func (c ServerConfig) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
