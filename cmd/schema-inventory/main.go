package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ti-dashboard/ti-data/internal/config"
	"github.com/ti-dashboard/ti-data/internal/logging"
	"github.com/ti-dashboard/ti-data/internal/source"
	"github.com/ti-dashboard/ti-data/internal/store"
)

type Inventory struct {
	GeneratedAtUTC string                  `json:"generated_at_utc"`
	Source         string                  `json:"source"`
	Kind           source.Kind             `json:"kind"`
	Tables         []source.TableInventory `json:"tables"`
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		sourcePath = flag.String("source", "", "source to inspect (default from config)")
		outPath    = flag.String("out", "data/derived/schema_inventory.json", "output path")
		logLevel   = flag.String("log-level", "info", "debug|info|warn|error")
	)
	flag.Parse()

	logger, err := logging.New(*logLevel, false)
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

	inv, err := buildInventory(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("inspect source", zap.Error(err))
	}
	for _, t := range inv.Tables {
		if len(t.MissingColumns) > 0 {
			logger.Warn("table is missing required columns",
				zap.String("table", t.Name),
				zap.Strings("missing", t.MissingColumns))
		}
	}

	if err := store.NewJSONStore("").WriteJSON(*outPath, inv); err != nil {
		logger.Fatal("write inventory", zap.Error(err))
	}
	logger.Info("wrote schema inventory", zap.String("path", *outPath), zap.Int("tables", len(inv.Tables)))
}

func buildInventory(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Inventory, error) {
	kind, err := source.DetectKind(cfg.Source.Path)
	if err != nil {
		return nil, err
	}
	tables, err := source.Inspect(ctx, cfg.SourceConfig(), logger)
	if err != nil {
		return nil, err
	}
	return &Inventory{
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Source:         cfg.Source.Path,
		Kind:           kind,
		Tables:         tables,
	}, nil
}
