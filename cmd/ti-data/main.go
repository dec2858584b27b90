package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/ti-dashboard/ti-data/internal/config"
	"github.com/ti-dashboard/ti-data/internal/logging"
	"github.com/ti-dashboard/ti-data/internal/ledger"
	"github.com/ti-dashboard/ti-data/internal/pipeline"
	"github.com/ti-dashboard/ti-data/internal/reconcile"
	"github.com/ti-dashboard/ti-data/internal/stats"
	"github.com/ti-dashboard/ti-data/internal/store"
)

type flags struct {
	configPath   string
	source       string
	out          string
	grainJSON    string
	grainParquet string
	report       string
	statsOut     string
	careersOut   string
	logLevel     string
	logDev       bool
}

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var f flags
	flag.StringVar(&f.configPath, "config", "", "YAML config file (optional)")
	flag.StringVar(&f.source, "source", "", "source workbook, CSV directory, DuckDB or SQLite file (default "+config.DefaultSourcePath+")")
	flag.StringVar(&f.out, "out", "", "output JSON document (default "+config.DefaultDocumentPath+")")
	flag.StringVar(&f.grainJSON, "grain-json", "", "also write the player-game grain as JSON records")
	flag.StringVar(&f.grainParquet, "grain-parquet", "", "also write the player-game grain as Parquet")
	flag.StringVar(&f.report, "report", "", "also write the reconcile report as JSON")
	flag.StringVar(&f.statsOut, "stats-out", "", "also write player and faction stats as JSON")
	flag.StringVar(&f.careersOut, "careers-out", "", "also write per-player careers as JSON")
	flag.StringVar(&f.logLevel, "log-level", env.LogLevel, "debug|info|warn|error")
	flag.BoolVar(&f.logDev, "log-dev", env.LogDev, "human-readable console logs")
	flag.Parse()

	logger, err := logging.New(f.logLevel, f.logDev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, f, logger); err != nil {
		logger.Error("build failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, logger *zap.Logger) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("building document",
		zap.String("source", cfg.Source.Path),
		zap.String("out", cfg.Output.Document))

	res, err := pipeline.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}
	res.LogSummary(logger)

	st := store.NewJSONStore("")
	if err := st.WriteDocument(cfg.Output.Document, res.Document); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	size, err := st.Size(cfg.Output.Document)
	if err != nil {
		return err
	}
	logger.Info("wrote document", zap.String("path", cfg.Output.Document), zap.Int64("bytes", size))

	return writeExtras(st, cfg.Output, res, logger)
}

func applyFlags(cfg *config.Config, f flags) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Source.Path, f.source)
	set(&cfg.Output.Document, f.out)
	set(&cfg.Output.GrainJSON, f.grainJSON)
	set(&cfg.Output.GrainParquet, f.grainParquet)
	set(&cfg.Output.Report, f.report)
	set(&cfg.Output.Stats, f.statsOut)
	set(&cfg.Output.Careers, f.careersOut)
}

func writeExtras(st *store.JSONStore, out config.OutputConfig, res *pipeline.Result, logger *zap.Logger) error {
	if out.GrainJSON != "" {
		if err := st.WriteJSON(out.GrainJSON, res.Entries); err != nil {
			return fmt.Errorf("write grain json: %w", err)
		}
		logger.Info("wrote grain", zap.String("path", out.GrainJSON), zap.Int("rows", len(res.Entries)))
	}
	if out.GrainParquet != "" {
		if err := st.WriteGrainParquet(out.GrainParquet, res.Entries); err != nil {
			return fmt.Errorf("write grain parquet: %w", err)
		}
		logger.Info("wrote grain parquet", zap.String("path", out.GrainParquet), zap.Int("rows", len(res.Entries)))
	}
	if out.Report != "" {
		if err := reconcile.WriteReport(st, out.Report, res.Report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("wrote reconcile report", zap.String("path", out.Report))
	}
	if out.Stats != "" {
		if err := st.WriteJSON(out.Stats, stats.Compute(res.Document, nil)); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
		logger.Info("wrote stats", zap.String("path", out.Stats))
	}
	if out.Careers != "" {
		if err := st.WriteJSON(out.Careers, ledger.BuildCareers(res.Entries)); err != nil {
			return fmt.Errorf("write careers: %w", err)
		}
		logger.Info("wrote careers", zap.String("path", out.Careers))
	}
	return nil
}
