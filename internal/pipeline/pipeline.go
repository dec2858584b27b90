// Package pipeline runs one load-and-build pass: read the three source
// tables, expand them into the player-game grain and summarize the grain
// into the dashboard document.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ti-dashboard/ti-data/internal/config"
	"github.com/ti-dashboard/ti-data/internal/model"
	"github.com/ti-dashboard/ti-data/internal/reconcile"
	"github.com/ti-dashboard/ti-data/internal/source"
	"github.com/ti-dashboard/ti-data/internal/summary"
)

type Result struct {
	Tables   model.Tables
	Document *model.Document
	Entries  []model.PlayerGameEntry
	Report   *reconcile.Report
	Took     time.Duration
}

func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	tables, err := source.Load(ctx, cfg.SourceConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("load source %s: %w", cfg.Source.Path, err)
	}
	return Build(tables, cfg.SummaryOptions(), start)
}

// Build runs the pure part of the pipeline over already loaded tables.
func Build(tables model.Tables, opts summary.Options, start time.Time) (*Result, error) {
	doc, entries, err := summary.BuildWithGrain(tables, opts)
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	return &Result{
		Tables:   tables,
		Document: doc,
		Entries:  entries,
		Report:   reconcile.BuildReport(tables, entries),
		Took:     time.Since(start),
	}, nil
}

// LogSummary writes the counts and gap summary of a run.
func (r *Result) LogSummary(logger *zap.Logger) {
	logger.Info("document built",
		zap.Int("games", len(r.Document.Games)),
		zap.Int("players", len(r.Document.Players)),
		zap.Int("factions", len(r.Document.Factions)),
		zap.Int("grain_rows", len(r.Entries)),
		zap.Duration("took", r.Took))

	fields := []zap.Field{
		zap.Int("unresolved_factions", len(r.Report.UnresolvedFactions)),
		zap.Int("orphan_results", len(r.Report.OrphanResults)),
		zap.Int("participating_slots", r.Report.ParticipatingSlots),
		zap.Int("non_participating_slots", r.Report.NonParticipatingSlots),
		zap.Int("missing_optional", r.Report.MissingTotal()),
	}
	if r.Report.Clean() {
		logger.Info("reconcile", fields...)
		return
	}
	logger.Warn("reconcile found referential gaps", fields...)
}
