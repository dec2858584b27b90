package main

import (
	"context"
	"fmt"

	"github.com/ti-dashboard/ti-data/internal/stats"
)

const defaultMinGames = 3

type FactionStatsArgs struct {
	MinGames *int           `json:"min_games,omitempty" jsonschema:"Minimum games for best faction (default 3)"`
	Filter   GameFilterArgs `json:"filter,omitempty" jsonschema:"Optional game filter"`
}

type FactionStatsOutput struct {
	MinGames          int                  `json:"min_games"`
	Factions          []stats.FactionStats `json:"factions"`
	BestFaction       *stats.FactionStats  `json:"best_faction"`
	MostPlayedFaction *stats.FactionStats  `json:"most_played_faction"`
}

func buildFactionStats(ctx context.Context, cfg ServerConfig, args FactionStatsArgs) (FactionStatsOutput, error) {
	minGames := defaultMinGames
	if args.MinGames != nil {
		if *args.MinGames < 0 {
			return FactionStatsOutput{}, fmt.Errorf("min_games must be >= 0")
		}
		minGames = *args.MinGames
	}

	doc, err := cfg.filteredDocument(ctx, args.Filter)
	if err != nil {
		return FactionStatsOutput{}, err
	}

	o := stats.Compute(doc, nil)
	out := FactionStatsOutput{MinGames: minGames, Factions: o.Factions}
	if best, ok := o.BestFaction(minGames); ok {
		out.BestFaction = &best
	}
	if most, ok := o.MostPlayedFaction(); ok {
		out.MostPlayedFaction = &most
	}
	return out, nil
}

func buildStartingPositions(ctx context.Context, cfg ServerConfig, args GameFilterOnlyArgs) (stats.PositionReport, error) {
	doc, err := cfg.filteredDocument(ctx, args.Filter)
	if err != nil {
		return stats.PositionReport{}, err
	}
	return stats.StartingPositions(doc), nil
}
