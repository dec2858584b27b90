package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ti-dashboard/ti-data/internal/ledger"
	"github.com/ti-dashboard/ti-data/internal/stats"
)

type PlayerCareerArgs struct {
	PlayerName string `json:"player_name" jsonschema:"Player name, case-insensitive (required)"`
}

// PlayerStatsArgs limits the stats to a set of players (empty means everyone)
// and to the games matching Filter.
type PlayerStatsArgs struct {
	Players []string       `json:"players,omitempty" jsonschema:"Player names to include (default all)"`
	Filter  GameFilterArgs `json:"filter,omitempty" jsonschema:"Optional game filter"`
}

type PlayerStatsOutput struct {
	TotalGames          int                 `json:"total_games"`
	AvgGameDurationDays int                 `json:"avg_game_duration_days"`
	AvgRounds           float64             `json:"avg_rounds"`
	Players             []stats.PlayerStats `json:"players"`
}

func buildPlayerCareer(ctx context.Context, cfg ServerConfig, args PlayerCareerArgs) (ledger.Career, error) {
	name := strings.TrimSpace(args.PlayerName)
	if name == "" {
		return ledger.Career{}, fmt.Errorf("player_name is required")
	}
	res, err := cfg.snapshot(ctx)
	if err != nil {
		return ledger.Career{}, err
	}
	return ledger.CareerFor(ledger.BuildCareers(res.Entries), name)
}

func buildPlayerStats(ctx context.Context, cfg ServerConfig, args PlayerStatsArgs) (PlayerStatsOutput, error) {
	doc, err := cfg.filteredDocument(ctx, args.Filter)
	if err != nil {
		return PlayerStatsOutput{}, err
	}

	known := make(map[string]string, len(doc.Players))
	for _, p := range doc.Players {
		known[strings.ToLower(p)] = p
	}
	selected := make([]string, 0, len(args.Players))
	for _, p := range args.Players {
		canonical, ok := known[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return PlayerStatsOutput{}, fmt.Errorf("no player found for name: %s", p)
		}
		selected = append(selected, canonical)
	}

	o := stats.Compute(doc, selected)
	return PlayerStatsOutput{
		TotalGames:          o.TotalGames,
		AvgGameDurationDays: o.AvgGameDurationDays,
		AvgRounds:           o.AvgRounds,
		Players:             o.Players,
	}, nil
}
