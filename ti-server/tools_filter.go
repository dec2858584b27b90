package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ti-dashboard/ti-data/internal/model"
	"github.com/ti-dashboard/ti-data/internal/stats"
)

// GameFilterArgs narrows the games a stats tool looks at. Every set field must
// match; values inside one field are alternatives.
type GameFilterArgs struct {
	Players          []string `json:"players,omitempty" jsonschema:"Games where any of these players took part"`
	Factions         []string `json:"factions,omitempty" jsonschema:"Games where any of these faction short names was played"`
	PlayerCounts     []int    `json:"player_counts,omitempty" jsonschema:"Games with one of these player counts"`
	MaxVictoryPoints []int    `json:"max_victory_points,omitempty" jsonschema:"Games played to one of these point targets"`
	StartDate        string   `json:"start_date,omitempty" jsonschema:"Earliest game start date, YYYY-MM-DD inclusive"`
	EndDate          string   `json:"end_date,omitempty" jsonschema:"Latest game start date, YYYY-MM-DD inclusive"`
}

func (a GameFilterArgs) toFilter(doc *model.Document) (stats.Filter, error) {
	f := stats.Filter{
		Factions:         a.Factions,
		PlayerCounts:     a.PlayerCounts,
		MaxVictoryPoints: a.MaxVictoryPoints,
	}

	known := make(map[string]string, len(doc.Players))
	for _, p := range doc.Players {
		known[strings.ToLower(p)] = p
	}
	for _, p := range a.Players {
		name := strings.TrimSpace(p)
		if canonical, ok := known[strings.ToLower(name)]; ok {
			name = canonical
		}
		f.Players = append(f.Players, name)
	}

	var err error
	if a.StartDate != "" {
		if f.StartDate, err = model.ParseDate(a.StartDate); err != nil {
			return stats.Filter{}, fmt.Errorf("filter start_date: %w", err)
		}
	}
	if a.EndDate != "" {
		if f.EndDate, err = model.ParseDate(a.EndDate); err != nil {
			return stats.Filter{}, fmt.Errorf("filter end_date: %w", err)
		}
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(f.StartDate.Time) {
		return stats.Filter{}, fmt.Errorf("filter end_date %s is before start_date %s", f.EndDate, f.StartDate)
	}
	return f, nil
}

// filteredDocument loads the league and narrows its games by args.
func (c ServerConfig) filteredDocument(ctx context.Context, args GameFilterArgs) (*model.Document, error) {
	res, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	f, err := args.toFilter(res.Document)
	if err != nil {
		return nil, err
	}
	return f.Document(res.Document), nil
}

type GameFilterOnlyArgs struct {
	Filter GameFilterArgs `json:"filter,omitempty" jsonschema:"Optional game filter"`
}

type RoundDistributionOutput struct {
	Games        int                `json:"games"`
	GamesCounted int                `json:"games_counted"`
	Rounds       []stats.RoundCount `json:"rounds"`
}

func buildRoundDistribution(ctx context.Context, cfg ServerConfig, args GameFilterOnlyArgs) (RoundDistributionOutput, error) {
	doc, err := cfg.filteredDocument(ctx, args.Filter)
	if err != nil {
		return RoundDistributionOutput{}, err
	}
	rounds := stats.RoundDistribution(doc.Games)
	counted := 0
	for _, r := range rounds {
		counted += r.Count
	}
	return RoundDistributionOutput{Games: len(doc.Games), GamesCounted: counted, Rounds: rounds}, nil
}
