package main

import (
	"context"
	"fmt"

	"github.com/ti-dashboard/ti-data/internal/model"
	"github.com/ti-dashboard/ti-data/internal/reconcile"
)

type GameDetailsArgs struct {
	GameID int `json:"game_id" jsonschema:"Game id (required)"`
}

type PlayerListOutput struct {
	Players []string `json:"players"`
}

type FactionListOutput struct {
	Factions []model.Faction `json:"factions"`
}

func buildDocument(ctx context.Context, cfg ServerConfig) (*model.Document, error) {
	res, err := cfg.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

func buildPlayerList(ctx context.Context, cfg ServerConfig) (PlayerListOutput, error) {
	doc, err := buildDocument(ctx, cfg)
	if err != nil {
		return PlayerListOutput{}, err
	}
	return PlayerListOutput{Players: doc.Players}, nil
}

func buildFactionList(ctx context.Context, cfg ServerConfig) (FactionListOutput, error) {
	doc, err := buildDocument(ctx, cfg)
	if err != nil {
		return FactionListOutput{}, err
	}
	return FactionListOutput{Factions: doc.Factions}, nil
}

func buildGameDetails(ctx context.Context, cfg ServerConfig, args GameDetailsArgs) (model.Game, error) {
	if args.GameID == 0 {
		return model.Game{}, fmt.Errorf("game_id is required")
	}
	doc, err := buildDocument(ctx, cfg)
	if err != nil {
		return model.Game{}, err
	}
	game, ok := doc.Game(args.GameID)
	if !ok {
		return model.Game{}, fmt.Errorf("game not found: %d", args.GameID)
	}
	return game, nil
}

func buildDataQuality(ctx context.Context, cfg ServerConfig) (*reconcile.Report, error) {
	res, err := cfg.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}
