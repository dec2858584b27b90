package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ti-dashboard/ti-data/internal/model"
)

type CareerGame struct {
	GameID                  int         `json:"game_id"`
	GameName                string      `json:"game_name"`
	StartDate               *model.Date `json:"start_date"`
	Participated            bool        `json:"participated"`
	Winner                  bool        `json:"winner"`
	VictoryPoints           *int        `json:"victory_points"`
	FactionShort            *string     `json:"faction_short"`
	CumulatedNParticipated  int         `json:"cumulated_n_participated"`
	CumulatedNWinner        int         `json:"cumulated_n_winner"`
	CumulatedOverallWinRate *float64    `json:"cumulated_overall_win_rate"`
}

type Career struct {
	PlayerName  string       `json:"player_name"`
	GamesPlayed int          `json:"games_played"`
	Wins        int          `json:"wins"`
	WinRate     *float64     `json:"win_rate"`
	Games       []CareerGame `json:"games"`
}

// BuildCareers groups the expanded grain by player. Entries must already be
// in chronological game order, as returned by summary.Expand; each career's
// timeline keeps that order.
func BuildCareers(entries []model.PlayerGameEntry) []Career {
	byPlayer := make(map[string]*Career)
	for _, e := range entries {
		c, ok := byPlayer[e.PlayerName]
		if !ok {
			c = &Career{PlayerName: e.PlayerName, Games: make([]CareerGame, 0)}
			byPlayer[e.PlayerName] = c
		}
		c.Games = append(c.Games, CareerGame{
			GameID:                  e.GameID,
			GameName:                e.GameName,
			StartDate:               e.StartDate,
			Participated:            e.Participated,
			Winner:                  e.Winner,
			VictoryPoints:           e.VictoryPoints,
			FactionShort:            e.FactionShortName,
			CumulatedNParticipated:  e.CumulatedNParticipated,
			CumulatedNWinner:        e.CumulatedNWinner,
			CumulatedOverallWinRate: e.CumulatedOverallWinRate,
		})
		c.GamesPlayed = e.CumulatedNParticipated
		c.Wins = e.CumulatedNWinner
		c.WinRate = e.CumulatedOverallWinRate
	}

	out := make([]Career, 0, len(byPlayer))
	for _, c := range byPlayer {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlayerName < out[j].PlayerName
	})
	return out
}

// CareerFor finds one player's career. An exact match wins; otherwise the
// name is matched case-insensitively and must be unambiguous.
func CareerFor(careers []Career, name string) (Career, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Career{}, fmt.Errorf("player_name is required")
	}
	matches := make([]int, 0, 1)
	for i, c := range careers {
		if c.PlayerName == name {
			return c, nil
		}
		if strings.EqualFold(c.PlayerName, name) {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return Career{}, fmt.Errorf("no player found for name: %s", name)
	}
	if len(matches) > 1 {
		return Career{}, fmt.Errorf("ambiguous player_name: %s", name)
	}
	return careers[matches[0]], nil
}
