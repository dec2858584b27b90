// Package stats computes the overview numbers the dashboard shows: per-player
// and per-faction records plus game length averages.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/ti-dashboard/ti-data/internal/model"
)

type PlayerStats struct {
	PlayerName  string  `json:"player_name"`
	Games       int     `json:"games"`
	Wins        int     `json:"wins"`
	TotalPoints int     `json:"total_points"`
	WinRate     float64 `json:"win_rate"`
	AvgPoints   float64 `json:"avg_points"`
}

type FactionStats struct {
	Short    string  `json:"short"`
	FullName *string `json:"full_name"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	WinRate  float64 `json:"win_rate"`
}

type Overview struct {
	TotalGames          int            `json:"total_games"`
	AvgGameDurationDays int            `json:"avg_game_duration_days"`
	AvgRounds           float64        `json:"avg_rounds"`
	Players             []PlayerStats  `json:"players"`
	Factions            []FactionStats `json:"factions"`
}

// Compute aggregates the document's games. When players is non-empty only
// those players' results feed the player and faction tables; game counts and
// averages always cover every game.
func Compute(doc *model.Document, players []string) Overview {
	out := Overview{Players: make([]PlayerStats, 0), Factions: make([]FactionStats, 0)}
	if doc == nil {
		return out
	}

	selected := make(map[string]bool, len(players))
	for _, p := range players {
		selected[p] = true
	}

	byPlayer := make(map[string]*PlayerStats)
	byFaction := make(map[string]*FactionStats)
	totalDays, withDuration := 0, 0
	totalRounds, withRounds := 0, 0

	for _, g := range doc.Games {
		if g.StartDate != nil && g.EndDate != nil {
			totalDays += durationDays(g.StartDate.Time, g.EndDate.Time)
			withDuration++
		}
		if g.Rounds != nil && *g.Rounds > 0 {
			totalRounds += *g.Rounds
			withRounds++
		}

		for _, p := range g.Players {
			if len(selected) > 0 && !selected[p.PlayerName] {
				continue
			}
			ps, ok := byPlayer[p.PlayerName]
			if !ok {
				ps = &PlayerStats{PlayerName: p.PlayerName}
				byPlayer[p.PlayerName] = ps
			}
			ps.Games++
			ps.TotalPoints += p.VictoryPoints
			if p.Winner {
				ps.Wins++
			}

			if p.FactionShort == nil || *p.FactionShort == "" {
				continue
			}
			fs, ok := byFaction[*p.FactionShort]
			if !ok {
				fs = &FactionStats{Short: *p.FactionShort, FullName: p.FactionFull}
				byFaction[*p.FactionShort] = fs
			}
			fs.Games++
			if p.Winner {
				fs.Wins++
			}
		}
	}

	for _, ps := range byPlayer {
		if ps.Games > 0 {
			ps.WinRate = float64(ps.Wins) / float64(ps.Games) * 100
			ps.AvgPoints = float64(ps.TotalPoints) / float64(ps.Games)
		}
		out.Players = append(out.Players, *ps)
	}
	sort.Slice(out.Players, func(i, j int) bool {
		return out.Players[i].PlayerName < out.Players[j].PlayerName
	})

	for _, fs := range byFaction {
		if fs.Games > 0 {
			fs.WinRate = float64(fs.Wins) / float64(fs.Games) * 100
		}
		out.Factions = append(out.Factions, *fs)
	}
	sort.Slice(out.Factions, func(i, j int) bool {
		return out.Factions[i].Short < out.Factions[j].Short
	})

	out.TotalGames = len(doc.Games)
	if withDuration > 0 {
		out.AvgGameDurationDays = int(math.Round(float64(totalDays) / float64(withDuration)))
	}
	if withRounds > 0 {
		out.AvgRounds = math.Round(float64(totalRounds)/float64(withRounds)*10) / 10
	}
	return out
}

// BestFaction returns the faction with the highest win rate among those with
// at least minGames games. Ties go to the alphabetically first short name.
func (o Overview) BestFaction(minGames int) (FactionStats, bool) {
	var best FactionStats
	found := false
	for _, f := range o.Factions {
		if f.Games < minGames {
			continue
		}
		if !found || f.WinRate > best.WinRate {
			best = f
			found = true
		}
	}
	return best, found
}

// MostPlayedFaction returns the faction with the most games. Ties go to the
// alphabetically first short name.
func (o Overview) MostPlayedFaction() (FactionStats, bool) {
	var best FactionStats
	found := false
	for _, f := range o.Factions {
		if !found || f.Games > best.Games {
			best = f
			found = true
		}
	}
	return best, found
}

func durationDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}
