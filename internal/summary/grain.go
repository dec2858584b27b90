package summary

import (
	"fmt"
	"sort"

	"github.com/ti-dashboard/ti-data/internal/model"
)

type resultKey struct {
	gameID int
	player string
}

// grain is the expanded (game x player) table plus the bookkeeping Build needs
// to assemble the nested per-game view.
type grain struct {
	games   []model.GameRecord // chronological
	players []string           // sorted universe
	entries []model.PlayerGameEntry
	// resultIdx[i] is the results-table row backing entries[i], or -1.
	resultIdx []int
}

// Expand returns the full cross product of game ids and player names with
// results, game metadata and faction names joined in, participation and winner
// flags derived, and per-player running totals computed in chronological game
// order. Rows are ordered by game (chronologically) then by player name.
func Expand(t model.Tables) ([]model.PlayerGameEntry, error) {
	g, err := expand(t)
	if err != nil {
		return nil, err
	}
	return g.entries, nil
}

func expand(t model.Tables) (*grain, error) {
	games, err := chronologicalGames(t.Games)
	if err != nil {
		return nil, err
	}

	byKey := make(map[resultKey]int, len(t.Results))
	seenPlayer := make(map[string]bool)
	players := make([]string, 0)
	for i, r := range t.Results {
		if r.PlayerName == "" {
			return nil, &ValidationError{
				Table:  "results",
				Key:    fmt.Sprintf("game_id=%d row=%d", r.GameID, i+1),
				Reason: "player_name is empty",
			}
		}
		k := resultKey{gameID: r.GameID, player: r.PlayerName}
		if _, dup := byKey[k]; dup {
			return nil, &ValidationError{
				Table:  "results",
				Key:    fmt.Sprintf("game_id=%d player_name=%s", r.GameID, r.PlayerName),
				Reason: "duplicate result row",
			}
		}
		byKey[k] = i
		if !seenPlayer[r.PlayerName] {
			seenPlayer[r.PlayerName] = true
			players = append(players, r.PlayerName)
		}
	}
	sort.Strings(players)

	fullByShort := factionIndex(t.Factions)

	out := &grain{
		games:     games,
		players:   players,
		entries:   make([]model.PlayerGameEntry, 0, len(games)*len(players)),
		resultIdx: make([]int, 0, len(games)*len(players)),
	}

	type running struct {
		participated int
		won          int
	}
	career := make(map[string]*running, len(players))
	for _, p := range players {
		career[p] = &running{}
	}

	for _, game := range games {
		maxVP := *game.MaxVictoryPoints
		start := len(out.entries)
		nPlayers := 0

		for _, p := range players {
			e := model.PlayerGameEntry{
				GameID:               game.GameID,
				GameName:             game.GameName,
				GameMaxVictoryPoints: maxVP,
				StartDate:            game.StartDate,
				EndDate:              game.EndDate,
				Rounds:               game.Rounds,
				PlayerName:           p,
			}
			idx, ok := byKey[resultKey{gameID: game.GameID, player: p}]
			if !ok {
				idx = -1
			}
			if ok {
				r := t.Results[idx]
				e.VictoryPoints = r.VictoryPoints
				e.StartingPosition = r.StartingPosition
				if r.VictoryPoints != nil {
					e.FactionShortName = r.FactionShortName
					if r.FactionShortName != nil {
						if full, found := fullByShort[*r.FactionShortName]; found {
							e.FactionFullName = full
						}
					}
				}
			}
			e.Participated = e.VictoryPoints != nil
			e.Winner = e.Participated && *e.VictoryPoints == maxVP
			if e.Participated {
				nPlayers++
			}

			c := career[p]
			if e.Participated {
				c.participated++
			}
			if e.Winner {
				c.won++
			}
			e.CumulatedNParticipated = c.participated
			e.CumulatedNWinner = c.won
			e.CumulatedOverallWinRate = winRate(c.won, c.participated)

			out.entries = append(out.entries, e)
			out.resultIdx = append(out.resultIdx, idx)
		}

		for i := start; i < len(out.entries); i++ {
			out.entries[i].GameNPlayers = nPlayers
		}
	}

	return out, nil
}

// chronologicalGames validates the games table and returns a copy ordered by
// start date (undated games first), ties broken by game id.
func chronologicalGames(in []model.GameRecord) ([]model.GameRecord, error) {
	seen := make(map[int]bool, len(in))
	games := make([]model.GameRecord, 0, len(in))
	for _, g := range in {
		if seen[g.GameID] {
			return nil, &ValidationError{
				Table:  "games",
				Key:    fmt.Sprintf("game_id=%d", g.GameID),
				Reason: "duplicate game_id",
			}
		}
		seen[g.GameID] = true
		if g.MaxVictoryPoints == nil {
			return nil, &ValidationError{
				Table:  "games",
				Key:    fmt.Sprintf("game_id=%d", g.GameID),
				Reason: "game_max_victory_points is missing",
			}
		}
		games = append(games, g)
	}

	sort.SliceStable(games, func(i, j int) bool {
		return gameBefore(games[i], games[j])
	})
	return games, nil
}

func gameBefore(a, b model.GameRecord) bool {
	switch {
	case a.StartDate == nil && b.StartDate != nil:
		return true
	case a.StartDate != nil && b.StartDate == nil:
		return false
	case a.StartDate != nil && b.StartDate != nil && !a.StartDate.Equal(b.StartDate.Time):
		return a.StartDate.Before(b.StartDate.Time)
	}
	return a.GameID < b.GameID
}

// factionIndex maps short name to full name. The first row for a short name
// wins; rows without a short name are ignored.
func factionIndex(factions []model.FactionRecord) map[string]*string {
	out := make(map[string]*string, len(factions))
	for _, f := range factions {
		if f.ShortName == "" {
			continue
		}
		if _, ok := out[f.ShortName]; ok {
			continue
		}
		out[f.ShortName] = f.FullName
	}
	return out
}

func winRate(won, participated int) *float64 {
	if participated == 0 {
		return nil
	}
	r := float64(won) / float64(participated)
	return &r
}
