package stats

import (
	"math"
	"sort"

	"github.com/ti-dashboard/ti-data/internal/model"
)

// Filter selects games the way the dashboard's filter panel does. Each
// non-empty dimension must match; values within a dimension are alternatives.
type Filter struct {
	Players          []string    `json:"players,omitempty"`
	Factions         []string    `json:"factions,omitempty"`
	PlayerCounts     []int       `json:"player_counts,omitempty"`
	MaxVictoryPoints []int       `json:"max_victory_points,omitempty"`
	StartDate        *model.Date `json:"start_date,omitempty"`
	EndDate          *model.Date `json:"end_date,omitempty"`
}

// Active returns how many dimensions are set.
func (f Filter) Active() int {
	n := 0
	for _, set := range []bool{
		len(f.Players) > 0,
		len(f.Factions) > 0,
		len(f.PlayerCounts) > 0,
		len(f.MaxVictoryPoints) > 0,
		f.StartDate != nil || f.EndDate != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Match reports whether g passes the filter. Players are matched against the
// nested list, which holds participants only. The date range is inclusive on
// both ends; an undated game fails any date bound.
func (f Filter) Match(g model.Game) bool {
	if len(f.Players) > 0 && !anyPlayer(g, f.Players) {
		return false
	}
	if len(f.Factions) > 0 && !anyFaction(g, f.Factions) {
		return false
	}
	if len(f.PlayerCounts) > 0 && !containsInt(f.PlayerCounts, g.NPlayers) {
		return false
	}
	if len(f.MaxVictoryPoints) > 0 && !containsInt(f.MaxVictoryPoints, g.MaxVictoryPoints) {
		return false
	}
	if f.StartDate != nil || f.EndDate != nil {
		if g.StartDate == nil {
			return false
		}
		if f.StartDate != nil && g.StartDate.Before(f.StartDate.Time) {
			return false
		}
		if f.EndDate != nil && g.StartDate.After(f.EndDate.Time) {
			return false
		}
	}
	return true
}

// Apply returns the matching games in document order.
func (f Filter) Apply(doc *model.Document) []model.Game {
	out := make([]model.Game, 0)
	if doc == nil {
		return out
	}
	for _, g := range doc.Games {
		if f.Match(g) {
			out = append(out, g)
		}
	}
	return out
}

// Document returns a copy of doc restricted to the matching games. The player
// and faction lists are left whole.
func (f Filter) Document(doc *model.Document) *model.Document {
	if doc == nil {
		return &model.Document{Games: []model.Game{}, Players: []string{}, Factions: []model.Faction{}}
	}
	return &model.Document{Games: f.Apply(doc), Players: doc.Players, Factions: doc.Factions}
}

func anyPlayer(g model.Game, names []string) bool {
	for _, p := range g.Players {
		for _, n := range names {
			if p.PlayerName == n {
				return true
			}
		}
	}
	return false
}

func anyFaction(g model.Game, shorts []string) bool {
	for _, p := range g.Players {
		if p.FactionShort == nil || *p.FactionShort == "" {
			continue
		}
		for _, s := range shorts {
			if *p.FactionShort == s {
				return true
			}
		}
	}
	return false
}

func containsInt(vals []int, v int) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}

type RoundCount struct {
	Rounds     int     `json:"rounds"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RoundDistribution counts games per number of rounds, ignoring games with no
// rounds recorded. Percentages are of the counted games, rounded to one
// decimal.
func RoundDistribution(games []model.Game) []RoundCount {
	counts := make(map[int]int)
	total := 0
	for _, g := range games {
		if g.Rounds == nil {
			continue
		}
		counts[*g.Rounds]++
		total++
	}

	out := make([]RoundCount, 0, len(counts))
	for r, n := range counts {
		out = append(out, RoundCount{
			Rounds:     r,
			Count:      n,
			Percentage: math.Round(float64(n)/float64(total)*1000) / 10,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Rounds < out[j].Rounds
	})
	return out
}
