package stats

import (
	"strconv"
	"strings"
	"testing"

	"github.com/ti-dashboard/ti-data/internal/model"
)

func filterDocument() *model.Document {
	return &model.Document{
		Games: []model.Game{
			{
				GameID: 1, StartDate: model.NewDate(2024, 1, 10), MaxVictoryPoints: 10, NPlayers: 2, Rounds: model.Ptr(5),
				Players: []model.GamePlayer{player("Alice", "Jol", 10, true), player("Bob", "Sol", 8, false)},
			},
			{
				GameID: 2, StartDate: model.NewDate(2024, 2, 1), MaxVictoryPoints: 14, NPlayers: 3, Rounds: model.Ptr(7),
				Players: []model.GamePlayer{player("Bob", "Naaz", 14, true), player("Cat", "", 9, false), player("Dan", "Jol", 6, false)},
			},
			{
				GameID: 3, StartDate: model.NewDate(2024, 3, 1), MaxVictoryPoints: 10, NPlayers: 2, Rounds: model.Ptr(5),
				Players: []model.GamePlayer{player("Cat", "Sol", 10, true), player("Dan", "Hacan", 4, false)},
			},
			{
				GameID: 4, MaxVictoryPoints: 10, NPlayers: 1,
				Players: []model.GamePlayer{player("Alice", "Hacan", 10, true)},
			},
		},
		Players: []string{"Alice", "Bob", "Cat", "Dan"},
	}
}

func ids(games []model.Game) string {
	parts := make([]string, 0, len(games))
	for _, g := range games {
		parts = append(parts, strconv.Itoa(g.GameID))
	}
	return strings.Join(parts, ",")
}

func TestFilter_Apply(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"no filter", Filter{}, "1,2,3,4"},
		{"one player", Filter{Players: []string{"Alice"}}, "1,4"},
		{"any of players", Filter{Players: []string{"Alice", "Cat"}}, "1,2,3,4"},
		{"unknown player", Filter{Players: []string{"Zed"}}, ""},
		{"faction", Filter{Factions: []string{"Hacan"}}, "3,4"},
		{"any of factions", Filter{Factions: []string{"Naaz", "Jol"}}, "1,2"},
		{"player count", Filter{PlayerCounts: []int{2}}, "1,3"},
		{"player counts", Filter{PlayerCounts: []int{1, 3}}, "2,4"},
		{"game type", Filter{MaxVictoryPoints: []int{14}}, "2"},
		{"start bound inclusive", Filter{StartDate: model.NewDate(2024, 2, 1)}, "2,3"},
		{"end bound inclusive", Filter{EndDate: model.NewDate(2024, 2, 1)}, "1,2"},
		{"closed range", Filter{StartDate: model.NewDate(2024, 1, 11), EndDate: model.NewDate(2024, 2, 28)}, "2"},
		{"combined", Filter{Players: []string{"Dan"}, MaxVictoryPoints: []int{10}}, "3"},
	}
	doc := filterDocument()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ids(tc.filter.Apply(doc)); got != tc.want {
				t.Errorf("Apply = [%s], want [%s]", got, tc.want)
			}
		})
	}
}

func TestFilter_PlayerMustHaveParticipated(t *testing.T) {
	// Nested lists only ever hold participants, so a player with a result row
	// but no victory points never shows up and never matches.
	doc := filterDocument()
	if got := ids(Filter{Players: []string{"Eve"}}.Apply(doc)); got != "" {
		t.Errorf("Apply = [%s], want none", got)
	}
}

func TestFilter_Active(t *testing.T) {
	if n := (Filter{}).Active(); n != 0 {
		t.Errorf("empty Active = %d", n)
	}
	f := Filter{Players: []string{"A"}, PlayerCounts: []int{4}, StartDate: model.NewDate(2024, 1, 1), EndDate: model.NewDate(2024, 2, 1)}
	if n := f.Active(); n != 3 {
		t.Errorf("Active = %d, want 3 (date range counts once)", n)
	}
}

func TestFilter_DocumentFeedsStats(t *testing.T) {
	doc := Filter{MaxVictoryPoints: []int{10}}.Document(filterDocument())
	if len(doc.Players) != 4 {
		t.Errorf("player list = %v, want untouched", doc.Players)
	}
	o := Compute(doc, nil)
	if o.TotalGames != 3 {
		t.Errorf("TotalGames = %d, want 3", o.TotalGames)
	}
	most, ok := o.MostPlayedFaction()
	if !ok || most.Short != "Hacan" || most.Games != 2 {
		t.Errorf("MostPlayedFaction = %+v, want Hacan x2", most)
	}

	if got := (Filter{}).Document(nil); got.Games == nil || len(got.Games) != 0 {
		t.Errorf("nil document = %+v", got)
	}
}

func TestRoundDistribution(t *testing.T) {
	got := RoundDistribution(filterDocument().Games)
	if len(got) != 2 {
		t.Fatalf("distribution = %+v, want rounds 5 and 7", got)
	}
	if got[0].Rounds != 5 || got[0].Count != 2 || got[0].Percentage != 66.7 {
		t.Errorf("rounds 5 = %+v, want 2 games, 66.7%%", got[0])
	}
	if got[1].Rounds != 7 || got[1].Count != 1 || got[1].Percentage != 33.3 {
		t.Errorf("rounds 7 = %+v, want 1 game, 33.3%%", got[1])
	}

	if empty := RoundDistribution(nil); empty == nil || len(empty) != 0 {
		t.Errorf("RoundDistribution(nil) = %v, want empty", empty)
	}
}
