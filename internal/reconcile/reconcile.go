package reconcile

import (
	"sort"
	"time"

	"github.com/ti-dashboard/ti-data/internal/model"
	"github.com/ti-dashboard/ti-data/internal/store"
)

type UnresolvedFaction struct {
	Short string `json:"faction_short_name"`
	Rows  int    `json:"rows"`
}

type OrphanResult struct {
	GameID     int    `json:"game_id"`
	PlayerName string `json:"player_name"`
}

// Report lists the non-fatal gaps found while joining the three tables.
type Report struct {
	GeneratedAtUTC        string              `json:"generated_at_utc"`
	Games                 int                 `json:"games"`
	Results               int                 `json:"results"`
	Factions              int                 `json:"factions"`
	UnresolvedFactions    []UnresolvedFaction `json:"unresolved_factions"`
	OrphanResults         []OrphanResult      `json:"orphan_results"`
	ParticipatingSlots    int                 `json:"participating_slots"`
	NonParticipatingSlots int                 `json:"non_participating_slots"`
	MissingOptional       map[string]int      `json:"missing_optional"`
}

// Clean reports whether no referential gaps were found. Missing optional
// values and empty slots are expected in normal data and do not count.
func (r *Report) Clean() bool {
	return len(r.UnresolvedFactions) == 0 && len(r.OrphanResults) == 0
}

func (r *Report) MissingTotal() int {
	n := 0
	for _, c := range r.MissingOptional {
		n += c
	}
	return n
}

func BuildReport(t model.Tables, entries []model.PlayerGameEntry) *Report {
	known := make(map[string]bool, len(t.Factions))
	for _, f := range t.Factions {
		if f.ShortName != "" {
			known[f.ShortName] = true
		}
	}
	games := make(map[int]bool, len(t.Games))
	for _, g := range t.Games {
		games[g.GameID] = true
	}

	missing := map[string]int{
		"games.start_date":           0,
		"games.end_date":             0,
		"games.rounds":               0,
		"games.win_description":      0,
		"results.faction_short_name": 0,
		"results.victory_points":     0,
		"results.starting_position":  0,
		"factions.faction_full_name": 0,
	}
	for _, g := range t.Games {
		if g.StartDate == nil {
			missing["games.start_date"]++
		}
		if g.EndDate == nil {
			missing["games.end_date"]++
		}
		if g.Rounds == nil {
			missing["games.rounds"]++
		}
		if g.WinDescription == nil {
			missing["games.win_description"]++
		}
	}
	for _, f := range t.Factions {
		if f.FullName == nil {
			missing["factions.faction_full_name"]++
		}
	}

	unresolved := make(map[string]int)
	orphans := make([]OrphanResult, 0)
	for _, r := range t.Results {
		if r.FactionShortName == nil {
			missing["results.faction_short_name"]++
		} else if !known[*r.FactionShortName] {
			unresolved[*r.FactionShortName]++
		}
		if r.VictoryPoints == nil {
			missing["results.victory_points"]++
		}
		if r.StartingPosition == nil {
			missing["results.starting_position"]++
		}
		if !games[r.GameID] {
			orphans = append(orphans, OrphanResult{GameID: r.GameID, PlayerName: r.PlayerName})
		}
	}

	sort.Slice(orphans, func(i, j int) bool {
		if orphans[i].GameID != orphans[j].GameID {
			return orphans[i].GameID < orphans[j].GameID
		}
		return orphans[i].PlayerName < orphans[j].PlayerName
	})

	unresolvedList := make([]UnresolvedFaction, 0, len(unresolved))
	for short, n := range unresolved {
		unresolvedList = append(unresolvedList, UnresolvedFaction{Short: short, Rows: n})
	}
	sort.Slice(unresolvedList, func(i, j int) bool {
		return unresolvedList[i].Short < unresolvedList[j].Short
	})

	report := &Report{
		GeneratedAtUTC:     time.Now().UTC().Format(time.RFC3339),
		Games:              len(t.Games),
		Results:            len(t.Results),
		Factions:           len(t.Factions),
		UnresolvedFactions: unresolvedList,
		OrphanResults:      orphans,
		MissingOptional:    missing,
	}
	for _, e := range entries {
		if e.Participated {
			report.ParticipatingSlots++
		} else {
			report.NonParticipatingSlots++
		}
	}
	return report
}

func WriteReport(s *store.JSONStore, rel string, report *Report) error {
	return s.WriteJSON(rel, report)
}
