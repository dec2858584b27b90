package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ti-dashboard/ti-data/internal/model"
)

const DefaultIconBasePath = "/icons/faction_icons"

// DefaultIconOverrides maps faction short names to icon file names where the
// two differ.
func DefaultIconOverrides() map[string]string {
	return map[string]string{
		"Jol":  "Jol Nar",
		"Naaz": "Naaz-Rokha",
	}
}

type Options struct {
	IconBasePath  string
	IconOverrides map[string]string
}

func DefaultOptions() Options {
	return Options{
		IconBasePath:  DefaultIconBasePath,
		IconOverrides: DefaultIconOverrides(),
	}
}

// IconPath returns the web path of a faction's icon.
func (o Options) IconPath(short string) string {
	base := o.IconBasePath
	if base == "" {
		base = DefaultIconBasePath
	}
	name := short
	if mapped, ok := o.IconOverrides[short]; ok && mapped != "" {
		name = mapped
	}
	return fmt.Sprintf("%s/%s.png", strings.TrimRight(base, "/"), name)
}

// ValidationError reports input rows that cannot be keyed or scored.
type ValidationError struct {
	Table  string
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s row (%s): %s", e.Table, e.Key, e.Reason)
}

func Build(t model.Tables, opts Options) (*model.Document, error) {
	doc, _, err := BuildWithGrain(t, opts)
	return doc, err
}

// BuildWithGrain runs the pipeline and also returns the expanded grain the
// document was assembled from.
func BuildWithGrain(t model.Tables, opts Options) (*model.Document, []model.PlayerGameEntry, error) {
	g, err := expand(t)
	if err != nil {
		return nil, nil, err
	}

	games := make([]model.Game, 0, len(g.games))
	width := len(g.players)
	for gi, rec := range g.games {
		block := g.entries[gi*width : (gi+1)*width]
		blockIdx := g.resultIdx[gi*width : (gi+1)*width]

		type row struct {
			e   model.PlayerGameEntry
			idx int
		}
		rows := make([]row, 0, width)
		for i, e := range block {
			if e.Participated {
				rows = append(rows, row{e: e, idx: blockIdx[i]})
			}
		}
		sort.SliceStable(rows, func(i, j int) bool {
			vi, vj := *rows[i].e.VictoryPoints, *rows[j].e.VictoryPoints
			if vi != vj {
				return vi > vj
			}
			return rows[i].idx < rows[j].idx
		})

		players := make([]model.GamePlayer, 0, len(rows))
		for _, r := range rows {
			players = append(players, model.GamePlayer{
				PlayerName:              r.e.PlayerName,
				FactionShort:            r.e.FactionShortName,
				FactionFull:             r.e.FactionFullName,
				VictoryPoints:           *r.e.VictoryPoints,
				StartingPosition:        r.e.StartingPosition,
				Winner:                  r.e.Winner,
				CumulatedNParticipated:  r.e.CumulatedNParticipated,
				CumulatedNWinner:        r.e.CumulatedNWinner,
				CumulatedOverallWinRate: r.e.CumulatedOverallWinRate,
			})
		}

		games = append(games, model.Game{
			GameID:           rec.GameID,
			GameName:         rec.GameName,
			StartDate:        rec.StartDate,
			EndDate:          rec.EndDate,
			Rounds:           rec.Rounds,
			MaxVictoryPoints: *rec.MaxVictoryPoints,
			NPlayers:         len(players),
			WinDescription:   rec.WinDescription,
			Players:          players,
		})
	}

	names := make([]string, len(g.players))
	copy(names, g.players)

	doc := &model.Document{
		Games:    games,
		Players:  names,
		Factions: buildFactions(t.Factions, opts),
	}
	return doc, g.entries, nil
}

func buildFactions(rows []model.FactionRecord, opts Options) []model.Faction {
	seen := make(map[string]bool, len(rows))
	out := make([]model.Faction, 0, len(rows))
	for _, f := range rows {
		if f.ShortName == "" || seen[f.ShortName] {
			continue
		}
		seen[f.ShortName] = true
		out = append(out, model.Faction{
			Short: f.ShortName,
			Full:  f.FullName,
			Icon:  opts.IconPath(f.ShortName),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Short < out[j].Short
	})
	return out
}
