package source

import (
	"github.com/ti-dashboard/ti-data/internal/model"
)

func decodeGames(t *table) ([]model.GameRecord, error) {
	out := make([]model.GameRecord, 0, len(t.rows))
	for i := range t.rows {
		id, err := t.requiredIntAt(i, "game_id")
		if err != nil {
			return nil, err
		}
		g := model.GameRecord{GameID: id}
		if name := t.stringAt(i, "game_name"); name != nil {
			g.GameName = *name
		}
		if g.StartDate, err = t.dateAt(i, "start_date"); err != nil {
			return nil, err
		}
		if g.EndDate, err = t.dateAt(i, "end_date"); err != nil {
			return nil, err
		}
		if g.Rounds, err = t.intAt(i, "rounds"); err != nil {
			return nil, err
		}
		if g.MaxVictoryPoints, err = t.intAt(i, "game_max_victory_points"); err != nil {
			return nil, err
		}
		g.WinDescription = t.stringAt(i, "win_description")
		out = append(out, g)
	}
	return out, nil
}

func decodeResults(t *table) ([]model.ResultRecord, error) {
	out := make([]model.ResultRecord, 0, len(t.rows))
	for i := range t.rows {
		id, err := t.requiredIntAt(i, "game_id")
		if err != nil {
			return nil, err
		}
		r := model.ResultRecord{GameID: id}
		if name := t.stringAt(i, "player_name"); name != nil {
			r.PlayerName = *name
		}
		r.FactionShortName = t.stringAt(i, "faction_short_name")
		if r.VictoryPoints, err = t.intAt(i, "victory_points"); err != nil {
			return nil, err
		}
		if r.StartingPosition, err = t.intAt(i, "starting_position"); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func decodeFactions(t *table) ([]model.FactionRecord, error) {
	out := make([]model.FactionRecord, 0, len(t.rows))
	for i := range t.rows {
		f := model.FactionRecord{FullName: t.stringAt(i, "faction_full_name")}
		if short := t.stringAt(i, "faction_short_name"); short != nil {
			f.ShortName = *short
		}
		out = append(out, f)
	}
	return out, nil
}
