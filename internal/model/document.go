package model

type Document struct {
	Games    []Game    `json:"games"`
	Players  []string  `json:"players"`
	Factions []Faction `json:"factions"`
}

type Game struct {
	GameID           int          `json:"game_id"`
	GameName         string       `json:"game_name"`
	StartDate        *Date        `json:"start_date"`
	EndDate          *Date        `json:"end_date"`
	Rounds           *int         `json:"rounds"`
	MaxVictoryPoints int          `json:"max_victory_points"`
	NPlayers         int          `json:"n_players"`
	WinDescription   *string      `json:"win_description"`
	Players          []GamePlayer `json:"players"`
}

type GamePlayer struct {
	PlayerName              string   `json:"player_name"`
	FactionShort            *string  `json:"faction_short"`
	FactionFull             *string  `json:"faction_full"`
	VictoryPoints           int      `json:"victory_points"`
	StartingPosition        *int     `json:"starting_position"`
	Winner                  bool     `json:"winner"`
	CumulatedNParticipated  int      `json:"cumulated_n_participated"`
	CumulatedNWinner        int      `json:"cumulated_n_winner"`
	CumulatedOverallWinRate *float64 `json:"cumulated_overall_win_rate"`
}

type Faction struct {
	Short string  `json:"short"`
	Full  *string `json:"full"`
	Icon  string  `json:"icon"`
}

func (d *Document) Game(gameID int) (Game, bool) {
	for _, g := range d.Games {
		if g.GameID == gameID {
			return g, true
		}
	}
	return Game{}, false
}
