package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day. It encodes as "YYYY-MM-DD"; a nil *Date encodes as null.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) *Date {
	return &Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) *Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (*Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return DateOf(t), nil
	}
	return nil, fmt.Errorf("invalid date %q", s)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

type GameRecord struct {
	GameID           int
	GameName         string
	StartDate        *Date
	EndDate          *Date
	Rounds           *int
	MaxVictoryPoints *int
	WinDescription   *string
}

// ResultRecord is one row of the results table. A nil VictoryPoints means the
// player did not take part in the game.
type ResultRecord struct {
	GameID           int
	PlayerName       string
	FactionShortName *string
	VictoryPoints    *int
	StartingPosition *int
}

type FactionRecord struct {
	ShortName string
	FullName  *string
}

type Tables struct {
	Games    []GameRecord
	Results  []ResultRecord
	Factions []FactionRecord
}

// PlayerGameEntry is one (game, player) cell of the cross product, flattened
// with the game's metadata.
type PlayerGameEntry struct {
	GameID                  int      `json:"game_id"`
	GameName                string   `json:"game_name"`
	GameMaxVictoryPoints    int      `json:"game_max_victory_points"`
	GameNPlayers            int      `json:"game_n_players"`
	StartDate               *Date    `json:"start_date"`
	EndDate                 *Date    `json:"end_date"`
	Rounds                  *int     `json:"rounds"`
	PlayerName              string   `json:"player_name"`
	FactionShortName        *string  `json:"faction_short_name"`
	FactionFullName         *string  `json:"faction_full_name"`
	VictoryPoints           *int     `json:"victory_points"`
	StartingPosition        *int     `json:"starting_position"`
	Participated            bool     `json:"participated"`
	Winner                  bool     `json:"winner"`
	CumulatedNParticipated  int      `json:"cumulated_n_participated"`
	CumulatedNWinner        int      `json:"cumulated_n_winner"`
	CumulatedOverallWinRate *float64 `json:"cumulated_overall_win_rate"`
}

func Ptr[T any](v T) *T {
	return &v
}
