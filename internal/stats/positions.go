package stats

import (
	"math"
	"sort"

	"github.com/ti-dashboard/ti-data/internal/model"
)

// PositionStats compares how often each starting position wins against the
// rate expected if every seat were equal (1/n for an n-player game).
type PositionStats struct {
	Position     int     `json:"position"`
	Wins         int     `json:"wins"`
	Total        int     `json:"total"`
	WinRate      float64 `json:"win_rate"`
	ExpectedRate float64 `json:"expected_rate"`
}

type PositionReport struct {
	Positions       []PositionStats `json:"positions"`
	OverallExpected float64         `json:"overall_expected"`
}

// StartingPositions counts participants with a known starting position.
// Rates are percentages rounded to one decimal.
func StartingPositions(doc *model.Document) PositionReport {
	out := PositionReport{Positions: make([]PositionStats, 0)}
	if doc == nil {
		return out
	}

	type acc struct {
		wins, total int
		expected    float64
	}
	byPos := make(map[int]*acc)
	for _, g := range doc.Games {
		seated := 0
		for _, p := range g.Players {
			if p.StartingPosition != nil {
				seated++
			}
		}
		if seated == 0 {
			continue
		}
		for _, p := range g.Players {
			if p.StartingPosition == nil {
				continue
			}
			a, ok := byPos[*p.StartingPosition]
			if !ok {
				a = &acc{}
				byPos[*p.StartingPosition] = a
			}
			a.total++
			a.expected += 1 / float64(seated)
			if p.Winner {
				a.wins++
			}
		}
	}

	totalEntries := 0
	expectedSum := 0.0
	for pos, a := range byPos {
		ps := PositionStats{
			Position:     pos,
			Wins:         a.wins,
			Total:        a.total,
			WinRate:      round1(float64(a.wins) / float64(a.total) * 100),
			ExpectedRate: round1(a.expected / float64(a.total) * 100),
		}
		out.Positions = append(out.Positions, ps)
		totalEntries += ps.Total
		expectedSum += ps.ExpectedRate * float64(ps.Total) / 100
	}
	sort.Slice(out.Positions, func(i, j int) bool {
		return out.Positions[i].Position < out.Positions[j].Position
	})
	if totalEntries > 0 {
		out.OverallExpected = round1(expectedSum / float64(totalEntries) * 100)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
