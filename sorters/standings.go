package sorters

import (
	"sort"

	"github.com/Dosada05/league-simulator/models"
)

// Tie is a pair of adjacent standings the tiebreak chain could not separate.
type Tie struct {
	First  int
	Second int
}

// RankStandings orders by points, goal difference and goals scored, all
// descending. Ties beyond that chain keep their input order and are reported
// so callers can log them.
func RankStandings(standings []*models.Standing) ([]*models.Standing, []Tie) {
	out := append([]*models.Standing(nil), standings...)
	sort.SliceStable(out, func(i, j int) bool {
		return compareStandings(out[i], out[j]) < 0
	})
	var ties []Tie
	for i := 1; i < len(out); i++ {
		if compareStandings(out[i-1], out[i]) == 0 {
			ties = append(ties, Tie{First: out[i-1].TeamID, Second: out[i].TeamID})
		}
	}
	return out, ties
}

func compareStandings(a, b *models.Standing) int {
	if a.Points != b.Points {
		return b.Points - a.Points
	}
	if a.GoalDifference() != b.GoalDifference() {
		return b.GoalDifference() - a.GoalDifference()
	}
	return b.GoalsFor - a.GoalsFor
}
