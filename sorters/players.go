// Package sorters ranks players and standings for the trainer, the
// processors and the HTTP layer.
package sorters

import (
	"sort"

	"github.com/Dosada05/league-simulator/models"
)

// Offensive and defensive line priorities used when a side has to choose
// which outfield player to give up.
var (
	OffensivePriority = []models.Position{models.PositionAttacker, models.PositionMidfielder, models.PositionDefender}
	DefensivePriority = []models.Position{models.PositionDefender, models.PositionMidfielder, models.PositionAttacker}
)

// ByPower returns a copy sorted by power descending; equal power keeps the
// lower id first.
func ByPower(players []*models.Player) []*models.Player {
	out := append([]*models.Player(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Power != out[j].Power {
			return out[i].Power > out[j].Power
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// WithPosition keeps players of the given position, preserving order.
func WithPosition(players []*models.Player, pos models.Position) []*models.Player {
	out := make([]*models.Player, 0, len(players))
	for _, p := range players {
		if p.Position == pos {
			out = append(out, p)
		}
	}
	return out
}

// Outfield drops goalkeepers.
func Outfield(players []*models.Player) []*models.Player {
	out := make([]*models.Player, 0, len(players))
	for _, p := range players {
		if p.Position != models.PositionGoalkeeper {
			out = append(out, p)
		}
	}
	return out
}

// Strongest returns the highest-power player of pos, or nil.
func Strongest(players []*models.Player, pos models.Position) *models.Player {
	var best *models.Player
	for _, p := range players {
		if p.Position != pos {
			continue
		}
		if best == nil || p.Power > best.Power || (p.Power == best.Power && p.ID < best.ID) {
			best = p
		}
	}
	return best
}

// Weakest returns the lowest-power player of pos, or nil.
func Weakest(players []*models.Player, pos models.Position) *models.Player {
	var worst *models.Player
	for _, p := range players {
		if p.Position != pos {
			continue
		}
		if worst == nil || p.Power < worst.Power || (p.Power == worst.Power && p.ID > worst.ID) {
			worst = p
		}
	}
	return worst
}

// StrongestOf walks the chain and returns the strongest player of the first
// position that has one.
func StrongestOf(players []*models.Player, chain []models.Position) *models.Player {
	for _, pos := range chain {
		if p := Strongest(players, pos); p != nil {
			return p
		}
	}
	return nil
}

// ByPriority sorts by position priority (earlier in order first) and then by
// power descending. Positions missing from order go last.
func ByPriority(players []*models.Player, order []models.Position) []*models.Player {
	rank := make(map[models.Position]int, len(order))
	for i, pos := range order {
		rank[pos] = i
	}
	rankOf := func(p models.Position) int {
		if r, ok := rank[p]; ok {
			return r
		}
		return len(order)
	}
	out := ByPower(players)
	sort.SliceStable(out, func(i, j int) bool {
		return rankOf(out[i].Position) < rankOf(out[j].Position)
	})
	return out
}

// LastOfPriority returns the weakest player of the last position run in the
// priority ordering, i.e. the least valuable player for that style of play.
func LastOfPriority(players []*models.Player, order []models.Position) *models.Player {
	sorted := ByPriority(players, order)
	if len(sorted) == 0 {
		return nil
	}
	return sorted[len(sorted)-1]
}
