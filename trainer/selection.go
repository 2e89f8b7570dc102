// Package trainer holds the heuristics AI-controlled sides use to pick a
// squad and react to injuries and red cards.
package trainer

import (
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/sorters"
)

const PlayingSize = 11

// SelectionConfig drives PickFixtureSquad.
type SelectionConfig struct {
	BenchSize      int
	MinDefenders   int
	MinMidfielders int
	MinAttackers   int
}

func DefaultSelection() SelectionConfig {
	return SelectionConfig{BenchSize: 5, MinDefenders: 3, MinMidfielders: 2, MinAttackers: 1}
}

func (c SelectionConfig) minimum(pos models.Position) int {
	switch pos {
	case models.PositionDefender:
		return c.MinDefenders
	case models.PositionMidfielder:
		return c.MinMidfielders
	case models.PositionAttacker:
		return c.MinAttackers
	}
	return 0
}

var lines = []models.Position{models.PositionDefender, models.PositionMidfielder, models.PositionAttacker}

// pools keeps one power-sorted queue per outfield line.
type pools map[models.Position][]*models.Player

func newPools(outfield []*models.Player) pools {
	pl := make(pools, len(lines))
	for _, pos := range lines {
		pl[pos] = sorters.ByPower(sorters.WithPosition(outfield, pos))
	}
	return pl
}

func (pl pools) pop(pos models.Position) *models.Player {
	q := pl[pos]
	if len(q) == 0 {
		return nil
	}
	pl[pos] = q[1:]
	return q[0]
}

// popBest takes the strongest head across lines; ties go to the earlier line
// (defender, then midfielder, then attacker).
func (pl pools) popBest() *models.Player {
	var bestPos models.Position
	var best *models.Player
	for _, pos := range lines {
		q := pl[pos]
		if len(q) == 0 {
			continue
		}
		if best == nil || q[0].Power > best.Power {
			best, bestPos = q[0], pos
		}
	}
	if best == nil {
		return nil
	}
	return pl.pop(bestPos)
}

func (pl pools) empty() bool {
	for _, pos := range lines {
		if len(pl[pos]) > 0 {
			return false
		}
	}
	return true
}

// PickFixtureSquad selects the starting eleven and the bench from the
// eligible players of one team.
func PickFixtureSquad(eligible []*models.Player, cfg SelectionConfig) models.SquadRecord {
	var squad models.SquadRecord
	goalkeepers := sorters.ByPower(sorters.WithPosition(eligible, models.PositionGoalkeeper))

	if len(goalkeepers) == 0 {
		all := sorters.ByPower(eligible)
		n := min(PlayingSize, len(all))
		squad.Playing = all[:n]
		rest := all[n:]
		squad.Bench = rest[:min(cfg.BenchSize, len(rest))]
		return squad
	}

	squad.Playing = append(squad.Playing, goalkeepers[0])
	if len(goalkeepers) > 1 && cfg.BenchSize > 0 {
		squad.Bench = append(squad.Bench, goalkeepers[1])
	}

	outfield := sorters.Outfield(eligible)
	if len(outfield) <= PlayingSize-1 {
		squad.Playing = append(squad.Playing, sorters.ByPower(outfield)...)
		return squad
	}

	pl := newPools(outfield)
	for _, pos := range lines {
		for i := 0; i < cfg.minimum(pos) && len(squad.Playing) < PlayingSize; i++ {
			p := pl.pop(pos)
			if p == nil {
				break
			}
			squad.Playing = append(squad.Playing, p)
		}
	}
	for len(squad.Playing) < PlayingSize {
		p := pl.popBest()
		if p == nil {
			break
		}
		squad.Playing = append(squad.Playing, p)
	}

	for _, pos := range lines {
		if len(squad.Bench) >= cfg.BenchSize {
			break
		}
		if p := pl.pop(pos); p != nil {
			squad.Bench = append(squad.Bench, p)
		}
	}
	for len(squad.Bench) < cfg.BenchSize && !pl.empty() {
		squad.Bench = append(squad.Bench, pl.popBest())
	}
	return squad
}
