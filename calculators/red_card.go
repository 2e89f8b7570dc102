package calculators

import (
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
)

type redCard struct {
	cfg RedCardConfig
}

func NewRedCard(cfg RedCardConfig) RedCardCalculator {
	return &redCard{cfg: cfg}
}

func (c *redCard) Probability(p *models.Player) float64 {
	gap := c.cfg.DisciplineCeiling - float64(p.Discipline)
	if gap <= 0 {
		return 0
	}
	return c.cfg.Threshold * gap / c.cfg.DisciplineCeiling
}

type suspension struct {
	cfg SuspensionConfig
}

func NewSuspension(cfg SuspensionConfig) SuspensionCalculator {
	return &suspension{cfg: cfg}
}

func (c *suspension) Period(_ *models.Player, src random.Source) int {
	return random.IntRange(src, c.cfg.MinDays, c.cfg.MaxDays)
}
