package calculators

import "github.com/Dosada05/league-simulator/models"

type teamStrength struct {
	cfg TeamStrengthConfig
}

func NewTeamStrength(cfg TeamStrengthConfig) TeamStrengthCalculator {
	return &teamStrength{cfg: cfg}
}

// Strength sums power × star-or-base × position multiplier over the pitch and
// scales both totals by baseline + slope×morale.
func (c *teamStrength) Strength(playing []*models.Player, morale float64) Strength {
	var s Strength
	for _, p := range playing {
		mult := c.cfg.BaseMultiplier
		if p.Star {
			mult = c.cfg.StarMultiplier
		}
		weight := float64(p.Power) * mult
		s.Attack += weight * c.cfg.Attack.For(p.Position)
		s.Defense += weight * c.cfg.Defense.For(p.Position)
	}
	factor := c.cfg.MoraleBaseline + c.cfg.MoraleSlope*morale
	s.Attack *= factor
	s.Defense *= factor
	return s
}
