package calculators

import (
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
)

type goal struct {
	cfg GoalConfig
}

func NewGoal(cfg GoalConfig) GoalCalculator {
	return &goal{cfg: cfg}
}

func (c *goal) Factor(src random.Source) float64 {
	return random.Uniform(src, c.cfg.FactorMin, c.cfg.FactorMax)
}

func (c *goal) Probability(own Strength, ownFactor float64, opponent Strength, opponentFactor float64) float64 {
	denominator := opponent.Defense * opponentFactor * c.cfg.ScalingConstant
	numerator := own.Attack * ownFactor
	if numerator <= 0 {
		return 0
	}
	// A side with nobody able to defend concedes every minute.
	if denominator <= 0 {
		return 1
	}
	p := numerator / denominator
	if p > 1 {
		return 1
	}
	return p
}

func (c *goal) weight(p *models.Player) float64 {
	mult := c.cfg.BaseMultiplier
	if p.Star {
		mult = c.cfg.StarMultiplier
	}
	return float64(p.Power) * c.cfg.Scoring.For(p.Position) * mult
}

func (c *goal) PickScorer(playing []*models.Player, src random.Source) *models.Player {
	weights := make([]float64, len(playing))
	for i, p := range playing {
		weights[i] = c.weight(p)
	}
	idx := random.WeightedIndex(src, weights)
	if idx < 0 {
		return nil
	}
	return playing[idx]
}
