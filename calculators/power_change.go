package calculators

import (
	"math"

	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
)

type powerChange struct {
	cfg PowerChangeConfig
}

func NewPowerChange(cfg PowerChangeConfig) PowerChangeCalculator {
	return &powerChange{cfg: cfg}
}

// IncreaseProbability is the chance of +1 for an uninjured player whose
// played time is under the threshold.
func (c *powerChange) IncreaseProbability(minutes int) float64 {
	d := float64(minutes) - c.cfg.IncreaseCenter
	return clampProbability(c.cfg.IncreaseQuadratic*d*d + c.cfg.IncreaseFloor)
}

// DecreaseProbability is the chance of −1 for an uninjured player at or above
// the threshold.
func (c *powerChange) DecreaseProbability(minutes int) float64 {
	over := float64(minutes - c.cfg.PlayedTimeThreshold)
	return clampProbability(c.cfg.DecreaseScale * math.Exp(c.cfg.DecreaseRate*over))
}

func (c *powerChange) NewPower(in PowerChangeInput, src random.Source) int {
	power := in.Power
	switch {
	case !in.LeftBench:
		if random.Bernoulli(src, c.cfg.BenchIncreaseProbability) {
			power++
		}
	case in.Injured:
		factor := c.cfg.InjuryLossMean + c.cfg.InjuryLossStdDev*src.NormFloat64()
		loss := int(math.Round(float64(in.InjuryPeriod) * factor))
		if loss > 0 {
			power -= loss
		}
	case in.PlayedMinutes < c.cfg.PlayedTimeThreshold:
		if random.Bernoulli(src, c.IncreaseProbability(in.PlayedMinutes)) {
			power++
		}
	default:
		if random.Bernoulli(src, c.DecreaseProbability(in.PlayedMinutes)) {
			power--
		}
	}
	return models.ClampPower(power)
}

func clampProbability(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}
