package calculators

import (
	"math"

	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
)

type injury struct {
	cfg InjuryConfig
}

func NewInjury(cfg InjuryConfig) InjuryCalculator {
	return &injury{cfg: cfg}
}

// Probability is (baseline + proneness×slope), amplified by past injuries up
// to the configured cap.
func (c *injury) Probability(p *models.Player) float64 {
	base := c.cfg.Baseline + float64(p.InjuryProneness)*c.cfg.PronenessSlope
	history := 1 + float64(p.Stats.Injuries)*c.cfg.PastInjuryMultiplier
	if c.cfg.PastInjuryCap > 0 {
		history = math.Min(history, c.cfg.PastInjuryCap)
	}
	return base * history
}

type injuryPeriod struct {
	cfg InjuryPeriodConfig
}

func NewInjuryPeriod(cfg InjuryPeriodConfig) InjuryPeriodCalculator {
	return &injuryPeriod{cfg: cfg}
}

func (c *injuryPeriod) Period(p *models.Player, src random.Source) int {
	mean := c.cfg.MeanDays + float64(p.InjuryProneness)*c.cfg.PronenessDays
	days := random.NormalInt(src, mean, c.cfg.StdDevDays)
	return clampInt(days, c.cfg.MinDays, c.cfg.MaxDays)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
