package calculators

import (
	"math"

	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
)

type morale struct {
	cfg MoraleConfig
}

func NewMorale(cfg MoraleConfig) MoraleCalculator {
	return &morale{cfg: cfg}
}

func (c *morale) Apply(current float64, scored, conceded int) float64 {
	switch {
	case scored > conceded:
		current += c.cfg.WinDelta
	case scored == conceded:
		current += c.cfg.DrawDelta
	default:
		current += c.cfg.LossDelta
	}
	return c.Clamp(current)
}

func (c *morale) Clamp(v float64) float64 {
	return math.Max(c.cfg.Min, math.Min(c.cfg.Max, v))
}

type attendance struct {
	cfg AttendanceConfig
}

func NewAttendance(cfg AttendanceConfig) AttendanceCalculator {
	return &attendance{cfg: cfg}
}

func (c *attendance) Attendance(home *models.Team, src random.Source) int {
	share := clampProbability(c.cfg.Baseline + c.cfg.MoraleSlope*home.Morale)
	share *= random.Uniform(src, c.cfg.NoiseMin, c.cfg.NoiseMax)
	n := int(math.Round(float64(home.StadiumCapacity) * share))
	return clampInt(n, 0, home.StadiumCapacity)
}
