// Package calculators holds the stateless probability and aggregation
// functions of the match engine. Every calculator is parameterised by its own
// block of a Profile, so difficulty profiles can swap coefficients per concern.
package calculators

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/Dosada05/league-simulator/models"
	"gopkg.in/yaml.v3"
)

const DefaultProfileName = "default"

var ErrProfileNotFound = errors.New("calculator profile not found")

// PositionWeights assigns one coefficient per position.
type PositionWeights struct {
	Goalkeeper float64 `yaml:"goalkeeper" json:"goalkeeper"`
	Defender   float64 `yaml:"defender" json:"defender"`
	Midfielder float64 `yaml:"midfielder" json:"midfielder"`
	Attacker   float64 `yaml:"attacker" json:"attacker"`
}

func (w PositionWeights) For(p models.Position) float64 {
	switch p {
	case models.PositionGoalkeeper:
		return w.Goalkeeper
	case models.PositionDefender:
		return w.Defender
	case models.PositionMidfielder:
		return w.Midfielder
	case models.PositionAttacker:
		return w.Attacker
	}
	return 0
}

type TeamStrengthConfig struct {
	Attack         PositionWeights `yaml:"attack"`
	Defense        PositionWeights `yaml:"defense"`
	StarMultiplier float64         `yaml:"star_multiplier"`
	BaseMultiplier float64         `yaml:"base_multiplier"`
	MoraleBaseline float64         `yaml:"morale_baseline"`
	MoraleSlope    float64         `yaml:"morale_slope"`
}

type GoalConfig struct {
	FactorMin       float64         `yaml:"factor_min"`
	FactorMax       float64         `yaml:"factor_max"`
	ScalingConstant float64         `yaml:"scaling_constant"`
	Scoring         PositionWeights `yaml:"scoring"`
	StarMultiplier  float64         `yaml:"star_multiplier"`
	BaseMultiplier  float64         `yaml:"base_multiplier"`
}

type InjuryConfig struct {
	Baseline             float64 `yaml:"baseline"`
	PronenessSlope       float64 `yaml:"proneness_slope"`
	PastInjuryMultiplier float64 `yaml:"past_injury_multiplier"`
	PastInjuryCap        float64 `yaml:"past_injury_cap"`
}

type InjuryPeriodConfig struct {
	MeanDays      float64 `yaml:"mean_days"`
	PronenessDays float64 `yaml:"proneness_days"`
	StdDevDays    float64 `yaml:"stddev_days"`
	MinDays       int     `yaml:"min_days"`
	MaxDays       int     `yaml:"max_days"`
}

type RedCardConfig struct {
	DisciplineCeiling float64 `yaml:"discipline_ceiling"`
	Threshold         float64 `yaml:"threshold"`
}

type SuspensionConfig struct {
	MinDays int `yaml:"min_days"`
	MaxDays int `yaml:"max_days"`
}

type PowerChangeConfig struct {
	BenchIncreaseProbability float64 `yaml:"bench_increase_probability"`
	PlayedTimeThreshold      int     `yaml:"played_time_threshold"`
	IncreaseQuadratic        float64 `yaml:"increase_quadratic"`
	IncreaseCenter           float64 `yaml:"increase_center"`
	IncreaseFloor            float64 `yaml:"increase_floor"`
	DecreaseScale            float64 `yaml:"decrease_scale"`
	DecreaseRate             float64 `yaml:"decrease_rate"`
	InjuryLossMean           float64 `yaml:"injury_loss_mean"`
	InjuryLossStdDev         float64 `yaml:"injury_loss_stddev"`
}

type MoraleConfig struct {
	WinDelta  float64 `yaml:"win_delta"`
	DrawDelta float64 `yaml:"draw_delta"`
	LossDelta float64 `yaml:"loss_delta"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
}

type AttendanceConfig struct {
	Baseline    float64 `yaml:"baseline"`
	MoraleSlope float64 `yaml:"morale_slope"`
	NoiseMin    float64 `yaml:"noise_min"`
	NoiseMax    float64 `yaml:"noise_max"`
}

type CalendarConfig struct {
	MatchMinutes  int `yaml:"match_minutes"`
	DaysPerRound  int `yaml:"days_per_round"`
	OffSeasonDays int `yaml:"off_season_days"`
	BenchSize     int `yaml:"bench_size"`
	Substitutions int `yaml:"substitutions"`
}

// Profile is a full set of coefficients for every calculator.
type Profile struct {
	TeamStrength TeamStrengthConfig `yaml:"team_strength"`
	Goal         GoalConfig         `yaml:"goal"`
	Injury       InjuryConfig       `yaml:"injury"`
	InjuryPeriod InjuryPeriodConfig `yaml:"injury_period"`
	RedCard      RedCardConfig      `yaml:"red_card"`
	Suspension   SuspensionConfig   `yaml:"suspension"`
	PowerChange  PowerChangeConfig  `yaml:"power_change"`
	Morale       MoraleConfig       `yaml:"morale"`
	Attendance   AttendanceConfig   `yaml:"attendance"`
	Calendar     CalendarConfig     `yaml:"calendar"`
}

// DefaultProfile returns the built-in coefficients.
func DefaultProfile() Profile {
	return Profile{
		TeamStrength: TeamStrengthConfig{
			Attack:         PositionWeights{Goalkeeper: 0, Defender: 0.3, Midfielder: 0.8, Attacker: 1.2},
			Defense:        PositionWeights{Goalkeeper: 1.5, Defender: 1.2, Midfielder: 0.7, Attacker: 0.2},
			StarMultiplier: 1.3,
			BaseMultiplier: 1.0,
			MoraleBaseline: 0.8,
			MoraleSlope:    0.4,
		},
		Goal: GoalConfig{
			FactorMin:       0.75,
			FactorMax:       1.25,
			ScalingConstant: 50,
			Scoring:         PositionWeights{Goalkeeper: 0, Defender: 0.2, Midfielder: 0.6, Attacker: 1.4},
			StarMultiplier:  1.5,
			BaseMultiplier:  1.0,
		},
		Injury: InjuryConfig{
			Baseline:             0.0001,
			PronenessSlope:       0.00004,
			PastInjuryMultiplier: 0.05,
			PastInjuryCap:        1.5,
		},
		InjuryPeriod: InjuryPeriodConfig{
			MeanDays:      8,
			PronenessDays: 2,
			StdDevDays:    5,
			MinDays:       3,
			MaxDays:       60,
		},
		RedCard: RedCardConfig{
			DisciplineCeiling: 12,
			Threshold:         0.0002,
		},
		Suspension: SuspensionConfig{MinDays: 7, MaxDays: 21},
		PowerChange: PowerChangeConfig{
			BenchIncreaseProbability: 0.05,
			PlayedTimeThreshold:      60,
			IncreaseQuadratic:        0.0002,
			IncreaseCenter:           30,
			IncreaseFloor:            0.05,
			DecreaseScale:            0.3,
			DecreaseRate:             math.Log(2.5) / 30,
			InjuryLossMean:           0.1,
			InjuryLossStdDev:         0.05,
		},
		Morale: MoraleConfig{WinDelta: 0.1, DrawDelta: 0, LossDelta: -0.1, Min: 0, Max: 1},
		Attendance: AttendanceConfig{
			Baseline:    0.4,
			MoraleSlope: 0.5,
			NoiseMin:    0.85,
			NoiseMax:    1.0,
		},
		Calendar: CalendarConfig{
			MatchMinutes:  90,
			DaysPerRound:  7,
			OffSeasonDays: 56,
			BenchSize:     5,
			Substitutions: 3,
		},
	}
}

type profilesFile struct {
	Profiles map[string]yaml.Node `yaml:"profiles"`
}

// ParseProfiles decodes a YAML document of named profiles. Fields a profile
// leaves out keep their DefaultProfile value.
func ParseProfiles(data []byte) (map[string]Profile, error) {
	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse calculator profiles: %w", err)
	}
	profiles := map[string]Profile{DefaultProfileName: DefaultProfile()}
	for name, node := range file.Profiles {
		p := DefaultProfile()
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode profile %q: %w", name, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		profiles[name] = p
	}
	return profiles, nil
}

// LoadProfile reads path (if any) and returns the named profile.
func LoadProfile(path, name string) (Profile, error) {
	if name == "" {
		name = DefaultProfileName
	}
	profiles := map[string]Profile{DefaultProfileName: DefaultProfile()}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Profile{}, fmt.Errorf("failed to read calculator profiles %s: %w", path, err)
		}
		profiles, err = ParseProfiles(data)
		if err != nil {
			return Profile{}, err
		}
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return p, nil
}

func (p Profile) Validate() error {
	switch {
	case p.Goal.ScalingConstant <= 0:
		return errors.New("goal.scaling_constant must be positive")
	case p.Goal.FactorMin <= 0 || p.Goal.FactorMax < p.Goal.FactorMin:
		return errors.New("goal factor range is invalid")
	case p.RedCard.DisciplineCeiling <= 0:
		return errors.New("red_card.discipline_ceiling must be positive")
	case p.Morale.Max < p.Morale.Min:
		return errors.New("morale bounds are inverted")
	case p.Calendar.MatchMinutes <= 0:
		return errors.New("calendar.match_minutes must be positive")
	case p.Calendar.BenchSize < 0 || p.Calendar.Substitutions < 0:
		return errors.New("calendar bench size and substitutions must not be negative")
	case p.Suspension.MaxDays < p.Suspension.MinDays || p.InjuryPeriod.MaxDays < p.InjuryPeriod.MinDays:
		return errors.New("period bounds are inverted")
	}
	return nil
}
