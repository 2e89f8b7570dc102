package calculators

import (
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
)

// Strength is a side's aggregated attacking and defensive weight.
type Strength struct {
	Attack  float64 `json:"attack"`
	Defense float64 `json:"defense"`
}

type TeamStrengthCalculator interface {
	Strength(playing []*models.Player, morale float64) Strength
}

type GoalCalculator interface {
	// Factor draws the per-side random multiplier for one tick.
	Factor(src random.Source) float64
	// Probability is the chance that a side with own strength/factor scores
	// against the opponent within one minute.
	Probability(own Strength, ownFactor float64, opponent Strength, opponentFactor float64) float64
	// PickScorer chooses the scorer among the players on the pitch; nil when
	// every weight is zero.
	PickScorer(playing []*models.Player, src random.Source) *models.Player
}

type InjuryCalculator interface {
	Probability(p *models.Player) float64
}

type InjuryPeriodCalculator interface {
	Period(p *models.Player, src random.Source) int
}

type RedCardCalculator interface {
	Probability(p *models.Player) float64
}

type SuspensionCalculator interface {
	Period(p *models.Player, src random.Source) int
}

// PowerChangeInput describes one player's match for the power curve.
type PowerChangeInput struct {
	Power         int
	LeftBench     bool
	PlayedMinutes int
	Injured       bool
	InjuryPeriod  int
}

type PowerChangeCalculator interface {
	NewPower(in PowerChangeInput, src random.Source) int
}

type MoraleCalculator interface {
	Apply(morale float64, scored, conceded int) float64
	Clamp(morale float64) float64
}

type AttendanceCalculator interface {
	Attendance(home *models.Team, src random.Source) int
}

// Bundle groups one calculator per concern. Fields can be replaced
// independently to mix profiles.
type Bundle struct {
	TeamStrength TeamStrengthCalculator
	Goal         GoalCalculator
	Injury       InjuryCalculator
	InjuryPeriod InjuryPeriodCalculator
	RedCard      RedCardCalculator
	Suspension   SuspensionCalculator
	PowerChange  PowerChangeCalculator
	Morale       MoraleCalculator
	Attendance   AttendanceCalculator
	Calendar     CalendarConfig
}

// NewBundle builds every calculator from one profile.
func NewBundle(p Profile) Bundle {
	return Bundle{
		TeamStrength: NewTeamStrength(p.TeamStrength),
		Goal:         NewGoal(p.Goal),
		Injury:       NewInjury(p.Injury),
		InjuryPeriod: NewInjuryPeriod(p.InjuryPeriod),
		RedCard:      NewRedCard(p.RedCard),
		Suspension:   NewSuspension(p.Suspension),
		PowerChange:  NewPowerChange(p.PowerChange),
		Morale:       NewMorale(p.Morale),
		Attendance:   NewAttendance(p.Attendance),
		Calendar:     p.Calendar,
	}
}

// Default is the bundle built from DefaultProfile.
func Default() Bundle {
	return NewBundle(DefaultProfile())
}
