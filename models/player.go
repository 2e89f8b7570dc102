package models

// Position is the line a player is registered for.
type Position string

const (
	PositionGoalkeeper Position = "goalkeeper"
	PositionDefender   Position = "defender"
	PositionMidfielder Position = "midfielder"
	PositionAttacker   Position = "attacker"
)

// Positions lists every position in lineup order.
var Positions = []Position{PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionAttacker}

func (p Position) Valid() bool {
	switch p {
	case PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionAttacker:
		return true
	}
	return false
}

const (
	MinPower      = 1
	MaxPower      = 50
	MaxDiscipline = 10
	MaxProneness  = 10
)

// PlayerStats holds the career counters of a player.
type PlayerStats struct {
	Games       int `json:"games" db:"games"`
	Goals       int `json:"goals" db:"goals"`
	SeasonGoals int `json:"season_goals" db:"season_goals"`
	RedCards    int `json:"red_cards" db:"red_cards"`
	Injuries    int `json:"injuries" db:"injuries"`
}

// Player представляет футболиста лиги.
type Player struct {
	ID               int      `json:"id" db:"id"`
	TeamID           *int     `json:"team_id,omitempty" db:"team_id"`
	Name             string   `json:"name" db:"name"`
	Position         Position `json:"position" db:"position"`
	Power            int      `json:"power" db:"power"`
	Star             bool     `json:"star" db:"star"`
	Discipline       int      `json:"discipline" db:"discipline"`
	Salary           int      `json:"salary" db:"salary"`
	Available        bool     `json:"available" db:"available"`
	SuspensionPeriod int      `json:"suspension_period" db:"suspension_period"`
	InjuryPeriod     int      `json:"injury_period" db:"injury_period"`
	// Hidden from API consumers.
	InjuryProneness int `json:"-" db:"injury_proneness"`

	Stats PlayerStats `json:"stats" db:"-"`
}

// Eligible reports whether the player can be selected for a fixture.
func (p *Player) Eligible() bool {
	return p.Available && p.SuspensionPeriod == 0 && p.InjuryPeriod == 0
}

// SetPower stores power clamped to [MinPower, MaxPower].
func (p *Player) SetPower(power int) {
	p.Power = ClampPower(power)
}

func ClampPower(power int) int {
	if power < MinPower {
		return MinPower
	}
	if power > MaxPower {
		return MaxPower
	}
	return power
}

// Clone returns a copy that shares no pointers with p.
func (p *Player) Clone() *Player {
	c := *p
	if p.TeamID != nil {
		id := *p.TeamID
		c.TeamID = &id
	}
	return &c
}
