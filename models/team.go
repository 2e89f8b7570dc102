package models

import "time"

// Team is a club. ChampionshipID is nil while the team sits in the unassigned pool.
type Team struct {
	ID              int       `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	ChampionshipID  *int      `json:"championship_id,omitempty" db:"championship_id"`
	Morale          float64   `json:"morale" db:"morale"`
	PrimaryColor    string    `json:"primary_color" db:"primary_color"`
	SecondaryColor  string    `json:"secondary_color" db:"secondary_color"`
	StadiumCapacity int       `json:"stadium_capacity" db:"stadium_capacity"`
	TicketPrice     int       `json:"ticket_price" db:"ticket_price"`
	Cash            int       `json:"cash" db:"cash"`
	BudgetID        *int      `json:"budget_id,omitempty" db:"budget_id"`
	HumanControlled bool      `json:"human_controlled" db:"human_controlled"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`

	Players []*Player `json:"players,omitempty" db:"-"`
}

// TeamBudget accumulates a team's money flow for one championship.
type TeamBudget struct {
	ID             int `json:"id" db:"id"`
	TeamID         int `json:"team_id" db:"team_id"`
	ChampionshipID int `json:"championship_id" db:"championship_id"`
	Earnings       int `json:"earnings" db:"earnings"`
	Spendings      int `json:"spendings" db:"spendings"`
}
