package models

// FixtureSquad is the persisted pre-match selection of one side.
type FixtureSquad struct {
	FirstTeam   []int `json:"first_team"`
	Substitutes []int `json:"substitutes"`
}

type Fixture struct {
	ID             int          `json:"id" db:"id"`
	ChampionshipID int          `json:"championship_id" db:"championship_id"`
	HomeID         int          `json:"home_id" db:"home_id"`
	AwayID         int          `json:"away_id" db:"away_id"`
	Round          int          `json:"round" db:"round"`
	Occurred       bool         `json:"occurred" db:"occurred"`
	HomeGoals      int          `json:"home_goals" db:"home_goals"`
	AwayGoals      int          `json:"away_goals" db:"away_goals"`
	Attendance     int          `json:"attendance" db:"attendance"`
	HomeSquad      FixtureSquad `json:"home_squad" db:"-"`
	AwaySquad      FixtureSquad `json:"away_squad" db:"-"`
}

// Involves reports whether teamID is one of the two sides.
func (f *Fixture) Involves(teamID int) bool {
	return f.HomeID == teamID || f.AwayID == teamID
}

// Score is a scoreline at some minute.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// SquadSubmission is a human manager's pre-match selection.
type SquadSubmission struct {
	FirstTeam   []int `json:"first_team"`
	Substitutes []int `json:"substitutes"`
	NotSelected []int `json:"not_selected"`
}
