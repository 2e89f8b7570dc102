package models

const (
	TopDivision      = 1
	BottomDivision   = 4
	DivisionCount    = 4
	TeamsPerDivision = 8
)

// League is a tier of the pyramid; it outlives seasons.
type League struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Division int    `json:"division" db:"division"`
}

// Championship is one season's run of a league.
type Championship struct {
	ID             int  `json:"id" db:"id"`
	LeagueID       int  `json:"league_id" db:"league_id"`
	Division       int  `json:"division" db:"division"`
	Season         int  `json:"season" db:"season"`
	ChampionTeamID *int `json:"champion_team_id,omitempty" db:"champion_team_id"`
}

// SeasonClock tells every component which season and round are current.
type SeasonClock struct {
	Season int `json:"season" db:"season"`
	Round  int `json:"round" db:"round"`
}
