package models

const (
	PointsForWin  = 3
	PointsForDraw = 1
	PointsForLoss = 0
)

// Standing is a team's record within one championship.
type Standing struct {
	ID             int `json:"id" db:"id"`
	ChampionshipID int `json:"championship_id" db:"championship_id"`
	TeamID         int `json:"team_id" db:"team_id"`
	Wins           int `json:"wins" db:"wins"`
	Draws          int `json:"draws" db:"draws"`
	Losses         int `json:"losses" db:"losses"`
	Points         int `json:"points" db:"points"`
	GoalsFor       int `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int `json:"goals_against" db:"goals_against"`
}

func (s *Standing) GoalDifference() int {
	return s.GoalsFor - s.GoalsAgainst
}

func (s *Standing) Played() int {
	return s.Wins + s.Draws + s.Losses
}

// Record applies one match result to the standing.
func (s *Standing) Record(scored, conceded int) {
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		s.Wins++
		s.Points += PointsForWin
	case scored == conceded:
		s.Draws++
		s.Points += PointsForDraw
	default:
		s.Losses++
		s.Points += PointsForLoss
	}
}
