package models

type OccurrenceType string

const (
	OccurrenceGoal         OccurrenceType = "goal"
	OccurrenceInjury       OccurrenceType = "injury"
	OccurrenceRedCard      OccurrenceType = "redcard"
	OccurrenceSubstitution OccurrenceType = "substitution"
)

// Occurrence is one timestamped match event. For substitutions PlayerID is the
// player coming off and PlayerInID the one coming on.
type Occurrence struct {
	Type       OccurrenceType `json:"type"`
	Minute     int            `json:"minute"`
	TeamID     int            `json:"team_id"`
	PlayerID   int            `json:"player_id"`
	PlayerInID int            `json:"player_in_id,omitempty"`
}
