package brackets

import (
	"context"

	"github.com/Dosada05/league-simulator/models"
)

type GenerateScheduleParams struct {
	ChampionshipID int
	// TeamIDs in draw order; index i is the i-th slot of the pairing table.
	TeamIDs []int
}

// ScheduleGenerator builds the full fixture list of one championship.
type ScheduleGenerator interface {
	GenerateSchedule(ctx context.Context, params GenerateScheduleParams) ([]*models.Fixture, error)

	GetName() string
}
