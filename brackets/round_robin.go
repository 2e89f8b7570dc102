package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/league-simulator/models"
)

var ErrUnsupportedTeamCount = errors.New("schedule requires exactly 8 teams")

// RoundsPerHalf is the number of rounds in one half of the season.
const RoundsPerHalf = 7

// pairingTable lists, per round of the first half, the home and away slot of
// every match. Every slot meets every other slot exactly once.
var pairingTable = [RoundsPerHalf][models.TeamsPerDivision / 2][2]int{
	{{7, 0}, {1, 6}, {2, 5}, {3, 4}},
	{{1, 7}, {2, 0}, {3, 6}, {4, 5}},
	{{7, 2}, {3, 1}, {4, 0}, {5, 6}},
	{{3, 7}, {4, 2}, {5, 1}, {6, 0}},
	{{7, 4}, {5, 3}, {6, 2}, {0, 1}},
	{{5, 7}, {6, 4}, {0, 3}, {1, 2}},
	{{7, 6}, {0, 5}, {1, 4}, {2, 3}},
}

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() ScheduleGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "DoubleRoundRobin"
}

// GenerateSchedule returns 14 rounds: the pairing table as scheduled, then
// the same table again from round 8 with home and away swapped.
func (g *RoundRobinGenerator) GenerateSchedule(ctx context.Context, params GenerateScheduleParams) ([]*models.Fixture, error) {
	teams := params.TeamIDs
	if len(teams) != models.TeamsPerDivision {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedTeamCount, len(teams))
	}
	seen := make(map[int]bool, len(teams))
	for _, id := range teams {
		if seen[id] {
			return nil, fmt.Errorf("RoundRobinGenerator: team %d listed twice", id)
		}
		seen[id] = true
	}

	fixtures := make([]*models.Fixture, 0, 2*RoundsPerHalf*len(teams)/2)
	for leg := 0; leg < 2; leg++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for r, pairs := range pairingTable {
			for _, pair := range pairs {
				home, away := teams[pair[0]], teams[pair[1]]
				if leg == 1 {
					home, away = away, home
				}
				fixtures = append(fixtures, &models.Fixture{
					ChampionshipID: params.ChampionshipID,
					HomeID:         home,
					AwayID:         away,
					Round:          leg*RoundsPerHalf + r + 1,
				})
			}
		}
	}
	return fixtures, nil
}
