package services

import (
	"fmt"

	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
)

var (
	demoTowns = []string{
		"Ashford", "Brockley", "Calder", "Dunmore", "Elmwood", "Fairhaven", "Glenrock", "Harlow",
		"Ironbridge", "Kingsley", "Langford", "Millbrook", "Northam", "Oakridge", "Penrith", "Redcliff",
	}
	demoSuffixes = []string{"Athletic", "Rovers", "United", "Town", "Wanderers", "Albion", "City", "Villa"}
	demoColors   = []string{"#c8102e", "#1d428a", "#ffffff", "#000000", "#fdb913", "#00843d", "#6cabdd", "#7a263a"}
	demoFirst    = []string{"Alex", "Ben", "Chris", "Dan", "Eli", "Finn", "Gus", "Hugo", "Ian", "Jack", "Kai", "Leo", "Max", "Noah", "Owen", "Sam"}
	demoLast     = []string{"Archer", "Baker", "Carter", "Dixon", "Ellis", "Fisher", "Grant", "Hayes", "Irwin", "Jones", "Knight", "Lowe", "Moss", "Nash", "Price", "Reid"}

	// outfield lines cycle in this order after the goalkeepers
	demoLines = []models.Position{
		models.PositionDefender, models.PositionMidfielder, models.PositionDefender,
		models.PositionAttacker, models.PositionMidfielder, models.PositionDefender,
		models.PositionMidfielder, models.PositionAttacker,
	}
)

const demoGoalkeepers = 2

// demoGenerator makes plausible teams and players for an empty store.
type demoGenerator struct {
	src random.Source
}

func newDemoGenerator(src random.Source) *demoGenerator {
	return &demoGenerator{src: src}
}

func (g *demoGenerator) team(i int) *models.Team {
	town := demoTowns[i%len(demoTowns)]
	suffix := demoSuffixes[(i/len(demoTowns))%len(demoSuffixes)]
	primary := random.Pick(g.src, demoColors)
	secondary := random.Pick(g.src, demoColors)
	for secondary == primary {
		secondary = random.Pick(g.src, demoColors)
	}
	return &models.Team{
		Name:            fmt.Sprintf("%s %s", town, suffix),
		Morale:          0.5,
		PrimaryColor:    primary,
		SecondaryColor:  secondary,
		StadiumCapacity: random.IntRange(g.src, 20, 150) * 100,
		TicketPrice:     random.IntRange(g.src, 5, 25),
		Cash:            random.IntRange(g.src, 50, 200) * 1000,
	}
}

func (g *demoGenerator) player(teamID, j int) *models.Player {
	position := models.PositionGoalkeeper
	if j >= demoGoalkeepers {
		position = demoLines[(j-demoGoalkeepers)%len(demoLines)]
	}
	power := random.IntRange(g.src, 10, 40)
	return &models.Player{
		TeamID:          &teamID,
		Name:            fmt.Sprintf("%s %s", random.Pick(g.src, demoFirst), random.Pick(g.src, demoLast)),
		Position:        position,
		Power:           power,
		Star:            random.Bernoulli(g.src, 0.08),
		Discipline:      2 * random.IntRange(g.src, 0, models.MaxDiscipline/2),
		InjuryProneness: random.IntRange(g.src, 0, models.MaxProneness),
		Salary:          100 + 20*power,
		Available:       true,
	}
}
