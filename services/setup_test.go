package services

import (
	"context"
	"testing"

	"github.com/Dosada05/league-simulator/calculators"
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
	"github.com/Dosada05/league-simulator/repositories"
)

const (
	testTeams          = 34
	testPlayersPerTeam = 18
	testAttendance     = 1000
	testInjuryDays     = 14
)

type flatStrength struct{}

func (flatStrength) Strength([]*models.Player, float64) calculators.Strength {
	return calculators.Strength{Attack: 1, Defense: 1}
}

// fixedGoal scores with probability p; the scorer is the first player on
// the pitch.
type fixedGoal struct{ p float64 }

func (fixedGoal) Factor(random.Source) float64 { return 1 }

func (g fixedGoal) Probability(calculators.Strength, float64, calculators.Strength, float64) float64 {
	return g.p
}

func (fixedGoal) PickScorer(playing []*models.Player, _ random.Source) *models.Player {
	if len(playing) == 0 {
		return nil
	}
	return playing[0]
}

type byPlayer map[int]float64

func (m byPlayer) Probability(p *models.Player) float64 { return m[p.ID] }

type fixedPeriod int

func (d fixedPeriod) Period(*models.Player, random.Source) int { return int(d) }

// benchFreePower adds one point to everyone who left the bench.
type benchFreePower struct{}

func (benchFreePower) NewPower(in calculators.PowerChangeInput, _ random.Source) int {
	if in.LeftBench && !in.Injured {
		return in.Power + 1
	}
	return in.Power
}

type fixedAttendance int

func (a fixedAttendance) Attendance(*models.Team, random.Source) int { return int(a) }

// scriptedBundle is deterministic apart from the trainer's choices.
func scriptedBundle(goalProbability float64) calculators.Bundle {
	b := calculators.Default()
	b.TeamStrength = flatStrength{}
	b.Goal = fixedGoal{p: goalProbability}
	b.Injury = byPlayer{}
	b.RedCard = byPlayer{}
	b.InjuryPeriod = fixedPeriod(testInjuryDays)
	b.Suspension = fixedPeriod(testInjuryDays)
	b.PowerChange = benchFreePower{}
	b.Attendance = fixedAttendance(testAttendance)
	return b
}

type league struct {
	store  repositories.Store
	season SeasonService
	calc   calculators.Bundle
}

func newLeague(t *testing.T, calc calculators.Bundle) *league {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	season := NewSeasonService(store, nil, random.NewSeeded(1), nil)
	if err := season.SeedDemoLeague(ctx, testTeams, testPlayersPerTeam); err != nil {
		t.Fatal(err)
	}
	if _, err := season.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	return &league{store: store, season: season, calc: calc}
}

func (l *league) matchService(src random.Source) MatchService {
	post := NewPostRoundProcessor(l.calc, src, nil)
	closing := NewPostSeasonProcessor(l.calc, src, nil, nil)
	return NewMatchService(l.store, l.calc, src, post, closing, nil, nil, nil, nil)
}

func (l *league) repos() repositories.Repos {
	return l.store.Repos()
}

func (l *league) championships(t *testing.T, season int) []*models.Championship {
	t.Helper()
	chs, err := l.repos().Championships.ListBySeason(context.Background(), season)
	if err != nil {
		t.Fatal(err)
	}
	return chs
}

func (l *league) firstFixture(t *testing.T) *models.Fixture {
	t.Helper()
	ch := l.championships(t, FirstSeason)[0]
	fixtures, err := l.repos().Fixtures.ListByRound(context.Background(), ch.ID, 1)
	if err != nil || len(fixtures) == 0 {
		t.Fatalf("no first round fixtures: %v", err)
	}
	return fixtures[0]
}

func (l *league) players(t *testing.T, teamID int) []*models.Player {
	t.Helper()
	players, err := l.repos().Players.ListByTeam(context.Background(), teamID)
	if err != nil {
		t.Fatal(err)
	}
	return players
}

func (l *league) player(t *testing.T, id int) *models.Player {
	t.Helper()
	p, err := l.repos().Players.GetByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func (l *league) updatePlayer(t *testing.T, p *models.Player) {
	t.Helper()
	if err := l.repos().Players.Update(context.Background(), p); err != nil {
		t.Fatal(err)
	}
}
