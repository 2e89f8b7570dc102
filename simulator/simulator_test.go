package simulator

import (
	"errors"
	"testing"

	"github.com/Dosada05/league-simulator/calculators"
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
)

const (
	homeID = 10
	awayID = 20
)

// sideGoal alternates between the home and away probability; the simulator
// always asks for the home side first.
type sideGoal struct {
	home, away float64
	calls      int
}

func (g *sideGoal) Factor(random.Source) float64 { return 1 }

func (g *sideGoal) Probability(calculators.Strength, float64, calculators.Strength, float64) float64 {
	g.calls++
	if g.calls%2 == 1 {
		return g.home
	}
	return g.away
}

func (g *sideGoal) PickScorer(playing []*models.Player, _ random.Source) *models.Player {
	if len(playing) == 0 {
		return nil
	}
	return playing[len(playing)-1]
}

type byPlayer map[int]float64

func (m byPlayer) Probability(p *models.Player) float64 { return m[p.ID] }

func quietBundle() calculators.Bundle {
	b := calculators.Default()
	b.Goal = &sideGoal{}
	b.Injury = byPlayer{}
	b.RedCard = byPlayer{}
	return b
}

func squadFor(base int) models.SquadRecord {
	mk := func(offset int, pos models.Position, power int) *models.Player {
		return &models.Player{ID: base + offset, Position: pos, Power: power, Available: true, Discipline: 6}
	}
	return models.SquadRecord{
		Playing: []*models.Player{
			mk(1, models.PositionGoalkeeper, 30),
			mk(2, models.PositionDefender, 25), mk(3, models.PositionDefender, 24),
			mk(4, models.PositionDefender, 23), mk(5, models.PositionDefender, 22),
			mk(6, models.PositionMidfielder, 28), mk(7, models.PositionMidfielder, 27),
			mk(8, models.PositionMidfielder, 26), mk(9, models.PositionMidfielder, 21),
			mk(10, models.PositionAttacker, 35), mk(11, models.PositionAttacker, 33),
		},
		Bench: []*models.Player{
			mk(12, models.PositionGoalkeeper, 20),
			mk(13, models.PositionDefender, 30),
			mk(14, models.PositionMidfielder, 18),
			mk(15, models.PositionAttacker, 17),
			mk(16, models.PositionAttacker, 16),
		},
	}
}

func newMatch(t *testing.T, fixtureID int, calc calculators.Bundle, src random.Source, homeHuman, awayHuman bool) *Simulator {
	t.Helper()
	return newMatchTeams(t, fixtureID, homeID, awayID, calc, src, homeHuman, awayHuman)
}

func newMatchTeams(t *testing.T, fixtureID, home, away int, calc calculators.Bundle, src random.Source, homeHuman, awayHuman bool) *Simulator {
	t.Helper()
	fixture := &models.Fixture{ID: fixtureID, HomeID: home, AwayID: away, Round: 1}
	sim, err := New(fixture,
		Setup{Team: &models.Team{ID: home, Morale: 0.5}, Squad: squadFor(home * 100), Human: homeHuman},
		Setup{Team: &models.Team{ID: away, Morale: 0.5}, Squad: squadFor(away * 100), Human: awayHuman},
		calc, src, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return sim
}

func assertPartition(t *testing.T, sim *Simulator, teamID int) {
	t.Helper()
	squad := sim.Squad(teamID)
	if squad.Size() != sim.KickoffSize(teamID) {
		t.Fatalf("team %d: squad size %d, kickoff %d", teamID, squad.Size(), sim.KickoffSize(teamID))
	}
	seen := make(map[int]bool)
	for _, bucket := range [][]*models.Player{squad.Playing, squad.Bench, squad.Out} {
		for _, p := range bucket {
			if seen[p.ID] {
				t.Fatalf("team %d: player %d in two buckets", teamID, p.ID)
			}
			seen[p.ID] = true
		}
	}
	if len(squad.Playing) > 11 {
		t.Fatalf("team %d: %d players on the pitch", teamID, len(squad.Playing))
	}
}

func TestNewRejectsForeignTeam(t *testing.T) {
	fixture := &models.Fixture{ID: 1, HomeID: homeID, AwayID: awayID}
	_, err := New(fixture,
		Setup{Team: &models.Team{ID: 99}},
		Setup{Team: &models.Team{ID: awayID}},
		quietBundle(), random.NewSeeded(1), nil)
	if !errors.Is(err, ErrTeamNotInFixture) {
		t.Fatalf("expected ErrTeamNotInFixture, got %v", err)
	}
}

func TestFullMatchInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		sim := newMatch(t, 1, calculators.Default(), random.NewSeeded(seed), false, false)
		lastMinute := 0
		for minute := 1; minute <= 90; minute++ {
			res, err := sim.Tick()
			if err != nil {
				t.Fatalf("seed %d minute %d: %v", seed, minute, err)
			}
			if res.Minute != minute || sim.Clock() != minute {
				t.Fatalf("seed %d: clock %d, expected %d", seed, sim.Clock(), minute)
			}
			if got := len(sim.Scoreline()); got != minute+1 {
				t.Fatalf("seed %d: scoreline length %d at minute %d", seed, got, minute)
			}
			for _, teamID := range []int{homeID, awayID} {
				assertPartition(t, sim, teamID)
				if left := sim.SubsLeft(teamID); left < 0 || left > 3 {
					t.Fatalf("seed %d: subsLeft %d", seed, left)
				}
			}
		}
		for _, o := range sim.Occurrences() {
			if o.Minute < lastMinute {
				t.Fatalf("seed %d: occurrences out of order", seed)
			}
			lastMinute = o.Minute
		}
		if !sim.Finished() {
			t.Fatalf("seed %d: expected finished match", seed)
		}
		if _, err := sim.Tick(); !errors.Is(err, ErrMatchFinished) {
			t.Fatalf("seed %d: expected ErrMatchFinished, got %v", seed, err)
		}
		score := sim.CurrentScore()
		goals := 0
		for _, o := range sim.Occurrences() {
			if o.Type == models.OccurrenceGoal {
				goals++
			}
		}
		if goals != score.Home+score.Away {
			t.Fatalf("seed %d: %d goal occurrences for score %+v", seed, goals, score)
		}
	}
}

func TestSimultaneousGoalsFavourHome(t *testing.T) {
	calc := quietBundle()
	calc.Goal = &sideGoal{home: 1, away: 1}
	sim := newMatch(t, 1, calc, random.NewSeeded(3), false, false)

	for i := 0; i < 10; i++ {
		if _, err := sim.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if got := sim.CurrentScore(); got.Home != 10 || got.Away != 0 {
		t.Fatalf("expected 10-0, got %+v", got)
	}
}

func TestAwayGoalWhenHomeMisses(t *testing.T) {
	calc := quietBundle()
	calc.Goal = &sideGoal{home: 0, away: 1}
	sim := newMatch(t, 1, calc, random.NewSeeded(3), false, false)

	res, err := sim.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if res.Score.Away != 1 || len(res.Occurrences) != 1 || res.Occurrences[0].TeamID != awayID {
		t.Fatalf("expected away goal, got %+v", res)
	}
	if res.Occurrences[0].PlayerID != awayID*100+11 {
		t.Fatalf("unexpected scorer %d", res.Occurrences[0].PlayerID)
	}
}

func TestInjurySuppressesRedCardSameMinute(t *testing.T) {
	calc := quietBundle()
	homeGK := homeID*100 + 1
	calc.Injury = byPlayer{homeID*100 + 2: 1}
	red := byPlayer{homeGK: 1, awayID*100 + 5: 1}
	calc.RedCard = red
	sim := newMatch(t, 1, calc, random.NewSeeded(5), true, false)

	res, err := sim.Tick()
	if err != nil {
		t.Fatal(err)
	}
	var types []models.OccurrenceType
	for _, o := range res.Occurrences {
		types = append(types, o.Type)
		if o.Type == models.OccurrenceRedCard && o.TeamID == homeID {
			t.Fatalf("home side got a red card in the minute it lost a player to injury")
		}
	}
	if len(types) != 2 || types[0] != models.OccurrenceInjury || types[1] != models.OccurrenceRedCard {
		t.Fatalf("expected injury then away red card, got %v", types)
	}
	if len(res.Pending) != 1 || res.Pending[0].Reason != PauseInjury {
		t.Fatalf("expected pending injury decision for the human side, got %+v", res.Pending)
	}

	res, err = sim.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Occurrences) != 1 || res.Occurrences[0].Type != models.OccurrenceRedCard || res.Occurrences[0].PlayerID != homeGK {
		t.Fatalf("expected home keeper sent off next minute, got %+v", res.Occurrences)
	}
}

func TestAIInjuryIsReplacedImmediately(t *testing.T) {
	calc := quietBundle()
	injuredID := homeID*100 + 2
	calc.Injury = byPlayer{injuredID: 1}
	sim := newMatch(t, 1, calc, random.NewSeeded(7), false, false)

	res, err := sim.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Occurrences) != 2 {
		t.Fatalf("expected injury and substitution, got %+v", res.Occurrences)
	}
	sub := res.Occurrences[1]
	if sub.Type != models.OccurrenceSubstitution || sub.PlayerID != injuredID || sub.PlayerInID != homeID*100+13 {
		t.Fatalf("expected bench defender on for the injured one, got %+v", sub)
	}
	if sim.SubsLeft(homeID) != 2 {
		t.Fatalf("expected 2 substitutions left, got %d", sim.SubsLeft(homeID))
	}
	if len(sim.Squad(homeID).Playing) != 11 {
		t.Fatalf("expected a full side after the substitution")
	}
	assertPartition(t, sim, homeID)

	for !sim.Finished() {
		if _, err := sim.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if got := sim.PlayedTime(injuredID); got != 1 {
		t.Fatalf("injured player played %d minutes, expected 1", got)
	}
	if got := sim.PlayedTime(homeID*100 + 13); got != 89 {
		t.Fatalf("substitute played %d minutes, expected 89", got)
	}
	if got := sim.PlayedTime(homeID*100 + 14); got != 0 {
		t.Fatalf("unused substitute played %d minutes", got)
	}
	if got := sim.PlayedTime(homeID*100 + 1); got != 90 {
		t.Fatalf("starter played %d minutes, expected 90", got)
	}
}

func TestHumanInjuryWaitsForReplacement(t *testing.T) {
	calc := quietBundle()
	injuredID := homeID*100 + 6
	calc.Injury = byPlayer{injuredID: 1}
	sim := newMatch(t, 1, calc, random.NewSeeded(9), true, false)

	res, err := sim.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Occurrences) != 1 || len(sim.Squad(homeID).Playing) != 10 {
		t.Fatalf("expected the gap to stay open, got %+v", res.Occurrences)
	}
	if _, bucket, _ := sim.FindPlayer(injuredID); bucket != models.BucketOut {
		t.Fatalf("injured player should be out, is %q", bucket)
	}

	if err := sim.SubstitutePlayers(homeID, injuredID, homeID*100+14); err != nil {
		t.Fatalf("replacing the injured player: %v", err)
	}
	if len(sim.Squad(homeID).Playing) != 11 || sim.SubsLeft(homeID) != 2 {
		t.Fatalf("expected 11 on the pitch and 2 subs left")
	}
	err = sim.SubstitutePlayers(homeID, injuredID, homeID*100+15)
	if !errors.Is(err, ErrPlayerNotInSquad) {
		t.Fatalf("second replacement for the same player should fail, got %v", err)
	}
	assertPartition(t, sim, homeID)
}

func TestSubstitutePlayersValidation(t *testing.T) {
	sim := newMatch(t, 1, quietBundle(), random.NewSeeded(1), false, false)
	if _, err := sim.Tick(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		team    int
		out, in int
		want    error
	}{
		{"foreign team", 99, homeID*100 + 2, homeID*100 + 13, ErrTeamNotInFixture},
		{"incoming not on bench", homeID, homeID*100 + 2, homeID*100 + 3, ErrPlayerNotInSquad},
		{"outgoing on bench", homeID, homeID*100 + 14, homeID*100 + 13, ErrPlayerNotInSquad},
		{"other team's player", homeID, awayID*100 + 2, homeID*100 + 13, ErrPlayerNotInSquad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sim.SubstitutePlayers(tt.team, tt.out, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	assertPartition(t, sim, homeID)
}

func TestSubsLeftNeverNegative(t *testing.T) {
	sim := newMatch(t, 1, quietBundle(), random.NewSeeded(1), true, false)
	base := homeID * 100
	swaps := [][2]int{{base + 2, base + 13}, {base + 6, base + 14}, {base + 10, base + 15}, {base + 11, base + 16}}
	for i, sw := range swaps {
		if err := sim.SubstitutePlayers(homeID, sw[0], sw[1]); err != nil {
			t.Fatalf("swap %d: %v", i, err)
		}
		want := 3 - (i + 1)
		if want < 0 {
			want = 0
		}
		if got := sim.SubsLeft(homeID); got != want {
			t.Fatalf("after %d swaps subsLeft=%d, want %d", i+1, got, want)
		}
	}
	assertPartition(t, sim, homeID)
	last, ok := sim.LastOccurrence()
	if !ok || last.Type != models.OccurrenceSubstitution || last.PlayerInID != base+16 {
		t.Fatalf("unexpected last occurrence %+v", last)
	}
}

func TestRemovePlayingPlayer(t *testing.T) {
	sim := newMatch(t, 1, quietBundle(), random.NewSeeded(1), false, false)
	id := awayID*100 + 4
	if err := sim.RemovePlayingPlayer(awayID, id); err != nil {
		t.Fatal(err)
	}
	if team, bucket, ok := sim.FindPlayer(id); !ok || team != awayID || bucket != models.BucketOut {
		t.Fatalf("expected player in away out bucket, got %d %q %v", team, bucket, ok)
	}
	if err := sim.RemovePlayingPlayer(awayID, id); !errors.Is(err, ErrPlayerNotInSquad) {
		t.Fatalf("expected ErrPlayerNotInSquad, got %v", err)
	}
	assertPartition(t, sim, awayID)
}

func TestPlayedTimeFromLog(t *testing.T) {
	log := []models.Occurrence{
		{Type: models.OccurrenceSubstitution, Minute: 20, PlayerID: 1, PlayerInID: 2},
		{Type: models.OccurrenceInjury, Minute: 50, PlayerID: 2},
		{Type: models.OccurrenceSubstitution, Minute: 50, PlayerID: 2, PlayerInID: 3},
		{Type: models.OccurrenceRedCard, Minute: 70, PlayerID: 4},
	}
	tests := []struct {
		player int
		bucket models.SquadBucket
		want   int
	}{
		{1, models.BucketOut, 20},
		{2, models.BucketOut, 30},
		{3, models.BucketPlaying, 40},
		{4, models.BucketOut, 70},
		{5, models.BucketPlaying, 90},
		{6, models.BucketBench, 0},
	}
	for _, tt := range tests {
		if got := PlayedTime(log, tt.player, tt.bucket, 90); got != tt.want {
			t.Errorf("player %d: got %d, want %d", tt.player, got, tt.want)
		}
	}
}

func TestParticipations(t *testing.T) {
	calc := quietBundle()
	calc.Goal = &sideGoal{home: 1}
	sim := newMatch(t, 1, calc, random.NewSeeded(1), false, false)
	for !sim.Finished() {
		if _, err := sim.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	parts := sim.Participations()
	if len(parts) != 32 {
		t.Fatalf("expected 32 participations, got %d", len(parts))
	}
	scorer := homeID*100 + 11
	for _, p := range parts {
		switch {
		case p.Player.ID == scorer && p.Goals != 90:
			t.Fatalf("scorer credited with %d goals", p.Goals)
		case p.Player.ID == homeID*100+12 && (p.LeftBench || p.Minutes != 0):
			t.Fatalf("bench keeper should not have played")
		}
	}
}

func TestFirstTickKeepsScoreline(t *testing.T) {
	calc := quietBundle()
	calc.Goal = &sideGoal{home: 1}
	sim := newMatch(t, 1, calc, random.NewSeeded(4), false, false)

	res, err := sim.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if res.Minute != 1 || res.Score != (models.Score{Home: 1}) {
		t.Fatalf("unexpected first minute %+v", res)
	}
	if got := sim.Scoreline(); len(got) != 2 || got[0] != (models.Score{}) || got[1] != res.Score {
		t.Fatalf("unexpected scoreline %+v", got)
	}
	if sim.CurrentScore() != res.Score {
		t.Fatalf("current score %+v, expected %+v", sim.CurrentScore(), res.Score)
	}
}

func TestAIInjuryInLastMinuteIsReplaced(t *testing.T) {
	calc := quietBundle()
	injuries := byPlayer{}
	calc.Injury = injuries
	sim := newMatch(t, 1, calc, random.NewSeeded(6), false, false)
	for sim.Clock() < 89 {
		if _, err := sim.Tick(); err != nil {
			t.Fatal(err)
		}
	}

	injuredID := homeID*100 + 10
	injuries[injuredID] = 1
	res, err := sim.Tick()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Occurrences) != 2 || res.Occurrences[1].Type != models.OccurrenceSubstitution {
		t.Fatalf("expected injury and substitution in the last minute, got %+v", res.Occurrences)
	}
	if sub := res.Occurrences[1]; sub.PlayerID != injuredID || sub.PlayerInID != homeID*100+15 || sub.Minute != 90 {
		t.Fatalf("unexpected substitution %+v", sub)
	}
	if len(sim.Squad(homeID).Playing) != 11 || sim.SubsLeft(homeID) != 2 {
		t.Fatalf("expected a full side with 2 subs left")
	}
	assertPartition(t, sim, homeID)

	if !sim.FullTime() {
		t.Fatal("expected full time with nothing pending")
	}
	if err := sim.SubstitutePlayers(homeID, homeID*100+2, homeID*100+13); !errors.Is(err, ErrMatchFinished) {
		t.Fatalf("expected ErrMatchFinished after full time, got %v", err)
	}
}
