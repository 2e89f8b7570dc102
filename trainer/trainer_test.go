package trainer

import (
	"testing"

	"github.com/Dosada05/league-simulator/models"
)

func pl(id int, pos models.Position, power int) *models.Player {
	return &models.Player{ID: id, Position: pos, Power: power, Available: true}
}

type stubView struct {
	fixture  *models.Fixture
	score    models.Score
	squads   map[int]*models.SquadRecord
	subsLeft map[int]int
}

func newStubView(home, away *models.SquadRecord) *stubView {
	return &stubView{
		fixture:  &models.Fixture{ID: 1, HomeID: 10, AwayID: 20},
		squads:   map[int]*models.SquadRecord{10: home, 20: away},
		subsLeft: map[int]int{10: 3, 20: 3},
	}
}

func (v *stubView) Fixture() *models.Fixture             { return v.fixture }
func (v *stubView) IsHomeTeam(teamID int) bool           { return teamID == v.fixture.HomeID }
func (v *stubView) CurrentScore() models.Score           { return v.score }
func (v *stubView) Squad(teamID int) *models.SquadRecord { return v.squads[teamID] }
func (v *stubView) SubsLeft(teamID int) int              { return v.subsLeft[teamID] }

func countPos(players []*models.Player, pos models.Position) int {
	n := 0
	for _, p := range players {
		if p.Position == pos {
			n++
		}
	}
	return n
}

func TestPickFixtureSquadOneKeeperNineOutfield(t *testing.T) {
	eligible := []*models.Player{pl(1, models.PositionGoalkeeper, 20)}
	for i := 0; i < 9; i++ {
		pos := []models.Position{models.PositionDefender, models.PositionMidfielder, models.PositionAttacker}[i%3]
		eligible = append(eligible, pl(100+i, pos, 10+i))
	}

	squad := PickFixtureSquad(eligible, DefaultSelection())

	if len(squad.Playing) != 10 {
		t.Fatalf("expected 10 playing, got %d", len(squad.Playing))
	}
	if countPos(squad.Playing, models.PositionGoalkeeper) != 1 {
		t.Fatalf("expected the goalkeeper to play")
	}
	if countPos(squad.Bench, models.PositionGoalkeeper) != 0 || len(squad.Bench) != 0 {
		t.Fatalf("expected empty bench, got %v", models.IDs(squad.Bench))
	}
}

func TestPickFixtureSquadWithoutKeeper(t *testing.T) {
	var eligible []*models.Player
	for i := 1; i <= 18; i++ {
		eligible = append(eligible, pl(i, models.PositionMidfielder, i))
	}
	squad := PickFixtureSquad(eligible, DefaultSelection())
	if len(squad.Playing) != 11 || len(squad.Bench) != 5 {
		t.Fatalf("expected 11+5, got %d+%d", len(squad.Playing), len(squad.Bench))
	}
	if squad.Playing[0].ID != 18 || squad.Playing[10].ID != 8 {
		t.Fatalf("expected top 11 by power, got %v", models.IDs(squad.Playing))
	}
	if squad.Bench[0].ID != 7 || squad.Bench[4].ID != 3 {
		t.Fatalf("expected next 5 by power on the bench, got %v", models.IDs(squad.Bench))
	}
}

func TestPickFixtureSquadFillsMinimumsThenGreedy(t *testing.T) {
	eligible := []*models.Player{
		pl(1, models.PositionGoalkeeper, 30),
		pl(2, models.PositionGoalkeeper, 25),
		pl(3, models.PositionGoalkeeper, 5),
	}
	id := 10
	add := func(pos models.Position, powers ...int) {
		for _, pw := range powers {
			eligible = append(eligible, pl(id, pos, pw))
			id++
		}
	}
	add(models.PositionDefender, 10, 9, 8, 7, 6)
	add(models.PositionMidfielder, 40, 39, 38, 37, 36)
	add(models.PositionAttacker, 20, 19, 18, 17)

	squad := PickFixtureSquad(eligible, DefaultSelection())

	if len(squad.Playing) != 11 {
		t.Fatalf("expected 11 playing, got %d", len(squad.Playing))
	}
	if squad.Playing[0].ID != 1 {
		t.Fatalf("best keeper must start")
	}
	if got := countPos(squad.Playing, models.PositionDefender); got != 3 {
		t.Fatalf("expected minimum 3 defenders, got %d", got)
	}
	if got := countPos(squad.Playing, models.PositionMidfielder); got != 5 {
		t.Fatalf("expected all 5 strong midfielders, got %d", got)
	}
	if got := countPos(squad.Playing, models.PositionAttacker); got != 2 {
		t.Fatalf("expected 2 attackers, got %d", got)
	}

	if len(squad.Bench) != 5 {
		t.Fatalf("expected full bench, got %d", len(squad.Bench))
	}
	if squad.Bench[0].ID != 2 {
		t.Fatalf("second keeper must be first on the bench")
	}
	if countPos(squad.Bench, models.PositionDefender) < 1 || countPos(squad.Bench, models.PositionAttacker) < 1 {
		t.Fatalf("bench must cover the remaining lines, got %v", models.IDs(squad.Bench))
	}
	if countPos(squad.Bench, models.PositionGoalkeeper) != 1 {
		t.Fatalf("third keeper should not take a bench slot")
	}
}

func TestPickFixtureSquadDisjoint(t *testing.T) {
	var eligible []*models.Player
	for i := 0; i < 25; i++ {
		eligible = append(eligible, pl(i+1, models.Positions[i%4], 5+i))
	}
	squad := PickFixtureSquad(eligible, DefaultSelection())
	seen := map[int]bool{}
	for _, p := range append(append([]*models.Player{}, squad.Playing...), squad.Bench...) {
		if seen[p.ID] {
			t.Fatalf("player %d selected twice", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestPostInjurySamePosition(t *testing.T) {
	injured := pl(1, models.PositionDefender, 20)
	home := &models.SquadRecord{
		Bench: []*models.Player{pl(2, models.PositionDefender, 10), pl(3, models.PositionDefender, 15), pl(4, models.PositionAttacker, 40)},
		Out:   []*models.Player{injured},
	}
	view := newStubView(home, &models.SquadRecord{})
	sub := New(view, 10).DecideSubstitutionPostInjury(injured)
	if sub == nil || sub.In.ID != 3 || sub.Out.ID != 1 {
		t.Fatalf("expected strongest defender 3, got %+v", sub)
	}
}

func TestPostInjuryFallbackByMatchState(t *testing.T) {
	injured := pl(1, models.PositionMidfielder, 20)
	bench := []*models.Player{
		pl(2, models.PositionDefender, 10),
		pl(3, models.PositionAttacker, 12),
		pl(4, models.PositionGoalkeeper, 45),
	}
	tests := []struct {
		name  string
		score models.Score
		want  int
	}{
		{"winning prefers defender", models.Score{Home: 2, Away: 0}, 2},
		{"losing prefers attacker", models.Score{Home: 0, Away: 1}, 3},
		{"drawing takes strongest outfield", models.Score{Home: 1, Away: 1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := newStubView(&models.SquadRecord{Bench: bench}, &models.SquadRecord{})
			view.score = tt.score
			sub := New(view, 10).DecideSubstitutionPostInjury(injured)
			if sub == nil || sub.In.ID != tt.want {
				t.Fatalf("expected %d, got %+v", tt.want, sub)
			}
		})
	}
}

func TestPostInjuryAwayPerspective(t *testing.T) {
	injured := pl(1, models.PositionMidfielder, 20)
	bench := []*models.Player{pl(2, models.PositionDefender, 10), pl(3, models.PositionAttacker, 12)}
	view := newStubView(&models.SquadRecord{}, &models.SquadRecord{Bench: bench})
	view.score = models.Score{Home: 0, Away: 2}
	sub := New(view, 20).DecideSubstitutionPostInjury(injured)
	if sub == nil || sub.In.ID != 2 {
		t.Fatalf("away side is winning and should bring on the defender, got %+v", sub)
	}
}

func TestPostInjuryKeeperFallback(t *testing.T) {
	injured := pl(1, models.PositionGoalkeeper, 20)
	bench := []*models.Player{pl(2, models.PositionAttacker, 40), pl(3, models.PositionMidfielder, 5)}
	view := newStubView(&models.SquadRecord{Bench: bench}, &models.SquadRecord{})
	sub := New(view, 10).DecideSubstitutionPostInjury(injured)
	if sub == nil || sub.In.ID != 3 {
		t.Fatalf("expected midfielder before attacker, got %+v", sub)
	}
}

func TestPostInjuryNoCandidates(t *testing.T) {
	injured := pl(1, models.PositionMidfielder, 20)
	view := newStubView(&models.SquadRecord{Bench: []*models.Player{pl(2, models.PositionGoalkeeper, 10)}}, &models.SquadRecord{})
	view.score = models.Score{Home: 1, Away: 1}
	if sub := New(view, 10).DecideSubstitutionPostInjury(injured); sub != nil {
		t.Fatalf("expected no decision, got %+v", sub)
	}

	view = newStubView(&models.SquadRecord{Bench: []*models.Player{pl(3, models.PositionMidfielder, 10)}}, &models.SquadRecord{})
	view.subsLeft[10] = 0
	if sub := New(view, 10).DecideSubstitutionPostInjury(injured); sub != nil {
		t.Fatalf("expected no decision without substitutions left, got %+v", sub)
	}
}

func TestPostRedcardKeeper(t *testing.T) {
	sentOff := pl(1, models.PositionGoalkeeper, 30)
	playing := []*models.Player{
		pl(2, models.PositionDefender, 20),
		pl(3, models.PositionDefender, 8),
		pl(4, models.PositionMidfielder, 15),
		pl(5, models.PositionAttacker, 25),
		pl(6, models.PositionAttacker, 11),
	}
	bench := []*models.Player{pl(7, models.PositionGoalkeeper, 18)}

	view := newStubView(&models.SquadRecord{Playing: playing, Bench: bench, Out: []*models.Player{sentOff}}, &models.SquadRecord{})
	sub := New(view, 10).DecideSubstitutionPostRedcard(sentOff)
	if sub == nil || sub.In.ID != 7 || sub.Out.ID != 6 {
		t.Fatalf("drawing: expected keeper 7 for weakest attacker 6, got %+v", sub)
	}

	view.score = models.Score{Home: 0, Away: 1}
	sub = New(view, 10).DecideSubstitutionPostRedcard(sentOff)
	if sub == nil || sub.In.ID != 7 || sub.Out.ID != 3 {
		t.Fatalf("losing: expected keeper 7 for weakest defender 3, got %+v", sub)
	}

	view.squads[10].Bench = nil
	if sub := New(view, 10).DecideSubstitutionPostRedcard(sentOff); sub != nil {
		t.Fatalf("no bench keeper: expected no decision, got %+v", sub)
	}
}

func TestPostRedcardLinePlayer(t *testing.T) {
	sentOff := pl(1, models.PositionMidfielder, 30)
	playing := []*models.Player{
		pl(2, models.PositionDefender, 20),
		pl(3, models.PositionDefender, 12),
		pl(4, models.PositionAttacker, 14),
	}
	bench := []*models.Player{
		pl(5, models.PositionAttacker, 10),
		pl(6, models.PositionMidfielder, 13),
		pl(7, models.PositionDefender, 16),
	}
	view := newStubView(&models.SquadRecord{Playing: playing, Bench: bench}, &models.SquadRecord{})

	view.score = models.Score{Home: 0, Away: 2}
	sub := New(view, 10).DecideSubstitutionPostRedcard(sentOff)
	// Attacker 5 (10) would be a downgrade on defender 3 (12); midfielder 6 (13) is not.
	if sub == nil || sub.Out.ID != 3 || sub.In.ID != 6 {
		t.Fatalf("losing: expected 6 for 3, got %+v", sub)
	}

	view.score = models.Score{Home: 1, Away: 0}
	sub = New(view, 10).DecideSubstitutionPostRedcard(sentOff)
	if sub == nil || sub.Out.ID != 4 || sub.In.ID != 7 {
		t.Fatalf("winning: expected 7 for 4, got %+v", sub)
	}
}

func TestPostRedcardRefusesDowngrade(t *testing.T) {
	sentOff := pl(1, models.PositionDefender, 30)
	playing := []*models.Player{pl(2, models.PositionAttacker, 40)}
	bench := []*models.Player{pl(3, models.PositionDefender, 10), pl(4, models.PositionAttacker, 39)}
	view := newStubView(&models.SquadRecord{Playing: playing, Bench: bench}, &models.SquadRecord{})
	if sub := New(view, 10).DecideSubstitutionPostRedcard(sentOff); sub != nil {
		t.Fatalf("expected no downgrading swap, got %+v", sub)
	}
}
