package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Dosada05/league-simulator/brackets"
	"github.com/Dosada05/league-simulator/metrics"
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
	"github.com/Dosada05/league-simulator/simulator"
)

type recordingHub struct {
	mu       sync.Mutex
	messages map[string][]string
}

func (h *recordingHub) BroadcastToRoom(roomID, messageType string, _ any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.messages == nil {
		h.messages = make(map[string][]string)
	}
	h.messages[roomID] = append(h.messages[roomID], messageType)
}

func (h *recordingHub) count(roomID, messageType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, m := range h.messages[roomID] {
		if m == messageType {
			n++
		}
	}
	return n
}

type recordingArchiver struct {
	seasons []int
	err     error
}

func (a *recordingArchiver) ArchiveSeason(_ context.Context, season int, _ any) (string, error) {
	a.seasons = append(a.seasons, season)
	return "seasons/archive.json", a.err
}

// manage hands teamID over to a manager and returns a valid submission
// built from its players.
func (l *league) manage(t *testing.T, teamID int) models.SquadSubmission {
	t.Helper()
	ctx := context.Background()
	team, err := l.repos().Teams.GetByID(ctx, teamID)
	if err != nil {
		t.Fatal(err)
	}
	team.HumanControlled = true
	if err := l.repos().Teams.Update(ctx, team); err != nil {
		t.Fatal(err)
	}

	var sub models.SquadSubmission
	keepers := 0
	for _, p := range l.players(t, teamID) {
		switch {
		case p.Position == models.PositionGoalkeeper && keepers == 0:
			keepers++
			sub.FirstTeam = append(sub.FirstTeam, p.ID)
		case p.Position == models.PositionGoalkeeper:
			sub.Substitutes = append(sub.Substitutes, p.ID)
		case len(sub.FirstTeam) < 11:
			sub.FirstTeam = append(sub.FirstTeam, p.ID)
		case len(sub.Substitutes) < 5:
			sub.Substitutes = append(sub.Substitutes, p.ID)
		default:
			sub.NotSelected = append(sub.NotSelected, p.ID)
		}
	}
	return sub
}

func TestSubmitSquadValidation(t *testing.T) {
	ctx := context.Background()
	l := newLeague(t, scriptedBundle(0))
	fixture := l.firstFixture(t)
	sub := l.manage(t, fixture.HomeID)
	svc := l.matchService(random.NewSeeded(7))

	foreign := l.players(t, fixture.AwayID)[0].ID
	noKeeper := models.SquadSubmission{FirstTeam: append([]int(nil), sub.FirstTeam[1:]...)}
	twoKeepers := models.SquadSubmission{FirstTeam: append(append([]int(nil), sub.FirstTeam[:10]...), sub.Substitutes[0])}
	duplicate := models.SquadSubmission{FirstTeam: sub.FirstTeam, Substitutes: []int{sub.FirstTeam[3]}}
	bigBench := models.SquadSubmission{FirstTeam: sub.FirstTeam, Substitutes: append(append([]int(nil), sub.Substitutes...), sub.NotSelected...)}

	tests := []struct {
		name string
		sub  models.SquadSubmission
	}{
		{"empty first team", models.SquadSubmission{}},
		{"no goalkeeper", noKeeper},
		{"two goalkeepers", twoKeepers},
		{"foreign player", models.SquadSubmission{FirstTeam: append(append([]int(nil), sub.FirstTeam[:10]...), foreign)}},
		{"player listed twice", duplicate},
		{"bench too big", bigBench},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.SubmitSquad(ctx, fixture.HomeID, tt.sub); !errors.Is(err, ErrInvalidSquad) {
				t.Errorf("SubmitSquad = %v, want ErrInvalidSquad", err)
			}
		})
	}

	t.Run("injured starter", func(t *testing.T) {
		p := l.player(t, sub.FirstTeam[1])
		p.InjuryPeriod = 7
		l.updatePlayer(t, p)
		defer func() {
			p.InjuryPeriod = 0
			l.updatePlayer(t, p)
		}()
		if err := svc.SubmitSquad(ctx, fixture.HomeID, sub); !errors.Is(err, ErrInvalidSquad) {
			t.Errorf("SubmitSquad = %v, want ErrInvalidSquad", err)
		}
	})

	if err := svc.SubmitSquad(ctx, fixture.AwayID, sub); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("SubmitSquad for an AI team = %v, want ErrForbiddenOperation", err)
	}
	if err := svc.SubmitSquad(ctx, fixture.HomeID, sub); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}
}

func TestHumanRoundFlow(t *testing.T) {
	ctx := context.Background()
	l := newLeague(t, scriptedBundle(0))
	fixture := l.firstFixture(t)
	teamID := fixture.HomeID
	sub := l.manage(t, teamID)

	hub := &recordingHub{}
	recorder := metrics.NewRecorder()
	src := random.NewSeeded(8)
	svc := NewMatchService(l.store, l.calc, src,
		NewPostRoundProcessor(l.calc, src, nil),
		NewPostSeasonProcessor(l.calc, src, nil, nil),
		hub, nil, recorder, nil)

	if err := svc.Resume(ctx, teamID); !errors.Is(err, ErrNoRoundInProgress) {
		t.Fatalf("Resume without a round = %v", err)
	}
	if _, err := svc.Advance(ctx); !errors.Is(err, ErrNoRoundInProgress) {
		t.Fatalf("Advance without a round = %v", err)
	}
	if svc.Current() != nil {
		t.Fatal("Current reports a round before kickoff")
	}
	if err := svc.SubmitSquad(ctx, teamID, sub); err != nil {
		t.Fatal(err)
	}

	res, err := svc.PlayRound(ctx)
	if err != nil {
		t.Fatalf("PlayRound: %v", err)
	}
	if res.Finished {
		t.Fatal("round finished without the half-time decision")
	}
	want := simulator.Pause{FixtureID: fixture.ID, TeamID: teamID, Reason: simulator.PauseHalfTime, Minute: 45}
	if len(res.Pauses) != 1 || res.Pauses[0] != want {
		t.Fatalf("pauses = %+v, want %+v", res.Pauses, want)
	}
	if hub.count(brackets.RoundRoom, brackets.MessageRoundStarted) != 1 {
		t.Error("round start not broadcast")
	}
	if hub.count(brackets.FixtureRoom(fixture.ID), brackets.MessagePause) != 1 {
		t.Error("pause not broadcast to the fixture room")
	}
	if hub.count(brackets.FixtureRoom(fixture.ID), brackets.MessageTick) != 45 {
		t.Errorf("ticks = %d, want 45", hub.count(brackets.FixtureRoom(fixture.ID), brackets.MessageTick))
	}

	// a second Advance while waiting does not announce the pause again
	if res, err := svc.Advance(ctx); err != nil || len(res.Pauses) != 1 {
		t.Fatalf("Advance while paused = %+v, %v", res, err)
	}
	if hub.count(brackets.FixtureRoom(fixture.ID), brackets.MessagePause) != 1 {
		t.Error("pause announced twice")
	}

	kickoff, err := l.repos().Fixtures.GetByID(ctx, fixture.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(kickoff.HomeSquad.FirstTeam) != len(sub.FirstTeam) || kickoff.HomeSquad.FirstTeam[0] != sub.FirstTeam[0] {
		t.Errorf("stored first team = %v, want the submission %v", kickoff.HomeSquad.FirstTeam, sub.FirstTeam)
	}

	if err := svc.SubmitSquad(ctx, teamID, sub); !errors.Is(err, ErrRoundInProgress) {
		t.Errorf("SubmitSquad during a round = %v", err)
	}
	if _, err := svc.StartRound(ctx); !errors.Is(err, ErrRoundInProgress) {
		t.Errorf("StartRound during a round = %v", err)
	}
	if err := svc.Resume(ctx, fixture.AwayID); !errors.Is(err, ErrForbiddenOperation) {
		t.Errorf("Resume for the AI side = %v", err)
	}
	if err := svc.Substitute(ctx, teamID, sub.Substitutes[1], sub.Substitutes[2]); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("bench for bench substitution = %v, want ErrValidationFailed", err)
	}

	out, in := sub.FirstTeam[10], sub.Substitutes[1]
	if err := svc.Substitute(ctx, teamID, out, in); err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	live, err := svc.Live(ctx, fixture.ID)
	if err != nil {
		t.Fatal(err)
	}
	if live.Minute != 45 || live.Finished || !live.Home.Human || live.Away.Human {
		t.Errorf("live = minute %d finished %v human %v/%v", live.Minute, live.Finished, live.Home.Human, live.Away.Human)
	}
	if live.Home.SubsLeft != l.calc.Calendar.Substitutions-1 {
		t.Errorf("subs left = %d", live.Home.SubsLeft)
	}
	if len(live.Home.Squad.Playing) != 11 || len(live.Home.Squad.Out) != 1 || live.Home.Squad.Out[0].ID != out {
		t.Errorf("home squad after substitution = %+v", live.Home.Squad)
	}
	if len(live.Pauses) != 1 {
		t.Errorf("live pauses = %+v", live.Pauses)
	}
	if state := svc.Current(); state == nil || len(state.Fixtures) != 16 || len(state.Pauses) != 1 {
		t.Errorf("current = %+v", state)
	}

	if err := svc.Resume(ctx, teamID); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if err := svc.Resume(ctx, teamID); !errors.Is(err, ErrDecisionNotPending) {
		t.Errorf("second Resume = %v, want ErrDecisionNotPending", err)
	}
	if err := svc.Substitute(ctx, teamID, sub.FirstTeam[9], sub.Substitutes[2]); !errors.Is(err, ErrDecisionNotPending) {
		t.Errorf("Substitute while playing = %v, want ErrDecisionNotPending", err)
	}

	res, err = svc.Advance(ctx)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !res.Finished || len(res.Results) != 16 {
		t.Fatalf("result = finished %v with %d fixtures", res.Finished, len(res.Results))
	}
	if svc.Current() != nil {
		t.Error("round still current after full time")
	}
	if hub.count(brackets.RoundRoom, brackets.MessageRoundFinished) != 1 {
		t.Error("round end not broadcast")
	}

	if p := l.player(t, in); p.Stats.Games != 1 {
		t.Errorf("substitute games = %d, want 1", p.Stats.Games)
	}
	if p := l.player(t, out); p.Stats.Games != 1 {
		t.Errorf("replaced player games = %d, want 1", p.Stats.Games)
	}

	stored, err := svc.Live(ctx, fixture.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Finished || stored.Minute != l.calc.Calendar.MatchMinutes {
		t.Errorf("stored live = %+v", stored)
	}
	if _, err := svc.Live(ctx, -1); !errors.Is(err, ErrFixtureNotFound) {
		t.Errorf("Live for an unknown fixture = %v", err)
	}
}

func TestSeasonCloseIsArchived(t *testing.T) {
	ctx := context.Background()
	l := newLeague(t, scriptedBundle(0.01))
	hub := &recordingHub{}
	archiver := &recordingArchiver{err: errors.New("bucket unavailable")}
	src := random.NewSeeded(9)
	svc := NewMatchService(l.store, l.calc, src,
		NewPostRoundProcessor(l.calc, src, nil),
		NewPostSeasonProcessor(l.calc, src, nil, nil),
		hub, archiver, nil, nil)

	for round := 1; round <= LastRound; round++ {
		if _, err := svc.PlayRound(ctx); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
	}
	if len(archiver.seasons) != 1 || archiver.seasons[0] != 1 {
		t.Errorf("archived seasons = %v, want [1]", archiver.seasons)
	}
	if hub.count(brackets.RoundRoom, brackets.MessageSeasonClosed) != 1 {
		t.Error("season close not broadcast")
	}
}
