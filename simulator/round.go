package simulator

import (
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/trainer"
)

type PauseReason string

const (
	PauseInjury   PauseReason = "injury"
	PauseRedCard  PauseReason = "redcard"
	PauseHalfTime PauseReason = "half_time"
)

// Pause is a fixture waiting for a manager decision.
type Pause struct {
	FixtureID int         `json:"fixture_id"`
	TeamID    int         `json:"team_id"`
	Reason    PauseReason `json:"reason"`
	PlayerID  int         `json:"player_id,omitempty"`
	Minute    int         `json:"minute"`
}

// Update is one fixture's minute as seen by the driver.
type Update struct {
	FixtureID int        `json:"fixture_id"`
	Result    TickResult `json:"result"`
}

// Round advances all fixtures of one round in lockstep. A paused fixture
// stops ticking until every pause on it is resumed; the others go on.
type Round struct {
	sessions []*Simulator
	byTeam   map[int]*Simulator
	paused   map[int][]Pause
	logger   *slog.Logger
}

func NewRound(sessions []*Simulator, logger *slog.Logger) *Round {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Round{
		sessions: sessions,
		byTeam:   make(map[int]*Simulator, len(sessions)*2),
		paused:   make(map[int][]Pause),
		logger:   logger,
	}
	for _, s := range sessions {
		r.byTeam[s.fixture.HomeID] = s
		r.byTeam[s.fixture.AwayID] = s
	}
	return r
}

func (r *Round) Sessions() []*Simulator {
	return r.sessions
}

func (r *Round) Session(fixtureID int) (*Simulator, bool) {
	for _, s := range r.sessions {
		if s.fixture.ID == fixtureID {
			return s, true
		}
	}
	return nil, false
}

func (r *Round) SessionForTeam(teamID int) (*Simulator, bool) {
	s, ok := r.byTeam[teamID]
	return s, ok
}

// Finished reports whether every fixture reached full time with no decision
// left open.
func (r *Round) Finished() bool {
	for _, s := range r.sessions {
		if !s.Finished() || len(r.paused[s.fixture.ID]) > 0 {
			return false
		}
	}
	return true
}

// Paused lists every open pause, fixture order preserved.
func (r *Round) Paused() []Pause {
	var out []Pause
	for _, s := range r.sessions {
		out = append(out, r.paused[s.fixture.ID]...)
	}
	return out
}

// PausedFor returns the open pauses of teamID.
func (r *Round) PausedFor(teamID int) []Pause {
	s, ok := r.byTeam[teamID]
	if !ok {
		return nil
	}
	var out []Pause
	for _, p := range r.paused[s.fixture.ID] {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out
}

// Advance ticks every fixture that is neither finished nor paused once and
// returns the updates and the pauses raised by this step.
func (r *Round) Advance() ([]Update, []Pause, error) {
	var updates []Update
	var raised []Pause
	for _, s := range r.sessions {
		if s.Finished() || len(r.paused[s.fixture.ID]) > 0 {
			continue
		}
		res, err := s.Tick()
		if err != nil {
			return updates, raised, fmt.Errorf("fixture %d: %w", s.fixture.ID, err)
		}
		res.Occurrences = append(res.Occurrences, r.answerRedCards(s, res.Occurrences)...)

		pauses := make([]Pause, 0, len(res.Pending))
		for _, p := range res.Pending {
			pauses = append(pauses, Pause{FixtureID: s.fixture.ID, TeamID: p.TeamID, Reason: p.Reason, PlayerID: p.PlayerID, Minute: res.Minute})
		}
		if res.Minute == s.MatchMinutes()/2 {
			for _, teamID := range []int{s.fixture.HomeID, s.fixture.AwayID} {
				if s.Human(teamID) {
					pauses = append(pauses, Pause{FixtureID: s.fixture.ID, TeamID: teamID, Reason: PauseHalfTime, Minute: res.Minute})
				}
			}
		}
		if len(pauses) > 0 {
			r.paused[s.fixture.ID] = append(r.paused[s.fixture.ID], pauses...)
			raised = append(raised, pauses...)
		}
		updates = append(updates, Update{FixtureID: s.fixture.ID, Result: res})
	}
	return updates, raised, nil
}

// answerRedCards lets the trainer react to red cards shown to AI sides and
// returns the substitutions it made.
func (r *Round) answerRedCards(s *Simulator, occurrences []models.Occurrence) []models.Occurrence {
	var subs []models.Occurrence
	for _, o := range occurrences {
		if o.Type != models.OccurrenceRedCard || s.Human(o.TeamID) {
			continue
		}
		sentOff := s.Squad(o.TeamID).Player(o.PlayerID)
		sub := trainer.New(s, o.TeamID).DecideSubstitutionPostRedcard(sentOff)
		if sub == nil {
			continue
		}
		if err := s.substitute(o.TeamID, sub.Out.ID, sub.In.ID); err != nil {
			r.logger.Error("red card substitution failed", "fixture_id", s.fixture.ID, "team_id", o.TeamID, "error", err)
			continue
		}
		if last, ok := s.LastOccurrence(); ok {
			subs = append(subs, last)
		}
	}
	return subs
}

// RunUntilPause advances until every fixture finished or a pause is raised.
// observe, when set, sees every update as it happens.
func (r *Round) RunUntilPause(observe func(Update)) ([]Pause, error) {
	for !r.Finished() {
		updates, raised, err := r.Advance()
		if err != nil {
			return nil, err
		}
		if observe != nil {
			for _, u := range updates {
				observe(u)
			}
		}
		if len(raised) > 0 {
			return raised, nil
		}
		if len(updates) == 0 {
			// everything still running is waiting on a manager
			return r.Paused(), nil
		}
	}
	return nil, nil
}

// Resume clears the pauses teamID owns. Injured players still waiting for a
// replacement stay out. It reports whether anything was paused.
func (r *Round) Resume(teamID int) bool {
	s, ok := r.byTeam[teamID]
	if !ok {
		return false
	}
	open := r.paused[s.fixture.ID]
	kept := open[:0]
	for _, p := range open {
		if p.TeamID != teamID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(open) {
		return false
	}
	s.releaseAwaiting(teamID)
	if len(kept) == 0 {
		delete(r.paused, s.fixture.ID)
		s.settle()
	} else {
		r.paused[s.fixture.ID] = kept
	}
	return true
}
