package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/league-simulator/brackets"
	"github.com/Dosada05/league-simulator/calculators"
	"github.com/Dosada05/league-simulator/metrics"
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
	"github.com/Dosada05/league-simulator/repositories"
	"github.com/Dosada05/league-simulator/simulator"
	"github.com/Dosada05/league-simulator/trainer"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LastRound is the final round of a double round-robin season.
const LastRound = 2 * brackets.RoundsPerHalf

// LiveBroadcaster pushes round events to subscribers.
type LiveBroadcaster interface {
	BroadcastToRoom(roomID string, messageType string, payload any)
}

// SeasonArchiver stores closed season reports.
type SeasonArchiver interface {
	ArchiveSeason(ctx context.Context, season int, report any) (string, error)
}

type MatchService interface {
	SubmitSquad(ctx context.Context, teamID int, submission models.SquadSubmission) error
	StartRound(ctx context.Context) (*RoundState, error)
	Advance(ctx context.Context) (*AdvanceResult, error)
	// PlayRound starts a round when none is running and advances it.
	PlayRound(ctx context.Context) (*AdvanceResult, error)
	Substitute(ctx context.Context, teamID, playerOut, playerIn int) error
	Resume(ctx context.Context, teamID int) error
	Live(ctx context.Context, fixtureID int) (*LiveMatch, error)
	Current() *RoundState
}

// SideState is one side of a live fixture.
type SideState struct {
	TeamID   int                `json:"team_id"`
	Human    bool               `json:"human"`
	SubsLeft int                `json:"subs_left"`
	Squad    models.SquadRecord `json:"squad"`
}

type LiveMatch struct {
	FixtureID      int                 `json:"fixture_id"`
	ChampionshipID int                 `json:"championship_id"`
	Round          int                 `json:"round"`
	Minute         int                 `json:"minute"`
	Score          models.Score        `json:"score"`
	Finished       bool                `json:"finished"`
	Home           SideState           `json:"home"`
	Away           SideState           `json:"away"`
	Occurrences    []models.Occurrence `json:"occurrences"`
	Pauses         []simulator.Pause   `json:"pauses,omitempty"`
}

// RoundState describes the round in progress.
type RoundState struct {
	ID        string            `json:"id"`
	Season    int               `json:"season"`
	Round     int               `json:"round"`
	StartedAt time.Time         `json:"started_at"`
	Fixtures  []int             `json:"fixtures"`
	Pauses    []simulator.Pause `json:"pauses"`
}

type AdvanceResult struct {
	RoundID  string             `json:"round_id"`
	Pauses   []simulator.Pause  `json:"pauses,omitempty"`
	Finished bool               `json:"finished"`
	Results  []*FixtureResult   `json:"results,omitempty"`
	Clock    models.SeasonClock `json:"clock"`
	Season   *SeasonReport      `json:"season,omitempty"`
}

type activeRound struct {
	id        string
	clock     models.SeasonClock
	startedAt time.Time
	driver    *simulator.Round
	// fixtures already persisted, kept so a retried Advance skips them
	processed map[int]*FixtureResult
	announced map[simulator.Pause]bool
}

type matchService struct {
	store      repositories.Store
	calc       calculators.Bundle
	src        random.Source
	selection  trainer.SelectionConfig
	postRound  *PostRoundProcessor
	postSeason *PostSeasonProcessor
	hub        LiveBroadcaster
	archiver   SeasonArchiver
	metrics    *metrics.Recorder
	logger     *slog.Logger

	mu          sync.Mutex
	round       *activeRound
	submissions map[int]models.SquadSubmission
}

// NewMatchService wires the live round orchestration. hub, archiver and
// recorder are optional.
func NewMatchService(
	store repositories.Store,
	calc calculators.Bundle,
	src random.Source,
	postRound *PostRoundProcessor,
	postSeason *PostSeasonProcessor,
	hub LiveBroadcaster,
	archiver SeasonArchiver,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) MatchService {
	if src == nil {
		src = random.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	selection := trainer.DefaultSelection()
	selection.BenchSize = calc.Calendar.BenchSize
	return &matchService{
		store:       store,
		calc:        calc,
		src:         src,
		selection:   selection,
		postRound:   postRound,
		postSeason:  postSeason,
		hub:         hub,
		archiver:    archiver,
		metrics:     recorder,
		logger:      logger,
		submissions: make(map[int]models.SquadSubmission),
	}
}

func (s *matchService) broadcast(room, messageType string, payload any) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(room, messageType, payload)
}

// SubmitSquad stores a manager's selection for the next kickoff.
func (s *matchService) SubmitSquad(ctx context.Context, teamID int, submission models.SquadSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round != nil {
		return ErrRoundInProgress
	}

	repos := s.store.Repos()
	team, err := repos.Teams.GetByID(ctx, teamID)
	if err != nil {
		return handleRepositoryError(err, "team %d", teamID)
	}
	if !team.HumanControlled {
		return fmt.Errorf("%w: team %d is not managed", ErrForbiddenOperation, teamID)
	}
	players, err := repos.Players.ListByTeam(ctx, teamID)
	if err != nil {
		return handleRepositoryError(err, "players of team %d", teamID)
	}
	if _, err := squadFromSubmission(submission, playersByID(players), s.calc.Calendar.BenchSize); err != nil {
		return err
	}
	s.submissions[teamID] = submission
	s.logger.Info("squad submitted", slog.Int("team_id", teamID), slog.Int("first_team", len(submission.FirstTeam)))
	return nil
}

// squadFromSubmission validates a manager's selection against the team's
// players and returns the kickoff squad.
func squadFromSubmission(sub models.SquadSubmission, players map[int]*models.Player, benchSize int) (models.SquadRecord, error) {
	var squad models.SquadRecord
	if len(sub.FirstTeam) == 0 || len(sub.FirstTeam) > trainer.PlayingSize {
		return squad, fmt.Errorf("%w: first team needs 1 to %d players, got %d", ErrInvalidSquad, trainer.PlayingSize, len(sub.FirstTeam))
	}
	if len(sub.Substitutes) > benchSize {
		return squad, fmt.Errorf("%w: bench holds at most %d players, got %d", ErrInvalidSquad, benchSize, len(sub.Substitutes))
	}

	seen := make(map[int]bool, len(sub.FirstTeam)+len(sub.Substitutes)+len(sub.NotSelected))
	take := func(ids []int, selected bool) ([]*models.Player, error) {
		out := make([]*models.Player, 0, len(ids))
		for _, id := range ids {
			p, ok := players[id]
			if !ok {
				return nil, fmt.Errorf("%w: player %d does not belong to the team", ErrInvalidSquad, id)
			}
			if seen[id] {
				return nil, fmt.Errorf("%w: player %d listed twice", ErrInvalidSquad, id)
			}
			seen[id] = true
			if selected && !p.Eligible() {
				return nil, fmt.Errorf("%w: player %d is injured, suspended or unavailable", ErrInvalidSquad, id)
			}
			out = append(out, p)
		}
		return out, nil
	}

	var err error
	if squad.Playing, err = take(sub.FirstTeam, true); err != nil {
		return squad, err
	}
	if squad.Bench, err = take(sub.Substitutes, true); err != nil {
		return squad, err
	}
	if _, err = take(sub.NotSelected, false); err != nil {
		return squad, err
	}

	keepers := 0
	for _, p := range squad.Playing {
		if p.Position == models.PositionGoalkeeper {
			keepers++
		}
	}
	if keepers != 1 {
		return squad, fmt.Errorf("%w: first team needs exactly one goalkeeper, got %d", ErrInvalidSquad, keepers)
	}
	return squad, nil
}

type roster struct {
	team    *models.Team
	players []*models.Player
}

// StartRound kicks off every fixture of the current round.
func (s *matchService) StartRound(ctx context.Context) (*RoundState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startRound(ctx)
}

func (s *matchService) startRound(ctx context.Context) (*RoundState, error) {
	if s.round != nil {
		return nil, ErrRoundInProgress
	}
	repos := s.store.Repos()
	clock, err := repos.Clock.Get(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "season clock")
	}
	championships, err := repos.Championships.ListBySeason(ctx, clock.Season)
	if err != nil {
		return nil, handleRepositoryError(err, "championships of season %d", clock.Season)
	}
	var fixtures []*models.Fixture
	for _, ch := range championships {
		round, err := repos.Fixtures.ListByRound(ctx, ch.ID, clock.Round)
		if err != nil {
			return nil, handleRepositoryError(err, "fixtures of championship %d round %d", ch.ID, clock.Round)
		}
		for _, f := range round {
			if !f.Occurred {
				fixtures = append(fixtures, f)
			}
		}
	}
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("season %d round %d: %w", clock.Season, clock.Round, ErrNoFixturesScheduled)
	}

	rosters, err := s.loadRosters(ctx, repos, fixtures)
	if err != nil {
		return nil, err
	}

	setups := make(map[int]simulator.Setup, len(rosters))
	for _, f := range fixtures {
		for _, teamID := range []int{f.HomeID, f.AwayID} {
			setups[teamID] = s.kickoffSetup(rosters[teamID])
		}
		f.HomeSquad = models.FixtureSquad{FirstTeam: models.IDs(setups[f.HomeID].Squad.Playing), Substitutes: models.IDs(setups[f.HomeID].Squad.Bench)}
		f.AwaySquad = models.FixtureSquad{FirstTeam: models.IDs(setups[f.AwayID].Squad.Playing), Substitutes: models.IDs(setups[f.AwayID].Squad.Bench)}
	}

	err = s.store.RunInTx(ctx, func(r repositories.Repos) error {
		for _, f := range fixtures {
			if err := r.Fixtures.Update(ctx, f); err != nil {
				return handleRepositoryError(err, "fixture %d", f.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist pre-match squads: %w", err)
	}

	roundID := uuid.NewString()
	logger := s.logger.With(slog.String("round_id", roundID))
	sessions := make([]*simulator.Simulator, 0, len(fixtures))
	for _, f := range fixtures {
		sim, err := simulator.New(f, setups[f.HomeID], setups[f.AwayID], s.calc, s.src, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up fixture %d: %w", f.ID, err)
		}
		sessions = append(sessions, sim)
	}

	s.round = &activeRound{
		id:        roundID,
		clock:     *clock,
		startedAt: time.Now(),
		driver:    simulator.NewRound(sessions, logger),
		processed: make(map[int]*FixtureResult),
		announced: make(map[simulator.Pause]bool),
	}
	clear(s.submissions)

	state := s.state()
	s.broadcast(brackets.RoundRoom, brackets.MessageRoundStarted, state)
	logger.Info("round started", slog.Int("season", clock.Season), slog.Int("round", clock.Round), slog.Int("fixtures", len(fixtures)))
	return state, nil
}

func (s *matchService) loadRosters(ctx context.Context, repos repositories.Repos, fixtures []*models.Fixture) (map[int]*roster, error) {
	var mu sync.Mutex
	rosters := make(map[int]*roster, 2*len(fixtures))

	g, gCtx := errgroup.WithContext(ctx)
	for _, f := range fixtures {
		for _, teamID := range []int{f.HomeID, f.AwayID} {
			g.Go(func() error {
				team, err := repos.Teams.GetByID(gCtx, teamID)
				if err != nil {
					return handleRepositoryError(err, "team %d", teamID)
				}
				players, err := repos.Players.ListByTeam(gCtx, teamID)
				if err != nil {
					return handleRepositoryError(err, "players of team %d", teamID)
				}
				mu.Lock()
				rosters[teamID] = &roster{team: team, players: players}
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rosters, nil
}

// kickoffSetup uses the manager's submission when there is a valid one and
// the trainer's pick otherwise.
func (s *matchService) kickoffSetup(ro *roster) simulator.Setup {
	setup := simulator.Setup{Team: ro.team, Human: ro.team.HumanControlled}
	if sub, ok := s.submissions[ro.team.ID]; ok && ro.team.HumanControlled {
		squad, err := squadFromSubmission(sub, playersByID(ro.players), s.calc.Calendar.BenchSize)
		if err == nil {
			setup.Squad = squad
			return setup
		}
		s.logger.Warn("submitted squad no longer valid, using trainer pick", slog.Int("team_id", ro.team.ID), slog.Any("error", err))
	}
	setup.Squad = trainer.PickFixtureSquad(eligiblePlayers(ro.players), s.selection)
	return setup
}

func (s *matchService) state() *RoundState {
	if s.round == nil {
		return nil
	}
	state := &RoundState{
		ID:        s.round.id,
		Season:    s.round.clock.Season,
		Round:     s.round.clock.Round,
		StartedAt: s.round.startedAt,
		Pauses:    s.round.driver.Paused(),
	}
	for _, sim := range s.round.driver.Sessions() {
		state.Fixtures = append(state.Fixtures, sim.Fixture().ID)
	}
	return state
}

func (s *matchService) Current() *RoundState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Advance runs the round until a manager decision is needed or every fixture
// reached full time, in which case the round is persisted.
func (s *matchService) Advance(ctx context.Context) (*AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advance(ctx)
}

func (s *matchService) PlayRound(ctx context.Context) (*AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		if _, err := s.startRound(ctx); err != nil {
			return nil, err
		}
	}
	return s.advance(ctx)
}

func (s *matchService) advance(ctx context.Context) (*AdvanceResult, error) {
	active := s.round
	if active == nil {
		return nil, ErrNoRoundInProgress
	}

	pauses, err := active.driver.RunUntilPause(func(u simulator.Update) {
		for _, o := range u.Result.Occurrences {
			s.metrics.RecordOccurrence(o)
		}
		s.broadcast(brackets.FixtureRoom(u.FixtureID), brackets.MessageTick, u)
		if len(u.Result.Occurrences) > 0 {
			s.broadcast(brackets.RoundRoom, brackets.MessageTick, u)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("round %s: %w", active.id, err)
	}
	if len(pauses) > 0 {
		for _, p := range pauses {
			if active.announced[p] {
				continue
			}
			active.announced[p] = true
			s.metrics.RecordPause(string(p.Reason))
			s.broadcast(brackets.FixtureRoom(p.FixtureID), brackets.MessagePause, p)
			s.broadcast(brackets.RoundRoom, brackets.MessagePause, p)
		}
		return &AdvanceResult{RoundID: active.id, Pauses: pauses, Clock: active.clock}, nil
	}
	return s.finishRound(ctx, active)
}

// finishRound persists every fixture one after the other, then moves the
// clock on, closing the season after the last round.
func (s *matchService) finishRound(ctx context.Context, active *activeRound) (*AdvanceResult, error) {
	result := &AdvanceResult{RoundID: active.id, Finished: true}
	for _, sim := range active.driver.Sessions() {
		fixtureID := sim.Fixture().ID
		if done, ok := active.processed[fixtureID]; ok {
			result.Results = append(result.Results, done)
			continue
		}
		var fr *FixtureResult
		err := s.store.RunInTx(ctx, func(r repositories.Repos) error {
			var err error
			fr, err = s.postRound.Process(ctx, r, sim)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("post-round for fixture %d: %w", fixtureID, err)
		}
		active.processed[fixtureID] = fr
		s.metrics.RecordMatch(fr.Attendance)
		result.Results = append(result.Results, fr)
	}

	next := active.clock
	var report *SeasonReport
	err := s.store.RunInTx(ctx, func(r repositories.Repos) error {
		if active.clock.Round < LastRound {
			next.Round++
			return r.Clock.Save(ctx, &next)
		}
		var err error
		report, err = s.postSeason.Process(ctx, r, active.clock)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("closing round %d of season %d: %w", active.clock.Round, active.clock.Season, err)
	}
	if report != nil {
		next = models.SeasonClock{Season: report.NextSeason, Round: 1}
	}
	result.Clock = next
	result.Season = report

	s.metrics.RecordRound(time.Since(active.startedAt))
	s.round = nil
	s.broadcast(brackets.RoundRoom, brackets.MessageRoundFinished, result)
	s.logger.Info("round finished",
		slog.String("round_id", active.id),
		slog.Int("season", active.clock.Season),
		slog.Int("round", active.clock.Round),
		slog.Int("fixtures", len(result.Results)))

	if report != nil {
		s.metrics.RecordSeason()
		s.archive(ctx, report)
		s.broadcast(brackets.RoundRoom, brackets.MessageSeasonClosed, report)
	}
	return result, nil
}

func (s *matchService) archive(ctx context.Context, report *SeasonReport) {
	if s.archiver == nil {
		return
	}
	key, err := s.archiver.ArchiveSeason(ctx, report.Season, report)
	if err != nil {
		s.logger.Error("failed to archive season", slog.Int("season", report.Season), slog.Any("error", err))
		return
	}
	s.logger.Info("season archived", slog.Int("season", report.Season), slog.String("key", key))
}

func (s *matchService) pausedSession(teamID int) (*simulator.Simulator, error) {
	if s.round == nil {
		return nil, ErrNoRoundInProgress
	}
	sim, ok := s.round.driver.SessionForTeam(teamID)
	if !ok {
		return nil, fmt.Errorf("%w: team %d does not play this round", ErrNotFound, teamID)
	}
	if !sim.Human(teamID) {
		return nil, fmt.Errorf("%w: team %d is not managed", ErrForbiddenOperation, teamID)
	}
	if len(s.round.driver.PausedFor(teamID)) == 0 {
		return nil, ErrDecisionNotPending
	}
	return sim, nil
}

// Substitute applies a manager's substitution while the fixture is paused.
func (s *matchService) Substitute(ctx context.Context, teamID, playerOut, playerIn int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sim, err := s.pausedSession(teamID)
	if err != nil {
		return err
	}
	if sim.SubsLeft(teamID) <= 0 {
		return ErrNoSubstitutionsLeft
	}
	if err := sim.SubstitutePlayers(teamID, playerOut, playerIn); err != nil {
		if errors.Is(err, simulator.ErrPlayerNotInSquad) {
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return err
	}

	occurrence, _ := sim.LastOccurrence()
	s.metrics.RecordOccurrence(occurrence)
	update := simulator.Update{
		FixtureID: sim.Fixture().ID,
		Result: simulator.TickResult{
			Minute:      sim.Clock(),
			Score:       sim.CurrentScore(),
			Occurrences: []models.Occurrence{occurrence},
		},
	}
	s.broadcast(brackets.FixtureRoom(update.FixtureID), brackets.MessageTick, update)
	s.broadcast(brackets.RoundRoom, brackets.MessageTick, update)
	return nil
}

// Resume lets a paused fixture play on. Injured players nobody replaced
// leave the team a player short.
func (s *matchService) Resume(ctx context.Context, teamID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sim, err := s.pausedSession(teamID)
	if err != nil {
		return err
	}
	if !s.round.driver.Resume(teamID) {
		return ErrDecisionNotPending
	}
	payload := map[string]int{"fixture_id": sim.Fixture().ID, "team_id": teamID, "minute": sim.Clock()}
	s.broadcast(brackets.FixtureRoom(sim.Fixture().ID), brackets.MessageResume, payload)
	s.broadcast(brackets.RoundRoom, brackets.MessageResume, payload)
	return nil
}

// Live returns a fixture as it stands: from the running round when it is part
// of it, from the store otherwise.
func (s *matchService) Live(ctx context.Context, fixtureID int) (*LiveMatch, error) {
	s.mu.Lock()
	if s.round != nil {
		if sim, ok := s.round.driver.Session(fixtureID); ok {
			live := liveFromSession(sim, s.round.driver)
			s.mu.Unlock()
			return live, nil
		}
	}
	s.mu.Unlock()

	fixture, err := s.store.Repos().Fixtures.GetByID(ctx, fixtureID)
	if err != nil {
		return nil, handleRepositoryError(err, "fixture %d", fixtureID)
	}
	live := &LiveMatch{
		FixtureID:      fixture.ID,
		ChampionshipID: fixture.ChampionshipID,
		Round:          fixture.Round,
		Finished:       fixture.Occurred,
		Home:           SideState{TeamID: fixture.HomeID},
		Away:           SideState{TeamID: fixture.AwayID},
	}
	if fixture.Occurred {
		live.Minute = s.calc.Calendar.MatchMinutes
		live.Score = models.Score{Home: fixture.HomeGoals, Away: fixture.AwayGoals}
	}
	return live, nil
}

func liveFromSession(sim *simulator.Simulator, driver *simulator.Round) *LiveMatch {
	f := sim.Fixture()
	side := func(teamID int) SideState {
		squad := sim.Squad(teamID)
		return SideState{
			TeamID:   teamID,
			Human:    sim.Human(teamID),
			SubsLeft: sim.SubsLeft(teamID),
			Squad: models.SquadRecord{
				Playing: append([]*models.Player(nil), squad.Playing...),
				Bench:   append([]*models.Player(nil), squad.Bench...),
				Out:     append([]*models.Player(nil), squad.Out...),
			},
		}
	}
	var pauses []simulator.Pause
	for _, p := range driver.Paused() {
		if p.FixtureID == f.ID {
			pauses = append(pauses, p)
		}
	}
	return &LiveMatch{
		FixtureID:      f.ID,
		ChampionshipID: f.ChampionshipID,
		Round:          f.Round,
		Minute:         sim.Clock(),
		Score:          sim.CurrentScore(),
		Finished:       sim.Finished(),
		Home:           side(f.HomeID),
		Away:           side(f.AwayID),
		Occurrences:    sim.Occurrences(),
		Pauses:         pauses,
	}
}
