// Package simulator runs one fixture minute by minute and drives every
// fixture of a round in lockstep.
package simulator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-simulator/calculators"
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
	"github.com/Dosada05/league-simulator/trainer"
)

var (
	ErrMatchFinished    = errors.New("match already finished")
	ErrPlayerNotInSquad = errors.New("player is not in the expected squad bucket")
	ErrTeamNotInFixture = errors.New("team is not part of the fixture")
)

// Setup is one side of a fixture at kickoff.
type Setup struct {
	Team  *models.Team
	Squad models.SquadRecord
	Human bool
}

// Pending is a human decision the tick left open.
type Pending struct {
	TeamID   int
	Reason   PauseReason
	PlayerID int
}

// TickResult is what one simulated minute produced.
type TickResult struct {
	Minute      int                 `json:"minute"`
	Score       models.Score        `json:"score"`
	Occurrences []models.Occurrence `json:"occurrences"`
	Pending     []Pending           `json:"-"`
}

type side struct {
	team     *models.Team
	squad    *models.SquadRecord
	human    bool
	morale   float64
	subsLeft int
	kickoff  int
	// injured players still waiting for a replacement chosen by a human
	awaiting map[int]bool
}

// Simulator is the state of one fixture in progress. It is not safe for
// concurrent use; the Round driver serializes access.
type Simulator struct {
	fixture *models.Fixture
	home    *side
	away    *side
	calc    calculators.Bundle
	src     random.Source
	logger  *slog.Logger
	clock   int
	// set once the last minute's decisions are settled
	fullTime    bool
	scoreline   []models.Score
	occurrences []models.Occurrence
}

func newSide(s Setup, substitutions int) *side {
	squad := &models.SquadRecord{
		Playing: append([]*models.Player(nil), s.Squad.Playing...),
		Bench:   append([]*models.Player(nil), s.Squad.Bench...),
		Out:     append([]*models.Player(nil), s.Squad.Out...),
	}
	return &side{
		team:     s.Team,
		squad:    squad,
		human:    s.Human,
		morale:   s.Team.Morale,
		subsLeft: substitutions,
		kickoff:  squad.Size(),
		awaiting: make(map[int]bool),
	}
}

func New(fixture *models.Fixture, home, away Setup, calc calculators.Bundle, src random.Source, logger *slog.Logger) (*Simulator, error) {
	if fixture == nil {
		return nil, errors.New("simulator: nil fixture")
	}
	if home.Team == nil || home.Team.ID != fixture.HomeID {
		return nil, fmt.Errorf("%w: home side does not match fixture %d", ErrTeamNotInFixture, fixture.ID)
	}
	if away.Team == nil || away.Team.ID != fixture.AwayID {
		return nil, fmt.Errorf("%w: away side does not match fixture %d", ErrTeamNotInFixture, fixture.ID)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if src == nil {
		src = random.New()
	}
	return &Simulator{
		fixture:   fixture,
		home:      newSide(home, calc.Calendar.Substitutions),
		away:      newSide(away, calc.Calendar.Substitutions),
		calc:      calc,
		src:       src,
		logger:    logger.With("fixture_id", fixture.ID),
		scoreline: []models.Score{{}},
	}, nil
}

func (s *Simulator) side(teamID int) (*side, error) {
	switch teamID {
	case s.fixture.HomeID:
		return s.home, nil
	case s.fixture.AwayID:
		return s.away, nil
	}
	return nil, fmt.Errorf("%w: team %d, fixture %d", ErrTeamNotInFixture, teamID, s.fixture.ID)
}

func (s *Simulator) sides() [2]*side {
	return [2]*side{s.home, s.away}
}

func (s *Simulator) record(o models.Occurrence) {
	s.occurrences = append(s.occurrences, o)
}

// Tick simulates the next minute: goals, then injuries, then red cards.
func (s *Simulator) Tick() (TickResult, error) {
	if s.Finished() {
		return TickResult{}, ErrMatchFinished
	}
	score := s.CurrentScore()
	s.clock++
	first := len(s.occurrences)

	s.resolveGoals(&score)
	s.scoreline = append(s.scoreline, score)

	var pending []Pending
	injured := s.resolveInjuries(&pending)
	s.resolveRedCards(injured, &pending)
	if s.Finished() && len(pending) == 0 {
		s.fullTime = true
	}

	return TickResult{
		Minute:      s.clock,
		Score:       score,
		Occurrences: append([]models.Occurrence(nil), s.occurrences[first:]...),
		Pending:     pending,
	}, nil
}

func (s *Simulator) resolveGoals(score *models.Score) {
	homeStrength := s.calc.TeamStrength.Strength(s.home.squad.Playing, s.home.morale)
	awayStrength := s.calc.TeamStrength.Strength(s.away.squad.Playing, s.away.morale)
	homeFactor := s.calc.Goal.Factor(s.src)
	awayFactor := s.calc.Goal.Factor(s.src)

	homeScores := random.Bernoulli(s.src, s.calc.Goal.Probability(homeStrength, homeFactor, awayStrength, awayFactor))
	awayScores := random.Bernoulli(s.src, s.calc.Goal.Probability(awayStrength, awayFactor, homeStrength, homeFactor))

	// Both sides scoring in the same minute counts for the home side only.
	switch {
	case homeScores:
		if s.goal(s.home) {
			score.Home++
		}
	case awayScores:
		if s.goal(s.away) {
			score.Away++
		}
	}
}

func (s *Simulator) goal(sd *side) bool {
	scorer := s.calc.Goal.PickScorer(sd.squad.Playing, s.src)
	if scorer == nil {
		s.logger.Debug("goal chance without eligible scorer", "team_id", sd.team.ID, "minute", s.clock)
		return false
	}
	s.record(models.Occurrence{Type: models.OccurrenceGoal, Minute: s.clock, TeamID: sd.team.ID, PlayerID: scorer.ID})
	return true
}

func (s *Simulator) drawCandidates(players []*models.Player, probability func(*models.Player) float64) []*models.Player {
	var hit []*models.Player
	for _, p := range players {
		if random.Bernoulli(s.src, probability(p)) {
			hit = append(hit, p)
		}
	}
	return hit
}

// resolveInjuries returns the ids of the teams that lost a player to injury
// this minute.
func (s *Simulator) resolveInjuries(pending *[]Pending) map[int]bool {
	sides := s.sides()
	var candidates [2][]*models.Player
	for i, sd := range sides {
		candidates[i] = s.drawCandidates(sd.squad.Playing, s.calc.Injury.Probability)
	}

	injured := make(map[int]bool, 2)
	for i, sd := range sides {
		if len(candidates[i]) == 0 {
			continue
		}
		p := random.Pick(s.src, candidates[i])
		s.moveToOut(sd, p.ID)
		s.record(models.Occurrence{Type: models.OccurrenceInjury, Minute: s.clock, TeamID: sd.team.ID, PlayerID: p.ID})
		injured[sd.team.ID] = true

		if sd.human {
			sd.awaiting[p.ID] = true
			*pending = append(*pending, Pending{TeamID: sd.team.ID, Reason: PauseInjury, PlayerID: p.ID})
			continue
		}
		sub := trainer.New(s, sd.team.ID).DecideSubstitutionPostInjury(p)
		if sub == nil {
			s.logger.Debug("no replacement for injured player", "team_id", sd.team.ID, "player_id", p.ID)
			continue
		}
		sd.awaiting[p.ID] = true
		if err := s.substitute(sd.team.ID, sub.Out.ID, sub.In.ID); err != nil {
			s.logger.Error("automatic substitution failed", "team_id", sd.team.ID, "error", err)
		}
	}
	return injured
}

// resolveRedCards skips any side that already lost a player to injury this
// minute. The reverse does not hold.
func (s *Simulator) resolveRedCards(injured map[int]bool, pending *[]Pending) {
	for _, sd := range s.sides() {
		if injured[sd.team.ID] {
			continue
		}
		candidates := s.drawCandidates(sd.squad.Playing, s.calc.RedCard.Probability)
		if len(candidates) == 0 {
			continue
		}
		p := random.Pick(s.src, candidates)
		s.moveToOut(sd, p.ID)
		s.record(models.Occurrence{Type: models.OccurrenceRedCard, Minute: s.clock, TeamID: sd.team.ID, PlayerID: p.ID})
		if sd.human {
			*pending = append(*pending, Pending{TeamID: sd.team.ID, Reason: PauseRedCard, PlayerID: p.ID})
		}
	}
}

func (s *Simulator) moveToOut(sd *side, playerID int) bool {
	bucket, i, ok := sd.squad.Locate(playerID)
	if !ok || bucket != models.BucketPlaying {
		return false
	}
	sd.squad.Out = append(sd.squad.Out, sd.squad.TakeFromPlaying(i))
	return true
}

// SubstitutePlayers brings a bench player on for playerOut. playerOut must be
// on the pitch, or an injured player still waiting for a replacement. The
// substitution limit is not checked here; subsLeft stops at zero. Decisions
// raised in the last minute are still accepted until they are settled.
func (s *Simulator) SubstitutePlayers(teamID, playerOut, playerIn int) error {
	if s.fullTime {
		return ErrMatchFinished
	}
	return s.substitute(teamID, playerOut, playerIn)
}

func (s *Simulator) substitute(teamID, playerOut, playerIn int) error {
	sd, err := s.side(teamID)
	if err != nil {
		return err
	}
	inBucket, inIdx, ok := sd.squad.Locate(playerIn)
	if !ok || inBucket != models.BucketBench {
		return fmt.Errorf("%w: player %d is not on the bench of team %d", ErrPlayerNotInSquad, playerIn, teamID)
	}
	outBucket, _, ok := sd.squad.Locate(playerOut)
	switch {
	case ok && outBucket == models.BucketPlaying:
		s.moveToOut(sd, playerOut)
	case ok && outBucket == models.BucketOut && sd.awaiting[playerOut]:
		delete(sd.awaiting, playerOut)
	default:
		return fmt.Errorf("%w: player %d is not on the pitch for team %d", ErrPlayerNotInSquad, playerOut, teamID)
	}

	sd.squad.Playing = append(sd.squad.Playing, sd.squad.TakeFromBench(inIdx))
	if sd.subsLeft > 0 {
		sd.subsLeft--
	}
	s.record(models.Occurrence{
		Type:       models.OccurrenceSubstitution,
		Minute:     s.clock,
		TeamID:     teamID,
		PlayerID:   playerOut,
		PlayerInID: playerIn,
	})
	return nil
}

// RemovePlayingPlayer sends a player off the pitch without a replacement.
func (s *Simulator) RemovePlayingPlayer(teamID, playerID int) error {
	if s.fullTime {
		return ErrMatchFinished
	}
	sd, err := s.side(teamID)
	if err != nil {
		return err
	}
	if !s.moveToOut(sd, playerID) {
		return fmt.Errorf("%w: player %d is not on the pitch for team %d", ErrPlayerNotInSquad, playerID, teamID)
	}
	return nil
}

// releaseAwaiting gives up on replacing the injured players of a side.
func (s *Simulator) releaseAwaiting(teamID int) {
	if sd, err := s.side(teamID); err == nil {
		clear(sd.awaiting)
	}
}

func (s *Simulator) Fixture() *models.Fixture {
	return s.fixture
}

func (s *Simulator) IsHomeTeam(teamID int) bool {
	return teamID == s.fixture.HomeID
}

// Human reports whether decisions for teamID are taken by a manager.
func (s *Simulator) Human(teamID int) bool {
	sd, err := s.side(teamID)
	return err == nil && sd.human
}

func (s *Simulator) HasHuman() bool {
	return s.home.human || s.away.human
}

func (s *Simulator) Team(teamID int) *models.Team {
	sd, err := s.side(teamID)
	if err != nil {
		return nil
	}
	return sd.team
}

func (s *Simulator) Clock() int {
	return s.clock
}

func (s *Simulator) MatchMinutes() int {
	return s.calc.Calendar.MatchMinutes
}

// Finished reports whether every minute has been played. Pending decisions
// of the last minute may still be open; see FullTime.
func (s *Simulator) Finished() bool {
	return s.clock >= s.calc.Calendar.MatchMinutes
}

// FullTime reports whether the match is over and takes no more decisions.
func (s *Simulator) FullTime() bool {
	return s.fullTime
}

func (s *Simulator) settle() {
	if s.Finished() {
		s.fullTime = true
	}
}

func (s *Simulator) CurrentScore() models.Score {
	return s.scoreline[s.clock]
}

// Scoreline is the score after every minute, index 0 being kickoff.
func (s *Simulator) Scoreline() []models.Score {
	return append([]models.Score(nil), s.scoreline...)
}

func (s *Simulator) Occurrences() []models.Occurrence {
	return append([]models.Occurrence(nil), s.occurrences...)
}

func (s *Simulator) LastOccurrence() (models.Occurrence, bool) {
	if len(s.occurrences) == 0 {
		return models.Occurrence{}, false
	}
	return s.occurrences[len(s.occurrences)-1], true
}

// Squad returns the live squad of teamID, or nil for a team outside the
// fixture. Callers must not modify it.
func (s *Simulator) Squad(teamID int) *models.SquadRecord {
	sd, err := s.side(teamID)
	if err != nil {
		return nil
	}
	return sd.squad
}

func (s *Simulator) SubsLeft(teamID int) int {
	sd, err := s.side(teamID)
	if err != nil {
		return 0
	}
	return sd.subsLeft
}

// KickoffSize is the number of players the side started the match with.
func (s *Simulator) KickoffSize(teamID int) int {
	sd, err := s.side(teamID)
	if err != nil {
		return 0
	}
	return sd.kickoff
}

// FindPlayer searches both squads for playerID.
func (s *Simulator) FindPlayer(playerID int) (teamID int, bucket models.SquadBucket, ok bool) {
	for _, sd := range s.sides() {
		if b, _, found := sd.squad.Locate(playerID); found {
			return sd.team.ID, b, true
		}
	}
	return 0, "", false
}

// PlayedTime returns the minutes playerID spent on the pitch so far.
func (s *Simulator) PlayedTime(playerID int) int {
	_, bucket, ok := s.FindPlayer(playerID)
	if !ok {
		return 0
	}
	return PlayedTime(s.occurrences, playerID, bucket, s.clock)
}
