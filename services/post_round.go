package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-simulator/calculators"
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
	"github.com/Dosada05/league-simulator/repositories"
	"github.com/Dosada05/league-simulator/simulator"
)

// FixtureResult is what one finished fixture left behind.
type FixtureResult struct {
	FixtureID      int                 `json:"fixture_id"`
	ChampionshipID int                 `json:"championship_id"`
	HomeID         int                 `json:"home_id"`
	AwayID         int                 `json:"away_id"`
	Score          models.Score        `json:"score"`
	Attendance     int                 `json:"attendance"`
	Gate           int                 `json:"gate"`
	Occurrences    []models.Occurrence `json:"occurrences"`
}

// PostRoundProcessor persists one finished match: player careers, team
// finances, fixture result, morale and standings.
type PostRoundProcessor struct {
	calc   calculators.Bundle
	src    random.Source
	logger *slog.Logger
}

func NewPostRoundProcessor(calc calculators.Bundle, src random.Source, logger *slog.Logger) *PostRoundProcessor {
	if src == nil {
		src = random.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostRoundProcessor{calc: calc, src: src, logger: logger}
}

// Process applies the finished session to the store. r is expected to be
// transactional so a failure leaves nothing half written.
func (p *PostRoundProcessor) Process(ctx context.Context, r repositories.Repos, sim *simulator.Simulator) (*FixtureResult, error) {
	if !sim.Finished() {
		return nil, fmt.Errorf("fixture %d has not reached full time: %w", sim.Fixture().ID, ErrRoundInProgress)
	}
	f := *sim.Fixture()
	fixture := &f
	score := sim.CurrentScore()

	renewed, err := p.applyCareers(ctx, r, sim)
	if err != nil {
		return nil, err
	}
	for _, teamID := range []int{fixture.HomeID, fixture.AwayID} {
		if err := p.countdownPeriods(ctx, r, teamID, renewed); err != nil {
			return nil, err
		}
	}

	home, err := r.Teams.GetByID(ctx, fixture.HomeID)
	if err != nil {
		return nil, handleRepositoryError(err, "home team %d", fixture.HomeID)
	}
	away, err := r.Teams.GetByID(ctx, fixture.AwayID)
	if err != nil {
		return nil, handleRepositoryError(err, "away team %d", fixture.AwayID)
	}

	attendance := p.calc.Attendance.Attendance(home, p.src)
	gate := attendance * home.TicketPrice
	home.Cash += gate
	if err := p.addToBudget(ctx, r, home.ID, fixture.ChampionshipID, gate, 0); err != nil {
		return nil, err
	}

	for _, team := range []*models.Team{home, away} {
		players, err := r.Players.ListByTeam(ctx, team.ID)
		if err != nil {
			return nil, handleRepositoryError(err, "players of team %d", team.ID)
		}
		bill := salaryBill(players)
		team.Cash -= bill
		if err := p.addToBudget(ctx, r, team.ID, fixture.ChampionshipID, 0, bill); err != nil {
			return nil, err
		}
	}

	fixture.Occurred = true
	fixture.HomeGoals = score.Home
	fixture.AwayGoals = score.Away
	fixture.Attendance = attendance
	if err := r.Fixtures.Update(ctx, fixture); err != nil {
		return nil, handleRepositoryError(err, "fixture %d", fixture.ID)
	}

	home.Morale = p.calc.Morale.Apply(home.Morale, score.Home, score.Away)
	away.Morale = p.calc.Morale.Apply(away.Morale, score.Away, score.Home)
	for _, team := range []*models.Team{home, away} {
		if err := r.Teams.Update(ctx, team); err != nil {
			return nil, handleRepositoryError(err, "team %d", team.ID)
		}
	}

	if err := p.recordStanding(ctx, r, fixture.ChampionshipID, home.ID, score.Home, score.Away); err != nil {
		return nil, err
	}
	if err := p.recordStanding(ctx, r, fixture.ChampionshipID, away.ID, score.Away, score.Home); err != nil {
		return nil, err
	}

	p.logger.Info("fixture processed",
		slog.Int("fixture_id", fixture.ID),
		slog.Int("home_goals", score.Home),
		slog.Int("away_goals", score.Away),
		slog.Int("attendance", attendance))

	return &FixtureResult{
		FixtureID:      fixture.ID,
		ChampionshipID: fixture.ChampionshipID,
		HomeID:         fixture.HomeID,
		AwayID:         fixture.AwayID,
		Score:          score,
		Attendance:     attendance,
		Gate:           gate,
		Occurrences:    sim.Occurrences(),
	}, nil
}

// periodRenewal records which periods a player received in this match so the
// weekly countdown skips them.
type periodRenewal struct {
	injury     bool
	suspension bool
}

func (p *PostRoundProcessor) applyCareers(ctx context.Context, r repositories.Repos, sim *simulator.Simulator) (map[int]periodRenewal, error) {
	renewed := make(map[int]periodRenewal)
	for _, part := range sim.Participations() {
		player, err := r.Players.GetByID(ctx, part.Player.ID)
		if err != nil {
			return nil, handleRepositoryError(err, "player %d", part.Player.ID)
		}

		in := calculators.PowerChangeInput{
			Power:         player.Power,
			LeftBench:     part.LeftBench,
			PlayedMinutes: part.Minutes,
		}
		if part.LeftBench {
			player.Stats.Games++
			player.Stats.Goals += part.Goals
			player.Stats.SeasonGoals += part.Goals

			var renewal periodRenewal
			if part.Injured {
				player.Stats.Injuries++
				player.InjuryPeriod = p.calc.InjuryPeriod.Period(player, p.src)
				renewal.injury = true
				in.Injured = true
				in.InjuryPeriod = player.InjuryPeriod
			}
			if part.RedCarded {
				player.Stats.RedCards++
				player.SuspensionPeriod = p.calc.Suspension.Period(player, p.src)
				renewal.suspension = true
			}
			if renewal.injury || renewal.suspension {
				renewed[player.ID] = renewal
			}
		}
		player.SetPower(p.calc.PowerChange.NewPower(in, p.src))

		if err := r.Players.Update(ctx, player); err != nil {
			return nil, handleRepositoryError(err, "player %d", player.ID)
		}
	}
	return renewed, nil
}

func (p *PostRoundProcessor) countdownPeriods(ctx context.Context, r repositories.Repos, teamID int, renewed map[int]periodRenewal) error {
	players, err := r.Players.ListByTeam(ctx, teamID)
	if err != nil {
		return handleRepositoryError(err, "players of team %d", teamID)
	}
	days := p.calc.Calendar.DaysPerRound
	for _, player := range players {
		renewal := renewed[player.ID]
		injury, suspension := player.InjuryPeriod, player.SuspensionPeriod
		if !renewal.injury {
			injury = countdown(injury, days)
		}
		if !renewal.suspension {
			suspension = countdown(suspension, days)
		}
		if injury == player.InjuryPeriod && suspension == player.SuspensionPeriod {
			continue
		}
		player.InjuryPeriod, player.SuspensionPeriod = injury, suspension
		if err := r.Players.Update(ctx, player); err != nil {
			return handleRepositoryError(err, "player %d", player.ID)
		}
	}
	return nil
}

func (p *PostRoundProcessor) addToBudget(ctx context.Context, r repositories.Repos, teamID, championshipID, earnings, spendings int) error {
	budget, err := r.Budgets.GetByTeamAndChampionship(ctx, teamID, championshipID)
	if err != nil {
		return handleRepositoryError(err, "budget of team %d in championship %d", teamID, championshipID)
	}
	budget.Earnings += earnings
	budget.Spendings += spendings
	if err := r.Budgets.Update(ctx, budget); err != nil {
		return handleRepositoryError(err, "budget %d", budget.ID)
	}
	return nil
}

func (p *PostRoundProcessor) recordStanding(ctx context.Context, r repositories.Repos, championshipID, teamID, scored, conceded int) error {
	standing, err := r.Standings.GetByChampionshipAndTeam(ctx, championshipID, teamID)
	if err != nil {
		return handleRepositoryError(err, "standing of team %d in championship %d", teamID, championshipID)
	}
	standing.Record(scored, conceded)
	if err := r.Standings.Update(ctx, standing); err != nil {
		return handleRepositoryError(err, "standing %d", standing.ID)
	}
	return nil
}
