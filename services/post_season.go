package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/league-simulator/brackets"
	"github.com/Dosada05/league-simulator/calculators"
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
	"github.com/Dosada05/league-simulator/repositories"
	"github.com/Dosada05/league-simulator/sorters"
)

// Movers is how many teams go up and down between adjacent divisions.
const Movers = 2

// DivisionReport is the closing table of one championship and who left it.
type DivisionReport struct {
	Division       int                `json:"division"`
	ChampionshipID int                `json:"championship_id"`
	ChampionID     int                `json:"champion_id"`
	Table          []*models.Standing `json:"table"`
	Promoted       []int              `json:"promoted,omitempty"`
	Relegated      []int              `json:"relegated,omitempty"`
	DroppedOut     []int              `json:"dropped_out,omitempty"`
	Ties           []sorters.Tie      `json:"ties,omitempty"`
}

// SeasonReport is the archive record of a closed season.
type SeasonReport struct {
	Season        int              `json:"season"`
	NextSeason    int              `json:"next_season"`
	Divisions     []DivisionReport `json:"divisions"`
	PoolEntrants  []int            `json:"pool_entrants"`
	Championships []int            `json:"next_championships"`
	ClosedAt      time.Time        `json:"closed_at"`
}

// PostSeasonProcessor closes a season: champions, promotion and relegation,
// the pool draw and the next season's championships and fixtures.
type PostSeasonProcessor struct {
	calc      calculators.Bundle
	src       random.Source
	generator brackets.ScheduleGenerator
	logger    *slog.Logger
}

func NewPostSeasonProcessor(calc calculators.Bundle, src random.Source, generator brackets.ScheduleGenerator, logger *slog.Logger) *PostSeasonProcessor {
	if src == nil {
		src = random.New()
	}
	if generator == nil {
		generator = brackets.NewRoundRobinGenerator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostSeasonProcessor{calc: calc, src: src, generator: generator, logger: logger}
}

// Process closes clock.Season. r is expected to be transactional.
func (p *PostSeasonProcessor) Process(ctx context.Context, r repositories.Repos, clock models.SeasonClock) (*SeasonReport, error) {
	championships, err := r.Championships.ListBySeason(ctx, clock.Season)
	if err != nil {
		return nil, handleRepositoryError(err, "championships of season %d", clock.Season)
	}
	if len(championships) != models.DivisionCount {
		return nil, fmt.Errorf("season %d has %d championships, want %d: %w", clock.Season, len(championships), models.DivisionCount, ErrSeasonNotInitialised)
	}

	report := &SeasonReport{Season: clock.Season, NextSeason: clock.Season + 1}
	ranked := make(map[int][]int, models.DivisionCount)
	for _, ch := range championships {
		standings, err := r.Standings.ListByChampionship(ctx, ch.ID)
		if err != nil {
			return nil, handleRepositoryError(err, "standings of championship %d", ch.ID)
		}
		table, ties := sorters.RankStandings(standings)
		for _, tie := range ties {
			p.logger.Warn("standings tie not broken by goals scored",
				slog.Int("championship_id", ch.ID),
				slog.Int("team_id", tie.First),
				slog.Int("other_team_id", tie.Second))
		}
		if len(table) < 2*Movers {
			return nil, fmt.Errorf("championship %d has %d teams: %w", ch.ID, len(table), ErrNotEnoughTeams)
		}

		champion := table[0].TeamID
		ch.ChampionTeamID = &champion
		if err := r.Championships.Update(ctx, ch); err != nil {
			return nil, handleRepositoryError(err, "championship %d", ch.ID)
		}

		ids := make([]int, len(table))
		for i, s := range table {
			ids[i] = s.TeamID
		}
		ranked[ch.Division] = ids

		div := DivisionReport{
			Division:       ch.Division,
			ChampionshipID: ch.ID,
			ChampionID:     champion,
			Table:          table,
			Ties:           ties,
		}
		if ch.Division > models.TopDivision {
			div.Promoted = append([]int(nil), ids[:Movers]...)
		}
		if ch.Division < models.BottomDivision {
			div.Relegated = append([]int(nil), ids[len(ids)-Movers:]...)
		}
		report.Divisions = append(report.Divisions, div)
	}

	bottom := ranked[models.BottomDivision]
	leaving := bottom[len(bottom)-Movers:]
	pool, err := r.Teams.ListUnassigned(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "unassigned teams")
	}
	entrants := p.drawEntrants(pool, leaving)
	report.PoolEntrants = entrants

	kept := make(map[int]bool, len(entrants))
	for _, id := range entrants {
		kept[id] = true
	}
	for i := range report.Divisions {
		if report.Divisions[i].Division != models.BottomDivision {
			continue
		}
		for _, id := range leaving {
			if !kept[id] {
				report.Divisions[i].DroppedOut = append(report.Divisions[i].DroppedOut, id)
			}
		}
	}
	for _, id := range leaving {
		if kept[id] {
			continue
		}
		if err := unassignTeam(ctx, r, id); err != nil {
			return nil, err
		}
	}

	next := nextDivisions(ranked, entrants)
	for d := models.TopDivision; d <= models.BottomDivision; d++ {
		members := next[d]
		p.src.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
	}
	opened, err := openSeason(ctx, r, p.generator, report.NextSeason, next)
	if err != nil {
		return nil, err
	}
	for _, ch := range opened {
		report.Championships = append(report.Championships, ch.ID)
	}

	if err := p.offSeason(ctx, r); err != nil {
		return nil, err
	}
	if err := r.Clock.Save(ctx, &models.SeasonClock{Season: report.NextSeason, Round: 1}); err != nil {
		return nil, fmt.Errorf("failed to advance season clock: %w", err)
	}
	report.ClosedAt = time.Now().UTC()

	p.logger.Info("season closed",
		slog.Int("season", report.Season),
		slog.Any("pool_entrants", entrants))
	return report, nil
}

// drawEntrants picks Movers teams uniformly from the unassigned pool. When the
// pool is too small the teams about to drop out keep their places.
func (p *PostSeasonProcessor) drawEntrants(pool []*models.Team, leaving []int) []int {
	candidates := make([]int, 0, len(pool))
	for _, t := range pool {
		candidates = append(candidates, t.ID)
	}
	p.src.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if len(candidates) >= Movers {
		return candidates[:Movers]
	}
	p.logger.Warn("unassigned pool too small for the bottom division draw",
		slog.Int("pool_size", len(candidates)),
		slog.Int("needed", Movers))
	entrants := append([]int(nil), candidates...)
	for i := 0; len(entrants) < Movers && i < len(leaving); i++ {
		entrants = append(entrants, leaving[i])
	}
	return entrants
}

// nextDivisions moves the top Movers of every division but the first up, the
// bottom Movers of every division down (out of the league for the last one)
// and fills the last division with entrants.
func nextDivisions(ranked map[int][]int, entrants []int) map[int][]int {
	next := make(map[int][]int, models.DivisionCount)
	for d := models.TopDivision; d <= models.BottomDivision; d++ {
		table := ranked[d]
		stay := table[:len(table)-Movers]
		if d > models.TopDivision {
			stay = stay[Movers:]
		}
		members := append([]int(nil), stay...)
		if d > models.TopDivision {
			above := ranked[d-1]
			members = append(members, above[len(above)-Movers:]...)
		}
		if d < models.BottomDivision {
			members = append(members, ranked[d+1][:Movers]...)
		} else {
			members = append(members, entrants...)
		}
		next[d] = members
	}
	return next
}

func (p *PostSeasonProcessor) offSeason(ctx context.Context, r repositories.Repos) error {
	players, err := r.Players.List(ctx)
	if err != nil {
		return handleRepositoryError(err, "players")
	}
	days := p.calc.Calendar.OffSeasonDays
	for _, player := range players {
		player.InjuryPeriod = countdown(player.InjuryPeriod, days)
		player.SuspensionPeriod = countdown(player.SuspensionPeriod, days)
		player.Stats.SeasonGoals = 0
		if err := r.Players.Update(ctx, player); err != nil {
			return handleRepositoryError(err, "player %d", player.ID)
		}
	}
	return nil
}

func unassignTeam(ctx context.Context, r repositories.Repos, teamID int) error {
	team, err := r.Teams.GetByID(ctx, teamID)
	if err != nil {
		return handleRepositoryError(err, "team %d", teamID)
	}
	team.ChampionshipID = nil
	team.BudgetID = nil
	if err := r.Teams.Update(ctx, team); err != nil {
		return handleRepositoryError(err, "team %d", teamID)
	}
	return nil
}

// openSeason creates one championship per division with zeroed standings and
// budgets for its members and the full fixture list.
func openSeason(ctx context.Context, r repositories.Repos, generator brackets.ScheduleGenerator, season int, divisions map[int][]int) ([]*models.Championship, error) {
	opened := make([]*models.Championship, 0, models.DivisionCount)
	for d := models.TopDivision; d <= models.BottomDivision; d++ {
		league, err := r.Leagues.GetByDivision(ctx, d)
		if err != nil {
			return nil, handleRepositoryError(err, "league of division %d", d)
		}
		ch := &models.Championship{LeagueID: league.ID, Division: d, Season: season}
		if err := r.Championships.Create(ctx, ch); err != nil {
			return nil, fmt.Errorf("failed to open division %d for season %d: %w", d, season, err)
		}
		championshipID := ch.ID

		for _, teamID := range divisions[d] {
			team, err := r.Teams.GetByID(ctx, teamID)
			if err != nil {
				return nil, handleRepositoryError(err, "team %d", teamID)
			}
			if err := r.Standings.Create(ctx, &models.Standing{ChampionshipID: championshipID, TeamID: teamID}); err != nil {
				return nil, fmt.Errorf("failed to create standing for team %d: %w", teamID, err)
			}
			budget := &models.TeamBudget{TeamID: teamID, ChampionshipID: championshipID}
			if err := r.Budgets.Create(ctx, budget); err != nil {
				return nil, fmt.Errorf("failed to create budget for team %d: %w", teamID, err)
			}
			budgetID := budget.ID
			team.ChampionshipID = &championshipID
			team.BudgetID = &budgetID
			if err := r.Teams.Update(ctx, team); err != nil {
				return nil, handleRepositoryError(err, "team %d", teamID)
			}
		}

		fixtures, err := generator.GenerateSchedule(ctx, brackets.GenerateScheduleParams{
			ChampionshipID: championshipID,
			TeamIDs:        divisions[d],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule division %d with %s: %w", d, generator.GetName(), err)
		}
		if err := r.Fixtures.CreateBatch(ctx, fixtures); err != nil {
			return nil, fmt.Errorf("failed to save fixtures of division %d: %w", d, err)
		}
		opened = append(opened, ch)
	}
	return opened, nil
}
