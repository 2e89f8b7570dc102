package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-simulator/brackets"
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/random"
	"github.com/Dosada05/league-simulator/repositories"
	"github.com/Dosada05/league-simulator/sorters"
	"golang.org/x/sync/errgroup"
)

const FirstSeason = 1

// TableRow is one line of a ranked championship table.
type TableRow struct {
	Position int    `json:"position"`
	TeamName string `json:"team_name"`
	models.Standing
	Difference int `json:"goal_difference"`
	Games      int `json:"played"`
}

type DivisionTable struct {
	Division       int        `json:"division"`
	ChampionshipID int        `json:"championship_id"`
	Season         int        `json:"season"`
	ChampionTeamID *int       `json:"champion_team_id,omitempty"`
	Rows           []TableRow `json:"rows"`
}

type SeasonOverview struct {
	Clock      models.SeasonClock `json:"clock"`
	Divisions  []DivisionTable    `json:"divisions"`
	Unassigned []*models.Team     `json:"unassigned"`
}

type SeasonService interface {
	// Bootstrap opens the first season from the teams in the store: the
	// first TeamsPerDivision*DivisionCount by id fill the divisions top down,
	// the rest form the unassigned pool.
	Bootstrap(ctx context.Context) (*models.SeasonClock, error)
	SeedDemoLeague(ctx context.Context, teams, playersPerTeam int) error
	Clock(ctx context.Context) (*models.SeasonClock, error)
	Standings(ctx context.Context, championshipID int) (*DivisionTable, error)
	Overview(ctx context.Context) (*SeasonOverview, error)
	Fixtures(ctx context.Context, championshipID int, round int) ([]*models.Fixture, error)
	TeamPlayers(ctx context.Context, teamID int) ([]*models.Player, error)
}

type seasonService struct {
	store     repositories.Store
	generator brackets.ScheduleGenerator
	src       random.Source
	logger    *slog.Logger
}

func NewSeasonService(store repositories.Store, generator brackets.ScheduleGenerator, src random.Source, logger *slog.Logger) SeasonService {
	if generator == nil {
		generator = brackets.NewRoundRobinGenerator()
	}
	if src == nil {
		src = random.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &seasonService{store: store, generator: generator, src: src, logger: logger}
}

func (s *seasonService) Bootstrap(ctx context.Context) (*models.SeasonClock, error) {
	clock := &models.SeasonClock{Season: FirstSeason, Round: 1}
	err := s.store.RunInTx(ctx, func(r repositories.Repos) error {
		if _, err := r.Clock.Get(ctx); err == nil {
			return ErrAlreadyBootstrapped
		} else if !errors.Is(err, repositories.ErrSeasonClockNotFound) {
			return fmt.Errorf("failed to read season clock: %w", err)
		}

		teams, err := r.Teams.List(ctx)
		if err != nil {
			return handleRepositoryError(err, "teams")
		}
		needed := models.DivisionCount * models.TeamsPerDivision
		if len(teams) < needed {
			return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughTeams, len(teams), needed)
		}

		divisions := make(map[int][]int, models.DivisionCount)
		for i, team := range teams[:needed] {
			d := models.TopDivision + i/models.TeamsPerDivision
			divisions[d] = append(divisions[d], team.ID)
		}
		for d := models.TopDivision; d <= models.BottomDivision; d++ {
			if err := ensureLeague(ctx, r, d); err != nil {
				return err
			}
		}
		if _, err := openSeason(ctx, r, s.generator, FirstSeason, divisions); err != nil {
			return err
		}
		return r.Clock.Save(ctx, clock)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("league bootstrapped", slog.Int("season", clock.Season))
	return clock, nil
}

func ensureLeague(ctx context.Context, r repositories.Repos, division int) error {
	_, err := r.Leagues.GetByDivision(ctx, division)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrLeagueNotFound) {
		return handleRepositoryError(err, "league of division %d", division)
	}
	league := &models.League{Name: fmt.Sprintf("Division %d", division), Division: division}
	if err := r.Leagues.Create(ctx, league); err != nil {
		return fmt.Errorf("failed to create league for division %d: %w", division, err)
	}
	return nil
}

func (s *seasonService) SeedDemoLeague(ctx context.Context, teams, playersPerTeam int) error {
	if teams <= 0 || playersPerTeam <= 0 {
		return fmt.Errorf("%w: teams and players per team must be positive", ErrValidationFailed)
	}
	gen := newDemoGenerator(s.src)
	err := s.store.RunInTx(ctx, func(r repositories.Repos) error {
		for i := 0; i < teams; i++ {
			team := gen.team(i)
			if err := r.Teams.Create(ctx, team); err != nil {
				return fmt.Errorf("failed to create demo team %q: %w", team.Name, err)
			}
			for j := 0; j < playersPerTeam; j++ {
				player := gen.player(team.ID, j)
				if err := r.Players.Create(ctx, player); err != nil {
					return fmt.Errorf("failed to create demo player for team %d: %w", team.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("demo league seeded", slog.Int("teams", teams), slog.Int("players_per_team", playersPerTeam))
	return nil
}

func (s *seasonService) Clock(ctx context.Context) (*models.SeasonClock, error) {
	clock, err := s.store.Repos().Clock.Get(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "season clock")
	}
	return clock, nil
}

func (s *seasonService) Standings(ctx context.Context, championshipID int) (*DivisionTable, error) {
	repos := s.store.Repos()
	ch, err := repos.Championships.GetByID(ctx, championshipID)
	if err != nil {
		return nil, handleRepositoryError(err, "championship %d", championshipID)
	}
	return s.table(ctx, repos, ch)
}

func (s *seasonService) table(ctx context.Context, repos repositories.Repos, ch *models.Championship) (*DivisionTable, error) {
	standings, err := repos.Standings.ListByChampionship(ctx, ch.ID)
	if err != nil {
		return nil, handleRepositoryError(err, "standings of championship %d", ch.ID)
	}
	teams, err := repos.Teams.List(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "teams")
	}
	names := make(map[int]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	ranked, ties := sorters.RankStandings(standings)
	if len(ties) > 0 {
		s.logger.Debug("unbroken standings ties", slog.Int("championship_id", ch.ID), slog.Int("ties", len(ties)))
	}
	table := &DivisionTable{
		Division:       ch.Division,
		ChampionshipID: ch.ID,
		Season:         ch.Season,
		ChampionTeamID: ch.ChampionTeamID,
		Rows:           make([]TableRow, 0, len(ranked)),
	}
	for i, st := range ranked {
		table.Rows = append(table.Rows, TableRow{
			Position:   i + 1,
			TeamName:   names[st.TeamID],
			Standing:   *st,
			Difference: st.GoalDifference(),
			Games:      st.Played(),
		})
	}
	return table, nil
}

// Overview loads every division table of the current season concurrently.
func (s *seasonService) Overview(ctx context.Context) (*SeasonOverview, error) {
	repos := s.store.Repos()
	clock, err := repos.Clock.Get(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "season clock")
	}
	championships, err := repos.Championships.ListBySeason(ctx, clock.Season)
	if err != nil {
		return nil, handleRepositoryError(err, "championships of season %d", clock.Season)
	}

	overview := &SeasonOverview{Clock: *clock, Divisions: make([]DivisionTable, len(championships))}
	g, gCtx := errgroup.WithContext(ctx)
	for i, ch := range championships {
		g.Go(func() error {
			table, err := s.table(gCtx, repos, ch)
			if err != nil {
				return err
			}
			overview.Divisions[i] = *table
			return nil
		})
	}
	g.Go(func() error {
		pool, err := repos.Teams.ListUnassigned(gCtx)
		if err != nil {
			return handleRepositoryError(err, "unassigned teams")
		}
		overview.Unassigned = pool
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}

// Fixtures lists a championship's fixtures; round 0 means every round.
func (s *seasonService) Fixtures(ctx context.Context, championshipID int, round int) ([]*models.Fixture, error) {
	repos := s.store.Repos()
	if _, err := repos.Championships.GetByID(ctx, championshipID); err != nil {
		return nil, handleRepositoryError(err, "championship %d", championshipID)
	}
	var (
		fixtures []*models.Fixture
		err      error
	)
	if round > 0 {
		fixtures, err = repos.Fixtures.ListByRound(ctx, championshipID, round)
	} else {
		fixtures, err = repos.Fixtures.ListByChampionship(ctx, championshipID)
	}
	if err != nil {
		return nil, handleRepositoryError(err, "fixtures of championship %d", championshipID)
	}
	return fixtures, nil
}

func (s *seasonService) TeamPlayers(ctx context.Context, teamID int) ([]*models.Player, error) {
	repos := s.store.Repos()
	if _, err := repos.Teams.GetByID(ctx, teamID); err != nil {
		return nil, handleRepositoryError(err, "team %d", teamID)
	}
	players, err := repos.Players.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, handleRepositoryError(err, "players of team %d", teamID)
	}
	return sorters.ByPower(players), nil
}
