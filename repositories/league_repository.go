package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-simulator/models"
)

var (
	ErrLeagueNotFound            = errors.New("league not found")
	ErrLeagueConflict            = errors.New("league for division already exists")
	ErrChampionshipNotFound      = errors.New("championship not found")
	ErrChampionshipConflict      = errors.New("championship for league and season already exists")
	ErrChampionshipLeagueInvalid = errors.New("championship league conflict or invalid")
)

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	GetByDivision(ctx context.Context, division int) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
}

type ChampionshipRepository interface {
	Create(ctx context.Context, championship *models.Championship) error
	GetByID(ctx context.Context, id int) (*models.Championship, error)
	// ListBySeason returns the championships of one season, top division first.
	ListBySeason(ctx context.Context, season int) ([]*models.Championship, error)
	Update(ctx context.Context, championship *models.Championship) error
}

type postgresLeagueRepository struct {
	exec SQLExecutor
}

func NewPostgresLeagueRepository(exec SQLExecutor) LeagueRepository {
	return &postgresLeagueRepository{exec: exec}
}

func scanLeague(row rowScanner) (*models.League, error) {
	var l models.League
	if err := row.Scan(&l.ID, &l.Name, &l.Division); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *postgresLeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `INSERT INTO leagues (name, division) VALUES ($1, $2) RETURNING id`
	err := r.exec.QueryRowContext(ctx, query, league.Name, league.Division).Scan(&league.ID)
	if err != nil {
		return constraintError(err, map[string]error{"leagues_division_key": ErrLeagueConflict})
	}
	return nil
}

func (r *postgresLeagueRepository) GetByDivision(ctx context.Context, division int) (*models.League, error) {
	query := `SELECT id, name, division FROM leagues WHERE division = $1`
	return scanLeague(r.exec.QueryRowContext(ctx, query, division))
}

func (r *postgresLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	rows, err := r.exec.QueryContext(ctx, `SELECT id, name, division FROM leagues ORDER BY division`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		l, errScan := scanLeague(rows)
		if errScan != nil {
			return nil, errScan
		}
		leagues = append(leagues, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return leagues, nil
}

type postgresChampionshipRepository struct {
	exec SQLExecutor
}

func NewPostgresChampionshipRepository(exec SQLExecutor) ChampionshipRepository {
	return &postgresChampionshipRepository{exec: exec}
}

func scanChampionship(row rowScanner) (*models.Championship, error) {
	var c models.Championship
	if err := row.Scan(&c.ID, &c.LeagueID, &c.Division, &c.Season, &c.ChampionTeamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresChampionshipRepository) Create(ctx context.Context, c *models.Championship) error {
	query := `
		INSERT INTO championships (league_id, division, season, champion_team_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.exec.QueryRowContext(ctx, query, c.LeagueID, c.Division, c.Season, c.ChampionTeamID).Scan(&c.ID)
	if err != nil {
		return constraintError(err, map[string]error{
			"championships_league_season_key": ErrChampionshipConflict,
			"championships_league_id_fkey":    ErrChampionshipLeagueInvalid,
		})
	}
	return nil
}

func (r *postgresChampionshipRepository) GetByID(ctx context.Context, id int) (*models.Championship, error) {
	query := `SELECT id, league_id, division, season, champion_team_id FROM championships WHERE id = $1`
	return scanChampionship(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresChampionshipRepository) ListBySeason(ctx context.Context, season int) ([]*models.Championship, error) {
	query := `SELECT id, league_id, division, season, champion_team_id FROM championships WHERE season = $1 ORDER BY division`
	rows, err := r.exec.QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query championships: %w", err)
	}
	defer rows.Close()

	championships := make([]*models.Championship, 0)
	for rows.Next() {
		c, errScan := scanChampionship(rows)
		if errScan != nil {
			return nil, errScan
		}
		championships = append(championships, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return championships, nil
}

func (r *postgresChampionshipRepository) Update(ctx context.Context, c *models.Championship) error {
	query := `UPDATE championships SET champion_team_id = $1 WHERE id = $2`
	result, err := r.exec.ExecContext(ctx, query, c.ChampionTeamID, c.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrChampionshipNotFound)
}
