package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-simulator/models"
)

var (
	ErrStandingNotFound = errors.New("standing not found")
	ErrStandingConflict = errors.New("standing already exists for team in championship")
)

type StandingRepository interface {
	Create(ctx context.Context, standing *models.Standing) error
	GetByChampionshipAndTeam(ctx context.Context, championshipID, teamID int) (*models.Standing, error)
	// ListByChampionship returns rows by team id; ranking is the caller's job.
	ListByChampionship(ctx context.Context, championshipID int) ([]*models.Standing, error)
	Update(ctx context.Context, standing *models.Standing) error
}

type postgresStandingRepository struct {
	exec SQLExecutor
}

func NewPostgresStandingRepository(exec SQLExecutor) StandingRepository {
	return &postgresStandingRepository{exec: exec}
}

const standingColumns = `id, championship_id, team_id, wins, draws, losses, points, goals_for, goals_against`

func scanStanding(row rowScanner) (*models.Standing, error) {
	var s models.Standing
	err := row.Scan(&s.ID, &s.ChampionshipID, &s.TeamID, &s.Wins, &s.Draws, &s.Losses, &s.Points, &s.GoalsFor, &s.GoalsAgainst)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresStandingRepository) Create(ctx context.Context, s *models.Standing) error {
	query := `
		INSERT INTO standings (championship_id, team_id, wins, draws, losses, points, goals_for, goals_against)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.exec.QueryRowContext(ctx, query,
		s.ChampionshipID, s.TeamID, s.Wins, s.Draws, s.Losses, s.Points, s.GoalsFor, s.GoalsAgainst,
	).Scan(&s.ID)
	if err != nil {
		return constraintError(err, map[string]error{"standings_championship_team_key": ErrStandingConflict})
	}
	return nil
}

func (r *postgresStandingRepository) GetByChampionshipAndTeam(ctx context.Context, championshipID, teamID int) (*models.Standing, error) {
	query := `SELECT ` + standingColumns + ` FROM standings WHERE championship_id = $1 AND team_id = $2`
	return scanStanding(r.exec.QueryRowContext(ctx, query, championshipID, teamID))
}

func (r *postgresStandingRepository) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Standing, error) {
	query := `SELECT ` + standingColumns + ` FROM standings WHERE championship_id = $1 ORDER BY team_id`
	rows, err := r.exec.QueryContext(ctx, query, championshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	standings := make([]*models.Standing, 0)
	for rows.Next() {
		s, errScan := scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

func (r *postgresStandingRepository) Update(ctx context.Context, s *models.Standing) error {
	query := `
		UPDATE standings SET
			wins = $1, draws = $2, losses = $3, points = $4, goals_for = $5, goals_against = $6
		WHERE id = $7`
	result, err := r.exec.ExecContext(ctx, query, s.Wins, s.Draws, s.Losses, s.Points, s.GoalsFor, s.GoalsAgainst, s.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}
