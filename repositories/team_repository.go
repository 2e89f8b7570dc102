package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-simulator/models"
)

var (
	ErrTeamNotFound            = errors.New("team not found")
	ErrTeamChampionshipInvalid = errors.New("team championship conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	ListByChampionship(ctx context.Context, championshipID int) ([]*models.Team, error)
	// ListUnassigned returns the teams of the pool outside every division.
	ListUnassigned(ctx context.Context) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
}

type postgresTeamRepository struct {
	exec SQLExecutor
}

func NewPostgresTeamRepository(exec SQLExecutor) TeamRepository {
	return &postgresTeamRepository{exec: exec}
}

const teamColumns = `id, name, championship_id, morale, primary_color, secondary_color,
	stadium_capacity, ticket_price, cash, budget_id, human_controlled, created_at`

var teamConstraints = map[string]error{"teams_championship_id_fkey": ErrTeamChampionshipInvalid}

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	err := row.Scan(
		&t.ID, &t.Name, &t.ChampionshipID, &t.Morale, &t.PrimaryColor, &t.SecondaryColor,
		&t.StadiumCapacity, &t.TicketPrice, &t.Cash, &t.BudgetID, &t.HumanControlled, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, championship_id, morale, primary_color, secondary_color,
			stadium_capacity, ticket_price, cash, budget_id, human_controlled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`
	err := r.exec.QueryRowContext(ctx, query,
		team.Name, team.ChampionshipID, team.Morale, team.PrimaryColor, team.SecondaryColor,
		team.StadiumCapacity, team.TicketPrice, team.Cash, team.BudgetID, team.HumanControlled,
	).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return constraintError(err, teamConstraints)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return scanTeam(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY id`)
}

func (r *postgresTeamRepository) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Team, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM teams WHERE championship_id = $1 ORDER BY id`, championshipID)
}

func (r *postgresTeamRepository) ListUnassigned(ctx context.Context) ([]*models.Team, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM teams WHERE championship_id IS NULL ORDER BY id`)
}

func (r *postgresTeamRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Team, error) {
	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, errScan := scanTeam(rows)
		if errScan != nil {
			return nil, errScan
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET
			name = $1, championship_id = $2, morale = $3, primary_color = $4, secondary_color = $5,
			stadium_capacity = $6, ticket_price = $7, cash = $8, budget_id = $9, human_controlled = $10
		WHERE id = $11`
	result, err := r.exec.ExecContext(ctx, query,
		team.Name, team.ChampionshipID, team.Morale, team.PrimaryColor, team.SecondaryColor,
		team.StadiumCapacity, team.TicketPrice, team.Cash, team.BudgetID, team.HumanControlled,
		team.ID,
	)
	if err != nil {
		return constraintError(err, teamConstraints)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
