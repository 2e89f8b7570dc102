package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/league-simulator/models"
)

var (
	ErrBudgetNotFound = errors.New("team budget not found")
	ErrBudgetConflict = errors.New("team budget already exists for championship")
)

type BudgetRepository interface {
	Create(ctx context.Context, budget *models.TeamBudget) error
	GetByID(ctx context.Context, id int) (*models.TeamBudget, error)
	GetByTeamAndChampionship(ctx context.Context, teamID, championshipID int) (*models.TeamBudget, error)
	Update(ctx context.Context, budget *models.TeamBudget) error
}

type postgresBudgetRepository struct {
	exec SQLExecutor
}

func NewPostgresBudgetRepository(exec SQLExecutor) BudgetRepository {
	return &postgresBudgetRepository{exec: exec}
}

func scanBudget(row rowScanner) (*models.TeamBudget, error) {
	var b models.TeamBudget
	if err := row.Scan(&b.ID, &b.TeamID, &b.ChampionshipID, &b.Earnings, &b.Spendings); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *postgresBudgetRepository) Create(ctx context.Context, b *models.TeamBudget) error {
	query := `
		INSERT INTO team_budgets (team_id, championship_id, earnings, spendings)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.exec.QueryRowContext(ctx, query, b.TeamID, b.ChampionshipID, b.Earnings, b.Spendings).Scan(&b.ID)
	if err != nil {
		return constraintError(err, map[string]error{"team_budgets_team_championship_key": ErrBudgetConflict})
	}
	return nil
}

func (r *postgresBudgetRepository) GetByID(ctx context.Context, id int) (*models.TeamBudget, error) {
	query := `SELECT id, team_id, championship_id, earnings, spendings FROM team_budgets WHERE id = $1`
	return scanBudget(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresBudgetRepository) GetByTeamAndChampionship(ctx context.Context, teamID, championshipID int) (*models.TeamBudget, error) {
	query := `SELECT id, team_id, championship_id, earnings, spendings FROM team_budgets WHERE team_id = $1 AND championship_id = $2`
	return scanBudget(r.exec.QueryRowContext(ctx, query, teamID, championshipID))
}

func (r *postgresBudgetRepository) Update(ctx context.Context, b *models.TeamBudget) error {
	query := `UPDATE team_budgets SET earnings = $1, spendings = $2 WHERE id = $3`
	result, err := r.exec.ExecContext(ctx, query, b.Earnings, b.Spendings, b.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBudgetNotFound)
}
