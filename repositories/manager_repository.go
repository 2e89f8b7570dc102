package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/league-simulator/models"
)

var (
	ErrManagerNotFound      = errors.New("manager not found")
	ErrManagerEmailConflict = errors.New("manager email conflict")
	ErrManagerTeamConflict  = errors.New("team already has a manager")
	ErrManagerTeamInvalid   = errors.New("manager team conflict or invalid")
)

type ManagerRepository interface {
	Create(ctx context.Context, manager *models.Manager) error
	GetByID(ctx context.Context, id int) (*models.Manager, error)
	GetByEmail(ctx context.Context, email string) (*models.Manager, error)
}

type postgresManagerRepository struct {
	exec SQLExecutor
}

func NewPostgresManagerRepository(exec SQLExecutor) ManagerRepository {
	return &postgresManagerRepository{exec: exec}
}

func scanManager(row rowScanner) (*models.Manager, error) {
	var m models.Manager
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.TeamID, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrManagerNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresManagerRepository) Create(ctx context.Context, m *models.Manager) error {
	query := `
		INSERT INTO managers (name, email, password_hash, team_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.exec.QueryRowContext(ctx, query, m.Name, m.Email, m.PasswordHash, m.TeamID).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return constraintError(err, map[string]error{
			"managers_email_key":    ErrManagerEmailConflict,
			"managers_team_id_key":  ErrManagerTeamConflict,
			"managers_team_id_fkey": ErrManagerTeamInvalid,
		})
	}
	return nil
}

func (r *postgresManagerRepository) GetByID(ctx context.Context, id int) (*models.Manager, error) {
	query := `SELECT id, name, email, password_hash, team_id, created_at FROM managers WHERE id = $1`
	return scanManager(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresManagerRepository) GetByEmail(ctx context.Context, email string) (*models.Manager, error) {
	query := `SELECT id, name, email, password_hash, team_id, created_at FROM managers WHERE email = $1`
	return scanManager(r.exec.QueryRowContext(ctx, query, email))
}
