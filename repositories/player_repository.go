package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-simulator/models"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerTeamInvalid = errors.New("player team conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
}

type postgresPlayerRepository struct {
	exec SQLExecutor
}

func NewPostgresPlayerRepository(exec SQLExecutor) PlayerRepository {
	return &postgresPlayerRepository{exec: exec}
}

const playerColumns = `id, team_id, name, position, power, star, discipline, salary, available,
	suspension_period, injury_period, injury_proneness, games, goals, season_goals, red_cards, injuries`

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID, &p.TeamID, &p.Name, &p.Position, &p.Power, &p.Star, &p.Discipline, &p.Salary, &p.Available,
		&p.SuspensionPeriod, &p.InjuryPeriod, &p.InjuryProneness,
		&p.Stats.Games, &p.Stats.Goals, &p.Stats.SeasonGoals, &p.Stats.RedCards, &p.Stats.Injuries,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (team_id, name, position, power, star, discipline, salary, available,
			suspension_period, injury_period, injury_proneness, games, goals, season_goals, red_cards, injuries)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`
	err := r.exec.QueryRowContext(ctx, query,
		player.TeamID, player.Name, player.Position, player.Power, player.Star, player.Discipline,
		player.Salary, player.Available, player.SuspensionPeriod, player.InjuryPeriod, player.InjuryProneness,
		player.Stats.Games, player.Stats.Goals, player.Stats.SeasonGoals, player.Stats.RedCards, player.Stats.Injuries,
	).Scan(&player.ID)
	if err != nil {
		return constraintError(err, map[string]error{"players_team_id_fkey": ErrPlayerTeamInvalid})
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return scanPlayer(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE team_id = $1 ORDER BY id`
	return r.list(ctx, query, teamID)
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY id`
	return r.list(ctx, query)
}

func (r *postgresPlayerRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, errScan := scanPlayer(rows)
		if errScan != nil {
			return nil, errScan
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players SET
			team_id = $1, name = $2, position = $3, power = $4, star = $5, discipline = $6, salary = $7,
			available = $8, suspension_period = $9, injury_period = $10, injury_proneness = $11,
			games = $12, goals = $13, season_goals = $14, red_cards = $15, injuries = $16
		WHERE id = $17`
	result, err := r.exec.ExecContext(ctx, query,
		player.TeamID, player.Name, player.Position, player.Power, player.Star, player.Discipline, player.Salary,
		player.Available, player.SuspensionPeriod, player.InjuryPeriod, player.InjuryProneness,
		player.Stats.Games, player.Stats.Goals, player.Stats.SeasonGoals, player.Stats.RedCards, player.Stats.Injuries,
		player.ID,
	)
	if err != nil {
		return constraintError(err, map[string]error{"players_team_id_fkey": ErrPlayerTeamInvalid})
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
