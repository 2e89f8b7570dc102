package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/league-simulator/models"
)

var ErrSeasonClockNotFound = errors.New("season clock not initialised")

// SeasonClockRepository persists the single current season/round pair.
type SeasonClockRepository interface {
	Get(ctx context.Context) (*models.SeasonClock, error)
	Save(ctx context.Context, clock *models.SeasonClock) error
}

type postgresSeasonClockRepository struct {
	exec SQLExecutor
}

func NewPostgresSeasonClockRepository(exec SQLExecutor) SeasonClockRepository {
	return &postgresSeasonClockRepository{exec: exec}
}

func (r *postgresSeasonClockRepository) Get(ctx context.Context) (*models.SeasonClock, error) {
	var c models.SeasonClock
	err := r.exec.QueryRowContext(ctx, `SELECT season, round FROM season_clock WHERE id = 1`).Scan(&c.Season, &c.Round)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonClockNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresSeasonClockRepository) Save(ctx context.Context, clock *models.SeasonClock) error {
	query := `
		INSERT INTO season_clock (id, season, round) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET season = EXCLUDED.season, round = EXCLUDED.round`
	_, err := r.exec.ExecContext(ctx, query, clock.Season, clock.Round)
	return err
}
