package repositories

import (
	"context"
	"database/sql"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Repos groups every repository bound to the same connection or
// transaction.
type Repos struct {
	Players       PlayerRepository
	Teams         TeamRepository
	Fixtures      FixtureRepository
	Standings     StandingRepository
	Leagues       LeagueRepository
	Championships ChampionshipRepository
	Budgets       BudgetRepository
	Clock         SeasonClockRepository
	Managers      ManagerRepository
}

// Store hands out repositories and runs groups of writes atomically.
type Store interface {
	Repos() Repos
	// RunInTx runs fn against transactional repositories. Every write made
	// through them is discarded when fn returns an error.
	RunInTx(ctx context.Context, fn func(r Repos) error) error
}
