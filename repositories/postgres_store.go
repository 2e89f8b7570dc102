package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func newPostgresRepos(exec SQLExecutor) Repos {
	return Repos{
		Players:       NewPostgresPlayerRepository(exec),
		Teams:         NewPostgresTeamRepository(exec),
		Fixtures:      NewPostgresFixtureRepository(exec),
		Standings:     NewPostgresStandingRepository(exec),
		Leagues:       NewPostgresLeagueRepository(exec),
		Championships: NewPostgresChampionshipRepository(exec),
		Budgets:       NewPostgresBudgetRepository(exec),
		Clock:         NewPostgresSeasonClockRepository(exec),
		Managers:      NewPostgresManagerRepository(exec),
	}
}

func (s *postgresStore) Repos() Repos {
	return newPostgresRepos(s.db)
}

func (s *postgresStore) RunInTx(ctx context.Context, fn func(r Repos) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(newPostgresRepos(tx))
	return err
}
