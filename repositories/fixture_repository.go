package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-simulator/models"
	"github.com/lib/pq"
)

var (
	ErrFixtureNotFound            = errors.New("fixture not found")
	ErrFixtureChampionshipInvalid = errors.New("fixture championship conflict or invalid")
	ErrFixtureTeamInvalid         = errors.New("fixture team conflict or invalid")
)

type FixtureRepository interface {
	CreateBatch(ctx context.Context, fixtures []*models.Fixture) error
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	ListByChampionship(ctx context.Context, championshipID int) ([]*models.Fixture, error)
	ListByRound(ctx context.Context, championshipID, round int) ([]*models.Fixture, error)
	Update(ctx context.Context, fixture *models.Fixture) error
}

type postgresFixtureRepository struct {
	exec SQLExecutor
}

func NewPostgresFixtureRepository(exec SQLExecutor) FixtureRepository {
	return &postgresFixtureRepository{exec: exec}
}

const fixtureColumns = `id, championship_id, home_id, away_id, round, occurred, home_goals, away_goals, attendance,
	home_first_team, home_substitutes, away_first_team, away_substitutes`

var fixtureConstraints = map[string]error{
	"fixtures_championship_id_fkey": ErrFixtureChampionshipInvalid,
	"fixtures_home_id_fkey":         ErrFixtureTeamInvalid,
	"fixtures_away_id_fkey":         ErrFixtureTeamInvalid,
}

func scanFixture(row rowScanner) (*models.Fixture, error) {
	var f models.Fixture
	var homeFirst, homeSubs, awayFirst, awaySubs pq.Int64Array
	err := row.Scan(
		&f.ID, &f.ChampionshipID, &f.HomeID, &f.AwayID, &f.Round, &f.Occurred,
		&f.HomeGoals, &f.AwayGoals, &f.Attendance,
		&homeFirst, &homeSubs, &awayFirst, &awaySubs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	f.HomeSquad = models.FixtureSquad{FirstTeam: intsFromArray(homeFirst), Substitutes: intsFromArray(homeSubs)}
	f.AwaySquad = models.FixtureSquad{FirstTeam: intsFromArray(awayFirst), Substitutes: intsFromArray(awaySubs)}
	return &f, nil
}

// CreateBatch inserts fixtures one by one; run it inside Store.RunInTx to
// get all-or-nothing behaviour.
func (r *postgresFixtureRepository) CreateBatch(ctx context.Context, fixtures []*models.Fixture) error {
	query := `
		INSERT INTO fixtures (championship_id, home_id, away_id, round, occurred, home_goals, away_goals, attendance,
			home_first_team, home_substitutes, away_first_team, away_substitutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	for _, f := range fixtures {
		err := r.exec.QueryRowContext(ctx, query,
			f.ChampionshipID, f.HomeID, f.AwayID, f.Round, f.Occurred, f.HomeGoals, f.AwayGoals, f.Attendance,
			int64Array(f.HomeSquad.FirstTeam), int64Array(f.HomeSquad.Substitutes),
			int64Array(f.AwaySquad.FirstTeam), int64Array(f.AwaySquad.Substitutes),
		).Scan(&f.ID)
		if err != nil {
			return fmt.Errorf("CreateBatch failed for round %d (%d vs %d): %w", f.Round, f.HomeID, f.AwayID, constraintError(err, fixtureConstraints))
		}
	}
	return nil
}

func (r *postgresFixtureRepository) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE id = $1`
	return scanFixture(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresFixtureRepository) ListByChampionship(ctx context.Context, championshipID int) ([]*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE championship_id = $1 ORDER BY round, id`
	return r.list(ctx, query, championshipID)
}

func (r *postgresFixtureRepository) ListByRound(ctx context.Context, championshipID, round int) ([]*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE championship_id = $1 AND round = $2 ORDER BY id`
	return r.list(ctx, query, championshipID, round)
}

func (r *postgresFixtureRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Fixture, error) {
	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	fixtures := make([]*models.Fixture, 0)
	for rows.Next() {
		f, errScan := scanFixture(rows)
		if errScan != nil {
			return nil, errScan
		}
		fixtures = append(fixtures, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return fixtures, nil
}

func (r *postgresFixtureRepository) Update(ctx context.Context, f *models.Fixture) error {
	query := `
		UPDATE fixtures SET
			occurred = $1, home_goals = $2, away_goals = $3, attendance = $4,
			home_first_team = $5, home_substitutes = $6, away_first_team = $7, away_substitutes = $8
		WHERE id = $9`
	result, err := r.exec.ExecContext(ctx, query,
		f.Occurred, f.HomeGoals, f.AwayGoals, f.Attendance,
		int64Array(f.HomeSquad.FirstTeam), int64Array(f.HomeSquad.Substitutes),
		int64Array(f.AwaySquad.FirstTeam), int64Array(f.AwaySquad.Substitutes),
		f.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}
