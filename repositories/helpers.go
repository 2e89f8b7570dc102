package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// constraintError maps a postgres constraint violation to a repository
// error. It returns err unchanged when no mapping applies.
func constraintError(err error, byConstraint map[string]error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505", "23503": // unique_violation, foreign_key_violation
		if mapped, ok := byConstraint[pqErr.Constraint]; ok {
			return mapped
		}
	}
	return err
}

func int64Array(ids []int) pq.Int64Array {
	out := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func intsFromArray(arr pq.Int64Array) []int {
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
