package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/repositories"
)

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя.
func handleRepositoryError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return fmt.Errorf("%w: %s", ErrTeamNotFound, what)
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, what)
	case errors.Is(err, repositories.ErrFixtureNotFound):
		return fmt.Errorf("%w: %s", ErrFixtureNotFound, what)
	case errors.Is(err, repositories.ErrChampionshipNotFound):
		return fmt.Errorf("%w: %s", ErrChampionshipNotFound, what)
	case errors.Is(err, repositories.ErrManagerNotFound):
		return fmt.Errorf("%w: %s", ErrManagerNotFound, what)
	case errors.Is(err, repositories.ErrSeasonClockNotFound):
		return fmt.Errorf("%w: %s", ErrSeasonNotInitialised, what)
	case errors.Is(err, repositories.ErrManagerEmailConflict):
		return fmt.Errorf("%w: %s", ErrManagerEmailConflict, what)
	case errors.Is(err, repositories.ErrManagerTeamConflict):
		return fmt.Errorf("%w: %s", ErrManagerTeamConflict, what)
	case errors.Is(err, repositories.ErrLeagueNotFound),
		errors.Is(err, repositories.ErrStandingNotFound),
		errors.Is(err, repositories.ErrBudgetNotFound):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func countdown(days, elapsed int) int {
	return max(0, days-elapsed)
}

func playersByID(players []*models.Player) map[int]*models.Player {
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return byID
}

func eligiblePlayers(players []*models.Player) []*models.Player {
	out := make([]*models.Player, 0, len(players))
	for _, p := range players {
		if p.Eligible() {
			out = append(out, p)
		}
	}
	return out
}

func salaryBill(players []*models.Player) int {
	total := 0
	for _, p := range players {
		total += p.Salary
	}
	return total
}
