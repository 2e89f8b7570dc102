package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed    = errors.New("validation failed")
	ErrInvalidSquad        = errors.New("invalid squad submission")
	ErrNoSubstitutionsLeft = errors.New("no substitutions left")
	ErrPasswordTooShort    = errors.New("password is too short")

	// Состояние сезона и тура
	ErrRoundInProgress      = errors.New("a round is already in progress")
	ErrNoRoundInProgress    = errors.New("no round in progress")
	ErrDecisionNotPending   = errors.New("no decision is pending for this team")
	ErrSeasonNotFinished    = errors.New("season has rounds left to play")
	ErrSeasonNotInitialised = errors.New("season has not been initialised")
	ErrAlreadyBootstrapped  = errors.New("league is already bootstrapped")
	ErrNoFixturesScheduled  = errors.New("no fixtures scheduled for the current round")
	ErrNotEnoughTeams       = errors.New("not enough teams to fill every division")

	// Ошибки конфликтов
	ErrManagerEmailConflict = errors.New("email address is already in use")
	ErrManagerTeamConflict  = errors.New("team already has a manager")

	// Ошибки авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current manager")

	// Ошибки, специфичные для сущностей
	ErrTeamNotFound         = errors.New("team not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrFixtureNotFound      = errors.New("fixture not found")
	ErrChampionshipNotFound = errors.New("championship not found")
	ErrManagerNotFound      = errors.New("manager not found")
)
