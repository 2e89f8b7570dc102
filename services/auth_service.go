package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/repositories"
	"golang.org/x/crypto/bcrypt"
)

var ErrAuthInvalidCredentials = errors.New("invalid email or password")

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Manager, error)
	Login(ctx context.Context, input LoginInput) (*models.Manager, error)
	GetManager(ctx context.Context, id int) (*models.Manager, error)
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	TeamID   int    `json:"team_id"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	store repositories.Store
}

func NewAuthService(store repositories.Store) AuthService {
	return &authService{store: store}
}

// Register creates a manager and hands the team over to human control.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Manager, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidationFailed)
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	manager := &models.Manager{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		TeamID:       input.TeamID,
	}
	err = s.store.RunInTx(ctx, func(r repositories.Repos) error {
		team, err := r.Teams.GetByID(ctx, input.TeamID)
		if err != nil {
			return handleRepositoryError(err, "team %d", input.TeamID)
		}
		if err := r.Managers.Create(ctx, manager); err != nil {
			return handleRepositoryError(err, "manager %s", input.Email)
		}
		team.HumanControlled = true
		if err := r.Teams.Update(ctx, team); err != nil {
			return handleRepositoryError(err, "team %d", team.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	manager.PasswordHash = ""
	return manager, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Manager, error) {
	manager, err := s.store.Repos().Managers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrManagerNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find manager by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(manager.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	manager.PasswordHash = ""
	return manager, nil
}

func (s *authService) GetManager(ctx context.Context, id int) (*models.Manager, error) {
	manager, err := s.store.Repos().Managers.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "manager %d", id)
	}
	manager.PasswordHash = ""
	return manager, nil
}
