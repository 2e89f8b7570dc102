package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

// Имена JWT claims токена менеджера.
const (
	ClaimManagerID = "manager_id"
	ClaimTeamID    = "team_id"
)

func GetManagerIDFromContext(ctx context.Context) (int, error) {
	return intClaim(ctx, ClaimManagerID)
}

func GetTeamIDFromContext(ctx context.Context) (int, error) {
	return intClaim(ctx, ClaimTeamID)
}

// WithClaims returns ctx carrying claims the way Authenticate stores them.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, managerContextKey, claims)
}

func intClaim(ctx context.Context, name string) (int, error) {
	claims, ok := ctx.Value(managerContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("manager claims not found in context or invalid type")
	}

	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", name)
	}

	var id int
	switch v := raw.(type) {
	case float64:
		// JSON numbers decode as float64
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", name, v)
		}
		id = int(v)
	case int:
		id = v
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid '%s' claim %q: %w", name, v, err)
		}
		id = parsed
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number or string, got %T", name, raw)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid value in '%s' claim: %d", name, id)
	}
	return id, nil
}
