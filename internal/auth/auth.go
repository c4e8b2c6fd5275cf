package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

// MaxRefreshTokens is how many refresh tokens a user keeps; the oldest is
// evicted first.
const MaxRefreshTokens = 5

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type principalKey struct{}

// ContextWithPrincipal stores p and tags the request logger with the user id.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey{}, p)
	ctx = internal.ContextWithUserID(ctx, p.ID)
	return logger.With(ctx, "userID", p.ID)
}

func UserFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type AuthResponse struct {
	User AccountView `json:"user"`
	AuthTokens
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
