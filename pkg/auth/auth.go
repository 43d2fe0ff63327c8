package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

type Config struct {
	SigningKey string        `envconfig:"JWT_SIGNING_KEY" default:"labgiga-dev-key"`
	AccessTTL  time.Duration `envconfig:"JWT_ACCESS_TTL" default:"24h"`
	RefreshTTL time.Duration `envconfig:"JWT_REFRESH_TTL" default:"720h"`
}

type Claims struct {
	Profile struct {
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Role   string `json:"role"`
	} `json:"profile"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller carried through request context.
type Identity struct {
	UserID string
	Role   string
}

func (id Identity) IsAdmin() bool {
	return id.Role == "ADMIN"
}

type contextKey int

const identityKey contextKey = iota + 1

func SetAuthContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Identity{}, errors.New("no identity in context")
	}
	return id, nil
}

// NewAccessToken signs an HS256 access token for the given profile.
func NewAccessToken(key []byte, ttl time.Duration, userID, name, email, role string) (string, error) {
	claims := &Claims{Email: email}
	claims.Profile.UserID = userID
	claims.Profile.Name = name
	claims.Profile.Role = role
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ParseAccessToken validates the token signature and expiry.
func ParseAccessToken(key []byte, tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}
