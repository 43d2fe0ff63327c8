package tokenstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidToken indicates the refresh token is unknown, spent or expired.
var ErrInvalidToken = errors.New("invalid refresh token")

type Config struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Store keeps opaque refresh tokens in redis, keyed by token hash so a
// dump of the store never leaks usable tokens.
type Store struct {
	rdb *redis.Client
}

func New(cfg Config) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// Issue mints a refresh token for the user with the given TTL.
func (s *Store) Issue(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, key(token), userID, ttl).Err(); err != nil {
		return "", errors.Wrap(err, "store refresh token")
	}
	return token, nil
}

// Rotate atomically spends the old token and issues a replacement.
func (s *Store) Rotate(ctx context.Context, token string, ttl time.Duration) (string, string, error) {
	userID, err := s.rdb.GetDel(ctx, key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", ErrInvalidToken
		}
		return "", "", errors.Wrap(err, "spend refresh token")
	}
	next, err := s.Issue(ctx, userID, ttl)
	if err != nil {
		return "", "", err
	}
	return userID, next, nil
}

// Delete removes the token; deleting an unknown token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, key(token)).Err()
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate refresh token")
	}
	return hex.EncodeToString(b), nil
}

func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "refresh:" + hex.EncodeToString(sum[:])
}
