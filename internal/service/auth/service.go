package auth

import (
	"context"

	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/model"
	"github.com/labgiga/lending-service/internal/repository"
	"github.com/labgiga/lending-service/pkg/auth"
	"github.com/labgiga/lending-service/pkg/tokenstore"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	log    *zap.Logger
	repo   repository.UserRepository
	tokens *tokenstore.Store
	cfg    auth.Config
}

func NewService(repo repository.UserRepository, tokens *tokenstore.Store, cfg auth.Config, log *zap.Logger) *Service {
	return &Service{
		log:    log,
		repo:   repo,
		tokens: tokens,
		cfg:    cfg,
	}
}

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.AuthResponse{}, errors.Wrap(err, "hash password")
	}
	user, err := s.repo.CreateUser(ctx, req.Email, string(hash), req.Name, req.Nrp)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return s.issueTokens(ctx, user)
}

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthResponse{}, errs.ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}
	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token and issues a fresh pair. A spent or
// unknown token means the session is gone, fail closed. The rotated
// token from the store is the one handed back, so exactly one live
// refresh token remains per rotation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (model.AuthResponse, error) {
	userID, next, err := s.tokens.Rotate(ctx, refreshToken, s.cfg.RefreshTTL)
	if err != nil {
		if errors.Is(err, tokenstore.ErrInvalidToken) {
			return model.AuthResponse{}, errs.ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthResponse{}, errs.ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}
	accessToken, err := s.signAccess(user)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: next,
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Delete(ctx, refreshToken)
}

// Profile re-reads the user row so a vanished account invalidates an
// otherwise valid token.
func (s *Service) Profile(ctx context.Context, userID string) (model.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (model.User, error) {
	if req.Name == nil && req.Nrp == nil && req.StudentCardURL == nil {
		return s.repo.GetUserByID(ctx, userID)
	}
	return s.repo.UpdateProfile(ctx, userID, req)
}

func (s *Service) signAccess(user model.User) (string, error) {
	accessToken, err := auth.NewAccessToken([]byte(s.cfg.SigningKey), s.cfg.AccessTTL, user.ID, user.Name, user.Email, string(user.Role))
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}
	return accessToken, nil
}

func (s *Service) issueTokens(ctx context.Context, user model.User) (model.AuthResponse, error) {
	accessToken, err := s.signAccess(user)
	if err != nil {
		return model.AuthResponse{}, err
	}
	refreshToken, err := s.tokens.Issue(ctx, user.ID, s.cfg.RefreshTTL)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
