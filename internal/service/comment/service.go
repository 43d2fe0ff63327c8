package comment

import (
	"context"

	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/model"
	"github.com/labgiga/lending-service/internal/repository"
	"github.com/labgiga/lending-service/pkg/auth"
	"go.uber.org/zap"
)

type Service struct {
	log  *zap.Logger
	repo repository.CommentRepository
}

func NewService(repo repository.CommentRepository, log *zap.Logger) *Service {
	return &Service{
		log:  log,
		repo: repo,
	}
}

func (s *Service) ListByItem(ctx context.Context, itemID string) ([]model.Comment, error) {
	return s.repo.ListComments(ctx, itemID)
}

func (s *Service) Create(ctx context.Context, actor auth.Identity, itemID, content string) (model.Comment, error) {
	return s.repo.CreateComment(ctx, itemID, actor.UserID, content)
}

// Update is allowed to the author and to admins.
func (s *Service) Update(ctx context.Context, actor auth.Identity, id, content string) (model.Comment, error) {
	comment, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return model.Comment{}, err
	}
	if comment.UserID != actor.UserID && !actor.IsAdmin() {
		return model.Comment{}, errs.ErrForbidden
	}
	return s.repo.UpdateComment(ctx, id, content)
}

func (s *Service) Delete(ctx context.Context, actor auth.Identity, id string) error {
	comment, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != actor.UserID && !actor.IsAdmin() {
		return errs.ErrForbidden
	}
	return s.repo.DeleteComment(ctx, id)
}
