package item

import (
	"context"

	"github.com/labgiga/lending-service/internal/model"
	"github.com/labgiga/lending-service/internal/repository"
	"go.uber.org/zap"
)

type Service struct {
	log  *zap.Logger
	repo repository.ItemRepository
}

func NewService(repo repository.ItemRepository, log *zap.Logger) *Service {
	return &Service{
		log:  log,
		repo: repo,
	}
}

func (s *Service) List(ctx context.Context, search, category string, page, size int) (model.ListItems, error) {
	return s.repo.ListItems(ctx, search, category, page, size)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (model.Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) Create(ctx context.Context, req model.CreateItemRequest) (model.Item, error) {
	return s.repo.CreateItem(ctx, req)
}

func (s *Service) Update(ctx context.Context, id string, req model.UpdateItemRequest) (model.Item, error) {
	return s.repo.UpdateItem(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteItem(ctx, id)
}
