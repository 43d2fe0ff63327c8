package handler

import (
	"context"

	"github.com/labgiga/lending-service/internal/model"
	authsvc "github.com/labgiga/lending-service/internal/service/auth"
	borrowingsvc "github.com/labgiga/lending-service/internal/service/borrowing"
	commentsvc "github.com/labgiga/lending-service/internal/service/comment"
	itemsvc "github.com/labgiga/lending-service/internal/service/item"
	"github.com/labgiga/lending-service/pkg/auth"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (model.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, userID string) (model.User, error)
	UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (model.User, error)
}

type ItemService interface {
	List(ctx context.Context, search, category string, page, size int) (model.ListItems, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (model.Item, error)
	Create(ctx context.Context, req model.CreateItemRequest) (model.Item, error)
	Update(ctx context.Context, id string, req model.UpdateItemRequest) (model.Item, error)
	Delete(ctx context.Context, id string) error
}

type BorrowingService interface {
	Create(ctx context.Context, actor auth.Identity, req model.CreateBorrowingRequest) (model.Borrowing, error)
	My(ctx context.Context, actor auth.Identity) ([]model.Borrowing, error)
	List(ctx context.Context, status model.Status) ([]model.Borrowing, error)
	Get(ctx context.Context, actor auth.Identity, id string) (model.Borrowing, error)
	Transition(ctx context.Context, actor auth.Identity, id string, req model.UpdateStatusRequest) (model.Borrowing, error)
	Stats(ctx context.Context) (model.Stats, error)
	Notifications(ctx context.Context, actor auth.Identity) ([]model.Notification, error)
	RequestExtension(ctx context.Context, actor auth.Identity, borrowingID string, req model.ExtendRequest) (model.Extension, error)
	ListExtensions(ctx context.Context, status model.Status) ([]model.Extension, error)
	ResolveExtension(ctx context.Context, actor auth.Identity, id string, req model.ResolveExtensionRequest) (model.Extension, error)
}

type CommentService interface {
	ListByItem(ctx context.Context, itemID string) ([]model.Comment, error)
	Create(ctx context.Context, actor auth.Identity, itemID, content string) (model.Comment, error)
	Update(ctx context.Context, actor auth.Identity, id, content string) (model.Comment, error)
	Delete(ctx context.Context, actor auth.Identity, id string) error
}

var (
	_ AuthService      = (*authsvc.Service)(nil)
	_ ItemService      = (*itemsvc.Service)(nil)
	_ BorrowingService = (*borrowingsvc.Service)(nil)
	_ CommentService   = (*commentsvc.Service)(nil)
)
