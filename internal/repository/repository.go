package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/labgiga/lending-service/internal/model"
	"go.uber.org/zap"

	sq "github.com/Masterminds/squirrel"
)

type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, name, nrp string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, id string) (model.User, error)
	UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (model.User, error)
}

type ItemRepository interface {
	ListItems(ctx context.Context, search, category string, page, size int) (model.ListItems, error)
	ListCategories(ctx context.Context) ([]string, error)
	GetItem(ctx context.Context, id string) (model.Item, error)
	GetItemsByIDs(ctx context.Context, ids []string) ([]model.Item, error)
	CreateItem(ctx context.Context, req model.CreateItemRequest) (model.Item, error)
	UpdateItem(ctx context.Context, id string, req model.UpdateItemRequest) (model.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// TransitionUpdate is the admin-supplied part of a status transition.
type TransitionUpdate struct {
	Target          model.Status
	AdminNotes      *string
	RejectionReason *string
}

type BorrowingRepository interface {
	CreateBorrowing(ctx context.Context, userID string, req model.CreateBorrowingRequest) (model.Borrowing, error)
	GetBorrowing(ctx context.Context, id string) (model.Borrowing, error)
	ListBorrowings(ctx context.Context, userID string, status model.Status) ([]model.Borrowing, error)
	ApplyTransition(ctx context.Context, b model.Borrowing, upd TransitionUpdate) (model.Borrowing, error)
	SweepOverdue(ctx context.Context) ([]model.Borrowing, error)
	Stats(ctx context.Context) (model.Stats, error)

	CreateExtension(ctx context.Context, borrowingID string, req model.ExtendRequest) (model.Extension, error)
	GetExtension(ctx context.Context, id string) (model.Extension, error)
	ListExtensions(ctx context.Context, status model.Status) ([]model.Extension, error)
	ResolveExtension(ctx context.Context, ext model.Extension, target model.Status, adminNotes *string) (model.Extension, error)
}

type CommentRepository interface {
	ListComments(ctx context.Context, itemID string) ([]model.Comment, error)
	GetComment(ctx context.Context, id string) (model.Comment, error)
	CreateComment(ctx context.Context, itemID, userID, content string) (model.Comment, error)
	UpdateComment(ctx context.Context, id, content string) (model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, event model.BorrowingEvent) error
	ListNotifications(ctx context.Context, userID string) ([]model.Notification, error)
}

type Repository interface {
	UserRepository
	ItemRepository
	BorrowingRepository
	CommentRepository
	NotificationRepository
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

var _ Repository = (*repository)(nil)

const (
	usersTableName          = `users`
	itemsTableName          = `items`
	borrowingsTableName     = `borrowings`
	borrowingItemsTableName = `borrowing_items`
	extensionsTableName     = `extensions`
	commentsTableName       = `comments`
	notificationsTableName  = `notifications`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func joinColumns(cols []string) string {
	out := cols[0]
	for _, c := range cols[1:] {
		out += ", " + c
	}
	return out
}
