package repository

import (
	"context"

	"github.com/labgiga/lending-service/internal/model"

	sq "github.com/Masterminds/squirrel"
)

func (r *repository) CreateNotification(ctx context.Context, event model.BorrowingEvent) error {
	q, args, err := qb.Insert(notificationsTableName).
		Columns("user_id", "borrowing_id", "status", "message", "created_at").
		Values(event.UserID, event.BorrowingID, event.Status, event.Message, event.Timestamp).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *repository) ListNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	q, args, err := qb.Select("id", "user_id", "borrowing_id", "status", "message", "created_at").
		From(notificationsTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	var notifications []model.Notification
	if err := r.db.SelectContext(ctx, &notifications, q, args...); err != nil {
		return nil, err
	}
	return notifications, nil
}
