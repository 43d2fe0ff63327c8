package repository

import (
	"context"
	"database/sql"

	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/model"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

var commentColumns = []string{"c.id", "c.item_id", "c.user_id", "c.content", "c.created_at", "c.updated_at", "u.name as author_name"}

func (r *repository) ListComments(ctx context.Context, itemID string) ([]model.Comment, error) {
	q, args, err := qb.Select(commentColumns...).
		From(commentsTableName + " c").
		Join(usersTableName + " u on u.id = c.user_id").
		Where(sq.Eq{"c.item_id": itemID}).
		OrderBy("c.created_at desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, q, args...); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *repository) GetComment(ctx context.Context, id string) (model.Comment, error) {
	q, args, err := qb.Select(commentColumns...).
		From(commentsTableName + " c").
		Join(usersTableName + " u on u.id = c.user_id").
		Where(sq.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return model.Comment{}, err
	}
	var comment model.Comment
	if err := r.db.GetContext(ctx, &comment, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Comment{}, errs.ErrNotFound
		}
		return model.Comment{}, err
	}
	return comment, nil
}

func (r *repository) CreateComment(ctx context.Context, itemID, userID, content string) (model.Comment, error) {
	q, args, err := qb.Insert(commentsTableName).
		Columns("item_id", "user_id", "content").
		Values(itemID, userID, content).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return model.Comment{}, err
	}
	var id string
	if err := r.db.GetContext(ctx, &id, q, args...); err != nil {
		return model.Comment{}, err
	}
	return r.GetComment(ctx, id)
}

func (r *repository) UpdateComment(ctx context.Context, id, content string) (model.Comment, error) {
	q, args, err := qb.Update(commentsTableName).
		Set("content", content).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return model.Comment{}, err
	}
	var updatedID string
	if err := r.db.GetContext(ctx, &updatedID, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Comment{}, errs.ErrNotFound
		}
		return model.Comment{}, err
	}
	return r.GetComment(ctx, updatedID)
}

func (r *repository) DeleteComment(ctx context.Context, id string) error {
	q, args, err := qb.Delete(commentsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
