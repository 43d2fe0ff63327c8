package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/model"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

var extensionColumns = []string{"id", "borrowing_id", "new_return_date", "reason", "status", "admin_notes", "created_at"}

// CreateExtension relies on the partial unique index over pending
// extensions: a second PENDING row for the same borrowing is rejected by
// the database no matter how the requests interleave.
func (r *repository) CreateExtension(ctx context.Context, borrowingID string, req model.ExtendRequest) (model.Extension, error) {
	q, args, err := qb.Insert(extensionsTableName).
		Columns("borrowing_id", "new_return_date", "reason", "status").
		Values(borrowingID, req.NewReturnDate.Format(time.DateOnly), req.Reason, model.StatusPending).
		Suffix("returning " + joinColumns(extensionColumns)).
		ToSql()
	if err != nil {
		return model.Extension{}, err
	}
	var ext model.Extension
	if err := r.db.GetContext(ctx, &ext, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Extension{}, errs.ErrDuplicatePending
		}
		return model.Extension{}, err
	}
	return ext, nil
}

func (r *repository) GetExtension(ctx context.Context, id string) (model.Extension, error) {
	q, args, err := qb.Select(extensionColumns...).
		From(extensionsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Extension{}, err
	}
	var ext model.Extension
	if err := r.db.GetContext(ctx, &ext, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Extension{}, errs.ErrNotFound
		}
		return model.Extension{}, err
	}
	return ext, nil
}

func (r *repository) ListExtensions(ctx context.Context, status model.Status) ([]model.Extension, error) {
	b := qb.Select(extensionColumns...).
		From(extensionsTableName).
		OrderBy("created_at desc")
	if status != "" {
		b = b.Where(sq.Eq{"status": status})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var exts []model.Extension
	if err := r.db.SelectContext(ctx, &exts, q, args...); err != nil {
		return nil, err
	}

	for i := range exts {
		borrowing, err := r.GetBorrowing(ctx, exts[i].BorrowingID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				continue
			}
			return nil, err
		}
		exts[i].Borrowing = &borrowing
	}
	return exts, nil
}

// ResolveExtension spends the PENDING extension and, on approval,
// rewrites the parent return date in the same transaction.
func (r *repository) ResolveExtension(ctx context.Context, ext model.Extension, target model.Status, adminNotes *string) (model.Extension, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Extension{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	ub := qb.Update(extensionsTableName).
		Set("status", target).
		Where(sq.Eq{"id": ext.ID, "status": model.StatusPending})
	if adminNotes != nil {
		ub = ub.Set("admin_notes", *adminNotes)
	}
	q, args, err := ub.ToSql()
	if err != nil {
		return model.Extension{}, err
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return model.Extension{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Extension{}, err
	}
	if n == 0 {
		return model.Extension{}, errs.ErrConflict
	}

	if target == model.StatusApproved {
		if _, err := tx.ExecContext(ctx,
			`update borrowings set return_date = $1, updated_at = now() where id = $2`,
			ext.NewReturnDate.Format(time.DateOnly), ext.BorrowingID); err != nil {
			return model.Extension{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Extension{}, err
	}
	return r.GetExtension(ctx, ext.ID)
}
