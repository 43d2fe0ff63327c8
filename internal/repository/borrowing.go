package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	sq "github.com/Masterminds/squirrel"
)

var borrowingColumns = []string{
	"id", "user_id", "status", "borrow_date", "return_date", "actual_return_date",
	"reason", "admin_notes", "rejection_reason", "created_at", "updated_at",
}

func (r *repository) CreateBorrowing(ctx context.Context, userID string, req model.CreateBorrowingRequest) (model.Borrowing, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Borrowing{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	q, args, err := qb.Insert(borrowingsTableName).
		Columns("id", "user_id", "status", "borrow_date", "return_date", "reason").
		Values(uuid.NewString(), userID, model.StatusPending, req.BorrowDate.Format(time.DateOnly), req.ReturnDate.Format(time.DateOnly), req.Reason).
		Suffix("returning " + joinColumns(borrowingColumns)).
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	var b model.Borrowing
	if err := tx.GetContext(ctx, &b, q, args...); err != nil {
		r.log.Error("CreateBorrowing", zap.String("q", q), zap.Any("args", args))
		return model.Borrowing{}, err
	}

	ib := qb.Insert(borrowingItemsTableName).Columns("borrowing_id", "item_id", "quantity")
	for _, line := range req.Items {
		ib = ib.Values(b.ID, line.ItemID, line.Quantity)
	}
	if q, args, err = ib.ToSql(); err != nil {
		return model.Borrowing{}, err
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return model.Borrowing{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Borrowing{}, err
	}
	return r.GetBorrowing(ctx, b.ID)
}

func (r *repository) GetBorrowing(ctx context.Context, id string) (model.Borrowing, error) {
	q, args, err := qb.Select(borrowingColumns...).
		From(borrowingsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	var b model.Borrowing
	if err := r.db.GetContext(ctx, &b, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.ErrNotFound
		}
		return model.Borrowing{}, err
	}
	if err := r.attachDetails(ctx, []*model.Borrowing{&b}); err != nil {
		return model.Borrowing{}, err
	}
	return b, nil
}

func (r *repository) ListBorrowings(ctx context.Context, userID string, status model.Status) ([]model.Borrowing, error) {
	b := qb.Select(borrowingColumns...).
		From(borrowingsTableName).
		OrderBy("created_at desc")
	if userID != "" {
		b = b.Where(sq.Eq{"user_id": userID})
	}
	if status != "" {
		b = b.Where(sq.Eq{"status": status})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var borrowings []model.Borrowing
	if err := r.db.SelectContext(ctx, &borrowings, q, args...); err != nil {
		return nil, err
	}
	refs := make([]*model.Borrowing, len(borrowings))
	for i := range borrowings {
		refs[i] = &borrowings[i]
	}
	if err := r.attachDetails(ctx, refs); err != nil {
		return nil, err
	}
	return borrowings, nil
}

// attachDetails loads item lines and owners for the given borrowings.
func (r *repository) attachDetails(ctx context.Context, borrowings []*model.Borrowing) error {
	if len(borrowings) == 0 {
		return nil
	}
	borrowingIDs := make([]string, 0, len(borrowings))
	userIDs := make([]string, 0, len(borrowings))
	for _, b := range borrowings {
		borrowingIDs = append(borrowingIDs, b.ID)
		userIDs = append(userIDs, b.UserID)
	}

	q, args, err := qb.Select("id", "borrowing_id", "item_id", "quantity").
		From(borrowingItemsTableName).
		Where(sq.Eq{"borrowing_id": borrowingIDs}).
		ToSql()
	if err != nil {
		return err
	}
	var lines []model.BorrowingLine
	if err := r.db.SelectContext(ctx, &lines, q, args...); err != nil {
		return err
	}

	itemIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		itemIDs = append(itemIDs, line.ItemID)
	}
	itemsByID := make(map[string]model.Item)
	if len(itemIDs) > 0 {
		items, err := r.GetItemsByIDs(ctx, itemIDs)
		if err != nil {
			return err
		}
		for _, item := range items {
			itemsByID[item.ID] = item
		}
	}

	q, args, err = qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"id": userIDs}).
		ToSql()
	if err != nil {
		return err
	}
	var users []model.User
	if err := r.db.SelectContext(ctx, &users, q, args...); err != nil {
		return err
	}
	usersByID := make(map[string]model.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	linesByBorrowing := make(map[string][]model.BorrowingLine)
	for _, line := range lines {
		if item, ok := itemsByID[line.ItemID]; ok {
			it := item
			line.Item = &it
		}
		linesByBorrowing[line.BorrowingID] = append(linesByBorrowing[line.BorrowingID], line)
	}
	for _, b := range borrowings {
		b.Items = linesByBorrowing[b.ID]
		if u, ok := usersByID[b.UserID]; ok {
			owner := u
			b.User = &owner
		}
	}
	return nil
}

// ApplyTransition commits the status write and its stock side effects as
// one transaction. The WHERE clause re-checks the status read by the
// caller, so a concurrent transition makes this a zero-row update.
func (r *repository) ApplyTransition(ctx context.Context, b model.Borrowing, upd TransitionUpdate) (model.Borrowing, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Borrowing{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	ub := qb.Update(borrowingsTableName).
		Set("status", upd.Target).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": b.ID, "status": b.Status})
	if upd.Target == model.StatusRejected {
		if upd.RejectionReason != nil {
			ub = ub.Set("rejection_reason", *upd.RejectionReason)
		}
	} else if upd.AdminNotes != nil {
		ub = ub.Set("admin_notes", *upd.AdminNotes)
	}
	if upd.Target == model.StatusReturned {
		ub = ub.Set("actual_return_date", sq.Expr("now()"))
	}
	q, args, err := ub.ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return model.Borrowing{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Borrowing{}, err
	}
	if n == 0 {
		return model.Borrowing{}, errs.ErrConflict
	}

	switch {
	case upd.Target == model.StatusBorrowed:
		for _, line := range b.Items {
			res, err := tx.ExecContext(ctx,
				`update items set stock = stock - $1, updated_at = now() where id = $2 and stock >= $1`,
				line.Quantity, line.ItemID)
			if err != nil {
				return model.Borrowing{}, err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return model.Borrowing{}, err
			}
			if n == 0 {
				return model.Borrowing{}, errs.ErrInsufficientStock
			}
		}
	case b.Status.HoldsStock() && !upd.Target.HoldsStock():
		for _, line := range b.Items {
			if _, err := tx.ExecContext(ctx,
				`update items set stock = least(stock + $1, total_stock), updated_at = now() where id = $2`,
				line.Quantity, line.ItemID); err != nil {
				return model.Borrowing{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Borrowing{}, err
	}
	return r.GetBorrowing(ctx, b.ID)
}

// SweepOverdue flips lapsed BORROWED borrowings in a single conditional
// update, so concurrent admin transitions can never be overwritten.
func (r *repository) SweepOverdue(ctx context.Context) ([]model.Borrowing, error) {
	q := `
	update borrowings
	set status = 'OVERDUE', updated_at = now()
	where status = 'BORROWED' and return_date < now()
	returning id, user_id, status, return_date
`
	var flipped []model.Borrowing
	if err := r.db.SelectContext(ctx, &flipped, q); err != nil {
		return nil, err
	}
	return flipped, nil
}

func (r *repository) Stats(ctx context.Context) (model.Stats, error) {
	q := `
	select
		count(*) filter (where status = 'PENDING')  as pending,
		count(*) filter (where status = 'APPROVED') as approved,
		count(*) filter (where status = 'BORROWED') as borrowed,
		count(*) filter (where status = 'RETURNED') as returned,
		count(*) filter (where status = 'REJECTED') as rejected,
		count(*) filter (where status = 'OVERDUE')  as overdue,
		count(*) as total
	from borrowings
`
	var stats model.Stats
	if err := r.db.GetContext(ctx, &stats, q); err != nil {
		return model.Stats{}, err
	}
	return stats, nil
}
