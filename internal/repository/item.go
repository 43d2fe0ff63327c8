package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	sq "github.com/Masterminds/squirrel"
)

var itemColumns = []string{"id", "name", "description", "category", "image_url", "stock", "total_stock", "is_available", "created_at", "updated_at"}

func (r *repository) ListItems(ctx context.Context, search, category string, page, size int) (model.ListItems, error) {
	b := qb.Select(itemColumns...).
		From(itemsTableName).
		OrderBy("created_at desc")

	if search != "" {
		b = b.Where(sq.ILike{"name": fmt.Sprint("%", search, "%")})
	}
	if category != "" {
		b = b.Where(sq.Eq{"category": category})
	}
	if page != 0 && size != 0 {
		b = b.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return model.ListItems{}, err
	}
	r.log.Debug("ListItems", zap.String("query", query), zap.Any("args", args))

	var items []model.Item
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return model.ListItems{}, err
	}

	return model.ListItems{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: len(items),
		},
		Items: items,
	}, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]string, error) {
	q := `
	select distinct category from items
	where category is not null and category <> ''
	order by category
`
	var categories []string
	if err := r.db.SelectContext(ctx, &categories, q); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) GetItem(ctx context.Context, id string) (model.Item, error) {
	q, args, err := qb.Select(itemColumns...).
		From(itemsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Item{}, err
	}
	var item model.Item
	if err := r.db.GetContext(ctx, &item, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, errs.ErrNotFound
		}
		return model.Item{}, err
	}
	return item, nil
}

func (r *repository) GetItemsByIDs(ctx context.Context, ids []string) ([]model.Item, error) {
	q, args, err := qb.Select(itemColumns...).
		From(itemsTableName).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Item
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateItem(ctx context.Context, req model.CreateItemRequest) (model.Item, error) {
	q, args, err := qb.Insert(itemsTableName).
		Columns("name", "description", "category", "image_url", "stock", "total_stock").
		Values(req.Name, req.Description, req.Category, req.ImageURL, req.TotalStock, req.TotalStock).
		Suffix("returning " + joinColumns(itemColumns)).
		ToSql()
	if err != nil {
		return model.Item{}, err
	}
	var item model.Item
	if err := r.db.GetContext(ctx, &item, q, args...); err != nil {
		r.log.Error("CreateItem", zap.String("q", q), zap.Any("args", args))
		return model.Item{}, err
	}
	return item, nil
}

func (r *repository) UpdateItem(ctx context.Context, id string, req model.UpdateItemRequest) (model.Item, error) {
	ub := qb.Update(itemsTableName).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})
	if req.Name != nil {
		ub = ub.Set("name", *req.Name)
	}
	if req.Description != nil {
		ub = ub.Set("description", *req.Description)
	}
	if req.Category != nil {
		ub = ub.Set("category", *req.Category)
	}
	if req.ImageURL != nil {
		ub = ub.Set("image_url", *req.ImageURL)
	}
	if req.IsAvailable != nil {
		ub = ub.Set("is_available", *req.IsAvailable)
	}
	if req.TotalStock != nil {
		// capacity change moves free stock by the same delta, clamped
		// into [0, total_stock]
		ub = ub.
			Set("stock", sq.Expr("greatest(0, least(stock + ? - total_stock, ?))", *req.TotalStock, *req.TotalStock)).
			Set("total_stock", *req.TotalStock)
	}
	q, args, err := ub.Suffix("returning " + joinColumns(itemColumns)).ToSql()
	if err != nil {
		return model.Item{}, err
	}
	var item model.Item
	if err := r.db.GetContext(ctx, &item, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Item{}, errs.ErrNotFound
		}
		return model.Item{}, err
	}
	return item, nil
}

func (r *repository) DeleteItem(ctx context.Context, id string) error {
	q, args, err := qb.Delete(itemsTableName).
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
