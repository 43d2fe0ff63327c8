package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/model"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"
)

var userColumns = []string{"id", "email", "password_hash", "name", "nrp", "role", "student_card_url", "created_at"}

func (r *repository) CreateUser(ctx context.Context, email, passwordHash, name, nrp string) (model.User, error) {
	ib := qb.Insert(usersTableName).
		Columns("email", "password_hash", "name", "nrp").
		Values(email, passwordHash, name, sql.NullString{String: nrp, Valid: nrp != ""}).
		Suffix("returning " + joinColumns(userColumns))
	q, args, err := ib.ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.User{}, errs.ErrEmailTaken
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	q, args, err := qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) GetUserByID(ctx context.Context, id string) (model.User, error) {
	q, args, err := qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (model.User, error) {
	ub := qb.Update(usersTableName).Where(sq.Eq{"id": id})
	if req.Name != nil {
		ub = ub.Set("name", *req.Name)
	}
	if req.Nrp != nil {
		ub = ub.Set("nrp", *req.Nrp)
	}
	if req.StudentCardURL != nil {
		ub = ub.Set("student_card_url", *req.StudentCardURL)
	}
	q, args, err := ub.Suffix("returning " + joinColumns(userColumns)).ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}
