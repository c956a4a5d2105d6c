package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/wpmigrate/internal/model"
	"github.com/xxxsen/wpmigrate/internal/pkg/dbutil"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

var userFields = []string{"id", "email", "name", "bio", "role", "image", "created_at", "updated_at"}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"id":              user.ID,
		"email":           user.Email,
		"name":            user.Name,
		"bio":             dbutil.NullString(user.Bio),
		"role":            string(user.Role),
		"image":           dbutil.NullString(user.Image),
		"hashed_password": dbutil.NullString(user.HashedPassword),
		"created_at":      user.CreatedAt,
		"updated_at":      user.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

// GetEarliest returns the first user ever created.
func (r *UserRepo) GetEarliest(ctx context.Context) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"_orderby": "created_at asc", "_limit": []uint{0, 1}})
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", where, userFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var user *model.User
	err = withReadRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return appErr.ErrNotFound
		}
		user, err = scanUser(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func scanUser(rows *sql.Rows) (*model.User, error) {
	var (
		user  model.User
		role  string
		bio   sql.NullString
		image sql.NullString
	)
	if err := rows.Scan(&user.ID, &user.Email, &user.Name, &bio, &role, &image, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.Role = model.UserRole(role)
	user.Bio = bio.String
	user.Image = image.String
	return &user, nil
}
