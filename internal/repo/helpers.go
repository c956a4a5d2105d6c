package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/wpmigrate/internal/pkg/dbutil"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertOne(ctx context.Context, db execer, table string, data map[string]interface{}) error {
	return insertRows(ctx, db, table, []map[string]interface{}{data})
}

func insertRows(ctx context.Context, db execer, table string, rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	sqlStr, args, err := builder.BuildInsert(table, rows)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

// updateOne fails with ErrNotFound when no row matched.
func updateOne(ctx context.Context, db execer, table string, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate(table, where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func countRows(ctx context.Context, db *sql.DB, table string, where map[string]interface{}) (int64, error) {
	if where == nil {
		where = map[string]interface{}{}
	}
	sqlStr, args, err := builder.BuildSelect(table, where, []string{"count(*)"})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var count int64
	err = withReadRetry(ctx, func() error {
		return db.QueryRowContext(ctx, sqlStr, args...).Scan(&count)
	})
	return count, err
}
