package database

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/matthieukhl/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_NotFoundAndValue(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := Wrap(sqlDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = ?`)).
		WithArgs("token").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err = db.Get(context.Background(), "token")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = ?`)).
		WithArgs("token").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("abc"))

	value, err := db.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_QueryError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := Wrap(sqlDB)

	boom := errors.New("disk I/O error")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = ?`)).
		WithArgs("user").
		WillReturnError(boom)

	_, err = db.Get(context.Background(), "user")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSet_Upserts(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := Wrap(sqlDB)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`)).
		WithArgs("token", "t-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, db.Set(context.Background(), "token", "t-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_RollsBackOnError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := Wrap(sqlDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv WHERE key = ?`)).
		WithArgs("token").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv WHERE key = ?`)).
		WithArgs("user").
		WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	err = db.Delete(context.Background(), "token", "user")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	db, err := NewConnection(&config.SessionConfig{Path: path})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.PingContext(ctx))

	require.NoError(t, db.SetMany(ctx, map[string]string{"token": "t-1", "user": `{"role":"admin"}`}))
	require.NoError(t, db.Set(ctx, "token", "t-2"))

	token, err := db.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "t-2", token)

	require.NoError(t, db.Delete(ctx, "token", "user", "never-set"))
	_, err = db.Get(ctx, "user")
	assert.ErrorIs(t, err, ErrNotFound)

	// Reopening the same file sees the persisted state
	require.NoError(t, db.Set(ctx, "token", "t-3"))
	require.NoError(t, db.Close())

	reopened, err := NewConnection(&config.SessionConfig{Path: path})
	require.NoError(t, err)
	defer reopened.Close()
	token, err = reopened.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "t-3", token)
}
