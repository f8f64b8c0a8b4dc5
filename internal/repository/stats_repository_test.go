package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satlab/sat-prep-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestStatsUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	entry := models.UserStatsCacheEntry{
		UserID:         "u1",
		TotalQuestions: 50,
		Accuracy:       75,
		LastUpdated:    time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_stats (user_id, total_questions, accuracy, last_updated)")).
		WithArgs(entry.UserID, entry.TotalQuestions, entry.Accuracy, entry.LastUpdated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), entry)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsUpsertError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	mock.ExpectExec("INSERT INTO user_stats").WillReturnError(errors.New("deadlock"))

	err := repo.Upsert(context.Background(), models.UserStatsCacheEntry{UserID: "u1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"user_id", "total_questions", "accuracy", "last_updated"}).
		AddRow("u1", 50, 75, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, total_questions, accuracy, last_updated FROM user_stats WHERE user_id = $1 LIMIT 1")).
		WithArgs("u1").
		WillReturnRows(rows)

	entry, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, entry.TotalQuestions)
	assert.Equal(t, 75, entry.Accuracy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsLoadAllOrdersByUserID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"user_id", "total_questions", "accuracy", "last_updated"}).
		AddRow("a", 10, 20, now).
		AddRow("b", 30, 40, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, total_questions, accuracy, last_updated FROM user_stats ORDER BY user_id")).
		WillReturnRows(rows)

	entries, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].UserID)
	assert.Equal(t, "b", entries[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
