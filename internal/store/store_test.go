package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"webprint-client/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_SaveReceipt(t *testing.T) {
	now := time.Now()
	receipt := &model.PrintReceipt{
		ID:          "3f0c7a52-9a51-4a8e-8f1e-0a7c1d2b9e11",
		Email:       "jdoe@students.calvin.edu",
		FileName:    "essay.pdf",
		DocumentID:  "doc-1",
		Collate:     true,
		Copies:      2,
		SubmittedAt: now,
	}

	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      bool
	}{
		{
			name: "Inserts the receipt",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "print_receipts"`)).
					WithArgs(receipt.ID, receipt.Email, "essay.pdf", "doc-1", false, false, false, true, 2, Any{}).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "Insert fails",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "print_receipts"`)).
					WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			err := store.SaveReceipt(context.Background(), receipt)
			if tc.expectedErr {
				assert.ErrorContains(t, err, receipt.ID)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_ListReceipts(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "print_receipts" WHERE email = $1 ORDER BY submitted_at DESC LIMIT $2`)).
		WithArgs("jdoe@students.calvin.edu", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "file_name", "copies", "submitted_at"}).
			AddRow("b", "jdoe@students.calvin.edu", "second.pdf", 1, now).
			AddRow("a", "jdoe@students.calvin.edu", "first.pdf", 3, now.Add(-time.Hour)))

	receipts, err := store.ListReceipts(context.Background(), "jdoe@students.calvin.edu", 20)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "second.pdf", receipts[0].FileName)
	assert.Equal(t, 3, receipts[1].Copies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpsertSubscription(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "push_subscriptions" .* ON CONFLICT \("endpoint"\) DO UPDATE SET "email"="excluded"."email","p256dh"="excluded"."p256dh","auth"="excluded"."auth"`).
		WithArgs("https://push.example.com/1", "jdoe@students.calvin.edu", "key", "secret", Any{}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.UpsertSubscription(context.Background(), &model.PushSubscription{
		Endpoint: "https://push.example.com/1",
		Email:    "jdoe@students.calvin.edu",
		P256DH:   "key",
		Auth:     "secret",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteSubscription(t *testing.T) {
	testCases := []struct {
		name     string
		email    string
		query    string
		args     []driver.Value
		endpoint string
	}{
		{
			name:     "Scoped to owner",
			email:    "jdoe@students.calvin.edu",
			endpoint: "https://push.example.com/1",
			query:    `DELETE FROM "push_subscriptions" WHERE endpoint = $1 AND email = $2`,
			args:     []driver.Value{"https://push.example.com/1", "jdoe@students.calvin.edu"},
		},
		{
			name:     "Any owner",
			endpoint: "https://push.example.com/2",
			query:    `DELETE FROM "push_subscriptions" WHERE endpoint = $1`,
			args:     []driver.Value{"https://push.example.com/2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewGormStore(gormDB)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(tc.query)).
				WithArgs(tc.args...).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			assert.NoError(t, store.DeleteSubscription(context.Background(), tc.email, tc.endpoint))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_SubscriptionsFor(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions" WHERE email = $1`)).
		WithArgs("jdoe@students.calvin.edu").
		WillReturnError(errors.New("connection reset"))

	_, err := store.SubscriptionsFor(context.Background(), "jdoe@students.calvin.edu")
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
