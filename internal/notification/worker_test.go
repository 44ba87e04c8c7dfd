package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"webprint-client/internal/store"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a store over a mock database connection.
func newTestStore(t *testing.T) (store.Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return store.NewGormStore(gormDB), mock
}

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}
}

func TestJobMessage(t *testing.T) {
	assert.Equal(t, "essay.pdf was sent to the printer", Job{FileName: "essay.pdf", Copies: 1}.Message())
	assert.Equal(t, "3 copies of essay.pdf were sent to the printer", Job{FileName: "essay.pdf", Copies: 3}.Message())
}

func TestWorkerPool_Dispatch(t *testing.T) {
	st, _ := newTestStore(t)
	wp := NewWorkerPool(1, st, &webpush.Options{})

	wp.Dispatch(Job{Email: "jdoe@students.calvin.edu", FileName: "a.pdf"})

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, "a.pdf", job.FileName)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchDropsWhenFull(t *testing.T) {
	st, _ := newTestStore(t)
	wp := NewWorkerPool(1, st, &webpush.Options{})

	for i := 0; i < cap(wp.Jobs())+3; i++ {
		wp.Dispatch(Job{FileName: "a.pdf"})
	}
	assert.Len(t, wp.Jobs(), cap(wp.Jobs()))
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	st, mock := newTestStore(t)
	wp := NewWorkerPool(1, st, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends notification to each device of the user", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(2)

		var mu sync.Mutex
		var endpoints []string
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "2 copies of essay.pdf were sent to the printer", string(payload))
				mu.Lock()
				endpoints = append(endpoints, sub.Endpoint)
				mu.Unlock()
				wg.Done()
				return response(http.StatusCreated), nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE email = \$1`).
			WithArgs("jdoe@students.calvin.edu").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "email", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/laptop", "jdoe@students.calvin.edu", "k1", "a1", time.Now()).
				AddRow("https://example.com/phone", "jdoe@students.calvin.edu", "k2", "a2", time.Now()))

		wp.Dispatch(Job{Email: "jdoe@students.calvin.edu", FileName: "essay.pdf", Copies: 2})
		wg.Wait()

		assert.ElementsMatch(t, []string{"https://example.com/laptop", "https://example.com/phone"}, endpoints)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return response(http.StatusGone), nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE email = \$1`).
			WithArgs("old@students.calvin.edu").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "email", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/expired", "old@students.calvin.edu", "k", "a", time.Now()))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE endpoint = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Dispatch(Job{Email: "old@students.calvin.edu", FileName: "a.pdf", Copies: 1})

		assert.Eventually(t, func() bool {
			return mock.ExpectationsWereMet() == nil
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("no subscriptions sends nothing", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("unexpected send")
				return response(http.StatusCreated), nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE email = \$1`).
			WithArgs("nobody@students.calvin.edu").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "email", "p256dh", "auth", "created_at"}))

		wp.Dispatch(Job{Email: "nobody@students.calvin.edu", FileName: "a.pdf"})

		assert.Eventually(t, func() bool {
			return mock.ExpectationsWereMet() == nil
		}, time.Second, 10*time.Millisecond)
	})
}
