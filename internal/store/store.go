package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"webprint-client/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	SaveReceipt(ctx context.Context, r *model.PrintReceipt) error
	ListReceipts(ctx context.Context, email string, limit int) ([]model.PrintReceipt, error)
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, email, endpoint string) error
	SubscriptionsFor(ctx context.Context, email string) ([]model.PushSubscription, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// SaveReceipt records an accepted print job.
func (s *gormStore) SaveReceipt(ctx context.Context, r *model.PrintReceipt) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to save receipt %s: %w", r.ID, err)
	}
	return nil
}

// ListReceipts returns the most recent receipts of email, newest first.
// A non-positive limit returns every receipt.
func (s *gormStore) ListReceipts(ctx context.Context, email string, limit int) ([]model.PrintReceipt, error) {
	q := s.db.WithContext(ctx).
		Where("email = ?", email).
		Order("submitted_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var receipts []model.PrintReceipt
	if err := q.Find(&receipts).Error; err != nil {
		return nil, fmt.Errorf("failed to list receipts for %s: %w", email, err)
	}
	return receipts, nil
}

// UpsertSubscription creates a subscription or moves an existing endpoint to
// new keys and owner.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// DeleteSubscription removes the endpoint when it belongs to email. An empty
// email removes it whoever owns it.
func (s *gormStore) DeleteSubscription(ctx context.Context, email, endpoint string) error {
	q := s.db.WithContext(ctx).Where("endpoint = ?", endpoint)
	if email != "" {
		q = q.Where("email = ?", email)
	}
	if err := q.Delete(&model.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// SubscriptionsFor lists the push subscriptions registered by email.
func (s *gormStore) SubscriptionsFor(ctx context.Context, email string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("email = ?", email).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for %s: %w", email, err)
	}
	return subs, nil
}
