package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Subscriptions belong to the signed-in user that registered them.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	Email     string    `gorm:"index;size:256;not null"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
