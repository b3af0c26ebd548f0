package model

import "time"

// PushSubscription holds a browser push subscription owned by a user. Claim
// alerts for a machine go to the subscriptions of every user who can see it.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	UserID    int64     `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	User *User `gorm:"constraint:OnDelete:CASCADE"`
}
