package models

import "time"

const (
	SubscriberActive       = "active"
	SubscriberUnsubscribed = "unsubscribed"
)

// Subscriber is an address signed up for the course newsletter.
type Subscriber struct {
	BaseModel
	Email                string     `gorm:"uniqueIndex" json:"email"`
	Status               string     `gorm:"index" json:"status"`
	UnsubscribeTokenHash string     `json:"-"`
	SubscribedAt         time.Time  `json:"subscribed_at"`
	UnsubscribedAt       *time.Time `json:"unsubscribed_at"`
}
