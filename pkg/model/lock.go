package model

import "time"

// AggregateLock is an advisory lock serialising writers of one aggregate.
// Expired locks are reaped by a TTL index on expires_at.
type AggregateLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
