package model

import "time"

// SeatLock is an advisory lock document serializing concurrent seat
// allocation for a single activity. The unique _id gives mutual
// exclusion; ExpiresAt bounds the damage of a crashed holder.
type SeatLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
