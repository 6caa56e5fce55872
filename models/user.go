package models

import "time"

// User holds the platform role of an auth-provider user id
// Collection: users
type User struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	Role      string    `bson:"role" json:"role"`
}

// RateEvent is one counted event of a quota key. ID names the key, its
// window and the slot the event took in that window.
// Collection: rate_events
type RateEvent struct {
	ID  string    `bson:"_id" json:"id"`
	Key string    `bson:"key" json:"key"`
	At  time.Time `bson:"at" json:"at"`
}
