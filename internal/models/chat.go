package models

import "time"

type Chat struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	FirstName     string    `bson:"first_name" json:"firstName"`
	LastName      string    `bson:"last_name" json:"lastName"`
	LastMessageID *string   `bson:"last_message_id,omitempty" json:"lastMessageId,omitempty"`
	// LastMessage carries the resolved message on the wire only; the store
	// keeps the denormalized id pointer.
	LastMessage *Message  `bson:"-" json:"lastMessage"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}
