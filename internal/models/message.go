package models

import "time"

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is immutable after creation; it is removed only when its chat is
// deleted.
type Message struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	ChatID    string    `bson:"chat_id" json:"chatId"`
	Sender    string    `bson:"sender" json:"sender"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
