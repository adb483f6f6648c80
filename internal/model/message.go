package model

import "time"

// Message is an immutable chat entry
type Message struct {
	ID         int64     `json:"id"` // creation time in ms, bumped to stay monotonic
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	AuthorID   ConnID    `json:"authorId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewMessage builds a message stamped with the given time
func NewMessage(text, authorName string, authorID ConnID, now time.Time) Message {
	return Message{
		ID:         now.UnixMilli(),
		Text:       text,
		AuthorName: authorName,
		AuthorID:   authorID,
		CreatedAt:  now,
	}
}
