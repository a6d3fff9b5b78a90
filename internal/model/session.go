package model

import "time"

// Session is one persisted conversation thread. Documents holds the ids of
// uploaded documents associated with the session, in upload order.
type Session struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	Documents []string  `json:"documents"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionSummary is the listing view of a session: metadata plus a short
// preview of the most recent message, without document content.
type SessionSummary struct {
	ID            string    `json:"id"`
	MessageCount  int       `json:"message_count"`
	DocumentCount int       `json:"document_count"`
	Preview       string    `json:"preview"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
