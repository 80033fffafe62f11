package models

import "time"

// Message is one direct message. Messages are never edited, only marked read.
type Message struct {
	ID          int64      `json:"id" db:"id"`
	SenderID    int64      `json:"senderId" db:"sender_id"`
	RecipientID int64      `json:"recipientId" db:"recipient_id"`
	Body        string     `json:"body" db:"body"`
	IsRead      bool       `json:"isRead" db:"is_read"`
	ReadAt      *time.Time `json:"readAt,omitempty" db:"read_at"`
	SentAt      time.Time  `json:"sentAt" db:"sent_at"`
}

// PeerUnread is a conversation partner with the number of unread messages they sent.
type PeerUnread struct {
	User          *User      `json:"user"`
	UnreadCount   int        `json:"unreadCount"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}
