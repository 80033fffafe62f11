package dto

import (
	"time"

	"github.com/selvaalegre/portal/internal/app/models"
)

// SendMessageRequest is the JSON body of POST /messages.
type SendMessageRequest struct {
	RecipientID int64  `json:"recipientId"`
	Body        string `json:"body"`
}

// MessageResponse is one message.
type MessageResponse struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"senderId"`
	RecipientID int64      `json:"recipientId"`
	Body        string     `json:"body"`
	IsRead      bool       `json:"isRead"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	SentAt      time.Time  `json:"sentAt"`
}

// NewMessageResponse converts a message model.
func NewMessageResponse(m *models.Message) *MessageResponse {
	return &MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		IsRead:      m.IsRead,
		ReadAt:      m.ReadAt,
		SentAt:      m.SentAt,
	}
}

// NewMessageResponses converts a slice, keeping order.
func NewMessageResponses(msgs []*models.Message) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, NewMessageResponse(m))
	}
	return out
}

// ConversationResponse is the full two-party history plus the ids this
// request marked as read.
type ConversationResponse struct {
	Peer      *UserBasicResponse `json:"peer"`
	Messages  []*MessageResponse `json:"messages"`
	NewlyRead []int64            `json:"newlyRead"`
}

// PollResponse carries messages claimed by one poll.
type PollResponse struct {
	Status   string             `json:"status" example:"ok"`
	Messages []*MessageResponse `json:"messages"`
}

// PeerUnreadResponse is a conversation partner with their unread count.
type PeerUnreadResponse struct {
	User          *UserBasicResponse `json:"user"`
	UnreadCount   int                `json:"unreadCount"`
	LastMessageAt *time.Time         `json:"lastMessageAt,omitempty"`
}

// NewPeerUnreadResponses converts repository rows.
func NewPeerUnreadResponses(rows []*models.PeerUnread, urls URLFunc) []*PeerUnreadResponse {
	out := make([]*PeerUnreadResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, &PeerUnreadResponse{
			User:          NewUserBasicResponse(r.User, urls),
			UnreadCount:   r.UnreadCount,
			LastMessageAt: r.LastMessageAt,
		})
	}
	return out
}

// InboxResponse lists the caller's conversation partners.
type InboxResponse struct {
	Conversations []*PeerUnreadResponse `json:"conversations"`
	UnreadTotal   int                   `json:"unreadTotal"`
}
