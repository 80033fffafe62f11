package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/auth"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/repositories"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
)

// MessageService handles direct messages between two users.
type MessageService interface {
	Send(ctx context.Context, sender *models.User, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	// OpenConversation is NOT a pure read: it marks every unread message from other
	// to caller as read and reports their ids in NewlyRead. Repeating it yields the
	// same history with an empty NewlyRead.
	OpenConversation(ctx context.Context, caller *models.User, otherID int64) (*dto.ConversationResponse, error)
	// PollUnread returns the messages from other to caller that were still unread and
	// marks them read. A message is delivered by exactly one poll.
	PollUnread(ctx context.Context, caller *models.User, otherID int64) (*dto.PollResponse, error)
	UnreadCountPerPeer(ctx context.Context, caller *models.User) ([]*dto.PeerUnreadResponse, error)
	Inbox(ctx context.Context, caller *models.User) (*dto.InboxResponse, error)
	UnreadTotal(ctx context.Context, caller *models.User) (int, error)
}

type messageService struct {
	messageRepo repositories.IMessageRepository
	userRepo    repositories.IUserRepository
	urls        dto.URLFunc
	logger      zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(messageRepo repositories.IMessageRepository, userRepo repositories.IUserRepository, urls dto.URLFunc, logger zerolog.Logger) MessageService {
	return &messageService{messageRepo: messageRepo, userRepo: userRepo, urls: urls, logger: logger}
}

// peer resolves the other party of a conversation.
func (s *messageService) peer(ctx context.Context, caller *models.User, otherID int64, field string) (*models.User, error) {
	if otherID <= 0 {
		return nil, apperrors.NewValidationError(field, field+" is required")
	}
	if otherID == caller.ID {
		return nil, apperrors.NewValidationError(field, "you cannot message yourself")
	}
	return s.userRepo.GetByID(ctx, otherID)
}

func (s *messageService) Send(ctx context.Context, sender *models.User, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, apperrors.NewValidationError("body", "message cannot be empty")
	}
	recipient, err := s.peer(ctx, sender, req.RecipientID, "recipientId")
	if err != nil {
		return nil, err
	}

	msg := &models.Message{SenderID: sender.ID, RecipientID: recipient.ID, Body: body}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.logger.Debug().Int64("messageID", msg.ID).Int64("senderID", sender.ID).Int64("recipientID", recipient.ID).Msg("Message sent")
	return dto.NewMessageResponse(msg), nil
}

func (s *messageService) OpenConversation(ctx context.Context, caller *models.User, otherID int64) (*dto.ConversationResponse, error) {
	other, err := s.peer(ctx, caller, otherID, "userId")
	if err != nil {
		return nil, err
	}

	// Mark first so the history below already reflects the new read state.
	newlyRead, err := s.messageRepo.MarkConversationRead(ctx, caller.ID, other.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.messageRepo.Conversation(ctx, caller.ID, other.ID)
	if err != nil {
		return nil, err
	}

	return &dto.ConversationResponse{
		Peer:      dto.NewUserBasicResponse(other, s.urls),
		Messages:  dto.NewMessageResponses(history),
		NewlyRead: newlyRead,
	}, nil
}

func (s *messageService) PollUnread(ctx context.Context, caller *models.User, otherID int64) (*dto.PollResponse, error) {
	other, err := s.peer(ctx, caller, otherID, "userId")
	if err != nil {
		return nil, err
	}
	msgs, err := s.messageRepo.ClaimUnread(ctx, caller.ID, other.ID)
	if err != nil {
		return nil, err
	}
	return &dto.PollResponse{Status: "ok", Messages: dto.NewMessageResponses(msgs)}, nil
}

// UnreadCountPerPeer lists every active resident with the unread messages they sent the administrator.
func (s *messageService) UnreadCountPerPeer(ctx context.Context, caller *models.User) ([]*dto.PeerUnreadResponse, error) {
	if err := auth.RequireAdministrator(caller); err != nil {
		return nil, err
	}
	rows, err := s.messageRepo.UnreadCountsFromResidents(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewPeerUnreadResponses(rows, s.urls), nil
}

func (s *messageService) Inbox(ctx context.Context, caller *models.User) (*dto.InboxResponse, error) {
	rows, err := s.messageRepo.Peers(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, r := range rows {
		total += r.UnreadCount
	}
	return &dto.InboxResponse{Conversations: dto.NewPeerUnreadResponses(rows, s.urls), UnreadTotal: total}, nil
}

func (s *messageService) UnreadTotal(ctx context.Context, caller *models.User) (int, error) {
	return s.messageRepo.UnreadTotal(ctx, caller.ID)
}
