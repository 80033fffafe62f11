package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	"github.com/selvaalegre/portal/internal/app/services"
	"github.com/selvaalegre/portal/internal/middleware"
	"github.com/selvaalegre/portal/internal/pkg/helpers"
)

// MessageController handles direct messages
type MessageController struct {
	messageService services.MessageService
	logger         zerolog.Logger
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService, logger zerolog.Logger) *MessageController {
	return &MessageController{messageService: messageService, logger: logger}
}

// Inbox lists the caller's conversations
// @Summary Inbox
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.InboxResponse}
// @Router /messages [get]
func (c *MessageController) Inbox(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	inbox, err := c.messageService.Inbox(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(inbox))
}

// Send sends a message
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Recipient and body"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Empty body or invalid recipient"
// @Failure 404 {object} dto.ErrorResponse "Recipient not found"
// @Router /messages [post]
func (c *MessageController) Send(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	msg, err := c.messageService.Send(ctx.Request.Context(), user, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(msg))
}

// OpenConversation returns the conversation with a user and marks their messages read
// @Summary Open conversation
// @Description Not a pure read: unread messages from the other user are marked read and listed in newlyRead.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.APIResponse{data=dto.ConversationResponse}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /messages/{userId} [get]
func (c *MessageController) OpenConversation(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	otherID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	conv, err := c.messageService.OpenConversation(ctx.Request.Context(), user, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if len(conv.NewlyRead) > 0 {
		c.logger.Debug().Int64("userID", user.ID).Int64("peerID", otherID).Int("read", len(conv.NewlyRead)).Msg("Conversation marked read")
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conv))
}

// Poll returns and marks read the unread messages from a user
// @Summary Poll new messages
// @Description Each message is delivered to exactly one poll.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} dto.APIResponse{data=dto.PollResponse}
// @Failure 429 {object} dto.ErrorResponse "Polling too fast"
// @Router /messages/{userId}/poll [get]
func (c *MessageController) Poll(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}
	otherID, err := helpers.ParseIDParam(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	poll, err := c.messageService.PollUnread(ctx.Request.Context(), user, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if len(poll.Messages) > 0 {
		c.logger.Debug().Int64("userID", user.ID).Int64("peerID", otherID).Int("delivered", len(poll.Messages)).Msg("Poll delivered messages")
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(poll))
}

// UnreadCounts lists unread counts per resident for the administrator
// @Summary Unread counts per resident
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.PeerUnreadResponse}
// @Failure 403 {object} dto.ErrorResponse "Administrator only"
// @Router /messages/unread-counts [get]
func (c *MessageController) UnreadCounts(ctx *gin.Context) {
	user, ok := caller(ctx)
	if !ok {
		return
	}

	counts, err := c.messageService.UnreadCountPerPeer(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(counts))
}
