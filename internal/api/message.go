package api

import (
	"net/http"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/internal/service"
	"team-dashboard/backend/internal/view"
	apperrors "team-dashboard/backend/pkg/errors"
	"team-dashboard/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// MessageController handles the discussion board
type MessageController struct {
	messages *service.MessageService
	identity *service.IdentityService
}

// NewMessageController creates a new message controller
func NewMessageController(messages *service.MessageService, identity *service.IdentityService) *MessageController {
	return &MessageController{
		messages: messages,
		identity: identity,
	}
}

// RegisterRoutesV1 registers the message routes
func (c *MessageController) RegisterRoutesV1(group *gin.RouterGroup) {
	group.GET("/messages", c.ListMessages)
	group.POST("/messages", c.SendMessage)
}

// ListMessages returns the board in stored order
func (c *MessageController) ListMessages(ctx *gin.Context) {
	messages, err := c.messages.LoadAll(ctx.Request.Context(), middleware.Scope(ctx))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// SendMessage appends a message from the current identity and returns the
// board fragment of that one message
func (c *MessageController) SendMessage(ctx *gin.Context) {
	var request models.SendMessageRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, apperrors.NewBadRequestError("INVALID_REQUEST", "Invalid request format").Wrap(err))
		return
	}

	scope := middleware.Scope(ctx)
	user, err := c.identity.Get(ctx.Request.Context(), scope.ProfileID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	msg, err := c.messages.Append(ctx.Request.Context(), scope, user, request.Content)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	html, err := view.RenderMessage(*msg)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, models.SendMessageResponse{Message: *msg, HTML: html})
}
