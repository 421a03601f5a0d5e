package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"chatapp/domain"
	"chatapp/errors"
	"chatapp/services"
)

// Handlers is the thin HTTP shaping layer over the services. Domain errors
// cross the boundary through the explicit status table in the errors
// package; internal failures leave with a generic body only.
type Handlers struct {
	chats    services.IChatService
	messages services.IMessageService
	accounts services.IAuthService
	log      *slog.Logger
}

func NewHandlers(log *slog.Logger, chats services.IChatService,
	messages services.IMessageService, accounts services.IAuthService) *Handlers {
	return &Handlers{chats: chats, messages: messages, accounts: accounts, log: log}
}

func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	token, err := h.accounts.Register(req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, TokenResponse{Token: string(token)})
}

func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	token, err := h.accounts.Login(req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: string(token)})
}

func (h *Handlers) CreateDirectChat(c *gin.Context) {
	var req CreateDirectChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	chat, err := h.chats.CreateDirectChat(req.User1, req.User2)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toChatResponse(chat))
}

func (h *Handlers) CreateGroupChat(c *gin.Context) {
	var req CreateGroupChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	creatorID := c.Query("creatorId")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creatorId is required"})
		return
	}
	chat, err := h.chats.CreateGroupChat(req.Name, creatorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toChatResponse(chat))
}

func (h *Handlers) AddMember(c *gin.Context) {
	if err := h.chats.AddMember(c.Param("chatId"), c.Param("userId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) RemoveMember(c *gin.Context) {
	if err := h.chats.RemoveMember(c.Param("chatId"), c.Param("userId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) GetChat(c *gin.Context) {
	chat, err := h.chats.GetChat(c.Param("chatId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toChatResponse(chat))
}

func (h *Handlers) ListUserChats(c *gin.Context) {
	chats, err := h.chats.ListChatsForUser(c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(chats, func(chat domain.Chat, _ int) ChatResponse {
		return toChatResponse(chat)
	}))
}

func (h *Handlers) GetHistory(c *gin.Context) {
	messages, err := h.messages.History(c.Param("chatId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMessageResponses(messages))
}

// respondError consults the domain-error status table once and hides the
// detail of anything it does not recognize.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := errors.MapToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("unexpected error", "path", c.FullPath(), "error", err)
		message = "Unexpected error occurred"
	}
	c.JSON(status, gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    status,
		"message":   message,
	})
}
