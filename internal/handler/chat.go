package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumichat/auth-service/internal/middleware"
)

// ChatMessage is one turn of conversation history forwarded upstream.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionClient is the opaque LLM collaborator.  The auth service only
// proxies to it; prompt handling and streaming live on the other side.
type CompletionClient interface {
	Complete(ctx context.Context, userID uint64, messages []ChatMessage) (string, error)
}

// ChatHandler forwards a conversation to the completion collaborator.  The
// route is the reason the two-tier per-user rate limiter exists.
type ChatHandler struct {
	Client CompletionClient
}

func NewChatHandler(client CompletionClient) *ChatHandler {
	return &ChatHandler{Client: client}
}

type chatReq struct {
	Messages []ChatMessage `json:"messages"`
}

// Complete proxies the conversation upstream with a bounded timeout.
// Upstream failures come back as a safe 502; the raw error is logged only.
func (h *ChatHandler) Complete(c echo.Context) error {
	var req chatReq
	if err := c.Bind(&req); err != nil || len(req.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "messages required"})
	}
	ident := middleware.CurrentIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()
	text, err := h.Client.Complete(ctx, ident.ID, req.Messages)
	if err != nil {
		c.Logger().Errorf("chat: upstream completion failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "completion unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"content": text})
}
