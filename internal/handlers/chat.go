package handlers

import (
	"errors"

	"healthcare-ai-server/internal/assistant"
	"healthcare-ai-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the conversational assistant.
type ChatHandler struct {
	Assistant *assistant.Assistant
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(a *assistant.Assistant) *ChatHandler {
	return &ChatHandler{Assistant: a}
}

// ChatRequest represents the request body for a conversational turn.
type ChatRequest struct {
	Messages []assistant.Message `json:"messages" binding:"required,min=1,dive"`
}

// Chat runs one conversational turn. The caller's capability decides which
// tools the model may invoke; provider failures are surfaced with their code.
func (h *ChatHandler) Chat(c *gin.Context) {
	cap, ok := capabilityFrom(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "No messages provided")
		return
	}

	reply, err := h.Assistant.Chat(c.Request.Context(), cap, req.Messages)
	if err != nil {
		var providerErr *assistant.ProviderError
		if errors.As(err, &providerErr) {
			utils.BadGateway(c, providerErr.Code, providerErr.Message)
			return
		}
		utils.InternalServerError(c, "Chat failed: "+err.Error())
		return
	}

	utils.Success(c, "Chat completed", gin.H{"reply": reply})
}
