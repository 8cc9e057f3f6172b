package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/briankw/theo/internal/chatbot"
	"github.com/briankw/theo/pkg/api"
)

// ChatHandler handles the conversational endpoint.
type ChatHandler struct {
	Bot *chatbot.Chatbot
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message must not be empty")
		return
	}

	resp := h.Bot.Chat(r.Context(), req.Message)
	writeJSON(w, resp)
}
