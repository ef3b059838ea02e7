package api

import (
	"encoding/json"
	"net/http"

	"github.com/skilltrade/server/internal/service"
	"github.com/skilltrade/server/pkg/models"
)

type ChatHandler struct {
	svc *service.Service
}

func NewChatHandler(svc *service.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type postMessageRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matchID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	msg, err := h.svc.PostMessage(r.Context(), userID, matchID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, msg, http.StatusCreated)
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matchID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	msgs, err := h.svc.Messages(r.Context(), userID, matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if msgs == nil {
		msgs = []models.ChatMessage{}
	}

	writeJSON(w, map[string]any{"messages": msgs}, http.StatusOK)
}
