package api

import (
	"encoding/json"
	"net/http"

	"github.com/skilltrade/server/internal/service"
)

type TradesHandler struct {
	svc *service.Service
}

func NewTradesHandler(svc *service.Service) *TradesHandler {
	return &TradesHandler{svc: svc}
}

func (h *TradesHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matchID, ok := pathID(r, "match_id")
	if !ok {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	view, err := h.svc.GetTradeStatus(r.Context(), userID, matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, view, http.StatusOK)
}

type updateTradeRequest struct {
	UserPosition string `json:"user_position"`
	Type         string `json:"type"`
	Completed    bool   `json:"completed"`
}

func (h *TradesHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matchID, ok := pathID(r, "match_id")
	if !ok {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	var req updateTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	view, err := h.svc.UpdateTradeProgress(r.Context(), userID, matchID, req.UserPosition, req.Type, req.Completed)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, view, http.StatusOK)
}

func (h *TradesHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matchID, ok := pathID(r, "match_id")
	if !ok {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	view, err := h.svc.CompleteTrade(r.Context(), userID, matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, view, http.StatusOK)
}

type submitRatingRequest struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

func (h *TradesHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matchID, ok := pathID(r, "match_id")
	if !ok {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	var req submitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	view, err := h.svc.SubmitRating(r.Context(), userID, matchID, req.Score, req.Feedback)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, view, http.StatusCreated)
}
