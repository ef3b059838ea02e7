package api

import (
	"net/http"

	"github.com/skilltrade/server/internal/service"
)

type MatchesHandler struct {
	svc *service.Service
}

func NewMatchesHandler(svc *service.Service) *MatchesHandler {
	return &MatchesHandler{svc: svc}
}

func (h *MatchesHandler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	views, err := h.svc.DiscoverMatches(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if views == nil {
		views = []service.MatchView{}
	}

	writeJSON(w, map[string]any{"matches": views}, http.StatusOK)
}

func (h *MatchesHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matches, err := h.svc.ListActiveMatches(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if matches == nil {
		matches = []service.MatchSummary{}
	}

	writeJSON(w, map[string]any{"matches": matches}, http.StatusOK)
}

func (h *MatchesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.DeleteMatch(r.Context(), userID, matchID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StartTrade is the overloaded transition endpoint: the same call proposes,
// cancels or accepts depending on who calls and the match's current state.
func (h *MatchesHandler) StartTrade(w http.ResponseWriter, r *http.Request) {
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

	view, err := h.svc.RequestOrRespondTrade(r.Context(), userID, matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, view, http.StatusOK)
}
