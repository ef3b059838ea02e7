package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/skilltrade/server/internal/service"
	"github.com/skilltrade/server/pkg/models"
)

type ReportsHandler struct {
	svc *service.Service
}

func NewReportsHandler(svc *service.Service) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

type reportRequest struct {
	MatchID int64  `json:"match_id"`
	Message string `json:"message"`
}

func (h *ReportsHandler) ReportIssue(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.MatchID <= 0 {
		http.Error(w, "match_id is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	view, err := h.svc.ReportIssue(r.Context(), userID, req.MatchID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, view, http.StatusCreated)
}

func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	flags, err := h.svc.ReportsForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if flags == nil {
		flags = []models.FraudFlag{}
	}

	writeJSON(w, map[string]any{"reports": flags}, http.StatusOK)
}
