package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/skilltrade/server/internal/service"
	"github.com/skilltrade/server/pkg/models"
)

type SkillsHandler struct {
	svc *service.Service
}

func NewSkillsHandler(svc *service.Service) *SkillsHandler {
	return &SkillsHandler{svc: svc}
}

func (h *SkillsHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 100
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset := 0
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	skills, err := h.svc.ListSkills(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if skills == nil {
		skills = []models.Skill{}
	}

	writeJSON(w, map[string]any{"items": skills, "limit": limit, "offset": offset}, http.StatusOK)
}

func (h *SkillsHandler) SearchSkills(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	skills, err := h.svc.SearchSkills(r.Context(), query, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if skills == nil {
		skills = []models.Skill{}
	}

	writeJSON(w, map[string]any{"items": skills}, http.StatusOK)
}

type addSkillRequest struct {
	SkillName string `json:"skill_name"`
	SkillType string `json:"skill_type"`
}

func (h *SkillsHandler) AddUserSkill(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req addSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	skill, err := h.svc.AddSkill(r.Context(), userID, req.SkillName, req.SkillType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, skill, http.StatusCreated)
}

func (h *SkillsHandler) RemoveUserSkill(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	skillID, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid skill id", http.StatusBadRequest)
		return
	}

	if err := h.svc.RemoveSkill(r.Context(), userID, skillID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SkillsHandler) ListUserSkills(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	teaching, learning, err := h.svc.UserSkills(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if teaching == nil {
		teaching = []models.Skill{}
	}
	if learning == nil {
		learning = []models.Skill{}
	}

	writeJSON(w, map[string]any{"teaching": teaching, "learning": learning}, http.StatusOK)
}
