package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/groupbuilder/internal/api/middleware"
	"github.com/dom/groupbuilder/internal/domain"
	"github.com/dom/groupbuilder/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EntryHandler struct {
	availabilityService *service.AvailabilityService
	log                 *zap.Logger
}

func NewEntryHandler(availabilityService *service.AvailabilityService, log *zap.Logger) *EntryHandler {
	return &EntryHandler{availabilityService: availabilityService, log: log}
}

// SubmitEntryRequest posts one window for several weekdays at once.
type SubmitEntryRequest struct {
	CharacterID string   `json:"characterId"`
	Weekdays    []string `json:"weekdays"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Spec        string   `json:"spec"`
	Keystone    string   `json:"keystone"`
}

func (h *EntryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SubmitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	characterID, err := uuid.Parse(req.CharacterID)
	if err != nil {
		http.Error(w, "Invalid character ID", http.StatusBadRequest)
		return
	}

	entries, err := h.availabilityService.Submit(r.Context(), userID, service.SubmitInput{
		CharacterID: characterID,
		Weekdays:    req.Weekdays,
		Start:       req.StartTime,
		End:         req.EndTime,
		Spec:        req.Spec,
		Keystone:    req.Keystone,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidWindow):
			http.Error(w, "Invalid time window", http.StatusBadRequest)
		case errors.Is(err, domain.ErrInvalidWeekday):
			http.Error(w, "Invalid weekday", http.StatusBadRequest)
		case errors.Is(err, domain.ErrNoWeekdays):
			http.Error(w, "At least one weekday is required", http.StatusBadRequest)
		case errors.Is(err, domain.ErrInvalidLabel):
			http.Error(w, "Spec and keystone must be 1-32 characters", http.StatusBadRequest)
		case errors.Is(err, service.ErrCharacterNotFound):
			http.Error(w, "Character not found", http.StatusNotFound)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponses(entries))
}

// Delete removes one of the caller's entries. Unknown and foreign ids get the
// same 204 as a real deletion.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid entry ID", http.StatusBadRequest)
		return
	}

	if err := h.availabilityService.DeleteEntry(r.Context(), userID, entryID); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Dashboard returns the caller's entries, characters and matches.
func (h *EntryHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	dash, err := h.availabilityService.GetDashboard(r.Context(), userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		OwnEntries: toEntryResponses(dash.OwnEntries),
		Matches:    dash.Matches,
		Characters: toCharacterResponses(dash.Characters),
	})
}
