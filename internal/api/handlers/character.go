package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/groupbuilder/internal/api/middleware"
	"github.com/dom/groupbuilder/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CharacterHandler struct {
	characterService *service.CharacterService
	log              *zap.Logger
}

func NewCharacterHandler(characterService *service.CharacterService, log *zap.Logger) *CharacterHandler {
	return &CharacterHandler{characterService: characterService, log: log}
}

type CreateCharacterRequest struct {
	Name string `json:"name"`
}

func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	characters, err := h.characterService.ListCharacters(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to list characters", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toCharacterResponses(characters))
}

func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	character, err := h.characterService.AddCharacter(r.Context(), userID, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCharacterName) {
			http.Error(w, "Character name must be 1-64 characters", http.StatusBadRequest)
			return
		}
		h.log.Error("failed to add character", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toCharacterResponse(character))
}

// Delete removes the character and its entries. Unknown and foreign ids get
// the same 204 as a real deletion.
func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	characterID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid character ID", http.StatusBadRequest)
		return
	}

	if err := h.characterService.DeleteCharacter(r.Context(), userID, characterID); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
