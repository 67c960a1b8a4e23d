package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dom/groupbuilder/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type CharacterResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EntryResponse struct {
	ID            string `json:"id"`
	CharacterID   string `json:"characterId"`
	CharacterName string `json:"characterName,omitempty"`
	Weekday       string `json:"weekday"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Spec          string `json:"spec"`
	Keystone      string `json:"keystone"`
	CreatedDate   string `json:"createdDate"`
	ExpireDate    string `json:"expireDate"`
}

type DashboardResponse struct {
	OwnEntries []EntryResponse      `json:"ownEntries"`
	Matches    []domain.MatchRecord `json:"matches"`
	Characters []CharacterResponse  `json:"characters"`
}

func toCharacterResponse(c *domain.Character) CharacterResponse {
	return CharacterResponse{ID: c.ID.String(), Name: c.Name}
}

func toCharacterResponses(characters []*domain.Character) []CharacterResponse {
	resp := make([]CharacterResponse, 0, len(characters))
	for _, c := range characters {
		resp = append(resp, toCharacterResponse(c))
	}
	return resp
}

func toEntryResponse(e *domain.Entry) EntryResponse {
	resp := EntryResponse{
		ID:          e.ID.String(),
		CharacterID: e.CharacterID.String(),
		Weekday:     string(e.Weekday),
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Spec:        e.Spec,
		Keystone:    e.Keystone,
		CreatedDate: formatDate(e.Created()),
		ExpireDate:  formatDate(e.ExpireDate()),
	}
	if e.Character != nil {
		resp.CharacterName = e.Character.Name
	}
	return resp
}

func toEntryResponses(entries []*domain.Entry) []EntryResponse {
	resp := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}
	return resp
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}
