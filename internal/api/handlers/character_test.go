package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dom/groupbuilder/internal/api/handlers"
	"github.com/dom/groupbuilder/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterHandler_CreateAndList(t *testing.T) {
	ts := testutil.NewTestServer(t, nil)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{name: "valid", body: map[string]string{"name": "Uther"}, expectedStatus: http.StatusCreated},
		{name: "empty", body: map[string]string{"name": ""}, expectedStatus: http.StatusBadRequest},
		{name: "too long", body: map[string]string{"name": strings.Repeat("x", 65)}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, "POST", ts.APIURL("/characters"), tt.body, token)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	resp := do(t, "GET", ts.APIURL("/characters"), nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []handlers.CharacterResponse
	testutil.AssertJSONResponse(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Uther", list[0].Name)
}

func TestCharacterHandler_Delete(t *testing.T) {
	ts := testutil.NewTestServer(t, nil)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, strangerToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	character := testutil.NewCharacterBuilder().WithOwner(user).Build(t, ts.DB.DB)
	testutil.NewEntryBuilder().ForCharacter(character).Build(t, ts.DB.DB)

	resp := do(t, "DELETE", ts.APIURL("/characters/"+character.ID.String()), nil, strangerToken)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, err := ts.Repos.Character.GetByID(t.Context(), character.ID)
	require.NoError(t, err)

	resp = do(t, "DELETE", ts.APIURL("/characters/"+character.ID.String()), nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, err = ts.Repos.Character.GetByID(t.Context(), character.ID)
	assert.Error(t, err)

	entries, err := ts.Repos.Entry.GetByUserID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	resp = do(t, "DELETE", ts.APIURL("/characters/"+uuid.New().String()), nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
