package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dom/groupbuilder/internal/api/handlers"
	"github.com/dom/groupbuilder/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()
	req := testutil.CreateAuthenticatedRequest(t, method, url, body, token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func createCharacter(t *testing.T, ts *testutil.TestServer, token, name string) handlers.CharacterResponse {
	t.Helper()
	resp := do(t, "POST", ts.APIURL("/characters"), map[string]string{"name": name}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var character handlers.CharacterResponse
	testutil.AssertJSONResponse(t, resp, &character)
	return character
}

func TestEntryHandler_Submit(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.FixedClock("2024-01-01"))
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	character := createCharacter(t, ts, token, "Main")

	valid := func() handlers.SubmitEntryRequest {
		return handlers.SubmitEntryRequest{
			CharacterID: character.ID,
			Weekdays:    []string{"Monday"},
			StartTime:   "18:00",
			EndTime:     "20:00",
			Spec:        "dps",
			Keystone:    "+10",
		}
	}

	tests := []struct {
		name           string
		mutate         func(*handlers.SubmitEntryRequest)
		token          string
		expectedStatus int
	}{
		{name: "valid", mutate: func(*handlers.SubmitEntryRequest) {}, token: token, expectedStatus: http.StatusCreated},
		{name: "unauthorized", mutate: func(*handlers.SubmitEntryRequest) {}, expectedStatus: http.StatusUnauthorized},
		{
			name:           "end not after start",
			mutate:         func(r *handlers.SubmitEntryRequest) { r.EndTime = "18:00" },
			token:          token,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad weekday",
			mutate:         func(r *handlers.SubmitEntryRequest) { r.Weekdays = []string{"monday"} },
			token:          token,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no weekdays",
			mutate:         func(r *handlers.SubmitEntryRequest) { r.Weekdays = []string{} },
			token:          token,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed character id",
			mutate:         func(r *handlers.SubmitEntryRequest) { r.CharacterID = "nope" },
			token:          token,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown character",
			mutate:         func(r *handlers.SubmitEntryRequest) { r.CharacterID = "00000000-0000-0000-0000-000000000001" },
			token:          token,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			resp := do(t, "POST", ts.APIURL("/entries"), req, tt.token)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	t.Run("error message", func(t *testing.T) {
		req := valid()
		req.StartTime, req.EndTime = "10:00", "09:00"
		resp := do(t, "POST", ts.APIURL("/entries"), req, token)
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Invalid time window")
	})

	t.Run("response body", func(t *testing.T) {
		req := valid()
		req.Weekdays = []string{"Wednesday"}
		resp := do(t, "POST", ts.APIURL("/entries"), req, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var entries []handlers.EntryResponse
		testutil.AssertJSONResponse(t, resp, &entries)
		require.Len(t, entries, 1)
		assert.Equal(t, "Wednesday", entries[0].Weekday)
		assert.Equal(t, "2024-01-01", entries[0].CreatedDate)
		assert.Equal(t, "2024-01-03", entries[0].ExpireDate)
	})
}

func TestEntryHandler_DashboardEndToEnd(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.FixedClock("2024-01-01"))

	_, aliceToken := testutil.NewUserBuilder().WithDisplayName("alice").BuildAndAuthenticate(t, ts)
	_, bobToken := testutil.NewUserBuilder().WithDisplayName("bob").BuildAndAuthenticate(t, ts)
	aliceChar := createCharacter(t, ts, aliceToken, "Alichar")
	bobChar := createCharacter(t, ts, bobToken, "Bobchar")

	resp := do(t, "POST", ts.APIURL("/entries"), handlers.SubmitEntryRequest{
		CharacterID: aliceChar.ID,
		Weekdays:    []string{"Monday"},
		StartTime:   "18:00",
		EndTime:     "20:00",
		Spec:        "dps",
		Keystone:    "+10",
	}, aliceToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, "POST", ts.APIURL("/entries"), handlers.SubmitEntryRequest{
		CharacterID: bobChar.ID,
		Weekdays:    []string{"Monday"},
		StartTime:   "19:00",
		EndTime:     "21:00",
		Spec:        "heal",
		Keystone:    "+10",
	}, bobToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, "GET", ts.APIURL("/dashboard"), nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dash struct {
		OwnEntries []handlers.EntryResponse     `json:"ownEntries"`
		Characters []handlers.CharacterResponse `json:"characters"`
		Matches    []struct {
			Username  string `json:"username"`
			Character string `json:"character"`
			Weekday   string `json:"weekday"`
			Start     string `json:"start"`
			End       string `json:"end"`
			Spec      string `json:"spec"`
			Keystone  string `json:"keystone"`
		} `json:"matches"`
	}
	testutil.AssertJSONResponse(t, resp, &dash)

	require.Len(t, dash.OwnEntries, 1)
	assert.Equal(t, "Alichar", dash.OwnEntries[0].CharacterName)
	require.Len(t, dash.Characters, 1)
	require.Len(t, dash.Matches, 1)

	m := dash.Matches[0]
	assert.Equal(t, "bob", m.Username)
	assert.Equal(t, "Bobchar", m.Character)
	assert.Equal(t, "Monday", m.Weekday)
	assert.Equal(t, "19:00", m.Start)
	assert.Equal(t, "20:00", m.End)
	assert.Equal(t, "heal", m.Spec)
	assert.Equal(t, "+10", m.Keystone)
}

func TestEntryHandler_Delete(t *testing.T) {
	ts := testutil.NewTestServer(t, nil)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, strangerToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	character := testutil.NewCharacterBuilder().WithOwner(user).Build(t, ts.DB.DB)
	entry := testutil.NewEntryBuilder().ForCharacter(character).
		CreatedOn(time.Now().Format("2006-01-02")).
		Build(t, ts.DB.DB)

	resp := do(t, "DELETE", ts.APIURL("/entries/"+entry.ID.String()), nil, strangerToken)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, err := ts.Repos.Entry.GetByID(t.Context(), entry.ID)
	require.NoError(t, err, "stranger cannot delete")

	resp = do(t, "DELETE", ts.APIURL("/entries/"+entry.ID.String()), nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, err = ts.Repos.Entry.GetByID(t.Context(), entry.ID)
	assert.Error(t, err)

	resp = do(t, "DELETE", ts.APIURL("/entries/not-a-uuid"), nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
