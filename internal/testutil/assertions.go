package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/groupbuilder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies a plain-text error reply
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	assert.Contains(t, string(body), expectedMessage, "error message mismatch")
}

// AssertWindow verifies an entry's stored time range
func AssertWindow(t *testing.T, entry *domain.Entry, start, end string) {
	t.Helper()
	assert.Equal(t, start, entry.StartTime, "unexpected start time")
	assert.Equal(t, end, entry.EndTime, "unexpected end time")
	assert.Greater(t, entry.EndTime, entry.StartTime, "stored window must be non-empty")
}

// AssertCreatedOn verifies an entry's created date
func AssertCreatedOn(t *testing.T, entry *domain.Entry, date string) {
	t.Helper()
	assert.Equal(t, date, entry.Created().Format(domain.DateLayout), "unexpected created date")
}
