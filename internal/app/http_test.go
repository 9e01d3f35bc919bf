package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(ms *memStore) *HTTPServer {
	return NewHTTPServer(newTestService(ms), "*")
}

func doRequest(t *testing.T, server *HTTPServer, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	return payload
}

const notationBody = `{
	"name": "alice",
	"date": "2024/01/05",
	"spiritual_note": 5,
	"physical_note": 6,
	"mental_note": 7,
	"business_note": 4,
	"social_note": 3,
	"3_things_note": 8,
	"russian_note": 2
}`

const inputBody = `{
	"Name": "alice",
	"Date": "2024/01/05",
	"Spiritual_meaning": "calm",
	"Physical_meaning": "ran 5k",
	"Mental_meaning": "focused",
	"Business_meaning": "shipped the release",
	"Social_meaning": "dinner with friends",
	"3_things": "a, b, c",
	"Russian_lesson": "lesson 4"
}`

func TestRootEndpoint(t *testing.T) {
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "SynapseOS API is running", decodeJSON(t, rr)["message"])
}

func TestUnknownRoute(t *testing.T) {
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decodeJSON(t, rr)["code"])
}

func TestCreateNotationEndpoint(t *testing.T) {
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodPost, "/notations/", notationBody)
	require.Equal(t, http.StatusOK, rr.Code)

	payload := decodeJSON(t, rr)
	assert.NotEmpty(t, payload["id"], "created record carries the generated identity")
	assert.Equal(t, "alice", payload["name"])
	// Alias round-trip: the wire key goes in and comes back unchanged.
	assert.Equal(t, float64(8), payload["3_things_note"])
	_, canonicalLeaked := payload["three_things_note"]
	assert.False(t, canonicalLeaked, "canonical name must not appear on the wire")
}

func TestCreateNotationEndpoint_Duplicate(t *testing.T) {
	server := newTestServer(&memStore{})
	require.Equal(t, http.StatusOK, doRequest(t, server, http.MethodPost, "/notations/", notationBody).Code)

	rr := doRequest(t, server, http.MethodPost, "/notations/", notationBody)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "DUPLICATE_ENTRY", decodeJSON(t, rr)["code"])
}

func TestCreateNotationEndpoint_OutOfRangeScore(t *testing.T) {
	body := strings.Replace(notationBody, `"spiritual_note": 5`, `"spiritual_note": 11`, 1)
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodPost, "/notations/", body)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	payload := decodeJSON(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", payload["code"])
	details, ok := payload["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "spiritual_note", details["field"])
}

func TestCreateNotationEndpoint_MalformedBody(t *testing.T) {
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodPost, "/notations/", "{not json")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_BODY", decodeJSON(t, rr)["code"])
}

func TestListNotationsEndpoint_DateFilter(t *testing.T) {
	server := newTestServer(&memStore{})
	second := strings.Replace(notationBody, "2024/01/05", "2024/01/20", 1)
	require.Equal(t, http.StatusOK, doRequest(t, server, http.MethodPost, "/notations/", notationBody).Code)
	require.Equal(t, http.StatusOK, doRequest(t, server, http.MethodPost, "/notations/", second).Code)

	rr := doRequest(t, server, http.MethodGet, "/notations/alice?start_date=2024/01/10", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "2024/01/20", items[0]["date"])
}

func TestListNotationsEndpoint_EmptyIsJSONArray(t *testing.T) {
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodGet, "/notations/nobody", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestStatsEndpoint_NoData(t *testing.T) {
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodGet, "/notations/stats/nobody", "")
	require.Equal(t, http.StatusOK, rr.Code)

	payload := decodeJSON(t, rr)
	assert.Contains(t, payload["message"], "nobody")
	stats, ok := payload["stats"].(map[string]any)
	require.True(t, ok)
	assert.Empty(t, stats)
}

func TestStatsEndpoint_Computed(t *testing.T) {
	server := newTestServer(&memStore{})
	// The seeded date is fixed, so use a lookback large enough that the
	// window always covers it regardless of the real clock.
	require.Equal(t, http.StatusOK, doRequest(t, server, http.MethodPost, "/notations/", notationBody).Code)

	rr := doRequest(t, server, http.MethodGet, "/notations/stats/alice?days=36500", "")
	require.Equal(t, http.StatusOK, rr.Code)

	payload := decodeJSON(t, rr)
	assert.Equal(t, float64(1), payload["total_entries"])
	stats, ok := payload["stats"].(map[string]any)
	require.True(t, ok)
	category, ok := stats["three_things_note"].(map[string]any)
	require.True(t, ok, "stats are keyed by canonical category names")
	assert.Equal(t, float64(8), category["average"])
	assert.Equal(t, "insufficient_data", category["trend"])
}

func TestStatsEndpoint_BadDays(t *testing.T) {
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodGet, "/notations/stats/alice?days=soon", "")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeJSON(t, rr)["code"])
}

func TestCreateInputEndpoint_AliasRoundTrip(t *testing.T) {
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodPost, "/inputs/", inputBody)
	require.Equal(t, http.StatusOK, rr.Code)

	payload := decodeJSON(t, rr)
	assert.NotEmpty(t, payload["id"])
	assert.Equal(t, "a, b, c", payload["3_things"])
	assert.Equal(t, "ran 5k", payload["Physical_meaning"])
}

func TestCreateInputEndpoint_MissingField(t *testing.T) {
	body := strings.Replace(inputBody, `"3_things": "a, b, c",`, "", 1)
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodPost, "/inputs/", body)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	payload := decodeJSON(t, rr)
	details, ok := payload["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "3_things", details["field"])
}

func TestLatestInputEndpoint_NotFound(t *testing.T) {
	rr := doRequest(t, newTestServer(&memStore{}), http.MethodGet, "/inputs/latest/nobody", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decodeJSON(t, rr)["code"])
}

func TestListInputsEndpoint_Limit(t *testing.T) {
	server := newTestServer(&memStore{})
	for _, date := range []string{"2024/01/01", "2024/01/02", "2024/01/03"} {
		body := strings.Replace(inputBody, "2024/01/05", date, 1)
		require.Equal(t, http.StatusOK, doRequest(t, server, http.MethodPost, "/inputs/", body).Code)
	}

	rr := doRequest(t, server, http.MethodGet, "/inputs/alice?limit=2", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "2024/01/03", items[0]["Date"], "newest first")

	rr = doRequest(t, server, http.MethodGet, "/inputs/alice?limit=oops", "")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAIOutputEndpoints(t *testing.T) {
	server := newTestServer(&memStore{})

	rr := doRequest(t, server, http.MethodGet, "/ai-output/latest/alice", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	body := `{"Name": "alice", "Date": "2024/01/05", "output": "rest more"}`
	rr = doRequest(t, server, http.MethodPost, "/ai-output/", body)
	require.Equal(t, http.StatusOK, rr.Code)
	created := decodeJSON(t, rr)
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "rest more", created["output"])

	rr = doRequest(t, server, http.MethodGet, "/ai-output/latest/alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "rest more", decodeJSON(t, rr)["output"])

	rr = doRequest(t, server, http.MethodGet, "/ai-output/alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestStoreFailureMapsToStoreUnavailable(t *testing.T) {
	ms := &memStore{failErr: assert.AnError}
	rr := doRequest(t, newTestServer(ms), http.MethodGet, "/notations/alice", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "STORE_UNAVAILABLE", decodeJSON(t, rr)["code"])
}
