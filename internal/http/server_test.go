package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/nexusd/internal/config"
	"github.com/fyrsmithlabs/nexusd/internal/nexus"
	"github.com/fyrsmithlabs/nexusd/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	svcs, err := services.Bootstrap(config.Default(), nil, nil)
	require.NoError(t, err)

	s, err := NewServer(svcs, zap.NewNop(), nil)
	require.NoError(t, err)
	return s
}

func doJSON(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServerValidation(t *testing.T) {
	svcs, err := services.Bootstrap(config.Default(), nil, nil)
	require.NoError(t, err)

	_, err = NewServer(nil, zap.NewNop(), nil)
	assert.Error(t, err)

	_, err = NewServer(svcs, nil, nil)
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Agents["orchestrator"])
}

func TestAskEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(s, http.MethodPost, "/api/v1/ask",
		`{"prompt": "go to settings", "userId": "u1", "requestId": "req-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp nexus.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	assert.True(t, resp.Success)
	require.Len(t, resp.ActionDrafts, 1)
	assert.Equal(t, nexus.ActionNavigate, resp.ActionDrafts[0].Type)
}

func TestAskGeneratesRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(s, http.MethodPost, "/api/v1/ask", `{"prompt": "hello", "userId": "u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp nexus.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RequestID)
}

func TestAskRequiresPrompt(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(s, http.MethodPost, "/api/v1/ask", `{"userId": "u1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyActionConfirmFlow(t *testing.T) {
	s := newTestServer(t)
	s.services.Trackers().Create("u1", "water", "Water Intake", nil)

	// Submit the delete draft: token issued, nothing deleted yet
	rec := doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		`{"userId": "u1", "action": {"id": "d1", "type": "delete", "title": "Delete tracker water", "source_agent": "tracker", "payload": {"id": "water"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var applied ApplyActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	require.True(t, applied.NeedsConfirmation)
	require.NotNil(t, applied.Token)
	assert.Equal(t, 1, s.services.Trackers().Count("u1"))

	// Wrong user cannot confirm
	rec = doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		fmt.Sprintf(`{"userId": "u2", "confirmationToken": %q}`, applied.Token.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner confirms; the tracker is gone
	rec = doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		fmt.Sprintf(`{"userId": "u1", "confirmationToken": %q}`, applied.Token.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	var confirmed ApplyActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmed))
	require.NotNil(t, confirmed.Action)
	assert.Equal(t, nexus.ActionCompleted, confirmed.Action.Status)
	assert.Equal(t, 0, s.services.Trackers().Count("u1"))
}

func TestApplyActionAutoExecutesSafe(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		`{"userId": "u1", "action": {"id": "d1", "type": "navigate", "title": "Go to settings", "source_agent": "ui", "payload": {"path": "/settings"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var applied ApplyActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	assert.False(t, applied.NeedsConfirmation)
	require.NotNil(t, applied.Action)
	assert.Equal(t, nexus.ActionCompleted, applied.Action.Status)
}

func TestApplyActionRejectFlow(t *testing.T) {
	s := newTestServer(t)
	s.services.Trackers().Create("u1", "water", "Water Intake", nil)

	rec := doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		`{"userId": "u1", "action": {"id": "d1", "type": "delete", "title": "Delete tracker water", "source_agent": "tracker", "payload": {"id": "water"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var applied ApplyActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	require.True(t, applied.NeedsConfirmation)
	require.NotNil(t, applied.Token)

	// Wrong user cannot reject
	rec = doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		fmt.Sprintf(`{"userId": "u2", "confirmationToken": %q, "reject": true}`, applied.Token.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner rejects; the token is discarded and nothing was deleted
	rec = doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		fmt.Sprintf(`{"userId": "u1", "confirmationToken": %q, "reject": true}`, applied.Token.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	var rejected ApplyActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rejected))
	assert.True(t, rejected.Rejected)
	assert.Equal(t, 1, s.services.Trackers().Count("u1"))

	// The discarded token can no longer be confirmed
	rec = doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		fmt.Sprintf(`{"userId": "u1", "confirmationToken": %q}`, applied.Token.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyActionRejectConfirmedToken(t *testing.T) {
	s := newTestServer(t)
	s.services.Trackers().Create("u1", "water", "Water Intake", nil)

	rec := doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		`{"userId": "u1", "action": {"id": "d1", "type": "delete", "title": "Delete tracker water", "source_agent": "tracker", "payload": {"id": "water"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var applied ApplyActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	require.NotNil(t, applied.Token)

	rec = doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		fmt.Sprintf(`{"userId": "u1", "confirmationToken": %q}`, applied.Token.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		fmt.Sprintf(`{"userId": "u1", "confirmationToken": %q, "reject": true}`, applied.Token.ID))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApplyActionUnknownToken(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		`{"userId": "u1", "confirmationToken": "no-such-token"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyActionRequiresExactlyOneForm(t *testing.T) {
	s := newTestServer(t)

	// Neither form
	rec := doJSON(s, http.MethodPost, "/api/v1/actions/apply", `{"userId": "u1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Both forms
	rec = doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		`{"userId": "u1", "confirmationToken": "tok", "action": {"id": "d1", "type": "navigate", "title": "x", "source_agent": "ui", "payload": {"path": "/x"}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyActionInvalidDraft(t *testing.T) {
	s := newTestServer(t)

	// delete without the required id field
	rec := doJSON(s, http.MethodPost, "/api/v1/actions/apply",
		`{"userId": "u1", "action": {"id": "d1", "type": "delete", "title": "Delete", "source_agent": "tracker"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProvenanceEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(s, http.MethodPost, "/api/v1/ask",
		`{"prompt": "go to settings", "userId": "u1", "requestId": "req-prov"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(s, http.MethodGet, "/api/v1/provenance/req-prov", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProvenanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-prov", resp.RequestID)
	require.NotEmpty(t, resp.Records)

	foundRoute := false
	for _, r := range resp.Records {
		if r.Operation == "route" {
			foundRoute = true
		}
	}
	assert.True(t, foundRoute)
}

func TestProvenanceUnknownRequest(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(s, http.MethodGet, "/api/v1/provenance/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
