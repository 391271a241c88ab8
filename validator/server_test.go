package validator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/snow-ghost/validator/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	store := newMemStore("a")
	v := approving()
	srv := httptest.NewServer(NewServer(v, NewPipeline(store, v, store, nil), nil))
	t.Cleanup(srv.Close)
	return srv, store
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Validate(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := post(t, srv.URL+"/validate", `{"id":"p9","title":"t","implementation_steps":["one"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report core.ValidationReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "p9", report.PracticeID)
	assert.Equal(t, core.DecisionApprove, report.Decision)

	resp = post(t, srv.URL+"/validate", `{"id":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ValidateWithoutAnalyzers(t *testing.T) {
	srv := httptest.NewServer(NewServer(New(nil, core.DefaultThresholds()), nil, nil))
	defer srv.Close()

	resp := post(t, srv.URL+"/validate", `{"id":"p"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = post(t, srv.URL+"/events", `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Events(t *testing.T) {
	srv, store := newTestServer(t)

	resp := post(t, srv.URL+"/events", `{"type":"practice.created","payload":{"practice_id":"a"}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, store.reports, "a")

	resp = post(t, srv.URL+"/events", `{"type":"practice.updated","payload":{"practice_id":"a"}}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = post(t, srv.URL+"/events", `{"type":"practice.created","payload":{}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv.URL+"/events", `{"type":"practice.created","payload":{"practice_id":"nope"}}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	post(t, srv.URL+"/validate", `{"id":"p"}`)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RejectsOversizedBody(t *testing.T) {
	store := newMemStore("a")
	v := approving()
	srv := NewServer(v, NewPipeline(store, v, store, nil), nil)
	huge := `{"id":"p","summary":"` + strings.Repeat("x", MaxRequestBody) + `"}`

	for _, path := range []string{"/validate", "/events"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(huge)))
			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		})
	}
	assert.Empty(t, store.reports)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(`{"id":"p"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
