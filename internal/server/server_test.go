package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threatsketch/threatsketch/internal/llm"
)

// stubGateway is a deterministic Gateway for handler tests.
type stubGateway struct {
	available bool
	reply     string
	err       error
	calls     int
}

func (g *stubGateway) Available() bool { return g.available }

func (g *stubGateway) Complete(_ context.Context, _, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *stubGateway) Model() string { return "stub-model" }

type pipelineResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Data    []map[string]any `json:"data"`
}

func newTestServer(t *testing.T, gw llm.Gateway) *Server {
	t.Helper()
	s, err := New(Config{Gateway: gw, Temperature: 0.7})
	require.NoError(t, err)
	return s
}

func postJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodePipeline(t *testing.T, rec *httptest.ResponseRecorder) pipelineResponse {
	t.Helper()
	var resp pipelineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGenerateMisuseCases_Success(t *testing.T) {
	gw := &stubGateway{
		available: true,
		reply: `[
			{"name":"Brute Force Login","description":"d1","actor":"a1","impact":"i1"},
			{"name":"Session Hijacking","description":"d2","actor":"a2","impact":"i2"},
			{"name":"Credential Stuffing","description":"d3","actor":"a3","impact":"i3"}
		]`,
	}
	s := newTestServer(t, gw)

	rec := postJSON(t, s, "/generate_misuse_cases",
		`{"useCaseName":"Login","systemName":"Banking App","otherUseCases":["Logout"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePipeline(t, rec)
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, 1, gw.calls)

	// All fields populated verbatim, in order.
	assert.Equal(t, "Brute Force Login", resp.Data[0]["name"])
	assert.Equal(t, "Session Hijacking", resp.Data[1]["name"])
	assert.Equal(t, "Credential Stuffing", resp.Data[2]["name"])
	for _, mc := range resp.Data {
		for _, field := range llm.RequiredFields {
			assert.NotEmpty(t, mc[field])
		}
	}
}

func TestGenerateMisuseCases_JSONEmbeddedInProse(t *testing.T) {
	gw := &stubGateway{
		available: true,
		reply:     `Here is the result: [{"name":"X","description":"Y","actor":"Z","impact":"W"}]`,
	}
	s := newTestServer(t, gw)

	rec := postJSON(t, s, "/generate_misuse_cases", `{"useCaseName":"Login"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePipeline(t, rec)
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "X", resp.Data[0]["name"])
}

func TestGenerateMisuseCases_UnparsableIsSoftError(t *testing.T) {
	gw := &stubGateway{
		available: true,
		reply:     "Maaf, saya tidak bisa membuat daftar itu.",
	}
	s := newTestServer(t, gw)

	rec := postJSON(t, s, "/generate_misuse_cases", `{"useCaseName":"Login"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePipeline(t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Message)
	assert.Empty(t, resp.Data)
}

func TestGenerateMisuseCases_GatewayTimeoutIsSoftError(t *testing.T) {
	gw := &stubGateway{available: true, err: context.DeadlineExceeded}
	s := newTestServer(t, gw)

	rec := postJSON(t, s, "/generate_misuse_cases", `{"useCaseName":"Login"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePipeline(t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Empty(t, resp.Data)
	assert.Equal(t, 1, gw.calls)
}

func TestGenerateMisuseCases_UnavailableIs503(t *testing.T) {
	gw := &stubGateway{available: false}
	s := newTestServer(t, gw)

	rec := postJSON(t, s, "/generate_misuse_cases", `{"useCaseName":"Login"}`)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodePipeline(t, rec)
	assert.Equal(t, "error", resp.Status)
	// No gateway call attempted.
	assert.Zero(t, gw.calls)
}

func TestGenerateMisuseCases_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing useCaseName", body: `{"systemName":"App"}`},
		{name: "empty useCaseName", body: `{"useCaseName":""}`},
		{name: "whitespace useCaseName", body: `{"useCaseName":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{available: true, reply: "[]"}
			s := newTestServer(t, gw)

			rec := postJSON(t, s, "/generate_misuse_cases", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodePipeline(t, rec)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, "Nama use case diperlukan", resp.Message)
			assert.Zero(t, gw.calls)
		})
	}
}

func TestGenerateMisuseCases_MalformedBodyIs400(t *testing.T) {
	gw := &stubGateway{available: true}
	s := newTestServer(t, gw)

	// Non-string otherUseCases elements are rejected at decode time.
	rec := postJSON(t, s, "/generate_misuse_cases",
		`{"useCaseName":"Login","otherUseCases":[1,2]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, gw.calls)
}

func TestGenerateMisuseCases_NormalizesMissingFields(t *testing.T) {
	gw := &stubGateway{
		available: true,
		reply:     `[{"name":"Phishing","extra":"kept"}]`,
	}
	s := newTestServer(t, gw)

	rec := postJSON(t, s, "/generate_misuse_cases", `{"useCaseName":"Login"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePipeline(t, rec)
	require.Len(t, resp.Data, 1)

	mc := resp.Data[0]
	assert.Equal(t, "Phishing", mc["name"])
	assert.Equal(t, "kept", mc["extra"])
	for _, field := range []string{"description", "actor", "impact"} {
		placeholder, ok := mc[field].(string)
		require.True(t, ok)
		assert.Contains(t, placeholder, field)
	}
}

func TestGenerateMisuseCases_Idempotent(t *testing.T) {
	gw := &stubGateway{
		available: true,
		reply:     `[{"name":"X","description":"Y","actor":"Z","impact":"W"}]`,
	}
	s := newTestServer(t, gw)

	body := `{"useCaseName":"Login","systemName":"Banking App"}`
	first := postJSON(t, s, "/generate_misuse_cases", body)
	second := postJSON(t, s, "/generate_misuse_cases", body)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, first.Code, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 2, gw.calls)
}

func TestGenerateMisuseCases_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &stubGateway{available: true})

	req := httptest.NewRequest(http.MethodGet, "/generate_misuse_cases", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSaveDiagram(t *testing.T) {
	s := newTestServer(t, &stubGateway{available: true})

	rec := postJSON(t, s, "/save", `{"diagram":{"nodes":[]}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodePipeline(t, rec)
	assert.Equal(t, "success", resp.Status)
}

func TestSaveDiagram_InvalidBody(t *testing.T) {
	s := newTestServer(t, &stubGateway{available: true})

	rec := postJSON(t, s, "/save", `{broken`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodePipeline(t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Message, "Gagal menyimpan diagram")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubGateway{available: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "stub-model", body["model"])
	assert.Equal(t, true, body["ai_available"])
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, &stubGateway{available: true})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ThreatSketch"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &stubGateway{available: true})

	req := httptest.NewRequest(http.MethodOptions, "/generate_misuse_cases", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNew_RequiresGateway(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestLoadAppConfig_MissingFileMeansDefaults(t *testing.T) {
	cfg, err := loadAppConfig("does/not/exist/app.yaml")
	require.NoError(t, err)
	assert.Equal(t, "ThreatSketch", cfg.App.Name)
}

func TestNew_AppYAMLOverridesPrompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"app:\n  name: Kustom\nprompts:\n  system: sistem kustom\n"), 0o644))

	s, err := New(Config{
		Gateway:     &stubGateway{available: true},
		AppYAMLPath: path,
	})
	require.NoError(t, err)

	assert.Equal(t, "Kustom", s.appCfg.App.Name)
	assert.Equal(t, "sistem kustom", s.templates.System)
	// User template keeps the built-in default.
	assert.Equal(t, llm.DefaultTemplates().User, s.templates.User)
}
