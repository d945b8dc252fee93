package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osakka/axiosgen/pkg/config"
	"github.com/osakka/axiosgen/pkg/logging"
	"github.com/osakka/axiosgen/pkg/metrics"
)

const document = `{
  "openapi": "3.0.0",
  "info": {"title": "Users", "version": "1"},
  "paths": {
    "/users/{id}": {
      "get": {
        "tags": ["user"],
        "operationId": "getUser",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/User"}}}}}
      }
    }
  },
  "components": {"schemas": {"User": {"type": "object", "properties": {"name": {"type": "string"}}}}}
}`

func newTestServer(t *testing.T, mutate func(c *config.ServerConfig)) (*Server, *metrics.Registry) {
	t.Helper()
	cfg := config.Default().Server
	if mutate != nil {
		mutate(&cfg)
	}
	reg := metrics.NewRegistry(logging.NewNoOp())
	return New(cfg, logging.NewNoOp(), reg), reg
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestGenerate(t *testing.T) {
	s, reg := newTestServer(t, nil)

	body := `{"options": {"modelMode": "class", "serviceNameSuffix": "Api"}, "document": ` + document + `}`
	rec := do(t, s, http.MethodPost, "/v1/generate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Result struct {
			IsV3     bool `json:"is_v3"`
			Services int  `json:"services"`
			Files    []struct {
				Name    string `json:"name"`
				Content string `json:"content"`
			} `json:"files"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Result.IsV3)
	assert.Equal(t, 1, resp.Result.Services)
	require.Len(t, resp.Result.Files, 1)
	assert.Equal(t, "index.ts", resp.Result.Files[0].Name)

	content := resp.Result.Files[0].Content
	assert.Contains(t, content, "export class UserApi {")
	assert.Contains(t, content, "export class User {")
	assert.Contains(t, content, "url = url.replace('{id}', params['id'] + '');")
	assert.NotContains(t, content, "\n\n\n")

	assert.EqualValues(t, 1, reg.GetStats("http_requests_total", "method", "POST", "path", "/v1/generate").Count)
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/v1/generate", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"validation"`)

	rec = do(t, s, http.MethodPost, "/v1/generate", `{"options": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/generate", `{"options": {"modelMode": "struct"}, "document": `+document+`}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"configuration"`)

	rec = do(t, s, http.MethodPost, "/v1/generate", `{"document": "openapi: [unclosed"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "PARSE_ERROR")
}

func TestRequestOptionsDropLocalAccess(t *testing.T) {
	opts, err := requestOptions(json.RawMessage(`{
		"sourceFile": "/etc/passwd",
		"extendDefinitionFile": "/etc/hosts",
		"formatter": "command",
		"formatCommand": ["rm", "-rf", "/"],
		"outputDir": ""
	}`))
	require.NoError(t, err)

	assert.Empty(t, opts.SourceFile)
	assert.Empty(t, opts.ExtendDefinitionFile)
	assert.Empty(t, opts.FormatCommand)
	assert.Equal(t, config.FormatterBasic, opts.Formatter)
	assert.Equal(t, "./service", opts.OutputDir)
	assert.Equal(t, "Service", opts.ServiceNameSuffix)
}

func TestValidate(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/v1/validate", document)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Valid    bool `json:"valid"`
		Metadata struct {
			Title     string `json:"title"`
			PathCount int    `json:"path_count"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, "Users", result.Metadata.Title)
	assert.Equal(t, 1, result.Metadata.PathCount)
}

func TestBodyLimit(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 16 })

	rec := do(t, s, http.MethodPost, "/v1/validate", document)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/health", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total{method=GET,path=/health}")
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodGet, "/v1/generate", "").Code)
}

func TestStartStopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.ServerConfig) { c.Port = 0 })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
