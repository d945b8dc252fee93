package openapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgerrors "github.com/osakka/axiosgen/pkg/errors"
)

func newTestLoader(cfg LoaderConfig) *Loader {
	cfg.SkipSchemaValidation = true
	return NewLoader(nil, cfg)
}

func TestOrderedMapPreservesOrder(t *testing.T) {
	var m OrderedMap[int]
	require.NoError(t, json.Unmarshal([]byte(`{"zeta": 1, "alpha": 2, "mid": 3, "alpha": 4}`), &m))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())
	v, ok := m.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, 4, v)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":1,"alpha":4,"mid":3}`, string(out))
	assert.Equal(t, `{"zeta":1,"alpha":4,"mid":3}`, string(out))

	var empty *OrderedMap[int]
	assert.Zero(t, empty.Len())
	assert.Nil(t, empty.Keys())
}

func TestLoadFileSwagger2(t *testing.T) {
	result, err := newTestLoader(LoaderConfig{}).LoadFile(context.Background(), "testdata/petstore_v2.json")
	require.NoError(t, err)
	require.NotNil(t, result.Spec)
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Equal(t, FormatJSON, result.Metadata.Format)
	assert.Equal(t, "2.0", result.Metadata.Version)
	assert.Equal(t, 2, result.Metadata.PathCount)
	assert.Equal(t, 2, result.Metadata.SchemaCount)

	doc := result.Spec
	assert.False(t, doc.IsV3(""))
	assert.True(t, doc.IsV3("3.0"))
	assert.Equal(t, "/api", doc.BasePath())
	assert.Equal(t, []string{"/pets/{petId}", "/pets"}, doc.Paths.Keys())

	item, _ := doc.Paths.Get("/pets/{petId}")
	require.Len(t, item.Operations, 2)
	assert.Equal(t, "get", item.Operations[0].Method)
	assert.Equal(t, "delete", item.Operations[1].Method)
	assert.Equal(t, "getPetById", item.Operation("get").OperationID)
	assert.Nil(t, item.Operation("patch"))

	require.Len(t, item.Parameters, 1)
	param, err := doc.ResolveParameter(item.Parameters[0])
	require.NoError(t, err)
	assert.Equal(t, "petId", param.Name)
	assert.Equal(t, "integer", param.TypeSchema().TypeName())

	schemas := doc.Schemas(false)
	assert.Equal(t, []string{"Pet", "Category"}, schemas.Keys())
	pet, _ := schemas.Get("Pet")
	assert.Equal(t, []string{"name", "id", "status"}, pet.Properties.Keys())
	assert.True(t, pet.IsRequired("name"))
	assert.False(t, pet.IsRequired("id"))
}

func TestLoadFileOpenAPI3YAML(t *testing.T) {
	result, err := newTestLoader(LoaderConfig{}).LoadFile(context.Background(), "testdata/users_v3.yaml")
	require.NoError(t, err)
	require.NotNil(t, result.Spec)
	assert.Equal(t, FormatYAML, result.Metadata.Format)

	doc := result.Spec
	assert.True(t, doc.IsV3(""))
	assert.Equal(t, "/v2", doc.BasePath())

	item, _ := doc.Paths.Get("/users/{id}")
	param, err := doc.ResolveParameter(item.Operation("get").Parameters[0])
	require.NoError(t, err)
	assert.Equal(t, "id", param.Name)
	assert.Equal(t, "string", param.TypeSchema().TypeName())

	user, ok := doc.Schemas(true).Get("User")
	require.True(t, ok)
	nickname, _ := user.Properties.Get("nickname")
	assert.Equal(t, "string", nickname.TypeName())
	assert.True(t, nickname.IsNullable())

	_, media := PreferredMedia(mustResponse(t, doc, "/users/{id}", "get", "200").Content)
	require.NotNil(t, media)
	assert.Equal(t, "#/components/schemas/User", media.Schema.Ref)
}

func mustResponse(t *testing.T, doc *Document, path, method, code string) *Response {
	t.Helper()
	item, ok := doc.Paths.Get(path)
	require.True(t, ok)
	resp, ok := item.Operation(method).Responses.Get(code)
	require.True(t, ok)
	return resp
}

func TestResolveParameterErrors(t *testing.T) {
	doc := &Document{Parameters: map[string]*Parameter{
		"Loop": {Ref: "#/parameters/Loop"},
	}}

	_, err := doc.ResolveParameter(&Parameter{Ref: "#/parameters/Missing"})
	assert.Error(t, err)

	_, err = doc.ResolveParameter(&Parameter{Ref: "#/parameters/Loop"})
	assert.ErrorContains(t, err, "circular")
}

func TestLoadBytesParseError(t *testing.T) {
	loader := newTestLoader(LoaderConfig{})

	result, err := loader.LoadBytes(context.Background(), []byte(`{"openapi": `), "")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Nil(t, result.Spec)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "PARSE_ERROR", result.Errors[0].Code)

	result, err = loader.LoadBytes(context.Background(), []byte("- just\n- a list\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "PARSE_ERROR", result.Errors[0].Code)
}

func TestStructuralValidation(t *testing.T) {
	doc := `{
	  "openapi": "3.0.0",
	  "info": {"version": "1"},
	  "paths": {
	    "users": {"get": {"operationId": "list", "responses": {}}},
	    "/teams": {"get": {"responses": {"404": {"description": "missing"}}}}
	  },
	  "components": {"schemas": {"Names": {"type": "array"}}}
	}`

	result, err := newTestLoader(LoaderConfig{}).LoadBytes(context.Background(), []byte(doc), FormatJSON)
	require.NoError(t, err)
	assert.False(t, result.Valid)

	codes := map[string]bool{}
	for _, e := range result.Errors {
		codes[e.Code] = true
	}
	assert.True(t, codes["MISSING_TITLE"])
	assert.True(t, codes["INVALID_PATH"])
	assert.True(t, codes["MISSING_RESPONSES"])
	assert.True(t, codes["MISSING_ARRAY_ITEMS"])

	warnings := map[string]bool{}
	for _, w := range result.Warnings {
		warnings[w.Code] = true
	}
	assert.True(t, warnings["MISSING_OPERATION_ID"])
	assert.True(t, warnings["NO_SUCCESS_RESPONSE"])
}

func TestSchemaValidationWarning(t *testing.T) {
	doc := `{
	  "openapi": "3.0.0",
	  "info": {"title": "Broken", "version": "1"},
	  "paths": {
	    "/x": {"get": {
	      "operationId": "getX",
	      "parameters": [{"name": "a", "in": "nowhere", "schema": {"type": "string"}}],
	      "responses": {"200": {"description": "ok"}}
	    }}
	  }
	}`

	result, err := NewLoader(nil, LoaderConfig{}).LoadBytes(context.Background(), []byte(doc), FormatJSON)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	var found bool
	for _, w := range result.Warnings {
		if w.Code == "SCHEMA_VALIDATION" {
			found = true
		}
	}
	assert.True(t, found, "warnings: %v", result.Warnings)
}

func TestLoadValue(t *testing.T) {
	value := map[string]interface{}{
		"swagger": "2.0",
		"info":    map[string]interface{}{"title": "Inline", "version": "1"},
		"paths":   map[string]interface{}{},
	}

	result, err := newTestLoader(LoaderConfig{}).LoadValue(context.Background(), value)
	require.NoError(t, err)
	require.NotNil(t, result.Spec)
	assert.Equal(t, "Inline", result.Spec.Info.Title)
	assert.Equal(t, "value", result.Metadata.Source)

	again, err := newTestLoader(LoaderConfig{}).LoadValue(context.Background(), result.Spec)
	require.NoError(t, err)
	assert.Equal(t, "Inline", again.Spec.Info.Title)
}

func TestLoadURL(t *testing.T) {
	content, err := os.ReadFile("testdata/users_v3.yaml")
	require.NoError(t, err)

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/spec" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(content)
	}))
	defer srv.Close()

	loader := newTestLoader(LoaderConfig{CacheDir: t.TempDir(), CacheExpiry: time.Minute})
	ctx := context.Background()

	result, err := loader.LoadURL(ctx, srv.URL+"/spec")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, result.Metadata.Format)
	assert.False(t, result.Metadata.CacheHit)
	assert.Equal(t, "Users", result.Spec.Info.Title)

	cached, err := loader.LoadURL(ctx, srv.URL+"/spec")
	require.NoError(t, err)
	assert.True(t, cached.Metadata.CacheHit)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	_, err = loader.LoadURL(ctx, srv.URL+"/missing")
	require.Error(t, err)
	assert.True(t, cgerrors.IsCategory(err, cgerrors.CategoryNetwork))
}

func TestLoadURLRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"openapi": "3.0.0", "info": {"title": "Large", "version": "1"}, "paths": {}}`))
	}))
	defer srv.Close()

	ctx := context.Background()

	_, err := newTestLoader(LoaderConfig{}).LoadURL(ctx, "file:///etc/passwd")
	require.Error(t, err)
	assert.True(t, cgerrors.IsCategory(err, cgerrors.CategoryConfiguration))

	_, err = newTestLoader(LoaderConfig{MaxFileSize: 16}).LoadURL(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, cgerrors.IsCategory(err, cgerrors.CategoryValidation))
}

func TestAdditionalPropertiesForms(t *testing.T) {
	var s Schema
	require.NoError(t, json.Unmarshal([]byte(`{"type": "object", "additionalProperties": {"type": "integer"}}`), &s))
	require.NotNil(t, s.AdditionalProperties)
	assert.True(t, s.AdditionalProperties.Allowed)
	assert.Equal(t, "integer", s.AdditionalProperties.Schema.TypeName())

	var b Schema
	require.NoError(t, json.Unmarshal([]byte(`{"type": "object", "additionalProperties": false}`), &b))
	require.NotNil(t, b.AdditionalProperties)
	assert.False(t, b.AdditionalProperties.Allowed)
	assert.Nil(t, b.AdditionalProperties.Schema)
}
