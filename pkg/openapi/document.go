package openapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Document is the union of the OpenAPI 3 and Swagger 2 top-level shapes
type Document struct {
	OpenAPI string   `json:"openapi,omitempty"`
	Swagger string   `json:"swagger,omitempty"`
	Info    Info     `json:"info"`
	Servers []Server `json:"servers,omitempty"`
	Tags    []Tag    `json:"tags,omitempty"`

	// Swagger 2
	Host            string                `json:"host,omitempty"`
	SwaggerBasePath string                `json:"basePath,omitempty"`
	Schemes         []string              `json:"schemes,omitempty"`
	Consumes        []string              `json:"consumes,omitempty"`
	Produces        []string              `json:"produces,omitempty"`
	Definitions     *OrderedMap[*Schema]  `json:"definitions,omitempty"`
	Parameters      map[string]*Parameter `json:"parameters,omitempty"`
	Responses       map[string]*Response  `json:"responses,omitempty"`

	Paths      *OrderedMap[*PathItem] `json:"paths,omitempty"`
	Components *Components            `json:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Components holds the reusable OpenAPI 3 objects
type Components struct {
	Schemas       *OrderedMap[*Schema]    `json:"schemas,omitempty"`
	Parameters    map[string]*Parameter   `json:"parameters,omitempty"`
	RequestBodies map[string]*RequestBody `json:"requestBodies,omitempty"`
	Responses     map[string]*Response    `json:"responses,omitempty"`
}

// HTTPMethods lists the operation keys of a path item
var HTTPMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// PathItem describes the operations available on a single path
type PathItem struct {
	Summary     string
	Description string
	Parameters  []*Parameter
	// Operations in document order
	Operations []MethodOperation
}

// MethodOperation pairs an operation with its lower-case HTTP method
type MethodOperation struct {
	Method    string
	Operation *Operation
}

// Operation returns the operation for method, or nil
func (p *PathItem) Operation(method string) *Operation {
	for _, op := range p.Operations {
		if op.Method == method {
			return op.Operation
		}
	}
	return nil
}

func (p *PathItem) UnmarshalJSON(data []byte) error {
	var raw OrderedMap[json.RawMessage]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, key := range raw.Keys() {
		value, _ := raw.Get(key)
		var err error
		switch key {
		case "summary":
			err = json.Unmarshal(value, &p.Summary)
		case "description":
			err = json.Unmarshal(value, &p.Description)
		case "parameters":
			err = json.Unmarshal(value, &p.Parameters)
		default:
			if !isHTTPMethod(key) {
				continue
			}
			op := &Operation{}
			if err = json.Unmarshal(value, op); err == nil {
				p.Operations = append(p.Operations, MethodOperation{Method: key, Operation: op})
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func (p PathItem) MarshalJSON() ([]byte, error) {
	var out OrderedMap[interface{}]
	if p.Summary != "" {
		out.Set("summary", p.Summary)
	}
	if p.Description != "" {
		out.Set("description", p.Description)
	}
	if len(p.Parameters) > 0 {
		out.Set("parameters", p.Parameters)
	}
	for _, op := range p.Operations {
		out.Set(op.Method, op.Operation)
	}
	return json.Marshal(out)
}

func isHTTPMethod(key string) bool {
	for _, m := range HTTPMethods {
		if key == m {
			return true
		}
	}
	return false
}

// Operation describes a single API operation on a path
type Operation struct {
	OperationID string                 `json:"operationId,omitempty"`
	Summary     string                 `json:"summary,omitempty"`
	Description string                 `json:"description,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Parameters  []*Parameter           `json:"parameters,omitempty"`
	RequestBody *RequestBody           `json:"requestBody,omitempty"`
	Responses   *OrderedMap[*Response] `json:"responses,omitempty"`
	Consumes    []string               `json:"consumes,omitempty"`
	Produces    []string               `json:"produces,omitempty"`
	Deprecated  bool                   `json:"deprecated,omitempty"`
}

// Parameter describes a single operation parameter. Swagger 2 non-body
// parameters carry their type inline instead of in Schema.
type Parameter struct {
	Ref         string  `json:"$ref,omitempty"`
	Name        string  `json:"name,omitempty"`
	In          string  `json:"in,omitempty"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`

	Type             TypeList      `json:"type,omitempty"`
	Format           string        `json:"format,omitempty"`
	Items            *Schema       `json:"items,omitempty"`
	Enum             []interface{} `json:"enum,omitempty"`
	CollectionFormat string        `json:"collectionFormat,omitempty"`
}

// TypeSchema returns the schema describing the parameter value
func (p *Parameter) TypeSchema() *Schema {
	if p.Schema != nil {
		return p.Schema
	}
	return &Schema{
		Type:   p.Type,
		Format: p.Format,
		Items:  p.Items,
		Enum:   p.Enum,
	}
}

type RequestBody struct {
	Ref         string                  `json:"$ref,omitempty"`
	Description string                  `json:"description,omitempty"`
	Required    bool                    `json:"required,omitempty"`
	Content     *OrderedMap[*MediaType] `json:"content,omitempty"`
}

type MediaType struct {
	Schema *Schema `json:"schema,omitempty"`
}

type Response struct {
	Ref         string                  `json:"$ref,omitempty"`
	Description string                  `json:"description,omitempty"`
	Schema      *Schema                 `json:"schema,omitempty"`
	Content     *OrderedMap[*MediaType] `json:"content,omitempty"`
}

// PreferredMedia returns the application/json entry of content, or the first one
func PreferredMedia(content *OrderedMap[*MediaType]) (string, *MediaType) {
	if content.Len() == 0 {
		return "", nil
	}
	if mt, ok := content.Get("application/json"); ok {
		return "application/json", mt
	}
	first := content.Keys()[0]
	mt, _ := content.Get(first)
	return first, mt
}

// IsV3 reports whether the document is OpenAPI 3. A non-empty override wins.
func (d *Document) IsV3(override string) bool {
	version := override
	if version == "" {
		version = d.OpenAPI
	}
	if version == "" {
		version = d.Swagger
	}
	return strings.HasPrefix(strings.TrimSpace(version), "3")
}

// BasePath returns the path prefix requests are issued against, without a trailing slash
func (d *Document) BasePath() string {
	if d.SwaggerBasePath != "" {
		return strings.TrimRight(d.SwaggerBasePath, "/")
	}
	if len(d.Servers) == 0 {
		return ""
	}
	u, err := url.Parse(d.Servers[0].URL)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}

// Schemas returns the named schemas of the document
func (d *Document) Schemas(isV3 bool) *OrderedMap[*Schema] {
	if isV3 {
		if d.Components == nil || d.Components.Schemas == nil {
			return &OrderedMap[*Schema]{}
		}
		return d.Components.Schemas
	}
	if d.Definitions == nil {
		return &OrderedMap[*Schema]{}
	}
	return d.Definitions
}

// ResolveParameter follows a parameter $ref into the document's shared parameters
func (d *Document) ResolveParameter(p *Parameter) (*Parameter, error) {
	seen := map[string]bool{}
	for p != nil && p.Ref != "" {
		if seen[p.Ref] {
			return nil, fmt.Errorf("circular parameter reference %s", p.Ref)
		}
		seen[p.Ref] = true

		name := refName(p.Ref)
		var target *Parameter
		switch {
		case strings.HasPrefix(p.Ref, "#/components/parameters/") && d.Components != nil:
			target = d.Components.Parameters[name]
		case strings.HasPrefix(p.Ref, "#/parameters/"):
			target = d.Parameters[name]
		}
		if target == nil {
			return nil, fmt.Errorf("unresolved parameter reference %s", p.Ref)
		}
		p = target
	}
	return p, nil
}

// ResolveRequestBody follows a request body $ref into components.requestBodies
func (d *Document) ResolveRequestBody(b *RequestBody) (*RequestBody, error) {
	if b == nil || b.Ref == "" {
		return b, nil
	}
	if d.Components != nil {
		if target, ok := d.Components.RequestBodies[refName(b.Ref)]; ok && target.Ref == "" {
			return target, nil
		}
	}
	return nil, fmt.Errorf("unresolved request body reference %s", b.Ref)
}

// ResolveResponse follows a response $ref into the shared responses
func (d *Document) ResolveResponse(r *Response) (*Response, error) {
	if r == nil || r.Ref == "" {
		return r, nil
	}
	name := refName(r.Ref)
	var target *Response
	switch {
	case strings.HasPrefix(r.Ref, "#/components/responses/") && d.Components != nil:
		target = d.Components.Responses[name]
	case strings.HasPrefix(r.Ref, "#/responses/"):
		target = d.Responses[name]
	}
	if target == nil || target.Ref != "" {
		return nil, fmt.Errorf("unresolved response reference %s", r.Ref)
	}
	return target, nil
}

func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
