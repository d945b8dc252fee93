package codegen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/osakka/axiosgen/pkg/config"
	cgerrors "github.com/osakka/axiosgen/pkg/errors"
	"github.com/osakka/axiosgen/pkg/openapi"
)

const (
	contentTypeJSON      = "application/json"
	contentTypeMultipart = "multipart/form-data"
	contentTypeForm      = "application/x-www-form-urlencoded"
)

var versionSegment = regexp.MustCompile(`^[vV]\d+(\.\d+)*$`)

// BuildRequests groups every operation of doc into services, in document order
func (b *Builder) BuildRequests(doc *openapi.Document, isV3 bool) ([]*Service, error) {
	var services []*Service
	byName := make(map[string]*Service)
	taken := make(map[string]map[string]bool)
	skipped := 0

	for _, path := range doc.Paths.Keys() {
		if !MatchesURLFilters(b.opts.URLFilters, path) {
			skipped++
			continue
		}
		item, _ := doc.Paths.Get(path)
		if item == nil {
			continue
		}

		for _, mo := range item.Operations {
			op := mo.Operation
			if op == nil {
				continue
			}

			className := ServiceName(op.Tags, path)
			if taken[className] == nil {
				taken[className] = make(map[string]bool)
			}
			// filtered operations keep their suffix so Pet.getPet2 selects the second getPet
			name := uniqueName(b.methodName(mo.Method, path, op), taken[className])
			taken[className][name] = true
			if !b.include.Allows(className, name) {
				skipped++
				continue
			}

			req, err := b.buildRequest(doc, isV3, path, mo.Method, item, op)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(mo.Method), path, err)
			}

			svc, ok := byName[className]
			if !ok {
				svc = &Service{Name: className, ClassName: className + b.opts.ServiceNameSuffix}
				byName[className] = svc
				services = append(services, svc)
			}
			req.Name = name
			svc.Requests = append(svc.Requests, req)

			b.logger.Trace("request_built",
				"service", svc.ClassName,
				"method", req.Name,
				"path", path)
		}
	}

	b.logger.Debug("requests_built",
		"services", len(services),
		"skipped", skipped)

	return services, nil
}

// ServiceName returns the class name (without suffix) an operation belongs to
func ServiceName(tags []string, path string) string {
	if len(tags) > 0 {
		if name := PascalCase(tags[0]); name != "" {
			return name
		}
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") || strings.EqualFold(seg, "api") || versionSegment.MatchString(seg) {
			continue
		}
		if name := PascalCase(seg); name != "" {
			return name
		}
	}
	return "Default"
}

func (b *Builder) methodName(method, path string, op *openapi.Operation) string {
	if b.opts.MethodNameMode == config.MethodNameOperationID {
		if name := CamelCase(op.OperationID); name != "" {
			return name
		}
	}
	return PathMethodName(method, path)
}

// PathMethodName derives a method name from the HTTP method and path:
// GET /api/users/{id} -> getApiUsersById
func PathMethodName(method, path string) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			sb.WriteString("By")
			sb.WriteString(PascalCase(seg[1 : len(seg)-1]))
			continue
		}
		sb.WriteString(PascalCase(seg))
	}
	return sb.String()
}

func (b *Builder) buildRequest(doc *openapi.Document, isV3 bool, path, method string, item *openapi.PathItem, op *openapi.Operation) (*Request, error) {
	req := &Request{
		OperationID: op.OperationID,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
		ContentType: contentTypeJSON,
	}
	imports := set.New[string](8)

	params, err := mergeParameters(doc, item.Parameters, op.Parameters)
	if err != nil {
		return nil, err
	}

	// body is the request body field of the generated options object
	names := map[string]bool{"body": true}
	for _, p := range params {
		switch p.In {
		case InBody:
			t := b.resolver.TypeOf(p.TypeSchema())
			req.Body = &Body{Type: t.Type, Required: p.Required, Description: p.Description}
			imports.InsertSlice(t.Refs)
			continue
		case InCookie:
			continue
		case InHeader:
			if !b.opts.UseHeaderParameters {
				continue
			}
		}

		t := b.resolver.TypeOf(p.TypeSchema())
		imports.InsertSlice(t.Refs)
		req.Params = append(req.Params, b.newParam(p.Name, p.In, t.Type, p.Required || p.In == InPath, p.Description, names))
	}

	if isV3 && op.RequestBody != nil {
		if err := b.applyRequestBody(doc, req, op.RequestBody, imports, names); err != nil {
			return nil, err
		}
	}
	if !isV3 {
		req.ContentType = swaggerContentType(doc, op, req.IsFormData())
	}

	resp, err := b.responseType(doc, isV3, op)
	if err != nil {
		return nil, err
	}
	req.ResponseType = resp.Type
	imports.InsertSlice(resp.Refs)

	req.Imports = sortedUnique(imports.Slice())
	return req, nil
}

func (b *Builder) newParam(wire, in, tsType string, required bool, description string, names map[string]bool) Param {
	name := CamelCase(wire)
	if name == "" {
		name = "param"
	}
	name = uniqueName(name, names)
	names[name] = true

	return Param{
		Name:        name,
		WireName:    wire,
		In:          in,
		Type:        tsType,
		Required:    required,
		Description: description,
	}
}

// mergeParameters resolves path level and operation parameters; the
// operation wins when both declare the same name and location
func mergeParameters(doc *openapi.Document, shared, own []*openapi.Parameter) ([]*openapi.Parameter, error) {
	var merged []*openapi.Parameter
	index := make(map[string]int)

	for _, list := range [][]*openapi.Parameter{shared, own} {
		for _, raw := range list {
			p, err := doc.ResolveParameter(raw)
			if err != nil {
				return nil, cgerrors.Wrap(err, cgerrors.CategoryReference, "resolve_parameter", "cannot resolve parameter")
			}
			if p == nil {
				continue
			}
			key := p.In + ":" + p.Name
			if i, ok := index[key]; ok {
				merged[i] = p
				continue
			}
			index[key] = len(merged)
			merged = append(merged, p)
		}
	}
	return merged, nil
}

// applyRequestBody types an OpenAPI 3 request body. Form media types with an
// object schema are exploded into form data parameters.
func (b *Builder) applyRequestBody(doc *openapi.Document, req *Request, raw *openapi.RequestBody, imports *set.Set[string], names map[string]bool) error {
	body, err := doc.ResolveRequestBody(raw)
	if err != nil {
		return cgerrors.Wrap(err, cgerrors.CategoryReference, "resolve_request_body", "cannot resolve request body")
	}

	mediaType, media := openapi.PreferredMedia(body.Content)
	if media == nil {
		return nil
	}
	req.ContentType = mediaType

	if mediaType == contentTypeMultipart || mediaType == contentTypeForm {
		if obj := formObject(doc, media.Schema); obj != nil {
			for _, name := range obj.Properties.Keys() {
				prop, _ := obj.Properties.Get(name)
				t := b.resolver.TypeOf(prop)
				imports.InsertSlice(t.Refs)
				req.Params = append(req.Params, b.newParam(name, InFormData, t.Type, obj.IsRequired(name), prop.Description, names))
			}
			return nil
		}
	}

	if media.Schema == nil {
		return nil
	}
	t := b.resolver.TypeOf(media.Schema)
	imports.InsertSlice(t.Refs)
	req.Body = &Body{Type: t.Type, Required: body.Required, Description: body.Description}
	return nil
}

// formObject returns the object schema behind s, following one local $ref
func formObject(doc *openapi.Document, s *openapi.Schema) *openapi.Schema {
	if s == nil {
		return nil
	}
	if s.Ref != "" {
		target, ok := doc.Schemas(true).Get(refName(s.Ref))
		if !ok {
			return nil
		}
		s = target
	}
	if s.Properties.Len() == 0 {
		return nil
	}
	return s
}

func swaggerContentType(doc *openapi.Document, op *openapi.Operation, hasForm bool) string {
	consumes := op.Consumes
	if len(consumes) == 0 {
		consumes = doc.Consumes
	}

	ct := contentTypeJSON
	if len(consumes) > 0 {
		ct = consumes[0]
	}
	if hasForm && ct != contentTypeMultipart && ct != contentTypeForm {
		return contentTypeMultipart
	}
	return ct
}

func (b *Builder) responseType(doc *openapi.Document, isV3 bool, op *openapi.Operation) (TypeRef, error) {
	code := successResponseCode(op.Responses)
	if code == "" {
		return TypeRef{Type: "any"}, nil
	}

	resp, _ := op.Responses.Get(code)
	resp, err := doc.ResolveResponse(resp)
	if err != nil {
		return TypeRef{}, cgerrors.Wrap(err, cgerrors.CategoryReference, "resolve_response", "cannot resolve response "+code)
	}
	if resp == nil {
		return TypeRef{Type: "any"}, nil
	}

	schema := resp.Schema
	if isV3 {
		if _, media := openapi.PreferredMedia(resp.Content); media != nil && media.Schema != nil {
			schema = media.Schema
		}
	}
	if schema == nil {
		return TypeRef{Type: "any"}, nil
	}
	return b.resolver.TypeOf(schema), nil
}

// successResponseCode picks 200, then 201, then the lowest other 2xx, then default
func successResponseCode(responses *openapi.OrderedMap[*openapi.Response]) string {
	codes := set.From[string](responses.Keys())
	for _, c := range []string{"200", "201"} {
		if codes.Contains(c) {
			return c
		}
	}

	var others []string
	for _, c := range responses.Keys() {
		if len(c) == 3 && c[0] == '2' {
			others = append(others, c)
		}
	}
	if len(others) > 0 {
		sort.Strings(others)
		return others[0]
	}

	if codes.Contains("default") {
		return "default"
	}
	return ""
}
