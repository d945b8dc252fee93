// Package templates renders the codegen intermediate representation into
// TypeScript source text.
package templates

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/osakka/axiosgen/pkg/codegen"
	"github.com/osakka/axiosgen/pkg/config"
	cgerrors "github.com/osakka/axiosgen/pkg/errors"
)

// Renderer renders services, models and enums with the configured options
type Renderer struct {
	opts      *config.Options
	templates map[string]*template.Template
}

// New creates a renderer for opts
func New(opts *config.Options) *Renderer {
	r := &Renderer{
		opts:      opts,
		templates: make(map[string]*template.Template),
	}
	r.loadTemplates()
	return r
}

func (r *Renderer) loadTemplates() {
	parse := func(name, text string) {
		r.templates[name] = template.Must(template.New(name).Funcs(funcMap).Parse(text))
	}
	parse("request", requestTemplate)
	parse("service", serviceTemplate)
	parse("interface", interfaceTemplate)
	parse("class", classTemplate)
	parse("enum", enumTemplate)
	parse("union", unionTemplate)
	parse("definition_header", definitionHeaderTemplate)
}

var funcMap = template.FuncMap{
	"quote":       codegen.Quote,
	"propertyKey": codegen.PropertyKey,
	"comment":     comment,
	"join":        strings.Join,
	"validation":  validationLiteral,
	"union":       unionOf,
}

func (r *Renderer) execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.templates[name].Execute(&buf, data); err != nil {
		return "", cgerrors.Wrap(err, cgerrors.CategoryTemplate, "render_"+name, "template execution failed")
	}
	return buf.String(), nil
}

type requestData struct {
	*codegen.Request
	Static       bool
	AllOptional  bool
	URLEncoded   bool
	PathParams   []codegen.Param
	QueryParams  []codegen.Param
	HeaderParams []codegen.Param
	FormParams   []codegen.Param
}

// Request renders one request method of a service class
func (r *Renderer) Request(req *codegen.Request) (string, error) {
	data := requestData{
		Request:      req,
		Static:       r.opts.UseStaticMethod,
		AllOptional:  true,
		URLEncoded:   req.ContentType == "application/x-www-form-urlencoded",
		PathParams:   req.ParamsIn(codegen.InPath),
		QueryParams:  req.ParamsIn(codegen.InQuery),
		HeaderParams: req.ParamsIn(codegen.InHeader),
		FormParams:   req.ParamsIn(codegen.InFormData),
	}
	for _, p := range req.Params {
		if p.Required {
			data.AllOptional = false
		}
	}
	if req.Body != nil && req.Body.Required {
		data.AllOptional = false
	}
	return r.execute("request", data)
}

// Service renders a service class with every request method
func (r *Renderer) Service(svc *codegen.Service) (string, error) {
	var body strings.Builder
	for _, req := range svc.Requests {
		text, err := r.Request(req)
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", svc.ClassName, req.Name, err)
		}
		body.WriteString(text)
	}
	return r.execute("service", map[string]string{
		"ClassName": svc.ClassName,
		"Body":      body.String(),
	})
}

type modelData struct {
	*codegen.Model
	Strict          bool
	Transformer     bool
	ValidationModel bool
	Super           string
}

// Model renders m as an interface or a class depending on the model mode
func (r *Renderer) Model(m *codegen.Model) (string, error) {
	data := modelData{
		Model:           m,
		Strict:          r.opts.StrictNullChecks,
		Transformer:     r.opts.UseClassTransformer,
		ValidationModel: r.opts.GenerateValidationModel,
	}
	if r.opts.ModelMode != config.ModelModeClass {
		return r.execute("interface", data)
	}
	// a class can only extend one base; the rest stay type-only
	if len(m.Extends) > 0 {
		data.Super = m.Extends[0]
	}
	return r.execute("class", data)
}

// Enum renders e as an enum or a union type alias
func (r *Renderer) Enum(e *codegen.Enum) (string, error) {
	if e.Kind == codegen.EnumUnion {
		return r.execute("union", e)
	}
	return r.execute("enum", e)
}

// Definitions renders every model followed by every enum
func (r *Renderer) Definitions(defs *codegen.Definitions) (string, error) {
	var sb strings.Builder
	for _, m := range defs.Models {
		text, err := r.Model(m)
		if err != nil {
			return "", fmt.Errorf("model %s: %w", m.Name, err)
		}
		sb.WriteString(text)
	}
	for _, e := range defs.Enums {
		text, err := r.Enum(e)
		if err != nil {
			return "", fmt.Errorf("enum %s: %w", e.Name, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// DefinitionHeader renders the generic helper types, followed by the content
// of the extend definition file when one is given
func (r *Renderer) DefinitionHeader(extend string) (string, error) {
	return r.execute("definition_header", map[string]interface{}{
		"ClassTransformer": r.opts.UseClassTransformer && r.opts.ModelMode == config.ModelModeClass,
		"Extend":           strings.TrimSpace(extend),
	})
}

// ServiceHeader returns the runtime helpers shared by every service
func (r *Renderer) ServiceHeader() string {
	if r.opts.UseCustomerRequestInstance {
		return customerServiceHeader
	}
	return serviceHeader
}

// comment flattens text for a single line JSDoc comment
func comment(s string) string {
	s = strings.ReplaceAll(s, "*/", "*\\/")
	return strings.Join(strings.Fields(s), " ")
}

func validationLiteral(v codegen.Validation) string {
	var rules []string
	if v.Required {
		rules = append(rules, "required: true")
	}
	if v.MinLength != nil {
		rules = append(rules, "minLength: "+strconv.FormatInt(*v.MinLength, 10))
	}
	if v.MaxLength != nil {
		rules = append(rules, "maxLength: "+strconv.FormatInt(*v.MaxLength, 10))
	}
	if v.Minimum != nil {
		rules = append(rules, "minimum: "+strconv.FormatFloat(*v.Minimum, 'f', -1, 64))
	}
	if v.Maximum != nil {
		rules = append(rules, "maximum: "+strconv.FormatFloat(*v.Maximum, 'f', -1, 64))
	}
	if v.Pattern != "" {
		rules = append(rules, "pattern: /"+strings.ReplaceAll(v.Pattern, "/", `\/`)+"/")
	}
	return strings.Join(rules, ", ")
}

func unionOf(members []codegen.EnumMember) string {
	values := make([]string, 0, len(members))
	for _, m := range members {
		values = append(values, m.Value)
	}
	if len(values) == 0 {
		return "never"
	}
	return strings.Join(values, " | ")
}
