// Package codegen builds the intermediate representation rendered into
// TypeScript: services with their requests, models and enums.
package codegen

// Parameter locations
const (
	InPath     = "path"
	InQuery    = "query"
	InHeader   = "header"
	InFormData = "formData"
	InBody     = "body"
	InCookie   = "cookie"
)

// Service groups the requests sharing a tag
type Service struct {
	Name      string
	ClassName string
	Requests  []*Request
}

// Imports returns the type names referenced by the service's requests
func (s *Service) Imports() []string {
	var names []string
	for _, r := range s.Requests {
		names = append(names, r.Imports...)
	}
	return sortedUnique(names)
}

// Request is one generated request method
type Request struct {
	Name        string
	OperationID string
	Method      string
	Path        string
	Summary     string
	Description string
	Deprecated  bool

	Params       []Param
	Body         *Body
	ContentType  string
	ResponseType string
	Imports      []string
}

// Param is a single request parameter
type Param struct {
	Name        string
	WireName    string
	In          string
	Type        string
	Required    bool
	Description string
}

// Body is the request payload sent as configs.data
type Body struct {
	Type        string
	Required    bool
	Description string
}

// ParamsIn returns the parameters located in in, preserving order
func (r *Request) ParamsIn(in string) []Param {
	var out []Param
	for _, p := range r.Params {
		if p.In == in {
			out = append(out, p)
		}
	}
	return out
}

// IsFormData reports whether the request body is built as FormData
func (r *Request) IsFormData() bool {
	return len(r.ParamsIn(InFormData)) > 0
}

// HasParams reports whether the generated method takes a params object
func (r *Request) HasParams() bool {
	return len(r.Params) > 0 || r.Body != nil
}

// Model is a generated interface or class
type Model struct {
	Name          string
	GenericParams []string
	Extends       []string
	Properties    []Property
	Description   string
	Imports       []string
}

// Declaration returns the model name with its type parameters: PagedResult<T>
func (m *Model) Declaration() string {
	if len(m.GenericParams) == 0 {
		return m.Name
	}
	decl := m.Name + "<"
	for i, p := range m.GenericParams {
		if i > 0 {
			decl += ", "
		}
		decl += p + " = any"
	}
	return decl + ">"
}

// Property is one model property
type Property struct {
	Name        string
	Type        string
	Required    bool
	Nullable    bool
	Description string
	Format      string

	// TransformType is the model class class-transformer instantiates, empty for primitives and enums
	TransformType string
	Validation    Validation

	refs []string
}

// Validation holds the constraints emitted into a class validation model
type Validation struct {
	Required  bool
	MinLength *int64
	MaxLength *int64
	Minimum   *float64
	Maximum   *float64
	Pattern   string
}

// IsEmpty reports whether no constraint is set
func (v Validation) IsEmpty() bool {
	return !v.Required && v.MinLength == nil && v.MaxLength == nil &&
		v.Minimum == nil && v.Maximum == nil && v.Pattern == ""
}

// EnumKind selects how an enum is rendered
type EnumKind int

const (
	// EnumString renders export enum with string values
	EnumString EnumKind = iota
	// EnumNamed renders export enum with x-enumNames keys and numeric values
	EnumNamed
	// EnumUnion renders a union type alias
	EnumUnion
)

// Enum is a generated enum or literal union type
type Enum struct {
	Name        string
	Kind        EnumKind
	Members     []EnumMember
	Description string
}

// EnumMember is a single enum entry; Value is a TypeScript literal
type EnumMember struct {
	Key   string
	Value string
}

// Definitions holds every generated model and enum in document order
type Definitions struct {
	Models []*Model
	Enums  []*Enum
}

// Names returns the names of every model and enum
func (d *Definitions) Names() []string {
	names := make([]string, 0, len(d.Models)+len(d.Enums))
	for _, m := range d.Models {
		names = append(names, m.Name)
	}
	for _, e := range d.Enums {
		names = append(names, e.Name)
	}
	return names
}
