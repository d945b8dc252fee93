package openapi

import (
	"encoding/json"
	"fmt"
)

// Schema is the subset of JSON Schema used by OpenAPI 3 and Swagger 2
type Schema struct {
	Ref         string        `json:"$ref,omitempty"`
	Type        TypeList      `json:"type,omitempty"`
	Format      string        `json:"format,omitempty"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Enum        []interface{} `json:"enum,omitempty"`
	EnumNames   []string      `json:"x-enumNames,omitempty"`
	Default     interface{}   `json:"default,omitempty"`

	Items                *Schema               `json:"items,omitempty"`
	Properties           *OrderedMap[*Schema]  `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	AdditionalProperties *AdditionalProperties `json:"additionalProperties,omitempty"`

	AllOf []*Schema `json:"allOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`

	Nullable  bool `json:"nullable,omitempty"`
	XNullable bool `json:"x-nullable,omitempty"`
	ReadOnly  bool `json:"readOnly,omitempty"`

	MinLength *int64   `json:"minLength,omitempty"`
	MaxLength *int64   `json:"maxLength,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// TypeName returns the schema's primary type, ignoring "null"
func (s *Schema) TypeName() string {
	if s == nil {
		return ""
	}
	return s.Type.Primary()
}

// IsNullable reports whether null is an accepted value
func (s *Schema) IsNullable() bool {
	return s != nil && (s.Nullable || s.XNullable || s.Type.Has("null"))
}

// IsRequired reports whether property is listed in required
func (s *Schema) IsRequired(property string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == property {
			return true
		}
	}
	return false
}

// TypeList is a schema type. OpenAPI 3.1 allows a list such as ["string", "null"].
type TypeList []string

func (t *TypeList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*t = nil
		} else {
			*t = TypeList{single}
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("type must be a string or a list of strings: %w", err)
	}
	*t = list
	return nil
}

func (t TypeList) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Primary returns the first type that is not "null"
func (t TypeList) Primary() string {
	for _, name := range t {
		if name != "null" {
			return name
		}
	}
	return ""
}

// Has reports whether name is one of the types
func (t TypeList) Has(name string) bool {
	for _, n := range t {
		if n == name {
			return true
		}
	}
	return false
}

// AdditionalProperties is either a boolean or a schema
type AdditionalProperties struct {
	Allowed bool
	Schema  *Schema
}

func (a *AdditionalProperties) UnmarshalJSON(data []byte) error {
	var allowed bool
	if err := json.Unmarshal(data, &allowed); err == nil {
		a.Allowed = allowed
		return nil
	}

	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return err
	}
	a.Allowed = true
	a.Schema = &schema
	return nil
}

func (a AdditionalProperties) MarshalJSON() ([]byte, error) {
	if a.Schema != nil {
		return json.Marshal(a.Schema)
	}
	return json.Marshal(a.Allowed)
}
