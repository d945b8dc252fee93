package codegen

import (
	"github.com/osakka/axiosgen/pkg/openapi"
)

// buildEnum picks the enum rendering from the value types: string values
// become an enum, numeric values with x-enumNames a named enum, and
// everything else a union type
func buildEnum(name string, s *openapi.Schema) *Enum {
	e := &Enum{
		Name:        name,
		Description: s.Description,
	}

	switch {
	case allStrings(s.Enum):
		e.Kind = EnumString
		seen := make(map[string]bool, len(s.Enum))
		for _, v := range s.Enum {
			value := v.(string)
			if seen[value] {
				continue
			}
			seen[value] = true
			e.Members = append(e.Members, EnumMember{Key: PropertyKey(value), Value: Quote(value)})
		}
	case len(s.EnumNames) == len(s.Enum) && allNumbers(s.Enum):
		e.Kind = EnumNamed
		for i, v := range s.Enum {
			e.Members = append(e.Members, EnumMember{Key: PropertyKey(s.EnumNames[i]), Value: enumLiteral(v)})
		}
	default:
		e.Kind = EnumUnion
		seen := make(map[string]bool, len(s.Enum))
		for _, v := range s.Enum {
			literal := enumLiteral(v)
			if seen[literal] {
				continue
			}
			seen[literal] = true
			e.Members = append(e.Members, EnumMember{Value: literal})
		}
	}
	return e
}

func allStrings(values []interface{}) bool {
	for _, v := range values {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return len(values) > 0
}

func allNumbers(values []interface{}) bool {
	for _, v := range values {
		if _, ok := v.(float64); !ok {
			return false
		}
	}
	return len(values) > 0
}
