package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/osakka/axiosgen/pkg/openapi"
)

// BuiltinGenericTypes are declared by the definition header of every generated file
var BuiltinGenericTypes = []string{
	"IList", "List", "IDictionary", "Dictionary",
	"IListResult", "ListResultDto", "IPagedResult", "PagedResultDto",
}

// listLikeGenerics with one argument collapse to a TypeScript array
var listLikeGenerics = map[string]bool{
	"List": true, "IList": true, "Array": true, "Set": true,
	"ISet": true, "Collection": true, "ICollection": true, "Iterable": true, "IEnumerable": true,
}

// primitiveNames maps type names found inside generic definition names
var primitiveNames = map[string]string{
	"string": "string", "String": "string", "Guid": "string", "DateTime": "string",
	"int": "number", "Int": "number", "Int32": "number", "Int64": "number", "Integer": "number",
	"long": "number", "Long": "number", "double": "number", "Double": "number",
	"float": "number", "Float": "number", "Decimal": "number", "number": "number",
	"boolean": "boolean", "Boolean": "boolean", "bool": "boolean",
	"object": "any", "Object": "any",
}

// TypeRef is a TypeScript type expression plus the type names it references
type TypeRef struct {
	Type string
	Refs []string
}

// genericName is a parsed definition name such as PagedResultDto[List[UserDto]]
type genericName struct {
	Base string
	Args []genericName
}

var genericReplacer = strings.NewReplacer("«", "<", "»", ">", "[", "<", "]", ">")

func parseGenericName(name string) genericName {
	name = strings.TrimSpace(genericReplacer.Replace(name))
	open := strings.Index(name, "<")
	end := strings.LastIndex(name, ">")
	if open < 0 || end < open {
		return genericName{Base: name}
	}

	g := genericName{Base: strings.TrimSpace(name[:open])}
	for _, arg := range splitTopLevel(name[open+1 : end]) {
		if arg = strings.TrimSpace(arg); arg != "" {
			g.Args = append(g.Args, parseGenericName(arg))
		}
	}
	return g
}

// splitTopLevel splits s on commas that are not nested inside <>
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// IsGenericName reports whether a definition name carries type arguments
func IsGenericName(name string) bool {
	return len(parseGenericName(name).Args) > 0
}

func (g genericName) tsType(top bool) string {
	if len(g.Args) == 0 {
		if !top {
			if p, ok := primitiveNames[g.Base]; ok {
				return p
			}
		}
		return SanitizeTypeName(g.Base)
	}

	if listLikeGenerics[g.Base] && len(g.Args) == 1 {
		return arrayOf(g.Args[0].tsType(false))
	}

	args := make([]string, len(g.Args))
	for i, a := range g.Args {
		args[i] = a.tsType(false)
	}
	return SanitizeTypeName(g.Base) + "<" + strings.Join(args, ", ") + ">"
}

// isDefinition reports whether the name resolves to a declared definition
// rather than a primitive or a list of primitives
func (g genericName) isDefinition() bool {
	if len(g.Args) == 0 {
		_, primitive := primitiveNames[g.Base]
		return !primitive
	}
	if listLikeGenerics[g.Base] && len(g.Args) == 1 {
		return g.Args[0].isDefinition()
	}
	return true
}

func (g genericName) collectRefs(refs *set.Set[string], top bool) {
	if len(g.Args) == 0 {
		if _, primitive := primitiveNames[g.Base]; top || !primitive {
			refs.Insert(SanitizeTypeName(g.Base))
		}
		return
	}
	if !(listLikeGenerics[g.Base] && len(g.Args) == 1) {
		refs.Insert(SanitizeTypeName(g.Base))
	}
	for _, a := range g.Args {
		a.collectRefs(refs, false)
	}
}

// RefClassName maps a $ref (or a bare definition name) to its TypeScript type
func RefClassName(ref string) string {
	return parseGenericName(refName(ref)).tsType(true)
}

// ClassNameOf returns the declared name of a definition: the sanitized base
// name for generic definitions, the sanitized name otherwise
func ClassNameOf(definition string) string {
	return SanitizeTypeName(parseGenericName(definition).Base)
}

func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func arrayOf(t string) string {
	if strings.Contains(t, " | ") || strings.Contains(t, " & ") {
		return "(" + t + ")[]"
	}
	return t + "[]"
}

// Resolver maps schemas to TypeScript types
type Resolver struct {
	genericTypes     *set.Set[string]
	strictNullChecks bool
}

// NewResolver creates a resolver knowing the built-in generic types plus extra
func NewResolver(extraGenericTypes []string, strictNullChecks bool) *Resolver {
	generics := set.From[string](BuiltinGenericTypes)
	generics.InsertSlice(extraGenericTypes)
	return &Resolver{
		genericTypes:     generics,
		strictNullChecks: strictNullChecks,
	}
}

// IsDefinedGeneric reports whether name is declared outside the generated definitions
func (r *Resolver) IsDefinedGeneric(name string) bool {
	return r.genericTypes.Contains(name)
}

// GenericTypes returns the known generic type names in sorted order
func (r *Resolver) GenericTypes() []string {
	return sortedUnique(r.genericTypes.Slice())
}

// TypeOf returns the TypeScript type of s
func (r *Resolver) TypeOf(s *openapi.Schema) TypeRef {
	refs := set.New[string](4)
	t := r.typeOf(s, refs)
	return TypeRef{Type: t, Refs: sortedUnique(refs.Slice())}
}

func (r *Resolver) typeOf(s *openapi.Schema, refs *set.Set[string]) string {
	if s == nil {
		return "any"
	}

	t := r.baseTypeOf(s, refs)
	if r.strictNullChecks && s.IsNullable() && t != "any" && !strings.HasSuffix(t, " | null") {
		t += " | null"
	}
	return t
}

func (r *Resolver) baseTypeOf(s *openapi.Schema, refs *set.Set[string]) string {
	if s.Ref != "" {
		parseGenericName(refName(s.Ref)).collectRefs(refs, true)
		return RefClassName(s.Ref)
	}

	if members := firstNonEmpty(s.OneOf, s.AnyOf); len(members) > 0 {
		return joinTypes(r.memberTypes(members, refs), " | ")
	}

	if len(s.AllOf) > 0 {
		types := r.memberTypes(s.AllOf, refs)
		for i, t := range types {
			if strings.Contains(t, " | ") {
				types[i] = "(" + t + ")"
			}
		}
		return joinTypes(types, " & ")
	}

	if len(s.Enum) > 0 {
		return EnumLiteralUnion(s.Enum)
	}

	switch s.TypeName() {
	case "string":
		if s.Format == "binary" {
			return "any"
		}
		return "string"
	case "integer", "number":
		return "number"
	case "boolean":
		return "boolean"
	case "file":
		return "any"
	case "array":
		if s.Items == nil {
			return "any[]"
		}
		return arrayOf(r.typeOf(s.Items, refs))
	case "object", "":
		if s.Properties.Len() > 0 {
			return r.inlineObject(s, refs)
		}
		if ap := s.AdditionalProperties; ap != nil && ap.Schema != nil {
			return "Record<string, " + r.typeOf(ap.Schema, refs) + ">"
		}
		if s.TypeName() == "" && s.Items != nil {
			return arrayOf(r.typeOf(s.Items, refs))
		}
		return "any"
	}
	return "any"
}

func (r *Resolver) memberTypes(members []*openapi.Schema, refs *set.Set[string]) []string {
	types := make([]string, 0, len(members))
	for _, m := range members {
		types = append(types, r.typeOf(m, refs))
	}
	return types
}

// inlineObject renders an anonymous object type literal
func (r *Resolver) inlineObject(s *openapi.Schema, refs *set.Set[string]) string {
	fields := make([]string, 0, s.Properties.Len())
	for _, name := range s.Properties.Keys() {
		prop, _ := s.Properties.Get(name)
		marker := ""
		if r.strictNullChecks && !s.IsRequired(name) {
			marker = "?"
		}
		fields = append(fields, PropertyKey(name)+marker+": "+r.typeOf(prop, refs))
	}
	return "{ " + strings.Join(fields, "; ") + " }"
}

// EnumLiteralUnion renders enum values as a union of literals: 'a' | 'b' | 1
func EnumLiteralUnion(values []interface{}) string {
	literals := make([]string, 0, len(values))
	for _, v := range values {
		literals = append(literals, enumLiteral(v))
	}
	return joinTypes(literals, " | ")
}

func enumLiteral(v interface{}) string {
	switch val := v.(type) {
	case string:
		return Quote(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "null"
	}
	return Quote(fmt.Sprint(v))
}

// joinTypes joins types with sep, dropping duplicates and keeping order
func joinTypes(types []string, sep string) string {
	seen := make(map[string]bool, len(types))
	unique := types[:0:0]
	for _, t := range types {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}
	if len(unique) == 0 {
		return "any"
	}
	return strings.Join(unique, sep)
}

func firstNonEmpty(lists ...[]*openapi.Schema) []*openapi.Schema {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}
