package codegen

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/osakka/axiosgen/pkg/openapi"
)

type definitionsBuilder struct {
	b        *Builder
	defs     *Definitions
	declared map[string]bool
	// reserved holds every top-level class name plus the inline enums
	// declared so far; inline enums never take a top-level name
	reserved map[string]bool
}

// BuildDefinitions walks the named schemas in order and produces models and enums
func (b *Builder) BuildDefinitions(schemas *openapi.OrderedMap[*openapi.Schema]) (*Definitions, error) {
	d := &definitionsBuilder{
		b:        b,
		defs:     &Definitions{},
		declared: make(map[string]bool),
		reserved: make(map[string]bool),
	}
	generics := d.reserve(schemas)

	for _, name := range schemas.Keys() {
		schema, _ := schemas.Get(name)
		if schema == nil {
			continue
		}

		g := parseGenericName(name)
		if len(g.Args) > 0 {
			base := ClassNameOf(name)
			if b.resolver.IsDefinedGeneric(base) || d.declared[base] || generics[base] != name {
				continue
			}
			d.declared[base] = true
			model := d.buildModel(base, schema)
			genericize(model, g)
			d.defs.Models = append(d.defs.Models, model)
			continue
		}

		className := RefClassName(name)
		if d.declared[className] {
			b.logger.Warn("duplicate_definition_skipped", "definition", name, "class_name", className)
			continue
		}
		d.declared[className] = true

		if len(schema.Enum) > 0 {
			d.defs.Enums = append(d.defs.Enums, buildEnum(className, schema))
			continue
		}
		d.defs.Models = append(d.defs.Models, d.buildModel(className, schema))
	}

	d.finalize()

	b.logger.Debug("definitions_built",
		"models", len(d.defs.Models),
		"enums", len(d.defs.Enums))

	return d.defs, nil
}

// reserve records the class name of every definition and picks, for each
// generic base, the instance the generic model is built from: the first one
// with a definition as type argument, else the first one
func (d *definitionsBuilder) reserve(schemas *openapi.OrderedMap[*openapi.Schema]) map[string]string {
	generics := make(map[string]string)
	for _, name := range schemas.Keys() {
		if schema, _ := schemas.Get(name); schema == nil {
			continue
		}
		g := parseGenericName(name)
		if len(g.Args) == 0 {
			d.reserved[RefClassName(name)] = true
			continue
		}
		base := ClassNameOf(name)
		d.reserved[base] = true
		chosen, ok := generics[base]
		if !ok || (!hasDefinitionArg(parseGenericName(chosen)) && hasDefinitionArg(g)) {
			generics[base] = name
		}
	}
	return generics
}

func (d *definitionsBuilder) buildModel(name string, schema *openapi.Schema) *Model {
	m := &Model{
		Name:        name,
		Description: schema.Description,
	}

	for _, member := range schema.AllOf {
		if member == nil {
			continue
		}
		if member.Ref != "" {
			m.Extends = append(m.Extends, RefClassName(member.Ref))
			continue
		}
		d.addProperties(m, member, schema)
	}
	d.addProperties(m, schema, nil)

	m.Imports = modelImports(m, extendsRefs(m))
	return m
}

// addProperties copies the properties of s into m. parent is the schema
// holding s in its allOf list, its required list applies to s as well.
func (d *definitionsBuilder) addProperties(m *Model, s, parent *openapi.Schema) {
	resolver := d.b.resolver
	for _, propName := range s.Properties.Keys() {
		prop, _ := s.Properties.Get(propName)
		if prop == nil {
			prop = &openapi.Schema{}
		}
		required := s.IsRequired(propName) || parent.IsRequired(propName)

		p := Property{
			Name:        propName,
			Required:    required,
			Nullable:    prop.IsNullable(),
			Description: prop.Description,
			Format:      prop.Format,
			Validation:  validationOf(prop, required),
		}

		switch {
		case len(prop.Enum) > 0 && prop.Ref == "":
			p.Type = d.inlineEnum(m.Name, propName, prop)
			p.refs = []string{p.Type}
		case prop.TypeName() == "array" && prop.Items != nil && prop.Items.Ref == "" && len(prop.Items.Enum) > 0:
			enumName := d.inlineEnum(m.Name, propName, prop.Items)
			p.Type = enumName + "[]"
			p.refs = []string{enumName}
		default:
			t := resolver.TypeOf(prop)
			p.Type = t.Type
			p.refs = t.Refs
			p.TransformType = transformTarget(prop)
		}
		// the resolver marks nullable types itself; inline enums are named here
		if p.Nullable && d.b.opts.StrictNullChecks && p.TransformType == "" && !strings.HasSuffix(p.Type, " | null") && p.Type != "any" {
			p.Type += " | null"
		}

		replaced := false
		for i := range m.Properties {
			if m.Properties[i].Name == propName {
				m.Properties[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			m.Properties = append(m.Properties, p)
		}
	}
}

// inlineEnum declares the enum of a model property and returns its name
func (d *definitionsBuilder) inlineEnum(model, property string, s *openapi.Schema) string {
	name := uniqueName(d.b.opts.EnumNamePrefix+model+PascalCase(property), d.reserved)
	d.reserved[name] = true
	d.declared[name] = true
	d.defs.Enums = append(d.defs.Enums, buildEnum(name, s))
	return name
}

// finalize drops class-transformer targets that are not generated classes
func (d *definitionsBuilder) finalize() {
	models := make(map[string]bool, len(d.defs.Models))
	for _, m := range d.defs.Models {
		models[m.Name] = true
	}
	for _, m := range d.defs.Models {
		for i := range m.Properties {
			if !models[m.Properties[i].TransformType] {
				m.Properties[i].TransformType = ""
			}
		}
	}
}

func modelImports(m *Model, extra []string) []string {
	refs := set.From[string](extra)
	for _, p := range m.Properties {
		refs.InsertSlice(p.refs)
	}
	refs.Remove(m.Name)
	return sortedUnique(refs.Slice())
}

// genericize turns the model built from a generic definition such as
// ResultDto[UserDto] into ResultDto<T>, replacing the concrete type argument.
// Primitive arguments are left alone: a string property cannot be told apart
// from the argument in ResultDto[String].
func genericize(m *Model, g genericName) {
	params := []string{"T"}
	if len(g.Args) > 1 {
		params = make([]string, len(g.Args))
		for i := range g.Args {
			params[i] = "T" + strconv.Itoa(i+1)
		}
	}
	m.GenericParams = params

	for i := range m.Properties {
		p := &m.Properties[i]
		for j, arg := range g.Args {
			if !arg.isDefinition() {
				continue
			}
			argType := arg.tsType(false)
			switch p.Type {
			case argType, argType + " | null":
				p.Type = params[j]
			case arrayOf(argType), arrayOf(argType) + " | null":
				p.Type = params[j] + "[]"
			default:
				continue
			}
			p.refs = nil
			p.TransformType = ""
			break
		}
	}
	m.Imports = modelImports(m, extendsRefs(m))
}

func hasDefinitionArg(g genericName) bool {
	for _, arg := range g.Args {
		if arg.isDefinition() {
			return true
		}
	}
	return false
}

func extendsRefs(m *Model) []string {
	refs := set.New[string](len(m.Extends))
	for _, e := range m.Extends {
		parseGenericName(e).collectRefs(refs, true)
	}
	return refs.Slice()
}

// transformTarget returns the class a property instantiates through class-transformer
func transformTarget(s *openapi.Schema) string {
	switch {
	case s.Ref != "":
		return ClassNameOf(refName(s.Ref))
	case s.TypeName() == "array" && s.Items != nil && s.Items.Ref != "":
		return ClassNameOf(refName(s.Items.Ref))
	}
	return ""
}

func validationOf(s *openapi.Schema, required bool) Validation {
	return Validation{
		Required:  required,
		MinLength: s.MinLength,
		MaxLength: s.MaxLength,
		Minimum:   s.Minimum,
		Maximum:   s.Maximum,
		Pattern:   s.Pattern,
	}
}
