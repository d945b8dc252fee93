package generator

import (
	"strings"

	"github.com/osakka/axiosgen/pkg/codegen"
	"github.com/osakka/axiosgen/pkg/config"
	"github.com/osakka/axiosgen/pkg/templates"
	"github.com/osakka/axiosgen/pkg/writer"
)

const (
	defsFileName           = "index.defs.ts"
	serviceOptionsFileName = "serviceOptions.ts"
)

// layout arranges rendered sections into output files
type layout struct {
	opts     *config.Options
	renderer *templates.Renderer
	resolver *codegen.Resolver
	basePath string
	extend   string
	services []*codegen.Service
	defs     *codegen.Definitions
}

func (l *layout) singleFile() ([]writer.File, error) {
	var sb strings.Builder
	sb.WriteString(templates.Banner)

	var files []writer.File
	if l.opts.SharedServiceOptions {
		sb.WriteString(templates.ImportLine(templates.RuntimeNames, "./serviceOptions"))
		files = append(files, l.serviceOptionsFile())
	} else {
		sb.WriteString(l.renderer.ServiceHeader())
	}
	sb.WriteString(templates.BasePath(l.basePath))

	header, err := l.renderer.DefinitionHeader(l.extend)
	if err != nil {
		return nil, err
	}
	sb.WriteString(header)

	for _, svc := range l.services {
		text, err := l.renderer.Service(svc)
		if err != nil {
			return nil, err
		}
		sb.WriteString(text)
	}

	defs, err := l.renderer.Definitions(l.defs)
	if err != nil {
		return nil, err
	}
	sb.WriteString(defs)

	main := writer.File{Name: l.opts.FileName, Content: sb.String()}
	return append([]writer.File{main}, files...), nil
}

func (l *layout) multipleFiles() ([]writer.File, error) {
	files := make([]writer.File, 0, len(l.services)+2)

	for _, svc := range l.services {
		text, err := l.renderer.Service(svc)
		if err != nil {
			return nil, err
		}
		imports := templates.ImportLine(templates.RuntimeNames, "./serviceOptions") +
			templates.ImportLine(l.definitionImports(svc), "./index.defs")
		files = append(files, writer.File{
			Name:    svc.Name + "Service.ts",
			Content: templates.Banner + imports + text,
		})
	}

	header, err := l.renderer.DefinitionHeader(l.extend)
	if err != nil {
		return nil, err
	}
	defs, err := l.renderer.Definitions(l.defs)
	if err != nil {
		return nil, err
	}
	files = append(files,
		writer.File{Name: defsFileName, Content: templates.Banner + templates.BasePath(l.basePath) + header + defs},
		l.serviceOptionsFile())

	return files, nil
}

func (l *layout) serviceOptionsFile() writer.File {
	return writer.File{Name: serviceOptionsFileName, Content: templates.Banner + l.renderer.ServiceHeader()}
}

// definitionImports lists basePath, the generic helpers the service uses and
// the definitions it reaches through its request types
func (l *layout) definitionImports(svc *codegen.Service) []string {
	names := []string{"basePath"}
	used := svc.Imports()
	for _, name := range used {
		if l.resolver.IsDefinedGeneric(name) {
			names = append(names, name)
		}
	}
	return append(names, codegen.DeepRefs(used, l.defs)...)
}
