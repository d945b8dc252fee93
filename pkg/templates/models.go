package templates

const interfaceTemplate = `
{{- with .Description}}
/** {{comment .}} */
{{- end}}
export interface {{.Declaration}}{{if .Extends}} extends {{join .Extends ", "}}{{end}} {
{{- range .Properties}}
  /** {{comment .Description}} */
  {{propertyKey .Name}}{{if and $.Strict (not .Required)}}?{{end}}: {{.Type}};
{{- end}}
}
`

const classTemplate = `
{{- with .Description}}
/** {{comment .}} */
{{- end}}
export class {{.Declaration}}{{with .Super}} extends {{.}}{{end}} {
{{- range .Properties}}
  /** {{comment .Description}} */
{{- if $.Transformer}}
  @Expose()
{{- with .TransformType}}
  @Type(() => {{.}})
{{- end}}
{{- end}}
  {{propertyKey .Name}}{{if and $.Strict (not .Required)}}?{{end}}: {{.Type}};
{{- end}}

  constructor(data: undefined | any = {}) {
{{- if .Super}}
    super(data);
{{- end}}
{{- range .Properties}}
    this[{{quote .Name}}] = data[{{quote .Name}}];
{{- end}}
  }
{{- if .ValidationModel}}

  public static validationModel = {
{{- range .Properties}}
{{- if not .Validation.IsEmpty}}
    {{propertyKey .Name}}: { {{validation .Validation}} },
{{- end}}
{{- end}}
  };
{{- end}}
}
`

const enumTemplate = `
{{- with .Description}}
/** {{comment .}} */
{{- end}}
export enum {{.Name}} {
{{- range .Members}}
  {{.Key}} = {{.Value}},
{{- end}}
}
`

const unionTemplate = `
{{- with .Description}}
/** {{comment .}} */
{{- end}}
export type {{.Name}} = {{union .Members}};
`
