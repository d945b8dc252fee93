package templates

const requestTemplate = `
  /**
   * {{comment (or .Summary .Description .Name)}}
{{- if .Deprecated}}
   * @deprecated
{{- end}}
   */
  {{if .Static}}static {{end}}{{.Name}}(
{{- if .HasParams}}
    params: {
{{- range .Params}}
      /** {{comment .Description}} */
      {{.Name}}{{if not .Required}}?{{end}}: {{.Type}};
{{- end}}
{{- with .Body}}
      /** {{with .Description}}{{comment .}}{{else}}requestBody{{end}} */
      body{{if not .Required}}?{{end}}: {{.Type}};
{{- end}}
    }{{if .AllOptional}} = {} as any{{end}},
{{- end}}
    options: IRequestOptions = {}
  ): Promise<{{.ResponseType}}> {
    return new Promise((resolve, reject) => {
      let url = basePath + {{quote .Path}};
{{- range .PathParams}}
      url = url.replace({{quote (printf "{%s}" .WireName)}}, params['{{.Name}}'] + '');
{{- end}}

      const configs: IRequestConfig = getConfigs('{{.Method}}', {{quote .ContentType}}, url, options);
{{- if .QueryParams}}
      configs.params = {
{{- range .QueryParams}}
        {{propertyKey .WireName}}: params['{{.Name}}'],
{{- end}}
      };
{{- end}}
{{- if .HeaderParams}}
      configs.headers = {
        ...configs.headers,
{{- range .HeaderParams}}
        {{propertyKey .WireName}}: params['{{.Name}}'],
{{- end}}
      };
{{- end}}

      let data = {{if .Body}}params.body{{else}}null{{end}};
{{- if .FormParams}}
      data = new {{if .URLEncoded}}URLSearchParams{{else}}FormData{{end}}();
{{- range .FormParams}}
      if (params['{{.Name}}']) {
        if (Object.prototype.toString.call(params['{{.Name}}']) === '[object Array]') {
          for (const item of params['{{.Name}}']) {
            data.append({{quote .WireName}}, item as any);
          }
        } else {
          data.append({{quote .WireName}}, params['{{.Name}}'] as any);
        }
      }
{{- end}}
{{- end}}

      configs.data = data;

      axios(configs, resolve, reject);
    });
  }
`

const serviceTemplate = `
export class {{.ClassName}} {
{{.Body}}}
`
