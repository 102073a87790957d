package page

import (
	"html/template"
	"io"
)

var nodesTemplate = template.Must(template.New("nodes").Funcs(template.FuncMap{
	"kind": kind,
}).Parse(`
{{- define "node" -}}
{{- $k := kind . -}}
{{- if eq $k "img" -}}
<img src="{{.Src}}"{{with .Class}} class="{{.}}"{{end}} alt="{{.Alt}}">
{{- else if eq $k "div" -}}
<div{{with .Class}} class="{{.}}"{{end}}>{{range .Children}}{{template "node" .}}{{end}}</div>
{{- else if eq .Tag "p" -}}
<p{{with .Class}} class="{{.}}"{{end}}>{{.Value}}</p>
{{- else if eq .Tag "small" -}}
<small{{with .Class}} class="{{.}}"{{end}}>{{.Value}}</small>
{{- else -}}
<span{{with .Class}} class="{{.}}"{{end}}>{{.Value}}</span>
{{- end -}}
{{- end -}}
{{- range . }}{{template "node" .}}
{{end -}}
`))

func kind(n Node) string {
	switch n.(type) {
	case *Image:
		return "img"
	case *Block:
		return "div"
	}
	return "text"
}

// WriteHTML writes nodes as HTML markup, one top-level node per line. Text and attributes
// are escaped; image sources that are not safe URLs (data: URLs among them) are replaced.
func WriteHTML(w io.Writer, nodes ...Node) error {
	return nodesTemplate.Execute(w, nodes)
}
