package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// ProgramNotice describes a newly added program for the notification email.
type ProgramNotice struct {
	CenterName  string
	CenterCode  string
	ProgramName string
	ProgramCode string
	CreatedBy   string
	CreatedAt   time.Time
	Link        string
}

var programNoticeTmpl = template.Must(template.New("program_notice").Parse(`<p>A program was added to <strong>{{.CenterName}}</strong>{{with .CenterCode}} ({{.}}){{end}}.</p>
<ul>
<li>Name: {{.ProgramName}}</li>
{{- with .ProgramCode}}
<li>Code: {{.}}</li>
{{- end}}
{{- with .CreatedBy}}
<li>Added by: {{.}}</li>
{{- end}}
<li>Date: {{.CreatedAt.Format "2006-01-02 15:04 MST"}}</li>
</ul>
{{- with .Link}}
<p><a href="{{.}}">Open the center page</a></p>
{{- end}}`))

// RenderProgramNotice builds the subject and escaped HTML body.
// PRE: n.ProgramName is non-empty
// POST: every field is HTML-escaped in the body
func RenderProgramNotice(n ProgramNotice) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := programNoticeTmpl.Execute(&buf, n); err != nil {
		return "", "", fmt.Errorf("render program notice: %w", err)
	}
	return fmt.Sprintf("New program: %s (%s)", n.ProgramName, n.CenterName), buf.String(), nil
}
