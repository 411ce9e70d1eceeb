package email

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/coozgan/meraki-webhook-alert-processor/internal/triage"
)

//go:embed templates/*
var templateFS embed.FS

// Templates holds parsed email templates.
type Templates struct {
	html  *template.Template
	plain *texttemplate.Template
}

// TemplateData is the rendering input for both bodies.
type TemplateData struct {
	AlertType               string
	Organization            string
	Network                 string
	Severity                string
	SeverityColor           string
	Category                string
	Summary                 string
	Impact                  string
	Recommendations         []string
	RequiresImmediateAction bool
	EstimatedResolutionTime string
	Provenance              string
	Timestamp               string
}

// LoadTemplates loads the embedded email templates.
func LoadTemplates() (*Templates, error) {
	funcs := map[string]any{
		"upper": strings.ToUpper,
		"add":   func(a, b int) int { return a + b },
	}

	htmlTmpl, err := template.New("alert.html").Funcs(funcs).ParseFS(templateFS, "templates/alert.html")
	if err != nil {
		return nil, err
	}

	plainTmpl, err := texttemplate.New("alert.txt").Funcs(funcs).ParseFS(templateFS, "templates/alert.txt")
	if err != nil {
		return nil, err
	}

	return &Templates{html: htmlTmpl, plain: plainTmpl}, nil
}

// RenderHTML renders the HTML email body.
func (t *Templates) RenderHTML(data *TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := t.html.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderPlain renders the plain text email body.
func (t *Templates) RenderPlain(data *TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := t.plain.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func severityColor(s triage.Severity) string {
	switch s {
	case triage.SeverityCritical:
		return "#dc3545" // red
	case triage.SeverityHigh:
		return "#fd7e14" // orange
	case triage.SeverityMedium:
		return "#ffc107" // yellow
	case triage.SeverityLow:
		return "#28a745" // green
	case triage.SeverityInfo:
		return "#17a2b8" // teal
	default:
		return "#6c757d" // gray
	}
}

func resultToTemplateData(res *triage.Result) *TemplateData {
	a := res.Analysis
	ts := res.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return &TemplateData{
		AlertType:               res.AlertType,
		Organization:            res.Organization,
		Network:                 res.Network,
		Severity:                string(a.Severity),
		SeverityColor:           severityColor(a.Severity),
		Category:                string(a.Category),
		Summary:                 a.Summary,
		Impact:                  a.Impact,
		Recommendations:         a.Recommendations,
		RequiresImmediateAction: a.RequiresImmediateAction,
		EstimatedResolutionTime: a.EstimatedResolutionTime,
		Provenance:              string(a.Provenance),
		Timestamp:               ts.UTC().Format("2006-01-02 15:04:05 UTC"),
	}
}
