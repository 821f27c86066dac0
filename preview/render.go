// Package preview renders a resume snapshot as a printable HTML page.
//
// Rendering is a pure function of the document: nothing is written back, and
// every block whose data is empty is left out entirely, heading included.
package preview

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"resume-builder/core"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var page = template.Must(template.New("resume.gohtml").
	Funcs(template.FuncMap{
		"dateRange": dateRange,
		"lines":     lines,
	}).
	ParseFS(templateFS, "templates/*.gohtml"))

type theme struct {
	FontFamily  template.CSS
	Accent      template.CSS
	HeaderAlign template.CSS
	SkillChips  bool
	Uppercase   bool
}

var themes = map[core.TemplateID]theme{
	core.TemplateModern:    {FontFamily: "Arial, sans-serif", Accent: "#3B82F6", HeaderAlign: "left", SkillChips: true},
	core.TemplateClassic:   {FontFamily: "Georgia, serif", Accent: "#333333", HeaderAlign: "center"},
	core.TemplateMinimal:   {FontFamily: "Helvetica, Arial, sans-serif", Accent: "#111111", HeaderAlign: "left"},
	core.TemplateCreative:  {FontFamily: "Trebuchet MS, sans-serif", Accent: "#9333EA", HeaderAlign: "left", SkillChips: true},
	core.TemplateExecutive: {FontFamily: "Garamond, Georgia, serif", Accent: "#1F2937", HeaderAlign: "center", Uppercase: true},
	core.TemplateTech:      {FontFamily: "Menlo, Consolas, monospace", Accent: "#10B981", HeaderAlign: "left", SkillChips: true},
}

type view struct {
	*core.Document
	Theme    theme
	Template core.TemplateID
	Contact  []string
	Links    []string
}

// Render writes doc using its own template.
func Render(w io.Writer, doc *core.Document) error {
	return RenderTemplate(w, doc, doc.Template)
}

// RenderTemplate writes doc using id, which lets callers preview a template
// before switching to it.
func RenderTemplate(w io.Writer, doc *core.Document, id core.TemplateID) error {
	th, ok := themes[id]
	if !ok {
		return &core.InvalidTemplateError{Template: string(id)}
	}
	v := view{
		Document: doc,
		Theme:    th,
		Template: id,
		Contact:  nonEmpty(doc.Personal.Email, doc.Personal.Phone, doc.Personal.Location),
		Links:    nonEmpty(doc.Personal.Website, doc.Personal.LinkedIn),
	}
	if err := page.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render resume: %w", err)
	}
	return nil
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// formatDate renders "2006-01" or "2006-01-02" as "Jan 2006". The Present
// sentinel and unparseable input are shown as written.
func formatDate(s string) string {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2006")
		}
	}
	return s
}

func dateRange(start, end string) string {
	parts := nonEmpty(formatDate(start), formatDate(end))
	return strings.Join(parts, " - ")
}

// lines splits free text into its non-blank lines.
func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
