package document

import (
	"fmt"
	"html"
	"strings"
	"time"

	"safevoice-backend/models"
)

// Template placeholders
const (
	PlaceholderContent = "{{CONTENT}}"
	PlaceholderDate    = "{{DATE}}"
)

const sectionBlock = `<div class="section">
  <div class="section-title">%s</div>
  <div class="section-content">%s</div>
</div>
`

// DefaultTemplate is the FIR form the sections are rendered into.
const DefaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>First Information Report</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 32px; color: #222; }
  h1 { text-align: center; font-size: 22px; margin-bottom: 4px; }
  .subtitle { text-align: center; font-size: 13px; color: #555; margin-bottom: 24px; }
  .date { text-align: right; font-size: 13px; margin-bottom: 16px; }
  .section { border: 1px solid #ccc; border-radius: 4px; padding: 12px; margin-bottom: 12px; }
  .section-title { font-weight: bold; font-size: 15px; margin-bottom: 6px; }
  .section-content { font-size: 14px; white-space: pre-wrap; }
  .footer { margin-top: 32px; font-size: 12px; color: #666; }
</style>
</head>
<body>
<h1>FIRST INFORMATION REPORT</h1>
<div class="subtitle">(Under Section 154 Cr.P.C.)</div>
<div class="date">Date: {{DATE}}</div>
{{CONTENT}}
<div class="footer">This draft was prepared from a conversation with the legal assistant. Review every section before submitting it at a police station.</div>
</body>
</html>
`

// Assembler renders extracted sections into a markup template
type Assembler struct {
	template   string
	dateLayout string
	location   *time.Location
	now        func() time.Time
}

// AssemblerOption is a functional option for Assembler
type AssemblerOption func(*Assembler)

// AssemblerWithTemplate replaces the FIR template. It should contain both
// placeholders.
func AssemblerWithTemplate(tmpl string) AssemblerOption {
	return func(a *Assembler) {
		a.template = tmpl
	}
}

// AssemblerWithDateLayout sets the time.Format layout used for {{DATE}}
func AssemblerWithDateLayout(layout string) AssemblerOption {
	return func(a *Assembler) {
		a.dateLayout = layout
	}
}

// AssemblerWithLocation sets the time zone the date is presented in
func AssemblerWithLocation(loc *time.Location) AssemblerOption {
	return func(a *Assembler) {
		a.location = loc
	}
}

// AssemblerWithClock overrides time.Now
func AssemblerWithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		a.now = now
	}
}

// NewAssembler creates an assembler with the FIR template, dd/mm/yyyy dates
// and the local time zone unless overridden.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		template:   DefaultTemplate,
		dateLayout: "02/01/2006",
		location:   time.Local,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble renders sections with today's date
func (a *Assembler) Assemble(sections []models.ExtractedSection) string {
	return a.AssembleAt(sections, a.now())
}

// AssembleAt renders sections with the date of t
func (a *Assembler) AssembleAt(sections []models.ExtractedSection, t time.Time) string {
	var content strings.Builder
	for _, section := range sections {
		content.WriteString(fmt.Sprintf(sectionBlock,
			html.EscapeString(section.Label), html.EscapeString(section.Content)))
	}

	date := t.In(a.location).Format(a.dateLayout)

	// Single pass so placeholder text inside section content stays literal.
	r := strings.NewReplacer(
		PlaceholderContent, content.String(),
		PlaceholderDate, date,
	)
	return r.Replace(a.template)
}
