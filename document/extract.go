// Package document turns free-form generated text into the labeled sections
// of an FIR draft and renders them into the FIR markup template.
package document

import (
	"regexp"
	"strings"

	"safevoice-backend/models"
)

// NotProvided is the content of a section whose label never appears.
const NotProvided = "Information not provided"

// Section labels in the order they appear in an FIR draft.
const (
	LabelComplainant = "Complainant Details"
	LabelIncident    = "Incident Details"
	LabelAccused     = "Accused Details"
	LabelWitness     = "Witness Details"
	LabelEvidence    = "Evidence Details"
	LabelIPC         = "IPC Sections"
)

// DefaultLabels returns the six FIR section labels in canonical order.
func DefaultLabels() []string {
	return []string{
		LabelComplainant,
		LabelIncident,
		LabelAccused,
		LabelWitness,
		LabelEvidence,
		LabelIPC,
	}
}

// Extractor splits text into sections keyed by "<label>:" markers.
//
// A section starts at the first case-insensitive "<label>:" and runs until
// the next "<any label>:" or the end of the text. A label name followed by a
// colon inside a section's prose therefore ends that section early.
type Extractor struct {
	labels  []string
	starts  []*regexp.Regexp
	anchors *regexp.Regexp
}

// NewExtractor compiles the markers for the given labels.
func NewExtractor(labels []string) *Extractor {
	e := &Extractor{
		labels: append([]string(nil), labels...),
		starts: make([]*regexp.Regexp, len(labels)),
	}

	quoted := make([]string, len(labels))
	for i, label := range labels {
		quoted[i] = regexp.QuoteMeta(label)
		e.starts[i] = regexp.MustCompile(`(?i)` + quoted[i] + `:`)
	}
	if len(labels) > 0 {
		e.anchors = regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `):`)
	}

	return e
}

// Labels returns the labels this extractor looks for, in output order.
func (e *Extractor) Labels() []string {
	return append([]string(nil), e.labels...)
}

// Extract returns one section per label, in label order. It never fails:
// labels missing from raw get NotProvided.
func (e *Extractor) Extract(raw string) models.ExtractedSections {
	sections := make(models.ExtractedSections, len(e.labels))

	var anchors [][]int
	if e.anchors != nil {
		anchors = e.anchors.FindAllStringIndex(raw, -1)
	}

	for i, label := range e.labels {
		sections[i] = models.ExtractedSection{Label: label, Content: NotProvided}

		loc := e.starts[i].FindStringIndex(raw)
		if loc == nil {
			continue
		}

		begin := loc[1]
		end := len(raw)
		for _, anchor := range anchors {
			if anchor[0] >= begin {
				end = anchor[0]
				break
			}
		}

		sections[i].Content = strings.TrimSpace(raw[begin:end])
	}

	return sections
}
