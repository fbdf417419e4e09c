// Package search looks up current legal information on the web for the
// assistant when the model asks for it.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrDisabled is returned by Disabled searchers
var ErrDisabled = errors.New("web search is not configured")

// Result is a single web search hit
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher runs a web search query
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Disabled is a Searcher used when no search credentials are configured
type Disabled struct{}

// Search always fails with ErrDisabled
func (Disabled) Search(ctx context.Context, query string) ([]Result, error) {
	return nil, ErrDisabled
}

// FormatResults renders results as numbered context for a model prompt
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No search results were found."
	}

	var builder strings.Builder
	for i, r := range results {
		builder.WriteString(fmt.Sprintf("[%d] %s\n", i+1, strings.TrimSpace(r.Title)))
		if r.Link != "" {
			builder.WriteString("    Source: " + r.Link + "\n")
		}
		if snippet := strings.Join(strings.Fields(r.Snippet), " "); snippet != "" {
			builder.WriteString("    " + snippet + "\n")
		}
	}
	return builder.String()
}
