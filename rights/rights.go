// Package rights serves the Legal Rights Guide: a static, embedded set of
// legal reference entries with keyword search and category browsing.
package rights

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"safevoice-backend/models"

	"gopkg.in/yaml.v3"
)

//go:embed data/rights.yaml
var defaultDataset []byte

// ErrNotFound is returned by Get for an unknown entry ID
var ErrNotFound = errors.New("legal right not found")

// Guide is an immutable, in-memory rights dataset
type Guide struct {
	entries    []models.LegalRight
	byID       map[string]int
	categories []string
}

// Load parses the embedded dataset
func Load() (*Guide, error) {
	return Parse(defaultDataset)
}

// Parse builds a Guide from YAML data
func Parse(data []byte) (*Guide, error) {
	var entries []models.LegalRight
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse rights dataset: %w", err)
	}

	g := &Guide{
		entries: entries,
		byID:    make(map[string]int, len(entries)),
	}
	seen := make(map[string]bool)
	for i, entry := range entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("rights dataset entry %d has no id", i)
		}
		if _, dup := g.byID[entry.ID]; dup {
			return nil, fmt.Errorf("duplicate rights dataset id: %s", entry.ID)
		}
		g.byID[entry.ID] = i
		if !seen[entry.Category] {
			seen[entry.Category] = true
			g.categories = append(g.categories, entry.Category)
		}
	}

	return g, nil
}

// Categories lists categories in the order they first appear
func (g *Guide) Categories() []string {
	return append([]string(nil), g.categories...)
}

// Get returns the entry with the given ID
func (g *Guide) Get(id string) (models.LegalRight, error) {
	i, ok := g.byID[id]
	if !ok {
		return models.LegalRight{}, ErrNotFound
	}
	return g.entries[i], nil
}

// Search filters entries by query and category, keeping dataset order.
// Each whitespace-separated query term must appear, case-insensitively, in
// the entry's title, summary, details, law references or keywords. An empty
// query matches everything; an empty category matches every category.
func (g *Guide) Search(query, category string) []models.LegalRight {
	terms := strings.Fields(strings.ToLower(query))

	results := make([]models.LegalRight, 0)
	for _, entry := range g.entries {
		if category != "" && !strings.EqualFold(entry.Category, category) {
			continue
		}
		if matchesAll(searchText(entry), terms) {
			results = append(results, entry)
		}
	}
	return results
}

func searchText(entry models.LegalRight) string {
	parts := []string{entry.Title, entry.Summary, entry.Details}
	parts = append(parts, entry.LawReferences...)
	parts = append(parts, entry.Keywords...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

func matchesAll(text string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}
