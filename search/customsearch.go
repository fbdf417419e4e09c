package search

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// maxPerRequest is the Custom Search API's page size limit
const maxPerRequest = 10

// CustomSearch queries Google Programmable Search
type CustomSearch struct {
	service    *customsearch.Service
	engineID   string
	maxResults int
}

// NewCustomSearch creates a Programmable Search client. Extra client
// options (endpoint, HTTP client) are appended after the API key.
func NewCustomSearch(ctx context.Context, apiKey, engineID string, maxResults int, opts ...option.ClientOption) (*CustomSearch, error) {
	if apiKey == "" || engineID == "" {
		return nil, ErrDisabled
	}
	if maxResults <= 0 || maxResults > maxPerRequest {
		maxResults = maxPerRequest
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}

	return &CustomSearch{
		service:    svc,
		engineID:   engineID,
		maxResults: maxResults,
	}, nil
}

// Search returns up to maxResults hits for query
func (s *CustomSearch) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	resp, err := s.service.Cse.List().
		Cx(s.engineID).
		Q(query).
		Num(int64(s.maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, Result{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
