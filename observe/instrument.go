package observe

import (
	"context"
	"time"

	"safevoice-backend/llm"
	"safevoice-backend/search"
)

type instrumentedGenerator struct {
	next     llm.Generator
	metrics  *Metrics
	provider string
}

// InstrumentGenerator times every Generate call on g
func InstrumentGenerator(g llm.Generator, m *Metrics, provider string) llm.Generator {
	return &instrumentedGenerator{next: g, metrics: m, provider: provider}
}

func (g *instrumentedGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	start := time.Now()
	reply, err := g.next.Generate(ctx, req)
	g.metrics.RecordProviderCall(ctx, g.metrics.GenerationDuration, g.provider, "generation", start, err)
	return reply, err
}

type instrumentedSearcher struct {
	next     search.Searcher
	metrics  *Metrics
	provider string
}

// InstrumentSearcher times every Search call on s
func InstrumentSearcher(s search.Searcher, m *Metrics, provider string) search.Searcher {
	return &instrumentedSearcher{next: s, metrics: m, provider: provider}
}

func (s *instrumentedSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	start := time.Now()
	results, err := s.next.Search(ctx, query)
	s.metrics.RecordProviderCall(ctx, s.metrics.SearchDuration, s.provider, "search", start, err)
	return results, err
}
