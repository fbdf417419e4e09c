package observe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"safevoice-backend/llm"
	"safevoice-backend/search"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	m := findMetric(t, reader, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

type stubGenerator struct{ err error }

func (s stubGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	return "reply", s.err
}

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	return []search.Result{{Title: "t"}}, nil
}

func TestInstrumentGenerator(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	ok := InstrumentGenerator(stubGenerator{}, m, "gemini")
	failing := InstrumentGenerator(stubGenerator{err: errors.New("boom")}, m, "gemini")

	reply, err := ok.Generate(ctx, llm.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "reply", reply)
	_, err = failing.Generate(ctx, llm.Request{Prompt: "hi"})
	assert.Error(t, err)

	assert.Equal(t, int64(2), counterTotal(t, reader, "safevoice.provider.requests"))
	assert.Equal(t, int64(1), counterTotal(t, reader, "safevoice.provider.errors"))

	hist := findMetric(t, reader, "safevoice.generation.duration")
	require.NotNil(t, hist)
	data, isHist := hist.Data.(metricdata.Histogram[float64])
	require.True(t, isHist)
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, uint64(2), data.DataPoints[0].Count)
}

func TestInstrumentSearcher(t *testing.T) {
	m, reader := newTestMetrics(t)

	results, err := InstrumentSearcher(stubSearcher{}, m, "customsearch").Search(context.Background(), "q")

	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.NotNil(t, findMetric(t, reader, "safevoice.search.duration"))
	assert.Equal(t, int64(1), counterTotal(t, reader, "safevoice.provider.requests"))
}

func TestRecordDocumentAndFallback(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordDocument(ctx, "completed")
	m.RecordDocument(ctx, "failed")
	m.RecordFallback(ctx)

	assert.Equal(t, int64(2), counterTotal(t, reader, "safevoice.documents.generated"))
	assert.Equal(t, int64(1), counterTotal(t, reader, "safevoice.chat.fallbacks"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, reader := newTestMetrics(t)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	hist := findMetric(t, reader, "safevoice.http.request.duration")
	require.NotNil(t, hist)
	data := hist.Data.(metricdata.Histogram[float64])
	assert.Len(t, data.DataPoints, 2)
}
