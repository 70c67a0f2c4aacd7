package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "posterr-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	span, ctx := NewSpan(context.Background(), "PostService.Create", attribute.String("kind", "post"))
	require.NotNil(t, ctx)
	span.AddAttributes(attribute.Int("quota.used", 1))
	span.SetError(errors.New("boom"))
	span.End()
}

func TestInitTracing_StdoutExporter(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{
		ServiceName:  "posterr-test",
		Enabled:      true,
		Exporter:     "stdout",
		SamplerRatio: 1,
	})
	require.NoError(t, err)

	span, _ := NewSpan(context.Background(), "FeedService.ListPosts")
	assert.Len(t, span.TraceID(), 32)
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

type probe struct {
	ID   uint
	Name string
}

func sampleCount(t *testing.T, operation, table string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	metric, ok := DatabaseQueryLatency.WithLabelValues(operation, table).(prometheus.Metric)
	require.True(t, ok)
	require.NoError(t, metric.Write(m))
	return m.GetHistogram().GetSampleCount()
}

func TestDatabaseMetrics_RegisterObservesQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:metrics?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, NewDatabaseMetrics().Register(db))
	require.NoError(t, db.AutoMigrate(&probe{}))

	createsBefore := sampleCount(t, "create", "probes")
	queriesBefore := sampleCount(t, "query", "probes")

	require.NoError(t, db.Create(&probe{Name: "a"}).Error)
	var got []probe
	require.NoError(t, db.Find(&got).Error)

	assert.Equal(t, createsBefore+1, sampleCount(t, "create", "probes"))
	assert.Equal(t, queriesBefore+1, sampleCount(t, "query", "probes"))
	assert.Len(t, got, 1)
}

func TestDatabaseMetrics_TrackQuery(t *testing.T) {
	before := sampleCount(t, "query", "tracked_table")
	done := NewDatabaseMetrics().TrackQuery("query", "tracked_table")
	done()

	assert.Equal(t, before+1, sampleCount(t, "query", "tracked_table"))
}
