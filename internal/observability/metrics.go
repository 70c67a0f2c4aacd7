// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "posterr_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostsCreated counts accepted creations by kind (post, repost, quote).
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posterr_posts_created_total",
		Help: "Total number of posts and reposts created",
	}, []string{"kind"})

	// PostRejections counts creation attempts refused by a business rule.
	PostRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posterr_post_rejections_total",
		Help: "Total number of rejected post creations by reason",
	}, []string{"reason"})

	// FeedCacheResults counts feed cache lookups by result (hit, miss).
	FeedCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "posterr_feed_cache_results_total",
		Help: "Feed cache lookups by result",
	}, []string{"result"})
)

// DatabaseMetrics records gorm query latency into DatabaseQueryLatency.
type DatabaseMetrics struct{}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

const startedAtKey = "posterr:started_at"

// Register hooks the metrics into every gorm operation on db.
func (m *DatabaseMetrics) Register(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(startedAtKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(startedAtKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "raw"
			}
			m.ObserveQuery(operation, table, start)
		}
	}

	cb := db.Callback()
	steps := []struct {
		op  string
		err error
	}{
		{"create", cb.Create().Before("gorm:create").Register("metrics:before_create", before)},
		{"create", cb.Create().After("gorm:create").Register("metrics:after_create", after("create"))},
		{"query", cb.Query().Before("gorm:query").Register("metrics:before_query", before)},
		{"query", cb.Query().After("gorm:query").Register("metrics:after_query", after("query"))},
		{"row", cb.Row().Before("gorm:row").Register("metrics:before_row", before)},
		{"row", cb.Row().After("gorm:row").Register("metrics:after_row", after("row"))},
		{"raw", cb.Raw().Before("gorm:raw").Register("metrics:before_raw", before)},
		{"raw", cb.Raw().After("gorm:raw").Register("metrics:after_raw", after("raw"))},
	}
	for _, s := range steps {
		if s.err != nil {
			return s.err
		}
	}
	return nil
}
