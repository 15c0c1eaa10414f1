// Package metrics はレコードストアの操作を Prometheus で計測します。
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogurasousui/congregation-records/internal/core/record"
)

// Collectors はストア操作のメトリクスを保持します。
type Collectors struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewCollectors はメトリクスを生成し registerer に登録します。
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "congregation",
			Subsystem: "record_store",
			Name:      "operations_total",
			Help:      "Record store operations by backend, collection, operation and result.",
		}, []string{"backend", "collection", "operation", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "congregation",
			Subsystem: "record_store",
			Name:      "operation_duration_seconds",
			Help:      "Record store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
	}
	for _, col := range []prometheus.Collector{c.operations, c.latency} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Handler は registry の内容を公開する HTTP ハンドラを返します。
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// InstrumentedStore は record.Store の各操作を計測するデコレーターです。
type InstrumentedStore struct {
	next       record.Store
	backend    string
	collectors *Collectors
}

var _ record.Store = (*InstrumentedStore)(nil)

// Instrument は next を計測付きでラップします。
func Instrument(next record.Store, backend string, collectors *Collectors) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend, collectors: collectors}
}

// Unwrap はラップ元のストアを返します。
func (s *InstrumentedStore) Unwrap() record.Store {
	return s.next
}

func (s *InstrumentedStore) observe(c record.Collection, op string, start time.Time, err error) {
	s.collectors.operations.WithLabelValues(s.backend, c.Name, op, resultLabel(err)).Inc()
	s.collectors.latency.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, record.ErrNotFound):
		return "not_found"
	case errors.Is(err, record.ErrValidation):
		return "invalid"
	case errors.Is(err, record.ErrTransport):
		return "transport_error"
	default:
		return "error"
	}
}

// List は一覧取得を計測します。
func (s *InstrumentedStore) List(ctx context.Context, c record.Collection, opts record.ListOptions) (docs []record.Document, err error) {
	defer func(start time.Time) { s.observe(c, "list", start, err) }(time.Now())
	return s.next.List(ctx, c, opts)
}

// Get は取得を計測します。
func (s *InstrumentedStore) Get(ctx context.Context, c record.Collection, id string) (doc record.Document, err error) {
	defer func(start time.Time) { s.observe(c, "get", start, err) }(time.Now())
	return s.next.Get(ctx, c, id)
}

// Create は作成を計測します。
func (s *InstrumentedStore) Create(ctx context.Context, c record.Collection, data record.Document, actorID string) (doc record.Document, err error) {
	defer func(start time.Time) { s.observe(c, "create", start, err) }(time.Now())
	return s.next.Create(ctx, c, data, actorID)
}

// Update は更新を計測します。
func (s *InstrumentedStore) Update(ctx context.Context, c record.Collection, id string, patch record.Document, actorID string) (doc record.Document, err error) {
	defer func(start time.Time) { s.observe(c, "update", start, err) }(time.Now())
	return s.next.Update(ctx, c, id, patch, actorID)
}

// Archive は論理削除を計測します。
func (s *InstrumentedStore) Archive(ctx context.Context, c record.Collection, id string, actorID string) (err error) {
	defer func(start time.Time) { s.observe(c, "archive", start, err) }(time.Now())
	return s.next.Archive(ctx, c, id, actorID)
}

// HardDelete は物理削除を計測します。
func (s *InstrumentedStore) HardDelete(ctx context.Context, c record.Collection, id string) (err error) {
	defer func(start time.Time) { s.observe(c, "hard_delete", start, err) }(time.Now())
	return s.next.HardDelete(ctx, c, id)
}
