// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordFetchSuccess(vendorID string)
	RecordFetchFailure(vendorID string, reason string)
	RecordParseFailure(vendorID string)
	RecordHTTPStatus(statusCode int)
	RecordFetchLatency(duration time.Duration)
	RecordAnnouncementsUpserted(count int)
	RecordVendorRegistered()
	RecordBookingCreated()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	fetchSuccess          prometheus.Counter
	fetchFail             prometheus.Counter
	parseFail             prometheus.Counter
	httpStatus            *prometheus.CounterVec
	fetchLatency          prometheus.Histogram
	announcementsUpserted prometheus.Counter
	vendorsRegistered     prometheus.Counter
	bookingsCreated       prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evno_announcement_fetch_success_total",
			Help: "告知フィードフェッチ成功の合計数",
		}),
		fetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evno_announcement_fetch_fail_total",
			Help: "告知フィードフェッチ失敗の合計数",
		}),
		parseFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evno_announcement_parse_fail_total",
			Help: "告知フィードパース失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evno_announcement_http_status_total",
			Help: "告知フィードフェッチのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "evno_announcement_fetch_latency_seconds",
			Help:    "告知フィードフェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		announcementsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evno_announcements_upserted_total",
			Help: "アップサートされたお知らせの合計数",
		}),
		vendorsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evno_vendors_registered_total",
			Help: "登録されたベンダーの合計数",
		}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evno_bookings_created_total",
			Help: "作成された予約の合計数",
		}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.parseFail,
		c.httpStatus,
		c.fetchLatency,
		c.announcementsUpserted,
		c.vendorsRegistered,
		c.bookingsCreated,
	)

	return c
}

// RecordFetchSuccess はフェッチ成功を記録する。
func (c *Collector) RecordFetchSuccess(vendorID string) {
	c.fetchSuccess.Inc()
}

// RecordFetchFailure はフェッチ失敗を記録する。
func (c *Collector) RecordFetchFailure(vendorID string, reason string) {
	c.fetchFail.Inc()
}

// RecordParseFailure はパース失敗を記録する。
func (c *Collector) RecordParseFailure(vendorID string) {
	c.parseFail.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency はフェッチのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordAnnouncementsUpserted はアップサートされたお知らせ数を記録する。
func (c *Collector) RecordAnnouncementsUpserted(count int) {
	c.announcementsUpserted.Add(float64(count))
}

// RecordVendorRegistered はベンダー登録を記録する。
func (c *Collector) RecordVendorRegistered() {
	c.vendorsRegistered.Inc()
}

// RecordBookingCreated は予約作成を記録する。
func (c *Collector) RecordBookingCreated() {
	c.bookingsCreated.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
