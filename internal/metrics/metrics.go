// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// サービス層のmembership.MetricsRecorderとHTTPミドルウェアの両方から利用する。
type Collector struct {
	registrations  *prometheus.CounterVec
	deletions      prometheus.Counter
	accruals       prometheus.Counter
	pointsAccrued  prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "membership_registrations_total",
			Help: "メンバーシップ登録の合計数（種別別）",
		}, []string{"membership_type"}),
		deletions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "membership_deletions_total",
			Help: "メンバーシップ削除の合計数",
		}),
		accruals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "membership_accruals_total",
			Help: "ポイント積立処理の合計数",
		}),
		pointsAccrued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "membership_points_accrued_total",
			Help: "積み立てられたポイントの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "membership_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "membership_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.deletions,
		c.accruals,
		c.pointsAccrued,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordRegistration はメンバーシップ登録を種別ラベル付きで記録する。
func (c *Collector) RecordRegistration(membershipType string) {
	c.registrations.WithLabelValues(membershipType).Inc()
}

// RecordDeletion はメンバーシップ削除を記録する。
func (c *Collector) RecordDeletion() {
	c.deletions.Inc()
}

// RecordAccrual はポイント積立処理と積立ポイント数を記録する。
func (c *Collector) RecordAccrual(points int) {
	c.accruals.Inc()
	c.pointsAccrued.Add(float64(points))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はHTTPリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
