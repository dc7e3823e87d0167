// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DomainRecorder はサービス層から利用するメトリクス記録のインターフェース。
type DomainRecorder interface {
	RecordAlienCreated()
	RecordAlienDeleted()
	RecordCommentCreated()
	RecordCommentDeleted()
	RecordAuthorizationDenied(operation string)
	RecordSeed(count int)
}

// Nop は何も記録しないDomainRecorder。テストやメトリクス無効時に使用する。
type Nop struct{}

func (Nop) RecordAlienCreated()              {}
func (Nop) RecordAlienDeleted()              {}
func (Nop) RecordCommentCreated()            {}
func (Nop) RecordCommentDeleted()            {}
func (Nop) RecordAuthorizationDenied(string) {}
func (Nop) RecordSeed(int)                   {}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	aliensCreated   prometheus.Counter
	aliensDeleted   prometheus.Counter
	commentsCreated prometheus.Counter
	commentsDeleted prometheus.Counter
	authzDenied     *prometheus.CounterVec
	seededAliens    prometheus.Counter
	sessionsCleaned prometheus.Counter
	panics          *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aliendex_http_requests_total",
			Help: "ルート・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aliendex_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		aliensCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aliendex_aliens_created_total",
			Help: "作成されたエイリアンの合計数",
		}),
		aliensDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aliendex_aliens_deleted_total",
			Help: "削除されたエイリアンの合計数",
		}),
		commentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aliendex_comments_created_total",
			Help: "投稿されたコメントの合計数",
		}),
		commentsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aliendex_comments_deleted_total",
			Help: "削除されたコメントの合計数",
		}),
		authzDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aliendex_authorization_denied_total",
			Help: "操作別の認可拒否数",
		}, []string{"operation"}),
		seededAliens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aliendex_seeded_aliens_total",
			Help: "シードで投入されたエイリアンの合計数",
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aliendex_sessions_cleaned_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aliendex_http_panics_total",
			Help: "ルート別の回復したpanic数",
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.aliensCreated,
		c.aliensDeleted,
		c.commentsCreated,
		c.commentsDeleted,
		c.authzDenied,
		c.seededAliens,
		c.sessionsCleaned,
		c.panics,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの結果と処理時間を記録する。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAlienCreated はエイリアン作成を記録する。
func (c *Collector) RecordAlienCreated() {
	c.aliensCreated.Inc()
}

// RecordAlienDeleted はエイリアン削除を記録する。
func (c *Collector) RecordAlienDeleted() {
	c.aliensDeleted.Inc()
}

// RecordCommentCreated はコメント投稿を記録する。
func (c *Collector) RecordCommentCreated() {
	c.commentsCreated.Inc()
}

// RecordCommentDeleted はコメント削除を記録する。
func (c *Collector) RecordCommentDeleted() {
	c.commentsDeleted.Inc()
}

// RecordAuthorizationDenied は認可拒否を記録する。
func (c *Collector) RecordAuthorizationDenied(operation string) {
	c.authzDenied.WithLabelValues(operation).Inc()
}

// RecordSeed はシードで投入された件数を記録する。
func (c *Collector) RecordSeed(count int) {
	c.seededAliens.Add(float64(count))
}

// RecordSessionsCleaned はクリーンアップで削除されたセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// RecordPanic はハンドラーで発生し回復したpanicを記録する。
func (c *Collector) RecordPanic(route string) {
	c.panics.WithLabelValues(route).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var _ DomainRecorder = (*Collector)(nil)
var _ DomainRecorder = Nop{}
