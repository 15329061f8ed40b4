// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー層から利用する。
type MetricsCollector interface {
	RecordCartAdd()
	RecordCartRemove()
	RecordCheckout(grandTotal, pointsEarned float64)
	RecordStockOverride()
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	cartAdd       prometheus.Counter
	cartRemove    prometheus.Counter
	checkouts     prometheus.Counter
	revenue       prometheus.Counter
	loyaltyPoints prometheus.Counter
	stockOverride prometheus.Counter
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cartAdd: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopman_cart_add_total",
			Help: "カート追加操作の合計数",
		}),
		cartRemove: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopman_cart_remove_total",
			Help: "カート削除操作の合計数",
		}),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopman_checkout_total",
			Help: "完了したチェックアウトの合計数",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopman_checkout_revenue_total",
			Help: "チェックアウトの支払額合計（割引適用後）",
		}),
		loyaltyPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopman_loyalty_points_awarded_total",
			Help: "付与されたロイヤルティポイントの合計",
		}),
		stockOverride: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shopman_stock_override_total",
			Help: "管理者による在庫上書きの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.cartAdd,
		c.cartRemove,
		c.checkouts,
		c.revenue,
		c.loyaltyPoints,
		c.stockOverride,
		c.httpStatus,
	)

	return c
}

// RecordCartAdd はカート追加を記録する。
func (c *Collector) RecordCartAdd() {
	c.cartAdd.Inc()
}

// RecordCartRemove はカート削除を記録する。
func (c *Collector) RecordCartRemove() {
	c.cartRemove.Inc()
}

// RecordCheckout はチェックアウト完了を記録する。
func (c *Collector) RecordCheckout(grandTotal, pointsEarned float64) {
	c.checkouts.Inc()
	c.revenue.Add(grandTotal)
	c.loyaltyPoints.Add(pointsEarned)
}

// RecordStockOverride は在庫上書きを記録する。
func (c *Collector) RecordStockOverride() {
	c.stockOverride.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
