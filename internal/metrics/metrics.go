package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradingbot/internal/model"
)

// Metrics holds all Prometheus metrics for the trading pipeline.
type Metrics struct {
	BarsTotal    prometheus.Counter
	WSReconnects prometheus.Counter
	OrdersTotal  *prometheus.CounterVec // labels: side
	OrderErrors  prometheus.Counter
	SignalState  prometheus.Gauge // -1=sell, 0=none, 1=buy
	PositionOpen prometheus.Gauge // 0=flat, 1=open
	PipelineDur  prometheus.Histogram
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		BarsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradebot_bars_total",
			Help: "Total closed bars processed",
		}),
		WSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradebot_ws_reconnects_total",
			Help: "Total market-data stream reconnection attempts",
		}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradebot_orders_total",
			Help: "Market orders attempted (by side)",
		}, []string{"side"}),
		OrderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradebot_order_errors_total",
			Help: "Order or balance calls that failed",
		}),
		SignalState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradebot_signal_state",
			Help: "Current signal (-1=sell, 0=none, 1=buy)",
		}),
		PositionOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradebot_position_open",
			Help: "Whether a position is open (0=flat, 1=open)",
		}),
		PipelineDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradebot_pipeline_duration_seconds",
			Help:    "Per-bar pipeline latency (upsert through position tick)",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}),
	}

	prometheus.MustRegister(
		m.BarsTotal,
		m.WSReconnects,
		m.OrdersTotal,
		m.OrderErrors,
		m.SignalState,
		m.PositionOpen,
		m.PipelineDur,
	)

	return m
}

// SetSignal maps the signal onto the state gauge.
func (m *Metrics) SetSignal(sig model.Signal) {
	switch sig {
	case model.SignalBuy:
		m.SignalState.Set(1)
	case model.SignalSell:
		m.SignalState.Set(-1)
	default:
		m.SignalState.Set(0)
	}
}

// SetPositionOpen maps position presence onto the gauge.
func (m *Metrics) SetPositionOpen(open bool) {
	if open {
		m.PositionOpen.Set(1)
	} else {
		m.PositionOpen.Set(0)
	}
}

// HealthStatus represents the bot's health for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	WSConnected bool
	LastBarTime time.Time
	StartedAt   time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetWSConnected(v bool) {
	h.mu.Lock()
	h.WSConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastBarTime(t time.Time) {
	h.mu.Lock()
	h.LastBarTime = t
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.WSConnected {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	barAge := ""
	if !h.LastBarTime.IsZero() {
		barAge = time.Since(h.LastBarTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status      string `json:"status"`
		Uptime      string `json:"uptime"`
		WSConnected bool   `json:"ws_connected"`
		LastBarTime string `json:"last_bar_time"`
		BarAge      string `json:"bar_age"`
	}{
		Status:      overallStatus,
		Uptime:      time.Since(h.StartedAt).Round(time.Second).String(),
		WSConnected: h.WSConnected,
		LastBarTime: h.LastBarTime.Format(time.RFC3339),
		BarAge:      barAge,
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
