package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/doccontrol-backend/internal/platform/envutil"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter
	apiReqGood  *Counter

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec
	aggregateTotal     *Counter
	aggregateFailed    *Counter

	workflowTransitions *CounterVec
	workflowRevisions   *CounterVec

	notifyEvents     *CounterVec
	notifyLatency    *HistogramVec
	notifyQueueDepth *Gauge
	notifyTotal      *Counter
	notifyFailed     *Counter

	storageOps     *CounterVec
	storageLatency *HistogramVec

	securityEvents *CounterVec

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	sloCompliance       *GaugeVec
	sloBudget           *GaugeVec
	sloBurn             *GaugeVec
	sloLatencyThreshold float64
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false, nil)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	d := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second, nil)
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics(envutil.Float("SLO_API_LATENCY_THRESHOLD_SECONDS", 0.5, log))
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

func newMetrics(latencyThreshold float64) *Metrics {
	if latencyThreshold <= 0 {
		latencyThreshold = 0.5
	}
	return &Metrics{
		apiRequests: NewCounterVec("dc_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"dc_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("dc_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("dc_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("dc_api_requests_error_total", "API requests answered with a 5xx status."),
		apiReqGood:  NewCounter("dc_api_requests_good_total", "API requests under the latency threshold."),

		aggregateOps: NewCounterVec("dc_aggregate_operations_total", "Aggregate write operations by operation/status.", []string{"operation", "status"}),
		aggregateLatency: NewHistogramVec(
			"dc_aggregate_operation_duration_seconds",
			"Aggregate write latency in seconds by operation/status.",
			[]string{"operation", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		aggregateConflicts: NewCounterVec("dc_aggregate_conflicts_total", "Aggregate compare-and-set conflicts by operation.", []string{"operation"}),
		aggregateRetries:   NewCounterVec("dc_aggregate_retryable_total", "Aggregate retryable failures by operation.", []string{"operation"}),
		aggregateTotal:     NewCounter("dc_aggregate_operations_total_all", "Total aggregate write operations (all)."),
		aggregateFailed:    NewCounter("dc_aggregate_operations_failed_total", "Aggregate operations that failed for infrastructure reasons."),

		workflowTransitions: NewCounterVec("dc_workflow_transitions_total", "Committed document status transitions.", []string{"from", "to"}),
		workflowRevisions:   NewCounterVec("dc_workflow_revisions_total", "Approval chain resets by requester kind.", []string{"requester"}),

		notifyEvents: NewCounterVec("dc_notify_events_total", "Post-commit emitter events by kind/status.", []string{"kind", "status"}),
		notifyLatency: NewHistogramVec(
			"dc_notify_delivery_duration_seconds",
			"Emitter delivery latency in seconds by kind.",
			[]string{"kind"},
			[]float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		notifyQueueDepth: NewGauge("dc_notify_queue_depth", "Events waiting in the emitter queue."),
		notifyTotal:      NewCounter("dc_notify_events_total_all", "Total emitter events (all)."),
		notifyFailed:     NewCounter("dc_notify_events_failed_total", "Emitter events that failed or were dropped."),

		storageOps: NewCounterVec("dc_storage_operations_total", "File store operations by op/status.", []string{"op", "status"}),
		storageLatency: NewHistogramVec(
			"dc_storage_operation_duration_seconds",
			"File store latency in seconds by op.",
			[]string{"op"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),

		securityEvents: NewCounterVec("dc_security_events_total", "Security events by type.", []string{"event"}),

		pgStats:   NewGaugeVec("dc_postgres_pool", "Postgres connection pool stats.", []string{"stat"}),
		redisUp:   NewGauge("dc_redis_up", "Redis reachability (1 = up)."),
		redisPing: NewGauge("dc_redis_ping_seconds", "Redis ping latency in seconds."),

		sloCompliance:       NewGaugeVec("dc_slo_compliance_ratio", "SLO compliance over the window.", []string{"slo", "window"}),
		sloBudget:           NewGaugeVec("dc_slo_error_budget_remaining", "Remaining error budget over the window.", []string{"slo", "window"}),
		sloBurn:             NewGaugeVec("dc_slo_burn_rate", "Error budget burn rate over the window.", []string{"slo", "window"}),
		sloLatencyThreshold: latencyThreshold,
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) collectors() []promWriter {
	return []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError, m.apiReqGood,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries, m.aggregateTotal, m.aggregateFailed,
		m.workflowTransitions, m.workflowRevisions,
		m.notifyEvents, m.notifyLatency, m.notifyQueueDepth, m.notifyTotal, m.notifyFailed,
		m.storageOps, m.storageLatency,
		m.securityEvents,
		m.pgStats, m.redisUp, m.redisPing,
		m.sloCompliance, m.sloBudget, m.sloBurn,
	}
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range m.collectors() {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
	if m.sloLatencyThreshold > 0 && dur.Seconds() <= m.sloLatencyThreshold {
		m.apiReqGood.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveAggregateOperation records one aggregate write. Business rejections
// (forbidden, out_of_order and friends) count as handled, not failed.
func (m *Metrics) ObserveAggregateOperation(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if operation == "" {
		operation = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.aggregateOps.Inc(operation, status)
	m.aggregateLatency.Observe(dur.Seconds(), operation, status)
	m.aggregateTotal.Inc()
	if isFailureStatus(status) {
		m.aggregateFailed.Inc()
	}
}

func (m *Metrics) IncAggregateConflict(operation string) {
	if m == nil {
		return
	}
	if operation == "" {
		operation = "unknown"
	}
	m.aggregateConflicts.Inc(operation)
}

func (m *Metrics) IncAggregateRetry(operation string) {
	if m == nil {
		return
	}
	if operation == "" {
		operation = "unknown"
	}
	m.aggregateRetries.Inc(operation)
}

func (m *Metrics) IncWorkflowTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.workflowTransitions.Inc(strings.ToLower(from), strings.ToLower(to))
}

func (m *Metrics) IncWorkflowRevision(requester string) {
	if m == nil {
		return
	}
	if requester == "" {
		requester = "unknown"
	}
	m.workflowRevisions.Inc(requester)
}

// ObserveNotify records one emitter event; status is delivered, failed or dropped.
func (m *Metrics) ObserveNotify(kind, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.notifyEvents.Inc(kind, status)
	m.notifyTotal.Inc()
	if status != "delivered" {
		m.notifyFailed.Inc()
		return
	}
	m.notifyLatency.Observe(dur.Seconds(), kind)
}

func (m *Metrics) SetNotifyQueueDepth(n int) {
	if m == nil {
		return
	}
	m.notifyQueueDepth.Set(float64(n))
}

func (m *Metrics) ObserveStorage(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.storageOps.Inc(op, status)
	m.storageLatency.Observe(dur.Seconds(), op)
}

func (m *Metrics) IncSecurityEvent(event string) {
	if m == nil {
		return
	}
	if event == "" {
		event = "unknown"
	}
	m.securityEvents.Inc(event)
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
