package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics reúne os contadores e gauges Prometheus da aplicação.
type Metrics struct {
	// API HTTP
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec

	// Chamadas à plataforma de anúncios
	PlatformCallsTotal       *prometheus.CounterVec
	PlatformRateLimitedTotal prometheus.Counter
	TokenRefreshTotal        *prometheus.CounterVec

	// Sincronização
	EntitiesSyncedTotal    *prometheus.CounterVec
	SnapshotsUpsertedTotal prometheus.Counter

	// Fila de lançamento
	LaunchJobsTotal  *prometheus.CounterVec
	LaunchQueueDepth prometheus.Gauge

	// Motor de otimização
	OptimizationActionsTotal *prometheus.CounterVec
	OptimizationCyclesTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// New cria uma instância de Metrics com registry próprio.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaign_manager_api_requests_total",
				Help: "Total de requisições recebidas pela API",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campaign_manager_api_request_duration_seconds",
				Help:    "Duração das requisições da API em segundos",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		PlatformCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaign_manager_platform_calls_total",
				Help: "Total de chamadas à plataforma de anúncios por resultado",
			},
			[]string{"method", "outcome"},
		),
		PlatformRateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "campaign_manager_platform_rate_limited_total",
				Help: "Total de chamadas recusadas pelo limite local de requisições",
			},
		),
		TokenRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaign_manager_token_refresh_total",
				Help: "Total de renovações de credencial por resultado",
			},
			[]string{"outcome"},
		),
		EntitiesSyncedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaign_manager_entities_synced_total",
				Help: "Total de entidades sincronizadas por nível",
			},
			[]string{"level"},
		),
		SnapshotsUpsertedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "campaign_manager_snapshots_upserted_total",
				Help: "Total de snapshots de performance gravados",
			},
		),
		LaunchJobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaign_manager_launch_jobs_total",
				Help: "Total de jobs de lançamento por status final",
			},
			[]string{"status"},
		),
		LaunchQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "campaign_manager_launch_queue_depth",
				Help: "Quantidade de jobs aguardando na fila de lançamento",
			},
		),
		OptimizationActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaign_manager_optimization_actions_total",
				Help: "Total de ações registradas pelo motor de otimização",
			},
			[]string{"action"},
		),
		OptimizationCyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaign_manager_optimization_cycles_total",
				Help: "Total de ciclos de otimização por resultado",
			},
			[]string{"result"},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.PlatformCallsTotal,
		m.PlatformRateLimitedTotal,
		m.TokenRefreshTotal,
		m.EntitiesSyncedTotal,
		m.SnapshotsUpsertedTotal,
		m.LaunchJobsTotal,
		m.LaunchQueueDepth,
		m.OptimizationActionsTotal,
		m.OptimizationCyclesTotal,
	)

	return m
}

// Registry devolve o registry Prometheus da instância.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler expõe o registry no formato do endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetGlobal define a instância global usada pelos helpers de pacote.
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global devolve a instância global, possivelmente nula.
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// ObserveAPIRequest registra uma requisição HTTP atendida.
func ObserveAPIRequest(method, path string, status int, seconds float64) {
	m := Global()
	if m != nil {
		m.APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		m.APIRequestDurationSeconds.WithLabelValues(method, path).Observe(seconds)
	}
}

// IncPlatformCall registra o resultado de uma chamada à plataforma.
func IncPlatformCall(method, outcome string) {
	m := Global()
	if m != nil {
		m.PlatformCallsTotal.WithLabelValues(method, outcome).Inc()
	}
}

// IncPlatformRateLimited registra uma recusa pelo limite local.
func IncPlatformRateLimited() {
	m := Global()
	if m != nil {
		m.PlatformRateLimitedTotal.Inc()
	}
}

// IncTokenRefresh registra uma tentativa de renovação de credencial.
func IncTokenRefresh(outcome string) {
	m := Global()
	if m != nil {
		m.TokenRefreshTotal.WithLabelValues(outcome).Inc()
	}
}

// AddEntitiesSynced acumula entidades sincronizadas de um nível.
func AddEntitiesSynced(level string, count int) {
	m := Global()
	if m != nil && count > 0 {
		m.EntitiesSyncedTotal.WithLabelValues(level).Add(float64(count))
	}
}

// AddSnapshotsUpserted acumula snapshots gravados.
func AddSnapshotsUpserted(count int) {
	m := Global()
	if m != nil && count > 0 {
		m.SnapshotsUpsertedTotal.Add(float64(count))
	}
}

// IncLaunchJob registra o desfecho de um job de lançamento.
func IncLaunchJob(status string) {
	m := Global()
	if m != nil {
		m.LaunchJobsTotal.WithLabelValues(status).Inc()
	}
}

// SetLaunchQueueDepth atualiza a profundidade da fila de lançamento.
func SetLaunchQueueDepth(depth int64) {
	m := Global()
	if m != nil {
		m.LaunchQueueDepth.Set(float64(depth))
	}
}

// IncOptimizationAction registra uma ação do motor de otimização.
func IncOptimizationAction(action string) {
	m := Global()
	if m != nil {
		m.OptimizationActionsTotal.WithLabelValues(action).Inc()
	}
}

// IncOptimizationCycle registra o resultado de um ciclo de otimização.
func IncOptimizationCycle(result string) {
	m := Global()
	if m != nil {
		m.OptimizationCyclesTotal.WithLabelValues(result).Inc()
	}
}
