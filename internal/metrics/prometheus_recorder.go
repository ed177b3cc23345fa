package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "specbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	buildDuration     prom.Histogram
	buildOutcome      *prom.CounterVec
	taskDuration      *prom.HistogramVec
	watchEvents       *prom.CounterVec
	rebuildTriggers   prom.Counter
	liveReloadClients prom.Gauge
	broadcasts        prom.Counter
	droppedClients    prom.Counter
	httpRequests      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of spec builds (read, render, write)",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Builds by outcome",
		}, []string{"outcome"})
		pr.taskDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of task runs",
			Buckets:   prom.DefBuckets,
		}, []string{"task", "result"})
		pr.watchEvents = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_total",
			Help:      "Filesystem events accepted by a watcher",
		}, []string{"watcher"})
		pr.rebuildTriggers = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rebuild_triggers_total",
			Help:      "Debounced rebuild requests",
		})
		pr.liveReloadClients = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "livereload_clients",
			Help:      "Connected live reload clients",
		})
		pr.broadcasts = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "livereload_broadcasts_total",
			Help:      "Reload notifications sent",
		})
		pr.droppedClients = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "livereload_dropped_clients_total",
			Help:      "Clients dropped because their buffer was full",
		})
		pr.httpRequests = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Preview server requests by status code",
		}, []string{"code"})
		reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.taskDuration, pr.watchEvents,
			pr.rebuildTriggers, pr.liveReloadClients, pr.broadcasts, pr.droppedClients, pr.httpRequests)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveTaskDuration(task string, d time.Duration, success bool) {
	if p == nil || p.taskDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.taskDuration.WithLabelValues(task, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncWatchEvent(watcher string) {
	if p == nil || p.watchEvents == nil {
		return
	}
	p.watchEvents.WithLabelValues(watcher).Inc()
}

func (p *PrometheusRecorder) IncRebuildTrigger() {
	if p == nil || p.rebuildTriggers == nil {
		return
	}
	p.rebuildTriggers.Inc()
}

func (p *PrometheusRecorder) SetLiveReloadClients(n int) {
	if p == nil || p.liveReloadClients == nil {
		return
	}
	p.liveReloadClients.Set(float64(n))
}

func (p *PrometheusRecorder) IncLiveReloadBroadcast() {
	if p == nil || p.broadcasts == nil {
		return
	}
	p.broadcasts.Inc()
}

func (p *PrometheusRecorder) IncLiveReloadDropped() {
	if p == nil || p.droppedClients == nil {
		return
	}
	p.droppedClients.Inc()
}

func (p *PrometheusRecorder) IncHTTPRequest(status int) {
	if p == nil || p.httpRequests == nil {
		return
	}
	p.httpRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}
