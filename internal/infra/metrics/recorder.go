package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
)

const namespace = "botdating"

// Recorder exports matchmaking and payment metrics. A nil Recorder records
// nothing.
type Recorder struct {
	registry *prometheus.Registry

	matches        *prometheus.CounterVec
	waiting        prometheus.Gauge
	sessions       prometheus.Gauge
	orders         *prometheus.CounterVec
	verifyOutcomes *prometheus.CounterVec
	relayed        *prometheus.CounterVec
	reconcileRuns  *prometheus.CounterVec
}

func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Committed matches by whether search filters were applied.",
		}, []string{"filtered"}),
		waiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "waiting_users",
			Help:      "Users currently in the waiting pool.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Chat sessions currently linked.",
		}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Payment order attempts by result.",
		}, []string{"result"}),
		verifyOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_checks_total",
			Help:      "Pending order status checks by outcome.",
		}, []string{"outcome"}),
		relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relayed_messages_total",
			Help:      "Messages copied between partners by kind.",
		}, []string{"kind"}),
		reconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_runs_total",
			Help:      "Reconcile job runs by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.matches,
		r.waiting,
		r.sessions,
		r.orders,
		r.verifyOutcomes,
		r.relayed,
		r.reconcileRuns,
	} {
		if err := r.registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) ObserveMatch(filtered bool) {
	if r == nil {
		return
	}
	label := "false"
	if filtered {
		label = "true"
	}
	r.matches.WithLabelValues(label).Inc()
}

func (r *Recorder) SetWaiting(n int) {
	if r == nil {
		return
	}
	r.waiting.Set(float64(n))
}

func (r *Recorder) SetSessions(n int) {
	if r == nil {
		return
	}
	r.sessions.Set(float64(n))
}

func (r *Recorder) ObserveOrder(result string) {
	if r == nil {
		return
	}
	r.orders.WithLabelValues(result).Inc()
}

func (r *Recorder) ObserveVerify(outcome enums.PaymentOutcome) {
	if r == nil {
		return
	}
	r.verifyOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (r *Recorder) ObserveRelay(kind enums.MediaKind) {
	if r == nil {
		return
	}
	r.relayed.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) ObserveReconcile(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.reconcileRuns.WithLabelValues(result).Inc()
}
