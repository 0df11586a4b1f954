// Package metrics exposes Prometheus counters for the bot's domain events.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/hrbot/core/buildinfo"
	"github.com/m3rciful/hrbot/core/logger"
)

var (
	requestsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbot_requests_created_total",
			Help: "Requests confirmed by users",
		},
		[]string{"kind"},
	)

	decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbot_decisions_total",
			Help: "Moderation decisions by result",
		},
		[]string{"outcome"},
	)

	deliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbot_delivery_failures_total",
			Help: "Messages the gateway failed to deliver",
		},
		[]string{"op"},
	)

	flowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbot_flow_transitions_total",
			Help: "Conversation steps by flow and event",
		},
		[]string{"flow", "event"},
	)

	broadcastMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbot_broadcast_messages_total",
			Help: "Broadcast deliveries by result",
		},
		[]string{"result"},
	)

	handlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hrbot_handler_duration_seconds",
			Help:    "Telegram update handling time",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"handler", "outcome"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hrbot_build_info",
			Help: "Build version and commit of the running bot",
		},
		[]string{"version", "commit"},
	)
)

// RecordBuildInfo publishes the running build as a constant gauge.
func RecordBuildInfo() {
	buildinfo.Resolve()
	buildInfo.Reset()
	buildInfo.WithLabelValues(buildinfo.Version, buildinfo.Commit).Set(1)
}

func RecordRequestCreated(kind string) {
	requestsCreated.WithLabelValues(kind).Inc()
}

// RecordDecision counts approve/reject results as well as refusals such as
// "unauthorized", "not_found" and "already_decided".
func RecordDecision(outcome string) {
	decisions.WithLabelValues(outcome).Inc()
}

func RecordDeliveryFailure(op string) {
	deliveryFailures.WithLabelValues(op).Inc()
}

func RecordFlowTransition(flow, event string) {
	flowTransitions.WithLabelValues(flow, event).Inc()
}

func RecordBroadcast(sent, failed int) {
	broadcastMessages.WithLabelValues("sent").Add(float64(sent))
	broadcastMessages.WithLabelValues("failed").Add(float64(failed))
}

func RecordHandler(handler, outcome string, took time.Duration) {
	handlerDuration.WithLabelValues(handler, outcome).Observe(took.Seconds())
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on listen until ctx is done. An empty listen address disables it.
func Serve(ctx context.Context, listen string) error {
	if listen == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.L.Info("metrics listening", slog.String("event", "metrics.start"), slog.String("listen", listen))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
