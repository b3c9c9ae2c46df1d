// Package metrics exposes strategy activity as Prometheus metrics:
//
//	rsidaily_steps_total{rule}          steps evaluated, by the rule that fired
//	rsidaily_directives_total{signal}   directives emitted (LONG|SHORT)
//	rsidaily_exits_total{rule}          positions closed, flips included
//	rsidaily_flips_total                same-step close and reopen
//	rsidaily_position_open              1 while a position is held
//	rsidaily_position_duration          candles since entry
//	rsidaily_wrong_count                adverse re-entries in this position
//	rsidaily_rsi                        last oscillator reading
//	rsidaily_close                      last close
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rustyeddy/rsidaily/market/strategies"
)

type Metrics struct {
	reg *prometheus.Registry

	Steps      *prometheus.CounterVec
	Directives *prometheus.CounterVec
	Exits      *prometheus.CounterVec
	Flips      prometheus.Counter

	PositionOpen     prometheus.Gauge
	PositionDuration prometheus.Gauge
	WrongCount       prometheus.Gauge
	RSI              prometheus.Gauge
	Close            prometheus.Gauge
}

// New registers every metric on a fresh registry, plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsidaily_steps_total",
			Help: "Strategy steps evaluated, by rule",
		}, []string{"rule"}),
		Directives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsidaily_directives_total",
			Help: "Directives emitted",
		}, []string{"signal"}),
		Exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsidaily_exits_total",
			Help: "Position exits split by rule",
		}, []string{"rule"}),
		Flips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsidaily_flips_total",
			Help: "Close and reopen within one step",
		}),
		PositionOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsidaily_position_open",
			Help: "1 while a position is held",
		}),
		PositionDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsidaily_position_duration",
			Help: "Candles since entry",
		}),
		WrongCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsidaily_wrong_count",
			Help: "Adverse re-entries in the current position",
		}),
		RSI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsidaily_rsi",
			Help: "Last oscillator reading",
		}),
		Close: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsidaily_close",
			Help: "Last close price",
		}),
	}

	m.reg.MustRegister(
		m.Steps, m.Directives, m.Exits, m.Flips,
		m.PositionOpen, m.PositionDuration, m.WrongCount, m.RSI, m.Close,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// HandleAdvice makes Metrics a strategy subscriber.
func (m *Metrics) HandleAdvice(ev strategies.AdviceEvent) {
	m.Steps.WithLabelValues(ev.Rule.String()).Inc()
	for _, s := range ev.Advice {
		m.Directives.WithLabelValues(s.String()).Inc()
	}
	if ev.Rule.Exit() {
		m.Exits.WithLabelValues(ev.Rule.String()).Inc()
	}
	if ev.Advice.IsFlip() {
		m.Flips.Inc()
	}

	open := 0.0
	if ev.State.PositionOpen {
		open = 1
	}
	m.PositionOpen.Set(open)
	m.PositionDuration.Set(float64(ev.State.Duration))
	m.WrongCount.Set(float64(ev.State.WrongCount))
	m.RSI.Set(ev.RSI)
	m.Close.Set(ev.Close.InexactFloat64())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
