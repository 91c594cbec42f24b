// Package telemetry exports search statistics to Prometheus and opener spans
// to OpenTelemetry.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/benjaminjkraft/wordle-openers/internal/solver"
)

const namespace = "wordle"

// Source is what the collector reads on every scrape. The scheduler
// implements it.
type Source interface {
	Stats() solver.Stats
	Progress() (finished, total int)
}

// CacheSizer reports the number of entries in each cache table.
type CacheSizer interface {
	Len() (clean, tainted int)
}

type counter struct {
	desc  *prometheus.Desc
	value func(*solver.Stats) int64
}

// Collector is a prometheus.Collector over a running search. Values are read
// at scrape time, so nothing on the search path touches Prometheus.
type Collector struct {
	src   Source
	cache CacheSizer

	counters []counter
	entries  *prometheus.Desc
	finished *prometheus.Desc
	openers  *prometheus.Desc
	hitRate  *prometheus.Desc
}

func newCounter(name, help string, value func(*solver.Stats) int64) counter {
	return counter{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil),
		value: value,
	}
}

func NewCollector(src Source, cache CacheSizer) *Collector {
	return &Collector{
		src:   src,
		cache: cache,
		counters: []counter{
			newCounter("nodes_visited_total", "Search nodes visited.",
				func(s *solver.Stats) int64 { return s.NodesVisited }),
			newCounter("cache_hits_total", "Cache lookups that hit.",
				func(s *solver.Stats) int64 { return s.CacheHits }),
			newCounter("cache_misses_total", "Cache lookups that missed.",
				func(s *solver.Stats) int64 { return s.CacheMisses }),
			newCounter("cache_inserts_total", "Results stored in the cache.",
				func(s *solver.Stats) int64 { return s.CacheInserts }),
			newCounter("cache_collisions_total", "Inserts that found an existing entry.",
				func(s *solver.Stats) int64 { return s.CacheCollisions }),
			newCounter("prune_calls_total", "Calls to the action pruner.",
				func(s *solver.Stats) int64 { return s.PruneCalls }),
			newCounter("prune_checked_total", "Guesses considered by the pruner.",
				func(s *solver.Stats) int64 { return s.ActionsChecked }),
			newCounter("prune_kept_total", "Guesses kept by the pruner.",
				func(s *solver.Stats) int64 { return s.ActionsKept }),
			newCounter("prune_useless_total", "Guesses dropped for giving the same feedback on every answer.",
				func(s *solver.Stats) int64 { return s.UselessPruned }),
			newCounter("prune_duplicates_total", "Guesses dropped for splitting like a kept guess.",
				func(s *solver.Stats) int64 { return s.DuplicatesPruned }),
		},
		entries: prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", "entries"),
			"Entries in the memoization cache.", []string{"table"}, nil),
		finished: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "openers_finished"),
			"Openers evaluated so far.", nil, nil),
		openers: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "openers"),
			"Openers scheduled.", nil, nil),
		hitRate: prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", "hit_ratio"),
			"Fraction of cache lookups that hit.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, ctr := range c.counters {
		ch <- ctr.desc
	}
	ch <- c.entries
	ch <- c.finished
	ch <- c.openers
	ch <- c.hitRate
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.src.Stats()
	for _, ctr := range c.counters {
		ch <- prometheus.MustNewConstMetric(ctr.desc, prometheus.CounterValue, float64(ctr.value(&stats)))
	}
	ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, stats.HitRate()/100)

	clean, tainted := c.cache.Len()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(clean), "clean")
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(tainted), "tainted")

	finished, total := c.src.Progress()
	ch <- prometheus.MustNewConstMetric(c.finished, prometheus.GaugeValue, float64(finished))
	ch <- prometheus.MustNewConstMetric(c.openers, prometheus.GaugeValue, float64(total))
}

// Serve registers c on a fresh registry and serves it on addr at /metrics
// until ctx is done.
func Serve(ctx context.Context, addr string, c prometheus.Collector, logger zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	logger.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
