// Package stats accumulates per-cycle and cumulative load counters and emits
// them as structured events, log lines and prometheus metrics.
package stats

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/MikeMC777/generador-datos/internal/model"
	"github.com/MikeMC777/generador-datos/internal/sink"
)

// Event is the structured record emitted after every completed cycle.
type Event struct {
	RunID         string                `json:"run_id"`
	Cycle         int                   `json:"cycle"`
	Counts        map[model.Table]int   `json:"counts"`
	ElapsedSec    float64               `json:"elapsed_seconds"`
	RowsPerSecond float64               `json:"rows_per_second"`
	Totals        map[model.Table]int64 `json:"totals"`
	CompletedAt   time.Time             `json:"completed_at"`
}

// Reporter keeps cumulative totals for the run and exports them over
// prometheus. RecordCycle is called from the single cycle loop; the mutex only
// guards the snapshot read by the ops HTTP handler.
type Reporter struct {
	runID string

	reg          *prometheus.Registry
	rowsInserted *prometheus.CounterVec
	chunks       *prometheus.CounterVec
	retries      prometheus.Counter
	cycles       prometheus.Counter
	failures     prometheus.Counter
	cycleSec     prometheus.Histogram

	mu     sync.RWMutex
	last   Event
	hasRun bool
	totals map[model.Table]int64
	nCycle int
}

func NewReporter(runID string) *Reporter {
	reg := prometheus.NewRegistry()
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "datagen_rows_inserted_total"}, []string{"table"})
	chunks := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "datagen_chunks_inserted_total"}, []string{"table"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{Name: "datagen_insert_retries_total"})
	cycles := prometheus.NewCounter(prometheus.CounterOpts{Name: "datagen_cycles_completed_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "datagen_cycles_failed_total"})
	cycleSec := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "datagen_cycle_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(rows, chunks, retries, cycles, failures, cycleSec)
	return &Reporter{
		runID:        runID,
		reg:          reg,
		rowsInserted: rows,
		chunks:       chunks,
		retries:      retries,
		cycles:       cycles,
		failures:     failures,
		cycleSec:     cycleSec,
		totals:       make(map[model.Table]int64),
	}
}

// RecordCycle folds one cycle's per-table reports into the running totals and
// emits the cycle event.
func (r *Reporter) RecordCycle(cycle int, reports []sink.Report, elapsed time.Duration) Event {
	counts := make(map[model.Table]int, len(reports))
	total := 0
	for _, rep := range reports {
		counts[rep.Table] = rep.Rows
		total += rep.Rows
		r.rowsInserted.WithLabelValues(string(rep.Table)).Add(float64(rep.Rows))
		r.chunks.WithLabelValues(string(rep.Table)).Add(float64(rep.Chunks))
		r.retries.Add(float64(rep.Retries))
	}
	r.cycles.Inc()
	r.cycleSec.Observe(elapsed.Seconds())

	rps := 0.0
	if elapsed > 0 {
		rps = float64(total) / elapsed.Seconds()
	}

	r.mu.Lock()
	r.nCycle = cycle
	for t, n := range counts {
		r.totals[t] += int64(n)
	}
	ev := Event{
		RunID:         r.runID,
		Cycle:         cycle,
		Counts:        counts,
		ElapsedSec:    elapsed.Seconds(),
		RowsPerSecond: rps,
		Totals:        copyTotals(r.totals),
		CompletedAt:   time.Now(),
	}
	r.last = ev
	r.hasRun = true
	r.mu.Unlock()

	log.WithFields(log.Fields{
		"run_id":    r.runID,
		"cycle":     cycle,
		"customers": counts[model.TableCustomers],
		"orders":    counts[model.TableOrders],
		"payments":  counts[model.TablePayments],
		"elapsed":   elapsed.Round(time.Millisecond),
		"rows_sec":  int(rps),
	}).Info("cycle completed")
	return ev
}

// RecordFailure marks a fatal abort. Tables that completed before the abort
// wrote rows durably, so their reports still fold into the counters and
// cumulative totals; only the cycle itself goes unreported as completed.
func (r *Reporter) RecordFailure(cycle int, reports []sink.Report, err error) {
	written := 0
	for _, rep := range reports {
		written += rep.Rows
		r.rowsInserted.WithLabelValues(string(rep.Table)).Add(float64(rep.Rows))
		r.chunks.WithLabelValues(string(rep.Table)).Add(float64(rep.Chunks))
		r.retries.Add(float64(rep.Retries))
	}
	r.failures.Inc()

	r.mu.Lock()
	for _, rep := range reports {
		r.totals[rep.Table] += int64(rep.Rows)
	}
	r.mu.Unlock()

	log.WithError(err).WithFields(log.Fields{
		"run_id":       r.runID,
		"cycle":        cycle,
		"rows_written": written,
	}).Error("cycle aborted")
}

// Last returns the most recent cycle event, if any cycle has completed.
func (r *Reporter) Last() (Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.hasRun
}

// LogSummary prints the run totals. Called once on shutdown.
func (r *Reporter) LogSummary() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	log.WithFields(log.Fields{
		"run_id":    r.runID,
		"cycles":    r.nCycle,
		"customers": r.totals[model.TableCustomers],
		"orders":    r.totals[model.TableOrders],
		"payments":  r.totals[model.TablePayments],
	}).Info("generator stopped")
}

// MetricsHandler serves the run's prometheus registry.
func (r *Reporter) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func copyTotals(in map[model.Table]int64) map[model.Table]int64 {
	out := make(map[model.Table]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
