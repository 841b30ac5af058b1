// Package runner drives the fixed-interval generation loop. Each cycle walks
// the tables in dependency order (customers, orders, payments), allocating IDs,
// synthesizing rows and inserting them before moving to the next table, so a
// child table is never generated until its parent's rows have been driven into
// the sink. One cycle fully completes before the next begins.
package runner

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/MikeMC777/generador-datos/internal/model"
	"github.com/MikeMC777/generador-datos/internal/sequence"
	"github.com/MikeMC777/generador-datos/internal/sink"
	"github.com/MikeMC777/generador-datos/internal/stats"
	"github.com/MikeMC777/generador-datos/internal/synth"
)

type State int

const (
	StateIdle State = iota
	StateGenerating
	StateInserting
	StateReporting
	StateSleeping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateInserting:
		return "inserting"
	case StateReporting:
		return "reporting"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

type Runner struct {
	batchSize int
	interval  time.Duration

	alloc *sequence.Allocator
	synth *synth.Synthesizer
	sink  sink.Writer
	stats *stats.Reporter

	state State
}

func New(batchSize int, interval time.Duration, alloc *sequence.Allocator, sy *synth.Synthesizer, w sink.Writer, rep *stats.Reporter) *Runner {
	return &Runner{
		batchSize: batchSize,
		interval:  interval,
		alloc:     alloc,
		synth:     sy,
		sink:      w,
		stats:     rep,
		state:     StateIdle,
	}
}

// Run loops until ctx is cancelled (clean stop, nil) or a table insertion fails
// fatally (the error is returned). The cancellation signal is observed at the
// sleep boundary and between table insertions; a table's insertion is never
// abandoned mid-chunk.
func (r *Runner) Run(ctx context.Context) error {
	defer r.setState(StateStopped)
	for cycle := 1; ; cycle++ {
		if ctx.Err() != nil {
			return nil
		}
		start := time.Now()

		reports, err := r.cycle(ctx, cycle)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// tables that completed before the abort still wrote rows
			r.stats.RecordFailure(cycle, reports, err)
			return err
		}

		r.setState(StateReporting)
		r.stats.RecordCycle(cycle, reports, time.Since(start))

		r.setState(StateSleeping)
		if !waitUntil(ctx, start, r.interval) {
			return nil
		}
	}
}

func (r *Runner) cycle(ctx context.Context, cycle int) ([]sink.Report, error) {
	log.WithField("cycle", cycle).Debug("cycle starting")
	loads := []func(context.Context) (sink.Report, error){
		r.loadCustomers,
		r.loadOrders,
		r.loadPayments,
	}
	reports := make([]sink.Report, 0, len(loads))
	for _, load := range loads {
		rep, err := load(ctx)
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
		// best-effort cancellation point between tables
		if err := ctx.Err(); err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (r *Runner) loadCustomers(ctx context.Context) (sink.Report, error) {
	r.setState(StateGenerating)
	ids, err := r.alloc.Next(model.TableCustomers, r.batchSize)
	if err != nil {
		return sink.Report{}, err
	}
	rows := r.synth.Customers(ids)
	r.setState(StateInserting)
	return r.sink.InsertCustomers(ctx, rows)
}

func (r *Runner) loadOrders(ctx context.Context) (sink.Report, error) {
	r.setState(StateGenerating)
	ids, err := r.alloc.Next(model.TableOrders, r.batchSize)
	if err != nil {
		return sink.Report{}, err
	}
	// orders reference every customer ID issued so far in the run
	customers, ok := r.alloc.Issued(model.TableCustomers)
	if !ok {
		return sink.Report{}, errors.New("runner: no customers issued before orders")
	}
	rows, err := r.synth.Orders(ids, customers)
	if err != nil {
		return sink.Report{}, err
	}
	r.setState(StateInserting)
	return r.sink.InsertOrders(ctx, rows)
}

func (r *Runner) loadPayments(ctx context.Context) (sink.Report, error) {
	r.setState(StateGenerating)
	ids, err := r.alloc.Next(model.TablePayments, r.batchSize)
	if err != nil {
		return sink.Report{}, err
	}
	// payments reference every order ID issued so far in the run
	orders, ok := r.alloc.Issued(model.TableOrders)
	if !ok {
		return sink.Report{}, errors.New("runner: no orders issued before payments")
	}
	rows, err := r.synth.Payments(ids, orders)
	if err != nil {
		return sink.Report{}, err
	}
	r.setState(StateInserting)
	return r.sink.InsertPayments(ctx, rows)
}

func (r *Runner) setState(s State) {
	if r.state != s {
		log.WithFields(log.Fields{"from": r.state, "to": s}).Trace("state transition")
		r.state = s
	}
}

// nextDelay returns how long to sleep after a cycle that began at start. A
// cycle that overran the interval yields zero: the next cycle starts
// immediately, with no attempt to catch up on missed boundaries.
func nextDelay(start time.Time, interval time.Duration, now time.Time) time.Duration {
	d := start.Add(interval).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// waitUntil blocks until start+interval or cancellation; false means cancelled.
func waitUntil(ctx context.Context, start time.Time, interval time.Duration) bool {
	wait := nextDelay(start, interval, time.Now())
	if wait <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
