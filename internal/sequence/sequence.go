// Package sequence issues primary-key ranges for the generated tables. It is the
// sole authority for ID uniqueness within a run: ranges for a table never overlap
// and are strictly increasing across calls.
package sequence

import (
	"github.com/pkg/errors"

	"github.com/MikeMC777/generador-datos/internal/model"
)

// Range is a contiguous, inclusive span of IDs. IDs are always positive; the
// zero Range is empty.
type Range struct {
	First int64
	Last  int64
}

func (r Range) Empty() bool { return r.First <= 0 || r.Last < r.First }

func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return int(r.Last - r.First + 1)
}

// Allocator hands out per-table ID ranges. Starting offsets are fixed at
// construction (1 for a fresh run, or max(id)+1 resumed from the sink); after
// that every allocation is purely in memory. Not safe for concurrent use —
// the single cycle loop is the only caller.
type Allocator struct {
	first map[model.Table]int64 // first ID issued this run
	next  map[model.Table]int64 // next ID to issue
}

// New creates an Allocator. start maps each table to the next ID to issue;
// tables absent from start begin at 1.
func New(start map[model.Table]int64) *Allocator {
	a := &Allocator{
		first: make(map[model.Table]int64),
		next:  make(map[model.Table]int64),
	}
	for _, t := range model.Tables {
		n := int64(1)
		if s, ok := start[t]; ok && s > 0 {
			n = s
		}
		a.first[t] = n
		a.next[t] = n
	}
	return a
}

// Next returns the next contiguous range of count IDs for table.
func (a *Allocator) Next(table model.Table, count int) (Range, error) {
	if count <= 0 {
		return Range{}, errors.Errorf("sequence: count must be positive, got %d", count)
	}
	n, ok := a.next[table]
	if !ok {
		return Range{}, errors.Errorf("sequence: unknown table %q", table)
	}
	r := Range{First: n, Last: n + int64(count) - 1}
	a.next[table] = r.Last + 1
	return r, nil
}

// Issued returns the span of all IDs issued for table so far in this run.
// ok is false if nothing has been issued yet.
func (a *Allocator) Issued(table model.Table) (Range, bool) {
	first, next := a.first[table], a.next[table]
	if next == first {
		return Range{}, false
	}
	return Range{First: first, Last: next - 1}, true
}
