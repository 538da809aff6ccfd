// Package report collects per-prototype and per-dump decompile statistics
// into thread-safe tables for CLI consumption.
package report

import (
	"sort"
	"sync"

	"github.com/oisee/bcdump/pkg/batch"
)

// ProtoSummary is one prototype's decompile statistics within a single
// dump: its basic-block count, edge count, raw instruction count, and the
// number of IR statements its lifted form produced.
type ProtoSummary struct {
	Index        int
	Blocks       int
	Edges        int
	Instructions int
	Statements   int
}

// ProtoTable collects one ProtoSummary per prototype of a dump.
type ProtoTable struct {
	mu   sync.Mutex
	rows []ProtoSummary
}

// NewProtoTable creates an empty table.
func NewProtoTable() *ProtoTable {
	return &ProtoTable{}
}

// Add inserts a prototype's summary.
func (t *ProtoTable) Add(s ProtoSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, s)
}

// Rows returns every summary added so far, sorted by prototype index.
func (t *ProtoTable) Rows() []ProtoSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ProtoSummary, len(t.rows))
	copy(out, t.rows)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Len returns the number of rows added so far.
func (t *ProtoTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// DumpTable collects one batch.Summary per dump processed by a batch run.
type DumpTable struct {
	mu   sync.Mutex
	rows []batch.Summary
}

// NewDumpTable creates an empty table.
func NewDumpTable() *DumpTable {
	return &DumpTable{}
}

// Add inserts a dump's summary.
func (t *DumpTable) Add(s batch.Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, s)
}

// AddAll inserts every summary in ss.
func (t *DumpTable) AddAll(ss []batch.Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, ss...)
}

// Rows returns every summary added so far, sorted by prototype count
// (largest dumps first) and then by path for a stable tiebreak.
func (t *DumpTable) Rows() []batch.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]batch.Summary, len(t.rows))
	copy(out, t.rows)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Prototypes != out[j].Prototypes {
			return out[i].Prototypes > out[j].Prototypes
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Len returns the number of rows added so far.
func (t *DumpTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Failed returns the subset of rows whose load failed, in Rows() order.
func (t *DumpTable) Failed() []batch.Summary {
	var out []batch.Summary
	for _, s := range t.Rows() {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}
