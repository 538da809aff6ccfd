// Package batch concurrently loads a set of independent bytecode dumps,
// each dump handled entirely by one worker goroutine, and collects one
// summary per dump into a mutex-guarded table (spec §5).
package batch

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oisee/bcdump/pkg/bytecode"
)

// Summary is the per-dump result of a batch load: either the counted shape
// of a successfully loaded dump, or the error that stopped it.
type Summary struct {
	Path       string
	Flags      uint32
	Name       string
	Prototypes int
	Blocks     int
	Edges      int
	Err        error
}

// WorkerPool loads a queue of dump files across a fixed number of worker
// goroutines, tracking aggregate progress as it goes.
type WorkerPool struct {
	NumWorkers int
	Policy     bytecode.FailurePolicy

	mu        sync.Mutex
	summaries []Summary

	dumpsDone  atomic.Int64
	protosDone atomic.Int64
}

// NewWorkerPool creates a pool with the given number of workers. A
// non-positive count defaults to runtime.NumCPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{NumWorkers: numWorkers}
}

// Stats returns the number of dumps and prototypes processed so far. Safe
// to call concurrently with RunFiles.
func (wp *WorkerPool) Stats() (dumps, protos int64) {
	return wp.dumpsDone.Load(), wp.protosDone.Load()
}

// RunFiles loads every path in paths across the pool's workers and returns
// one Summary per path, in no particular order. The returned slice is safe
// to read once RunFiles has returned; reading it before that races with the
// workers still populating it.
func (wp *WorkerPool) RunFiles(paths []string) []Summary {
	total := int64(len(paths))

	ch := make(chan string, len(paths))
	for _, p := range paths {
		ch <- p
	}
	close(ch)

	done := make(chan struct{})
	start := time.Now()
	go wp.reportProgress(total, start, done)

	var wg sync.WaitGroup
	for i := 0; i < wp.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range ch {
				s := wp.loadOne(path)
				wp.mu.Lock()
				wp.summaries = append(wp.summaries, s)
				wp.mu.Unlock()
				wp.dumpsDone.Add(1)
				wp.protosDone.Add(int64(s.Prototypes))
			}
		}()
	}
	wg.Wait()
	close(done)

	fmt.Printf("  [%s] %d/%d dumps | %d prototypes | DONE\n",
		time.Since(start).Round(time.Second), wp.dumpsDone.Load(), total, wp.protosDone.Load())

	wp.mu.Lock()
	defer wp.mu.Unlock()
	out := make([]Summary, len(wp.summaries))
	copy(out, wp.summaries)
	return out
}

func (wp *WorkerPool) reportProgress(total int64, start time.Time, done <-chan struct{}) {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			comp := wp.dumpsDone.Load()
			elapsed := time.Since(start)
			var eta string
			if comp > 0 {
				remaining := time.Duration(float64(elapsed) * float64(total-comp) / float64(comp))
				eta = remaining.Round(time.Second).String()
			} else {
				eta = "..."
			}
			pct := float64(comp) / float64(total) * 100
			fmt.Printf("  [%s] %d/%d dumps (%.1f%%) | ETA %s\n", elapsed.Round(time.Second), comp, total, pct, eta)
		}
	}
}

func (wp *WorkerPool) loadOne(path string) Summary {
	f, err := os.Open(path)
	if err != nil {
		return Summary{Path: path, Err: err}
	}
	defer f.Close()

	d, err := bytecode.LoadDumpWithPolicy(f, wp.Policy)
	if err != nil {
		return Summary{Path: path, Err: err}
	}

	s := Summary{Path: path, Flags: d.Flags, Name: d.Name, Prototypes: len(d.Prototypes())}
	for _, p := range d.Prototypes() {
		cfg := p.CFG()
		s.Blocks += cfg.NodeCount()
		s.Edges += cfg.EdgeCount()
	}
	return s
}
