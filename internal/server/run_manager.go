package server

import (
	"context"
	"fmt"
	"sync"
)

type runKey struct {
	conn string
	id   string
}

type activeRun struct {
	gen    uint64
	cancel context.CancelFunc
}

// RunManager tracks in-flight websocket runs so they can be aborted by the
// client, by a disconnect, or by server shutdown.
type RunManager struct {
	mu   sync.Mutex
	gen  uint64
	runs map[runKey]activeRun
}

// NewRunManager creates a new RunManager.
func NewRunManager() *RunManager {
	return &RunManager{
		runs: make(map[runKey]activeRun),
	}
}

// Start registers run id on conn and returns the context the run must use,
// plus the generation to hand back to Finish. Ids are unique per connection
// while in flight; a cancelled id may be reused at once.
func (rm *RunManager) Start(parent context.Context, conn, id string) (context.Context, uint64, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	key := runKey{conn, id}
	if _, ok := rm.runs[key]; ok {
		return nil, 0, fmt.Errorf("run %s already in progress", id)
	}

	ctx, cancel := context.WithCancel(parent)
	rm.gen++
	rm.runs[key] = activeRun{gen: rm.gen, cancel: cancel}
	return ctx, rm.gen, nil
}

// Cancel aborts a single run. It reports whether the run was in flight.
func (rm *RunManager) Cancel(conn, id string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	key := runKey{conn, id}
	run, ok := rm.runs[key]
	if ok {
		run.cancel()
		delete(rm.runs, key)
	}
	return ok
}

// Finish releases the run started with generation gen. A newer run that
// reused the id is left alone.
func (rm *RunManager) Finish(conn, id string, gen uint64) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	key := runKey{conn, id}
	if run, ok := rm.runs[key]; ok && run.gen == gen {
		run.cancel()
		delete(rm.runs, key)
	}
}

// CancelConn aborts every run of one connection.
func (rm *RunManager) CancelConn(conn string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	for key, run := range rm.runs {
		if key.conn == conn {
			run.cancel()
			delete(rm.runs, key)
		}
	}
}

// CancelAll aborts all runs.
func (rm *RunManager) CancelAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	for key, run := range rm.runs {
		run.cancel()
		delete(rm.runs, key)
	}
}

// Len returns the number of in-flight runs.
func (rm *RunManager) Len() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.runs)
}
