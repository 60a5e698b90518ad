// Package metrics keeps process-lifetime request counters for the status
// endpoint. Counters only ever increase; there is no reset short of a
// process restart.
package metrics

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the counters, shaped for direct JSON
// serialization.
type Snapshot struct {
	TotalRequests int64            `json:"totalRequests"`
	ByMethod      map[string]int64 `json:"byMethod"`
	ByPath        map[string]int64 `json:"byPath"`
	ErrorCount    int64            `json:"errorCount"`
	StartTime     time.Time        `json:"startTime"`
	UptimeSeconds int64            `json:"uptimeSeconds"`
}

// Registry accumulates counters across all requests. All methods are safe
// for concurrent use.
type Registry struct {
	mu       sync.Mutex
	total    int64
	byMethod map[string]int64
	byPath   map[string]int64
	errors   int64
	started  time.Time

	now func() time.Time
}

// NewRegistry returns a registry stamped with the current time as StartTime.
func NewRegistry() *Registry {
	return &Registry{
		byMethod: make(map[string]int64),
		byPath:   make(map[string]int64),
		started:  time.Now(),
		now:      time.Now,
	}
}

// Record counts one completed request. Responses with a 5xx status also
// increment the error counter.
func (r *Registry) Record(method, path string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	r.byMethod[method]++
	r.byPath[path]++
	if status >= 500 {
		r.errors++
	}
}

// Snapshot copies the counters. The returned maps are owned by the caller.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	byMethod := make(map[string]int64, len(r.byMethod))
	for k, v := range r.byMethod {
		byMethod[k] = v
	}
	byPath := make(map[string]int64, len(r.byPath))
	for k, v := range r.byPath {
		byPath[k] = v
	}

	return Snapshot{
		TotalRequests: r.total,
		ByMethod:      byMethod,
		ByPath:        byPath,
		ErrorCount:    r.errors,
		StartTime:     r.started,
		UptimeSeconds: int64(r.now().Sub(r.started) / time.Second),
	}
}
