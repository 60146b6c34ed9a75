// Package health tracks the health of the service's dependencies. The
// readiness endpoint asks the registry whether the service should accept
// traffic; the store registers its checker here at startup.
package health

import (
	"context"
	"sync"

	"github.com/phaseline/phaseline/internal/ports"
)

var _ ports.HealthRegistry = (*Registry)(nil)

// Registry is a concurrency-safe collection of [ports.HealthChecker]
// implementations, checked together on each readiness probe.
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a checker. Safe for concurrent use.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	r.checkers = append(r.checkers, checker)
	r.mu.Unlock()
}

// CheckAll runs every registered check and returns the results keyed by
// checker name; a nil value means healthy. Checkers are copied out under
// the read lock so the checks themselves run unlocked.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := make([]ports.HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	results := make(map[string]error, len(checkers))
	for _, c := range checkers {
		results[c.Name()] = c.HealthCheck(ctx)
	}
	return results
}
