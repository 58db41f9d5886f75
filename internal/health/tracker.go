// Package health tracks per-source circuit-breaker state. A source that
// fails enough consecutive runs is blocked for a window; the unblock check is
// evaluated lazily on the next availability probe, no background timer.
package health

import (
	"fmt"
	"sync"
	"time"

	"jobmatch-engine/internal/domain"
)

type Tracker struct {
	mu      sync.Mutex
	sources map[string]*domain.SourceHealth
	order   []string

	threshold   int
	blockWindow time.Duration

	now func() time.Time
}

// New seeds one record per known source: enabled, not blocked, zero failures.
// Records are never deleted, only reset.
func New(sources []string, failureThreshold int, blockWindow time.Duration) *Tracker {
	t := &Tracker{
		sources:     make(map[string]*domain.SourceHealth, len(sources)),
		threshold:   failureThreshold,
		blockWindow: blockWindow,
		now:         time.Now,
	}
	for _, s := range sources {
		if _, ok := t.sources[s]; ok {
			continue
		}
		t.sources[s] = &domain.SourceHealth{Source: s, Enabled: true}
		t.order = append(t.order, s)
	}
	return t
}

// IsAvailable reports enabled && !blocked, first applying the automatic
// unblock rule: if the block window has elapsed the source is reset as a side
// effect of the check.
func (t *Tracker) IsAvailable(source string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.sources[source]
	if !ok {
		return false
	}
	t.maybeExpireLocked(h)
	return h.Enabled && !h.IsBlocked
}

// RecordSuccess resets the failure count and unblocks the source if it was
// blocked.
func (t *Tracker) RecordSuccess(source string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.sources[source]
	if !ok {
		return
	}
	now := t.now()
	h.ConsecutiveFailures = 0
	h.LastSuccess = &now
	h.LastRun = &now
	h.IsBlocked = false
	h.BlockedAt = nil
}

// RecordFailure bumps the consecutive-failure count and reports whether this
// particular failure tripped the breaker, so the run result can be marked
// blocked.
func (t *Tracker) RecordFailure(source string) (newlyBlocked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.sources[source]
	if !ok {
		return false
	}
	now := t.now()
	h.ConsecutiveFailures++
	h.LastRun = &now
	if !h.IsBlocked && h.ConsecutiveFailures >= t.threshold {
		h.IsBlocked = true
		h.BlockedAt = &now
		return true
	}
	return false
}

// Enable and Disable are operator actions independent of the failure state
// machine. A disabled source is never scheduled regardless of block status.
func (t *Tracker) Enable(source string) error  { return t.setEnabled(source, true) }
func (t *Tracker) Disable(source string) error { return t.setEnabled(source, false) }

func (t *Tracker) setEnabled(source string, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.sources[source]
	if !ok {
		return fmt.Errorf("unknown source %q", source)
	}
	h.Enabled = enabled
	return nil
}

// Unblock is the manual operator reset: clears the block and the failure
// count.
func (t *Tracker) Unblock(source string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.sources[source]
	if !ok {
		return fmt.Errorf("unknown source %q", source)
	}
	h.IsBlocked = false
	h.BlockedAt = nil
	h.ConsecutiveFailures = 0
	return nil
}

// Statuses returns a snapshot of every source in registration order. The
// expiry rule runs here too, so a status query never reports a block whose
// window has already elapsed.
func (t *Tracker) Statuses() []domain.SourceHealth {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.SourceHealth, 0, len(t.order))
	for _, name := range t.order {
		h := t.sources[name]
		t.maybeExpireLocked(h)
		out = append(out, *h)
	}
	return out
}

func (t *Tracker) maybeExpireLocked(h *domain.SourceHealth) {
	if !h.IsBlocked || h.BlockedAt == nil {
		return
	}
	if t.now().Sub(*h.BlockedAt) >= t.blockWindow {
		h.IsBlocked = false
		h.BlockedAt = nil
		h.ConsecutiveFailures = 0
	}
}
