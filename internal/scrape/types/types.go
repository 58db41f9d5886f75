// Package types holds the crawler adapter contract. One adapter exists per
// job portal; each is independently swappable and owns its retry, timeout,
// and pacing concerns. The orchestrator only consumes this interface and
// treats any returned error as a hard source failure for that run.
package types

import (
	"context"

	"jobmatch-engine/internal/domain"
)

type Adapter interface {
	Name() string
	Scrape(ctx context.Context, cfg domain.SearchConfig) ([]domain.NormalizedJob, error)
	TestConnection(ctx context.Context) bool
}

// Registry maps source name -> adapter, preserving registration order so
// batch partitioning and status listings stay deterministic.
type Registry struct {
	order    []string
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

func (r *Registry) Register(a Adapter) {
	if _, ok := r.adapters[a.Name()]; ok {
		return
	}
	r.adapters[a.Name()] = a
	r.order = append(r.order, a.Name())
}

func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

func (r *Registry) Sources() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
