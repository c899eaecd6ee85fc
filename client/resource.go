package client

import (
	"context"
	"sync"
)

// Resource wraps an asynchronous producer in the loading/data/error state
// machine the frontend uses for every server read. A failed refetch stores
// the error but leaves the previously loaded data in place.
//
// Concurrent Execute calls are allowed; the last one to settle determines the
// final state. There is no cancellation token.
type Resource[T any] struct {
	mu      sync.Mutex
	fetch   func(context.Context) (T, error)
	data    T
	loaded  bool
	loading bool
	err     error
}

// ResourceOption configures a Resource at construction.
type ResourceOption[T any] func(*Resource[T])

// Immediate kicks off the first Execute as soon as the resource is built,
// mirroring the hook's default fetch-on-mount behavior.
func Immediate[T any](ctx context.Context) ResourceOption[T] {
	return func(r *Resource[T]) {
		go r.Execute(ctx) //nolint:errcheck
	}
}

func NewResource[T any](fetch func(context.Context) (T, error), opts ...ResourceOption[T]) *Resource[T] {
	r := &Resource[T]{fetch: fetch}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs the producer: loading is set and the error cleared up front;
// on success the result replaces the data; on failure the error is stored and
// returned so callers can react to specific error classes.
func (r *Resource[T]) Execute(ctx context.Context) (T, error) {
	r.mu.Lock()
	r.loading = true
	r.err = nil
	r.mu.Unlock()

	data, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		r.err = err
		return r.data, err
	}
	r.data = data
	r.loaded = true
	return data, nil
}

// State returns the current snapshot. loaded reports whether data has ever
// been successfully fetched.
func (r *Resource[T]) State() (data T, loaded, loading bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data, r.loaded, r.loading, r.err
}

// Mutation is the sibling of Resource for writes: it never runs on its own,
// only through Mutate, and can be Reset back to idle.
type Mutation[In, Out any] struct {
	mu      sync.Mutex
	run     func(context.Context, In) (Out, error)
	data    Out
	loaded  bool
	loading bool
	err     error
}

func NewMutation[In, Out any](run func(context.Context, In) (Out, error)) *Mutation[In, Out] {
	return &Mutation[In, Out]{run: run}
}

func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.loading = true
	m.err = nil
	m.mu.Unlock()

	out, err := m.run(ctx, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.err = err
		return m.data, err
	}
	m.data = out
	m.loaded = true
	return out, nil
}

// Reset returns the mutation to its initial idle state.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero Out
	m.data = zero
	m.loaded = false
	m.loading = false
	m.err = nil
}

func (m *Mutation[In, Out]) State() (data Out, loaded, loading bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, m.loaded, m.loading, m.err
}
