// Package sync has small synchronization helpers shared by the schema cache
// and the backend sessions.
package sync

import "sync"

// OnceErr runs a fallible operation exactly once and replays its result (value
// and error) to every subsequent caller. The schema cache relies on this to
// guarantee a descriptor is built at most once per shape, and that a failed
// build is cached rather than retried.
type OnceErr[T any] struct {
	once sync.Once
	v    T
	err  error
}

// Do runs f on the first call; all callers receive the first call's result.
// Concurrent callers block until f completes, so a partially-built value is
// never observed.
func (o *OnceErr[T]) Do(f func() (T, error)) (T, error) {
	o.once.Do(func() {
		o.v, o.err = f()
	})
	return o.v, o.err
}

// OnceValue wraps f so it is invoked at most once, caching both value and
// error for later calls.
func OnceValue[T any](f func() (T, error)) func() (T, error) {
	o := &OnceErr[T]{}
	return func() (T, error) {
		return o.Do(f)
	}
}
