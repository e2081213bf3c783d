package listfetch

import (
	"context"
	"sync"
)

// Result is the terminal outcome of one call: either Value or Err is meaningful, never both.
type Result[V any] struct {
	Value V
	Err   error
}

// Unwrap returns the result as the usual (value, error) pair.
func (r Result[V]) Unwrap() (V, error) { return r.Value, r.Err }

// Future is the pending outcome of one asynchronous call. It settles exactly
// once; later settle attempts are ignored.
type Future[V any] struct {
	once sync.Once
	done chan struct{}
	res  Result[V]
}

func newFuture[V any]() *Future[V] {
	return &Future[V]{done: make(chan struct{})}
}

// settle stores r and releases waiters. It reports whether r became the outcome.
func (f *Future[V]) settle(r Result[V]) bool {
	settled := false
	f.once.Do(func() {
		f.res = r
		settled = true
		close(f.done)
	})
	return settled
}

// Done is closed once the future has settled.
func (f *Future[V]) Done() <-chan struct{} { return f.done }

// Result returns the outcome without blocking. ok is false while the call is in flight.
func (f *Future[V]) Result() (res Result[V], ok bool) {
	select {
	case <-f.done:
		return f.res, true
	default:
		return Result[V]{}, false
	}
}

// Await blocks until the future settles or ctx is done. Giving up on the wait
// does not cancel the underlying request; cancel the context passed to the
// fetch for that.
func (f *Future[V]) Await(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.res.Value, f.res.Err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Map derives a future from f. fn runs only when f succeeds, on the goroutine
// that observes f settling; a failure of f is passed through unchanged.
func Map[V, W any](f *Future[V], fn func(V) (W, error)) *Future[W] {
	out := newFuture[W]()
	go func() {
		<-f.done
		if f.res.Err != nil {
			out.settle(Result[W]{Err: f.res.Err})
			return
		}
		w, err := fn(f.res.Value)
		out.settle(Result[W]{Value: w, Err: err})
	}()
	return out
}

// Settled returns an already settled future. Useful for fakes and for
// short-circuiting calls that fail before any I/O.
func Settled[V any](v V, err error) *Future[V] {
	f := newFuture[V]()
	f.settle(Result[V]{Value: v, Err: err})
	return f
}
