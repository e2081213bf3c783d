package listfetch

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestFutureSettlesOnce(t *testing.T) {
	f := newFuture[int]()
	if _, ok := f.Result(); ok {
		t.Fatalf("fresh future must be pending")
	}
	if !f.settle(Result[int]{Value: 1}) {
		t.Fatalf("first settle must win")
	}
	if f.settle(Result[int]{Value: 2}) {
		t.Fatalf("second settle must be ignored")
	}

	res, ok := f.Result()
	if !ok || res.Value != 1 {
		t.Fatalf("Result = %+v, %v", res, ok)
	}
	select {
	case <-f.Done():
	default:
		t.Fatalf("Done must be closed after settle")
	}
}

func TestFutureAwaitHonoursContext(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := f.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	f.settle(Result[int]{Value: 7})
	v, err := f.Await(context.Background())
	if err != nil || v != 7 {
		t.Fatalf("Await = %d, %v", v, err)
	}
}

func TestMapTransformsSuccess(t *testing.T) {
	out := Map(Settled([]int{1, 2, 3}, nil), func(v []int) (string, error) {
		return strconv.Itoa(len(v)), nil
	})

	got, err := out.Await(context.Background())
	if err != nil || got != "3" {
		t.Fatalf("Map = %q, %v", got, err)
	}
}

func TestMapPassesErrorsThrough(t *testing.T) {
	cause := &Error{Kind: KindServerError, StatusCode: 500}
	called := false
	out := Map(Settled[[]int](nil, cause), func([]int) (int, error) {
		called = true
		return 0, nil
	})

	_, err := out.Await(context.Background())
	if !errors.Is(err, ErrServerError) {
		t.Fatalf("expected server error, got %v", err)
	}
	if called {
		t.Fatalf("mapper must not run on failure")
	}
}
