package finnhub

import "context"

// Result is the outcome of an asynchronous call.
type Result[T any] struct {
	Value T
	Err   error
}

// Go runs fn on its own goroutine. The returned channel receives exactly one
// Result and is closed afterwards, so it is safe to range over it.
//
//	ch := finnhub.Go(ctx, func(ctx context.Context) (finnhub.SearchResponse, error) {
//		return cl.Search(ctx, "apple")
//	})
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := fn(ctx)
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}
