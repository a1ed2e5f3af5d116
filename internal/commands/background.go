package commands

import "context"

type backgroundOutcome[T any] struct {
	value T
	err   error
}

// RunInBackground runs operation in its own goroutine and waits for it or for ctx.
// When ctx finishes first the operation is abandoned and ctx.Err() is returned; its eventual result is discarded.
func RunInBackground[T any](ctx context.Context, operation func(context.Context) (T, error)) (T, error) {
	outcomes := make(chan backgroundOutcome[T], 1)
	go func() {
		value, err := operation(ctx)
		outcomes <- backgroundOutcome[T]{value: value, err: err}
	}()

	select {
	case outcome := <-outcomes:
		return outcome.value, outcome.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
