package modelmill

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

type AsyncResponse[T any] struct {
	Response *Response[T]
	Error    error
}

// All executes all requests concurrently and returns their responses in the
// order the requests were given. Each response carries its own error.
func All[T any](ctx context.Context, llm *Modelmill, reqs ...Request[T]) []AsyncResponse[T] {
	var wg sync.WaitGroup

	responses := make([]AsyncResponse[T], len(reqs))

	for idx, req := range reqs {
		wg.Add(1)

		go func() {
			defer wg.Done()

			resp, err := req.Do(ctx, llm)
			if err != nil {
				responses[idx] = AsyncResponse[T]{Error: err}
				return
			}

			responses[idx] = AsyncResponse[T]{Response: resp}
		}()
	}

	wg.Wait()

	return responses
}

// Race executes all requests concurrently and returns the first successful
// response. It only fails after every request has failed, or when the context
// is cancelled.
func Race[T any](ctx context.Context, llm *Modelmill, reqs ...Request[T]) (*Response[T], error) {
	if len(reqs) == 0 {
		return nil, errors.New("no requests to race")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := make(chan AsyncResponse[T], len(reqs))

	for _, req := range reqs {
		go func() {
			resp, err := req.Do(ctx, llm)
			if err != nil {
				c <- AsyncResponse[T]{Error: err}
				return
			}

			c <- AsyncResponse[T]{Response: resp}
		}()
	}

	errored := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case value := <-c:
			switch value.Error {
			case nil:
				return value.Response, nil

			default:
				errored += 1

				if errored == len(reqs) {
					return nil, errors.New("all requests failed")
				}
			}
		}
	}
}
