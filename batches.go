package modelmill

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/modelmill/modelmill/internal"
)

type BatchStatus int

const (
	BatchPending BatchStatus = iota
	BatchRunning
	BatchFinished
	BatchError
)

// BatchUnsupported can be embedded by providers without a batch mode to
// satisfy the Llm interface.
type BatchUnsupported struct{}

func (BatchUnsupported) SubmitBatch(ctx context.Context, llm internal.Adapter, reqs ...Requester) (*UntypedBatchPromise, error) {
	return nil, errors.New("provider does not support batch mode")
}

func (BatchUnsupported) Check(context.Context, *UntypedBatchPromise) (BatchStatus, error) {
	return BatchError, errors.New("provider does not support batch mode")
}

func (BatchUnsupported) Wait(ctx context.Context, pr *UntypedBatchPromise) <-chan BatchWaitResponse {
	ch := make(chan BatchWaitResponse, 1)
	ch <- BatchWaitResponse{Status: BatchError, Error: errors.New("provider does not support batch mode")}
	close(ch)

	return ch
}

// Batch is a set of requests to be submitted together for offline processing.
//
// Every request in a batch must carry an ID set with WithId, used to correlate
// responses with their requests.
type Batch[T any] struct {
	Requests []Request[T]
}

// Submit submits the batch on a named provider and returns a promise to poll
// or wait on.
func (b Batch[T]) Submit(ctx context.Context, llm *Modelmill, providerName string) (*BatchPromise[T], error) {
	requesters := make([]Requester, len(b.Requests))

	for idx, r := range b.Requests {
		requesters[idx] = Requester(r)
	}

	promise, err := llm.SubmitBatch(ctx, providerName, requesters...)

	if err != nil {
		return nil, err
	}

	return &BatchPromise[T]{promise}, nil
}

// UntypedBatchPromise is a handle on a submitted batch job.
type UntypedBatchPromise struct {
	Provider     Llm
	ProviderName string
	Id           string
}

// BatchPromise is a typed handle on a submitted batch job.
type BatchPromise[T any] struct {
	*UntypedBatchPromise
}

// Check polls the provider once for the batch status.
func (p BatchPromise[T]) Check(ctx context.Context) (BatchStatus, error) {
	return p.Provider.Check(ctx, p.UntypedBatchPromise)
}

// Wait blocks until the batch job completes or the context is cancelled, and
// returns the responses keyed by request ID.
func (p BatchPromise[T]) Wait(ctx context.Context) (map[string]Response[T], error) {
	inners, ok := <-p.Provider.Wait(ctx, p.UntypedBatchPromise)
	if !ok {
		return nil, ctx.Err()
	}

	if inners.Error != nil {
		return nil, inners.Error
	}

	responses := make(map[string]Response[T], len(inners.Responses))

	for id, resp := range inners.Responses {
		responses[id] = Response[T]{
			InnerResponse: resp,
		}
	}

	return responses, nil
}

// BatchWaitResponse is emitted on the channel returned by a provider's Wait.
type BatchWaitResponse struct {
	Status BatchStatus
	Error  error

	Responses map[string]InnerResponse
}
