package modelmill

import (
	"context"
	"net/http"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/modelmill/modelmill/internal"
)

const (
	defaultProvider = "__DEFAULT__"
)

// Llm is the interface every LLM provider implements.
type Llm interface {
	Init(llm internal.Adapter) error
	ResetContext()
	ChatCompletion(context.Context, internal.Adapter, Requester) (*InnerResponse, error)
	// RequestOptionsType returns the type of the provider's request options
	// struct, used to route per-provider options stored on a request.
	RequestOptionsType() reflect.Type

	SubmitBatch(ctx context.Context, llm internal.Adapter, reqs ...Requester) (*UntypedBatchPromise, error)
	Check(context.Context, *UntypedBatchPromise) (BatchStatus, error)
	Wait(context.Context, *UntypedBatchPromise) <-chan BatchWaitResponse
}

// Modelmill is the main entrypoint for interacting with different LLM
// providers. It provides a unified interface to send requests and receive
// responses, with reasoning effort treated as a portable request option.
type Modelmill struct {
	providers       map[string]Llm
	defaultProvider Llm

	httpClient *http.Client

	defaultModel string
	apiKey       string
	saveContext  bool
}

// New creates a new Modelmill with the given options.
// It initializes the registered LLM providers and returns a configured
// adapter.
//
// Example usage:
//
//	llm, err := modelmill.New(
//		modelmill.WithDefaultProvider(provider),
//		modelmill.WithDefaultModel("gpt-5-mini"),
//	)
func New(opts ...Option) (*Modelmill, error) {
	llm := Modelmill{
		providers: make(map[string]Llm),
	}

	for _, opt := range opts {
		opt(&llm)
	}

	for name, provider := range llm.providers {
		if err := provider.Init(&llm); err != nil {
			return nil, errors.Wrapf(err, "could not initialize provider '%s'", name)
		}
	}

	return &llm, nil
}

// ResetContext clears the conversation history maintained by the adapter.
// This is useful when you want to start a new conversation without creating a
// new adapter instance. This also clears the system instructions.
//
// With no argument, every registered provider is reset. Otherwise, only the
// named providers are.
func (llm *Modelmill) ResetContext(providers ...string) {
	if len(providers) == 0 {
		for _, provider := range llm.providers {
			provider.ResetContext()
		}

		return
	}

	for _, provider := range providers {
		if _, ok := llm.providers[provider]; ok {
			llm.providers[provider].ResetContext()
		}
	}
}

// GetProvider resolves a provider by name, or the default provider when no
// name is given.
func (llm *Modelmill) GetProvider(requestProvider *string) (Llm, error) {
	if requestProvider != nil {
		p, ok := llm.providers[*requestProvider]
		if !ok {
			return nil, errors.Newf("unknown provider '%s'", *requestProvider)
		}

		return p, nil
	}

	if llm.defaultProvider == nil {
		return nil, errors.New("no provider was configured")
	}

	return llm.defaultProvider, nil
}

// SubmitBatch submits a set of requests as an offline batch on a named
// provider. Requests in a batch are correlated to their responses by the ID
// set with WithId.
func (llm *Modelmill) SubmitBatch(ctx context.Context, providerName string, reqs ...Requester) (*UntypedBatchPromise, error) {
	provider, err := llm.GetProvider(&providerName)
	if err != nil {
		return nil, err
	}

	promise, err := provider.SubmitBatch(ctx, llm, reqs...)
	if err != nil {
		return nil, err
	}

	promise.ProviderName = providerName

	return promise, nil
}

// Modelmill implementation of internal.Adapter.

func (llm *Modelmill) DefaultModel() string {
	return llm.defaultModel
}

func (llm *Modelmill) ApiKey() string {
	return llm.apiKey
}

func (llm *Modelmill) SaveContext() bool {
	return llm.saveContext
}

func (llm *Modelmill) HttpClient() *http.Client {
	return llm.httpClient
}
