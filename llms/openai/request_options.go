package openai

// RequestOptions are request options specific to OpenAI.
//
// Note that reasoning effort is not here: it is portable and set directly on
// the request with WithReasoningEffort.
type RequestOptions struct {
	// Seed asks the provider for best-effort deterministic sampling.
	Seed *int64
	// User is an end-user identifier forwarded for abuse detection.
	User string
}

func (RequestOptions) ProviderRequestOptions() {}
