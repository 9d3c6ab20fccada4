package aistudio

// ThinkingConfig controls model reasoning directly, in tokens.
type ThinkingConfig struct {
	// IncludeThoughts asks the model to return its thought summaries in the
	// response.
	IncludeThoughts bool
	// Budget is the thinking token budget. To disable thinking, set it to 0.
	// cf: https://cloud.google.com/vertex-ai/generative-ai/docs/thinking#budget
	Budget *int
}

// RequestOptions are request options specific to Google GenAI.
//
// Thinking is the native alternative to the portable WithReasoningEffort: when
// set, it takes precedence over the effort-derived budget.
type RequestOptions struct {
	GoogleSearch *bool
	TopK         *float64
	Thinking     *ThinkingConfig
}

func (RequestOptions) ProviderRequestOptions() {}
