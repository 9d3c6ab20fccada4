package openai

type Opt func(*OpenAi)

// WithBaseUrl sets the URL at which the OpenAI-compatible API is available.
//
// If not specified, will use OpenAI's API.
func WithBaseUrl(url string) Opt {
	return func(p *OpenAi) {
		p.baseUrl = url
	}
}

// WithApiKey sets a provider-specific API key, overriding the adapter's.
func WithApiKey(apiKey string) Opt {
	return func(p *OpenAi) {
		p.apiKey = apiKey
	}
}

// WithDefaultModel sets the model used for requests that do not specify one,
// overriding the adapter's default model.
func WithDefaultModel(model string) Opt {
	return func(p *OpenAi) {
		p.model = &model
	}
}
