package modelmill

import "net/http"

type Option func(*Modelmill)

// WithProvider registers a named LLM provider.
//
// The first registered provider becomes the default one, unless
// WithDefaultProvider is also used.
func WithProvider(name string, provider Llm) Option {
	return func(llm *Modelmill) {
		llm.providers[name] = provider

		if llm.defaultProvider == nil {
			llm.defaultProvider = provider
		}
	}
}

// WithDefaultProvider registers the provider requests are sent to when they do
// not select one explicitly.
func WithDefaultProvider(provider Llm) Option {
	return func(llm *Modelmill) {
		llm.providers[defaultProvider] = provider
		llm.defaultProvider = provider
	}
}

// WithDefaultModel sets the model used when neither the request nor the
// provider specifies one.
func WithDefaultModel(model string) Option {
	return func(llm *Modelmill) {
		llm.defaultModel = model
	}
}

// WithApiKey sets the API key shared by providers that do not carry their own.
func WithApiKey(key string) Option {
	return func(llm *Modelmill) {
		llm.apiKey = key
	}
}

// WithHttpClient makes all providers send their requests through the given
// *http.Client.
func WithHttpClient(client *http.Client) Option {
	return func(llm *Modelmill) {
		llm.httpClient = client
	}
}

// WithSaveContext enables conversation history: request messages and selected
// response candidates are replayed on subsequent requests.
func WithSaveContext() Option {
	return func(llm *Modelmill) {
		llm.saveContext = true
	}
}
