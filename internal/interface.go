package internal

import "net/http"

// Adapter is the view of the main adapter that providers get access to. It
// exposes the shared configuration without giving providers a handle on the
// provider registry itself.
type Adapter interface {
	// DefaultModel returns the model used when neither the request nor the
	// provider specifies one.
	DefaultModel() string
	// ApiKey returns the API key configured on the adapter.
	ApiKey() string
	// SaveContext reports whether conversation history should be maintained
	// between requests.
	SaveContext() bool
	// HttpClient returns the *http.Client providers should route their calls
	// through, or nil to use each SDK's default.
	HttpClient() *http.Client
}

// ProviderRequestOptions is a marker interface implemented by every
// provider-specific request options struct. It carries no behavior, it only
// lets options be stored and retrieved from a request in a type-safe manner.
type ProviderRequestOptions interface {
	// ProviderRequestOptions marks the struct as provider request options.
	ProviderRequestOptions()
}
