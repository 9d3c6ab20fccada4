package aistudio

import "google.golang.org/genai"

type Opt func(*AiStudio)

// WithBackend selects which Google GenAI backend to use (Vertex AI or Gemini).
//
// It only accepts values of `genai.BackendGeminiAPI` or `genai.BackendVertexAI`.
func WithBackend(backend genai.Backend) Opt {
	return func(p *AiStudio) {
		p.backend = backend
	}
}

// WithProject defines the Google Cloud Platform project to use to connect to Vertex AI.
//
// It is only taken into account when using the Vertex AI backend.
func WithProject(project string) Opt {
	return func(p *AiStudio) {
		p.project = project
	}
}

// WithLocation defines the Google Cloud Platform region to use to connect to Vertex AI.
//
// It is only taken into account when using the Vertex AI backend.
func WithLocation(location string) Opt {
	return func(p *AiStudio) {
		p.location = location
	}
}

// WithApiKey sets a provider-specific API key, overriding the adapter's.
//
// It is only taken into account when using the Gemini API backend.
func WithApiKey(apiKey string) Opt {
	return func(p *AiStudio) {
		p.apiKey = apiKey
	}
}

// WithDefaultModel sets the model used for requests that do not specify one,
// overriding the adapter's default model.
func WithDefaultModel(model string) Opt {
	return func(p *AiStudio) {
		p.model = &model
	}
}

// WithName gives the provider instance a name. Batches can only be created on
// named providers.
func WithName(name string) Opt {
	return func(p *AiStudio) {
		p.name = name
	}
}

// WithBucket sets the Google Cloud Storage bucket batch inputs and outputs go
// through.
//
// It is only taken into account when using the Vertex AI backend.
func WithBucket(bucket string) Opt {
	return func(p *AiStudio) {
		p.bucket = bucket
	}
}
