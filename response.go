package modelmill

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
)

type FinishReason int

const (
	FinishReasonUnknown FinishReason = iota
	FinishReasonStop
	FinishReasonLength
	FinishReasonToolCalls
	FinishReasonFiltered
)

// Candidater represents a type that can have several candidates.
type Candidater interface {
	NumCandidates() int
	Candidate(int) (*ResponseCandidate, error)
}

// InnerResponse is a response from an LLM provider.
type InnerResponse struct {
	Id         string
	Model      string
	Created    time.Time
	Candidates []ResponseCandidate
}

// ResponseCandidate represents one generated answer in a response.
type ResponseCandidate struct {
	Text         string
	FinishReason FinishReason
	// Thoughts contains the model's reasoning summaries, when the request
	// asked for them and the provider returns any.
	Thoughts  []string
	ToolCalls []ResponseToolCall
	Grounding *ResponseGrounding
	// SelectCandidate commits the candidate to the conversation history.
	SelectCandidate func()
}

// ResponseGrounding contains the web search activity a provider performed to
// ground its answer.
type ResponseGrounding struct {
	Searches []string
	Sources  []ResponseGroundingSource
	Snippets []string
}

type ResponseGroundingSource struct {
	Title  string
	Domain string
	Url    string
	Date   time.Time
}

// ResponseToolCall is a request from an LLM provider to execute a tool.
type ResponseToolCall struct {
	Id         string
	Name       string
	Parameters []byte
}

type Response[T any] struct {
	InnerResponse
}

func (r Response[T]) NumCandidates() int {
	return len(r.Candidates)
}

func (r Response[T]) Candidate(idx int) (*ResponseCandidate, error) {
	if idx > len(r.Candidates)-1 {
		return nil, errors.Newf("candidate %d does not exist (%d candidates)", idx, len(r.Candidates))
	}

	return &r.Candidates[idx], nil
}

// Get returns the content of the idx-th candidate, decoded into T when the
// request declared a response schema.
func (r Response[T]) Get(idx int) (T, error) {
	if idx > len(r.Candidates)-1 {
		return *new(T), errors.Newf("candidate %d does not exist (%d candidates)", idx, len(r.Candidates))
	}

	candidate := r.Candidates[idx]

	switch any(*new(T)).(type) {
	case string:
		return any(candidate.Text).(T), nil

	default:
		output := new(T)

		if err := json.Unmarshal([]byte(candidate.Text), output); err != nil {
			return *new(T), errors.Wrap(err, "failed to decode response to schema")
		}

		return *output, nil
	}
}
