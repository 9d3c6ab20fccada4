package modelmill

import (
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestToolCalled(t *testing.T) {
	type Args struct {
		Integer int `json:"integer"`
	}

	called := 0

	tool := NewTool[Args]("name", "", Function(func(args Args) (string, error) {
		called += args.Integer

		return "called", nil
	}))

	resp := Response[string]{
		InnerResponse: InnerResponse{
			Candidates: []ResponseCandidate{{
				ToolCalls: []ResponseToolCall{
					{
						Id:         "id",
						Name:       "name",
						Parameters: []byte(`{"integer": 10}`),
					},
				},
				SelectCandidate: func() {},
			}},
		},
	}

	req := NewUntypedRequest().FromCandidate(resp, 0).WithToolExecution(tool)

	assert.Nil(t, req.err)
	assert.Equal(t, 10, called)
	assert.Len(t, req.Messages, 1)
	assert.NotNil(t, req.Messages[0].Tool)
	assert.Equal(t, "id", req.Messages[0].Tool.Id)
	assert.Equal(t, "name", req.Messages[0].Tool.Name)
	assert.Equal(t, RoleTool, req.Messages[0].Role)
	assert.Equal(t, TypeText, req.Messages[0].Type)
	assert.Len(t, req.Messages[0].Parts, 1)

	content, err := io.ReadAll(req.Messages[0].Parts[0])

	assert.Nil(t, err)
	assert.Equal(t, "called", string(content))
}

func TestToolWithoutCandidate(t *testing.T) {
	type Args struct {
		Integer int `json:"integer"`
	}

	tool := NewTool[Args]("name", "", Function(func(args Args) (string, error) {
		return "called", nil
	}))

	req := NewUntypedRequest().WithToolExecution(tool)

	assert.ErrorContains(t, req.err, "cannot execute tools without selecting a response candidate")
}

func TestToolNotRegistered(t *testing.T) {
	resp := Response[string]{
		InnerResponse: InnerResponse{
			Candidates: []ResponseCandidate{{
				ToolCalls: []ResponseToolCall{
					{
						Id:         "id",
						Name:       "unknowntool",
						Parameters: []byte(`{}`),
					},
				},
				SelectCandidate: func() {},
			}},
		},
	}

	req := NewUntypedRequest().FromCandidate(resp, 0).WithToolExecution()

	assert.ErrorContains(t, req.err, "no tool was registered for response to tool 'unknowntool'")
}

func TestToolReturningError(t *testing.T) {
	type Args struct{}

	tool := NewTool[Args]("name", "", Function(func(Args) (string, error) {
		return "", errors.New("tool failed")
	}))

	resp := Response[string]{
		InnerResponse: InnerResponse{
			Candidates: []ResponseCandidate{{
				ToolCalls: []ResponseToolCall{
					{
						Id:         "id",
						Name:       "name",
						Parameters: []byte(`{}`),
					},
				},
				SelectCandidate: func() {},
			}},
		},
	}

	req := NewUntypedRequest().FromCandidate(resp, 0).WithToolExecution(tool)

	assert.ErrorContains(t, req.err, "tool failed")
}
