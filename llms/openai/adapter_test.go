package openai

import (
	"testing"

	modelmill "github.com/modelmill/modelmill"
	"github.com/openai/openai-go/shared"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestAdaptRequestModel(t *testing.T) {
	llm, _ := modelmill.New(modelmill.WithDefaultModel("adaptermodel"))

	t.Run("from the adapter", func(t *testing.T) {
		p, _ := New()
		req := modelmill.NewUntypedRequest()

		cfg, err := p.adaptRequest(llm, req)

		assert.Nil(t, err)
		assert.Equal(t, "adaptermodel", cfg.Model)
	})

	t.Run("from the provider", func(t *testing.T) {
		p, _ := New(WithDefaultModel("providermodel"))
		req := modelmill.NewUntypedRequest()

		cfg, err := p.adaptRequest(llm, req)

		assert.Nil(t, err)
		assert.Equal(t, "providermodel", cfg.Model)
	})

	t.Run("from the request", func(t *testing.T) {
		p, _ := New(WithDefaultModel("providermodel"))
		req := modelmill.NewUntypedRequest().WithModel("requestmodel")

		cfg, err := p.adaptRequest(llm, req)

		assert.Nil(t, err)
		assert.Equal(t, "requestmodel", cfg.Model)
	})
}

func TestAdaptRequestReasoningEffort(t *testing.T) {
	llm, _ := modelmill.New(modelmill.WithDefaultModel("themodel"))
	p, _ := New()

	t.Run("unset by default", func(t *testing.T) {
		cfg, err := p.adaptRequest(llm, modelmill.NewUntypedRequest())

		assert.Nil(t, err)
		assert.Empty(t, cfg.ReasoningEffort)
	})

	for _, effort := range []modelmill.ReasoningEffort{modelmill.EffortLow, modelmill.EffortMedium, modelmill.EffortHigh} {
		t.Run(string(effort), func(t *testing.T) {
			req := modelmill.NewUntypedRequest().WithReasoningEffort(effort)

			cfg, err := p.adaptRequest(llm, req)

			assert.Nil(t, err)
			assert.Equal(t, shared.ReasoningEffort(effort), cfg.ReasoningEffort)
		})
	}
}

func TestAdaptRequestMessages(t *testing.T) {
	llm, _ := modelmill.New(modelmill.WithDefaultModel("themodel"))
	p, _ := New()

	req := modelmill.NewUntypedRequest().
		WithInstruction("system text").
		WithText(modelmill.RoleUser, "user text").
		WithText(modelmill.RoleAi, "assistant text")

	cfg, err := p.adaptRequest(llm, req)

	assert.Nil(t, err)
	assert.Len(t, cfg.Messages, 3)

	assert.NotNil(t, cfg.Messages[0].OfSystem)
	assert.Equal(t, "system text", cfg.Messages[0].OfSystem.Content.OfArrayOfContentParts[0].Text)

	assert.NotNil(t, cfg.Messages[1].OfUser)
	assert.Equal(t, "user text", cfg.Messages[1].OfUser.Content.OfArrayOfContentParts[0].OfText.Text)

	assert.NotNil(t, cfg.Messages[2].OfAssistant)
	assert.Equal(t, "assistant text", cfg.Messages[2].OfAssistant.Content.OfArrayOfContentParts[0].OfText.Text)
}

func TestAdaptRequestParameters(t *testing.T) {
	llm, _ := modelmill.New(modelmill.WithDefaultModel("themodel"))
	p, _ := New()

	req := modelmill.NewUntypedRequest().
		WithMaxTokens(100).
		WithMaxCandidates(3).
		WithTemperature(0.5).
		WithTopP(0.9).
		WithProviderOptions(RequestOptions{
			Seed: lo.ToPtr(int64(1234)),
			User: "theuser",
		})

	cfg, err := p.adaptRequest(llm, req)

	assert.Nil(t, err)
	assert.EqualValues(t, 100, cfg.MaxTokens.Value)
	assert.EqualValues(t, 3, cfg.N.Value)
	assert.EqualValues(t, 0.5, cfg.Temperature.Value)
	assert.EqualValues(t, 0.9, cfg.TopP.Value)
	assert.EqualValues(t, 1234, cfg.Seed.Value)
	assert.Equal(t, "theuser", cfg.User.Value)
}

func TestAdaptRequestResponseFormat(t *testing.T) {
	type Output struct {
		Reply string `json:"reply"`
	}

	llm, _ := modelmill.New(modelmill.WithDefaultModel("themodel"))
	p, _ := New()

	cfg, err := p.adaptRequest(llm, modelmill.NewRequest[Output]())

	assert.Nil(t, err)
	assert.NotNil(t, cfg.ResponseFormat.OfJSONSchema)
	assert.True(t, cfg.ResponseFormat.OfJSONSchema.JSONSchema.Strict.Value)
}

func TestAdaptRequestTools(t *testing.T) {
	type Args struct {
		Name string `json:"name"`
	}

	llm, _ := modelmill.New(modelmill.WithDefaultModel("themodel"))
	p, _ := New()

	req := modelmill.NewUntypedRequest().
		WithTools(modelmill.NewTool[Args]("thetool", "Tool doing nothing", modelmill.Function(func(Args) (string, error) {
			return "OK", nil
		})))

	cfg, err := p.adaptRequest(llm, req)

	assert.Nil(t, err)
	assert.Len(t, cfg.Tools, 1)
	assert.Equal(t, "thetool", cfg.Tools[0].Function.Name)
	assert.Equal(t, "Tool doing nothing", cfg.Tools[0].Function.Description.Value)
	assert.Contains(t, cfg.Tools[0].Function.Parameters, "properties")
}

func TestAdaptFinishReason(t *testing.T) {
	assert.Equal(t, modelmill.FinishReasonStop, adaptFinishReason("stop"))
	assert.Equal(t, modelmill.FinishReasonLength, adaptFinishReason("length"))
	assert.Equal(t, modelmill.FinishReasonToolCalls, adaptFinishReason("tool_calls"))
	assert.Equal(t, modelmill.FinishReasonToolCalls, adaptFinishReason("function_call"))
	assert.Equal(t, modelmill.FinishReasonFiltered, adaptFinishReason("content_filter"))
	assert.Equal(t, modelmill.FinishReasonUnknown, adaptFinishReason("something_else"))
}
