package aistudio_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	modelmill "github.com/modelmill/modelmill"
	"github.com/modelmill/modelmill/llms/aistudio"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

const geminiResponse = `{
	"responseId": "theid",
	"modelVersion": "themodel",
	"candidates": [
		{
			"finishReason": "STOP",
			"content": {
				"role": "model",
				"parts": [
					{"text": "A thought about the question", "thought": true},
					{"text": "The response"}
				]
			}
		}
	]
}`

func newTestAdapter(t *testing.T) *modelmill.Modelmill {
	t.Helper()

	client := &http.Client{}
	gock.InterceptClient(client)

	provider, _ := aistudio.New(aistudio.WithApiKey("apikey"))
	llm, err := modelmill.New(
		modelmill.WithDefaultProvider(provider),
		modelmill.WithHttpClient(client),
	)

	assert.Nil(t, err)

	return llm
}

func TestAiStudioRequest(t *testing.T) {
	defer gock.Off()

	llm := newTestAdapter(t)

	gock.New("https://generativelanguage.googleapis.com").
		Post("/v1beta/models/themodel:generateContent").
		AddMatcher(func(req *http.Request, _ *gock.Request) (bool, error) {
			body, _ := io.ReadAll(req.Body)

			assert.Equal(t, "system text", gjson.GetBytes(body, "systemInstruction.parts.0.text").String())
			assert.Equal(t, "user text", gjson.GetBytes(body, "contents.0.parts.0.text").String())
			assert.Equal(t, "user", gjson.GetBytes(body, "contents.0.role").String())

			return true, nil
		}).
		Reply(http.StatusOK).
		SetHeader("content-type", "application/json").BodyString(geminiResponse)

	resp, err := modelmill.NewUntypedRequest().
		WithModel("themodel").
		WithInstruction("system text").
		WithText(modelmill.RoleUser, "user text").
		Do(t.Context(), llm)

	assert.False(t, gock.HasUnmatchedRequest())
	assert.Nil(t, err)
	assert.Equal(t, "theid", resp.Id)
	assert.Equal(t, "themodel", resp.Model)

	candidate, err := resp.Candidate(0)

	assert.Nil(t, err)
	assert.Equal(t, "The response", candidate.Text)
	assert.Equal(t, []string{"A thought about the question"}, candidate.Thoughts)
	assert.Equal(t, modelmill.FinishReasonStop, candidate.FinishReason)
}

func TestAiStudioThinkingConfig(t *testing.T) {
	tts := []struct {
		name     string
		effort   *modelmill.ReasoningEffort
		thinking *bool
		budget   *int64
	}{
		{"without effort", nil, nil, nil},
		{"low effort", lo.ToPtr(modelmill.EffortLow), nil, lo.ToPtr(int64(1024))},
		{"medium effort", lo.ToPtr(modelmill.EffortMedium), nil, lo.ToPtr(int64(8192))},
		{"high effort", lo.ToPtr(modelmill.EffortHigh), nil, lo.ToPtr(int64(24576))},
		{"thinking disabled", lo.ToPtr(modelmill.EffortHigh), lo.ToPtr(false), lo.ToPtr(int64(0))},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()

			llm := newTestAdapter(t)

			gock.New("https://generativelanguage.googleapis.com").
				Post("/v1beta/models/themodel:generateContent").
				AddMatcher(func(req *http.Request, _ *gock.Request) (bool, error) {
					body, _ := io.ReadAll(req.Body)

					budget := gjson.GetBytes(body, "generationConfig.thinkingConfig.thinkingBudget")

					if tt.budget == nil {
						assert.False(t, budget.Exists())
					} else {
						assert.Equal(t, *tt.budget, budget.Int())
					}

					return true, nil
				}).
				Reply(http.StatusOK).
				SetHeader("content-type", "application/json").BodyString(geminiResponse)

			req := modelmill.NewUntypedRequest().
				WithModel("themodel").
				WithText(modelmill.RoleUser, "user text")

			if tt.effort != nil {
				req = req.WithReasoningEffort(*tt.effort)
			}
			if tt.thinking != nil {
				req = req.WithThinking(*tt.thinking)
			}

			resp, err := req.Do(t.Context(), llm)

			assert.False(t, gock.HasUnmatchedRequest())
			assert.Nil(t, err)
			assert.NotNil(t, resp)
		})
	}
}

func TestAiStudioMissingModel(t *testing.T) {
	provider, _ := aistudio.New(aistudio.WithApiKey("apikey"))
	llm, _ := modelmill.New(modelmill.WithDefaultProvider(provider))

	resp, err := modelmill.NewUntypedRequest().
		WithText(modelmill.RoleUser, "user text").
		Do(t.Context(), llm)

	assert.ErrorContains(t, err, "no model was configured")
	assert.Nil(t, resp)
}
