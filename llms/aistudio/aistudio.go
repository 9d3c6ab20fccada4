package aistudio

import (
	"context"
	"encoding/json"
	"io"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	modelmill "github.com/modelmill/modelmill"
	"github.com/modelmill/modelmill/internal"
	"github.com/samber/lo"
	"google.golang.org/genai"
)

// AiStudio is the provider for Google GenAI models, over the Gemini API or
// Vertex AI backends.
type AiStudio struct {
	client  *genai.Client
	history modelmill.History[*genai.Content]

	name     string
	backend  genai.Backend
	project  string
	location string
	bucket   string
	apiKey   string
	model    *string
}

func New(opts ...Opt) (*AiStudio, error) {
	llm := AiStudio{
		backend: genai.BackendGeminiAPI,
	}

	for _, opt := range opts {
		opt(&llm)
	}

	return &llm, nil
}

func (p *AiStudio) Init(llm internal.Adapter) error {
	cfg := genai.ClientConfig{
		Project:    p.project,
		Location:   p.location,
		HTTPClient: llm.HttpClient(),
	}

	if p.backend != genai.BackendUnspecified {
		cfg.Backend = p.backend
	}
	if cfg.Backend == genai.BackendGeminiAPI {
		cfg.APIKey = p.apiKey

		if cfg.APIKey == "" {
			cfg.APIKey = llm.ApiKey()
		}
	}

	client, err := genai.NewClient(context.Background(), &cfg)
	if err != nil {
		return err
	}

	p.client = client

	return nil
}

func (p *AiStudio) ResetContext() {
	p.history.Clear()
}

func (*AiStudio) RequestOptionsType() reflect.Type {
	return reflect.TypeFor[RequestOptions]()
}

func (p *AiStudio) ChatCompletion(ctx context.Context, llm internal.Adapter, requester modelmill.Requester) (*modelmill.InnerResponse, error) {
	r := requester.ToRequest()
	opts := internal.CastProviderOptions[RequestOptions](requester.ProviderRequestOptions(p))

	model, ok := lo.Coalesce(r.Model, p.model)
	if !ok {
		if llm.DefaultModel() == "" {
			return nil, errors.New("no model was configured")
		}

		model = lo.ToPtr(llm.DefaultModel())
	}

	contents, cfg, err := p.adaptRequest(llm, requester, opts)
	if err != nil {
		return nil, err
	}

	response, err := p.client.Models.GenerateContent(ctx, *model, contents, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "LLM provider failed to generate content")
	}

	return p.adaptResponse(llm, response)
}

func (p *AiStudio) adaptRequest(llm internal.Adapter, requester modelmill.Requester, opts RequestOptions) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	r := requester.ToRequest()

	contents := make([]*genai.Content, 0, len(r.Messages))

	if llm.SaveContext() {
		contents = append(contents, p.history.Load()...)
	}

	cfg := genai.GenerateContentConfig{
		Temperature: internal.MaybeF64ToF32(r.Temperature),
		TopP:        internal.MaybeF64ToF32(r.TopP),
		TopK:        internal.MaybeF64ToF32(opts.TopK),
	}

	if r.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*r.MaxTokens)
	}
	if r.MaxCandidates != nil {
		cfg.CandidateCount = int32(*r.MaxCandidates)
	}

	cfg.ThinkingConfig = adaptThinking(r.ReasoningEffort, r.Thinking, opts)

	if r.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseJsonSchema = r.ResponseSchema.Schema
	}

	cfg.Tools = lo.MapToSlice(r.Tools, func(fn string, t internal.Tool) *genai.Tool {
		return &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:                 t.Name,
					Description:          t.Description,
					ParametersJsonSchema: t.Parameters,
				},
			},
		}
	})

	if opts.GoogleSearch != nil && *opts.GoogleSearch {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}

Messages:
	for _, msg := range r.Messages {
		parts := make([]*genai.Part, 0, len(msg.Parts))
		texts := make([]string, 0, len(msg.Parts))

		for _, part := range msg.Parts {
			buf, err := io.ReadAll(part)
			if err != nil {
				return nil, nil, errors.Wrap(err, "could not read content part")
			}

			switch msg.Type {
			case modelmill.TypeText:
				texts = append(texts, string(buf))
				parts = append(parts, genai.NewPartFromText(string(buf)))
			}
		}

		role := genai.RoleUser

		switch msg.Role {
		case modelmill.RoleAi:
			role = genai.RoleModel

		case modelmill.RoleUser:
			role = genai.RoleUser

		case modelmill.RoleTool:
			msg := &genai.Content{
				Role: role,
				Parts: []*genai.Part{
					{
						FunctionResponse: &genai.FunctionResponse{
							ID:       msg.Tool.Id,
							Name:     msg.Tool.Name,
							Response: map[string]any{"output": strings.Join(texts, "")},
						},
					},
				},
			}

			contents = append(contents, msg)

			if llm.SaveContext() {
				p.history.Save(msg)
			}

			continue Messages

		case modelmill.RoleSystem:
			if cfg.SystemInstruction == nil {
				cfg.SystemInstruction = &genai.Content{}
			}

			cfg.SystemInstruction.Parts = append(cfg.SystemInstruction.Parts, parts...)

			if llm.SaveContext() {
				p.history.Save(cfg.SystemInstruction)
			}

			continue Messages
		}

		content := &genai.Content{
			Role:  role,
			Parts: parts,
		}

		if llm.SaveContext() {
			p.history.Save(content)
		}

		contents = append(contents, content)
	}

	return contents, &cfg, nil
}

func (p *AiStudio) adaptResponse(llm internal.Adapter, response *genai.GenerateContentResponse) (*modelmill.InnerResponse, error) {
	resp := modelmill.InnerResponse{
		Id:         response.ResponseID,
		Model:      response.ModelVersion,
		Created:    response.CreateTime,
		Candidates: make([]modelmill.ResponseCandidate, len(response.Candidates)),
	}

	for idx, candidate := range response.Candidates {
		toolCalls := make([]modelmill.ResponseToolCall, len(response.FunctionCalls()))

		for idx, toolCall := range response.FunctionCalls() {
			params, err := json.Marshal(toolCall.Args)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse tool call parameters")
			}

			toolCalls[idx] = modelmill.ResponseToolCall{
				Id:         toolCall.ID,
				Name:       toolCall.Name,
				Parameters: params,
			}
		}

		var text string
		var thoughts []string

		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part.Thought {
					thoughts = append(thoughts, part.Text)
					continue
				}

				text += part.Text
			}
		}

		resp.Candidates[idx] = modelmill.ResponseCandidate{
			Text:         text,
			FinishReason: adaptFinishReason(candidate.FinishReason),
			Thoughts:     thoughts,
			ToolCalls:    toolCalls,
			Grounding:    adaptGrounding(candidate.GroundingMetadata),
			SelectCandidate: func() {
				if llm.SaveContext() {
					p.history.Save(candidate.Content)
				}
			},
		}
	}

	return &resp, nil
}

// Effort levels correspond to thinking token budgets on this backend.
const (
	budgetEffortLow    int32 = 1024
	budgetEffortMedium int32 = 8192
	budgetEffortHigh   int32 = 24576
)

func effortBudget(effort modelmill.ReasoningEffort) int32 {
	switch effort {
	case modelmill.EffortLow:
		return budgetEffortLow
	case modelmill.EffortHigh:
		return budgetEffortHigh
	default:
		return budgetEffortMedium
	}
}

// adaptThinking resolves the three thinking knobs into a genai ThinkingConfig.
//
// Provider options are the most specific and win over the portable reasoning
// effort, which is translated into an equivalent token budget. Disabling
// thinking on the request overrides both: the budget is forced to zero and
// thoughts are not requested.
func adaptThinking(effort *modelmill.ReasoningEffort, thinking *bool, opts RequestOptions) *genai.ThinkingConfig {
	var budget *int32
	var includeThoughts bool

	switch {
	case opts.Thinking != nil:
		includeThoughts = opts.Thinking.IncludeThoughts
		budget = internal.MaybeIntToInt32(opts.Thinking.Budget)

	case effort != nil:
		budget = lo.ToPtr(effortBudget(*effort))
	}

	if thinking != nil && !*thinking {
		includeThoughts = false
		budget = lo.ToPtr(int32(0))
	}

	if !includeThoughts && budget == nil {
		return nil
	}

	return &genai.ThinkingConfig{
		IncludeThoughts: includeThoughts,
		ThinkingBudget:  budget,
	}
}

func adaptFinishReason(reason genai.FinishReason) modelmill.FinishReason {
	switch reason {
	case genai.FinishReasonStop:
		return modelmill.FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return modelmill.FinishReasonLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return modelmill.FinishReasonFiltered
	default:
		return modelmill.FinishReasonUnknown
	}
}

func adaptGrounding(md *genai.GroundingMetadata) *modelmill.ResponseGrounding {
	if md == nil {
		return nil
	}

	grounding := modelmill.ResponseGrounding{
		Searches: md.WebSearchQueries,
	}

	for _, chunk := range md.GroundingChunks {
		if chunk.Web == nil {
			continue
		}

		grounding.Sources = append(grounding.Sources, modelmill.ResponseGroundingSource{
			Title:  chunk.Web.Title,
			Domain: chunk.Web.Domain,
			Url:    chunk.Web.URI,
		})
	}

	for _, support := range md.GroundingSupports {
		if support.Segment == nil {
			continue
		}

		grounding.Snippets = append(grounding.Snippets, support.Segment.Text)
	}

	return &grounding
}
