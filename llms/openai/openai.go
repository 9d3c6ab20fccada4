package openai

import (
	"context"
	"encoding/json"
	"io"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	modelmill "github.com/modelmill/modelmill"
	"github.com/modelmill/modelmill/internal"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/samber/lo"
)

// OpenAi is the provider for OpenAI's chat completion API, and for the many
// vendors exposing an OpenAI-compatible one (set WithBaseUrl, or build a
// dedicated provider on top, see llms/perplexity).
type OpenAi struct {
	modelmill.BatchUnsupported

	client  openai.Client
	history modelmill.History[openai.ChatCompletionMessageParamUnion]

	baseUrl string
	apiKey  string
	model   *string

	// RequestHookFunc, when set, can amend the adapted request body before it
	// is sent. Used by OpenAI-compatible providers layered on this one.
	RequestHookFunc func(modelmill.Requester, *openai.ChatCompletionNewParams) error
	// ResponseHookFunc, when set, can amend the adapted response, with access
	// to the raw SDK response.
	ResponseHookFunc func(*openai.ChatCompletion, *modelmill.InnerResponse) error
}

func New(opts ...Opt) (*OpenAi, error) {
	llm := OpenAi{}

	for _, opt := range opts {
		opt(&llm)
	}

	return &llm, nil
}

func (p *OpenAi) Init(llm internal.Adapter) error {
	apiKey := p.apiKey
	if apiKey == "" {
		apiKey = llm.ApiKey()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if p.baseUrl != "" {
		opts = append(opts, option.WithBaseURL(p.baseUrl))
	}
	if llm.HttpClient() != nil {
		opts = append(opts, option.WithHTTPClient(llm.HttpClient()))
	}

	p.client = openai.NewClient(opts...)

	return nil
}

func (p *OpenAi) ResetContext() {
	p.history.Clear()
}

func (*OpenAi) RequestOptionsType() reflect.Type {
	return reflect.TypeFor[RequestOptions]()
}

func (p *OpenAi) ChatCompletion(ctx context.Context, llm internal.Adapter, requester modelmill.Requester) (*modelmill.InnerResponse, error) {
	cfg, err := p.adaptRequest(llm, requester)
	if err != nil {
		return nil, err
	}

	if p.RequestHookFunc != nil {
		if err := p.RequestHookFunc(requester, &cfg); err != nil {
			return nil, errors.Wrap(err, "request hook failed")
		}
	}

	response, err := p.client.Chat.Completions.New(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "LLM provider failed to generate content")
	}

	resp := p.adaptResponse(llm, response)

	if p.ResponseHookFunc != nil {
		if err := p.ResponseHookFunc(response, resp); err != nil {
			return nil, errors.Wrap(err, "response hook failed")
		}
	}

	return resp, nil
}

func (p *OpenAi) adaptRequest(llm internal.Adapter, requester modelmill.Requester) (openai.ChatCompletionNewParams, error) {
	r := requester.ToRequest()
	opts := internal.CastProviderOptions[RequestOptions](requester.ProviderRequestOptions(p))

	contents := make([]openai.ChatCompletionMessageParamUnion, 0, len(r.Messages))

	if llm.SaveContext() {
		contents = append(contents, p.history.Load()...)
	}

	model := lo.FromPtr(lo.CoalesceOrEmpty(r.Model, p.model, lo.ToPtr(llm.DefaultModel())))

	cfg := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: contents,
	}

	if r.ReasoningEffort != nil {
		cfg.ReasoningEffort = shared.ReasoningEffort(*r.ReasoningEffort)
	}
	if r.MaxTokens != nil {
		cfg.MaxTokens = openai.Int(int64(*r.MaxTokens))
	}
	if r.MaxCandidates != nil {
		cfg.N = openai.Int(int64(*r.MaxCandidates))
	}
	if r.Temperature != nil {
		cfg.Temperature = openai.Float(*r.Temperature)
	}
	if r.TopP != nil {
		cfg.TopP = openai.Float(*r.TopP)
	}
	if opts.Seed != nil {
		cfg.Seed = openai.Int(*opts.Seed)
	}
	if opts.User != "" {
		cfg.User = openai.String(opts.User)
	}

	if r.ResponseSchema != nil {
		cfg.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        r.ResponseSchema.Name,
					Description: openai.String(r.ResponseSchema.Description),
					Schema:      r.ResponseSchema.Schema,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	for _, tool := range r.Tools {
		paramsJson, err := json.Marshal(tool.Parameters)
		if err != nil {
			return cfg, errors.Wrap(err, "failed to encode tool parameters")
		}

		var params map[string]any

		if err := json.Unmarshal(paramsJson, &params); err != nil {
			return cfg, errors.Wrap(err, "failed to encode tool parameters")
		}

		cfg.Tools = append(cfg.Tools, openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  openai.FunctionParameters(params),
			},
		})
	}

	for _, msg := range r.Messages {
		parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(msg.Parts))

		for _, part := range msg.Parts {
			buf, err := io.ReadAll(part)
			if err != nil {
				return cfg, errors.Wrap(err, "could not read content part")
			}

			switch msg.Type {
			case modelmill.TypeText:
				parts = append(parts, openai.TextContentPart(string(buf)))
			}
		}

		content := openai.ChatCompletionMessageParamUnion{}

		switch msg.Role {
		case modelmill.RoleAi:
			content.OfAssistant = &openai.ChatCompletionAssistantMessageParam{
				Content: openai.ChatCompletionAssistantMessageParamContentUnion{
					OfArrayOfContentParts: lo.Map(parts, func(p openai.ChatCompletionContentPartUnionParam, _ int) openai.ChatCompletionAssistantMessageParamContentArrayOfContentPartUnion {
						return openai.ChatCompletionAssistantMessageParamContentArrayOfContentPartUnion{
							OfText: &openai.ChatCompletionContentPartTextParam{
								Text: *p.GetText(),
							},
						}
					}),
				},
			}

		case modelmill.RoleUser:
			content.OfUser = &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: parts,
				},
			}

		case modelmill.RoleSystem:
			content.OfSystem = &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfArrayOfContentParts: lo.Map(parts, func(p openai.ChatCompletionContentPartUnionParam, _ int) openai.ChatCompletionContentPartTextParam {
						return openai.ChatCompletionContentPartTextParam{
							Text: *p.GetText(),
						}
					}),
				},
			}

		case modelmill.RoleTool:
			content.OfTool = &openai.ChatCompletionToolMessageParam{
				ToolCallID: msg.Tool.Id,
				Content: openai.ChatCompletionToolMessageParamContentUnion{
					OfArrayOfContentParts: lo.Map(parts, func(p openai.ChatCompletionContentPartUnionParam, _ int) openai.ChatCompletionContentPartTextParam {
						return openai.ChatCompletionContentPartTextParam{
							Text: *p.GetText(),
						}
					}),
				},
			}
		}

		if llm.SaveContext() {
			p.history.Save(content)
		}

		cfg.Messages = append(cfg.Messages, content)
	}

	return cfg, nil
}

func (p *OpenAi) adaptResponse(llm internal.Adapter, response *openai.ChatCompletion) *modelmill.InnerResponse {
	resp := modelmill.InnerResponse{
		Id:         response.ID,
		Model:      response.Model,
		Created:    time.Unix(response.Created, 0),
		Candidates: make([]modelmill.ResponseCandidate, len(response.Choices)),
	}

	for idx, candidate := range response.Choices {
		toolCalls := make([]modelmill.ResponseToolCall, len(candidate.Message.ToolCalls))

		for idx, toolCall := range candidate.Message.ToolCalls {
			toolCalls[idx] = modelmill.ResponseToolCall{
				Id:         toolCall.ID,
				Name:       toolCall.Function.Name,
				Parameters: []byte(toolCall.Function.Arguments),
			}
		}

		resp.Candidates[idx] = modelmill.ResponseCandidate{
			Text:         candidate.Message.Content,
			FinishReason: adaptFinishReason(candidate.FinishReason),
			ToolCalls:    toolCalls,
			SelectCandidate: func() {
				if llm.SaveContext() {
					msg := openai.ChatCompletionMessageParamUnion{
						OfAssistant: &openai.ChatCompletionAssistantMessageParam{
							ToolCalls: candidate.Message.ToParam().GetToolCalls(),
							Content: openai.ChatCompletionAssistantMessageParamContentUnion{
								OfString: openai.String(candidate.Message.Content),
							},
						},
					}

					p.history.Save(msg)
				}
			},
		}
	}

	return &resp
}

func adaptFinishReason(reason string) modelmill.FinishReason {
	switch reason {
	case "stop":
		return modelmill.FinishReasonStop
	case "length":
		return modelmill.FinishReasonLength
	case "tool_calls", "function_call":
		return modelmill.FinishReasonToolCalls
	case "content_filter":
		return modelmill.FinishReasonFiltered
	default:
		return modelmill.FinishReasonUnknown
	}
}
