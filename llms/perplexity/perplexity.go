package perplexity

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/fatih/structs"
	modelmill "github.com/modelmill/modelmill"
	"github.com/modelmill/modelmill/internal"
	base "github.com/modelmill/modelmill/llms/openai"
	"github.com/openai/openai-go"
	"github.com/samber/lo"
)

// Perplexity is the provider for Perplexity's Sonar models.
//
// It layers on the OpenAI-compatible provider: the portable request knobs
// (including reasoning effort) go through unchanged, while Perplexity's
// search-specific parameters are injected as extra body fields and its search
// results are surfaced as response grounding.
type Perplexity struct {
	*base.OpenAi
}

func (*Perplexity) RequestOptionsType() reflect.Type {
	return reflect.TypeFor[RequestOptions]()
}

func New(openAiOpts ...base.Opt) (*Perplexity, error) {
	oai, err := base.New(
		base.WithBaseUrl("https://api.perplexity.ai"),
	)

	if err != nil {
		return nil, err
	}

	for _, opt := range openAiOpts {
		opt(oai)
	}

	llm := Perplexity{
		OpenAi: oai,
	}

	llm.RequestHookFunc = llm.transformRequest
	llm.ResponseHookFunc = llm.transformResponse

	return &llm, nil
}

func (p *Perplexity) transformRequest(requester modelmill.Requester, cfg *openai.ChatCompletionNewParams) error {
	opts := internal.CastProviderOptions[RequestOptions](requester.ProviderRequestOptions(p))

	cfg.SetExtraFields(structs.Map(opts))

	return nil
}

func (p *Perplexity) transformResponse(response *openai.ChatCompletion, resp *modelmill.InnerResponse) error {
	searchResultsField, ok := response.JSON.ExtraFields["search_results"]
	if !ok {
		return nil
	}

	searchResults := []SearchResult{}

	if err := json.Unmarshal([]byte(searchResultsField.Raw()), &searchResults); err != nil {
		return err
	}

	// Perplexity returns a single candidate, but attaching the search results
	// to every candidate saves checking whether one is present.
	for i := range resp.Candidates {
		grounding := modelmill.ResponseGrounding{
			Sources: lo.Map(searchResults, func(result SearchResult, _ int) modelmill.ResponseGroundingSource {
				date, _ := time.Parse(time.DateOnly, result.Date)

				return modelmill.ResponseGroundingSource{
					Title: result.Title,
					Url:   result.URL,
					Date:  date,
				}
			}),
		}
		resp.Candidates[i].Grounding = &grounding
	}

	return nil
}

// SearchResult is one entry of the `search_results` field Perplexity adds to
// its chat completion responses.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date"`
}
