package modelmill

import (
	"context"
	"reflect"

	"github.com/modelmill/modelmill/internal"
	"github.com/stretchr/testify/mock"
)

type MockMessage struct {
	Text string
}

type MockProviderOpts struct{}

func (MockProviderOpts) ProviderRequestOptions() {}

// MockProvider is a testify-based provider used by the adapter tests. Its
// ChatCompletion returns a single candidate carrying the MockMessage the
// expectation was configured with.
type MockProvider struct {
	mock.Mock
	BatchUnsupported

	History History[MockMessage]
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Init(llm internal.Adapter) error {
	return p.Called(llm).Error(0)
}

func (p *MockProvider) ResetContext() {
	p.History.Clear()
}

func (*MockProvider) RequestOptionsType() reflect.Type {
	return reflect.TypeFor[MockProviderOpts]()
}

func (p *MockProvider) ChatCompletion(ctx context.Context, llm internal.Adapter, requester Requester) (*InnerResponse, error) {
	args := p.Called(ctx, llm, requester)

	if err := args.Error(1); err != nil {
		return nil, err
	}

	msg := args.Get(0).(MockMessage)

	return &InnerResponse{
		Candidates: []ResponseCandidate{
			{
				Text: msg.Text,
				SelectCandidate: func() {
					if llm.SaveContext() {
						p.History.Save(msg)
					}
				},
			},
		},
	}, nil
}
