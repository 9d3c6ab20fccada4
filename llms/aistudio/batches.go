package aistudio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/cockroachdb/errors"
	modelmill "github.com/modelmill/modelmill"
	"github.com/modelmill/modelmill/internal"
	"github.com/samber/lo"
	"github.com/simonfrey/jsonl"
	"google.golang.org/api/iterator"
	"google.golang.org/genai"
)

const batchPollInterval = 30 * time.Second

// BatchPayload is one line of the jsonl batch input file.
type BatchPayload struct {
	Key     string               `json:"key"`
	Request genai.InlinedRequest `json:"request"`
}

type batchOutput struct {
	Key      string                         `json:"key"`
	Response *genai.GenerateContentResponse `json:"response"`
}

func (p *AiStudio) SubmitBatch(ctx context.Context, llm internal.Adapter, reqs ...modelmill.Requester) (*modelmill.UntypedBatchPromise, error) {
	if p.name == "" {
		return nil, errors.New("batches can only be created on named providers")
	}

	payload, err := p.createBatchInput(llm, reqs...)
	if err != nil {
		return nil, err
	}

	filename, err := p.uploadBatchInput(ctx, payload)
	if err != nil {
		return nil, err
	}

	src := genai.BatchJobSource{}

	switch p.backend {
	case genai.BackendGeminiAPI:
		src.FileName = filename
	case genai.BackendVertexAI:
		src.Format = "jsonl"
		src.GCSURI = []string{filename}
	}

	cfg := genai.CreateBatchJobConfig{
		DisplayName: "Created on " + time.Now().Format(time.RFC3339),
	}

	if p.backend == genai.BackendVertexAI {
		cfg.Dest = &genai.BatchJobDestination{
			Format: "jsonl",
			GCSURI: fmt.Sprintf("gs://%s/llm/outputs", p.bucket),
		}
	}

	job, err := p.client.Batches.Create(
		ctx, lo.FromPtr(lo.CoalesceOrEmpty(p.model, lo.ToPtr(llm.DefaultModel()))),
		&src, &cfg)

	if err != nil {
		return nil, err
	}

	return &modelmill.UntypedBatchPromise{
		Provider: p,
		Id:       job.Name,
	}, nil
}

func (p *AiStudio) createBatchInput(llm internal.Adapter, requesters ...modelmill.Requester) (io.Reader, error) {
	var buf bytes.Buffer

	w := jsonl.NewWriter(&buf)

	for _, requester := range requesters {
		if requester.Error() != nil {
			return nil, requester.Error()
		}

		r := requester.ToRequest()

		if r.Id == "" {
			return nil, errors.New("all requests in a batch must have an ID")
		}

		model, ok := lo.Coalesce(r.Model, p.model)
		if !ok {
			if llm.DefaultModel() == "" {
				return nil, errors.New("no model was configured")
			}

			model = lo.ToPtr(llm.DefaultModel())
		}

		opts := internal.CastProviderOptions[RequestOptions](requester.ProviderRequestOptions(p))

		contents, cfg, err := p.adaptRequest(llm, requester, opts)
		if err != nil {
			return nil, err
		}

		payload := BatchPayload{
			Key: r.Id,
			Request: genai.InlinedRequest{
				Model:    *model,
				Config:   cfg,
				Contents: contents,
			},
		}

		if err := w.Write(payload); err != nil {
			return nil, err
		}
	}

	return &buf, nil
}

func (p *AiStudio) uploadBatchInput(ctx context.Context, r io.Reader) (string, error) {
	switch p.backend {
	case genai.BackendGeminiAPI:
		file, err := p.client.Files.Upload(ctx, r, &genai.UploadFileConfig{
			MIMEType: "jsonl",
		})

		if err != nil {
			return "", err
		}

		return file.Name, nil

	case genai.BackendVertexAI:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return "", err
		}

		defer client.Close()

		filename := fmt.Sprintf("llm/inputs/%s.jsonl", time.Now().Format("20060102T150405"))
		wr := client.Bucket(p.bucket).Object(filename).NewWriter(ctx)

		if _, err := io.Copy(wr, r); err != nil {
			return "", err
		}
		if err := wr.Close(); err != nil {
			return "", err
		}

		return fmt.Sprintf("gs://%s/%s", p.bucket, filename), nil

	default:
		return "", errors.New("invalid backend")
	}
}

func (p *AiStudio) Check(ctx context.Context, pr *modelmill.UntypedBatchPromise) (modelmill.BatchStatus, error) {
	job, err := p.client.Batches.Get(ctx, pr.Id, nil)
	if err != nil {
		return modelmill.BatchError, err
	}

	return adaptJobState(job.State), nil
}

func (p *AiStudio) Wait(ctx context.Context, pr *modelmill.UntypedBatchPromise) <-chan modelmill.BatchWaitResponse {
	ch := make(chan modelmill.BatchWaitResponse)

	go func() {
		defer close(ch)

		for {
			job, err := p.client.Batches.Get(ctx, pr.Id, nil)
			if err != nil {
				ch <- modelmill.BatchWaitResponse{Status: modelmill.BatchError, Error: err}
				return
			}

			if !job.EndTime.IsZero() {
				status := adaptJobState(job.State)
				responses, err := p.collectBatchResults(ctx, jobOutputUri(job))

				ch <- modelmill.BatchWaitResponse{
					Status:    status,
					Error:     err,
					Responses: responses,
				}

				return
			}

			select {
			case <-ctx.Done():
				ch <- modelmill.BatchWaitResponse{Status: modelmill.BatchError, Error: ctx.Err()}
				return

			case <-time.After(batchPollInterval):
			}
		}
	}()

	return ch
}

// jobOutputUri extracts the output prefix for a completed job, empty when the
// backend does not write results to object storage.
func jobOutputUri(job *genai.BatchJob) string {
	if job.Dest == nil {
		return ""
	}

	return job.Dest.GCSURI
}

// collectBatchResults reads jsonl result files from the job's output location
// and adapts them into responses keyed by request ID.
//
// Only the Vertex backend writes its outputs to object storage. For the Gemini
// API backend, only the final status is reported.
func (p *AiStudio) collectBatchResults(ctx context.Context, outputUri string) (map[string]modelmill.InnerResponse, error) {
	if p.backend != genai.BackendVertexAI || outputUri == "" {
		return nil, nil
	}

	prefix := strings.TrimPrefix(outputUri, fmt.Sprintf("gs://%s/", p.bucket))

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	defer client.Close()

	responses := make(map[string]modelmill.InnerResponse)

	objects := client.Bucket(p.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	for {
		attrs, err := objects.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(attrs.Name, ".jsonl") {
			continue
		}

		rd, err := client.Bucket(p.bucket).Object(attrs.Name).NewReader(ctx)
		if err != nil {
			return nil, err
		}

		err = jsonl.NewReader(rd).ReadLines(func(line []byte) error {
			var output batchOutput

			if err := json.Unmarshal(line, &output); err != nil {
				return err
			}

			if output.Response == nil {
				return nil
			}

			resp, err := p.adaptResponse(noopAdapter{}, output.Response)
			if err != nil {
				return err
			}

			responses[output.Key] = *resp

			return nil
		})

		rd.Close()

		if err != nil {
			return nil, err
		}
	}

	return responses, nil
}

// noopAdapter stands in for the adapter when adapting batch results, which are
// never committed to a conversation history.
type noopAdapter struct{}

func (noopAdapter) DefaultModel() string     { return "" }
func (noopAdapter) ApiKey() string           { return "" }
func (noopAdapter) SaveContext() bool        { return false }
func (noopAdapter) HttpClient() *http.Client { return nil }

func adaptJobState(state genai.JobState) modelmill.BatchStatus {
	switch state {
	case genai.JobStatePending:
		return modelmill.BatchPending
	case genai.JobStateRunning:
		return modelmill.BatchRunning
	case genai.JobStateCancelled, genai.JobStateSucceeded, genai.JobStatePartiallySucceeded:
		return modelmill.BatchFinished
	case genai.JobStateFailed, genai.JobStateExpired:
		return modelmill.BatchError
	default:
		return modelmill.BatchPending
	}
}
