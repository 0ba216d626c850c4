package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/matthewbaird/nlquery/internal/intent"
)

// MaxBatch bounds ParseBatch.
const MaxBatch = 1000

// BatchResult is the outcome of one text in a batch.
type BatchResult struct {
	Query  string          `json:"query"`
	Intent json.RawMessage `json:"intent,omitempty"`
	Error  *ErrorInfo      `json:"error,omitempty"`
}

// ParseBatch parses texts on the worker pool. Results keep the input
// order; a failed text does not fail the batch.
func (s *Service) ParseBatch(ctx context.Context, texts []string) ([]BatchResult, error) {
	if len(texts) > MaxBatch {
		return nil, errors.Errorf("batch of %d exceeds the limit of %d", len(texts), MaxBatch)
	}
	s.metrics.batchSize.Observe(float64(len(texts)))

	results := make([]BatchResult, len(texts))
	var wg sync.WaitGroup
	for i, text := range texts {
		results[i].Query = text
		if err := ctx.Err(); err != nil {
			results[i].Error = NewErrorInfo(err)
			continue
		}
		wg.Add(1)
		i, text := i, text
		if err := s.pool.Submit(func() {
			defer wg.Done()
			results[i] = s.batchOne(ctx, text)
		}); err != nil {
			wg.Done()
			results[i].Error = NewErrorInfo(errors.Wrap(err, "submitting to batch pool"))
		}
	}
	wg.Wait()
	return results, nil
}

func (s *Service) batchOne(ctx context.Context, text string) BatchResult {
	r := BatchResult{Query: text}
	in, err := s.Parse(ctx, text)
	if err != nil {
		r.Error = NewErrorInfo(err)
		return r
	}
	if r.Intent, err = intent.Marshal(in); err != nil {
		r.Error = NewErrorInfo(err)
	}
	return r
}
