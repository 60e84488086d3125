package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dictionary/internal/domain"
	"dictionary/internal/metrics"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// GiveWordPath is the lookup endpoint of the remote word service
const GiveWordPath = "/api/giveWord"

// ErrInvalidResponse is returned when the remote service answers with a body
// that is not a word object
var ErrInvalidResponse = errors.New("invalid word response")

var wordSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"},
		"translations": {
			"type": ["array", "null"],
			"items": {"type": "string"}
		}
	}
}`)

// WordAdder persists a word with its translations. It reports false when a
// word with that name already exists.
type WordAdder interface {
	AddWord(ctx context.Context, name string, translations []string) (bool, error)
}

// Fetcher looks words up on the remote word service
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	words      WordAdder
	schema     *gojsonschema.Schema
	logger     *zap.Logger
}

// NewFetcher creates a new fetcher for the service at baseURL
func NewFetcher(baseURL string, httpClient *http.Client, words WordAdder, logger *zap.Logger) (*Fetcher, error) {
	schema, err := gojsonschema.NewSchema(wordSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile word schema: %w", err)
	}

	return &Fetcher{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		words:      words,
		schema:     schema,
		logger:     logger,
	}, nil
}

// Fetch asks the remote service for a word. A word the service does not know,
// an empty answer and an unreachable service all yield nil without an error.
// A malformed answer yields ErrInvalidResponse.
func (f *Fetcher) Fetch(ctx context.Context, name string) (*domain.WordDTO, error) {
	body, ok, err := f.requestWord(ctx, name)
	if err != nil || !ok {
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		f.logger.Info("Remote service returned no data", zap.String("word", name))
		metrics.RemoteFetches.WithLabelValues(metrics.OutcomeEmpty).Inc()
		return nil, nil
	}

	dto, err := f.parseWord(body)
	if err != nil {
		metrics.RemoteFetches.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	f.logger.Info("Word fetched from remote service",
		zap.String("word", dto.Name),
		zap.Strings("translations", dto.Translations),
	)
	metrics.RemoteFetches.WithLabelValues(metrics.OutcomeFound).Inc()
	return dto, nil
}

// SaveIfRequested stores dto through AddWord when shouldSave is set.
// It reports whether a new word was created.
func (f *Fetcher) SaveIfRequested(ctx context.Context, dto *domain.WordDTO, shouldSave bool) (bool, error) {
	if !shouldSave || dto == nil {
		return false, nil
	}

	added, err := f.words.AddWord(ctx, dto.Name, dto.Translations)
	if err != nil {
		return false, err
	}
	if added {
		metrics.WordsAdded.Inc()
	}
	return added, nil
}

// FetchAndSave fetches a word and stores it when shouldSave is set
func (f *Fetcher) FetchAndSave(ctx context.Context, name string, shouldSave bool) (*domain.WordDTO, bool, error) {
	dto, err := f.Fetch(ctx, name)
	if err != nil {
		return nil, false, err
	}

	added, err := f.SaveIfRequested(ctx, dto, shouldSave)
	if err != nil {
		return dto, false, err
	}
	return dto, added, nil
}

// requestWord posts the word name and returns the response body.
// ok is false when the word is unknown or the service cannot be reached.
func (f *Fetcher) requestWord(ctx context.Context, name string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+GiveWordPath, strings.NewReader(name))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		f.logger.Warn("Failed to connect to word service",
			zap.String("word", name),
			zap.String("url", f.baseURL),
			zap.Error(err),
		)
		metrics.RemoteFetches.WithLabelValues(metrics.OutcomeUnreachable).Inc()
		return nil, false, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		f.logger.Info("Word was not found on remote service",
			zap.String("word", name),
			zap.Int("status", resp.StatusCode),
		)
		metrics.RemoteFetches.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return nil, false, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		metrics.RemoteFetches.WithLabelValues(metrics.OutcomeServerError).Inc()
		return nil, false, fmt.Errorf("word service returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read word response: %w", err)
	}
	return body, true, nil
}

func (f *Fetcher) parseWord(body []byte) (*domain.WordDTO, error) {
	result, err := f.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(details, "; "))
	}

	var dto domain.WordDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if dto.Translations == nil {
		dto.Translations = []string{}
	}
	return &dto, nil
}
