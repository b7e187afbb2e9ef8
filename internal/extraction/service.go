package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/docscan/internal/record"
	"github.com/zombor/docscan/internal/scanning"
)

// ErrNoText is returned when OCR finds nothing to extract from
var ErrNoText = errors.New("no text extracted from the document")

// Pipeline stages reported by StageError
const (
	StageOCR     = "ocr"
	StageExtract = "extract"
	StageDecode  = "decode"
)

// StageError is a collaborator failure at one step of the pipeline
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IDGenerator generates request ids
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Config tunes the service
type Config struct {
	// Policy is used when a request does not choose one
	Policy record.Policy
	// CacheTTL expires cached OCR results; zero keeps them forever
	CacheTTL time.Duration
}

// Service runs documents through OCR, the language model and record validation
type Service struct {
	reader      scanning.TextReader
	extractor   scanning.Extractor
	cache       Cache
	config      Config
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(reader scanning.TextReader, extractor scanning.Extractor, cache Cache, config Config) *Service {
	return NewServiceWithDeps(reader, extractor, cache, config, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(reader scanning.TextReader, extractor scanning.Extractor, cache Cache, config Config, idGen IDGenerator, timeSrc TimeSource) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{
		reader:      reader,
		extractor:   extractor,
		cache:       cache,
		config:      config,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// ClaimResult is the outcome of extracting a claim from a document
type ClaimResult struct {
	RequestID string             `json:"request_id"`
	Claim     record.ClaimRecord `json:"claim"`
	Text      string             `json:"text"`
}

// MenuResult is the outcome of extracting a menu from a document
type MenuResult struct {
	RequestID string               `json:"request_id"`
	Menu      record.MenuRecord    `json:"menu"`
	Failures  []record.ItemFailure `json:"failures"`
	Text      string               `json:"text"`
}

func (s *Service) validator(policy record.Policy) record.Validator {
	if policy == "" {
		policy = s.config.Policy
	}
	return record.Validator{Policy: policy}
}

// ExtractClaim builds a claim from a document. On any failure the result is
// still returned with the request id, plus the recognized text once OCR ran.
// A candidate that fails validation yields record.ValidationErrors.
func (s *Service) ExtractClaim(ctx context.Context, data []byte, contentType string, policy record.Policy) (*ClaimResult, error) {
	reqID := s.idGenerator.Generate()
	start := s.timeSource.Now()
	slog.Info("extract.claim.start", "req_id", reqID, "content_type", contentType, "file_size", len(data))

	result := &ClaimResult{RequestID: reqID}
	ocr, reply, err := s.run(ctx, reqID, data, contentType, scanning.TargetClaim)
	if ocr != nil {
		result.Text = ocr.Text
	}
	if err != nil {
		return result, err
	}

	raw, err := scanning.DecodeClaim(reply)
	if err != nil {
		slog.Error("extract.claim.decode_failed", "req_id", reqID, "error", err)
		return result, &StageError{Stage: StageDecode, Err: err}
	}

	claim, err := s.validator(policy).Claim(raw)
	if err != nil {
		var verrs record.ValidationErrors
		if errors.As(err, &verrs) {
			slog.Warn("extract.claim.invalid", "req_id", reqID, "fields", strings.Join(verrs.Fields(), ","))
		}
		return result, err
	}
	result.Claim = claim

	slog.Info("extract.claim.ok",
		"req_id", reqID,
		"media_type", claim.MediaType,
		"activity_type", claim.ActivityType,
		"elapsed_ms", s.timeSource.Now().Sub(start).Milliseconds(),
	)
	return result, nil
}

// ExtractMenu builds a menu from a document. Items that fail validation are
// reported in MenuResult.Failures rather than as an error. Collaborator
// failures return the result with its request id like ExtractClaim.
func (s *Service) ExtractMenu(ctx context.Context, data []byte, contentType string, policy record.Policy) (*MenuResult, error) {
	reqID := s.idGenerator.Generate()
	start := s.timeSource.Now()
	slog.Info("extract.menu.start", "req_id", reqID, "content_type", contentType, "file_size", len(data))

	result := &MenuResult{RequestID: reqID, Failures: []record.ItemFailure{}}
	ocr, reply, err := s.run(ctx, reqID, data, contentType, scanning.TargetMenu)
	if ocr != nil {
		result.Text = ocr.Text
	}
	if err != nil {
		return result, err
	}

	items, err := scanning.DecodeMenu(reply)
	if err != nil {
		slog.Error("extract.menu.decode_failed", "req_id", reqID, "error", err)
		return result, &StageError{Stage: StageDecode, Err: err}
	}

	menu, failures := s.ValidateMenu(items, policy)
	slog.Info("extract.menu.ok",
		"req_id", reqID,
		"items", len(menu.Items),
		"rejected", len(failures),
		"elapsed_ms", s.timeSource.Now().Sub(start).Milliseconds(),
	)
	result.Menu = menu
	result.Failures = failures
	return result, nil
}

// ValidateClaim validates a raw claim mapping without any collaborators
func (s *Service) ValidateClaim(raw record.Raw, policy record.Policy) (record.ClaimRecord, error) {
	return s.validator(policy).Claim(raw)
}

// ValidateMenu validates raw menu items, splitting them into the valid menu and the rejected items
func (s *Service) ValidateMenu(items []record.Raw, policy record.Policy) (record.MenuRecord, []record.ItemFailure) {
	menu, err := s.validator(policy).Menu(items)
	failures := []record.ItemFailure{}
	var partial *record.PartialValidationError
	if errors.As(err, &partial) {
		failures = partial.Failures
	}
	return menu, failures
}

// run reads the document and asks the extractor for a candidate record.
// The OCR result is returned whenever reading succeeded.
func (s *Service) run(ctx context.Context, reqID string, data []byte, contentType string, target scanning.Target) (*scanning.OCRResult, []byte, error) {
	ocr, err := s.readText(ctx, reqID, data, contentType)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(ocr.Text) == "" && len(ocr.KeyValues) == 0 {
		slog.Warn("extract.ocr.empty", "req_id", reqID, "reader", s.reader.Name())
		return ocr, nil, ErrNoText
	}

	prompt := scanning.BuildPrompt(target, ocr)
	reply, err := s.extractor.Extract(ctx, prompt, target)
	if err != nil {
		slog.Error("extract.llm.failed", "req_id", reqID, "target", target, "error", err)
		return ocr, nil, &StageError{Stage: StageExtract, Err: err}
	}
	slog.Debug("extract.llm.ok", "req_id", reqID, "target", target, "reply_bytes", len(reply))
	return ocr, reply, nil
}

// readText returns the cached OCR result for data or runs the reader
func (s *Service) readText(ctx context.Context, reqID string, data []byte, contentType string) (*scanning.OCRResult, error) {
	key := CacheKey(data, s.reader.Name())
	now := s.timeSource.Now()

	entry, err := s.cache.Get(key)
	switch {
	case err == nil && s.fresh(entry, now):
		slog.Debug("extract.ocr.cache_hit", "req_id", reqID, "key", key)
		result := entry.Result
		return &result, nil
	case err == nil:
		if err := s.cache.Delete(key); err != nil {
			slog.Warn("extract.ocr.cache_delete_failed", "req_id", reqID, "error", err)
		}
	case !errors.Is(err, ErrCacheMiss):
		slog.Warn("extract.ocr.cache_get_failed", "req_id", reqID, "error", err)
	}

	result, err := s.reader.ReadText(ctx, data, contentType)
	if err != nil {
		slog.Error("extract.ocr.failed",
			"req_id", reqID,
			"reader", s.reader.Name(),
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, &StageError{Stage: StageOCR, Err: err}
	}

	err = s.cache.Put(&CacheEntry{Key: key, Reader: s.reader.Name(), Result: *result, CachedAt: now})
	if err != nil {
		slog.Warn("extract.ocr.cache_put_failed", "req_id", reqID, "error", err)
	}
	return result, nil
}

func (s *Service) fresh(entry *CacheEntry, now time.Time) bool {
	if s.config.CacheTTL <= 0 {
		return true
	}
	return now.Sub(entry.CachedAt) < s.config.CacheTTL
}

// Close releases the extractor and cache
func (s *Service) Close() error {
	var errs []error
	if err := s.extractor.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing extractor: %w", err))
	}
	if err := s.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing cache: %w", err))
	}
	return errors.Join(errs...)
}
