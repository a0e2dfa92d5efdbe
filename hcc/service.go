package hcc

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service runs the extract, classify and rank pipeline. One Service is shared
// by all callers; every call works on its own term and result lists.
type Service struct {
	cfg        Config
	extractor  *Extractor
	classifier *Classifier
	recognizer Recognizer
	logger     zerolog.Logger
	now        func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithCodebook replaces the codebook loaded from Config.CodebookPath.
func WithCodebook(cb *Codebook) Option {
	return func(s *Service) { s.classifier = NewClassifier(cb, s.classifier.labs) }
}

// WithLabTable replaces the lab table loaded from Config.LabTablePath.
func WithLabTable(t *LabTable) Option {
	return func(s *Service) { s.classifier = NewClassifier(s.classifier.codebook, t) }
}

// WithCatalog replaces the built-in pattern catalog.
func WithCatalog(c *Catalog) Option {
	return func(s *Service) { s.extractor = NewExtractor(c, s.recognizer) }
}

func withClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService loads the codebook and lab table named in cfg and wires the
// pipeline. The recognizer may be nil.
func NewService(cfg Config, recognizer Recognizer, logger zerolog.Logger, opts ...Option) *Service {
	cfg.ApplyDefaults()
	s := &Service{
		cfg:        cfg,
		recognizer: recognizer,
		extractor:  NewExtractor(nil, recognizer),
		logger:     logger,
		now:        time.Now,
	}
	s.classifier = NewClassifier(LoadCodebook(cfg.CodebookPath, logger), LoadLabTable(cfg.LabTablePath, logger))
	for _, opt := range opts {
		opt(s)
	}

	ev := s.logger.Debug().
		Int("catalog_rules", s.extractor.catalog.Len()).
		Int("lab_rules", s.classifier.labs.Len()).
		Int("codebook_entries", s.classifier.codebook.Len()).
		Str("codebook", s.classifier.codebook.Source())
	if m, ok := recognizer.(interface{ ModelID() string }); ok {
		ev = ev.Str("ner_model", m.ModelID())
	}
	ev.Msg("pipeline ready")
	return s
}

// NewRecognizer returns the configured recognizer, or nil when NER is off.
func NewRecognizer(cfg NERConfig) (Recognizer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	r, err := NewOrtRecognizer(cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the recognizer when it holds resources.
func (s *Service) Close() error {
	if c, ok := s.recognizer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Service) Config() Config { return s.cfg.Clone() }

func (s *Service) Codebook() *Codebook { return s.classifier.codebook }

func (s *Service) LabTable() *LabTable { return s.classifier.labs }

func (s *Service) Catalog() *Catalog { return s.extractor.catalog }

// Extract normalizes text and returns its candidate terms.
func (s *Service) Extract(ctx context.Context, text string) ([]CandidateTerm, error) {
	return s.extractor.Extract(ctx, NormalizeText(text))
}

// ClassifyTerms classifies and ranks terms.
func (s *Service) ClassifyTerms(ctx context.Context, terms []CandidateTerm) ([]ClassifiedResult, error) {
	results, err := s.classifier.Classify(ctx, terms)
	if err != nil {
		return nil, err
	}
	return Rank(results), nil
}

// Process runs the whole pipeline on one document. It either returns a full
// report or an error; partial results are never returned.
func (s *Service) Process(ctx context.Context, documentName, text string) (*Report, error) {
	runID := uuid.NewString()
	normalized := NormalizeText(text)

	terms, err := s.extractor.Extract(ctx, normalized)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", runID).Str("document", documentName).Msg("extraction failed")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results, err := s.ClassifyTerms(ctx, terms)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", runID).Str("document", documentName).Msg("classification failed")
		return nil, err
	}

	s.logger.Debug().
		Str("run_id", runID).
		Str("document", documentName).
		Int("terms", len(terms)).
		Int("results", len(results)).
		Msg("pipeline run complete")

	return &Report{
		RunID:         runID,
		DocumentName:  documentName,
		ExtractedText: normalized,
		MedicalTerms:  terms,
		HCCCodes:      results,
		CreatedAt:     s.now().UTC(),
	}, nil
}
