package ingest

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"scribechat/internal/logger"
	"scribechat/internal/models"
	"scribechat/internal/service/speech"

	"github.com/google/uuid"
)

// ErrNoText rejects documents whose extraction produced nothing usable.
var ErrNoText = errors.New("No text found in PDF")

// SummaryUnavailable is the sentinel persisted when the best-effort
// summarization step fails or yields nothing.
const SummaryUnavailable = "Summary not available"

// SpeechBackend converts staged bytes to text and, separately, summarizes
// them. The two calls fail independently.
type SpeechBackend interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
	SummarizeFile(ctx context.Context, path string) (speech.Summary, error)
}

// TranscriptStore commits the finished record.
type TranscriptStore interface {
	Save(ctx context.Context, t *models.Transcript) error
}

// Service orchestrates one ingestion call: stage the upload, run the
// backend steps, persist a consistent record, and always release the
// staged artifact.
type Service struct {
	staging *Staging
	speech  SpeechBackend
	store   TranscriptStore
	log     logger.Logger
}

// NewService wires the pipeline dependencies.
func NewService(staging *Staging, backend SpeechBackend, store TranscriptStore, log logger.Logger) *Service {
	return &Service{staging: staging, speech: backend, store: store, log: log}
}

// IngestMedia transcribes an uploaded media file and persists the result.
// Transcription failure aborts the call; summarization failure degrades to
// the sentinel value. Useful data already obtained is never discarded
// because an optional step failed.
func (s *Service) IngestMedia(ctx context.Context, userID, filename string, upload io.Reader) (*models.Transcript, error) {
	staged, err := s.staging.Stage(filename, upload)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, staged)

	text, err := s.speech.TranscribeFile(ctx, staged.Path())
	if err != nil {
		return nil, err
	}

	summary := speech.Summary{}
	if sum, err := s.speech.SummarizeFile(ctx, staged.Path()); err != nil {
		s.log.Warn(ctx, "summarization failed for %s: %v", filename, err)
	} else {
		summary = sum
	}

	rec := &models.Transcript{
		TranscriptID: uuid.NewString(),
		Filename:     filepath.Base(filename),
		Transcript:   text,
		Summary:      renderSummary(summary),
		UserID:       userID,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// IngestDocument extracts text from an uploaded PDF and persists it. No
// summarization is attempted for documents.
func (s *Service) IngestDocument(ctx context.Context, userID, filename string, upload io.Reader) (*models.Transcript, error) {
	staged, err := s.staging.Stage(filename, upload)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, staged)

	text, err := extractPDFText(staged.Path())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	rec := &models.Transcript{
		TranscriptID: uuid.NewString(),
		Filename:     filepath.Base(filename),
		Transcript:   text,
		UserID:       userID,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// release frees the staged artifact. It runs on every exit path and a
// failure here never overrides the call's outcome.
func (s *Service) release(ctx context.Context, staged *StagedFile) {
	if err := staged.Release(); err != nil {
		s.log.Warn(ctx, "release staged artifact %s: %v", staged.Path(), err)
	}
}

func renderSummary(sum speech.Summary) string {
	if !sum.Available {
		return SummaryUnavailable
	}
	return sum.Text
}
