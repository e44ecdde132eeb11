package chat

import (
	"context"

	"scribechat/internal/models"
)

// TranscriptLoader fetches a stored transcript by its pipeline-assigned id.
type TranscriptLoader interface {
	Get(ctx context.Context, transcriptID string) (*models.Transcript, error)
}

// InferenceBackend answers a question against a transcript.
type InferenceBackend interface {
	Answer(ctx context.Context, transcript, question string) (string, error)
}

// Service answers natural-language questions against stored transcripts.
type Service struct {
	transcripts TranscriptLoader
	llm         InferenceBackend
}

// NewService wires the query dependencies.
func NewService(transcripts TranscriptLoader, llm InferenceBackend) *Service {
	return &Service{transcripts: transcripts, llm: llm}
}

// Ask loads the transcript and queries the inference backend. The lookup
// happens first so a missing transcript never reaches the backend.
func (s *Service) Ask(ctx context.Context, transcriptID, question string) (string, error) {
	t, err := s.transcripts.Get(ctx, transcriptID)
	if err != nil {
		return "", err
	}
	return s.llm.Answer(ctx, t.Transcript, question)
}
