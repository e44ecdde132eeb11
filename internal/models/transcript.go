package models

import "time"

// Transcript is the persisted result of one ingestion call. TranscriptID is
// generated by the pipeline, never by the storage layer, so identifiers stay
// stable across storage backends. Records are write-once: there is no update
// or delete operation.
type Transcript struct {
	ID           int64     `json:"-"`
	TranscriptID string    `json:"transcript_id"`
	Filename     string    `json:"filename"`
	Transcript   string    `json:"transcript"`
	Summary      string    `json:"summary,omitempty"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}
