package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scribechat/internal/models"
	"scribechat/internal/redis"
)

// ErrNotFound is returned when no transcript matches the requested id.
var ErrNotFound = errors.New("Transcript not found")

const (
	cacheKeyPrefix = "transcript:"
	cacheTTL       = time.Hour
)

// Store persists Transcript records keyed by the pipeline-generated
// transcript_id. Records are immutable, so the optional redis cache never
// needs invalidation; a cache failure silently degrades to the database.
type Store struct {
	db    *sql.DB
	cache *redis.Client
}

// NewStore builds a transcript store. cache may be nil.
func NewStore(db *sql.DB, cache *redis.Client) *Store {
	return &Store{db: db, cache: cache}
}

// Save writes a transcript record exactly once.
func (s *Store) Save(ctx context.Context, t *models.Transcript) error {
	if t.TranscriptID == "" {
		return errors.New("transcript_id is required")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transcripts (transcript_id, filename, transcript, summary, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.TranscriptID, t.Filename, t.Transcript, t.Summary, t.UserID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transcript row id: %w", err)
	}
	t.ID = id
	return nil
}

// Get loads one transcript by transcript_id, consulting the cache first.
// Only a genuine cache miss triggers a back-fill; an unavailable cache just
// degrades every read to the database.
func (s *Store) Get(ctx context.Context, transcriptID string) (*models.Transcript, error) {
	backfill := false
	cached, err := s.cache.Get(ctx, cacheKeyPrefix+transcriptID)
	switch {
	case err == nil:
		var t models.Transcript
		if json.Unmarshal([]byte(cached), &t) == nil {
			return &t, nil
		}
		backfill = true
	case errors.Is(err, redis.ErrCacheMiss):
		backfill = true
	}

	var t models.Transcript
	err = s.db.QueryRowContext(ctx,
		`SELECT id, transcript_id, filename, transcript, summary, user_id, created_at
		 FROM transcripts WHERE transcript_id = ?`, transcriptID,
	).Scan(&t.ID, &t.TranscriptID, &t.Filename, &t.Transcript, &t.Summary, &t.UserID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transcript: %w", err)
	}

	if backfill {
		if payload, err := json.Marshal(&t); err == nil {
			_ = s.cache.Set(ctx, cacheKeyPrefix+t.TranscriptID, payload, cacheTTL)
		}
	}
	return &t, nil
}

// List returns every stored transcript, newest first. Per-user read
// isolation is not enforced here; every record carries its owner tag only.
func (s *Store) List(ctx context.Context) ([]models.Transcript, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transcript_id, filename, transcript, summary, user_id, created_at
		 FROM transcripts ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []models.Transcript
	for rows.Next() {
		var t models.Transcript
		if err := rows.Scan(&t.ID, &t.TranscriptID, &t.Filename, &t.Transcript, &t.Summary, &t.UserID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		transcripts = append(transcripts, t)
	}
	return transcripts, rows.Err()
}
