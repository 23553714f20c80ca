// Package audit writes one Postgres row per resolved utterance.
package audit

import (
	"context"
	"database/sql"
	"time"

	apperrors "homelead-workers/internal/common/errors"

	"github.com/google/uuid"
)

const schema = `CREATE TABLE IF NOT EXISTS query_log (
	id             UUID PRIMARY KEY,
	request_id     TEXT NOT NULL,
	utterance      TEXT NOT NULL,
	collection     TEXT NOT NULL,
	filter         JSONB NOT NULL,
	synthesis_path TEXT NOT NULL,
	mode           TEXT NOT NULL,
	result_limit   BIGINT NOT NULL,
	result_count   INTEGER NOT NULL,
	outcome        TEXT NOT NULL,
	duration_ms    BIGINT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
)`

const insertEntry = `INSERT INTO query_log
	(id, request_id, utterance, collection, filter, synthesis_path, mode, result_limit, result_count, outcome, duration_ms, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

type Entry struct {
	ID            string
	RequestID     string
	Utterance     string
	Collection    string
	Filter        string // JSON
	SynthesisPath string
	Mode          string
	Limit         int64
	ResultCount   int
	Outcome       string
	Duration      time.Duration
	CreatedAt     time.Time
}

type Recorder struct {
	db *sql.DB
}

func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// EnsureSchema creates query_log when it does not exist.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewAuditWriteFailedError(err)
	}
	return nil
}

// Record inserts e, filling ID, RequestID and CreatedAt when empty.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RequestID == "" {
		e.RequestID = e.ID
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Filter == "" {
		e.Filter = "{}"
	}

	_, err := r.db.ExecContext(ctx, insertEntry,
		e.ID, e.RequestID, e.Utterance, e.Collection, e.Filter, e.SynthesisPath,
		e.Mode, e.Limit, e.ResultCount, e.Outcome, e.Duration.Milliseconds(), e.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAuditWriteFailedError(err).WithMetadata("requestId", e.RequestID)
	}
	return nil
}
