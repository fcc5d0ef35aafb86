package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gantry/gantry/internal/domain"
)

// AuditRepository appends and lists job lifecycle transitions.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends one transition to the audit log.
func (r *AuditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	var metadata *string
	if len(entry.Metadata) > 0 {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
		s := string(data)
		metadata = &s
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (job_id, transition, metadata, recorded_at)
		VALUES (?, ?, ?, ?)
	`, entry.JobID, entry.Transition, metadata, entry.RecordedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// ListByJob returns a job's transitions in the order they were recorded.
func (r *AuditRepository) ListByJob(ctx context.Context, jobID string) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, transition, metadata, recorded_at
		FROM audit_log WHERE job_id = ? ORDER BY id
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var metadata sql.NullString
		var recordedAt string
		if err := rows.Scan(&entry.ID, &entry.JobID, &entry.Transition, &metadata, &recordedAt); err != nil {
			return nil, err
		}
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		if entry.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
