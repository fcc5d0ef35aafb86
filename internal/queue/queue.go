// Package queue implements the durable submission channel: a
// SQLite-backed message table with visibility windows, plus the worker
// pool that drains it. A claimed message stays invisible until its lock
// expires; acknowledging deletes it, so a crashed worker's message
// reappears for redelivery.
package queue

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Message is one claimed queue entry.
type Message struct {
	ID         int64
	JobID      string
	RetryCount int
}

// Queue persists job ids in the queue_messages table.
type Queue struct {
	db         *sql.DB
	visibility time.Duration
	maxRetries int
}

// NewQueue creates a queue over an existing database connection. The
// schema is managed by the store that owns the connection.
func NewQueue(db *sql.DB, visibility time.Duration, maxRetries int) *Queue {
	if visibility <= 0 {
		visibility = 5 * time.Minute
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Queue{db: db, visibility: visibility, maxRetries: maxRetries}
}

// Enqueue appends a job id, immediately available for delivery.
func (q *Queue) Enqueue(ctx context.Context, jobID string) error {
	now := time.Now().UnixNano()
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO queue_messages (job_id, locked_by, locked_until, retry_count, dead, available_at, created_at, updated_at)
		VALUES (?, NULL, NULL, 0, 0, ?, ?, ?)
	`, jobID, now, now, now)
	return err
}

// Dequeue claims the oldest available message for workerID, making it
// invisible to other workers for the visibility window. Returns
// (nil, nil) when no message is available. Messages that exhaust their
// retries are marked dead instead of being delivered again.
func (q *Queue) Dequeue(ctx context.Context, workerID string) (*Message, error) {
	for {
		msg, err := q.claimOne(ctx, workerID)
		if err != nil {
			return nil, err
		}
		if msg == nil {
			return nil, nil
		}
		if msg.RetryCount <= q.maxRetries {
			return msg, nil
		}
		if err := q.bury(ctx, msg.ID); err != nil {
			return nil, err
		}
	}
}

func (q *Queue) claimOne(ctx context.Context, workerID string) (*Message, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	var msg Message
	err = tx.QueryRowContext(ctx, `
		SELECT id, job_id, retry_count
		FROM queue_messages
		WHERE dead = 0
		  AND available_at <= ?
		  AND (locked_until IS NULL OR locked_until < ?)
		ORDER BY available_at, id
		LIMIT 1
	`, now.UnixNano(), now.UnixNano()).Scan(&msg.ID, &msg.JobID, &msg.RetryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// The claim itself counts as a delivery attempt.
	msg.RetryCount++
	_, err = tx.ExecContext(ctx, `
		UPDATE queue_messages
		SET locked_by = ?, locked_until = ?, retry_count = retry_count + 1, updated_at = ?
		WHERE id = ?
	`, workerID, now.Add(q.visibility).UnixNano(), now.UnixNano(), msg.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (q *Queue) bury(ctx context.Context, messageID int64) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE queue_messages SET dead = 1, updated_at = ? WHERE id = ?
	`, time.Now().UnixNano(), messageID)
	return err
}

// Ack deletes a processed message. Without an ack the message becomes
// visible again once its lock expires.
func (q *Queue) Ack(ctx context.Context, messageID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM queue_messages WHERE id = ?`, messageID)
	return err
}

// Depth counts live messages, delivered or not.
func (q *Queue) Depth(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue_messages WHERE dead = 0`).Scan(&n)
	return n, err
}
