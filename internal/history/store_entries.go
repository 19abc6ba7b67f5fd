package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clipdeck/internal/upload"
)

const entryColumns = "id, source_path, source_name, fingerprint, title, outcome, remote_id, visibility, publish_at, failed_phase, error_message, warning_message, evidence_count, bytes_acknowledged, total_bytes, moderation_skipped, started_at, finished_at"

// Add appends entry. Entries are immutable; adding the same id twice fails.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		return errors.New("history entry has no id")
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = time.Now()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = entry.FinishedAt
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO uploads (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		nullableString(entry.SourcePath),
		entry.SourceName,
		nullableString(entry.Fingerprint),
		nullableString(entry.Title),
		string(entry.Outcome),
		nullableString(entry.RemoteID),
		nullableString(entry.Visibility),
		nullableTime(entry.PublishAt),
		nullableString(entry.FailedPhase),
		nullableString(entry.ErrorMessage),
		nullableString(entry.WarningMessage),
		entry.EvidenceCount,
		entry.BytesAcknowledged,
		entry.TotalBytes,
		boolToInt(entry.ModerationSkipped),
		entry.StartedAt.UTC().Format(time.RFC3339Nano),
		entry.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// Get returns the entry with id, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+entryColumns+` FROM uploads WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history entry: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first. A limit of zero or less
// returns every entry.
func (s *Store) Recent(ctx context.Context, limit int, outcomes ...upload.Kind) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM uploads`
	args := make([]any, 0, len(outcomes)+1)
	if len(outcomes) > 0 {
		query += ` WHERE outcome IN (` + makePlaceholders(len(outcomes)) + `)`
		for _, kind := range outcomes {
			args = append(args, string(kind))
		}
	}
	query += ` ORDER BY finished_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ByFingerprint returns entries recorded for the same file content, newest first.
func (s *Store) ByFingerprint(ctx context.Context, fingerprint string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+entryColumns+` FROM uploads WHERE fingerprint = ? ORDER BY finished_at DESC`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("query by fingerprint: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Summary counts entries by outcome.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT outcome, COUNT(1) FROM uploads GROUP BY outcome`)
	if err != nil {
		return Summary{}, fmt.Errorf("history summary: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var (
			outcome string
			count   int
		)
		if err := rows.Scan(&outcome, &count); err != nil {
			return Summary{}, err
		}
		summary.Total += count
		switch upload.Kind(outcome) {
		case upload.KindSucceeded:
			summary.Succeeded += count
		case upload.KindRejected:
			summary.Rejected += count
		case upload.KindFailedNetwork:
			summary.Failed += count
		case upload.KindFlaggedByModeration:
			summary.Flagged += count
		}
	}
	return summary, rows.Err()
}

// Prune deletes entries that finished before cutoff and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM uploads WHERE finished_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM uploads`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}
