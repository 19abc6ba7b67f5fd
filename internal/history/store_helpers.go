package history

import (
	"database/sql"
	"errors"
	"time"

	"clipdeck/internal/upload"
)

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id                string
		sourcePath        sql.NullString
		sourceName        string
		fingerprint       sql.NullString
		title             sql.NullString
		outcome           string
		remoteID          sql.NullString
		visibility        sql.NullString
		publishAtRaw      sql.NullString
		failedPhase       sql.NullString
		errorMessage      sql.NullString
		warningMessage    sql.NullString
		evidenceCount     int
		bytesAcknowledged int64
		totalBytes        int64
		moderationSkipped int
		startedRaw        string
		finishedRaw       string
	)
	if err := scanner.Scan(
		&id,
		&sourcePath,
		&sourceName,
		&fingerprint,
		&title,
		&outcome,
		&remoteID,
		&visibility,
		&publishAtRaw,
		&failedPhase,
		&errorMessage,
		&warningMessage,
		&evidenceCount,
		&bytesAcknowledged,
		&totalBytes,
		&moderationSkipped,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:                id,
		SourcePath:        sourcePath.String,
		SourceName:        sourceName,
		Fingerprint:       fingerprint.String,
		Title:             title.String,
		Outcome:           upload.Kind(outcome),
		RemoteID:          remoteID.String,
		Visibility:        visibility.String,
		FailedPhase:       failedPhase.String,
		ErrorMessage:      errorMessage.String,
		WarningMessage:    warningMessage.String,
		EvidenceCount:     evidenceCount,
		BytesAcknowledged: bytesAcknowledged,
		TotalBytes:        totalBytes,
		ModerationSkipped: moderationSkipped != 0,
	}
	if publishAtRaw.Valid {
		if publishAt, err := parseTimeString(publishAtRaw.String); err == nil {
			entry.PublishAt = &publishAt
		}
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		entry.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw); err == nil {
		entry.FinishedAt = finished
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
