package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"retrace/internal/mistake"
)

const recordColumns = `id, user_id, source_image, question_text, user_answer,
    correct_answer, correct_answer_image, subject, error_type, knowledge_tags,
    ai_analysis, status, repetition, ease_factor, interval_days, due_at,
    error_note, created_at, updated_at`

// SortOrder selects how listings are ordered.
type SortOrder string

const (
	// SortImportance orders by due timestamp ascending: least-mastered,
	// longest-overdue records first.
	SortImportance SortOrder = "importance"
	// SortNewest orders by creation time descending.
	SortNewest SortOrder = "newest"
)

// ParseSortOrder converts a CLI flag value into a SortOrder.
func ParseSortOrder(value string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case SortImportance:
		return SortImportance, true
	case SortNewest, "":
		return SortNewest, true
	default:
		return "", false
	}
}

// Insert persists a freshly captured record.
func (s *Store) Insert(ctx context.Context, rec *mistake.Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	tags, err := encodeTags(rec.KnowledgeTags)
	if err != nil {
		return err
	}
	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO mistakes (`+recordColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.UserID,
		rec.SourceImage,
		nullableString(rec.QuestionText),
		nullableString(rec.UserAnswer),
		nullableString(rec.CorrectAnswer),
		nullableString(rec.CorrectAnswerImage),
		nullableString(string(rec.Subject)),
		nullableString(string(rec.ErrorType)),
		tags,
		nullableString(rec.AIAnalysis),
		string(rec.Status),
		rec.Memory.Repetition,
		rec.Memory.EaseFactor,
		rec.Memory.IntervalDays,
		nullableTime(rec.Memory.Due),
		nullableString(rec.ErrorNote),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// GetByID fetches a record by identifier. Missing records return (nil, nil).
func (s *Store) GetByID(ctx context.Context, id string) (*mistake.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM mistakes WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Update persists changes to an existing record. The write succeeds only if
// the row's updated_at still matches the value the record was loaded with;
// otherwise ErrStaleRecord is returned and the caller should reload.
func (s *Store) Update(ctx context.Context, rec *mistake.Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	tags, err := encodeTags(rec.KnowledgeTags)
	if err != nil {
		return err
	}
	expected := rec.UpdatedAt.UTC().Format(time.RFC3339Nano)
	now := time.Now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`UPDATE mistakes
         SET source_image = ?, question_text = ?, user_answer = ?,
             correct_answer = ?, correct_answer_image = ?, subject = ?,
             error_type = ?, knowledge_tags = ?, ai_analysis = ?, status = ?,
             repetition = ?, ease_factor = ?, interval_days = ?, due_at = ?,
             error_note = ?, updated_at = ?
         WHERE id = ? AND updated_at = ?`,
		rec.SourceImage,
		nullableString(rec.QuestionText),
		nullableString(rec.UserAnswer),
		nullableString(rec.CorrectAnswer),
		nullableString(rec.CorrectAnswerImage),
		nullableString(string(rec.Subject)),
		nullableString(string(rec.ErrorType)),
		tags,
		nullableString(rec.AIAnalysis),
		string(rec.Status),
		rec.Memory.Repetition,
		rec.Memory.EaseFactor,
		rec.Memory.IntervalDays,
		nullableTime(rec.Memory.Due),
		nullableString(rec.ErrorNote),
		now.Format(time.RFC3339Nano),
		rec.ID,
		expected,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update record %s: %w", rec.ID, ErrStaleRecord)
	}
	rec.UpdatedAt = now
	return nil
}

// Delete removes a record unconditionally.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM mistakes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// ListByStatus returns a user's records in the given statuses. An empty
// status list means all statuses.
func (s *Store) ListByStatus(ctx context.Context, userID string, statuses []mistake.Status, sort SortOrder) ([]*mistake.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM mistakes WHERE user_id = ?`
	args := []any{userID}
	if len(statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
		query += ` AND status IN (` + placeholders + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	switch sort {
	case SortImportance:
		query += ` ORDER BY due_at IS NULL, due_at ASC, created_at ASC`
	default:
		query += ` ORDER BY created_at DESC`
	}
	return s.queryRecords(ctx, query, args...)
}

// ListPendingFIFO returns a user's pending records oldest-created-first.
// This is the batch pipeline's drain order.
func (s *Store) ListPendingFIFO(ctx context.Context, userID string) ([]*mistake.Record, error) {
	return s.queryRecords(
		ctx,
		`SELECT `+recordColumns+` FROM mistakes
         WHERE user_id = ? AND status = ?
         ORDER BY created_at ASC, id ASC`,
		userID,
		string(mistake.StatusPending),
	)
}

// DueForReview returns active records due at or before now, oldest-due-first,
// capped at limit.
func (s *Store) DueForReview(ctx context.Context, userID string, now time.Time, limit int) ([]*mistake.Record, error) {
	return s.queryRecords(
		ctx,
		`SELECT `+recordColumns+` FROM mistakes
         WHERE user_id = ? AND status = ? AND due_at IS NOT NULL AND due_at <= ?
         ORDER BY due_at ASC, id ASC
         LIMIT ?`,
		userID,
		string(mistake.StatusActive),
		now.UTC().Format(time.RFC3339Nano),
		limit,
	)
}

// CountDue returns how many active records are due at or before now.
func (s *Store) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM mistakes
         WHERE user_id = ? AND status = ? AND due_at IS NOT NULL AND due_at <= ?`,
		userID,
		string(mistake.StatusActive),
		now.UTC().Format(time.RFC3339Nano),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count due records: %w", err)
	}
	return count, nil
}

// Stats returns per-status record counts for a user.
func (s *Store) Stats(ctx context.Context, userID string) (map[mistake.Status]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1) FROM mistakes WHERE user_id = ? GROUP BY status`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[mistake.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		if parsed, ok := mistake.ParseStatus(status); ok {
			stats[parsed] = count
		}
	}
	return stats, rows.Err()
}

// ReclaimStuckAnalyzing returns records stranded in analyzing back to
// pending. Run at the start of a batch so a crash mid-call cannot orphan a
// record outside the drain set.
func (s *Store) ReclaimStuckAnalyzing(ctx context.Context, userID string) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE mistakes
         SET status = ?, question_text = NULL, user_answer = NULL,
             ai_analysis = NULL, subject = NULL, error_type = NULL,
             knowledge_tags = '[]',
             error_note = 'reclaimed from interrupted analysis', updated_at = ?
         WHERE user_id = ? AND status = ?`,
		string(mistake.StatusPending),
		time.Now().UTC().Format(time.RFC3339Nano),
		userID,
		string(mistake.StatusAnalyzing),
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stuck records: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]*mistake.Record, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []*mistake.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*mistake.Record, error) {
	var (
		rec                mistake.Record
		questionText       sql.NullString
		userAnswer         sql.NullString
		correctAnswer      sql.NullString
		correctAnswerImage sql.NullString
		subject            sql.NullString
		errorType          sql.NullString
		tagsJSON           string
		aiAnalysis         sql.NullString
		status             string
		dueAt              sql.NullString
		errorNote          sql.NullString
		createdAt          string
		updatedAt          string
	)

	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.SourceImage,
		&questionText,
		&userAnswer,
		&correctAnswer,
		&correctAnswerImage,
		&subject,
		&errorType,
		&tagsJSON,
		&aiAnalysis,
		&status,
		&rec.Memory.Repetition,
		&rec.Memory.EaseFactor,
		&rec.Memory.IntervalDays,
		&dueAt,
		&errorNote,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	rec.QuestionText = questionText.String
	rec.UserAnswer = userAnswer.String
	rec.CorrectAnswer = correctAnswer.String
	rec.CorrectAnswerImage = correctAnswerImage.String
	rec.Subject = mistake.Subject(subject.String)
	rec.ErrorType = mistake.ErrorType(errorType.String)
	rec.AIAnalysis = aiAnalysis.String
	rec.ErrorNote = errorNote.String

	parsedStatus, ok := mistake.ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown status %q for record %s", status, rec.ID)
	}
	rec.Status = parsedStatus

	if err := json.Unmarshal([]byte(tagsJSON), &rec.KnowledgeTags); err != nil {
		return nil, fmt.Errorf("decode knowledge tags for record %s: %w", rec.ID, err)
	}

	var err error
	if dueAt.Valid {
		if rec.Memory.Due, err = parseTimestamp(dueAt.String); err != nil {
			return nil, err
		}
	}
	if rec.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode knowledge tags: %w", err)
	}
	return string(data), nil
}
