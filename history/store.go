// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package history implements the append-plus-update utterance record store
// (spec §4.9), grounded on the direct database/sql + mattn/go-sqlite3
// pairing from other_examples' Desarso-godantic manifest (no ORM: the
// query shapes here — indexed list/search/aggregate — are simple enough
// that hand-rolled SQL fits this repo's style better than a declarative
// layer). Audio files live in an audio/ directory beside the database as
// <id>.wav, written with
// the same go-audio/wav encoder provider/ uses.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AshBuk/sonicinput/internal/errs"
)

// Status values for Record.TranscriptionStatus / AIStatus.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Record is one utterance, from capture through optional AI refinement.
type Record struct {
	ID                 string
	CreatedAt          time.Time
	DurationS          float64
	TranscriptionText  string
	TranscriptionLang  string
	TranscriptionStatus string
	AIOptimizedText    string
	AIStatus           string
	FinalText          string
	AudioPath          string
}

// ListFilter narrows List/Search/Count/BatchReprocess.
type ListFilter struct {
	SearchText          string
	Start, End          time.Time
	TranscriptionStatus string
	AIStatus            string
	Limit, Offset       int
	OrderBy             string // "timestamp_desc" (default) is the only indexed ordering guaranteed
}

// BatchResult reports the outcome of a page-by-page reprocess pass.
type BatchResult struct {
	Total, Success, Skipped, Failed int
	FirstErrors                     []string
}

const batchPageSize = 500
const maxFirstErrors = 10

// Store is a serialized-write, concurrent-read SQLite-backed history store.
type Store struct {
	db        *sql.DB
	audioDir  string
	writeLock sync.Mutex
}

// Open creates (if needed) the database at dbPath and its sibling audio/
// directory, and ensures schema + fts5 index exist.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	db, err := sql.Open(sqlDriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1) // writes are serialized anyway; avoids sqlite lock contention

	audioDir := filepath.Join(filepath.Dir(dbPath), "audio")
	if err := os.MkdirAll(audioDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	s := &Store{db: db, audioDir: audioDir}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS records (
	id                   TEXT PRIMARY KEY,
	created_at           INTEGER NOT NULL,
	duration_s           REAL NOT NULL DEFAULT 0,
	transcription_text   TEXT NOT NULL DEFAULT '',
	transcription_lang   TEXT NOT NULL DEFAULT '',
	transcription_status TEXT NOT NULL DEFAULT 'pending',
	ai_optimized_text    TEXT NOT NULL DEFAULT '',
	ai_status            TEXT NOT NULL DEFAULT 'pending',
	final_text           TEXT NOT NULL DEFAULT '',
	audio_path           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_records_transcription_status ON records(transcription_status);
CREATE INDEX IF NOT EXISTS idx_records_ai_status ON records(ai_status);
CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
	id UNINDEXED, transcription_text, ai_optimized_text
);
`
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a new record. If record.AudioPath is empty and pcm is
// supplied, the audio is encoded to <id>.wav and the path recorded.
func (s *Store) Save(ctx context.Context, rec *Record, pcm []float32, sampleRate int, encodeWAV func([]float32, int) ([]byte, error)) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	if rec.AudioPath == "" && len(pcm) > 0 && encodeWAV != nil {
		wavBytes, err := encodeWAV(pcm, sampleRate)
		if err != nil {
			return errs.New(errs.Unknown, "failed to encode history audio", err)
		}
		path := filepath.Join(s.audioDir, rec.ID+".wav")
		if err := os.WriteFile(path, wavBytes, 0o600); err != nil {
			return errs.New(errs.Unknown, "failed to write history audio file", err)
		}
		rec.AudioPath = path
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (id, created_at, duration_s, transcription_text, transcription_lang,
			transcription_status, ai_optimized_text, ai_status, final_text, audio_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Unix(), rec.DurationS, rec.TranscriptionText, rec.TranscriptionLang,
		rec.TranscriptionStatus, rec.AIOptimizedText, rec.AIStatus, rec.FinalText, rec.AudioPath)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO records_fts (id, transcription_text, ai_optimized_text) VALUES (?, ?, ?)`,
		rec.ID, rec.TranscriptionText, rec.AIOptimizedText); err != nil {
		return err
	}
	return tx.Commit()
}

// Update modifies AI-related fields of an existing record; the
// transcription fields are immutable after first save (spec §4.9).
func (s *Store) Update(ctx context.Context, id string, aiText, aiStatus, finalText string) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE records SET ai_optimized_text = ?, ai_status = ?, final_text = ? WHERE id = ?`,
		aiText, aiStatus, finalText, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("history: record %s not found", id)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE records_fts SET ai_optimized_text = ? WHERE id = ?`, aiText, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, recordColumns+` FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

const recordColumns = `SELECT id, created_at, duration_s, transcription_text, transcription_lang,
	transcription_status, ai_optimized_text, ai_status, final_text, audio_path`

func scanRecord(row *sql.Row) (*Record, error) {
	var rec Record
	var createdAt int64
	if err := row.Scan(&rec.ID, &createdAt, &rec.DurationS, &rec.TranscriptionText, &rec.TranscriptionLang,
		&rec.TranscriptionStatus, &rec.AIOptimizedText, &rec.AIStatus, &rec.FinalText, &rec.AudioPath); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}

// List returns records ordered by timestamp descending (the only indexed
// ordering spec §4.9 guarantees), paginated by limit/offset.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*Record, error) {
	return s.query(ctx, recordColumns+` FROM records ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
}

// Search filters by optional free text (via the fts5 index), time range,
// and statuses.
func (s *Store) Search(ctx context.Context, f ListFilter) ([]*Record, error) {
	query, args := f.buildSearchQuery(false)
	return s.query(ctx, query, args...)
}

// Count returns the total matching Search's filter, for pagination.
func (s *Store) Count(ctx context.Context, f ListFilter) (int, error) {
	query, args := f.buildSearchQuery(true)
	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (f ListFilter) buildSearchQuery(countOnly bool) (string, []interface{}) {
	selectClause := recordColumns
	if countOnly {
		selectClause = "SELECT COUNT(*)"
	}
	query := selectClause + ` FROM records r`
	var args []interface{}
	var where []string

	if f.SearchText != "" {
		query += ` JOIN records_fts fts ON fts.id = r.id`
		where = append(where, `records_fts MATCH ?`)
		args = append(args, f.SearchText)
	}
	if !f.Start.IsZero() {
		where = append(where, `r.created_at >= ?`)
		args = append(args, f.Start.Unix())
	}
	if !f.End.IsZero() {
		where = append(where, `r.created_at <= ?`)
		args = append(args, f.End.Unix())
	}
	if f.TranscriptionStatus != "" {
		where = append(where, `r.transcription_status = ?`)
		args = append(args, f.TranscriptionStatus)
	}
	if f.AIStatus != "" {
		where = append(where, `r.ai_status = ?`)
		args = append(args, f.AIStatus)
	}

	if len(where) > 0 {
		query += ` WHERE `
		for i, w := range where {
			if i > 0 {
				query += ` AND `
			}
			query += w
		}
	}

	if !countOnly {
		query += ` ORDER BY r.created_at DESC LIMIT ? OFFSET ?`
		limit := f.Limit
		if limit <= 0 {
			limit = 50
		}
		args = append(args, limit, f.Offset)
	}
	return query, args
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*Record
	for rows.Next() {
		var rec Record
		var createdAt int64
		if err := rows.Scan(&rec.ID, &createdAt, &rec.DurationS, &rec.TranscriptionText, &rec.TranscriptionLang,
			&rec.TranscriptionStatus, &rec.AIOptimizedText, &rec.AIStatus, &rec.FinalText, &rec.AudioPath); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Delete removes a record's DB row and associated audio file.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany removes DB rows and audio files for every id given (spec P8).
func (s *Store) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ids {
		row := tx.QueryRowContext(ctx, `SELECT audio_path FROM records WHERE id = ?`, id)
		var audioPath string
		if err := row.Scan(&audioPath); err != nil && err != sql.ErrNoRows {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM records_fts WHERE id = ?`, id); err != nil {
			return err
		}
		if audioPath != "" {
			if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}
	return tx.Commit()
}

// SweepOrphans removes audio files in the audio directory with no matching
// DB row and returns how many were removed.
func (s *Store) SweepOrphans(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.audioDir)
	if err != nil {
		return 0, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM records`)
	if err != nil {
		return 0, err
	}
	known := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, err
		}
		known[id+".wav"] = true
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || known[e.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(s.audioDir, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// AggregateStats returns (count, total_duration_s, success_count) for
// records matching the optional filter.
func (s *Store) AggregateStats(ctx context.Context, f ListFilter) (count int, totalDurationS float64, successCount int, err error) {
	countQuery, countArgs := f.buildSearchQuery(true)
	if err = s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&count); err != nil {
		return
	}

	durQuery, durArgs := f.buildSearchQuery(false)
	durQuery = "SELECT COALESCE(SUM(r.duration_s), 0)" + durQuery[len(recordColumns):]
	durQuery = stripLimitOffset(durQuery)
	if err = s.db.QueryRowContext(ctx, durQuery, durArgs[:len(durArgs)-2]...).Scan(&totalDurationS); err != nil {
		return
	}

	successFilter := f
	successFilter.TranscriptionStatus = StatusSuccess
	successQuery, successArgs := successFilter.buildSearchQuery(true)
	err = s.db.QueryRowContext(ctx, successQuery, successArgs...).Scan(&successCount)
	return
}

func stripLimitOffset(query string) string {
	if idx := indexOf(query, " ORDER BY r.created_at DESC LIMIT ? OFFSET ?"); idx >= 0 {
		return query[:idx]
	}
	return query
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

// BatchReprocess iterates matching records page-by-page (default 500 per
// page), invoking reprocess on each with an inter-record cooldown to
// respect cloud rate limits. Cancellable between records, not mid-record.
func (s *Store) BatchReprocess(ctx context.Context, f ListFilter, cooldown time.Duration, reprocess func(ctx context.Context, rec *Record) error) (BatchResult, error) {
	var result BatchResult
	offset := f.Offset
	pageSize := batchPageSize

	for {
		page := f
		page.Limit = pageSize
		page.Offset = offset
		records, err := s.Search(ctx, page)
		if err != nil {
			return result, err
		}
		if len(records) == 0 {
			break
		}

		for _, rec := range records {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			result.Total++
			if err := reprocess(ctx, rec); err != nil {
				result.Failed++
				if len(result.FirstErrors) < maxFirstErrors {
					result.FirstErrors = append(result.FirstErrors, fmt.Sprintf("%s: %v", rec.ID, err))
				}
			} else {
				result.Success++
			}

			if cooldown > 0 {
				select {
				case <-time.After(cooldown):
				case <-ctx.Done():
					return result, ctx.Err()
				}
			}
		}

		offset += len(records)
		if len(records) < pageSize {
			break
		}
	}
	return result, nil
}
