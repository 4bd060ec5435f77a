package rendercache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Entry records one compiled render keyed by pipeline digest.
type Entry struct {
	Digest     string
	OutputPath string
	Args       []string
	Elapsed    time.Duration
	RunCount   int64
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Stats summarizes cache contents for diagnostic output.
type Stats struct {
	Enabled   bool
	Path      string
	Entries   int64
	TotalRuns int64
	SizeBytes int64
	Oldest    time.Time
	Newest    time.Time
}

const entryColumns = "digest, output_path, args_json, elapsed_ms, run_count, created_at, last_used_at"

// Record inserts or refreshes the entry for a digest. Creation time and
// run counters survive re-records of the same pipeline.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if !s.Enabled() {
		return nil
	}
	digest := strings.TrimSpace(entry.Digest)
	if digest == "" {
		return errors.New("digest required")
	}
	argsJSON, err := json.Marshal(entry.Args)
	if err != nil {
		return fmt.Errorf("marshal args: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO render_entries (`+entryColumns+`)
         VALUES (?, ?, ?, ?, 1, ?, ?)
         ON CONFLICT(digest) DO UPDATE SET
             output_path = excluded.output_path,
             args_json = excluded.args_json,
             elapsed_ms = excluded.elapsed_ms,
             last_used_at = excluded.last_used_at`,
		digest,
		entry.OutputPath,
		string(argsJSON),
		entry.Elapsed.Milliseconds(),
		now,
		now,
	); err != nil {
		return fmt.Errorf("record render entry: %w", err)
	}
	return nil
}

// Lookup fetches the entry for a digest, bumping its usage counters on
// a hit. A miss returns nil without error.
func (s *Store) Lookup(ctx context.Context, digest string) (*Entry, error) {
	if !s.Enabled() {
		return nil, nil
	}
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return nil, errors.New("digest required")
	}

	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM render_entries WHERE digest = ?`, digest)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup render entry: %w", err)
	}

	touched := time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE render_entries SET run_count = run_count + 1, last_used_at = ? WHERE digest = ?`,
		touched.Format(time.RFC3339Nano),
		digest,
	); err != nil {
		return nil, fmt.Errorf("touch render entry: %w", err)
	}
	entry.RunCount++
	entry.LastUsedAt = touched
	return entry, nil
}

// Remove deletes the entry for a digest, reporting whether one existed.
func (s *Store) Remove(ctx context.Context, digest string) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM render_entries WHERE digest = ?`, strings.TrimSpace(digest))
	if err != nil {
		return false, fmt.Errorf("delete render entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all entries from the cache.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM render_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear render cache: %w", err)
	}
	return res.RowsAffected()
}

// Prune deletes entries not used within the given window.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if !s.Enabled() || olderThan <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx, `DELETE FROM render_entries WHERE last_used_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune render cache: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) pruneExpired(ctx context.Context) (int64, error) {
	return s.Prune(ctx, s.retention)
}

// List returns all entries ordered by most recent use.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	if !s.Enabled() {
		return nil, nil
	}
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM render_entries ORDER BY last_used_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list render entries: %w", err)
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

// Stats aggregates cache state for diagnostic output.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	if !s.Enabled() {
		return Stats{}, nil
	}
	ctx = ensureContext(ctx)

	stats := Stats{Enabled: true, Path: s.path}
	var oldestRaw, newestRaw sql.NullString
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(run_count), 0), MIN(created_at), MAX(created_at) FROM render_entries`)
	if err := row.Scan(&stats.Entries, &stats.TotalRuns, &oldestRaw, &newestRaw); err != nil {
		return Stats{}, fmt.Errorf("render cache stats: %w", err)
	}
	if oldestRaw.Valid {
		if parsed, err := parseTimeString(oldestRaw.String); err == nil {
			stats.Oldest = parsed
		}
	}
	if newestRaw.Valid {
		if parsed, err := parseTimeString(newestRaw.String); err == nil {
			stats.Newest = parsed
		}
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		digest      string
		outputPath  string
		argsJSON    string
		elapsedMS   int64
		runCount    int64
		createdRaw  string
		lastUsedRaw string
	)
	if err := scanner.Scan(&digest, &outputPath, &argsJSON, &elapsedMS, &runCount, &createdRaw, &lastUsedRaw); err != nil {
		return nil, err
	}

	entry := &Entry{
		Digest:     digest,
		OutputPath: outputPath,
		Elapsed:    time.Duration(elapsedMS) * time.Millisecond,
		RunCount:   runCount,
	}
	if err := json.Unmarshal([]byte(argsJSON), &entry.Args); err != nil {
		return nil, fmt.Errorf("parse cached args: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	if lastUsed, err := parseTimeString(lastUsedRaw); err == nil {
		entry.LastUsedAt = lastUsed
	}
	return entry, nil
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
