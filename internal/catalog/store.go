package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"aria/internal/config"
)

// ErrLocked is returned when another aria process holds the catalog lock.
var ErrLocked = errors.New("catalog is locked by another process")

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the catalog database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: flock.New(cfg.LockPath())}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection and releases any held lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return s.db.Close()
}

// Path returns the catalog database location.
func (s *Store) Path() string {
	return s.path
}

// AcquireLock takes the single-writer lock. Indexing runs hold it so two
// processes never race on the same catalog.
func (s *Store) AcquireLock() error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// ReleaseLock releases the single-writer lock.
func (s *Store) ReleaseLock() error {
	return s.lock.Unlock()
}

// UpsertRecords writes a batch of records in one transaction. Conflicts on the
// checksum key update the mutable metadata and loudness columns and leave id,
// checksum, and created_at untouched. Record timestamps are stored as given,
// with zero values falling back to the write time, so mirrored records keep
// their remote history. An empty batch is a no-op.
func (s *Store) UpsertRecords(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO library (
            checksum, source_id, path, filename,
            artist, album_artist, title, album, genre,
            track_number, disc_number, year, duration_ms,
            rg_track_gain, rg_track_peak, rg_album_gain, rg_album_peak,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(checksum) DO UPDATE SET
            source_id = excluded.source_id,
            path = excluded.path,
            filename = excluded.filename,
            artist = excluded.artist,
            album_artist = excluded.album_artist,
            title = excluded.title,
            album = excluded.album,
            genre = excluded.genre,
            track_number = excluded.track_number,
            disc_number = excluded.disc_number,
            year = excluded.year,
            duration_ms = excluded.duration_ms,
            rg_track_gain = excluded.rg_track_gain,
            rg_track_peak = excluded.rg_track_peak,
            rg_album_gain = excluded.rg_album_gain,
            rg_album_peak = excluded.rg_album_peak,
            updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range records {
		record := &records[i]
		created := record.CreatedAt
		if created.IsZero() {
			created = now
		}
		updated := record.UpdatedAt
		if updated.IsZero() {
			updated = now
		}
		if _, err := stmt.ExecContext(ctx,
			record.Checksum,
			record.SourceID,
			record.Path,
			record.Filename,
			nullableString(record.Artist),
			nullableString(record.AlbumArtist),
			nullableString(record.Title),
			nullableString(record.Album),
			nullableString(record.Genre),
			nullableInt(record.TrackNumber),
			nullableInt(record.DiscNumber),
			nullableInt(record.Year),
			record.DurationMS,
			nullableFloat(record.TrackGain),
			nullableFloat(record.TrackPeak),
			nullableFloat(record.AlbumGain),
			nullableFloat(record.AlbumPeak),
			created.Format(time.RFC3339Nano),
			updated.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("upsert record %s: %w", record.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// LastIndexed returns the last successful index time for a source. The second
// return reports whether a timestamp was ever recorded.
func (s *Store) LastIndexed(ctx context.Context, sourceID int64) (time.Time, bool, error) {
	var raw sql.NullString
	row := s.db.QueryRowContext(ctx, `SELECT last_indexed FROM sources WHERE id = ?`, sourceID)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("query last indexed: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false, nil
	}
	ts, err := parseTimeString(raw.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last indexed %q: %w", raw.String, err)
	}
	return ts, true, nil
}

// SetLastIndexed records a successful index run for a source.
func (s *Store) SetLastIndexed(ctx context.Context, sourceID int64, ts time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sources (id, last_indexed) VALUES (?, ?)
         ON CONFLICT(id) DO UPDATE SET last_indexed = excluded.last_indexed`,
		sourceID,
		ts.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set last indexed: %w", err)
	}
	return nil
}

// RecordByChecksum fetches a record by its stored checksum, or nil when absent.
func (s *Store) RecordByChecksum(ctx context.Context, checksum int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM library WHERE checksum = ?`, checksum)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// RecordsBySource returns all records belonging to a source.
func (s *Store) RecordsBySource(ctx context.Context, sourceID int64) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM library WHERE source_id = ? ORDER BY path, filename`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("query records by source: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListRecords returns every catalog record.
func (s *Store) ListRecords(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM library ORDER BY path, filename`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// PurgeSource removes every record for a source along with its index state.
func (s *Store) PurgeSource(ctx context.Context, sourceID int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin purge tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM library WHERE source_id = ?`, sourceID)
	if err != nil {
		return 0, fmt.Errorf("purge records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, sourceID); err != nil {
		return 0, fmt.Errorf("purge source state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit purge: %w", err)
	}
	return affected, nil
}

// Stats aggregates record counts and durations per source.
func (s *Store) Stats(ctx context.Context) (map[int64]SourceStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source_id, COUNT(1), COALESCE(SUM(duration_ms), 0) FROM library GROUP BY source_id`)
	if err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[int64]SourceStats)
	for rows.Next() {
		var sourceID int64
		var entry SourceStats
		if err := rows.Scan(&sourceID, &entry.Records, &entry.DurationMS); err != nil {
			return nil, err
		}
		stats[sourceID] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srcRows, err := s.db.QueryContext(ctx, `SELECT id, last_indexed FROM sources`)
	if err != nil {
		return nil, fmt.Errorf("source stats: %w", err)
	}
	defer srcRows.Close()
	for srcRows.Next() {
		var id int64
		var raw sql.NullString
		if err := srcRows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		entry := stats[id]
		if raw.Valid && raw.String != "" {
			if ts, err := parseTimeString(raw.String); err == nil {
				entry.LastIndexed = &ts
			}
		}
		stats[id] = entry
	}
	return stats, srcRows.Err()
}

const recordColumns = "id, checksum, source_id, path, filename, artist, album_artist, title, album, genre, track_number, disc_number, year, duration_ms, rg_track_gain, rg_track_peak, rg_album_gain, rg_album_peak, created_at, updated_at"

func collectRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id          int64
		checksum    int64
		sourceID    int64
		path        string
		filename    string
		artist      sql.NullString
		albumArtist sql.NullString
		title       sql.NullString
		album       sql.NullString
		genre       sql.NullString
		trackNumber sql.NullInt64
		discNumber  sql.NullInt64
		year        sql.NullInt64
		durationMS  int64
		trackGain   sql.NullFloat64
		trackPeak   sql.NullFloat64
		albumGain   sql.NullFloat64
		albumPeak   sql.NullFloat64
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&checksum,
		&sourceID,
		&path,
		&filename,
		&artist,
		&albumArtist,
		&title,
		&album,
		&genre,
		&trackNumber,
		&discNumber,
		&year,
		&durationMS,
		&trackGain,
		&trackPeak,
		&albumGain,
		&albumPeak,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:          id,
		Checksum:    checksum,
		SourceID:    sourceID,
		Path:        path,
		Filename:    filename,
		Artist:      artist.String,
		AlbumArtist: albumArtist.String,
		Title:       title.String,
		Album:       album.String,
		Genre:       genre.String,
		TrackNumber: nullInt(trackNumber),
		DiscNumber:  nullInt(discNumber),
		Year:        nullInt(year),
		DurationMS:  durationMS,
		TrackGain:   nullFloat(trackGain),
		TrackPeak:   nullFloat(trackPeak),
		AlbumGain:   nullFloat(albumGain),
		AlbumPeak:   nullFloat(albumPeak),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullInt(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func nullFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
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
