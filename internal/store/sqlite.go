package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"PulseBeacon/internal/model"
)

// SQLiteStore persists beacons, readings and achievement state to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so `serve` and one-shot CLI commands can share the file.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, log: logger.With(zap.String("component", "sqlite_store"))}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info("sqlite store opened", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS beacons (
			id                 TEXT PRIMARY KEY,
			name               TEXT NOT NULL,
			metric_name        TEXT NOT NULL,
			min_value          REAL NOT NULL,
			max_value          REAL NOT NULL,
			critical_threshold REAL,
			created_at         INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS readings (
			id        TEXT PRIMARY KEY,
			beacon_id TEXT NOT NULL REFERENCES beacons(id),
			timestamp INTEGER NOT NULL,
			value     REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_beacon_ts ON readings(beacon_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS achievements (
			id          TEXT PRIMARY KEY,
			is_unlocked INTEGER NOT NULL DEFAULT 0,
			unlocked_at INTEGER,
			progress    REAL NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveBeacon(b *model.Beacon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var critical sql.NullFloat64
	if b.CriticalThreshold != nil {
		critical = sql.NullFloat64{Float64: *b.CriticalThreshold, Valid: true}
	}
	_, err := s.db.Exec(`INSERT INTO beacons
		(id, name, metric_name, min_value, max_value, critical_threshold, created_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			metric_name = excluded.metric_name,
			min_value = excluded.min_value,
			max_value = excluded.max_value,
			critical_threshold = excluded.critical_threshold`,
		b.ID.String(), b.Name, b.MetricName, b.MinValue, b.MaxValue, critical, b.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save beacon %s: %w", b.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBeacon(row rowScanner) (*model.Beacon, error) {
	var (
		b        model.Beacon
		id       string
		critical sql.NullFloat64
		created  int64
	)
	if err := row.Scan(&id, &b.Name, &b.MetricName, &b.MinValue, &b.MaxValue, &critical, &created); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse beacon id %q: %w", id, err)
	}
	b.ID = parsed
	b.CreatedAt = time.Unix(0, created)
	if critical.Valid {
		v := critical.Float64
		b.CriticalThreshold = &v
	}
	return &b, nil
}

func (s *SQLiteStore) Beacon(id uuid.UUID) (*model.Beacon, error) {
	row := s.db.QueryRow(`SELECT id, name, metric_name, min_value, max_value, critical_threshold, created_at
		FROM beacons WHERE id = ?`, id.String())
	b, err := scanBeacon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("beacon %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load beacon %s: %w", id, err)
	}
	return b, nil
}

func (s *SQLiteStore) Beacons() ([]model.Beacon, error) {
	rows, err := s.db.Query(`SELECT id, name, metric_name, min_value, max_value, critical_threshold, created_at
		FROM beacons ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list beacons: %w", err)
	}
	defer rows.Close()

	var out []model.Beacon
	for rows.Next() {
		b, err := scanBeacon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan beacon: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteBeacon(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM readings WHERE beacon_id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete readings: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM beacons WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete beacon: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("beacon %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func (s *SQLiteStore) AppendReading(beaconID uuid.UUID, r model.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM beacons WHERE id = ?`, beaconID.String()).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("beacon %s: %w", beaconID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check beacon: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO readings (id, beacon_id, timestamp, value) VALUES (?,?,?,?)`,
		r.ID.String(), beaconID.String(), r.Timestamp.UnixNano(), r.Value,
	)
	if err != nil {
		return fmt.Errorf("append reading: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Readings(beaconID uuid.UUID) ([]model.Reading, error) {
	rows, err := s.db.Query(`SELECT id, timestamp, value FROM readings
		WHERE beacon_id = ? ORDER BY timestamp, rowid`, beaconID.String())
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var out []model.Reading
	for rows.Next() {
		var (
			id string
			ts int64
			r  model.Reading
		)
		if err := rows.Scan(&id, &ts, &r.Value); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse reading id %q: %w", id, err)
		}
		r.Timestamp = time.Unix(0, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AchievementRecords() ([]model.AchievementRecord, error) {
	rows, err := s.db.Query(`SELECT id, is_unlocked, unlocked_at, progress FROM achievements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	var out []model.AchievementRecord
	for rows.Next() {
		var (
			r          model.AchievementRecord
			unlockedAt sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.IsUnlocked, &unlockedAt, &r.Progress); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		if unlockedAt.Valid {
			t := time.Unix(0, unlockedAt.Int64)
			r.UnlockedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveAchievementRecords upserts records. An unlock is never reverted: a
// stored unlock keeps its flag, timestamp and progress whatever the caller sends.
func (s *SQLiteStore) SaveAchievementRecords(records []model.AchievementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		var unlockedAt sql.NullInt64
		if r.UnlockedAt != nil {
			unlockedAt = sql.NullInt64{Int64: r.UnlockedAt.UnixNano(), Valid: true}
		}
		_, err := tx.Exec(`INSERT INTO achievements (id, is_unlocked, unlocked_at, progress)
			VALUES (?,?,?,?)
			ON CONFLICT(id) DO UPDATE SET
				is_unlocked = MAX(achievements.is_unlocked, excluded.is_unlocked),
				unlocked_at = COALESCE(achievements.unlocked_at, excluded.unlocked_at),
				progress = CASE WHEN achievements.is_unlocked = 1
					THEN achievements.progress ELSE excluded.progress END`,
			r.ID, r.IsUnlocked, unlockedAt, r.Progress,
		)
		if err != nil {
			return fmt.Errorf("save achievement %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	s.log.Info("closing sqlite store")
	return s.db.Close()
}
