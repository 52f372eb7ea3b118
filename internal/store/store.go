// Package store provides SQLite persistence for a local keyframe corpus.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/frameseq/internal/model"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// VideoStats summarizes one video's frames in the corpus.
type VideoStats struct {
	VideoID    string
	Title      string
	FrameCount int
	MinFrame   int
	MaxFrame   int
}

// Stats summarizes the whole corpus.
type Stats struct {
	TotalFrames int
	TotalVideos int
	Videos      []VideoStats
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// For in-memory databases, use shared cache mode so all connections
		// in the pool see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS keyframes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id TEXT NOT NULL,
		keyframe_n INTEGER NOT NULL,
		image_filename TEXT NOT NULL,
		image_path TEXT,
		pts_time REAL NOT NULL,
		fps REAL,
		frame_idx INTEGER,
		video_title TEXT,
		UNIQUE(video_id, keyframe_n)
	);

	CREATE INDEX IF NOT EXISTS idx_keyframes_video ON keyframes(video_id, keyframe_n);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveFrames stores frames, returning the count of new rows inserted.
// Duplicates (by video_id + keyframe_n) are silently ignored via
// INSERT OR IGNORE. Thread-safe: acquires write lock.
func (s *Store) SaveFrames(frames []model.Frame) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO keyframes
		(video_id, keyframe_n, image_filename, image_path, pts_time, fps, frame_idx, video_title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, f := range frames {
		res, err := stmt.Exec(f.VideoID, f.KeyframeN, f.Filename, f.Path, f.PtsTime, f.FPS, f.FrameIdx, f.VideoTitle)
		if err != nil {
			return inserted, fmt.Errorf("insert frame %s/%d: %w", f.VideoID, f.KeyframeN, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}

// VideoFrames returns all frames of a video in keyframe order. Satisfies
// the same frame-source contract as the HTTP retrieval client, so window
// expansion can run against the local corpus.
// Thread-safe: acquires read lock.
func (s *Store) VideoFrames(ctx context.Context, videoID string) ([]model.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, keyframe_n, image_filename,
		       COALESCE(image_path, ''), pts_time,
		       COALESCE(fps, 0), COALESCE(frame_idx, 0), COALESCE(video_title, '')
		FROM keyframes
		WHERE video_id = ?
		ORDER BY keyframe_n`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	return scanFrames(rows)
}

// FramesInWindow returns a video's frames with keyframe_n in [lo, hi],
// in keyframe order. Thread-safe: acquires read lock.
func (s *Store) FramesInWindow(ctx context.Context, videoID string, lo, hi int) ([]model.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, keyframe_n, image_filename,
		       COALESCE(image_path, ''), pts_time,
		       COALESCE(fps, 0), COALESCE(frame_idx, 0), COALESCE(video_title, '')
		FROM keyframes
		WHERE video_id = ? AND keyframe_n BETWEEN ? AND ?
		ORDER BY keyframe_n`, videoID, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}
	defer rows.Close()

	return scanFrames(rows)
}

// Videos returns the distinct video ids in the corpus, sorted.
// Thread-safe: acquires read lock.
func (s *Store) Videos(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT video_id FROM keyframes ORDER BY video_id`)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan video id: %w", err)
		}
		videos = append(videos, id)
	}
	return videos, rows.Err()
}

// Stats returns corpus totals and per-video frame counts.
// Thread-safe: acquires read lock.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, COALESCE(MAX(video_title), ''), COUNT(*),
		       MIN(keyframe_n), MAX(keyframe_n)
		FROM keyframes
		GROUP BY video_id
		ORDER BY video_id`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	st := &Stats{}
	for rows.Next() {
		var v VideoStats
		if err := rows.Scan(&v.VideoID, &v.Title, &v.FrameCount, &v.MinFrame, &v.MaxFrame); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		st.Videos = append(st.Videos, v)
		st.TotalFrames += v.FrameCount
		st.TotalVideos++
	}
	return st, rows.Err()
}

func scanFrames(rows *sql.Rows) ([]model.Frame, error) {
	var frames []model.Frame
	for rows.Next() {
		var f model.Frame
		if err := rows.Scan(&f.ID, &f.VideoID, &f.KeyframeN, &f.Filename,
			&f.Path, &f.PtsTime, &f.FPS, &f.FrameIdx, &f.VideoTitle); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}
