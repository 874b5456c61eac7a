// Package store persists the current artwork, publish history and the rotation schedule.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ulmus/onweekdays/pkg/artsource"
	_ "modernc.org/sqlite"
)

// Database is a sqlite backed state store.
type Database struct {
	db *sql.DB
}

// HistoryEntry is one published artwork.
type HistoryEntry struct {
	Artwork     artsource.Artwork `json:"artwork"`
	PublishedAt time.Time         `json:"published_at"`
}

// NewDatabase opens or creates the database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{db: db}
	if err := database.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return database, nil
}

func (d *Database) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS current_artwork (
		singleton    INTEGER NOT NULL DEFAULT 1 CHECK (singleton = 1),
		title        TEXT NOT NULL,
		byline       TEXT NOT NULL,
		image_uri    TEXT NOT NULL,
		token        TEXT NOT NULL,
		view_uri     TEXT NOT NULL,
		published_at INTEGER NOT NULL,
		PRIMARY KEY (singleton)
	);
	CREATE TABLE IF NOT EXISTS history (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		title        TEXT NOT NULL,
		byline       TEXT NOT NULL,
		image_uri    TEXT NOT NULL,
		token        TEXT NOT NULL,
		view_uri     TEXT NOT NULL,
		published_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS schedule (
		singleton   INTEGER NOT NULL DEFAULT 1 CHECK (singleton = 1),
		next_update INTEGER NOT NULL,
		PRIMARY KEY (singleton)
	);
	`
	_, err := d.db.Exec(query)
	return err
}

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

// CurrentArtwork returns the artwork on display, nil when nothing was published yet.
func (d *Database) CurrentArtwork() (*artsource.Artwork, error) {
	query := `SELECT title, byline, image_uri, token, view_uri FROM current_artwork WHERE singleton = 1`
	var a artsource.Artwork
	err := d.db.QueryRow(query).Scan(&a.Title, &a.Byline, &a.ImageURI, &a.Token, &a.ViewURI)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query current artwork: %w", err)
	}
	return &a, nil
}

// SaveArtwork replaces the current artwork and appends it to the history.
func (d *Database) SaveArtwork(art artsource.Artwork, publishedAt time.Time) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ts := publishedAt.UnixMilli()
	upsert := `
		INSERT INTO current_artwork (singleton, title, byline, image_uri, token, view_uri, published_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(singleton) DO UPDATE SET
			title = excluded.title,
			byline = excluded.byline,
			image_uri = excluded.image_uri,
			token = excluded.token,
			view_uri = excluded.view_uri,
			published_at = excluded.published_at
	`
	if _, err := tx.Exec(upsert, art.Title, art.Byline, art.ImageURI, art.Token, art.ViewURI, ts); err != nil {
		return fmt.Errorf("failed to save current artwork: %w", err)
	}

	insert := `INSERT INTO history (title, byline, image_uri, token, view_uri, published_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.Exec(insert, art.Title, art.Byline, art.ImageURI, art.Token, art.ViewURI, ts); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	return tx.Commit()
}

// History returns up to limit published artworks, newest first.
func (d *Database) History(limit int) ([]HistoryEntry, error) {
	query := `
		SELECT title, byline, image_uri, token, view_uri, published_at
		FROM history
		ORDER BY published_at DESC, id DESC
		LIMIT ?
	`
	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var ts int64
		if err := rows.Scan(&e.Artwork.Title, &e.Artwork.Byline, &e.Artwork.ImageURI, &e.Artwork.Token, &e.Artwork.ViewURI, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.PublishedAt = time.UnixMilli(ts)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

// NextUpdate returns the persisted next update time. ok is false when none was stored.
func (d *Database) NextUpdate() (time.Time, bool, error) {
	var ts int64
	err := d.db.QueryRow(`SELECT next_update FROM schedule WHERE singleton = 1`).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query schedule: %w", err)
	}
	return time.UnixMilli(ts), true, nil
}

// SetNextUpdate persists the next update time.
func (d *Database) SetNextUpdate(t time.Time) error {
	query := `
		INSERT INTO schedule (singleton, next_update) VALUES (1, ?)
		ON CONFLICT(singleton) DO UPDATE SET next_update = excluded.next_update
	`
	if _, err := d.db.Exec(query, t.UnixMilli()); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}
