// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package configdb

import (
	"database/sql"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gomlx/autotile/tilespace"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // Registers the "sqlite3" driver.
	"github.com/pkg/errors"
)

// sqliteSchemaVersion is stored in PRAGMA user_version and bumped on schema
// changes.
const sqliteSchemaVersion = 1

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tile_configs (
	target       TEXT NOT NULL,
	bucket_key   TEXT NOT NULL,
	tiles        TEXT NOT NULL,
	score        REAL NOT NULL,
	run_id       TEXT NOT NULL DEFAULT '',
	created_unix INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (target, bucket_key)
);
`

// SQLiteDatabase is a Database backed by a SQLite file.
//
// SQLite serializes writers and, in WAL mode, lets readers proceed
// concurrently with a writer, so unlike FileDatabase it can be shared by
// several tuning processes pointing at the same file.
type SQLiteDatabase struct {
	conn  *sql.DB
	runID string
}

var _ Database = &SQLiteDatabase{}

// OpenSQLite opens (or creates) the SQLite database at path and initializes
// its schema.
func OpenSQLite(path string) (*SQLiteDatabase, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(ErrDatabaseIO, "failed to open sqlite database %q: %v", path, err)
	}
	db := &SQLiteDatabase{conn: conn, runID: uuid.NewString()}
	if err = db.init(path); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *SQLiteDatabase) init(path string) error {
	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return errors.Wrapf(ErrDatabaseIO, "failed to read schema version of %q: %v", path, err)
	}
	if version > sqliteSchemaVersion {
		return errors.Wrapf(ErrDatabaseIO, "sqlite database %q has schema version %d, this build supports up to %d",
			path, version, sqliteSchemaVersion)
	}
	if _, err := db.conn.Exec(sqliteSchema); err != nil {
		return errors.Wrapf(ErrDatabaseIO, "failed to initialize schema of %q: %v", path, err)
	}
	if version < sqliteSchemaVersion {
		if _, err := db.conn.Exec("PRAGMA user_version = 1"); err != nil {
			return errors.Wrapf(ErrDatabaseIO, "failed to set schema version of %q: %v", path, err)
		}
	}
	return nil
}

// GetConfigs implements Database.
func (db *SQLiteDatabase) GetConfigs(target tilespace.Target) (TileConfigMap, error) {
	rows, err := db.conn.Query(
		"SELECT bucket_key, tiles, score FROM tile_configs WHERE target = ?", string(target))
	if err != nil {
		return nil, errors.Wrapf(ErrDatabaseIO, "failed to query configs for target %q: %v", target, err)
	}
	defer rows.Close()

	configs := make(TileConfigMap)
	for rows.Next() {
		var bucketKey, tilesJSON string
		var score float64
		if err = rows.Scan(&bucketKey, &tilesJSON, &score); err != nil {
			return nil, errors.Wrapf(ErrDatabaseIO, "failed to scan config row for target %q: %v", target, err)
		}
		var tiles []int
		if err = json.Unmarshal([]byte(tilesJSON), &tiles); err != nil {
			return nil, errors.Wrapf(ErrDatabaseIO, "corrupt tiles column for (%q, %q): %v", target, bucketKey, err)
		}
		configs[bucketKey] = tilespace.TileConfig{Tiles: tiles, Score: score}
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(ErrDatabaseIO, "failed to iterate configs for target %q: %v", target, err)
	}
	return configs, nil
}

// GetConfig implements Database.
func (db *SQLiteDatabase) GetConfig(target tilespace.Target, bucketKey string) (tilespace.TileConfig, bool, error) {
	var tilesJSON string
	var score float64
	err := db.conn.QueryRow(
		"SELECT tiles, score FROM tile_configs WHERE target = ? AND bucket_key = ?",
		string(target), bucketKey).Scan(&tilesJSON, &score)
	if errors.Is(err, sql.ErrNoRows) {
		return tilespace.TileConfig{}, false, nil
	}
	if err != nil {
		return tilespace.TileConfig{}, false, errors.Wrapf(ErrDatabaseIO,
			"failed to query config for (%q, %q): %v", target, bucketKey, err)
	}
	var tiles []int
	if err = json.Unmarshal([]byte(tilesJSON), &tiles); err != nil {
		return tilespace.TileConfig{}, false, errors.Wrapf(ErrDatabaseIO,
			"corrupt tiles column for (%q, %q): %v", target, bucketKey, err)
	}
	return tilespace.TileConfig{Tiles: tiles, Score: score}, true, nil
}

// SetConfig implements Database.
func (db *SQLiteDatabase) SetConfig(target tilespace.Target, bucketKey string, config tilespace.TileConfig) error {
	tilesJSON, err := json.Marshal(config.Tiles)
	if err != nil {
		return errors.Wrapf(ErrDatabaseIO, "failed to encode tiles for (%q, %q): %v", target, bucketKey, err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO tile_configs (target, bucket_key, tiles, score, run_id, created_unix)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (target, bucket_key) DO UPDATE
		SET tiles = excluded.tiles, score = excluded.score,
		    run_id = excluded.run_id, created_unix = excluded.created_unix`,
		string(target), bucketKey, string(tilesJSON), config.Score, db.runID, time.Now().Unix())
	if err != nil {
		return errors.Wrapf(ErrDatabaseIO, "failed to store config for (%q, %q): %v", target, bucketKey, err)
	}
	return nil
}

// Close implements Database.
func (db *SQLiteDatabase) Close() error {
	if err := db.conn.Close(); err != nil {
		return errors.Wrapf(ErrDatabaseIO, "failed to close sqlite database: %v", err)
	}
	return nil
}
