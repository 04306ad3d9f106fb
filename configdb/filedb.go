// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package configdb

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gomlx/autotile/tilespace"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FilePermMode is the file creation permission (before umask) used for the
// database file.
var FilePermMode = os.FileMode(0660)

// fileFormatVersion is bumped on incompatible changes to the on-disk layout.
const fileFormatVersion = 1

// fileDocument is the on-disk layout: a versioned, canonically sorted list of
// entries.
type fileDocument struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// FileDatabase is a Database backed by a single JSON file.
//
// The whole database is kept in memory; every SetConfig rewrites the file
// atomically (temporary file + rename), with entries sorted by (target,
// bucket key) so the output is canonical. This suits its intended scale: tens
// to a few thousand configurations per target.
type FileDatabase struct {
	path  string
	runID string

	mu      sync.RWMutex
	targets map[tilespace.Target]map[string]Entry
}

var _ Database = &FileDatabase{}

// OpenFile opens (or creates) the file database at path. A missing file is an
// empty database; it is materialized on the first SetConfig.
func OpenFile(path string) (*FileDatabase, error) {
	db := &FileDatabase{
		path:    path,
		runID:   uuid.NewString(),
		targets: make(map[tilespace.Target]map[string]Entry),
	}
	if err := db.load(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *FileDatabase) load() error {
	contents, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(ErrDatabaseIO, "failed to read tile config database %q: %v", db.path, err)
	}
	var doc fileDocument
	if err = json.Unmarshal(contents, &doc); err != nil {
		return errors.Wrapf(ErrDatabaseIO, "failed to decode tile config database %q: %v", db.path, err)
	}
	if doc.Version != fileFormatVersion {
		return errors.Wrapf(ErrDatabaseIO, "tile config database %q has version %d, this build reads version %d",
			db.path, doc.Version, fileFormatVersion)
	}
	for _, entry := range doc.Entries {
		perTarget, found := db.targets[entry.Target]
		if !found {
			perTarget = make(map[string]Entry)
			db.targets[entry.Target] = perTarget
		}
		perTarget[entry.BucketKey] = entry
	}
	return nil
}

// save writes the whole database atomically. Must be called with db.mu held
// at least for reading.
func (db *FileDatabase) save() error {
	doc := fileDocument{Version: fileFormatVersion}
	for _, perTarget := range db.targets {
		for _, entry := range perTarget {
			doc.Entries = append(doc.Entries, entry)
		}
	}
	sort.Slice(doc.Entries, func(i, j int) bool {
		if doc.Entries[i].Target != doc.Entries[j].Target {
			return doc.Entries[i].Target < doc.Entries[j].Target
		}
		return doc.Entries[i].BucketKey < doc.Entries[j].BucketKey
	})

	contents, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(ErrDatabaseIO, "failed to encode tile config database: %v", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(db.path), filepath.Base(db.path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(ErrDatabaseIO, "failed to create temporary file for %q: %v", db.path, err)
	}
	tmpPath := tmpFile.Name()
	if _, err = tmpFile.Write(contents); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrapf(ErrDatabaseIO, "failed to write %q: %v", tmpPath, err)
	}
	if err = tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(ErrDatabaseIO, "failed to close %q: %v", tmpPath, err)
	}
	if err = os.Chmod(tmpPath, FilePermMode); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(ErrDatabaseIO, "failed to chmod %q: %v", tmpPath, err)
	}
	if err = os.Rename(tmpPath, db.path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(ErrDatabaseIO, "failed to replace %q: %v", db.path, err)
	}
	return nil
}

// GetConfigs implements Database.
func (db *FileDatabase) GetConfigs(target tilespace.Target) (TileConfigMap, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	configs := make(TileConfigMap, len(db.targets[target]))
	for key, entry := range db.targets[target] {
		configs[key] = entry.Config
	}
	return configs, nil
}

// GetConfig implements Database.
func (db *FileDatabase) GetConfig(target tilespace.Target, bucketKey string) (tilespace.TileConfig, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	entry, found := db.targets[target][bucketKey]
	return entry.Config, found, nil
}

// SetConfig implements Database.
func (db *FileDatabase) SetConfig(target tilespace.Target, bucketKey string, config tilespace.TileConfig) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	perTarget, found := db.targets[target]
	if !found {
		perTarget = make(map[string]Entry)
		db.targets[target] = perTarget
	}
	perTarget[bucketKey] = Entry{
		Target:      target,
		BucketKey:   bucketKey,
		Config:      config,
		RunID:       db.runID,
		CreatedUnix: time.Now().Unix(),
	}
	return db.save()
}

// Close implements Database. The file is already up-to-date, so Close only
// invalidates the in-memory state.
func (db *FileDatabase) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.targets = nil
	return nil
}
