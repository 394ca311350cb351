// /home/krylon/go/src/github.com/blicero/skylight/store/backend.go
// -*- mode: go; coding: utf-8; -*-
// Created on 16. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 14:33:51 krylon>

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blicero/skylight/database"
	"github.com/blicero/skylight/objects"
	"github.com/pquerna/ffjson/ffjson"
)

// Backend persists the Document.
type Backend interface {
	Load() (*objects.Document, error)
	Save(doc *objects.Document) error
	Close() error
}

// Names of the available backends, as used in the configuration.
const (
	BackendFile   = "file"
	BackendSqlite = "sqlite"
)

// OpenBackend opens the Backend of the given kind at path.
func OpenBackend(kind, path string) (Backend, error) {
	switch kind {
	case "", BackendFile:
		return NewFileBackend(path), nil
	case BackendSqlite:
		var db, err = database.Open(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
} // func OpenBackend(kind, path string) (Backend, error)

// FileBackend keeps the Document in a JSON file.
type FileBackend struct {
	path string
}

// NewFileBackend creates a FileBackend for the given path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
} // func NewFileBackend(path string) *FileBackend

// Load reads the Document from disk.
func (f *FileBackend) Load() (*objects.Document, error) {
	var (
		err error
		buf []byte
		doc = objects.NewDocument()
	)

	if buf, err = os.ReadFile(f.path); err != nil {
		return nil, err
	} else if err = ffjson.Unmarshal(buf, doc); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", f.path, err)
	}

	if doc.Notifications == nil {
		doc.Notifications = make([]objects.Notification, 0)
	}

	if doc.Recurring == nil {
		doc.Recurring = make([]objects.RecurringRule, 0)
	}

	return doc, nil
} // func (f *FileBackend) Load() (*objects.Document, error)

// Save writes the Document to a temporary file and moves it in place, so a
// crash never leaves a truncated file behind.
func (f *FileBackend) Save(doc *objects.Document) error {
	var (
		err error
		buf []byte
		fh  *os.File
	)

	// The file is meant to be edited by hand occasionally, so we indent it.
	if buf, err = json.MarshalIndent(doc, "", "  "); err != nil {
		return err
	} else if fh, err = os.CreateTemp(filepath.Dir(f.path), ".notifications-*.json"); err != nil {
		return err
	}

	var tmp = fh.Name()

	if _, err = fh.Write(buf); err != nil {
		fh.Close()     // nolint: errcheck
		os.Remove(tmp) // nolint: errcheck
		return err
	} else if err = fh.Close(); err != nil {
		os.Remove(tmp) // nolint: errcheck
		return err
	} else if err = os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp) // nolint: errcheck
		return err
	}

	return nil
} // func (f *FileBackend) Save(doc *objects.Document) error

// Close is a no-op, there is nothing to release.
func (f *FileBackend) Close() error {
	return nil
} // func (f *FileBackend) Close() error
