// /home/krylon/go/src/github.com/blicero/skylight/config/watch.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 22:11:47 krylon>

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/logdomain"
	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long we wait after the last change to the file before
// reading it, editors tend to write files in several steps.
const settleDelay = 250 * time.Millisecond

// Watch observes the configuration file at path and calls handler with the
// freshly loaded Config whenever it changes. A file that fails to load is
// logged and otherwise ignored. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, handler func(*Config)) error {
	var (
		err     error
		w       *fsnotify.Watcher
		dir     = filepath.Dir(path)
		timerMu sync.Mutex
		timer   *time.Timer
	)

	var log, _ = common.GetLogger(logdomain.Config)

	if w, err = fsnotify.NewWatcher(); err != nil {
		return err
	}

	defer w.Close() // nolint: errcheck

	// We watch the directory rather than the file, so we notice the file
	// being replaced by a rename.
	if err = w.Add(dir); err != nil {
		return err
	}

	var reload = func() {
		var cfg, lerr = Load(path)
		if lerr != nil {
			if log != nil {
				log.Printf("[ERROR] Cannot reload configuration from %s: %s\n",
					path,
					lerr.Error())
			}
			return
		} else if log != nil {
			log.Printf("[INFO] Configuration %s was reloaded\n", path)
		}

		handler(cfg)
	}

	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			} else if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			} else if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(settleDelay, reload)
			timerMu.Unlock()
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			} else if log != nil {
				log.Printf("[ERROR] Error watching %s: %s\n",
					dir,
					werr.Error())
			}
		}
	}
} // func Watch(ctx context.Context, path string, handler func(*Config)) error
