// /home/krylon/go/src/github.com/blicero/skylight/backend/99_backend_shutdown_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 18:03:10 krylon>

package backend

import "testing"

func TestBanish(t *testing.T) {
	if back == nil {
		t.SkipNow()
	} else if !back.IsAlive() {
		t.SkipNow()
	}

	var err error

	if err = back.Banish(); err != nil {
		t.Errorf("Failed to banish Daemon: %s", err.Error())
	} else if back.IsAlive() {
		t.Error("Daemon is still alive after Banish")
	}
} // func TestBanish(t *testing.T)
