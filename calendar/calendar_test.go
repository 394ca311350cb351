// /home/krylon/go/src/github.com/blicero/skylight/calendar/calendar_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 18. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 14:31:07 krylon>

package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	var tmpdir, err = os.MkdirTemp("", "skylight-calendar-")

	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create temporary directory: %s\n", err.Error())
		os.Exit(1)
	} else if err = common.SetBaseDir(tmpdir); err != nil {
		os.Exit(1)
	}

	var rc = m.Run()
	os.RemoveAll(tmpdir) // nolint: errcheck
	os.Exit(rc)
} // func TestMain(m *testing.M)

var now = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func ical(events ...string) string {
	var lines = []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//skylight//test//EN",
	}

	lines = append(lines, events...)
	lines = append(lines, "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n")
}

func vevent(uid, summary, start, end string) string {
	var lines = []string{
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:20261001T000000Z",
		"SUMMARY:" + summary,
		start,
	}

	if end != "" {
		lines = append(lines, end)
	}

	lines = append(lines, "END:VEVENT")
	return strings.Join(lines, "\r\n")
}

var family = ical(
	vevent("past", "Yesterday", "DTSTART:20261018T090000Z", "DTEND:20261018T100000Z"),
	vevent("dentist", "Dentist", "DTSTART:20261021T080000Z", "DTEND:20261021T090000Z"),
	vevent("running", "Still going", "DTSTART:20261019T090000Z", "DTEND:20261019T110000Z"),
	vevent("far", "Far away", "DTSTART:20261215T080000Z", "DTEND:20261215T090000Z"),
	vevent("holiday", "Holiday", "DTSTART;VALUE=DATE:20261020", "DTEND;VALUE=DATE:20261021"),
)

func TestParseFeed(t *testing.T) {
	var evts, err = parseFeed(strings.NewReader(family), "family", now, 14*24*time.Hour)
	require.NoError(t, err)

	var uids = make([]string, len(evts))
	for i, e := range evts {
		uids[i] = e.UID
	}

	assert.Equal(t, []string{"running", "holiday", "dentist"}, uids)

	var h = evts[1]
	assert.True(t, h.AllDay)
	assert.Equal(t, "2026-10-20", h.Start)
	assert.Equal(t, "2026-10-21", h.End)
	assert.Equal(t, "family", h.Calendar)

	var d = evts[2]
	assert.False(t, d.AllDay)
	assert.Equal(t, "Dentist", d.Summary)
	assert.Equal(t, "2026-10-21T08:00:00", d.Start)
	assert.Equal(t, "2026-10-21T09:00:00", d.End)
}

func TestParseFeedGarbage(t *testing.T) {
	var _, err = parseFeed(strings.NewReader("this is not a calendar"), "junk", now, time.Hour)
	assert.Error(t, err)
}

func TestService(t *testing.T) {
	var (
		broken atomic.Bool
		mux    = http.NewServeMux()
	)

	mux.HandleFunc("/family.ics", func(w http.ResponseWriter, r *http.Request) {
		if broken.Load() {
			http.Error(w, "oops", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, family)
	})
	mux.HandleFunc("/work.ics", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ical(
			vevent("standup", "Standup", "DTSTART:20261019T120000Z", "DTEND:20261019T121500Z"),
		))
	})

	var srv = httptest.NewServer(mux)
	defer srv.Close()

	var s, err = New([]config.Feed{
		{Name: "family", URL: srv.URL + "/family.ics"},
		{Name: "work", URL: srv.URL + "/work.ics"},
	}, 14)
	require.NoError(t, err)

	require.NoError(t, s.Refresh(context.Background(), now))
	assert.Equal(t, now, s.Updated())

	var evts = s.Events(now)
	require.Len(t, evts, 4)
	assert.Equal(t, "running", evts[0].UID)
	assert.Equal(t, "standup", evts[1].UID)

	// A broken feed keeps its previous events.
	broken.Store(true)
	assert.Error(t, s.Refresh(context.Background(), now))
	assert.Len(t, s.Events(now), 4)

	// Once the event has ended, it disappears without a refresh.
	assert.Len(t, s.Events(now.Add(90*time.Minute)), 3)

	s.SetFeeds([]config.Feed{{Name: "work", URL: srv.URL + "/work.ics"}})
	assert.Len(t, s.Events(now), 1)
}
