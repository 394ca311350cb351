// /home/krylon/go/src/github.com/blicero/skylight/objects/02_notification_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 15. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-17 20:14:09 krylon>

package objects

import (
	"testing"
	"time"
)

func TestPriorityRank(t *testing.T) {
	var cases = map[Priority]int{
		PriorityUrgent: 0,
		PriorityNormal: 1,
		PriorityInfo:   2,
		"":             1,
		"whatever":     1,
	}

	for p, rank := range cases {
		if r := p.Rank(); r != rank {
			t.Errorf("Priority %q: expected rank %d, got %d", p, rank, r)
		}
	}
} // func TestPriorityRank(t *testing.T)

func TestStamp(t *testing.T) {
	var (
		err   error
		ref   = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
		fine  = ref.Add(time.Microsecond * 1500)
		t1    time.Time
		input = []string{
			"2026-10-19T08:00:00",
			"2026-10-19T08:00:00.000000",
			"2026-10-19T10:00:00+02:00",
			"2026-10-19T08:00",
		}
	)

	if s := FormatStamp(ref); s != "2026-10-19T08:00:00" {
		t.Errorf("Unexpected format of %s: %s", ref, s)
	} else if s = FormatStamp(fine); s != "2026-10-19T08:00:00.001500" {
		t.Errorf("Unexpected format of %s: %s", fine, s)
	}

	for _, s := range input {
		if t1, err = ParseStamp(s, time.UTC); err != nil {
			t.Errorf("Cannot parse %q: %s", s, err.Error())
		} else if !t1.Equal(ref) {
			t.Errorf("Parsing %q yielded %s, expected %s", s, t1, ref)
		}
	}

	if _, err = ParseStamp("next tuesday", time.UTC); err == nil {
		t.Error("Parsing garbage should fail")
	}
} // func TestStamp(t *testing.T)

func TestExpired(t *testing.T) {
	type testCase struct {
		expires string
		expired bool
		fails   bool
	}

	var (
		now   = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
		cases = []testCase{
			{"", false, false},
			{"2026-10-19T09:00:00", false, false},
			{"2026-10-19T08:00:00", false, false},
			{"2026-10-19T07:59:59", true, false},
			{"yesterday", true, true},
		}
	)

	for _, c := range cases {
		var (
			n        = Notification{ID: "n", Expires: c.expires}
			exp, err = n.Expired(now)
		)

		if exp != c.expired {
			t.Errorf("Expires %q: expected expired = %t, got %t",
				c.expires,
				c.expired,
				exp)
		} else if (err != nil) != c.fails {
			t.Errorf("Expires %q: unexpected error status: %v",
				c.expires,
				err)
		}
	}
} // func TestExpired(t *testing.T)
