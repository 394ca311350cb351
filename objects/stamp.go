// /home/krylon/go/src/github.com/blicero/skylight/objects/stamp.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-14 20:11:42 krylon>

package objects

import (
	"fmt"
	"strings"
	"time"

	"github.com/blicero/skylight/common"
)

var stampLayouts = []string{
	common.TimestampFormat,
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	common.TimestampFormatDate,
}

// FormatStamp renders a time stamp as local wall clock time without an
// offset. Microseconds are only included if they are non-zero.
func FormatStamp(t time.Time) string {
	if t.Nanosecond()/1000 != 0 {
		return t.Format(common.TimestampFormatSubSecond)
	}

	return t.Format(common.TimestampFormat)
} // func FormatStamp(t time.Time) string

// ParseStamp parses a time stamp in any of the formats we accept.
// Stamps without an offset are interpreted in loc, stamps carrying an offset
// are converted to loc.
func ParseStamp(s string, loc *time.Location) (time.Time, error) {
	var str = strings.TrimSpace(s)

	if loc == nil {
		loc = time.Local
	}

	for _, layout := range stampLayouts {
		var (
			err error
			t   time.Time
		)

		if t, err = time.ParseInLocation(layout, str, loc); err == nil {
			return t.In(loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse time stamp %q", s)
} // func ParseStamp(s string, loc *time.Location) (time.Time, error)
