// /home/krylon/go/src/github.com/blicero/skylight/objects/01_recur_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 14. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 18:31:51 krylon>

package objects

import (
	"errors"
	"testing"
	"time"

	"github.com/blicero/skylight/common"
)

// 2026-10-19 is a Monday.
func stamp(month time.Month, day, hour, min int) time.Time {
	return time.Date(2026, month, day, hour, min, 0, 0, time.UTC)
} // func stamp(month time.Month, day, hour, min int) time.Time

func weekly(wday, hour int, lead float64) RecurringRule {
	return RecurringRule{
		ID:       "w",
		Title:    "Trash",
		Message:  "Take out the trash",
		Priority: PriorityNormal,
		Icon:     DefaultIcon,
		Rule: RuleSpec{
			Weekday:         Int(wday),
			Hour:            Int(hour),
			ShowBeforeHours: lead,
		},
	}
} // func weekly(wday, hour int, lead float64) RecurringRule

func monthly(mday, hour int, lead float64) RecurringRule {
	return RecurringRule{
		ID:       "m",
		Title:    "Rent",
		Priority: PriorityUrgent,
		Icon:     DefaultIcon,
		Rule: RuleSpec{
			DayOfMonth:      Int(mday),
			Hour:            Int(hour),
			ShowBeforeHours: lead,
		},
	}
} // func monthly(mday, hour int, lead float64) RecurringRule

func TestNext(t *testing.T) {
	type testCase struct {
		title      string
		r          RecurringRule
		ref        time.Time
		expectNext time.Time
	}

	var cases = []testCase{
		{
			title:      "weekly later today",
			r:          weekly(0, 8, 0),
			ref:        stamp(10, 19, 7, 0),
			expectNext: stamp(10, 19, 8, 0),
		},
		{
			title:      "weekly passed today",
			r:          weekly(0, 8, 0),
			ref:        stamp(10, 19, 9, 0),
			expectNext: stamp(10, 26, 8, 0),
		},
		{
			title:      "weekly at the target hour",
			r:          weekly(0, 8, 0),
			ref:        stamp(10, 19, 8, 0),
			expectNext: stamp(10, 26, 8, 0),
		},
		{
			title:      "weekly sunday",
			r:          weekly(6, 20, 0),
			ref:        stamp(10, 21, 12, 0),
			expectNext: stamp(10, 25, 20, 0),
		},
		{
			title:      "weekly wraps around the week",
			r:          weekly(1, 8, 0),
			ref:        stamp(10, 25, 10, 0),
			expectNext: stamp(10, 27, 8, 0),
		},
		{
			title:      "weekly crosses the month",
			r:          weekly(4, 8, 0),
			ref:        stamp(10, 31, 10, 0),
			expectNext: stamp(11, 6, 8, 0),
		},
		{
			title:      "monthly this month",
			r:          monthly(25, 8, 0),
			ref:        stamp(10, 19, 9, 0),
			expectNext: stamp(10, 25, 8, 0),
		},
		{
			title:      "monthly passed",
			r:          monthly(15, 8, 0),
			ref:        stamp(10, 19, 9, 0),
			expectNext: stamp(11, 15, 8, 0),
		},
		{
			title:      "monthly passed today",
			r:          monthly(19, 8, 0),
			ref:        stamp(10, 19, 8, 30),
			expectNext: stamp(11, 19, 8, 0),
		},
		{
			title:      "monthly december rollover",
			r:          monthly(1, 8, 0),
			ref:        stamp(12, 15, 12, 0),
			expectNext: time.Date(2027, time.January, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			title:      "monthly clamped to 30 days",
			r:          monthly(31, 8, 0),
			ref:        stamp(11, 10, 12, 0),
			expectNext: stamp(11, 30, 8, 0),
		},
		{
			title:      "monthly clamped, last day passed",
			r:          monthly(31, 8, 0),
			ref:        stamp(11, 30, 9, 0),
			expectNext: stamp(12, 31, 8, 0),
		},
		{
			title:      "monthly clamped into february",
			r:          monthly(30, 8, 0),
			ref:        stamp(1, 31, 9, 0),
			expectNext: stamp(2, 28, 8, 0),
		},
	}

	for _, c := range cases {
		var next, ok = c.r.Rule.Next(c.ref)

		if !ok {
			t.Errorf("Test case %q: rule %s did not yield a next occurrence",
				c.title,
				&c.r.Rule)
		} else if !next.Equal(c.expectNext) {
			t.Errorf(`Unexpected next occurrence from Test case %s:
Expected:       %s
Got:            %s
`,
				c.title,
				c.expectNext.Format(common.TimestampFormat),
				next.Format(common.TimestampFormat))
		}
	}
} // func TestNext(t *testing.T)

func TestEvaluate(t *testing.T) {
	type testCase struct {
		title        string
		r            RecurringRule
		ref          time.Time
		expectActive bool
		expectTarget string
	}

	var cases = []testCase{
		{
			title:        "inside the lead window",
			r:            weekly(0, 8, 2),
			ref:          stamp(10, 19, 7, 0),
			expectActive: true,
			expectTarget: "2026-10-19T08:00:00",
		},
		{
			title:        "start of the window is inclusive",
			r:            weekly(0, 8, 2),
			ref:          stamp(10, 19, 6, 0),
			expectActive: true,
			expectTarget: "2026-10-19T08:00:00",
		},
		{
			title: "before the window",
			r:     weekly(0, 8, 2),
			ref:   stamp(10, 19, 5, 59),
		},
		{
			title: "already passed",
			r:     weekly(0, 8, 2),
			ref:   stamp(10, 19, 9, 0),
		},
		{
			title: "no lead time",
			r:     weekly(0, 8, 0),
			ref:   stamp(10, 19, 7, 59),
		},
		{
			title:        "lead window spans days",
			r:            weekly(2, 8, 48),
			ref:          stamp(10, 19, 9, 0),
			expectActive: true,
			expectTarget: "2026-10-21T08:00:00",
		},
		{
			title:        "monthly window across new year",
			r:            monthly(1, 8, 24),
			ref:          stamp(12, 31, 10, 0),
			expectActive: true,
			expectTarget: "2027-01-01T08:00:00",
		},
		{
			title:        "fractional lead",
			r:            monthly(20, 9, 0.5),
			ref:          stamp(10, 20, 8, 45),
			expectActive: true,
			expectTarget: "2026-10-20T09:00:00",
		},
		{
			title: "rule without a schedule",
			r:     RecurringRule{ID: "x"},
			ref:   stamp(10, 19, 8, 0),
		},
	}

	for _, c := range cases {
		var trig, ok = c.r.Evaluate(c.ref)

		if ok != c.expectActive {
			t.Errorf("Test case %q: expected active = %t, got %t",
				c.title,
				c.expectActive,
				ok)
			continue
		} else if !ok {
			if trig != nil {
				t.Errorf("Test case %q: inactive rule returned a reminder", c.title)
			}
			continue
		}

		if trig.TargetTime != c.expectTarget {
			t.Errorf("Test case %q: expected target %s, got %s",
				c.title,
				c.expectTarget,
				trig.TargetTime)
		} else if !trig.Recurring {
			t.Errorf("Test case %q: reminder is not flagged as recurring", c.title)
		} else if trig.ID != c.r.ID || trig.Title != c.r.Title || trig.Priority != c.r.Priority {
			t.Errorf("Test case %q: reminder does not carry the rule's fields: %#v",
				c.title,
				trig)
		}
	}
} // func TestEvaluate(t *testing.T)

// Same weekday, at or after the target hour, always selects next week.
func TestWeeklyPassedSelectsNextWeek(t *testing.T) {
	for wday := 0; wday < 7; wday++ {
		for hour := 0; hour < 24; hour++ {
			var (
				r   = weekly(wday, hour, 0)
				day = 19 + wday
			)

			for nowHr := hour; nowHr < 24; nowHr++ {
				var (
					ref  = stamp(10, day, nowHr, 30)
					next time.Time
				)

				next, _ = r.Rule.Next(ref)

				if exp := stamp(10, day+7, hour, 0); !next.Equal(exp) {
					t.Fatalf("Weekday %d, hour %d, now %s: expected %s, got %s",
						wday,
						hour,
						ref.Format(common.TimestampFormat),
						exp.Format(common.TimestampFormat),
						next.Format(common.TimestampFormat))
				}
			}
		}
	}
} // func TestWeeklyPassedSelectsNextWeek(t *testing.T)

func TestEvaluateIdempotent(t *testing.T) {
	var (
		r   = monthly(20, 8, 36)
		ref = stamp(10, 19, 12, 0)
	)

	var first, ok1 = r.Evaluate(ref)
	var second, ok2 = r.Evaluate(ref)

	if !ok1 || !ok2 {
		t.Fatalf("Rule should be active at %s", ref.Format(common.TimestampFormat))
	} else if *first != *second {
		t.Errorf("Evaluating twice gave different results:\n%#v\n%#v",
			first,
			second)
	}
} // func TestEvaluateIdempotent(t *testing.T)

func TestValidate(t *testing.T) {
	type testCase struct {
		title string
		spec  RuleSpec
		valid bool
	}

	var cases = []testCase{
		{"weekly", RuleSpec{Weekday: Int(6)}, true},
		{"monthly 31", RuleSpec{DayOfMonth: Int(31), Hour: Int(23)}, true},
		{"empty", RuleSpec{}, false},
		{"both", RuleSpec{Weekday: Int(1), DayOfMonth: Int(1)}, false},
		{"weekday 7", RuleSpec{Weekday: Int(7)}, false},
		{"weekday -1", RuleSpec{Weekday: Int(-1)}, false},
		{"day 0", RuleSpec{DayOfMonth: Int(0)}, false},
		{"day 32", RuleSpec{DayOfMonth: Int(32)}, false},
		{"hour 24", RuleSpec{Weekday: Int(0), Hour: Int(24)}, false},
		{"negative lead", RuleSpec{Weekday: Int(0), ShowBeforeHours: -1}, false},
	}

	for _, c := range cases {
		var err = c.spec.Validate()

		if c.valid && err != nil {
			t.Errorf("Test case %q: unexpected error: %s", c.title, err.Error())
		} else if !c.valid && !errors.Is(err, ErrInvalidRule) {
			t.Errorf("Test case %q: expected ErrInvalidRule, got %v", c.title, err)
		}
	}
} // func TestValidate(t *testing.T)

func TestEvaluateBareRule(t *testing.T) {
	var (
		r   = monthly(20, 8, 36)
		ref = stamp(10, 19, 12, 0)
	)

	r.Title, r.Priority, r.Icon = "", "", ""

	var trig, ok = r.Evaluate(ref)

	if !ok {
		t.Fatalf("Rule should be active at %s", ref.Format(common.TimestampFormat))
	} else if trig.Title != DefaultReminderTitle {
		t.Errorf("Unexpected title %q, expected %q", trig.Title, DefaultReminderTitle)
	} else if trig.Priority != DefaultPriority {
		t.Errorf("Unexpected priority %q, expected %q", trig.Priority, DefaultPriority)
	} else if trig.Icon != DefaultIcon {
		t.Errorf("Unexpected icon %q, expected %q", trig.Icon, DefaultIcon)
	}
} // func TestEvaluateBareRule(t *testing.T)
