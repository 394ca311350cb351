// /home/krylon/go/src/github.com/blicero/skylight/objects/recur.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 18:57:13 krylon>

//go:generate ffjson recur.go

package objects

import (
	"errors"
	"fmt"
	"time"

	"github.com/blicero/skylight/objects/repeat"
)

// DefaultHour is the hour of day a rule fires at if none is given.
const DefaultHour = 8

// ErrInvalidRule indicates a RuleSpec that cannot be evaluated.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// RuleSpec describes when a RecurringRule fires. Exactly one of Weekday
// and DayOfMonth is set.
//
// Weekday counts from Monday (0) to Sunday (6).
// Go's time package has a type Weekday, too, but it insists on Sunday
// being the first day of the week, so we convert.
type RuleSpec struct {
	Weekday         *int    `json:"weekday,omitempty"`
	DayOfMonth      *int    `json:"day_of_month,omitempty"`
	Hour            *int    `json:"hour,omitempty"`
	ShowBeforeHours float64 `json:"show_before_hours"`
}

// RecurringRule is a reminder that comes back every week or every month.
type RecurringRule struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
	Icon     string   `json:"icon"`
	Rule     RuleSpec `json:"rule"`
}

// Repeat returns the kind of recurrence the RuleSpec describes.
// If both fields are set, the weekday wins.
func (s *RuleSpec) Repeat() repeat.Repeat {
	switch {
	case s.Weekday != nil:
		return repeat.Weekly
	case s.DayOfMonth != nil:
		return repeat.Monthly
	default:
		return repeat.None
	}
} // func (s *RuleSpec) Repeat() repeat.Repeat

// TargetHour returns the hour of day the rule fires at.
func (s *RuleSpec) TargetHour() int {
	if s.Hour == nil {
		return DefaultHour
	}

	return *s.Hour
} // func (s *RuleSpec) TargetHour() int

// Lead returns how long before the target time the reminder becomes visible.
func (s *RuleSpec) Lead() time.Duration {
	return time.Duration(s.ShowBeforeHours * float64(time.Hour))
} // func (s *RuleSpec) Lead() time.Duration

// Validate checks that the RuleSpec is well-formed.
func (s *RuleSpec) Validate() error {
	switch {
	case s.Weekday != nil && s.DayOfMonth != nil:
		return fmt.Errorf("%w: weekday and day_of_month are mutually exclusive", ErrInvalidRule)
	case s.Weekday == nil && s.DayOfMonth == nil:
		return fmt.Errorf("%w: either weekday or day_of_month is required", ErrInvalidRule)
	case s.Weekday != nil && (*s.Weekday < 0 || *s.Weekday > 6):
		return fmt.Errorf("%w: weekday %d is not within 0..6", ErrInvalidRule, *s.Weekday)
	case s.DayOfMonth != nil && (*s.DayOfMonth < 1 || *s.DayOfMonth > 31):
		return fmt.Errorf("%w: day_of_month %d is not within 1..31", ErrInvalidRule, *s.DayOfMonth)
	case s.Hour != nil && (*s.Hour < 0 || *s.Hour > 23):
		return fmt.Errorf("%w: hour %d is not within 0..23", ErrInvalidRule, *s.Hour)
	case s.ShowBeforeHours < 0:
		return fmt.Errorf("%w: show_before_hours must not be negative", ErrInvalidRule)
	}

	return nil
} // func (s *RuleSpec) Validate() error

// Next returns the next occurrence of the rule relative to now. An occurrence
// at the current hour of today counts as passed. The second return value is
// false if the RuleSpec describes neither a weekly nor a monthly rule.
func (s *RuleSpec) Next(now time.Time) (time.Time, bool) {
	switch s.Repeat() {
	case repeat.Weekly:
		return s.nextWeekly(now), true
	case repeat.Monthly:
		return s.nextMonthly(now), true
	default:
		return time.Time{}, false
	}
} // func (s *RuleSpec) Next(now time.Time) (time.Time, bool)

func (s *RuleSpec) nextWeekly(now time.Time) time.Time {
	var (
		hour    = s.TargetHour()
		today   = isoWeekday(now.Weekday())
		daysTil = ((*s.Weekday-today)%7 + 7) % 7
	)

	if daysTil == 0 && now.Hour() >= hour {
		daysTil = 7
	}

	return time.Date(now.Year(), now.Month(), now.Day()+daysTil, hour, 0, 0, 0, now.Location())
} // func (s *RuleSpec) nextWeekly(now time.Time) time.Time

// A day of month beyond the end of a month is clamped to the last day of
// that month, e.g. day 31 fires on the 30th of November.
func (s *RuleSpec) nextMonthly(now time.Time) time.Time {
	var (
		hour          = s.TargetHour()
		year, month   = now.Year(), now.Month()
		day           = clampDay(year, month, *s.DayOfMonth)
		nowDay, nowHr = now.Day(), now.Hour()
	)

	if nowDay > day || (nowDay == day && nowHr >= hour) {
		if month == time.December {
			year++
			month = time.January
		} else {
			month++
		}

		day = clampDay(year, month, *s.DayOfMonth)
	}

	return time.Date(year, month, day, hour, 0, 0, 0, now.Location())
} // func (s *RuleSpec) nextMonthly(now time.Time) time.Time

// Evaluate decides if the rule is currently inside the display window
// of its next occurrence, i.e. now is in [target - lead, target).
// If so, it returns the TriggeredReminder to display.
func (r *RecurringRule) Evaluate(now time.Time) (*TriggeredReminder, bool) {
	var target, ok = r.Rule.Next(now)

	if !ok {
		return nil, false
	}

	var showFrom = target.Add(-r.Rule.Lead())

	if now.Before(showFrom) || !now.Before(target) {
		return nil, false
	}

	var t = &TriggeredReminder{
		ID:         r.ID,
		Title:      r.Title,
		Message:    r.Message,
		Priority:   r.Priority,
		Icon:       r.Icon,
		Recurring:  true,
		TargetTime: FormatStamp(target),
		Target:     target,
	}

	// Hand-edited documents may lack the display fields.
	if t.Title == "" {
		t.Title = DefaultReminderTitle
	}
	if t.Priority == "" {
		t.Priority = DefaultPriority
	}
	if t.Icon == "" {
		t.Icon = DefaultIcon
	}

	return t, true
} // func (r *RecurringRule) Evaluate(now time.Time) (*TriggeredReminder, bool)

var wDayStr = []string{
	"Mon",
	"Tue",
	"Wed",
	"Thu",
	"Fri",
	"Sat",
	"Sun",
}

func (s *RuleSpec) String() string {
	if s == nil {
		return "(None)"
	}

	switch s.Repeat() {
	case repeat.Weekly:
		var wday = "?"
		if *s.Weekday >= 0 && *s.Weekday < len(wDayStr) {
			wday = wDayStr[*s.Weekday]
		}

		return fmt.Sprintf("%s(%s %02d:00, -%gh)",
			repeat.Weekly,
			wday,
			s.TargetHour(),
			s.ShowBeforeHours)
	case repeat.Monthly:
		return fmt.Sprintf("%s(%d. %02d:00, -%gh)",
			repeat.Monthly,
			*s.DayOfMonth,
			s.TargetHour(),
			s.ShowBeforeHours)
	default:
		return repeat.None.String()
	}
} // func (s *RuleSpec) String() string

func isoWeekday(d time.Weekday) int {
	return (int(d) + 6) % 7
} // func isoWeekday(d time.Weekday) int

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
} // func daysIn(year int, month time.Month) int

func clampDay(year int, month time.Month, day int) int {
	if last := daysIn(year, month); day > last {
		return last
	}

	return day
} // func clampDay(year int, month time.Month, day int) int
