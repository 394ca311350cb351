// /home/krylon/go/src/github.com/blicero/skylight/objects/device.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 23:15:42 krylon>

package objects

//go:generate ffjson device.go

// DeviceStatus describes the state of a smart device. Fields that the
// device does not support are omitted. If the device could not be
// reached, only ID, IP and Error are set.
type DeviceStatus struct {
	ID         string  `json:"id"`
	IP         string  `json:"ip"`
	Name       string  `json:"name,omitempty"`
	Model      string  `json:"model,omitempty"`
	IsOn       bool    `json:"is_on"`
	Brightness *int    `json:"brightness,omitempty"`
	ColorTemp  *int    `json:"color_temp,omitempty"`
	HSV        *[3]int `json:"hsv,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// DeviceCommand is the body of a device control request.
type DeviceCommand struct {
	Value *int `json:"value,omitempty"`
}

// Recipe is the recipe of the day.
type Recipe struct {
	Title    string `json:"title"`
	Image    string `json:"image"`
	URL      string `json:"url"`
	Time     string `json:"time"`
	Servings string `json:"servings"`
	Author   string `json:"author"`
	Updated  int64  `json:"updated"`
}

// CalendarEvent is a single event from one of the configured calendars.
// Start and End use the usual timestamp format, all-day events only carry
// the date.
type CalendarEvent struct {
	Calendar    string `json:"calendar"`
	UID         string `json:"uid"`
	Summary     string `json:"summary"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"all_day"`
}
