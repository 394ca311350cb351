// /home/krylon/go/src/github.com/blicero/skylight/common/common.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 21:04:37 krylon>

// Package common provides constants, variables and functions used
// throughout the application.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blicero/krylib"
	"github.com/blicero/skylight/logdomain"
	"github.com/hashicorp/logutils"
	"github.com/odeke-em/go-uuid"
)

//go:generate ./build_time_stamp.pl

// Debug indicates whether to emit additional log messages and perform
// additional sanity checks.
// Version is the version number to display.
// AppName is the name of the application.
// BuildStamp is the time the binary was built.
const (
	Debug       = true
	Version     = "0.4.1"
	AppName     = "Skylight"
	DefaultPort = 8889
	// TimestampFormat is the wire format for timestamps, local wall clock
	// without an offset.
	TimestampFormat          = "2006-01-02T15:04:05"
	TimestampFormatSubSecond = "2006-01-02T15:04:05.000000"
	TimestampFormatDate      = "2006-01-02"
	TimestampFormatTime      = "15:04:05"
	// IDLength is the number of characters of a generated ID.
	IDLength = 8
)

// BuildStamp is overwritten by the linker for release builds.
var BuildStamp = "(unknown)"

// LogLevels are the names of the log levels supported by the logger.
var LogLevels = []logutils.LogLevel{
	"TRACE",
	"DEBUG",
	"INFO",
	"WARN",
	"ERROR",
	"CRITICAL",
	"CANTHAPPEN",
	"SILENT",
}

var (
	// BaseDir is the folder where all application-specific files live.
	BaseDir = filepath.Join(
		os.Getenv("HOME"),
		fmt.Sprintf(".%s.d", strings.ToLower(AppName)))

	// LogPath is the log file.
	LogPath = filepath.Join(BaseDir, fmt.Sprintf("%s.log", strings.ToLower(AppName)))
	// ConfigPath is the default configuration file.
	ConfigPath = filepath.Join(BaseDir, "config.yaml")
	// DocPath is the JSON document holding notifications and recurring rules.
	DocPath = filepath.Join(BaseDir, "notifications.json")
	// DbPath is the SQLite database, if that backend is selected.
	DbPath = filepath.Join(BaseDir, fmt.Sprintf("%s.db", strings.ToLower(AppName)))
	// RecipeCachePath holds the last recipe we scraped.
	RecipeCachePath = filepath.Join(BaseDir, "recipe_cache.json")
)

var (
	logLock  sync.Mutex
	minLevel logutils.LogLevel = "DEBUG"
)

// SetBaseDir sets the BaseDir and related variables.
func SetBaseDir(path string) error {
	var err error

	BaseDir = path
	LogPath = filepath.Join(BaseDir, fmt.Sprintf("%s.log", strings.ToLower(AppName)))
	ConfigPath = filepath.Join(BaseDir, "config.yaml")
	DocPath = filepath.Join(BaseDir, "notifications.json")
	DbPath = filepath.Join(BaseDir, fmt.Sprintf("%s.db", strings.ToLower(AppName)))
	RecipeCachePath = filepath.Join(BaseDir, "recipe_cache.json")

	if err = InitApp(); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Error initializing application environment: %s\n",
			err.Error())
		return err
	}

	return nil
} // func SetBaseDir(path string) error

// InitApp performs some basic preparations for the application to run.
// Currently, this means creating the BaseDir folder.
func InitApp() error {
	var (
		err    error
		exists bool
	)

	if exists, err = krylib.Fexists(BaseDir); err != nil {
		return fmt.Errorf("cannot check if %s exists: %w", BaseDir, err)
	} else if !exists {
		if err = os.MkdirAll(BaseDir, 0755); err != nil {
			return fmt.Errorf("cannot create BaseDir %s: %w", BaseDir, err)
		}
	}

	return nil
} // func InitApp() error

// SetMinLogLevel sets the minimum level for Loggers created afterwards.
// Unknown level names are rejected.
func SetMinLogLevel(lvl string) error {
	var level = logutils.LogLevel(strings.ToUpper(strings.TrimSpace(lvl)))

	for _, l := range LogLevels {
		if l == level {
			logLock.Lock()
			minLevel = level
			logLock.Unlock()
			return nil
		}
	}

	return fmt.Errorf("unknown log level %q", lvl)
} // func SetMinLogLevel(lvl string) error

// GetLogger tries to create a named logger instance and return it.
// If the directory to hold the log file does not exist, try to create it.
func GetLogger(dom logdomain.ID) (*log.Logger, error) {
	var (
		err     error
		logfile *os.File
		writer  io.Writer
		logName = fmt.Sprintf("%s.%s ",
			AppName,
			dom)
	)

	if err = InitApp(); err != nil {
		return nil, err
	}

	if logfile, err = os.OpenFile(LogPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600); err != nil {
		msg := fmt.Sprintf("Error opening log file: %s\n", err.Error())
		fmt.Println(msg)
		return nil, fmt.Errorf("%s", msg)
	}

	writer = io.MultiWriter(os.Stdout, logfile)

	logLock.Lock()
	var filter = &logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: minLevel,
		Writer:   writer,
	}
	logLock.Unlock()

	return log.New(filter, logName, log.Ldate|log.Ltime|log.Lshortfile), nil
} // func GetLogger(name string) (*log.Logger, error)

// GetUUID returns a randomized UUID.
func GetUUID() string {
	return uuid.NewRandom().String()
} // func GetUUID() string

// GetShortID returns a short random token, the leading part of a UUID.
func GetShortID() string {
	return GetUUID()[:IDLength]
} // func GetShortID() string
