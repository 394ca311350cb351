// /home/krylon/go/src/github.com/blicero/skylight/main.go
// -*- mode: go; coding: utf-8; -*-
// Created on 01. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 20:11:54 krylon>

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blicero/skylight/backend"
	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/config"
)

func main() {
	fmt.Printf("%s %s (built %s)\n",
		common.AppName,
		common.Version,
		common.BuildStamp)

	var (
		err                   error
		daemon                *backend.Daemon
		cfg                   *config.Config
		appDir, cfgPath, addr string
	)

	flag.StringVar(
		&appDir,
		"appdir",
		common.BaseDir,
		"The directory where application-specific files live")

	flag.StringVar(
		&cfgPath,
		"config",
		"",
		"The configuration file (default: config.yaml in appdir)")

	flag.StringVar(
		&addr,
		"address",
		"",
		"Address to listen on, overrides the configuration file")

	flag.Parse()

	if err = common.SetBaseDir(appDir); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot set base directory to %s: %s\n",
			appDir,
			err.Error())
		os.Exit(1)
	}

	if cfgPath == "" {
		cfgPath = common.ConfigPath
	}

	if cfg, err = config.Load(cfgPath); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot load configuration from %s: %s\n",
			cfgPath,
			err.Error())
		os.Exit(1)
	} else if addr != "" {
		cfg.Address = addr
	}

	if err = common.SetMinLogLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Invalid log level %q: %s\n",
			cfg.LogLevel,
			err.Error())
		os.Exit(1)
	}

	if daemon, err = backend.Summon(cfg, cfgPath); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Failed to initialize backend: %s\n",
			err.Error())
		os.Exit(1)
	}

	var sigQ = make(chan os.Signal, 1)

	signal.Notify(sigQ, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	var sig = <-sigQ
	fmt.Printf("Quitting on signal %s\n", sig)

	if err = daemon.Banish(); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Error shutting down: %s\n",
			err.Error())
		os.Exit(1)
	}
}
