// /home/krylon/go/src/github.com/blicero/skylight/backend/dnssd.go
// -*- mode: go; coding: utf-8; -*-
// Created on 24. 08. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 16:50:02 krylon>

package backend

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/blicero/skylight/common"
	"github.com/grandcat/zeroconf"
)

const (
	srvService = "_http._tcp"
	srvDomain  = "local."
)

// servicePort extracts the port from a listen address like "0.0.0.0:8889".
func servicePort(addr string) (int, error) {
	var (
		err  error
		pstr string
		port int64
	)

	if _, pstr, err = net.SplitHostPort(addr); err != nil {
		return 0, err
	} else if port, err = strconv.ParseInt(pstr, 10, 16); err != nil {
		return 0, err
	} else if port == 0 {
		return 0, fmt.Errorf("address %q has no fixed port", addr)
	}

	return int(port), nil
} // func servicePort(addr string) (int, error)

// initDNSSd announces the HTTP API on the local network.
func (d *Daemon) initDNSSd() error {
	var (
		err      error
		port     int
		hostname string
		srv      *zeroconf.Server
	)

	if port, err = servicePort(d.web.Addr); err != nil {
		d.log.Printf("[ERROR] Cannot parse HTTP port from server address %q: %s\n",
			d.web.Addr,
			err.Error())
		return err
	} else if hostname, err = os.Hostname(); err != nil {
		d.log.Printf("[ERROR] Cannot query hostname: %s\n",
			err.Error())
		return err
	}

	var txt = []string{
		"txtv=0",
		"path=/api",
		fmt.Sprintf("version=%s", common.Version),
	}

	var instanceName = fmt.Sprintf("%s@%s",
		common.AppName,
		hostname)

	if srv, err = zeroconf.Register(instanceName, srvService, srvDomain, port, txt, nil); err != nil {
		d.log.Printf("[ERROR] Cannot register service with DNS-SD: %s\n",
			err.Error())
		return err
	}

	d.log.Printf("[INFO] Announced %s on port %d via DNS-SD\n",
		instanceName,
		port)

	d.dnssd = srv
	return nil
} // func (d *Daemon) initDNSSd() error
