// /home/krylon/go/src/github.com/blicero/skylight/devices/manager.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 10:21:55 krylon>

// Package devices controls TP-Link Kasa smart plugs, dimmers and bulbs
// over their local protocol.
package devices

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/logdomain"
	"github.com/blicero/skylight/objects"
	"github.com/cenkalti/backoff"
	"golang.org/x/time/rate"
)

// ErrNotFound indicates the device ID is not configured.
var ErrNotFound = errors.New("Device not found")

// ErrUnsupported indicates the device cannot perform the requested action.
var ErrUnsupported = errors.New("Action is not supported by device")

// ErrBadValue indicates a missing or out-of-range value for an action.
var ErrBadValue = errors.New("Invalid value for action")

// Actions understood by Control.
const (
	ActionOn         = "on"
	ActionOff        = "off"
	ActionToggle     = "toggle"
	ActionBrightness = "brightness"
	ActionColorTemp  = "color_temp"
)

// Limits for color temperature in Kelvin.
const (
	minColorTemp = 2500
	maxColorTemp = 9000
)

// maxRetries is how often a failed query is repeated.
const maxRetries = 2

// Manager keeps track of the configured devices.
type Manager struct {
	log       *log.Logger
	lock      sync.Mutex
	addrs     map[string]string
	cache     map[string]*sysinfo
	transport Transport
	limiter   *rate.Limiter
	backoff   func() backoff.BackOff
}

// NewManager creates a Manager for the devices in addrs, which maps device
// IDs to IP addresses. Network operations time out after timeout, queries
// for several devices are spaced at least spacing apart.
func NewManager(addrs map[string]string, timeout, spacing time.Duration) (*Manager, error) {
	return newManager(addrs, &kasaTransport{timeout: timeout}, spacing)
} // func NewManager(addrs map[string]string, timeout, spacing time.Duration) (*Manager, error)

func newManager(addrs map[string]string, t Transport, spacing time.Duration) (*Manager, error) {
	var (
		err error
		m   = &Manager{
			addrs:     make(map[string]string, len(addrs)),
			cache:     make(map[string]*sysinfo),
			transport: t,
			backoff: func() backoff.BackOff {
				var b = backoff.NewExponentialBackOff()
				b.InitialInterval = 250 * time.Millisecond
				return backoff.WithMaxRetries(b, maxRetries)
			},
		}
	)

	if m.log, err = common.GetLogger(logdomain.Devices); err != nil {
		return nil, err
	}

	if spacing > 0 {
		m.limiter = rate.NewLimiter(rate.Every(spacing), 1)
	} else {
		m.limiter = rate.NewLimiter(rate.Inf, 1)
	}

	for id, ip := range addrs {
		m.addrs[id] = ip
	}

	return m, nil
} // func newManager(addrs map[string]string, t Transport, spacing time.Duration) (*Manager, error)

// UpdateDevices replaces the device map. Cached information about devices
// that were removed or changed their address is discarded.
func (m *Manager) UpdateDevices(addrs map[string]string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for id, ip := range m.addrs {
		if addrs[id] != ip {
			delete(m.cache, id)
		}
	}

	m.addrs = make(map[string]string, len(addrs))
	for id, ip := range addrs {
		m.addrs[id] = ip
	}

	m.log.Printf("[INFO] Device map updated, %d devices configured\n",
		len(m.addrs))
} // func (m *Manager) UpdateDevices(addrs map[string]string)

// IDs returns the IDs of all configured devices in lexical order.
func (m *Manager) IDs() []string {
	m.lock.Lock()
	defer m.lock.Unlock()

	var ids = make([]string, 0, len(m.addrs))
	for id := range m.addrs {
		ids = append(ids, id)
	}

	sort.Strings(ids)
	return ids
} // func (m *Manager) IDs() []string

// Count returns the number of configured devices.
func (m *Manager) Count() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.addrs)
} // func (m *Manager) Count() int

func (m *Manager) lookup(id string) (string, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var ip, ok = m.addrs[id]
	return ip, ok
} // func (m *Manager) lookup(id string) (string, bool)

func (m *Manager) evict(id string) {
	m.lock.Lock()
	delete(m.cache, id)
	m.lock.Unlock()
} // func (m *Manager) evict(id string)

// cached returns what we know about the device, querying it if we know
// nothing yet.
func (m *Manager) cached(ctx context.Context, id string) (*sysinfo, error) {
	m.lock.Lock()
	var info, ok = m.cache[id]
	m.lock.Unlock()

	if ok {
		return info, nil
	}

	return m.probe(ctx, id)
} // func (m *Manager) cached(ctx context.Context, id string) (*sysinfo, error)

// probe queries the device's sysinfo, retrying a failed query. The result
// is cached.
func (m *Manager) probe(ctx context.Context, id string) (*sysinfo, error) {
	var (
		err  error
		info *sysinfo
		ip   string
		ok   bool
	)

	if ip, ok = m.lookup(id); !ok {
		return nil, ErrNotFound
	}

	var op = func() error {
		var (
			qerr  error
			reply []byte
		)

		if reply, qerr = m.transport.Query(ctx, ip, sysinfoRequest); qerr != nil {
			m.evict(id)
			m.log.Printf("[DEBUG] Query to %s (%s) failed: %s\n",
				id,
				ip,
				qerr.Error())
			return qerr
		} else if info, qerr = parseSysinfo(reply); qerr != nil {
			m.evict(id)
			return qerr
		}

		return nil
	}

	if err = backoff.Retry(op, backoff.WithContext(m.backoff(), ctx)); err != nil {
		m.log.Printf("[ERROR] Cannot reach device %s at %s: %s\n",
			id,
			ip,
			err.Error())
		return nil, err
	}

	m.lock.Lock()
	// The address may have changed while we were talking to the device.
	if m.addrs[id] == ip {
		m.cache[id] = info
	}
	m.lock.Unlock()

	return info, nil
} // func (m *Manager) probe(ctx context.Context, id string) (*sysinfo, error)

// Status queries the current state of a device.
func (m *Manager) Status(ctx context.Context, id string) (*objects.DeviceStatus, error) {
	var (
		err  error
		info *sysinfo
		ip   string
		ok   bool
	)

	if ip, ok = m.lookup(id); !ok {
		return nil, ErrNotFound
	} else if info, err = m.probe(ctx, id); err != nil {
		return nil, err
	}

	return info.status(id, ip), nil
} // func (m *Manager) Status(ctx context.Context, id string) (*objects.DeviceStatus, error)

// StatusAll queries all configured devices, one after the other. Devices
// that cannot be reached are reported with their error.
func (m *Manager) StatusAll(ctx context.Context) map[string]*objects.DeviceStatus {
	var (
		ids = m.IDs()
		res = make(map[string]*objects.DeviceStatus, len(ids))
	)

	for _, id := range ids {
		if err := m.limiter.Wait(ctx); err != nil {
			m.log.Printf("[INFO] Device poll interrupted: %s\n", err.Error())
			break
		}

		var st, err = m.Status(ctx, id)
		if err != nil {
			var ip, _ = m.lookup(id)
			st = &objects.DeviceStatus{
				ID:    id,
				IP:    ip,
				Error: err.Error(),
			}
		}

		res[id] = st
	}

	return res
} // func (m *Manager) StatusAll(ctx context.Context) map[string]*objects.DeviceStatus

// Control performs action on the device and returns its new state.
// value is required for brightness (1-100) and color_temp (Kelvin).
func (m *Manager) Control(ctx context.Context, id, action string, value *int) (*objects.DeviceStatus, error) {
	var (
		err  error
		info *sysinfo
		req  []byte
		on   int
	)

	if info, err = m.cached(ctx, id); err != nil {
		return nil, err
	}

	switch action {
	case ActionOn:
		on = 1
	case ActionOff:
		on = 0
	case ActionToggle:
		// Someone may have flipped the switch since we last looked.
		if info, err = m.probe(ctx, id); err != nil {
			return nil, err
		} else if !info.status(id, "").IsOn {
			on = 1
		}
	case ActionBrightness:
		if !info.capabilities.Has(Dimmable) {
			return nil, ErrUnsupported
		} else if value == nil || *value < 1 || *value > 100 {
			return nil, fmt.Errorf("%w: brightness must be between 1 and 100", ErrBadValue)
		}
	case ActionColorTemp:
		if !info.capabilities.Has(ColorTemp) {
			return nil, ErrUnsupported
		} else if value == nil || *value < minColorTemp || *value > maxColorTemp {
			return nil, fmt.Errorf("%w: color_temp must be between %d and %d",
				ErrBadValue,
				minColorTemp,
				maxColorTemp)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, action)
	}

	switch {
	case action == ActionBrightness && info.isBulb():
		req, err = command(svcLighting, "transition_light_state",
			map[string]int{"on_off": 1, "ignore_default": 1, "brightness": *value})
	case action == ActionBrightness:
		req, err = command(svcDimmer, "set_brightness",
			map[string]int{"brightness": *value})
	case action == ActionColorTemp:
		req, err = command(svcLighting, "transition_light_state",
			map[string]int{"on_off": 1, "ignore_default": 1, "color_temp": *value})
	case info.isBulb():
		req, err = command(svcLighting, "transition_light_state",
			map[string]int{"on_off": on, "ignore_default": 1})
	default:
		req, err = command(svcSystem, "set_relay_state",
			map[string]int{"state": on})
	}

	if err != nil {
		return nil, err
	} else if err = m.send(ctx, id, req); err != nil {
		return nil, err
	}

	m.log.Printf("[INFO] %s %s done\n", id, action)

	return m.Status(ctx, id)
} // func (m *Manager) Control(ctx context.Context, id, action string, value *int) (*objects.DeviceStatus, error)

// send delivers a command to the device. Commands change state, so unlike
// queries they are not repeated.
func (m *Manager) send(ctx context.Context, id string, req []byte) error {
	var (
		err   error
		reply []byte
		ip, _ = m.lookup(id)
	)

	if reply, err = m.transport.Query(ctx, ip, req); err != nil {
		m.evict(id)
		m.log.Printf("[ERROR] Cannot send command to %s (%s): %s\n",
			id,
			ip,
			err.Error())
		return err
	} else if err = checkReply(reply); err != nil {
		m.log.Printf("[ERROR] Device %s rejected command: %s\n",
			id,
			err.Error())
		return err
	}

	return nil
} // func (m *Manager) send(ctx context.Context, id string, req []byte) error
