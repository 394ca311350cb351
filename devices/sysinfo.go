// /home/krylon/go/src/github.com/blicero/skylight/devices/sysinfo.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 09:40:03 krylon>

package devices

import (
	"fmt"
	"strings"

	"github.com/blicero/skylight/objects"
	"github.com/pquerna/ffjson/ffjson"
)

// Capability describes optional features of a device.
type Capability uint8

// Capabilities a device may have. Switching on and off is always supported.
const (
	Dimmable Capability = 1 << iota
	ColorTemp
	Color
)

// Has returns true if c includes all of f.
func (c Capability) Has(f Capability) bool {
	return c&f == f
} // func (c Capability) Has(f Capability) bool

func (c Capability) String() string {
	var names = make([]string, 0, 3)

	if c.Has(Dimmable) {
		names = append(names, "dimmable")
	}
	if c.Has(ColorTemp) {
		names = append(names, "color_temp")
	}
	if c.Has(Color) {
		names = append(names, "color")
	}

	if len(names) == 0 {
		return "switch"
	}

	return strings.Join(names, "|")
} // func (c Capability) String() string

// Service names of the Kasa protocol.
const (
	svcSystem   = "system"
	svcLighting = "smartlife.iot.smartbulb.lightingservice"
	svcDimmer   = "smartlife.iot.dimmer"
)

type lightState struct {
	OnOff      int `json:"on_off"`
	Brightness int `json:"brightness"`
	ColorTemp  int `json:"color_temp"`
	Hue        int `json:"hue"`
	Saturation int `json:"saturation"`
	// Bulbs that are off report their settings here.
	DftOnState *lightState `json:"dft_on_state,omitempty"`
}

type sysinfo struct {
	Alias        string      `json:"alias"`
	Model        string      `json:"model"`
	Type         string      `json:"type"`
	MicType      string      `json:"mic_type"`
	RelayState   int         `json:"relay_state"`
	Brightness   *int        `json:"brightness,omitempty"`
	IsDimmable   int         `json:"is_dimmable"`
	IsColor      int         `json:"is_color"`
	IsVarTemp    int         `json:"is_variable_color_temp"`
	LightState   *lightState `json:"light_state,omitempty"`
	ErrCode      int         `json:"err_code"`
	ErrMsg       string      `json:"err_msg,omitempty"`
	capabilities Capability
}

// isBulb returns true for devices that are controlled through the
// lighting service rather than the relay.
func (s *sysinfo) isBulb() bool {
	var kind = strings.ToUpper(s.Type + s.MicType)
	return strings.Contains(kind, "SMARTBULB") || s.LightState != nil
} // func (s *sysinfo) isBulb() bool

// deriveCapabilities computes the Capability flags from what the device
// reports about itself.
func (s *sysinfo) deriveCapabilities() Capability {
	var c Capability

	if s.isBulb() {
		if s.IsDimmable != 0 {
			c |= Dimmable
		}
		if s.IsVarTemp != 0 {
			c |= ColorTemp
		}
		if s.IsColor != 0 {
			c |= Color
		}
	} else if s.Brightness != nil {
		// Wall dimmers are plugs with a brightness.
		c |= Dimmable
	}

	return c
} // func (s *sysinfo) deriveCapabilities() Capability

// status converts the sysinfo to a DeviceStatus.
func (s *sysinfo) status(id, ip string) *objects.DeviceStatus {
	var st = &objects.DeviceStatus{
		ID:    id,
		IP:    ip,
		Name:  s.Alias,
		Model: s.Model,
	}

	if st.Name == "" {
		st.Name = id
	}

	if !s.isBulb() {
		st.IsOn = s.RelayState != 0
		if s.capabilities.Has(Dimmable) && s.Brightness != nil {
			var b = *s.Brightness
			st.Brightness = &b
		}
		return st
	}

	var ls = s.LightState
	if ls == nil {
		return st
	}

	st.IsOn = ls.OnOff != 0
	if !st.IsOn && ls.DftOnState != nil {
		ls = ls.DftOnState
	}

	if s.capabilities.Has(Dimmable) {
		var b = ls.Brightness
		st.Brightness = &b
	}

	if s.capabilities.Has(ColorTemp) {
		var t = ls.ColorTemp
		st.ColorTemp = &t
	}

	if s.capabilities.Has(Color) {
		st.HSV = &[3]int{ls.Hue, ls.Saturation, ls.Brightness}
	}

	return st
} // func (s *sysinfo) status(id, ip string) *objects.DeviceStatus

type sysinfoReply struct {
	System struct {
		GetSysinfo *sysinfo `json:"get_sysinfo"`
	} `json:"system"`
}

var sysinfoRequest = []byte(`{"system":{"get_sysinfo":{}}}`)

// parseSysinfo decodes the reply to a get_sysinfo request.
func parseSysinfo(reply []byte) (*sysinfo, error) {
	var (
		err error
		msg sysinfoReply
	)

	if err = ffjson.Unmarshal(reply, &msg); err != nil {
		return nil, fmt.Errorf("cannot parse sysinfo: %w", err)
	} else if msg.System.GetSysinfo == nil {
		return nil, fmt.Errorf("reply does not contain sysinfo: %s", reply)
	} else if msg.System.GetSysinfo.ErrCode != 0 {
		return nil, fmt.Errorf("device error %d: %s",
			msg.System.GetSysinfo.ErrCode,
			msg.System.GetSysinfo.ErrMsg)
	}

	var info = msg.System.GetSysinfo
	info.capabilities = info.deriveCapabilities()
	return info, nil
} // func parseSysinfo(reply []byte) (*sysinfo, error)

// command builds a request for method of service with the given arguments.
func command(service, method string, args map[string]int) ([]byte, error) {
	return ffjson.Marshal(map[string]map[string]map[string]int{
		service: {method: args},
	})
} // func command(service, method string, args map[string]int) ([]byte, error)

// checkReply looks for a non-zero err_code anywhere in the reply.
func checkReply(reply []byte) error {
	var (
		err error
		msg map[string]map[string]struct {
			ErrCode int    `json:"err_code"`
			ErrMsg  string `json:"err_msg"`
		}
	)

	if err = ffjson.Unmarshal(reply, &msg); err != nil {
		return fmt.Errorf("cannot parse reply: %w", err)
	}

	for svc, methods := range msg {
		for method, res := range methods {
			if res.ErrCode != 0 {
				return fmt.Errorf("%s.%s failed with error %d: %s",
					svc,
					method,
					res.ErrCode,
					res.ErrMsg)
			}
		}
	}

	return nil
} // func checkReply(reply []byte) error
