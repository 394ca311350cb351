// /home/krylon/go/src/github.com/blicero/skylight/devices/devices_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 11:02:38 krylon>

package devices

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/objects"
	"github.com/cenkalti/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	var tmpdir, err = os.MkdirTemp("", "skylight-devices-")

	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create temporary directory: %s\n", err.Error())
		os.Exit(1)
	} else if err = common.SetBaseDir(tmpdir); err != nil {
		os.Exit(1)
	}

	var rc = m.Run()
	os.RemoveAll(tmpdir) // nolint: errcheck
	os.Exit(rc)
} // func TestMain(m *testing.M)

// fakeDevice emulates just enough of a Kasa device.
type fakeDevice struct {
	info     map[string]any
	failures int
}

type fakeTransport struct {
	lock    sync.Mutex
	devices map[string]*fakeDevice
	log     []string
}

func (f *fakeTransport) Query(_ context.Context, addr string, req []byte) ([]byte, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.log = append(f.log, addr+" "+string(req))

	var dev, ok = f.devices[addr]
	if !ok {
		return nil, errors.New("connection refused")
	} else if dev.failures > 0 {
		dev.failures--
		return nil, errors.New("i/o timeout")
	}

	var msg map[string]map[string]map[string]int
	if err := json.Unmarshal(req, &msg); err != nil {
		return nil, err
	}

	for svc, methods := range msg {
		for method, args := range methods {
			switch svc + "." + method {
			case "system.get_sysinfo":
				return json.Marshal(map[string]any{
					"system": map[string]any{"get_sysinfo": dev.info},
				})
			case "system.set_relay_state":
				dev.info["relay_state"] = args["state"]
			case "smartlife.iot.dimmer.set_brightness":
				dev.info["brightness"] = args["brightness"]
			case "smartlife.iot.smartbulb.lightingservice.transition_light_state":
				var ls = dev.info["light_state"].(map[string]any)
				for k, v := range args {
					if k != "ignore_default" {
						ls[k] = v
					}
				}
			default:
				return json.Marshal(map[string]any{
					svc: map[string]any{method: map[string]any{"err_code": -1, "err_msg": "module not support"}},
				})
			}

			return json.Marshal(map[string]any{
				svc: map[string]any{method: map[string]any{"err_code": 0}},
			})
		}
	}

	return nil, errors.New("empty request")
}

func (f *fakeTransport) queries() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.log)
}

func newFake() *fakeTransport {
	return &fakeTransport{
		devices: map[string]*fakeDevice{
			"10.0.0.1": {info: map[string]any{
				"alias": "Kettle", "model": "HS100(EU)", "type": "IOT.SMARTPLUGSWITCH",
				"relay_state": 0, "err_code": 0,
			}},
			"10.0.0.2": {info: map[string]any{
				"alias": "Hallway", "model": "HS220(US)", "type": "IOT.SMARTPLUGSWITCH",
				"relay_state": 1, "brightness": 40, "err_code": 0,
			}},
			"10.0.0.3": {info: map[string]any{
				"alias": "Desk", "model": "KL130(EU)", "mic_type": "IOT.SMARTBULB",
				"is_dimmable": 1, "is_color": 1, "is_variable_color_temp": 1, "err_code": 0,
				"light_state": map[string]any{
					"on_off": 1, "brightness": 80, "color_temp": 2700, "hue": 0, "saturation": 0,
				},
			}},
		},
	}
}

func newTestManager(t *testing.T, f *fakeTransport) *Manager {
	t.Helper()

	var m, err = newManager(map[string]string{
		"kettle":  "10.0.0.1",
		"hallway": "10.0.0.2",
		"desk":    "10.0.0.3",
		"gone":    "10.0.0.9",
	}, f, 0)
	require.NoError(t, err)

	m.backoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxRetries)
	}

	return m
}

func TestCipher(t *testing.T) {
	var enc = encrypt([]byte("{}"))
	assert.Equal(t, []byte{0, 0, 0, 2, 0xd0, 0xad}, enc)
	assert.Equal(t, []byte("{}"), decrypt(enc[4:]))

	var msg = []byte(`{"system":{"get_sysinfo":{}}}`)
	assert.Equal(t, msg, decrypt(encrypt(msg)[4:]))
}

func TestCapabilities(t *testing.T) {
	var (
		c = Dimmable | ColorTemp
	)

	assert.True(t, c.Has(Dimmable))
	assert.False(t, c.Has(Color))
	assert.False(t, c.Has(Dimmable|Color))
	assert.Equal(t, "dimmable|color_temp", c.String())
	assert.Equal(t, "switch", Capability(0).String())
}

func TestStatus(t *testing.T) {
	var (
		f   = newFake()
		m   = newTestManager(t, f)
		ctx = context.Background()
	)

	var st, err = m.Status(ctx, "kettle")
	require.NoError(t, err)
	assert.Equal(t, "Kettle", st.Name)
	assert.Equal(t, "10.0.0.1", st.IP)
	assert.False(t, st.IsOn)
	assert.Nil(t, st.Brightness)
	assert.Nil(t, st.HSV)

	st, err = m.Status(ctx, "hallway")
	require.NoError(t, err)
	assert.True(t, st.IsOn)
	require.NotNil(t, st.Brightness)
	assert.Equal(t, 40, *st.Brightness)
	assert.Nil(t, st.ColorTemp)

	st, err = m.Status(ctx, "desk")
	require.NoError(t, err)
	assert.True(t, st.IsOn)
	require.NotNil(t, st.ColorTemp)
	assert.Equal(t, 2700, *st.ColorTemp)
	require.NotNil(t, st.HSV)
	assert.Equal(t, [3]int{0, 0, 80}, *st.HSV)

	_, err = m.Status(ctx, "toaster")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRetry(t *testing.T) {
	var (
		f   = newFake()
		m   = newTestManager(t, f)
		ctx = context.Background()
	)

	f.devices["10.0.0.1"].failures = maxRetries
	var _, err = m.Status(ctx, "kettle")
	require.NoError(t, err)
	assert.Equal(t, maxRetries+1, f.queries())

	f.devices["10.0.0.1"].failures = maxRetries + 1
	_, err = m.Status(ctx, "kettle")
	assert.Error(t, err)
	assert.Equal(t, 2*(maxRetries+1), f.queries())
}

func TestStatusAll(t *testing.T) {
	var (
		f   = newFake()
		m   = newTestManager(t, f)
		all = m.StatusAll(context.Background())
	)

	require.Len(t, all, 4)
	assert.Empty(t, all["kettle"].Error)
	assert.Equal(t, "Desk", all["desk"].Name)
	assert.NotEmpty(t, all["gone"].Error)
	assert.Equal(t, "10.0.0.9", all["gone"].IP)
}

func TestControl(t *testing.T) {
	var (
		f   = newFake()
		m   = newTestManager(t, f)
		ctx = context.Background()
		val = 55
	)

	var st, err = m.Control(ctx, "kettle", ActionToggle, nil)
	require.NoError(t, err)
	assert.True(t, st.IsOn)

	st, err = m.Control(ctx, "kettle", ActionOff, nil)
	require.NoError(t, err)
	assert.False(t, st.IsOn)

	st, err = m.Control(ctx, "hallway", ActionBrightness, &val)
	require.NoError(t, err)
	assert.Equal(t, 55, *st.Brightness)

	st, err = m.Control(ctx, "desk", ActionOff, nil)
	require.NoError(t, err)
	assert.False(t, st.IsOn)

	val = 4000
	st, err = m.Control(ctx, "desk", ActionColorTemp, &val)
	require.NoError(t, err)
	assert.True(t, st.IsOn)
	assert.Equal(t, 4000, *st.ColorTemp)

	_, err = m.Control(ctx, "kettle", ActionBrightness, &val)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = m.Control(ctx, "hallway", ActionColorTemp, &val)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = m.Control(ctx, "hallway", ActionBrightness, nil)
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = m.Control(ctx, "kettle", "explode", nil)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = m.Control(ctx, "toaster", ActionOn, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDevices(t *testing.T) {
	var (
		f   = newFake()
		m   = newTestManager(t, f)
		ctx = context.Background()
	)

	var _, err = m.Status(ctx, "kettle")
	require.NoError(t, err)
	_, err = m.Status(ctx, "desk")
	require.NoError(t, err)

	m.UpdateDevices(map[string]string{
		"kettle": "10.0.0.2",
		"desk":   "10.0.0.3",
	})

	assert.Equal(t, []string{"desk", "kettle"}, m.IDs())
	assert.Equal(t, 2, m.Count())

	m.lock.Lock()
	_, kettleCached := m.cache["kettle"]
	_, deskCached := m.cache["desk"]
	m.lock.Unlock()

	assert.False(t, kettleCached, "address changed")
	assert.True(t, deskCached)

	var st *objects.DeviceStatus
	st, err = m.Status(ctx, "kettle")
	require.NoError(t, err)
	assert.Equal(t, "Hallway", st.Name)

	_, err = m.Status(ctx, "hallway")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKasaTransport(t *testing.T) {
	var lst, err = net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lst.Close() // nolint: errcheck

	var (
		reply = []byte(`{"system":{"get_sysinfo":{"alias":"Lamp","model":"HS103","relay_state":1,"err_code":0}}}`)
		got   = make(chan []byte, 1)
	)

	go func() {
		var conn, aerr = lst.Accept()
		if aerr != nil {
			return
		}
		defer conn.Close() // nolint: errcheck

		var hdr [4]byte
		if _, aerr = io.ReadFull(conn, hdr[:]); aerr != nil {
			return
		}

		var body = make([]byte, binary.BigEndian.Uint32(hdr[:]))
		if _, aerr = io.ReadFull(conn, body); aerr != nil {
			return
		}

		got <- decrypt(body)
		conn.Write(encrypt(reply)) // nolint: errcheck
	}()

	var (
		k   = &kasaTransport{timeout: 2 * time.Second}
		res []byte
	)

	res, err = k.Query(context.Background(), lst.Addr().String(), sysinfoRequest)
	require.NoError(t, err)
	assert.Equal(t, reply, res)
	assert.Equal(t, sysinfoRequest, <-got)

	var info *sysinfo
	info, err = parseSysinfo(res)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", info.Alias)
	assert.Equal(t, Capability(0), info.capabilities)
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "192.168.1.5:9999", address("192.168.1.5"))
	assert.Equal(t, "192.168.1.5:1234", address("192.168.1.5:1234"))
}
