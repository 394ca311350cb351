// /home/krylon/go/src/github.com/blicero/skylight/devices/kasa.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 09:12:27 krylon>

package devices

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"
)

// KasaPort is the TCP port Kasa devices listen on.
const KasaPort = "9999"

// initialKey starts the autokey cipher.
const initialKey byte = 171

// Replies larger than this are considered garbage.
const maxReplySize = 1 << 20

// Transport sends a single request to a device and returns its reply.
type Transport interface {
	Query(ctx context.Context, addr string, req []byte) ([]byte, error)
}

// encrypt scrambles a request and prepends the length header.
func encrypt(plain []byte) []byte {
	var (
		key = initialKey
		buf = make([]byte, 4+len(plain))
	)

	binary.BigEndian.PutUint32(buf, uint32(len(plain)))

	for i, b := range plain {
		key ^= b
		buf[4+i] = key
	}

	return buf
} // func encrypt(plain []byte) []byte

// decrypt unscrambles a reply. The length header must already be removed.
func decrypt(cipher []byte) []byte {
	var (
		key   = initialKey
		plain = make([]byte, len(cipher))
	)

	for i, c := range cipher {
		plain[i] = key ^ c
		key = c
	}

	return plain
} // func decrypt(cipher []byte) []byte

// kasaTransport talks to devices over TCP.
type kasaTransport struct {
	timeout time.Duration
}

// address appends the default port unless addr already carries one.
func address(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}

	return net.JoinHostPort(addr, KasaPort)
} // func address(addr string) string

func (k *kasaTransport) Query(ctx context.Context, addr string, req []byte) ([]byte, error) {
	var (
		err    error
		conn   net.Conn
		dialer = net.Dialer{Timeout: k.timeout}
		hdr    [4]byte
		size   uint32
	)

	if conn, err = dialer.DialContext(ctx, "tcp", address(addr)); err != nil {
		return nil, err
	}

	defer conn.Close() // nolint: errcheck

	var deadline = time.Now().Add(k.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err = conn.SetDeadline(deadline); err != nil {
		return nil, err
	} else if _, err = conn.Write(encrypt(req)); err != nil {
		return nil, fmt.Errorf("cannot send request to %s: %w", addr, err)
	} else if _, err = io.ReadFull(conn, hdr[:]); err != nil {
		return nil, fmt.Errorf("cannot read reply header from %s: %w", addr, err)
	} else if size = binary.BigEndian.Uint32(hdr[:]); size > maxReplySize {
		return nil, fmt.Errorf("reply from %s is too large: %d bytes", addr, size)
	}

	var body = make([]byte, size)

	if _, err = io.ReadFull(conn, body); err != nil {
		return nil, fmt.Errorf("cannot read reply from %s: %w", addr, err)
	}

	return decrypt(body), nil
} // func (k *kasaTransport) Query(ctx context.Context, addr string, req []byte) ([]byte, error)
