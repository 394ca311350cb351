// /home/krylon/go/src/github.com/blicero/skylight/broadcast/hub.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-18 22:48:30 krylon>

// Package broadcast pushes payloads to WebSocket subscribers.
//
// Publishing never blocks: payloads go into a bounded queue, and Run hands
// them to each subscriber's own bounded outbox. A slow subscriber misses
// payloads, it never holds up the publisher or the other subscribers.
package broadcast

import (
	"context"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/logdomain"
	"golang.org/x/net/websocket"
)

// Sizes of the queues.
const (
	QueueSize  = 32
	OutboxSize = 8
)

// SnapshotFunc returns the payload a new subscriber receives right after
// connecting.
type SnapshotFunc func() ([]byte, error)

type subscriber struct {
	id     int64
	outbox chan []byte
}

// Hub distributes payloads to subscribers.
type Hub struct {
	log      *log.Logger
	queue    chan []byte
	lock     sync.Mutex
	subs     map[int64]*subscriber
	idCnt    int64
	snapshot SnapshotFunc
	dropped  atomic.Int64
}

// New creates a Hub. snapshot may be nil.
func New(snapshot SnapshotFunc) (*Hub, error) {
	var (
		err error
		h   = &Hub{
			queue:    make(chan []byte, QueueSize),
			subs:     make(map[int64]*subscriber),
			snapshot: snapshot,
		}
	)

	if h.log, err = common.GetLogger(logdomain.Broadcast); err != nil {
		return nil, err
	}

	return h, nil
} // func New(snapshot SnapshotFunc) (*Hub, error)

// Publish queues payload for delivery. If the queue is full, the oldest
// pending payload is discarded to make room.
func (h *Hub) Publish(payload []byte) {
	for {
		select {
		case h.queue <- payload:
			return
		default:
		}

		select {
		case <-h.queue:
			h.dropped.Add(1)
			h.log.Printf("[WARN] Broadcast queue is full, dropped oldest payload\n")
		default:
		}
	}
} // func (h *Hub) Publish(payload []byte)

// Dropped returns the number of payloads discarded because the queue was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
} // func (h *Hub) Dropped() int64

// Run delivers queued payloads until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.log.Printf("[DEBUG] Broadcast hub is running\n")
	defer h.log.Printf("[DEBUG] Broadcast hub is stopping\n")

	for {
		select {
		case <-ctx.Done():
			return
		case p := <-h.queue:
			h.fanout(p)
		}
	}
} // func (h *Hub) Run(ctx context.Context)

func (h *Hub) fanout(p []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()

	for _, s := range h.subs {
		select {
		case s.outbox <- p:
		default:
			h.log.Printf("[INFO] Subscriber #%d is not keeping up, skipping payload\n",
				s.id)
		}
	}
} // func (h *Hub) fanout(p []byte)

// Subscribe registers a new subscriber. If the Hub has a SnapshotFunc, its
// result is the first item in the outbox.
func (h *Hub) Subscribe() (int64, <-chan []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.idCnt++

	var s = &subscriber{
		id:     h.idCnt,
		outbox: make(chan []byte, OutboxSize),
	}

	if h.snapshot != nil {
		if p, err := h.snapshot(); err != nil {
			h.log.Printf("[ERROR] Cannot build snapshot for subscriber #%d: %s\n",
				s.id,
				err.Error())
		} else {
			s.outbox <- p
		}
	}

	h.subs[s.id] = s
	h.log.Printf("[DEBUG] Subscriber #%d registered, %d total\n",
		s.id,
		len(h.subs))

	return s.id, s.outbox
} // func (h *Hub) Subscribe() (int64, <-chan []byte)

// Unsubscribe removes a subscriber. Unknown IDs are ignored.
func (h *Hub) Unsubscribe(id int64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.subs[id]; ok {
		delete(h.subs, id)
		h.log.Printf("[DEBUG] Subscriber #%d unregistered, %d left\n",
			id,
			len(h.subs))
	}
} // func (h *Hub) Unsubscribe(id int64)

// Count returns the number of current subscribers.
func (h *Hub) Count() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.subs)
} // func (h *Hub) Count() int

// Handler returns an http.Handler that upgrades the connection to a
// WebSocket and streams payloads to it as text messages.
// Requests from any origin are accepted, like the rest of the API.
func (h *Hub) Handler() http.Handler {
	return websocket.Server{
		Handler:   h.serve,
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
	}
} // func (h *Hub) Handler() http.Handler

func (h *Hub) serve(conn *websocket.Conn) {
	var (
		id, outbox = h.Subscribe()
		gone       = make(chan struct{})
	)

	defer func() {
		h.Unsubscribe(id)
		conn.Close() // nolint: errcheck
	}()

	// We do not expect anything from the client, but we need to read to
	// notice when it goes away.
	go func() {
		defer close(gone)
		io.Copy(io.Discard, conn) // nolint: errcheck
	}()

	for {
		select {
		case <-gone:
			return
		case p := <-outbox:
			if err := websocket.Message.Send(conn, string(p)); err != nil {
				h.log.Printf("[INFO] Cannot send to subscriber #%d, dropping it: %s\n",
					id,
					err.Error())
				return
			}
		}
	}
} // func (h *Hub) serve(conn *websocket.Conn)
