// /home/krylon/go/src/github.com/blicero/skylight/clients/clientlib/lib.go
// -*- mode: go; coding: utf-8; -*-
// Created on 14. 08. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 19:31:40 krylon>

// Package clientlib provides the basic framework for
// building clients that talk to the Skylight hub.
package clientlib

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/logdomain"
	"github.com/blicero/skylight/objects"
	"github.com/pquerna/ffjson/ffjson"
)

const (
	pathNotifications = "/api/notifications"
	pathAll           = "/api/notifications/all"
	pathRecurring     = "/api/notifications/recurring"
	pathHealth        = "/api/health"
)

// Item is an entry in the list of active notifications. One-time
// notifications and triggered reminders share most of their fields, the
// rest stays empty.
type Item struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Priority   objects.Priority `json:"priority"`
	Icon       string           `json:"icon"`
	Created    string           `json:"created,omitempty"`
	Expires    string           `json:"expires,omitempty"`
	Recurring  bool             `json:"recurring,omitempty"`
	TargetTime string           `json:"target_time,omitempty"`
}

// Client is the basic implementation of a Skylight client,
// it implements the fundamental communication with the Server.
type Client struct {
	Server *url.URL
	Client http.Client
	log    *log.Logger
}

// NewClient creates a new Client. srv is either a URL or a host:port pair.
func NewClient(srv string) (*Client, error) {
	var (
		err error
		c   = &Client{
			Client: http.Client{
				Timeout: time.Second * 10,
			},
		}
	)

	if !strings.Contains(srv, "://") {
		srv = "http://" + srv
	}

	if c.log, err = common.GetLogger(logdomain.Client); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot create Logger: %s\n",
			err.Error())
		return nil, err
	} else if c.Server, err = url.Parse(srv); err != nil {
		c.log.Printf("[ERROR] Cannot parse URL %q: %s\n",
			srv,
			err.Error())
		return nil, err
	}

	return c, nil
} // func NewClient(srv string) (*Client, error)

// GetLogger returns the Client's Logger.
func (c *Client) GetLogger() *log.Logger {
	return c.log
} // func (c *Client) GetLogger() *log.Logger

// SubmitNotification creates a one-time Notification.
func (c *Client) SubmitNotification(in *objects.NotificationInput) (*objects.Notification, error) {
	var n objects.Notification

	if err := c.request(http.MethodPost, pathNotifications, in, &n); err != nil {
		return nil, err
	}

	return &n, nil
} // func (c *Client) SubmitNotification(in *objects.NotificationInput) (*objects.Notification, error)

// AddRecurring creates a RecurringRule.
func (c *Client) AddRecurring(in *objects.RecurringInput) (*objects.RecurringRule, error) {
	var r objects.RecurringRule

	if err := c.request(http.MethodPost, pathRecurring, in, &r); err != nil {
		return nil, err
	}

	return &r, nil
} // func (c *Client) AddRecurring(in *objects.RecurringInput) (*objects.RecurringRule, error)

// Delete removes the Notification or RecurringRule with the given ID.
func (c *Client) Delete(id string) (*objects.DeleteResponse, error) {
	var res objects.DeleteResponse

	if err := c.request(http.MethodDelete, pathNotifications+"/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}

	return &res, nil
} // func (c *Client) Delete(id string) (*objects.DeleteResponse, error)

// Active fetches the list of active notifications.
func (c *Client) Active() ([]Item, error) {
	var items = make([]Item, 0)

	if err := c.request(http.MethodGet, pathNotifications, nil, &items); err != nil {
		return nil, err
	}

	return items, nil
} // func (c *Client) Active() ([]Item, error)

// Document fetches everything the hub stores.
func (c *Client) Document() (*objects.Document, error) {
	var doc = objects.NewDocument()

	if err := c.request(http.MethodGet, pathAll, nil, doc); err != nil {
		return nil, err
	}

	return doc, nil
} // func (c *Client) Document() (*objects.Document, error)

// Health fetches the hub's status summary.
func (c *Client) Health() (*objects.Health, error) {
	var h objects.Health

	if err := c.request(http.MethodGet, pathHealth, nil, &h); err != nil {
		return nil, err
	}

	return &h, nil
} // func (c *Client) Health() (*objects.Health, error)

// request sends payload, if any, to path and decodes the response into
// result. Responses other than 200 are turned into an error carrying the
// Server's message.
func (c *Client) request(method, path string, payload, result any) error {
	var (
		err     error
		sendBuf []byte
		body    io.Reader
		req     *http.Request
		hres    *http.Response
		rcvBuf  bytes.Buffer
		addr    = c.Server.JoinPath(path)
	)

	if payload != nil {
		if sendBuf, err = ffjson.Marshal(payload); err != nil {
			c.log.Printf("[ERROR] Cannot serialize request: %s\n",
				err.Error())
			return err
		}

		defer ffjson.Pool(sendBuf)
		body = bytes.NewReader(sendBuf)
	}

	if req, err = http.NewRequest(method, addr.String(), body); err != nil {
		c.log.Printf("[ERROR] Cannot create request for %s: %s\n",
			addr,
			err.Error())
		return err
	} else if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if hres, err = c.Client.Do(req); err != nil {
		c.log.Printf("[ERROR] Failed to %s %s: %s\n",
			method,
			addr,
			err.Error())
		return err
	}

	defer hres.Body.Close() // nolint: errcheck

	if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read Response body from %s: %s\n",
			addr,
			err.Error())
		return err
	} else if hres.StatusCode != http.StatusOK {
		var ores objects.ErrorResponse

		if err = ffjson.Unmarshal(rcvBuf.Bytes(), &ores); err != nil || ores.Error == "" {
			ores.Error = hres.Status
		}

		err = fmt.Errorf("Request to %s failed (%d): %s",
			addr,
			hres.StatusCode,
			ores.Error)
		c.log.Printf("[ERROR] %s\n", err.Error())
		return err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), result); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize Response from %s: %s\n",
			addr,
			err.Error())
		return err
	}

	c.log.Printf("[DEBUG] %s %s was successful\n",
		method,
		addr)

	return nil
} // func (c *Client) request(method, path string, payload, result any) error
