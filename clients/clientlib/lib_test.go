// /home/krylon/go/src/github.com/blicero/skylight/clients/clientlib/lib_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 19. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 19:48:02 krylon>

package clientlib

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	var tmpdir, err = os.MkdirTemp("", "skylight-client-")

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

// hub records what it receives and answers with canned responses.
type hub struct {
	method string
	path   string
	body   string
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf, _ = io.ReadAll(r.Body)

	h.method, h.path, h.body = r.Method, r.URL.Path, string(buf)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/notifications":
		var in map[string]any
		if err := json.Unmarshal(buf, &in); err != nil || in["expires"] == "never" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid input: bad expires"}`)
			return
		}
		fmt.Fprintf(w, `{"id":"n1","title":%q,"message":"","priority":"normal","icon":"alert","created":"2026-10-19T07:00:00"}`,
			in["title"])
	case r.Method == http.MethodPost && r.URL.Path == "/api/notifications/recurring":
		fmt.Fprint(w, `{"id":"r1","title":"Bins","message":"","priority":"normal","icon":"alert","rule":{"weekday":0,"show_before_hours":2}}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/notifications":
		fmt.Fprint(w, `[{"id":"n1","title":"Door","priority":"urgent","icon":"alert","created":"2026-10-19T07:00:00"},
{"id":"r1","title":"Bins","priority":"normal","icon":"alert","recurring":true,"target_time":"2026-10-19T08:00:00"}]`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/notifications/all":
		fmt.Fprint(w, `{"notifications":[],"recurring":[]}`)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/notifications/"):
		fmt.Fprintf(w, `{"deleted":%q}`, strings.TrimPrefix(r.URL.Path, "/api/notifications/"))
	case r.Method == http.MethodGet && r.URL.Path == "/api/health":
		fmt.Fprint(w, `{"status":"ok","services":["notifications"],"notifications_count":1}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"Not found"}`)
	}
}

func newPair(t *testing.T) (*hub, *Client) {
	var (
		h   = new(hub)
		srv = httptest.NewServer(h)
	)

	t.Cleanup(srv.Close)

	// Leave out the scheme, like a user would.
	var c, err = NewClient(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)

	return h, c
}

func TestSubmitNotification(t *testing.T) {
	var h, c = newPair(t)

	var n, err = c.SubmitNotification(&objects.NotificationInput{
		Title: objects.Str("Door"),
	})

	require.NoError(t, err)
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, "Door", n.Title)
	assert.Equal(t, http.MethodPost, h.method)
	assert.JSONEq(t, `{"title":"Door"}`, h.body)

	_, err = c.SubmitNotification(&objects.NotificationInput{Expires: objects.Str("never")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad expires")
	assert.Contains(t, err.Error(), "400")
}

func TestAddRecurring(t *testing.T) {
	var h, c = newPair(t)

	var r, err = c.AddRecurring(&objects.RecurringInput{
		Title: objects.Str("Bins"),
		Rule:  objects.RuleSpec{Weekday: objects.Int(0), ShowBeforeHours: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
	require.NotNil(t, r.Rule.Weekday)
	assert.Equal(t, 0, *r.Rule.Weekday)
	assert.Equal(t, "/api/notifications/recurring", h.path)
	assert.Contains(t, h.body, `"weekday":0`)
}

func TestActiveAndDocument(t *testing.T) {
	var _, c = newPair(t)

	var items, err = c.Active()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, objects.PriorityUrgent, items[0].Priority)
	assert.False(t, items[0].Recurring)
	assert.True(t, items[1].Recurring)
	assert.Equal(t, "2026-10-19T08:00:00", items[1].TargetTime)

	var doc *objects.Document
	doc, err = c.Document()
	require.NoError(t, err)
	assert.Empty(t, doc.Notifications)
	assert.Empty(t, doc.Recurring)

	var health *objects.Health
	health, err = c.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.NotificationsCount)
}

func TestDelete(t *testing.T) {
	var h, c = newPair(t)

	var res, err = c.Delete("n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", res.Deleted)
	assert.Equal(t, http.MethodDelete, h.method)
}

func TestUnreachable(t *testing.T) {
	var c, err = NewClient("http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = c.Active()
	assert.Error(t, err)
}
