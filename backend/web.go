// /home/krylon/go/src/github.com/blicero/skylight/backend/web.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 17:20:33 krylon>

package backend

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/blicero/skylight/devices"
	"github.com/blicero/skylight/objects"
	"github.com/blicero/skylight/store"
	"github.com/gorilla/mux"
	"github.com/pquerna/ffjson/ffjson"
)

const maxBodySize = 1 << 16

var services = []string{"devices", "recipe", "calendar", "notifications"}

func (d *Daemon) initWebHandlers() error {
	d.router.HandleFunc("/api/devices", d.handleDevices).Methods(http.MethodGet)
	d.router.HandleFunc("/api/device/{id}", d.handleDeviceStatus).Methods(http.MethodGet)
	d.router.HandleFunc("/api/device/{id}", d.handleDeviceToggle).Methods(http.MethodPost)
	d.router.HandleFunc("/api/device/{id}/{action}", d.handleDeviceAction).Methods(http.MethodPost)

	d.router.HandleFunc("/api/recipe", d.handleRecipe).Methods(http.MethodGet)
	d.router.HandleFunc("/api/recipe/refresh", d.handleRecipeRefresh).Methods(http.MethodGet)

	d.router.HandleFunc("/api/calendar", d.handleCalendar).Methods(http.MethodGet)
	d.router.HandleFunc("/api/calendar/refresh", d.handleCalendarRefresh).Methods(http.MethodGet)

	d.router.HandleFunc("/api/notifications", d.handleNotificationsActive).Methods(http.MethodGet)
	d.router.HandleFunc("/api/notifications", d.handleNotificationAdd).Methods(http.MethodPost)
	d.router.HandleFunc("/api/notifications/all", d.handleNotificationsAll).Methods(http.MethodGet)
	d.router.HandleFunc("/api/notifications/recurring", d.handleRecurringAdd).Methods(http.MethodPost)
	d.router.HandleFunc("/api/notifications/{id}", d.handleNotificationDelete).Methods(http.MethodDelete)

	d.router.HandleFunc("/api/health", d.handleHealth).Methods(http.MethodGet)
	d.router.Handle("/ws", d.hub.Handler())

	d.router.NotFoundHandler = http.HandlerFunc(d.handleNotFound)
	d.router.MethodNotAllowedHandler = http.HandlerFunc(d.handleNotFound)

	return nil
} // func (d *Daemon) initWebHandlers() error

func (d *Daemon) serveHTTP() {
	var err error

	defer d.log.Println("[INFO] Web server is shutting down")

	d.log.Printf("[INFO] Web frontend is going online at %s\n", d.web.Addr)

	if err = d.web.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			d.log.Printf("[ERROR] ListenAndServe returned an error: %s\n",
				err.Error())
		} else {
			d.log.Println("[INFO] HTTP Server has shut down.")
		}
	}
} // func (d *Daemon) serveHTTP()

// cors adds the CORS headers to every response and answers preflight
// requests itself.
func (d *Daemon) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var h = w.Header()

		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			d.sendResponseJSON(w, http.StatusOK, struct{}{})
			return
		}

		next.ServeHTTP(w, r)
	})
} // func (d *Daemon) cors(next http.Handler) http.Handler

func (d *Daemon) handleNotFound(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[DEBUG] No route for %s %s from %s\n",
		r.Method,
		r.URL,
		r.RemoteAddr)

	d.sendError(w, http.StatusNotFound, "Not found")
} // func (d *Daemon) handleNotFound(w http.ResponseWriter, r *http.Request)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Devices //////////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

func (d *Daemon) handleDevices(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var status = d.devices.StatusAll(r.Context())

	d.sendResponseJSON(w, http.StatusOK, status)
} // func (d *Daemon) handleDevices(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleDeviceStatus(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err    error
		id     = mux.Vars(r)["id"]
		status *objects.DeviceStatus
	)

	if status, err = d.devices.Status(r.Context(), id); err != nil {
		d.log.Printf("[ERROR] Cannot query device %s: %s\n",
			id,
			err.Error())
		d.sendError(w, deviceErrorStatus(err), err.Error())
		return
	}

	d.sendResponseJSON(w, http.StatusOK, status)
} // func (d *Daemon) handleDeviceStatus(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleDeviceToggle(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	d.control(w, r, mux.Vars(r)["id"], devices.ActionToggle, nil)
} // func (d *Daemon) handleDeviceToggle(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleDeviceAction(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		buf  []byte
		cmd  objects.DeviceCommand
		vars = mux.Vars(r)
	)

	if buf, err = d.readBody(w, r); err != nil {
		d.sendError(w, http.StatusBadRequest, err.Error())
		return
	} else if len(buf) > 0 {
		if err = ffjson.Unmarshal(buf, &cmd); err != nil {
			d.log.Printf("[ERROR] Cannot parse device command: %s\n",
				err.Error())
			d.sendError(w, http.StatusBadRequest,
				fmt.Sprintf("Invalid JSON: %s", err.Error()))
			return
		}
	}

	d.control(w, r, vars["id"], vars["action"], cmd.Value)
} // func (d *Daemon) handleDeviceAction(w http.ResponseWriter, r *http.Request)

func (d *Daemon) control(w http.ResponseWriter, r *http.Request, id, action string, value *int) {
	var (
		err    error
		status *objects.DeviceStatus
	)

	if status, err = d.devices.Control(r.Context(), id, action, value); err != nil {
		d.log.Printf("[ERROR] Cannot %s device %s: %s\n",
			action,
			id,
			err.Error())
		d.sendError(w, deviceErrorStatus(err), err.Error())
		return
	}

	d.sendResponseJSON(w, http.StatusOK, status)
} // func (d *Daemon) control(w http.ResponseWriter, r *http.Request, id, action string, value *int)

// deviceErrorStatus picks the HTTP status for an error from the device
// Manager. Anything that is not the client's fault means we could not talk
// to the device.
func deviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, devices.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, devices.ErrUnsupported), errors.Is(err, devices.ErrBadValue):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
} // func deviceErrorStatus(err error) int

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Recipe and Calendar //////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

func (d *Daemon) handleRecipe(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var rec = d.recipe.Current()

	d.sendResponseJSON(w, http.StatusOK, &rec)
} // func (d *Daemon) handleRecipe(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleRecipeRefresh(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	// On failure, Refresh hands us the previous recipe, which is still
	// better than nothing.
	var rec, err = d.recipe.Refresh(r.Context())
	if err != nil {
		d.log.Printf("[ERROR] Recipe refresh failed: %s\n",
			err.Error())
	}

	d.sendResponseJSON(w, http.StatusOK, &rec)
} // func (d *Daemon) handleRecipeRefresh(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCalendar(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	d.sendResponseJSON(w, http.StatusOK, d.calendar.Events(d.now()))
} // func (d *Daemon) handleCalendar(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCalendarRefresh(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var now = d.now()

	if err := d.calendar.Refresh(r.Context(), now); err != nil {
		d.log.Printf("[ERROR] Calendar refresh failed: %s\n",
			err.Error())
	}

	d.sendResponseJSON(w, http.StatusOK, d.calendar.Events(now))
} // func (d *Daemon) handleCalendarRefresh(w http.ResponseWriter, r *http.Request)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Notifications ////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

func (d *Daemon) handleNotificationsActive(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	d.sendResponseJSON(w, http.StatusOK, d.store.Active(d.now()))
} // func (d *Daemon) handleNotificationsActive(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleNotificationsAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	d.sendResponseJSON(w, http.StatusOK, d.store.Document())
} // func (d *Daemon) handleNotificationsAll(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleNotificationAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err    error
		buf    []byte
		in     objects.NotificationInput
		n      *objects.Notification
		status = http.StatusOK
		res    any
	)

	if buf, err = d.readBody(w, r); err != nil {
		status = http.StatusBadRequest
		res = &objects.ErrorResponse{Error: err.Error()}
		goto SEND_RESPONSE
	} else if err = ffjson.Unmarshal(buf, &in); err != nil {
		d.log.Printf("[ERROR] Cannot parse Notification: %s\n",
			err.Error())
		status = http.StatusBadRequest
		res = &objects.ErrorResponse{Error: fmt.Sprintf("Invalid JSON: %s", err.Error())}
		goto SEND_RESPONSE
	} else if n, err = d.store.AddNotification(&in, d.now()); err != nil {
		d.log.Printf("[ERROR] Cannot add Notification: %s\n",
			err.Error())
		status = storeErrorStatus(err)
		res = &objects.ErrorResponse{Error: err.Error()}
		goto SEND_RESPONSE
	}

	d.publish()
	res = n

SEND_RESPONSE:
	d.sendResponseJSON(w, status, res)
} // func (d *Daemon) handleNotificationAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleRecurringAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err    error
		buf    []byte
		in     objects.RecurringInput
		rule   *objects.RecurringRule
		status = http.StatusOK
		res    any
	)

	if buf, err = d.readBody(w, r); err != nil {
		status = http.StatusBadRequest
		res = &objects.ErrorResponse{Error: err.Error()}
		goto SEND_RESPONSE
	} else if err = ffjson.Unmarshal(buf, &in); err != nil {
		d.log.Printf("[ERROR] Cannot parse recurring rule: %s\n",
			err.Error())
		status = http.StatusBadRequest
		res = &objects.ErrorResponse{Error: fmt.Sprintf("Invalid JSON: %s", err.Error())}
		goto SEND_RESPONSE
	} else if rule, err = d.store.AddRecurring(&in); err != nil {
		d.log.Printf("[ERROR] Cannot add recurring rule: %s\n",
			err.Error())
		status = storeErrorStatus(err)
		res = &objects.ErrorResponse{Error: err.Error()}
		goto SEND_RESPONSE
	}

	d.publish()
	res = rule

SEND_RESPONSE:
	d.sendResponseJSON(w, status, res)
} // func (d *Daemon) handleRecurringAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleNotificationDelete(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err error
		id  = mux.Vars(r)["id"]
		res *objects.DeleteResponse
	)

	if res, err = d.store.Delete(id); err != nil {
		d.log.Printf("[ERROR] Cannot delete %s: %s\n",
			id,
			err.Error())
		d.sendError(w, storeErrorStatus(err), err.Error())
		return
	}

	d.publish()
	d.sendResponseJSON(w, http.StatusOK, res)
} // func (d *Daemon) handleNotificationDelete(w http.ResponseWriter, r *http.Request)

func storeErrorStatus(err error) int {
	if errors.Is(err, store.ErrInvalid) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
} // func storeErrorStatus(err error) int

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		ncnt, rcnt = d.store.Counts()
		health     = objects.Health{
			Status:             "ok",
			Services:           services,
			DevicesConfigured:  d.devices.Count(),
			RecipeUpdated:      d.recipe.Current().Updated,
			CalendarEvents:     len(d.calendar.Events(d.now())),
			NotificationsCount: ncnt,
			RecurringCount:     rcnt,
		}
	)

	d.sendResponseJSON(w, http.StatusOK, &health)
} // func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Helpers //////////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

// readBody reads the request body. Bodies larger than maxBodySize are
// rejected.
func (d *Daemon) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	var (
		err error
		buf []byte
	)

	if buf, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize)); err != nil {
		d.log.Printf("[ERROR] Cannot read request body from %s: %s\n",
			r.RemoteAddr,
			err.Error())
		return nil, fmt.Errorf("Cannot read request body: %w", err)
	}

	return buf, nil
} // func (d *Daemon) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error)

func (d *Daemon) sendError(w http.ResponseWriter, status int, msg string) {
	d.sendResponseJSON(w, status, &objects.ErrorResponse{Error: msg})
} // func (d *Daemon) sendError(w http.ResponseWriter, status int, msg string)

func (d *Daemon) sendResponseJSON(w http.ResponseWriter, status int, res any) {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(res); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Response object %#v: %s\n",
			res,
			err.Error())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Cannot serialize response"}`)) // nolint: errcheck
		return
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) sendResponseJSON(w http.ResponseWriter, status int, res any)
