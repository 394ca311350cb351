// /home/krylon/go/src/github.com/blicero/skylight/backend/backend.go
// -*- mode: go; coding: utf-8; -*-
// Created on 01. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 16:42:11 krylon>

// Package backend implements the hub daemon, the part that owns the
// notification store, talks to the devices, the recipe site and the
// calendars, and serves all of it over HTTP.
package backend

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/blicero/skylight/broadcast"
	"github.com/blicero/skylight/calendar"
	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/config"
	"github.com/blicero/skylight/devices"
	"github.com/blicero/skylight/logdomain"
	"github.com/blicero/skylight/objects"
	"github.com/blicero/skylight/recipe"
	"github.com/blicero/skylight/store"
	"github.com/godbus/dbus/v5"
	"github.com/gorilla/mux"
	"github.com/grandcat/zeroconf"
	"github.com/pquerna/ffjson/ffjson"
	"github.com/robfig/cron/v3"
)

const (
	notifyObj    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
	queueDepth   = 5
	pushSchedule = "@every 1m"
)

// Daemon is the centerpiece of the backend, coordinating between the
// store, the devices, the scrapers and the clients.
type Daemon struct {
	log       *log.Logger
	cfg       *config.Config
	cfgPath   string
	store     *store.Store
	hub       *broadcast.Hub
	devices   *devices.Manager
	recipe    *recipe.Scraper
	calendar  *calendar.Service
	sched     *cron.Cron
	bus       *dbus.Conn
	dnssd     *zeroconf.Server
	lock      sync.RWMutex
	active    bool
	ctx       context.Context
	cancel    context.CancelFunc
	Queue     chan objects.Alert
	web       http.Server
	router    *mux.Router
	pLock     sync.Mutex
	lastPush  string
	announced map[string]bool
	now       func() time.Time
}

// Summon summons a Daemon and returns it. No sacrifice or idolatry is required.
// cfgPath is the file cfg was loaded from. If it is not empty, the file is
// watched for changes.
func Summon(cfg *config.Config, cfgPath string) (*Daemon, error) {
	var (
		err error
		d   *Daemon
	)

	if d, err = create(cfg, cfgPath); err != nil {
		return nil, err
	}

	if cfg.DesktopNotify {
		if d.bus, err = dbus.SessionBus(); err != nil {
			d.log.Printf("[ERROR] Failed to connect to DBus Session bus, desktop notifications are disabled: %s\n",
				err.Error())
			d.bus = nil
		} else {
			go d.notifyLoop()
		}
	}

	if cfg.DNSSD {
		if err = d.initDNSSd(); err != nil {
			d.log.Printf("[ERROR] Service will not be announced via DNS-SD: %s\n",
				err.Error())
		}
	}

	if err = d.schedule(); err != nil {
		d.Banish() // nolint: errcheck
		return nil, err
	}

	if cfgPath != "" {
		go d.watchConfig()
	}

	go d.hub.Run(d.ctx)
	go d.refreshRecipe()
	go d.refreshCalendar()
	go d.serveHTTP()

	d.sched.Start()

	return d, nil
} // func Summon(cfg *config.Config, cfgPath string) (*Daemon, error)

// create builds the Daemon and its components without starting anything
// in the background.
func create(cfg *config.Config, cfgPath string) (*Daemon, error) {
	var (
		err     error
		backend store.Backend
		d       = &Daemon{
			cfg:       cfg,
			cfgPath:   cfgPath,
			active:    true,
			Queue:     make(chan objects.Alert, queueDepth),
			router:    mux.NewRouter(),
			announced: make(map[string]bool),
			now:       time.Now,
		}
	)

	if d.log, err = common.GetLogger(logdomain.Backend); err != nil {
		fmt.Printf("ERROR initializing Logger: %s\n",
			err.Error())
		return nil, err
	} else if backend, err = store.OpenBackend(cfg.Storage.Backend, cfg.Storage.Path); err != nil {
		d.log.Printf("[ERROR] Cannot open %s storage at %s: %s\n",
			cfg.Storage.Backend,
			cfg.Storage.Path,
			err.Error())
		return nil, err
	} else if d.store, err = store.Open(backend); err != nil {
		d.log.Printf("[ERROR] Cannot open notification store: %s\n",
			err.Error())
		return nil, err
	} else if d.hub, err = broadcast.New(d.snapshot); err != nil {
		d.log.Printf("[ERROR] Cannot create broadcast hub: %s\n",
			err.Error())
		return nil, err
	} else if d.devices, err = devices.NewManager(cfg.Devices, cfg.DeviceTimeout, cfg.DeviceSpacing); err != nil {
		d.log.Printf("[ERROR] Cannot create device manager: %s\n",
			err.Error())
		return nil, err
	} else if d.recipe, err = recipe.New(cfg.Recipe.URL, cfg.Recipe.UserAgent, cfg.Recipe.Cache); err != nil {
		d.log.Printf("[ERROR] Cannot create recipe scraper: %s\n",
			err.Error())
		return nil, err
	} else if d.calendar, err = calendar.New(cfg.Calendar.Feeds, cfg.Calendar.HorizonDays); err != nil {
		d.log.Printf("[ERROR] Cannot create calendar service: %s\n",
			err.Error())
		return nil, err
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.sched = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	d.web.Addr = cfg.Address
	d.web.ErrorLog = d.log
	d.web.Handler = d.cors(d.router)

	if err = d.initWebHandlers(); err != nil {
		d.log.Printf("[ERROR] Failed to initialize web server: %s\n",
			err.Error())
		return nil, err
	}

	d.lastPush = d.signature(d.store.Active(d.now()))

	return d, nil
} // func create(cfg *config.Config, cfgPath string) (*Daemon, error)

// IsAlive returns true if the Daemon's active flag is set.
func (d *Daemon) IsAlive() bool {
	d.lock.RLock()
	var alive = d.active
	d.lock.RUnlock()

	return alive
} // func (d *Daemon) IsAlive() bool

// Banish clears the Daemon's active flag, telling components to shut down.
func (d *Daemon) Banish() error {
	var (
		err         error
		ctx, cancel = context.WithTimeout(context.Background(), time.Second*3)
	)
	defer cancel()

	d.lock.Lock()
	d.active = false
	d.lock.Unlock()

	d.cancel()
	<-d.sched.Stop().Done()

	if d.dnssd != nil {
		d.dnssd.Shutdown()
	}

	if err = d.web.Shutdown(ctx); err != nil {
		d.log.Printf("[ERROR] Failed to shutdown web server: %s\n",
			err.Error())
	}

	if ctx.Err() != nil {
		err = ctx.Err()
		d.log.Printf("[ERROR] Failed to gracefully shut down web server: %s\n",
			ctx.Err().Error())
		d.web.Close() // nolint: errcheck
	}

	if cerr := d.store.Close(); cerr != nil {
		d.log.Printf("[ERROR] Cannot close notification store: %s\n",
			cerr.Error())
		if err == nil {
			err = cerr
		}
	}

	if d.bus != nil {
		d.bus.Close() // nolint: errcheck
	}

	return err
} // func (d *Daemon) Banish() error

// schedule registers the periodic jobs.
func (d *Daemon) schedule() error {
	var (
		err  error
		jobs = []struct {
			name string
			spec string
			fn   func()
		}{
			{"recipe", fmt.Sprintf("@every %s", d.cfg.Recipe.Interval), d.refreshRecipe},
			{"calendar", fmt.Sprintf("@every %s", d.cfg.Calendar.Interval), d.refreshCalendar},
			{"push", pushSchedule, d.checkActive},
		}
	)

	for _, j := range jobs {
		if _, err = d.sched.AddFunc(j.spec, j.fn); err != nil {
			d.log.Printf("[ERROR] Cannot schedule %s job (%q): %s\n",
				j.name,
				j.spec,
				err.Error())
			return err
		}
	}

	return nil
} // func (d *Daemon) schedule() error

func (d *Daemon) refreshRecipe() {
	var rec, err = d.recipe.Refresh(d.ctx)

	if err != nil {
		d.log.Printf("[ERROR] Recipe refresh failed, keeping %q: %s\n",
			rec.Title,
			err.Error())
	}
} // func (d *Daemon) refreshRecipe()

func (d *Daemon) refreshCalendar() {
	if err := d.calendar.Refresh(d.ctx, d.now()); err != nil {
		d.log.Printf("[ERROR] Calendar refresh failed: %s\n",
			err.Error())
	}
} // func (d *Daemon) refreshCalendar()

func (d *Daemon) watchConfig() {
	if err := config.Watch(d.ctx, d.cfgPath, d.reloadConfig); err != nil {
		d.log.Printf("[ERROR] Cannot watch configuration file %s: %s\n",
			d.cfgPath,
			err.Error())
	}
} // func (d *Daemon) watchConfig()

// reloadConfig applies the settings that can change while we are running.
// Everything else requires a restart.
func (d *Daemon) reloadConfig(cfg *config.Config) {
	d.log.Printf("[INFO] Configuration changed, %d devices and %d calendars\n",
		len(cfg.Devices),
		len(cfg.Calendar.Feeds))

	if err := common.SetMinLogLevel(cfg.LogLevel); err != nil {
		d.log.Printf("[ERROR] Cannot set log level %q: %s\n",
			cfg.LogLevel,
			err.Error())
	}

	d.devices.UpdateDevices(cfg.Devices)
	d.calendar.SetFeeds(cfg.Calendar.Feeds)

	go d.refreshCalendar()
} // func (d *Daemon) reloadConfig(cfg *config.Config)

// snapshot serializes the current list of active notifications.
func (d *Daemon) snapshot() ([]byte, error) {
	var push = objects.Push{
		Type: objects.PushTypeNotifications,
		Data: d.store.Active(d.now()),
	}

	return ffjson.Marshal(&push)
} // func (d *Daemon) snapshot() ([]byte, error)

// signature identifies the set of active notifications, so we can tell
// when it changes without anyone touching the store.
func (d *Daemon) signature(active []objects.Alert) string {
	var ids = make([]string, len(active))

	for i, a := range active {
		ids[i] = alertID(a)
	}

	return strings.Join(ids, ",")
} // func (d *Daemon) signature(active []objects.Alert) string

// publish sends the current list to all subscribers.
func (d *Daemon) publish() {
	var (
		active = d.store.Active(d.now())
		push   = objects.Push{Type: objects.PushTypeNotifications, Data: active}
	)

	var buf, err = ffjson.Marshal(&push)
	if err != nil {
		d.log.Printf("[ERROR] Cannot serialize notification list: %s\n",
			err.Error())
		return
	}

	// The Hub holds on to buf, so it must not go back to the pool.
	d.hub.Publish(buf)

	d.pLock.Lock()
	d.lastPush = d.signature(active)
	d.pLock.Unlock()

	d.announce(active)
} // func (d *Daemon) publish()

// checkActive publishes the list if it changed since the last push,
// because a reminder entered or left its window or a notification expired.
func (d *Daemon) checkActive() {
	var sig = d.signature(d.store.Active(d.now()))

	d.pLock.Lock()
	var changed = sig != d.lastPush
	d.pLock.Unlock()

	if changed {
		d.log.Printf("[DEBUG] Active notifications changed, pushing update\n")
		d.publish()
	}
} // func (d *Daemon) checkActive()

// announce queues urgent alerts for the desktop that have not been shown
// yet.
func (d *Daemon) announce(active []objects.Alert) {
	if d.bus == nil {
		return
	}

	d.pLock.Lock()
	defer d.pLock.Unlock()

	var current = make(map[string]bool, len(active))

	for _, a := range active {
		var id = alertID(a)
		current[id] = true

		if a.Rank() != objects.PriorityUrgent.Rank() || d.announced[id] {
			continue
		}

		select {
		case d.Queue <- a:
			d.announced[id] = true
		default:
			d.log.Printf("[WARN] Desktop notification queue is full, skipping %s\n", id)
		}
	}

	for id := range d.announced {
		if !current[id] {
			delete(d.announced, id)
		}
	}
} // func (d *Daemon) announce(active []objects.Alert)

func alertID(a objects.Alert) string {
	switch x := a.(type) {
	case *objects.Notification:
		return x.ID
	case *objects.TriggeredReminder:
		return x.ID + "@" + x.TargetTime
	default:
		return ""
	}
} // func alertID(a objects.Alert) string

func (d *Daemon) notifyLoop() {
	defer d.log.Println("[TRACE] Quitting notifyLoop")

	var err error

	for {
		select {
		case <-d.ctx.Done():
			return
		case m := <-d.Queue:
			var title, body = m.Payload()
			d.log.Printf("[DEBUG] Received Notification: %s\n%s\n",
				title,
				body)

			if err = d.notify(m); err != nil {
				d.log.Printf("[ERROR] Failed to post Notification %q: %s\n",
					title,
					err.Error())
			}
		}
	}
} // func (d *Daemon) notifyLoop()

func (d *Daemon) notify(n objects.Alert) error {
	var (
		err        error
		obj        = d.bus.Object(notifyObj, notifyPath)
		head, body string
	)

	if obj == nil {
		err = fmt.Errorf("Did not find object %s (%s) on session bus",
			notifyObj,
			notifyPath)
		d.log.Printf("[ERROR] %s\n", err.Error())
		return err
	}

	head, body = n.Payload()

	var res = obj.Call(
		notifyMethod,
		0,
		common.AppName,
		uint32(0),
		"",
		head,
		body,
		[]string{},
		map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(byte(2)),
		},
		int32(0),
	)

	if res.Err != nil {
		d.log.Printf("[ERROR] Cannot send Notification %q: %s\n",
			head,
			res.Err.Error())
		return res.Err
	}

	return nil
} // func (d *Daemon) notify(n objects.Alert) error
