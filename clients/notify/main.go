// /home/krylon/go/src/github.com/blicero/skylight/clients/notify/main.go
// -*- mode: go; coding: utf-8; -*-
// Created on 16. 08. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 20:02:17 krylon>

// notify posts notifications and recurring reminders to a Skylight hub,
// lists the active ones and deletes them.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/blicero/skylight/clients/clientlib"
	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/objects"
)

func main() {
	var (
		err                       error
		client                    *clientlib.Client
		srv, id, title, msg, icon string
		prio, expires, del        string
		expiresHours, before      float64
		weekday, day, hour        int
		list                      bool
	)

	flag.StringVar(&srv, "server", fmt.Sprintf("localhost:%d", common.DefaultPort), "The hub to talk to")
	flag.StringVar(&id, "id", "", "ID of the new notification, generated if empty")
	flag.StringVar(&title, "title", "", "Title of the notification")
	flag.StringVar(&msg, "message", "", "Message body")
	flag.StringVar(&prio, "priority", "", "urgent, normal or info")
	flag.StringVar(&icon, "icon", "", "Icon name")
	flag.StringVar(&expires, "expires", "", "Expiration time, like 2026-10-19T18:00:00")
	flag.Float64Var(&expiresHours, "expires-hours", 0, "Expire after this many hours")
	flag.IntVar(&weekday, "weekday", -1, "Repeat every week on this day (0 = Monday)")
	flag.IntVar(&day, "day", 0, "Repeat every month on this day")
	flag.IntVar(&hour, "hour", -1, "Hour of the recurring reminder (default 8)")
	flag.Float64Var(&before, "before", 0, "Show the recurring reminder this many hours in advance")
	flag.BoolVar(&list, "list", false, "List the active notifications")
	flag.StringVar(&del, "delete", "", "Delete the notification or rule with this ID")

	flag.Parse()

	if client, err = clientlib.NewClient(srv); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create client: %s\n", err.Error())
		os.Exit(1)
	}

	switch {
	case list:
		err = listActive(client)
	case del != "":
		var res *objects.DeleteResponse
		if res, err = client.Delete(del); err == nil {
			fmt.Printf("Deleted %s\n", res.Deleted)
		}
	case weekday >= 0 || day > 0:
		var in = objects.RecurringInput{
			Rule: objects.RuleSpec{ShowBeforeHours: before},
		}

		fillCommon(&in.ID, &in.Title, &in.Message, &in.Priority, &in.Icon, id, title, msg, prio, icon)

		if weekday >= 0 {
			in.Rule.Weekday = objects.Int(weekday)
		}
		if day > 0 {
			in.Rule.DayOfMonth = objects.Int(day)
		}
		if hour >= 0 {
			in.Rule.Hour = objects.Int(hour)
		}

		var rule *objects.RecurringRule
		if rule, err = client.AddRecurring(&in); err == nil {
			fmt.Printf("Added %s: %s (%s)\n", rule.ID, rule.Title, rule.Rule.String())
		}
	default:
		var in objects.NotificationInput

		fillCommon(&in.ID, &in.Title, &in.Message, &in.Priority, &in.Icon, id, title, msg, prio, icon)

		if expires != "" {
			in.Expires = objects.Str(expires)
		}
		if expiresHours != 0 {
			in.ExpiresHours = &expiresHours
		}

		var n *objects.Notification
		if n, err = client.SubmitNotification(&in); err == nil {
			fmt.Printf("Added %s: %s\n", n.ID, n.Title)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}

// fillCommon sets the optional fields the user supplied on the command line.
func fillCommon(id, title, msg **string, prio **objects.Priority, icon **string, vID, vTitle, vMsg, vPrio, vIcon string) {
	if vID != "" {
		*id = objects.Str(vID)
	}
	if vTitle != "" {
		*title = objects.Str(vTitle)
	}
	if vMsg != "" {
		*msg = objects.Str(vMsg)
	}
	if vPrio != "" {
		var p = objects.Priority(vPrio)
		*prio = &p
	}
	if vIcon != "" {
		*icon = objects.Str(vIcon)
	}
} // func fillCommon(...)

func listActive(c *clientlib.Client) error {
	var items, err = c.Active()

	if err != nil {
		return err
	}

	for _, i := range items {
		var when = i.Created
		if i.Recurring {
			when = i.TargetTime
		}

		fmt.Printf("%-8s  %-6s  %s  %s\n", i.ID, i.Priority, when, i.Title)
		if i.Message != "" {
			fmt.Printf("          %s\n", i.Message)
		}
	}

	return nil
} // func listActive(c *clientlib.Client) error
