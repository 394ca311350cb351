// /home/krylon/go/src/github.com/blicero/skylight/database/dbqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 15. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-16 17:54:57 krylon>

package database

import "github.com/blicero/skylight/database/query"

var dbQueries = map[query.ID]string{
	query.NotificationAdd: `
INSERT INTO notification (nid, title, message, priority, icon, created, expires)
VALUES                   (  ?,     ?,       ?,        ?,    ?,       ?,       ?)
`,
	query.NotificationGetAll: `
SELECT
    nid,
    title,
    message,
    priority,
    icon,
    created,
    expires
FROM notification
ORDER BY seq
`,
	query.NotificationClear: "DELETE FROM notification",
	query.RecurringAdd: `
INSERT INTO recurring (rid, title, message, priority, icon, weekday, day_of_month, hour, show_before)
VALUES                (  ?,     ?,       ?,        ?,    ?,       ?,            ?,    ?,           ?)
`,
	query.RecurringGetAll: `
SELECT
    rid,
    title,
    message,
    priority,
    icon,
    weekday,
    day_of_month,
    hour,
    show_before
FROM recurring
ORDER BY seq
`,
	query.RecurringClear: "DELETE FROM recurring",
}
