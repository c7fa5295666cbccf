// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sessions keeps per-browser view state and polls the chain for it.

Each browser gets a session id in a cookie. The Store maps the id to a
Session holding that browser's voter and admin views; the wallet behind
them is shared by every session.

Start schedules a cron job (robfig/cron) that refreshes every connected
voter view each poll interval and evicts sessions idle for longer than
Config.IdleTimeout.
*/
package sessions
