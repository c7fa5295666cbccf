// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/chainvote/chart"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"barStyle":  barStyle,
	"ago":       humanize.Time,
	"shortHash": shortHash,
}).ParseFS(templateFS, "templates/*.html"))

type page struct {
	Title   string
	CSRF    string
	Refresh int // seconds, 0 disables the Refresh header
	Snap    interface{}
}

// barStyle sizes a results bar. Percentages come from chart.Compute, so
// the value is always a plain number. Bars with no votes stay zero width.
func barStyle(b chart.Bar) template.CSS {
	style := fmt.Sprintf("width:%.1f%%;background:%s", b.Percentage, b.Color)
	if b.Percentage > 0 {
		style += ";min-width:2px"
	}
	return template.CSS(style)
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:10] + "..." + h[len(h)-4:]
}

func refreshSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	s := int(d / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}

// render executes a page into a buffer first so a template error still
// produces a clean 500.
func render(w http.ResponseWriter, name string, data page) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if data.Refresh > 0 {
		w.Header().Set("Refresh", strconv.Itoa(data.Refresh))
	}
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
