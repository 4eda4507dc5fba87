// Package textfmt formats numbers, dates and labels for display.
package textfmt

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/verte-zerg/repolens/internal/model"
)

// Unknown is shown in place of values the payload did not carry.
const Unknown = "n/a"

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// Compact formats n as 950, 1.2K or 3.4M.
func Compact(n int64) string {
	v := float64(n)
	switch {
	case math.Abs(v) >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case math.Abs(v) >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// CompactCount formats a possibly missing count.
func CompactCount(c model.Count) string {
	if !c.Known {
		return Unknown
	}
	return Compact(c.Value)
}

// Grouped formats n with thousands separators, e.g. 51,200.
func Grouped(n int64) string {
	return printer.Sprintf("%d", n)
}

// GroupedCount formats a possibly missing count with thousands separators.
func GroupedCount(c model.Count) string {
	if !c.Known {
		return Unknown
	}
	return Grouped(c.Value)
}

// Bytes formats an approximate byte weight.
func Bytes(v float64) string {
	return Grouped(int64(math.Round(v))) + " bytes"
}

// Percent formats p with one decimal.
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Decimal formats an optional float with one decimal.
func Decimal(v *float64) string {
	if v == nil {
		return Unknown
	}
	return fmt.Sprintf("%.1f", *v)
}

// Date formats t as "Jan 2, 2006", or "unknown" for the zero time.
func Date(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("Jan 2, 2006")
}

// ShortDate formats t as "Jan 2".
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	return t.Format("Jan 2")
}

// Title capitalizes each word of s.
func Title(s string) string {
	return titler.String(s)
}

// Truncate shortens s to width display columns, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return runewidth.Truncate(s, 1, "")
	}
	return runewidth.Truncate(s, width, "…")
}

// PadRight pads s with spaces to width display columns.
func PadRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// PadLeft right-aligns s within width display columns.
func PadLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}

// Duration formats a processing time in milliseconds.
func Duration(d time.Duration) string {
	return Grouped(d.Milliseconds()) + " ms"
}
