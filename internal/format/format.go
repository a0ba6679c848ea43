// Package format renders jar values for people: relative times, Jackson
// counts and localized money.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DateLayout is used once a timestamp is more than a week old.
const DateLayout = "January 2, 2006"

// TimeAgo describes t relative to now, rounding to the nearest unit.
// e.g., 90s -> "2 minutes ago", 48h -> "2 days ago", 10 days -> "October 9, 2026"
func TimeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		return t.Format(DateLayout)
	}
	if diff < time.Minute {
		return "just now"
	}
	if minutes := int(math.Round(diff.Minutes())); minutes < 60 {
		return plural(minutes, "minute") + " ago"
	}
	if hours := int(math.Round(diff.Hours())); hours < 24 {
		return plural(hours, "hour") + " ago"
	}
	if days := int(math.Round(diff.Hours() / 24)); days < 7 {
		return plural(days, "day") + " ago"
	}
	return t.Format(DateLayout)
}

// CountVerbose names a donation count in Jacksons.
// e.g., 1 -> "1 Jackson", 3 -> "3 Jacksons"
func CountVerbose(n int) string {
	return plural(n, "Jackson")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Money formats an amount in minor units for the given locale,
// e.g. 2000 "usd" en -> "$20.00", de -> "$20,00".
func Money(minor int64, code string, tag language.Tag) string {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return fmt.Sprintf("%d %s", minor, strings.ToUpper(code))
	}
	scale, _ := currency.Standard.Rounding(unit)
	amount := float64(minor) / math.Pow10(scale)

	p := message.NewPrinter(tag)
	return p.Sprint(currency.Symbol(unit)) + p.Sprint(number.Decimal(amount, number.Scale(scale)))
}
