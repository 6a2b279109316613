package sources

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Field defaults of the canonical result schema.
const (
	unknownValue     = "Unknown"
	defaultDuration  = "00:00:00"
	defaultPublished = "0d"
)

var digitRunRe = regexp.MustCompile(`\d+`)

// maxDurationField bounds each clock field so the seconds total cannot overflow.
const maxDurationField = 1_000_000

// ViewsToInt concatenates every digit run in text and parses the result.
// "1,234,567 views" → 1234567. Empty, digit-less or overflowing input yields 0.
func ViewsToInt(text string) int {
	runs := digitRunRe.FindAllString(text, -1)
	if len(runs) == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.Join(runs, ""))
	if err != nil {
		return 0
	}
	return n
}

var datePrefixReplacer = strings.NewReplacer("Premiered ", "", "Published on ", "", ",", "")

// StripDatePrefix removes the leading phrase markers and grouping commas from a date label.
// The date itself is not parsed.
func StripDatePrefix(date string) string {
	return strings.TrimSpace(datePrefixReplacer.Replace(date))
}

// relativeUnits maps "<n> <unit> ago" phrases to compact tokens.
// Units are mutually exclusive substrings, so order is irrelevant.
var relativeUnits = []struct {
	phrase string
	token  string
}{
	{" years ago", "y"}, {" year ago", "y"},
	{" months ago", "mo"}, {" month ago", "mo"},
	{" weeks ago", "w"}, {" week ago", "w"},
	{" days ago", "d"}, {" day ago", "d"},
	{" hours ago", "h"}, {" hour ago", "h"},
	{" minutes ago", "min"}, {" minute ago", "min"},
	{" seconds ago", "sec"}, {" second ago", "sec"},
}

// ConvertTime rewrites a relative time phrase to its compact token:
// "3 years ago" → "3y", "1 minute ago" → "1min". Unknown phrases pass through unchanged.
func ConvertTime(s string) string {
	for _, u := range relativeUnits {
		if strings.Contains(s, u.phrase) {
			return strings.Replace(s, u.phrase, u.token, 1)
		}
	}
	return s
}

// FormatDuration normalizes a clock-style duration ("4:13", "1:02:03").
// A token with exactly one separator formats as two zero-padded fields (hh:mm),
// anything else as hh:mm:ss. Unparsable or absurdly large input yields "00:00:00".
func FormatDuration(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultDuration
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return defaultDuration
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > maxDurationField {
			return defaultDuration
		}
		total = total*60 + n
	}

	if len(parts) == 2 {
		return fmt.Sprintf("%02d:%02d", total/60, total%60)
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// orDefault returns the trimmed value, or def when it is blank.
func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

// resultOr is orDefault for a decoded JSON value that may be absent.
func resultOr(r gjson.Result, def string) string {
	if !r.Exists() {
		return def
	}
	return orDefault(r.String(), def)
}
