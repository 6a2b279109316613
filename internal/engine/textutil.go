package engine

import (
	"github.com/anatolykoptev/go-kit/strutil"
)

// The crawler UA is served the legacy server-rendered markup instead of the script-tag payload.
const UserAgentGooglebot = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	if limit <= 0 {
		return s
	}
	return strutil.TruncateWith(s, limit, suffix)
}
