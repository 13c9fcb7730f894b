// Package sanitize redacts PII from arbitrary nested structures before
// they leave the process. It runs synchronously on the host request
// path, so everything here is allocation-light and regex patterns are
// compiled once.
package sanitize

import (
	"regexp"
	"strings"
)

// Redaction markers. They are fixed points of the sanitizer: running a
// sanitized value through again changes nothing.
const (
	Redacted      = "[REDACTED]"
	RedactedEmail = "[REDACTED_EMAIL]"
	RedactedCard  = "[REDACTED_CARD]"
	RedactedSSN   = "[REDACTED_SSN]"
)

// DefaultBlockedFields is the baseline field-name blocklist. Matching is
// case-insensitive substring, so "password" also covers "userPassword".
var DefaultBlockedFields = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"apikey",
	"authorization",
	"cookie",
	"session",
	"ssn",
	"credit_card",
	"card_number",
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	cardPattern  = regexp.MustCompile(`\b(?:\d{4}[ -]?){3}\d{4}\b`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
)

// Value recursively rewrites v: values under blocked keys become the
// Redacted marker, string values matching an email, card-number, or SSN
// pattern become their type-specific marker, and everything else passes
// through unchanged. It never panics; unexpected shapes degrade to
// pass-through.
func Value(v any, blocked []string) (out any) {
	defer func() {
		if recover() != nil {
			out = v
		}
	}()
	return walk(v, blocked)
}

// Headers applies only the key blocklist to a flat header map. Header
// values are opaque tokens, so no pattern detection runs here.
func Headers(h map[string]string, blocked []string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		if keyBlocked(k, blocked) {
			out[k] = Redacted
		} else {
			out[k] = v
		}
	}
	return out
}

func walk(v any, blocked []string) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if keyBlocked(k, blocked) {
				out[k] = Redacted
			} else {
				out[k] = walk(val, blocked)
			}
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, val := range t {
			if keyBlocked(k, blocked) {
				out[k] = Redacted
			} else {
				out[k] = String(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = walk(val, blocked)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, val := range t {
			out[i] = String(val)
		}
		return out
	default:
		return v
	}
}

// String applies the pattern detectors to a single string value.
func String(s string) string {
	s = emailPattern.ReplaceAllString(s, RedactedEmail)
	s = cardPattern.ReplaceAllString(s, RedactedCard)
	s = ssnPattern.ReplaceAllString(s, RedactedSSN)
	return s
}

func keyBlocked(key string, blocked []string) bool {
	lower := strings.ToLower(key)
	for _, b := range blocked {
		if b != "" && strings.Contains(lower, strings.ToLower(b)) {
			return true
		}
	}
	return false
}
