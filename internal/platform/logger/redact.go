package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

type treatment uint8

const (
	keep treatment = iota
	drop
	digest
)

// Values under keys containing one of these never reach the log: credentials,
// contact details and anything the user wrote about their health.
var sensitiveFragments = []string{
	"token", "authorization", "password", "secret", "cookie", "api_key", "apikey",
	"email", "refresh",
	"medical", "disabilit", "doctor_notes", "allergies", "payload", "mood_label", "feelings",
}

// Identifiers stay correlatable across lines without being readable.
var digestSuffixes = []string{"user_id", "session_id"}

func classify(key string) treatment {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return keep
	}
	for _, f := range sensitiveFragments {
		if strings.Contains(key, f) {
			return drop
		}
	}
	for _, s := range digestSuffixes {
		if strings.HasSuffix(key, s) {
			return digest
		}
	}
	return keep
}

// scrubber rewrites key/value pairs per classify. The zero value passes
// everything through.
type scrubber struct {
	enabled bool
	salt    string
}

// LOG_REDACTION_ENABLED=false turns scrubbing off; LOG_HASH_SALT salts digests.
func loadScrubber() scrubber {
	s := scrubber{enabled: true, salt: strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		s.enabled = false
	}
	return s
}

var activeScrubber = sync.OnceValue(loadScrubber)

// pairs returns a scrubbed copy of kv. A trailing key without a value is kept
// as is.
func (s scrubber) pairs(kv []any) []any {
	if !s.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key := stringify(out[i])
		out[i] = key
		out[i+1] = s.value(key, out[i+1])
	}
	return out
}

func (s scrubber) value(key string, v any) any {
	switch classify(key) {
	case drop:
		return redacted
	case digest:
		return s.digest(v)
	}
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = s.value(k, inner)
		}
		return m
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = s.value(k, inner)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, inner := range t {
			l[i] = s.value("", inner)
		}
		return l
	case string:
		if looksLikeJWT(t) || strings.HasPrefix(strings.ToLower(t), "bearer ") {
			return redacted
		}
	}
	return v
}

func (s scrubber) digest(v any) string {
	raw := stringify(v)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
