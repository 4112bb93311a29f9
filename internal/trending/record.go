package trending

import (
	"strings"
	"time"
)

// Dataset sources recorded in metadata.
const (
	SourceTrendingAPI  = "GitHub Trending API"
	SourceGitHubSearch = "GitHub Search API"
)

// FirstSeenKey is the record key merge stamps on admission.
const FirstSeenKey = "first_seen"

// Record is one upstream repository entry as stored in the raw dataset.
// Keys the pipeline does not know about are kept as-is.
type Record map[string]any

// URL returns the trimmed identity key, or "" when absent or not a string.
func (r Record) URL() string {
	s, _ := r["url"].(string)
	return strings.TrimSpace(s)
}

// FirstSeen returns the admission time stamped by merge.
func (r Record) FirstSeen() (time.Time, bool) {
	return ParseFirstSeen(r[FirstSeenKey])
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ParseFirstSeen parses a first_seen value. Anything other than an RFC 3339
// string reports false.
func ParseFirstSeen(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatTime is the timestamp layout used in datasets.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
