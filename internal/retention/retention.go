// Package retention bounds the size and age of a stored dataset.
package retention

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/stahnma/gh-trending/internal/process"
	"github.com/stahnma/gh-trending/internal/trending"
)

// Policy limits a dataset. Zero values disable the corresponding cap.
type Policy struct {
	MaxItems   int
	MaxAgeDays int
}

// Outcome describes what Trim did to a document.
type Outcome int

const (
	// OutcomeTrimmed means records were removed and the metadata rewritten.
	OutcomeTrimmed Outcome = iota
	// OutcomeMissingRepositories means the document has no repositories key.
	OutcomeMissingRepositories
	// OutcomeEmpty means the repositories list is empty.
	OutcomeEmpty
	// OutcomeWithinPolicy means nothing exceeded the policy.
	OutcomeWithinPolicy
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTrimmed:
		return "trimmed"
	case OutcomeMissingRepositories:
		return "missing repositories"
	case OutcomeEmpty:
		return "empty"
	case OutcomeWithinPolicy:
		return "within policy"
	default:
		return "unknown"
	}
}

// Changed reports whether the document was modified and needs writing.
func (o Outcome) Changed() bool {
	return o == OutcomeTrimmed
}

// Trim applies policy to doc in place. Records older than MaxAgeDays by
// their first_seen are dropped first; records without a usable first_seen
// are kept. Then the first MaxItems remaining records are kept. Order is
// never changed and kept records are not re-encoded.
func Trim(doc *trending.Document, policy Policy, now time.Time) Outcome {
	if !doc.HasRepositories() {
		return OutcomeMissingRepositories
	}
	original := len(doc.Repositories)
	if original == 0 {
		return OutcomeEmpty
	}

	kept := doc.Repositories
	if policy.MaxAgeDays > 0 {
		kept = dropOlderThan(kept, now.AddDate(0, 0, -policy.MaxAgeDays))
	}
	if policy.MaxItems > 0 && len(kept) > policy.MaxItems {
		kept = kept[:policy.MaxItems]
	}
	if len(kept) == original {
		return OutcomeWithinPolicy
	}

	doc.Repositories = kept
	m := &doc.Metadata
	m.LastUpdated = trending.FormatTime(now)
	m.Count = len(kept)
	m.Cleaned = true
	m.OriginalCount = trending.Int(original)
	m.CleanedCount = trending.Int(len(kept))
	m.MaxItems = trending.Int(policy.MaxItems)
	m.MaxDays = nil
	if policy.MaxAgeDays > 0 {
		m.MaxDays = trending.Int(policy.MaxAgeDays)
	}
	resummarize(doc)
	return OutcomeTrimmed
}

// resummarize recomputes the aggregates a processed document carries so they
// describe the kept records. Raw documents have none and are left alone.
func resummarize(doc *trending.Document) {
	m := &doc.Metadata
	rawLanguages, hasLanguages := doc.Extra["languages"]
	if m.TotalRepositories == nil && m.LanguageDistribution == nil && !hasLanguages {
		return
	}
	if m.TotalRepositories != nil {
		m.TotalRepositories = trending.Int(len(doc.Repositories))
	}

	distribution := make(map[string]int)
	for _, raw := range doc.Repositories {
		var rec struct {
			Language string `json:"language"`
		}
		_ = json.Unmarshal(raw, &rec)
		if rec.Language == "" {
			rec.Language = process.UnknownLanguage
		}
		distribution[rec.Language]++
	}
	if m.LanguageDistribution != nil {
		m.LanguageDistribution = distribution
	}

	if hasLanguages && string(rawLanguages) != "null" {
		languages := make([]string, 0, len(distribution))
		for lang := range distribution {
			languages = append(languages, lang)
		}
		sort.Strings(languages)
		if data, err := json.Marshal(languages); err == nil {
			doc.Extra["languages"] = data
		}
	}
}

func dropOlderThan(records []json.RawMessage, cutoff time.Time) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(records))
	for _, raw := range records {
		var stamp struct {
			FirstSeen any `json:"first_seen"`
		}
		if err := json.Unmarshal(raw, &stamp); err == nil {
			if t, ok := trending.ParseFirstSeen(stamp.FirstSeen); ok && t.Before(cutoff) {
				continue
			}
		}
		out = append(out, raw)
	}
	return out
}
