// Package merge folds newly fetched records into the stored raw dataset.
package merge

import (
	"encoding/json"
	"time"

	"github.com/stahnma/gh-trending/internal/trending"
)

// Merge returns a new dataset holding the admitted records of newRecords
// followed by the records of existing, truncated to maxTotal entries.
//
// A record is admitted when its url is non-empty and not already present,
// either in existing or earlier in newRecords. Admitted records are stamped
// with first_seen = now unless they carry one. A maxTotal <= 0 disables the
// cap. existing may be nil on the first run. Neither input is modified.
func Merge(newRecords []trending.Record, existing *trending.Dataset, maxTotal int, source string, now time.Time) *trending.Dataset {
	var old []trending.Record
	var extra map[string]json.RawMessage
	if existing != nil {
		old = existing.Repositories
		for k, v := range existing.Metadata.Extra {
			if extra == nil {
				extra = make(map[string]json.RawMessage, len(existing.Metadata.Extra))
			}
			extra[k] = v
		}
	}

	seen := make(map[string]struct{}, len(old)+len(newRecords))
	for _, r := range old {
		if u := r.URL(); u != "" {
			seen[u] = struct{}{}
		}
	}

	stamp := trending.FormatTime(now)
	admitted := make([]trending.Record, 0, len(newRecords))
	for _, r := range newRecords {
		u := r.URL()
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		rec := r.Clone()
		if _, ok := rec.FirstSeen(); !ok {
			rec[trending.FirstSeenKey] = stamp
		}
		admitted = append(admitted, rec)
	}

	merged := make([]trending.Record, 0, len(admitted)+len(old))
	merged = append(merged, admitted...)
	merged = append(merged, old...)
	if maxTotal > 0 && len(merged) > maxTotal {
		merged = merged[:maxTotal]
	}

	// new_added counts every admitted record, even those the cap dropped.
	// On the first run it is the length of the capped result.
	added := len(admitted)
	if existing == nil {
		added = len(merged)
	}

	meta := trending.Metadata{
		LastUpdated: stamp,
		Count:       len(merged),
		Source:      source,
		TotalMerged: trending.Int(len(merged)),
		NewAdded:    trending.Int(added),
		Extra:       extra,
	}

	return &trending.Dataset{Metadata: meta, Repositories: merged}
}
