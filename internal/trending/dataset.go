package trending

import (
	"bytes"
	"encoding/json"

	"emperror.dev/errors"
)

// Metadata is the metadata object shared by the raw and processed datasets.
// Keys not modelled here are carried in Extra and written back unchanged.
type Metadata struct {
	LastUpdated    string `json:"last_updated"`
	Count          int    `json:"count"`
	Source         string `json:"source,omitempty"`
	TotalMerged    *int   `json:"total_merged,omitempty"`
	NewAdded       *int   `json:"new_added,omitempty"`
	FallbackReason string `json:"fallback_reason,omitempty"`

	Cleaned       bool `json:"cleaned,omitempty"`
	OriginalCount *int `json:"original_count,omitempty"`
	CleanedCount  *int `json:"cleaned_count,omitempty"`
	MaxItems      *int `json:"max_items,omitempty"`
	MaxDays       *int `json:"max_days,omitempty"`

	ProcessedAt          string         `json:"processed_at,omitempty"`
	TotalRepositories    *int           `json:"total_repositories,omitempty"`
	LanguageDistribution map[string]int `json:"language_distribution,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var metadataKeys = []string{
	"last_updated", "count", "source", "total_merged", "new_added", "fallback_reason",
	"cleaned", "original_count", "cleaned_count", "max_items", "max_days",
	"processed_at", "total_repositories", "language_distribution",
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range metadataKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		p.Extra = all
	}
	*m = Metadata(p)
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	data, err := marshal(plain(m))
	if err != nil || len(m.Extra) == 0 {
		return data, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, v := range m.Extra {
		if _, ok := all[k]; !ok {
			all[k] = v
		}
	}
	return marshal(all)
}

// Int returns a pointer to n, for the optional metadata counters.
func Int(n int) *int {
	return &n
}

// Dataset is the raw dataset: merged upstream records, newest first.
type Dataset struct {
	Metadata     Metadata `json:"metadata"`
	Repositories []Record `json:"repositories"`
}

// DecodeDataset decodes a raw dataset document. Numbers inside records are
// kept as json.Number so they are written back exactly as read.
func DecodeDataset(data []byte) (*Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, NewError(ErrValidation, "decode dataset", err)
	}
	return &ds, nil
}

// DecodeRecords decodes an upstream JSON array of repository objects.
func DecodeRecords(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, errors.Wrap(err, "decode records")
	}
	return records, nil
}

// Contributor is one entry of the upstream builtBy list.
type Contributor struct {
	Username string `json:"username"`
	Href     string `json:"href"`
}

// Repository is a cleaned, display-ready record in the processed dataset.
type Repository struct {
	Author             string `json:"author"`
	Name               string `json:"name"`
	FullName           string `json:"full_name"`
	URL                string `json:"url"`
	Description        string `json:"description"`
	Language           string `json:"language"`
	Stars              int    `json:"stars"`
	Forks              int    `json:"forks"`
	CurrentPeriodStars int    `json:"current_period_stars"`
	StarsText          string `json:"stars_text"`
	ForksText          string `json:"forks_text"`
	TrendingStarsText  string `json:"trending_stars_text"`
	LanguageColor      string `json:"language_color"`

	BuiltBy   []Contributor `json:"built_by,omitempty"`
	FirstSeen string        `json:"first_seen,omitempty"`
}

// ProcessedDataset is the enriched dataset sorted by stars.
type ProcessedDataset struct {
	Metadata     Metadata     `json:"metadata"`
	Repositories []Repository `json:"repositories"`
	Languages    []string     `json:"languages"`
}
