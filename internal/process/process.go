// Package process turns the raw dataset into the processed, display-ready
// dataset.
package process

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/stahnma/gh-trending/internal/trending"
)

// Process validates and cleans a raw dataset document. The document must be
// a JSON object whose repositories member is an array; anything else fails
// with trending.ErrValidation. Elements that are not objects are logged and
// skipped. The result is sorted by stars, highest first, keeping input order
// among equal counts.
func Process(raw []byte, now time.Time, log logrus.FieldLogger) (*trending.ProcessedDataset, error) {
	const op = "process dataset"

	top, err := decodeObject(raw)
	if err != nil {
		return nil, trending.NewError(trending.ErrValidation, op, err)
	}

	var meta trending.Metadata
	if m, ok := top["metadata"]; ok && !isNull(m) {
		if err := json.Unmarshal(m, &meta); err != nil {
			return nil, trending.NewError(trending.ErrValidation, op, errors.Wrap(err, "metadata is not an object"))
		}
	}

	reposRaw, ok := top["repositories"]
	if !ok {
		return nil, trending.NewError(trending.ErrValidation, op, errors.New("missing repositories field"))
	}
	var elems []json.RawMessage
	if isNull(reposRaw) || json.Unmarshal(reposRaw, &elems) != nil {
		return nil, trending.NewError(trending.ErrValidation, op, errors.New("repositories is not a list"))
	}
	log.Infof("validated dataset with %d repositories", len(elems))

	repos := make([]trending.Repository, 0, len(elems))
	distribution := make(map[string]int)
	for i, elem := range elems {
		obj, err := decodeObjectValues(elem)
		if err != nil {
			log.WithField("index", i).WithError(err).Error("repository is not an object, skipping")
			continue
		}
		repo := decodeRecord(i, obj, log)
		repos = append(repos, repo)
		distribution[repo.Language]++
	}

	sort.SliceStable(repos, func(i, j int) bool {
		return repos[i].Stars > repos[j].Stars
	})

	languages := make([]string, 0, len(distribution))
	for lang := range distribution {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	meta.ProcessedAt = trending.FormatTime(now)
	meta.TotalRepositories = trending.Int(len(repos))
	meta.LanguageDistribution = distribution

	log.WithField("languages", len(languages)).Infof("processed %d repositories", len(repos))
	log.Debugf("language distribution: %v", distribution)

	return &trending.ProcessedDataset{
		Metadata:     meta,
		Repositories: repos,
		Languages:    languages,
	}, nil
}

func isNull(m json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(m), []byte("null"))
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	if isNull(data) {
		return nil, errors.New("document is null")
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Wrap(err, "document is not a JSON object")
	}
	return top, nil
}

// decodeObjectValues decodes an object keeping numbers as json.Number.
func decodeObjectValues(data json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Errorf("unexpected %T", v)
	}
	return obj, nil
}
