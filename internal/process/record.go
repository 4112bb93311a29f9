package process

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/stahnma/gh-trending/internal/trending"
)

// requiredFields are the upstream keys every record is expected to carry.
var requiredFields = []string{
	"author", "name", "url", "description", "language",
	"stars", "forks", "currentPeriodStars",
}

// decodeRecord turns one upstream object into a fully defaulted Repository.
// Missing or unusable fields are logged and replaced by their default; it
// never fails.
func decodeRecord(index int, raw map[string]any, log logrus.FieldLogger) trending.Repository {
	d := &decoder{raw: raw, log: log.WithField("index", index)}

	for _, f := range requiredFields {
		if _, ok := d.lookup(f); !ok {
			d.warn(f, "missing field, using default")
		}
	}

	repo := trending.Repository{
		Author: strings.TrimSpace(d.str("author")),
		Name:   strings.TrimSpace(d.str("name")),
		URL:    strings.TrimSpace(d.str("url")),

		Description: CleanDescription(d.str("description")),
		Language:    strings.TrimSpace(d.str("language")),

		Stars:              d.count("stars"),
		Forks:              d.count("forks"),
		CurrentPeriodStars: d.count("currentPeriodStars", "current_period_stars"),

		BuiltBy: d.contributors("builtBy", "built_by"),
	}
	repo.FullName = repo.Author + "/" + repo.Name
	if repo.Language == "" {
		repo.Language = UnknownLanguage
	}
	if t, ok := trending.ParseFirstSeen(raw[trending.FirstSeenKey]); ok {
		repo.FirstSeen = trending.FormatTime(t)
	}

	repo.StarsText = FormatCount(repo.Stars)
	repo.ForksText = FormatCount(repo.Forks)
	repo.TrendingStarsText = FormatCount(repo.CurrentPeriodStars)
	repo.LanguageColor = LanguageColor(repo.Language)
	return repo
}

type decoder struct {
	raw map[string]any
	log logrus.FieldLogger
}

// lookup returns the first of keys present in the record.
func (d *decoder) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := d.raw[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func (d *decoder) warn(field, msg string) {
	d.log.WithField("field", field).Warn(msg)
}

func (d *decoder) str(key string) string {
	v, ok := d.lookup(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		d.warn(key, "not a string, using default")
		return ""
	}
	return s
}

func (d *decoder) count(keys ...string) int {
	v, ok := d.lookup(keys...)
	if !ok {
		return 0
	}
	n := SafeInt(v)
	if n < 0 {
		d.warn(keys[0], "negative count, using 0")
		return 0
	}
	return n
}

func (d *decoder) contributors(keys ...string) []trending.Contributor {
	v, ok := d.lookup(keys...)
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		d.warn(keys[0], "not a list, ignoring")
		return nil
	}
	var out []trending.Contributor
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c := trending.Contributor{
			Username: cast.ToString(m["username"]),
			Href:     cast.ToString(m["href"]),
		}
		if c.Username == "" && c.Href == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
