// Package github provides the GitHub Search fallback used when the trending
// API cannot be reached.
package github

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v68/github"
	"github.com/sirupsen/logrus"

	"github.com/stahnma/gh-trending/internal/trending"
)

// DefaultLimit is the number of repositories a fallback search returns.
const DefaultLimit = 25

// Query builds the search query for repositories created within period.
func Query(language, period string, now time.Time) string {
	var since time.Time
	switch period {
	case "daily":
		since = now.AddDate(0, 0, -1)
	case "monthly":
		since = now.AddDate(0, -1, 0)
	default:
		since = now.AddDate(0, 0, -7)
	}
	q := "created:>" + since.UTC().Format("2006-01-02")
	if language != "" {
		q += " language:" + language
	}
	return q
}

// SearchTrending returns up to limit of the most starred repositories created
// within period, shaped like trending API records.
func SearchTrending(ctx context.Context, client Client, language, period string, limit int, now time.Time) ([]trending.Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query := Query(language, period, now)

	perPage := limit
	if perPage > 100 {
		perPage = 100
	}
	options := &gh.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var records []trending.Record
	for {
		results, response, err := client.SearchRepositories(ctx, query, options)
		if err != nil {
			return nil, err
		}

		for _, repo := range results.Repositories {
			records = append(records, toRecord(repo))
			if len(records) == limit {
				return records, nil
			}
		}

		if response == nil || response.NextPage == 0 {
			break
		}
		options.Page = response.NextPage
	}
	return records, nil
}

func toRecord(repo *gh.Repository) trending.Record {
	return trending.Record{
		"author":             repo.GetOwner().GetLogin(),
		"name":               repo.GetName(),
		"url":                repo.GetHTMLURL(),
		"description":        repo.GetDescription(),
		"language":           repo.GetLanguage(),
		"stars":              repo.GetStargazersCount(),
		"forks":              repo.GetForksCount(),
		"currentPeriodStars": 0,
	}
}

// Searcher adapts SearchTrending to the fetcher interface.
type Searcher struct {
	client Client
	limit  int
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewSearcher returns a Searcher returning at most limit records per fetch.
func NewSearcher(client Client, limit int, log logrus.FieldLogger) *Searcher {
	return &Searcher{client: client, limit: limit, log: log, now: time.Now}
}

// Fetch runs a fallback search. Failures wrap trending.ErrFetch.
func (s *Searcher) Fetch(ctx context.Context, language, period string) ([]trending.Record, error) {
	s.log.WithFields(logrus.Fields{"since": period, "language": language}).Info("searching GitHub for recently created repositories")
	records, err := SearchTrending(ctx, s.client, language, period, s.limit, s.now())
	if err != nil {
		op := fmt.Sprintf("search repositories since=%s language=%q", period, language)
		return nil, trending.NewError(trending.ErrFetch, op, err)
	}
	s.log.Infof("search returned %d repositories", len(records))
	return records, nil
}
