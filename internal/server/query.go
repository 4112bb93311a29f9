package server

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/stahnma/gh-trending/internal/trending"
)

// Paging defaults for /api/trending.
const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

// Query is a parsed /api/trending request.
type Query struct {
	Language string
	Search   string
	Sort     string
	Page     int
	PerPage  int
}

// ParseQuery reads a Query from URL parameters, falling back to defaults
// for missing or invalid values.
func ParseQuery(v url.Values) Query {
	q := Query{
		Language: strings.TrimSpace(v.Get("language")),
		Search:   strings.TrimSpace(v.Get("q")),
		Sort:     v.Get("sort"),
		Page:     1,
		PerPage:  DefaultPerPage,
	}
	switch q.Sort {
	case "stars", "trending", "forks", "name":
	default:
		q.Sort = "stars"
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get("per_page")); err == nil && n > 0 {
		q.PerPage = n
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	return q
}

// Stats summarizes a filtered listing.
type Stats struct {
	TotalProjects int `json:"total_projects"`
	TotalStars    int `json:"total_stars"`
	LanguageCount int `json:"language_count"`
	TrendingStars int `json:"trending_stars"`
}

// Page is the /api/trending response body.
type Page struct {
	Items       []trending.Repository `json:"items"`
	Page        int                   `json:"page"`
	PerPage     int                   `json:"per_page"`
	Total       int                   `json:"total"`
	TotalPages  int                   `json:"total_pages"`
	Stats       Stats                 `json:"stats"`
	LastUpdated string                `json:"last_updated"`
}

// Apply filters, sorts and paginates repos. repos is not modified.
func (q Query) Apply(repos []trending.Repository) Page {
	filtered := q.filter(repos)
	q.sort(filtered)

	p := Page{
		Items:   []trending.Repository{},
		Page:    q.Page,
		PerPage: q.PerPage,
		Total:   len(filtered),
		Stats:   stats(filtered),
	}
	p.TotalPages = (p.Total + q.PerPage - 1) / q.PerPage
	if q.Page <= p.TotalPages {
		start := (q.Page - 1) * q.PerPage
		end := start + q.PerPage
		if end > len(filtered) {
			end = len(filtered)
		}
		p.Items = filtered[start:end]
	}
	return p
}

func (q Query) filter(repos []trending.Repository) []trending.Repository {
	needle := strings.ToLower(q.Search)
	out := make([]trending.Repository, 0, len(repos))
	for _, r := range repos {
		if q.Language != "" && r.Language != q.Language {
			continue
		}
		if needle != "" {
			text := strings.ToLower(r.FullName + " " + r.Description + " " + r.Language)
			if !strings.Contains(text, needle) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func (q Query) sort(repos []trending.Repository) {
	var less func(a, b trending.Repository) bool
	switch q.Sort {
	case "trending":
		less = func(a, b trending.Repository) bool { return a.CurrentPeriodStars > b.CurrentPeriodStars }
	case "forks":
		less = func(a, b trending.Repository) bool { return a.Forks > b.Forks }
	case "name":
		less = func(a, b trending.Repository) bool { return strings.ToLower(a.FullName) < strings.ToLower(b.FullName) }
	default:
		less = func(a, b trending.Repository) bool { return a.Stars > b.Stars }
	}
	sort.SliceStable(repos, func(i, j int) bool { return less(repos[i], repos[j]) })
}

func stats(repos []trending.Repository) Stats {
	s := Stats{TotalProjects: len(repos)}
	langs := make(map[string]struct{})
	for _, r := range repos {
		s.TotalStars += r.Stars
		s.TrendingStars += r.CurrentPeriodStars
		langs[r.Language] = struct{}{}
	}
	s.LanguageCount = len(langs)
	return s
}
