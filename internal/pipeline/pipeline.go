// Package pipeline runs the fetch, process and cleanup stages against a
// dataset store and reports each stage as a Result.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stahnma/gh-trending/internal/fetch"
	"github.com/stahnma/gh-trending/internal/format"
	"github.com/stahnma/gh-trending/internal/merge"
	"github.com/stahnma/gh-trending/internal/process"
	"github.com/stahnma/gh-trending/internal/retention"
	"github.com/stahnma/gh-trending/internal/store"
	"github.com/stahnma/gh-trending/internal/trending"
)

// Stage names.
const (
	StageFetch            = "fetch"
	StageProcess          = "process"
	StageCleanupRaw       = "cleanup-raw"
	StageCleanupProcessed = "cleanup-processed"
)

// DefaultStageTimeout bounds a single stage.
const DefaultStageTimeout = 5 * time.Minute

// Result is the outcome of one stage.
type Result struct {
	Stage   string
	OK      bool
	Err     error
	Summary string
}

// Missing reports whether the stage found no document to work on.
func (r Result) Missing() bool {
	return errors.Is(r.Err, trending.ErrNotFound)
}

// Report is the outcome of a full update.
type Report struct {
	RunID   string
	OK      bool
	Results []Result
}

// Options configures a Pipeline.
type Options struct {
	Language        string
	Period          string
	MaxTotal        int
	RawPolicy       retention.Policy
	ProcessedPolicy retention.Policy
	StageTimeout    time.Duration
	RawName         string
	ProcessedName   string
}

// DefaultOptions returns the standard schedule settings.
func DefaultOptions() Options {
	return Options{
		Period:          "weekly",
		MaxTotal:        100,
		RawPolicy:       retention.Policy{MaxItems: 200, MaxAgeDays: 30},
		ProcessedPolicy: retention.Policy{MaxItems: 50},
		StageTimeout:    DefaultStageTimeout,
		RawName:         store.RawName,
		ProcessedName:   store.ProcessedName,
	}
}

// Pipeline runs stages one at a time against a store.
type Pipeline struct {
	mu       sync.Mutex
	store    store.Store
	fetcher  fetch.Fetcher
	fallback fetch.Fetcher
	log      logrus.FieldLogger
	opts     Options
	now      func() time.Time
}

// New creates a Pipeline. fallback may be nil.
func New(st store.Store, fetcher, fallback fetch.Fetcher, log logrus.FieldLogger, opts Options) *Pipeline {
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = DefaultStageTimeout
	}
	if opts.RawName == "" {
		opts.RawName = store.RawName
	}
	if opts.ProcessedName == "" {
		opts.ProcessedName = store.ProcessedName
	}
	return &Pipeline{
		store:    st,
		fetcher:  fetcher,
		fallback: fallback,
		log:      log,
		opts:     opts,
		now:      time.Now,
	}
}

// Fetch fetches the trending list, merges it into the raw dataset and
// writes the result.
func (p *Pipeline) Fetch(ctx context.Context) Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetch(ctx, p.log.WithField("stage", StageFetch))
}

// Process rebuilds the processed dataset from the raw dataset.
func (p *Pipeline) Process(ctx context.Context) Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.process(ctx, p.log.WithField("stage", StageProcess))
}

// Cleanup trims both datasets. It returns one result per dataset.
func (p *Pipeline) Cleanup(ctx context.Context) []Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cleanup(ctx, p.log)
}

// FullUpdate runs fetch, process and cleanup in order. A failed fetch does
// not stop processing, and cleanup runs when either earlier stage succeeded.
// The update is OK when fetch or process succeeded.
func (p *Pipeline) FullUpdate(ctx context.Context) Report {
	p.mu.Lock()
	defer p.mu.Unlock()

	runID := uuid.NewString()
	log := p.log.WithField("run_id", runID)
	start := p.now()
	log.Info("starting full update")

	report := Report{RunID: runID}

	fetched := p.fetch(ctx, log.WithField("stage", StageFetch))
	report.Results = append(report.Results, fetched)
	if !fetched.OK {
		log.WithError(fetched.Err).Warn("fetch failed, processing existing data")
	}

	processed := p.process(ctx, log.WithField("stage", StageProcess))
	report.Results = append(report.Results, processed)

	if fetched.OK || processed.OK {
		report.Results = append(report.Results, p.cleanup(ctx, log)...)
	} else {
		log.Warn("skipping cleanup, no stage succeeded")
	}

	report.OK = fetched.OK || processed.OK
	entry := log.WithField("elapsed", p.now().Sub(start).Round(time.Millisecond))
	if report.OK {
		entry.Info("full update finished")
	} else {
		entry.Error("full update failed")
	}
	return report
}

func (p *Pipeline) fetch(ctx context.Context, log logrus.FieldLogger) Result {
	ctx, cancel := context.WithTimeout(ctx, p.opts.StageTimeout)
	defer cancel()

	existing, err := p.loadRaw(ctx, log)
	if err != nil {
		return failed(StageFetch, log, err)
	}

	source := trending.SourceTrendingAPI
	var reason string
	records, err := p.fetcher.Fetch(ctx, p.opts.Language, p.opts.Period)
	if err != nil {
		if p.fallback == nil {
			return failed(StageFetch, log, err)
		}
		log.WithError(err).Warn("trending API unavailable, using search fallback")
		var fbErr error
		records, fbErr = p.fallback.Fetch(ctx, p.opts.Language, p.opts.Period)
		if fbErr != nil {
			return failed(StageFetch, log, errors.Append(err, fbErr))
		}
		source = trending.SourceGitHubSearch
		reason = err.Error()
	}

	merged := merge.Merge(records, existing, p.opts.MaxTotal, source, p.now())
	merged.Metadata.FallbackReason = reason

	if err := p.write(ctx, p.opts.RawName, merged); err != nil {
		return failed(StageFetch, log, err)
	}

	summary := fmt.Sprintf("fetched %d, added %d, total %d", len(records), *merged.Metadata.NewAdded, merged.Metadata.Count)
	log.WithField("source", source).Info(summary)
	return Result{Stage: StageFetch, OK: true, Summary: summary}
}

// loadRaw returns the stored raw dataset, or nil when there is none yet.
func (p *Pipeline) loadRaw(ctx context.Context, log logrus.FieldLogger) (*trending.Dataset, error) {
	data, err := p.store.Read(ctx, p.opts.RawName)
	if errors.Is(err, trending.ErrNotFound) {
		log.Info("no raw dataset yet, starting a new one")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return trending.DecodeDataset(data)
}

func (p *Pipeline) process(ctx context.Context, log logrus.FieldLogger) Result {
	ctx, cancel := context.WithTimeout(ctx, p.opts.StageTimeout)
	defer cancel()

	raw, err := p.store.Read(ctx, p.opts.RawName)
	if err != nil {
		return failed(StageProcess, log, err)
	}

	out, err := process.Process(raw, p.now(), log)
	if err != nil {
		return failed(StageProcess, log, err)
	}
	if err := p.write(ctx, p.opts.ProcessedName, out); err != nil {
		return failed(StageProcess, log, err)
	}

	summary := fmt.Sprintf("processed %d repositories in %d languages", len(out.Repositories), len(out.Languages))
	return Result{Stage: StageProcess, OK: true, Summary: summary}
}

func (p *Pipeline) cleanup(ctx context.Context, log logrus.FieldLogger) []Result {
	ctx, cancel := context.WithTimeout(ctx, p.opts.StageTimeout)
	defer cancel()

	return []Result{
		p.trim(ctx, log.WithField("stage", StageCleanupRaw), StageCleanupRaw, p.opts.RawName, p.opts.RawPolicy),
		p.trim(ctx, log.WithField("stage", StageCleanupProcessed), StageCleanupProcessed, p.opts.ProcessedName, p.opts.ProcessedPolicy),
	}
}

func (p *Pipeline) trim(ctx context.Context, log logrus.FieldLogger, stage, name string, policy retention.Policy) Result {
	log = log.WithFields(logrus.Fields{"document": name, "max_items": policy.MaxItems, "max_days": policy.MaxAgeDays})

	data, err := p.store.Read(ctx, name)
	if errors.Is(err, trending.ErrNotFound) {
		log.Warn("document does not exist, nothing to clean")
		return Result{Stage: stage, OK: true, Err: err, Summary: name + " does not exist"}
	}
	if err != nil {
		return failed(stage, log, err)
	}

	doc, err := trending.DecodeDocument(data)
	if err != nil {
		return failed(stage, log, err)
	}

	outcome := retention.Trim(doc, policy, p.now())
	switch outcome {
	case retention.OutcomeMissingRepositories:
		log.Warn("document has no repositories field")
		return Result{Stage: stage, OK: true, Summary: name + ": " + outcome.String()}
	case retention.OutcomeEmpty, retention.OutcomeWithinPolicy:
		log.Info("nothing to clean")
		return Result{Stage: stage, OK: true, Summary: name + ": " + outcome.String()}
	}

	if err := p.write(ctx, name, doc); err != nil {
		return failed(stage, log, err)
	}
	summary := fmt.Sprintf("%s: %d -> %d", name, *doc.Metadata.OriginalCount, *doc.Metadata.CleanedCount)
	log.Info("cleaned " + summary)
	return Result{Stage: stage, OK: true, Summary: summary}
}

func (p *Pipeline) write(ctx context.Context, name string, v any) error {
	data, err := format.Encode(v)
	if err != nil {
		return trending.NewError(trending.ErrPersistence, "encode "+name, err)
	}
	return p.store.Write(ctx, name, data)
}

func failed(stage string, log logrus.FieldLogger, err error) Result {
	log.WithError(err).Error("stage failed")
	return Result{Stage: stage, Err: err, Summary: err.Error()}
}
