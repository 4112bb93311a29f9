package commands

import (
	"context"
	"os"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stahnma/gh-trending/internal/cache"
	"github.com/stahnma/gh-trending/internal/config"
	"github.com/stahnma/gh-trending/internal/fetch"
	ghub "github.com/stahnma/gh-trending/internal/github"
	"github.com/stahnma/gh-trending/internal/logging"
	"github.com/stahnma/gh-trending/internal/pipeline"
	"github.com/stahnma/gh-trending/internal/retention"
	"github.com/stahnma/gh-trending/internal/store"
)

// App holds shared application state.
type App struct {
	Config   config.Config
	Cache    *cache.Cache
	Log      *logrus.Logger
	GHClient ghub.Client
	Store    store.Store
	GitSHA   string
	GitDirty string

	pipeline *pipeline.Pipeline
}

// NewApp creates a new App from the given configuration.
func NewApp(cfg config.Config, gitSHA, gitDirty string) (*App, error) {
	log := logging.New(os.Stderr, cfg.DebugMode)

	c, err := cache.LoadFromFile(cfg.CacheFile, cfg.CacheTTL)
	if c == nil {
		return nil, errors.Wrap(err, "loading cache")
	}
	if err != nil {
		log.WithError(err).Warn("ignoring corrupt cache file")
	}

	return &App{
		Config:   cfg,
		Cache:    c,
		Log:      log,
		GitSHA:   gitSHA,
		GitDirty: gitDirty,
	}, nil
}

// ensureClient creates the GitHub client if it doesn't exist.
func (a *App) ensureClient() error {
	if a.GHClient != nil {
		return nil
	}
	if a.Config.GitHubToken == "" {
		return errors.New("GITHUB_TOKEN must be set")
	}
	a.GHClient = ghub.NewClient(a.Config.GitHubToken)
	return nil
}

// ensureStore creates the dataset store selected by the configuration.
func (a *App) ensureStore(ctx context.Context) error {
	if a.Store != nil {
		return nil
	}
	switch a.Config.StoreBackend {
	case config.BackendS3:
		s, err := store.NewS3StoreFromEnv(ctx, a.Config.AWSRegion, a.Config.S3Bucket, a.Config.S3Prefix)
		if err != nil {
			return err
		}
		a.Store = s
	default:
		a.Store = store.NewFileStore(a.Config.DataDir)
	}
	return nil
}

// Pipeline returns the stage runner, building it on first use.
func (a *App) Pipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	if a.pipeline != nil {
		return a.pipeline, nil
	}
	if err := a.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if err := a.ensureStore(ctx); err != nil {
		return nil, errors.Wrap(err, "opening dataset store")
	}

	var fetcher fetch.Fetcher = fetch.NewClient(a.Config.APIURL, a.Log)
	if !a.Config.NoCache {
		fetcher = fetch.NewCached(fetcher, a.Cache, a.Log)
	}

	var fallback fetch.Fetcher
	if a.Config.FallbackSearch {
		if err := a.ensureClient(); err == nil {
			fallback = ghub.NewSearcher(a.GHClient, ghub.DefaultLimit, a.Log)
		} else {
			a.Log.Debug("GitHub search fallback disabled, no GITHUB_TOKEN")
		}
	}

	a.pipeline = pipeline.New(a.Store, fetcher, fallback, a.Log, pipeline.Options{
		Language:        a.Config.Language,
		Period:          a.Config.Period,
		MaxTotal:        a.Config.MaxTotal,
		RawPolicy:       retention.Policy{MaxItems: a.Config.RawMaxItems, MaxAgeDays: a.Config.RawMaxDays},
		ProcessedPolicy: retention.Policy{MaxItems: a.Config.ProcessedMaxItems},
		StageTimeout:    a.Config.StageTimeout,
		RawName:         store.RawName,
		ProcessedName:   store.ProcessedName,
	})
	return a.pipeline, nil
}

// SaveCache saves the cache to disk if caching is enabled.
func (a *App) SaveCache() error {
	if !a.Config.NoCache {
		return a.Cache.SaveToFile(a.Config.CacheFile)
	}
	return nil
}

// NewRootCommand creates the root cobra command with all subcommands.
func (a *App) NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   os.Args[0],
		Short: "Collect, merge and publish trending GitHub repositories.",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVar(&a.Config.NoCache, "no-cache", a.Config.NoCache, "Disable caching")
	rootCmd.PersistentFlags().StringVarP(&a.Config.Language, "language", "l", a.Config.Language, "Only fetch repositories in this language")
	rootCmd.PersistentFlags().StringVarP(&a.Config.Period, "period", "p", a.Config.Period, "Trending period: daily, weekly or monthly")
	rootCmd.PersistentFlags().StringVar(&a.Config.DataDir, "data-dir", a.Config.DataDir, "Directory holding the datasets")

	rootCmd.AddCommand(a.newFetchCommand())
	rootCmd.AddCommand(a.newProcessCommand())
	rootCmd.AddCommand(a.newCleanupCommand())
	rootCmd.AddCommand(a.newRunCommand())
	rootCmd.AddCommand(a.newScheduleCommand())
	rootCmd.AddCommand(a.newStatsCommand())
	rootCmd.AddCommand(a.newExportCommand())
	rootCmd.AddCommand(a.newServeCommand())
	rootCmd.AddCommand(a.newVersionCommand())
	rootCmd.AddCommand(a.newClearCacheCommand())

	return rootCmd
}
