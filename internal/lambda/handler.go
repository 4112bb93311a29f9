// Package lambda runs a full update as an AWS Lambda invocation and
// publishes a dated snapshot of the processed dataset.
package lambda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/stahnma/gh-trending/internal/commands"
	"github.com/stahnma/gh-trending/internal/store"
)

// SnapshotDateLayout is substituted into S3_OBJECT_KEY when it has a %s verb.
const SnapshotDateLayout = "2006-Jan-02"

// Handler runs the pipeline for one invocation.
type Handler struct {
	app     *commands.App
	publish store.Store
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithPublishStore replaces the S3 store that snapshots are written to.
func WithPublishStore(s store.Store) Option {
	return func(h *Handler) { h.publish = s }
}

// WithClock sets the clock used to date snapshots.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// NewHandler returns a Lambda handler function that runs a full update and
// uploads the processed dataset to S3.
func NewHandler(app *commands.App, opts ...Option) func(context.Context, json.RawMessage) (string, error) {
	h := &Handler{app: app, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h.Invoke
}

// Invoke runs one full update. The event payload is ignored.
func (h *Handler) Invoke(ctx context.Context, _ json.RawMessage) (string, error) {
	p, err := h.app.Pipeline(ctx)
	if err != nil {
		return "", err
	}

	report := p.FullUpdate(ctx)
	if !report.OK {
		var errs error
		for _, r := range report.Results {
			if !r.OK {
				errs = errors.Append(errs, errors.Wrap(r.Err, r.Stage))
			}
		}
		return "", errors.Wrapf(errs, "full update %s failed", report.RunID)
	}
	if err := h.app.SaveCache(); err != nil {
		h.app.Log.WithError(err).Warn("failed to save cache")
	}

	key := h.app.Config.S3ObjectKey
	if key == "" {
		return fmt.Sprintf("full update %s completed", report.RunID), nil
	}
	if strings.Contains(key, "%s") {
		key = fmt.Sprintf(key, h.now().Format(SnapshotDateLayout))
	}

	var buf bytes.Buffer
	if err := h.app.ExportJSON(ctx, &buf, false); err != nil {
		return "", errors.Wrap(err, "export")
	}
	if buf.Len() == 0 {
		return "", errors.New("export produced no output")
	}

	if h.publish == nil {
		if h.app.Config.S3Bucket == "" {
			return "", errors.New("S3_BUCKET_NAME must be set when S3_OBJECT_KEY is set")
		}
		s, err := store.NewS3StoreFromEnv(ctx, h.app.Config.AWSRegion, h.app.Config.S3Bucket, "")
		if err != nil {
			return "", err
		}
		h.publish = s
	}
	if err := h.publish.Write(ctx, key, buf.Bytes()); err != nil {
		return "", errors.Wrap(err, "failed to upload snapshot")
	}

	h.app.Log.WithFields(logrus.Fields{"run_id": report.RunID, "key": key}).Info("snapshot published")
	return "Lambda executed successfully and output uploaded to S3", nil
}
