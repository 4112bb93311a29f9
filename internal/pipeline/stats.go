package pipeline

import (
	"context"

	"emperror.dev/errors"

	"github.com/stahnma/gh-trending/internal/trending"
)

// DocumentStats describes one stored dataset.
type DocumentStats struct {
	Name        string `json:"name"`
	Exists      bool   `json:"file_exists"`
	ItemCount   int    `json:"item_count"`
	LastUpdated string `json:"last_updated,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Stats reports the size and freshness of both datasets.
func (p *Pipeline) Stats(ctx context.Context) []DocumentStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return []DocumentStats{
		p.documentStats(ctx, p.opts.RawName),
		p.documentStats(ctx, p.opts.ProcessedName),
	}
}

func (p *Pipeline) documentStats(ctx context.Context, name string) DocumentStats {
	st := DocumentStats{Name: name}
	data, err := p.store.Read(ctx, name)
	if errors.Is(err, trending.ErrNotFound) {
		return st
	}
	st.Exists = true
	if err != nil {
		st.Error = err.Error()
		return st
	}
	doc, err := trending.DecodeDocument(data)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.ItemCount = len(doc.Repositories)
	st.LastUpdated = doc.Metadata.LastUpdated
	return st
}
