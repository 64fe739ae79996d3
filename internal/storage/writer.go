package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"go-intern-harvester/internal/scraper"
)

// Putter is the write capability ResultWriter needs.
type Putter interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// ResultWriter persists a crawl result as one JSON data file under the scope
// the history loader reads back.
type ResultWriter struct {
	store  Putter
	bucket string
	prefix string
	now    func() time.Time
}

func NewResultWriter(store Putter, bucket, prefix string) *ResultWriter {
	return &ResultWriter{store: store, bucket: bucket, prefix: prefix, now: time.Now}
}

// Save writes postings and returns the object key. An empty batch writes nothing.
func (w *ResultWriter) Save(ctx context.Context, postings []scraper.Posting) (string, error) {
	if len(postings) == 0 {
		return "", nil
	}

	data, err := json.MarshalIndent(postings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal postings: %w", err)
	}

	key := path.Join(w.prefix, fmt.Sprintf("intern_%s.json", w.now().UTC().Format("20060102_150405")))
	if err := w.store.Put(ctx, w.bucket, key, data, "application/json"); err != nil {
		return "", err
	}
	return key, nil
}
