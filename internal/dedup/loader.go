package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go-intern-harvester/internal/logger"
)

// DataSuffix marks the persisted data files under a scope.
const DataSuffix = ".json"

// ObjectStore is the read-only storage capability the loader needs.
type ObjectStore interface {
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// Scope is a bucket plus the key prefix of one record category.
type Scope struct {
	Bucket string
	Prefix string
}

func (s Scope) String() string {
	return s.Bucket + "/" + s.Prefix
}

// Loader rebuilds the HistorySet from every data file under a scope.
type Loader struct {
	store ObjectStore
	log   logger.Logger
}

func NewLoader(store ObjectStore, log logger.Logger) *Loader {
	return &Loader{store: store, log: log}
}

// Load never fails. An unreadable file is skipped; an unreachable scope yields
// an empty set so the run treats every posting as new.
func (l *Loader) Load(ctx context.Context, scope Scope) HistorySet {
	log := l.log.With(logger.String("scope", scope.String()))

	keys, err := l.store.List(ctx, scope.Bucket, scope.Prefix)
	if err != nil {
		log.Error("Listing history failed, treating every posting as new", logger.Error(err))
		return NewHistorySet()
	}

	history := NewHistorySet()
	files := 0
	for _, key := range keys {
		if !strings.HasSuffix(key, DataSuffix) {
			continue
		}
		ids, err := l.loadFile(ctx, scope.Bucket, key)
		if err != nil {
			log.Warn("Skipping unreadable history file", logger.String("key", key), logger.Error(err))
			continue
		}
		for _, id := range ids {
			history.ids[id] = struct{}{}
		}
		files++
	}

	log.Info("History loaded", logger.Int("files", files), logger.Int("ids", history.Len()))
	return history
}

// historyItem picks the id out of one persisted record; other fields are ignored.
type historyItem struct {
	ID json.RawMessage `json:"linkareer_id"`
}

func (l *Loader) loadFile(ctx context.Context, bucket, key string) ([]int64, error) {
	data, err := l.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return ParseIDs(data)
}

// ParseIDs extracts the linkareer_id of every record in a JSON array. Whole
// floats such as 12345.0 count as integers. Records without a numeric integral
// id are ignored; a document that is not an array is an error.
func ParseIDs(data []byte) ([]int64, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	ids := make([]int64, 0, len(items))
	for _, raw := range items {
		var item historyItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if id, ok := integralID(item.ID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// integralID accepts a JSON number with no fractional part. Strings and null
// are rejected.
func integralID(raw json.RawMessage) (int64, bool) {
	var n json.Number
	if len(raw) == 0 || raw[0] == '"' || json.Unmarshal(raw, &n) != nil || n == "" {
		return 0, false
	}
	if id, err := n.Int64(); err == nil {
		return id, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
