package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// BucketType is the retention scope of a bucket.
type BucketType string

const (
	// BucketLocal buckets survive across sessions.
	BucketLocal BucketType = "local"
	// BucketSession buckets are cleared at session end.
	BucketSession BucketType = "session"
)

// Record is one cached value and its usage counter.
type Record struct {
	Value    any `json:"value"`
	UseCount int `json:"use_count"`
}

// Bucket is the persisted form of a named record collection.
type Bucket struct {
	Records map[string]*Record `json:"records"`
	Type    BucketType         `json:"type"`
}

// SetOptions controls Set.
type SetOptions struct {
	// BucketType is used when Set creates the bucket. Defaults to session.
	BucketType BucketType
	// Overwrite replaces an existing value.
	Overwrite bool
}

// Cache is safe for concurrent use. Set is last-write-wins.
type Cache struct {
	mu      sync.Mutex
	buckets map[string]*Bucket

	local   Store
	session Store
	log     logrus.FieldLogger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLocalStore sets the store for local buckets.
func WithLocalStore(s Store) Option {
	return func(c *Cache) { c.local = s }
}

// WithSessionStore sets the store for session buckets.
func WithSessionStore(s Store) Option {
	return func(c *Cache) { c.session = s }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Cache) { c.log = l }
}

// New creates an empty cache. Without stores, buckets live only in memory.
func New(opts ...Option) *Cache {
	c := &Cache{
		buckets: make(map[string]*Bucket),
		log:     logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the value stored under key and increments its use count.
func (c *Cache) Get(bucket, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.record(bucket, key)
	if rec == nil {
		return nil, false
	}

	rec.UseCount++

	return rec.Value, true
}

// Peek returns the value and use count without counting as a use.
func (c *Cache) Peek(bucket, key string) (any, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.record(bucket, key)
	if rec == nil {
		return nil, 0, false
	}

	return rec.Value, rec.UseCount, true
}

// UseCount returns the use count of a record, or 0 when absent.
func (c *Cache) UseCount(bucket, key string) int {
	_, n, _ := c.Peek(bucket, key)
	return n
}

// Set stores value under key. When the record exists and Overwrite is false,
// Set is a no-op. Overwriting keeps the record's use count.
func (c *Cache) Set(bucket, key string, value any, opts SetOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[bucket]
	if !ok {
		typ := opts.BucketType
		if typ == "" {
			typ = BucketSession
		}

		b = &Bucket{Records: make(map[string]*Record), Type: typ}
		c.buckets[bucket] = b
	}

	if rec, exists := b.Records[key]; exists {
		if !opts.Overwrite {
			return
		}

		rec.Value = value

		return
	}

	b.Records[key] = &Record{Value: value}
}

// BucketType returns the retention scope of a bucket.
func (c *Cache) BucketType(bucket string) (BucketType, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[bucket]
	if !ok {
		return "", false
	}

	return b.Type, true
}

// Buckets returns the names of all buckets, sorted.
func (c *Cache) Buckets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.buckets))
	for name := range c.buckets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (c *Cache) record(bucket, key string) *Record {
	b, ok := c.buckets[bucket]
	if !ok {
		return nil
	}

	return b.Records[key]
}

// GetAs returns the value under key as T, incrementing its use count.
// Values restored from a store arrive as raw JSON and are decoded on first
// access.
func GetAs[T any](c *Cache, bucket, key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T

	rec := c.record(bucket, key)
	if rec == nil {
		return zero, false
	}

	v, ok := decodeRecord[T](rec)
	if !ok {
		return zero, false
	}

	rec.UseCount++

	return v, true
}

func decodeRecord[T any](rec *Record) (T, bool) {
	switch v := rec.Value.(type) {
	case T:
		return v, true
	case json.RawMessage:
		var out T
		if err := json.Unmarshal(v, &out); err != nil {
			return out, false
		}

		rec.Value = out

		return out, true
	default:
		var zero T
		return zero, false
	}
}

// storedBucket mirrors Bucket with undecoded values.
type storedBucket struct {
	Records map[string]*struct {
		Value    json.RawMessage `json:"value"`
		UseCount int             `json:"use_count"`
	} `json:"records"`
	Type BucketType `json:"type"`
}

// Restore loads every bucket from the configured stores. Buckets already in
// memory are replaced.
func (c *Cache) Restore(ctx context.Context) error {
	for _, s := range []Store{c.local, c.session} {
		if s == nil {
			continue
		}

		data, err := s.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("restore cache: %w", err)
		}

		for name, raw := range data {
			b, err := decodeBucket(raw)
			if err != nil {
				c.log.WithError(err).WithField("bucket", name).Warn("skipping unreadable cache bucket")
				continue
			}

			c.mu.Lock()
			c.buckets[name] = b
			c.mu.Unlock()
		}
	}

	c.log.WithField("buckets", len(c.Buckets())).Debug("cache restored")

	return nil
}

func decodeBucket(raw []byte) (*Bucket, error) {
	var sb storedBucket
	if err := json.Unmarshal(raw, &sb); err != nil {
		return nil, err
	}

	b := &Bucket{Records: make(map[string]*Record, len(sb.Records)), Type: sb.Type}
	if b.Type == "" {
		b.Type = BucketSession
	}

	for key, rec := range sb.Records {
		if rec == nil {
			continue
		}

		b.Records[key] = &Record{Value: rec.Value, UseCount: rec.UseCount}
	}

	return b, nil
}

// Persist writes every bucket to the store for its type. Buckets without a
// store stay in memory.
func (c *Cache) Persist(ctx context.Context) error {
	c.mu.Lock()
	encoded := make(map[string][]byte, len(c.buckets))
	types := make(map[string]BucketType, len(c.buckets))

	for name, b := range c.buckets {
		data, err := json.Marshal(b)
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("encode bucket %s: %w", name, err)
		}

		encoded[name] = data
		types[name] = b.Type
	}
	c.mu.Unlock()

	for name, data := range encoded {
		s := c.storeFor(types[name])
		if s == nil {
			continue
		}

		if err := s.Save(ctx, name, data); err != nil {
			return fmt.Errorf("persist bucket %s: %w", name, err)
		}
	}

	return nil
}

// EndSession drops all session buckets and clears the session store.
func (c *Cache) EndSession(ctx context.Context) error {
	c.mu.Lock()
	for name, b := range c.buckets {
		if b.Type == BucketSession {
			delete(c.buckets, name)
		}
	}
	c.mu.Unlock()

	if c.session != nil {
		if err := c.session.Clear(ctx); err != nil {
			return fmt.Errorf("clear session store: %w", err)
		}
	}

	c.log.Debug("session cache cleared")

	return nil
}

func (c *Cache) storeFor(t BucketType) Store {
	if t == BucketLocal {
		return c.local
	}

	return c.session
}
