// Package memstore is an in-process document store. Each commit works on a
// copy of the document map and swaps it in only when every operation
// succeeded, so a failed batch leaves nothing behind.
package memstore

import (
	"context"
	"sync"
	"time"

	"ndara/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	docs  map[string]*store.Document
	clock func() time.Time

	failNext  error
	failAtOp  int
	failAtErr error
	commits   int
}

var _ store.Backend = (*Store)(nil)

type Option func(*Store)

func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func New(opts ...Option) *Store {
	s := &Store{
		docs:     map[string]*store.Document{},
		clock:    time.Now,
		failAtOp: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient returns a store client over a fresh in-memory backend.
func NewClient(limit int, opts ...Option) (*store.Client, *Store) {
	s := New(opts...)
	return store.NewClient(s, limit), s
}

// FailNextCommit makes the next Apply return err without applying anything.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// FailAtOp makes the next Apply fail after index ops have been applied to
// its working copy, simulating a commit that breaks halfway.
func (s *Store) FailAtOp(index int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAtOp = index
	s.failAtErr = err
}

// Commits counts successfully applied batches.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

func (s *Store) Get(ctx context.Context, path string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(doc), nil
}

func (s *Store) Query(ctx context.Context, q store.Query) ([]*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*store.Document
	for _, doc := range s.docs {
		if doc.Collection != q.Collection || !store.Matches(doc.Data, q.Filters) {
			continue
		}
		out = append(out, clone(doc))
	}
	return store.Finish(out, q), nil
}

func (s *Store) Apply(ctx context.Context, ops []store.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	failAt, failErr := s.failAtOp, s.failAtErr
	s.failAtOp, s.failAtErr = -1, nil

	working := make(map[string]*store.Document, len(s.docs)+len(ops))
	for k, v := range s.docs {
		working[k] = v
	}
	now := s.clock()
	for i, op := range ops {
		if i == failAt {
			return failErr
		}
		next, err := store.ApplyOp(working[op.Path], op, now)
		if err != nil {
			return err
		}
		if next == nil {
			delete(working, op.Path)
			continue
		}
		working[op.Path] = next
	}
	s.docs = working
	s.commits++
	return nil
}

// Paths lists stored paths under collection, for assertions in tests.
func (s *Store) Paths(collection string) []string {
	docs, _ := s.Query(context.Background(), store.Query{Collection: collection})
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Path)
	}
	return out
}

// Len is the total number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func clone(d *store.Document) *store.Document {
	c := *d
	c.Data = store.CloneData(d.Data)
	return &c
}
