package store

import (
	"context"
	"fmt"
)

const DefaultBatchLimit = 500

type Client struct {
	backend Backend
	limit   int
}

var _ DocumentStore = (*Client)(nil)

// NewClient wraps a backend. limit caps the number of operations per batch.
func NewClient(backend Backend, limit int) *Client {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	return &Client{backend: backend, limit: limit}
}

func (c *Client) BatchLimit() int { return c.limit }

func (c *Client) Get(ctx context.Context, path string) (*Document, error) {
	if err := ValidateDocPath(path); err != nil {
		return nil, err
	}
	return c.backend.Get(ctx, path)
}

func (c *Client) Query(ctx context.Context, q Query) ([]*Document, error) {
	if err := ValidateCollectionPath(q.Collection); err != nil {
		return nil, err
	}
	return c.backend.Query(ctx, q)
}

func (c *Client) Set(ctx context.Context, path string, data map[string]any, opts ...SetOption) error {
	return c.Batch().Set(path, data, opts...).Commit(ctx)
}

func (c *Client) Update(ctx context.Context, path string, fields map[string]any, preconds ...Precondition) error {
	return c.Batch().Update(path, fields, preconds...).Commit(ctx)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Batch().Delete(path).Commit(ctx)
}

func (c *Client) Batch() *Batch {
	return &Batch{client: c}
}

// Batch accumulates writes until Commit. It is not safe for concurrent use.
type Batch struct {
	client *Client
	ops    []Op
	err    error
}

func (b *Batch) add(op Op) *Batch {
	if b.err != nil {
		return b
	}
	if err := ValidateDocPath(op.Path); err != nil {
		b.err = err
		return b
	}
	b.ops = append(b.ops, op)
	return b
}

func (b *Batch) Create(path string, data map[string]any) *Batch {
	return b.add(Op{Kind: OpCreate, Path: path, Data: data})
}

func (b *Batch) Set(path string, data map[string]any, opts ...SetOption) *Batch {
	op := Op{Kind: OpSet, Path: path, Data: data}
	for _, opt := range opts {
		opt(&op)
	}
	return b.add(op)
}

func (b *Batch) Update(path string, fields map[string]any, preconds ...Precondition) *Batch {
	op := Op{Kind: OpUpdate, Path: path, Data: fields}
	for _, p := range preconds {
		p(&op)
	}
	return b.add(op)
}

func (b *Batch) Delete(path string) *Batch {
	return b.add(Op{Kind: OpDelete, Path: path})
}

func (b *Batch) Len() int { return len(b.ops) }

func (b *Batch) Ops() []Op { return append([]Op(nil), b.ops...) }

// Commit applies every queued operation or none of them.
func (b *Batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.ops) == 0 {
		return nil
	}
	if len(b.ops) > b.client.limit {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(b.ops), b.client.limit)
	}
	return b.client.backend.Apply(ctx, b.ops)
}
