// Package gormstore keeps documents in a single relational table. A batch is
// one database transaction; version columns guard every write so two
// transactions racing on the same document cannot both win.
package gormstore

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ndara/internal/store"
)

type DocumentRecord struct {
	Path       string         `gorm:"primaryKey;size:767" json:"path"`
	Collection string         `gorm:"index;size:767;not null" json:"collection"`
	Parent     string         `gorm:"index;size:767" json:"parent"`
	DocID      string         `gorm:"size:255;not null" json:"docId"`
	Data       datatypes.JSON `gorm:"not null" json:"data"`
	Version    int64          `gorm:"not null;default:1" json:"version"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (DocumentRecord) TableName() string { return "documents" }

type Store struct {
	db    *gorm.DB
	clock func() time.Time
}

var _ store.Backend = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db, clock: time.Now}
}

// Migrate creates or updates the documents table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DocumentRecord{})
}

func (s *Store) Get(ctx context.Context, path string) (*store.Document, error) {
	doc, err := s.load(s.db.WithContext(ctx), path)
	if err != nil {
		return nil, classify(err)
	}
	if doc == nil {
		return nil, store.ErrNotFound
	}
	return doc, nil
}

func (s *Store) Query(ctx context.Context, q store.Query) ([]*store.Document, error) {
	tx := s.db.WithContext(ctx).Where("collection = ?", q.Collection)
	for _, f := range q.Filters {
		// Only string equality is pushed down; the in-memory pass below
		// handles every other value type uniformly across dialects.
		if v, ok := f.Value.(string); ok && !strings.Contains(f.Field, ".") {
			tx = tx.Where(datatypes.JSONQuery("data").Equals(v, f.Field))
		}
	}
	var records []DocumentRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]*store.Document, 0, len(records))
	for i := range records {
		doc, err := toDocument(&records[i])
		if err != nil {
			return nil, err
		}
		if store.Matches(doc.Data, q.Filters) {
			out = append(out, doc)
		}
	}
	return store.Finish(out, q), nil
}

func (s *Store) Apply(ctx context.Context, ops []store.Op) error {
	now := s.clock().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			if err := s.applyOne(tx, op, now); err != nil {
				return err
			}
		}
		return nil
	})
	return classify(err)
}

func (s *Store) applyOne(tx *gorm.DB, op store.Op, now time.Time) error {
	existing, err := s.load(tx, op.Path)
	if err != nil {
		return err
	}
	next, err := store.ApplyOp(existing, op, now)
	if err != nil {
		return err
	}

	if next == nil {
		if existing == nil {
			return nil
		}
		return tx.Where("path = ?", op.Path).Delete(&DocumentRecord{}).Error
	}

	raw, err := json.Marshal(next.Data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", op.Path, err)
	}

	if existing == nil {
		collection, id := store.SplitDoc(op.Path)
		parent, _ := store.SplitDoc(collection)
		return tx.Create(&DocumentRecord{
			Path:       op.Path,
			Collection: collection,
			Parent:     parent,
			DocID:      id,
			Data:       datatypes.JSON(raw),
			Version:    next.Version,
			CreatedAt:  next.CreatedAt,
			UpdatedAt:  next.UpdatedAt,
		}).Error
	}

	res := tx.Model(&DocumentRecord{}).
		Where("path = ? AND version = ?", op.Path, existing.Version).
		Updates(map[string]any{
			"data":       datatypes.JSON(raw),
			"version":    next.Version,
			"updated_at": next.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrConflict, op.Path)
	}
	return nil
}

func (s *Store) load(tx *gorm.DB, path string) (*store.Document, error) {
	var rec DocumentRecord
	err := tx.Where("path = ?", path).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDocument(&rec)
}

func toDocument(rec *DocumentRecord) (*store.Document, error) {
	data := map[string]any{}
	if len(rec.Data) > 0 {
		if err := json.Unmarshal(rec.Data, &data); err != nil {
			return nil, fmt.Errorf("decode %s: %w", rec.Path, err)
		}
	}
	return &store.Document{
		Path:       rec.Path,
		ID:         rec.DocID,
		Collection: rec.Collection,
		Data:       data,
		Version:    rec.Version,
		CreatedAt:  rec.CreatedAt.UTC(),
		UpdatedAt:  rec.UpdatedAt.UTC(),
	}, nil
}

// classify maps driver failures onto store errors. Store sentinels pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{store.ErrNotFound, store.ErrAlreadyExists, store.ErrConflict, store.ErrInvalidPath} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return &store.UnavailableError{Reason: err.Error()}
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	}
	if strings.Contains(msg, "SQLSTATE 42501") || strings.Contains(msg, "SQLSTATE 28P01") {
		return fmt.Errorf("%w: %v", store.ErrPermissionDenied, err)
	}
	return err
}
