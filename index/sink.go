package index

import (
	"fmt"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/cfg"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/index/bolt"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/index/mem"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/index/sqlite"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
)

// Sink stores the canonical documents and makes them searchable. All
// implementations tolerate concurrent calls: each write is independently
// atomic, there is no cross-document transaction.
type Sink interface {
	// Put is an idempotent upsert by document ID
	Put(doc email.Document) error
	// UpdateCategory returns lib.ErrDocumentNotFound on an unknown ID
	UpdateCategory(id, category string) error
	// ClearAll deletes every document
	ClearAll() error
	// Search returns the matching documents, most recent first
	Search(filter email.Filter) ([]email.Document, error)
	Close() error
}

// verify interface
var (
	_ Sink = &mem.Sink{}
	_ Sink = &bolt.Sink{}
	_ Sink = &sqlite.Sink{}
)

func NewSink(config cfg.IndexConfig, logger lib.Logger) (Sink, error) {
	switch config.Type {
	case cfg.MEMORY:
		return mem.NewWithLogger(logger), nil
	case cfg.BOLT:
		return bolt.NewSinkWithLogger(config.File, logger)
	case cfg.SQLITE:
		return sqlite.NewSinkWithLogger(config.File, logger)
	default:
		return nil, fmt.Errorf("unsupported index type %q", config.Type)
	}
}
