package bolt

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"fmt"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	bolt "go.etcd.io/bbolt"
)

const (
	metadataBucket  = "metadata"
	documentsBucket = "documents"
	versionKey      = "version"
	boltFileVersion = 1
)

// Sink persists the documents in a single file bolt database. Document
// bodies are zlib compressed on write.
type Sink struct {
	dbFile string
	db     *bolt.DB
	log    lib.Logger
}

func NewSink(filename string) (*Sink, error) {
	return NewSinkWithLogger(filename, nil)
}

func NewSinkWithLogger(filename string, logger lib.Logger) (*Sink, error) {
	if logger == nil {
		logger = &lib.NoLog{}
	}
	options := bolt.DefaultOptions
	options.Timeout = 10 * time.Second

	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", filename, err)
	}

	db, err := bolt.Open(filename, 0600, options)
	if err != nil {
		return nil, err
	}

	sink := &Sink{
		dbFile: filename,
		db:     db,
		log:    logger,
	}
	if err = sink.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *Sink) init() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return err
		}
		version, err := SerializeInt(boltFileVersion)
		if err != nil {
			return err
		}
		if err = bucket.Put([]byte(versionKey), version); err != nil {
			return err
		}
		_, err = tx.CreateBucketIfNotExists([]byte(documentsBucket))
		return err
	})
}

func (s *Sink) Close() error {
	return s.db.Close()
}

func (s *Sink) Put(doc email.Document) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(documentsBucket))
		record, err := newRecord(doc)
		if err != nil {
			return fmt.Errorf("cannot encode document %q: %w", doc.ID, err)
		}
		data, err := SerializeObject(record)
		if err != nil {
			return fmt.Errorf("cannot encode document %q: %w", doc.ID, err)
		}
		if err = bucket.Put([]byte(doc.ID), data); err != nil {
			return fmt.Errorf("cannot save document %q: %w", doc.ID, err)
		}
		s.log.Printf("Document saved: id=%q size=%d", doc.ID, len(data))
		return nil
	})
}

func (s *Sink) UpdateCategory(id, category string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(documentsBucket))
		data := bucket.Get([]byte(id))
		if data == nil {
			return lib.ErrDocumentNotFound
		}
		record, err := DeserializeObject[docRecord](data)
		if err != nil {
			return fmt.Errorf("cannot decode document %q: %w", id, err)
		}
		record.Meta.Category = category
		updated, err := SerializeObject(record)
		if err != nil {
			return fmt.Errorf("cannot encode document %q: %w", id, err)
		}
		return bucket.Put([]byte(id), updated)
	})
}

func (s *Sink) ClearAll() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(documentsBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(documentsBucket))
		return err
	})
}

func (s *Sink) Search(filter email.Filter) ([]email.Document, error) {
	results := make([]email.Document, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(documentsBucket))
		return bucket.ForEach(func(key, value []byte) error {
			record, err := DeserializeObject[docRecord](value)
			if err != nil {
				return fmt.Errorf("cannot decode document %q: %w", string(key), err)
			}
			doc, err := record.document()
			if err != nil {
				return fmt.Errorf("cannot decode document %q: %w", string(key), err)
			}
			if filter.Matches(doc) {
				results = append(results, doc)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Date.After(results[j].Date)
	})
	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}

// Backup writes a consistent copy of the database to filename.
func (s *Sink) Backup(filename string) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(filename, 0644)
	})
}
