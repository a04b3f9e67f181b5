package mem

import (
	"runtime"
	"sort"
	"sync"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
)

// Sink keeps the documents in memory. It is the default index: cheap,
// concurrent safe, gone on restart.
type Sink struct {
	mutex sync.RWMutex
	data  map[string]email.Document
	log   lib.Logger
}

func New() *Sink {
	return NewWithLogger(nil)
}

func NewWithLogger(logger lib.Logger) *Sink {
	if logger == nil {
		logger = &lib.NoLog{}
	}
	return &Sink{
		data: make(map[string]email.Document),
		log:  logger,
	}
}

func (s *Sink) Put(doc email.Document) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[doc.ID] = doc
	s.log.Printf("Document saved: id=%q subject=%q", doc.ID, doc.Subject)
	return nil
}

func (s *Sink) UpdateCategory(id, category string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	doc, ok := s.data[id]
	if !ok {
		return lib.ErrDocumentNotFound
	}
	doc.Category = category
	s.data[id] = doc
	return nil
}

func (s *Sink) ClearAll() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data = make(map[string]email.Document)
	runtime.GC()
	return nil
}

func (s *Sink) Search(filter email.Filter) ([]email.Document, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	results := make([]email.Document, 0)
	for _, doc := range s.data {
		if filter.Matches(doc) {
			results = append(results, doc)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Date.After(results[j].Date)
	})
	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results, nil
}

func (s *Sink) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data = make(map[string]email.Document)
	return nil
}
