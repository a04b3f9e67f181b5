package sqlite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Sink persists the documents in a SQLite database with a FTS5 index over
// subject, body and sender.
type Sink struct {
	db  *sqlx.DB
	log lib.Logger
}

func NewSink(filename string) (*Sink, error) {
	return NewSinkWithLogger(filename, nil)
}

func NewSinkWithLogger(filename string, logger lib.Logger) (*Sink, error) {
	if logger == nil {
		logger = &lib.NoLog{}
	}
	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", filename, err)
	}

	db, err := sqlx.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", filename, err)
	}
	// WAL lets the API search while an account worker writes
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot enable WAL mode: %w", err)
	}
	if _, err = db.Exec("PRAGMA busy_timeout=10000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot set busy timeout: %w", err)
	}

	sink := &Sink{
		db:  db,
		log: logger,
	}
	if err = sink.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot apply schema: %w", err)
	}
	return sink, nil
}

func (s *Sink) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

func (s *Sink) Close() error {
	return s.db.Close()
}

func (s *Sink) Put(doc email.Document) error {
	from, err := json.Marshal(doc.From)
	if err != nil {
		return fmt.Errorf("cannot encode document %q: %w", doc.ID, err)
	}
	to, err := json.Marshal(doc.To)
	if err != nil {
		return fmt.Errorf("cannot encode document %q: %w", doc.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO documents (id, account_id, folder, subject, from_addrs, to_addrs, date, body_text, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			folder     = excluded.folder,
			subject    = excluded.subject,
			from_addrs = excluded.from_addrs,
			to_addrs   = excluded.to_addrs,
			date       = excluded.date,
			body_text  = excluded.body_text,
			category   = excluded.category`,
		doc.ID, doc.AccountID, doc.Folder, doc.Subject, string(from), string(to),
		doc.Date.UTC().Format(time.RFC3339), doc.Text, doc.Category,
	)
	if err != nil {
		return fmt.Errorf("cannot save document %q: %w", doc.ID, err)
	}
	s.log.Printf("Document saved: id=%q subject=%q", doc.ID, doc.Subject)
	return nil
}

func (s *Sink) UpdateCategory(id, category string) error {
	result, err := s.db.Exec("UPDATE documents SET category = ? WHERE id = ?", category, id)
	if err != nil {
		return fmt.Errorf("cannot update document %q: %w", id, err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return lib.ErrDocumentNotFound
	}
	return nil
}

func (s *Sink) ClearAll() error {
	_, err := s.db.Exec("DELETE FROM documents")
	return err
}

func (s *Sink) Search(filter email.Filter) ([]email.Document, error) {
	query := "SELECT d.id, d.account_id, d.folder, d.subject, d.from_addrs, d.to_addrs, d.date, d.body_text, d.category FROM documents d"
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if filter.Query != "" {
		query += " JOIN documents_fts f ON f.rowid = d.rowid"
		conditions = append(conditions, "documents_fts MATCH ?")
		args = append(args, filter.Query)
	}
	if filter.AccountID != "" {
		conditions = append(conditions, "d.account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.Folder != "" {
		conditions = append(conditions, "d.folder = ?")
		args = append(args, filter.Folder)
	}
	if filter.Category != "" {
		conditions = append(conditions, "d.category = ?")
		args = append(args, filter.Category)
	}
	if len(filter.IDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.IDs)), ",")
		conditions = append(conditions, "d.id IN ("+placeholders+")")
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	// most recent first, no relevance ranking
	query += " ORDER BY d.date DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.Queryx(query, args...)
	if err != nil {
		return nil, fmt.Errorf("cannot search documents: %w", err)
	}
	defer rows.Close()

	results := make([]email.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, doc)
	}
	return results, rows.Err()
}

func scanDocument(rows *sqlx.Rows) (email.Document, error) {
	var (
		doc     email.Document
		from    string
		to      string
		dateRaw string
	)
	err := rows.Scan(&doc.ID, &doc.AccountID, &doc.Folder, &doc.Subject,
		&from, &to, &dateRaw, &doc.Text, &doc.Category)
	if err != nil {
		return email.Document{}, fmt.Errorf("cannot scan document row: %w", err)
	}
	if err = json.Unmarshal([]byte(from), &doc.From); err != nil {
		return email.Document{}, fmt.Errorf("cannot decode sender list of %q: %w", doc.ID, err)
	}
	if err = json.Unmarshal([]byte(to), &doc.To); err != nil {
		return email.Document{}, fmt.Errorf("cannot decode recipient list of %q: %w", doc.ID, err)
	}
	doc.Date, err = time.Parse(time.RFC3339, dateRaw)
	if err != nil {
		return email.Document{}, fmt.Errorf("cannot parse date of %q: %w", doc.ID, err)
	}
	return doc, nil
}
