// Package archive mirrors raw messages into a maildir tree, one folder
// per account and mailbox. Archiving is best effort: the engine logs
// failures and keeps going.
package archive

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/cfg"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/limitio"
	"github.com/emersion/go-maildir"
)

const writeBurst = 32 * 1024

// Maildir stores raw messages under root/<account tag>/<folder>/. The
// account tag is a hash of the account id, email addresses don't make
// good directory names.
type Maildir struct {
	root      string
	writeRate float64
	log       lib.Logger

	mu          sync.Mutex
	initialized map[string]bool
}

func NewMaildir(config cfg.ArchiveConfig, logger lib.Logger) (*Maildir, error) {
	if logger == nil {
		logger = &lib.NoLog{}
	}
	if err := os.MkdirAll(config.Root, 0700); err != nil {
		return nil, err
	}
	return &Maildir{
		root:        config.Root,
		writeRate:   config.WriteRate,
		log:         logger,
		initialized: make(map[string]bool),
	}, nil
}

func (m *Maildir) Root() string {
	return m.root
}

// Store writes one raw message to the account's folder, stamped with the
// message date.
func (m *Maildir) Store(accountID, folder string, uid uint32, date time.Time, body io.Reader) error {
	dir, err := m.folder(accountID, folder)
	if err != nil {
		return err
	}
	key, writer, err := dir.Create(nil)
	if err != nil {
		return err
	}

	var destination io.Writer = writer
	if m.writeRate > 0 {
		limited := limitio.NewWriter(writer)
		limited.SetRateLimit(m.writeRate, writeBurst)
		destination = limited
	}
	copied, err := io.Copy(destination, body)
	if err != nil {
		_ = writer.Close()
		return err
	}
	if err = writer.Close(); err != nil {
		return err
	}
	m.log.Printf("archived message: account=%q folder=%q uid=%d size=%d", accountID, folder, uid, copied)

	if !date.IsZero() {
		if filename, err := dir.Filename(key); err == nil {
			_ = os.Chtimes(filename, date, date)
		}
	}
	return nil
}

// folder returns the maildir for the account and folder, initializing its
// cur/new/tmp structure on first use.
func (m *Maildir) folder(accountID, folder string) (maildir.Dir, error) {
	path := filepath.Join(m.root, lib.AccountTag(accountID), folder)
	dir := maildir.Dir(path)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized[path] {
		return dir, nil
	}
	if err := dir.Init(); err != nil {
		return dir, err
	}
	m.initialized[path] = true
	return dir, nil
}
