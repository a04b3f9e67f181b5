package syncer

import (
	"io"
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/cfg"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/remote"
)

// Mailbox is the slice of a remote session the engine drives: an
// exclusive, lockable handle on one account's connection and selected
// folder. The lock must be held for every fetch and released on all exit
// paths.
type Mailbox interface {
	Lock()
	Unlock()
	SelectMailbox(name string) error
	SearchSince(since time.Time) ([]uint32, error)
	FetchMessages(uids []uint32, full bool) ([]*remote.Message, error)
	FetchNewer(lastUID uint32) ([]*remote.Message, error)
	WaitForUpdate(stop <-chan struct{}) (newMail bool, err error)
	Close() error
}

// verify interface
var _ Mailbox = &remote.Session{}

// Dialer opens a session on the account's server.
type Dialer func(account cfg.Account) (Mailbox, error)

// IMAPDialer is the production dialer.
func IMAPDialer(sync cfg.SyncConfig, logger lib.Logger) Dialer {
	return func(account cfg.Account) (Mailbox, error) {
		return remote.NewSession(remote.Config{
			ServerURL:           account.Addr(),
			Username:            account.ID,
			Password:            account.Password,
			NoTLS:               account.NoTLS,
			SkipTLSVerification: account.SkipTLSVerification,
			DebugLogger:         logger,
			DownloadRate:        sync.DownloadRate,
			PollInterval:        sync.PollInterval,
		})
	}
}

// Archiver receives the raw bytes of every downloaded message. Archiving
// is best effort: failures are logged, never fatal.
type Archiver interface {
	Store(accountID, folder string, uid uint32, date time.Time, body io.Reader) error
}
