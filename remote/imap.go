package remote

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/limitio"
	"github.com/emersion/go-imap"
	compress "github.com/emersion/go-imap-compress"
	"github.com/emersion/go-imap/client"
)

// download bursts are metered in chunks of this size
const downloadBurst = 32 * 1024

type Config struct {
	ServerURL           string
	Username            string
	Password            string
	NoTLS               bool
	SkipTLSVerification bool
	DebugLogger         lib.Logger
	// DownloadRate caps message body downloads in bytes per second, zero is
	// unlimited
	DownloadRate float64
	// PollInterval is the NOOP fallback period when the server doesn't
	// support IDLE
	PollInterval time.Duration
}

// Message is a lightweight handle on one fetched message. Body is only set
// when the message was fetched in full, and reads from a rate limited
// buffer.
type Message struct {
	Uid          uint32
	SeqNum       uint32
	Envelope     *imap.Envelope
	InternalDate time.Time
	Body         io.Reader
}

// Session is an exclusive handle to one account's open connection and its
// currently selected mailbox. The lock must be held for any fetch and
// released on every exit path; WaitForUpdate runs unlocked since no fetch
// can be in flight while the connection is idling.
type Session struct {
	client       *client.Client
	log          lib.Logger
	downloadRate float64
	pollInterval time.Duration

	mu       sync.Mutex
	selected string
	messages uint32
}

func NewSession(cfg Config) (*Session, error) {
	log := cfg.DebugLogger
	if log == nil {
		log = &lib.NoLog{}
	}
	if cfg.ServerURL == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("missing information from Config object")
	}

	var imapClient *client.Client
	var err error
	log.Printf("Connecting to server %s...", cfg.ServerURL)
	if cfg.NoTLS {
		imapClient, err = client.Dial(cfg.ServerURL)
	} else {
		tlsConfig := &tls.Config{}
		if cfg.SkipTLSVerification {
			tlsConfig.InsecureSkipVerify = true
		}
		imapClient, err = client.DialTLS(cfg.ServerURL, tlsConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot connect to server %s: %w", cfg.ServerURL, err)
	}
	log.Print("Connected")

	if err := imapClient.Login(cfg.Username, cfg.Password); err != nil {
		_ = imapClient.Logout()
		return nil, fmt.Errorf("authentication failure: %w", err)
	}
	log.Printf("Logged in as %s", cfg.Username)

	if caps, err := imapClient.Capability(); err == nil {
		log.Printf("capabilities: %+v", caps)
	}

	// try to enable COMPRESS=DEFLATE
	comp := compress.NewClient(imapClient)
	if supported, err := comp.SupportCompress(compress.Deflate); err == nil && supported {
		if err := comp.Compress(compress.Deflate); err != nil {
			log.Printf("cannot enable compression: %s", err)
		} else {
			log.Print("Compression enabled")
		}
	}

	return &Session{
		client:       imapClient,
		log:          log,
		downloadRate: cfg.DownloadRate,
		pollInterval: cfg.PollInterval,
	}, nil
}

func (s *Session) Lock() {
	s.mu.Lock()
}

func (s *Session) Unlock() {
	s.mu.Unlock()
}

// SelectMailbox opens a mailbox for fetching and waiting. It keeps the
// message count reported by the server to tell new arrivals apart from
// other mailbox updates.
func (s *Session) SelectMailbox(name string) error {
	status, err := s.client.Select(name, false)
	if err != nil {
		return fmt.Errorf("cannot select mailbox %q: %w", name, err)
	}
	s.log.Printf("Selected mailbox %q: %d messages", name, status.Messages)
	s.selected = name
	s.messages = status.Messages
	return nil
}

// SearchSince returns the uids of the messages received on or after the
// date. The SINCE criterion has day granularity, callers filter on the
// internal date after fetching.
func (s *Session) SearchSince(since time.Time) ([]uint32, error) {
	if s.selected == "" {
		return nil, lib.ErrNotSelected
	}
	s.log.Printf("searching for emails after %s", since)
	uids, err := s.client.UidSearch(&imap.SearchCriteria{Since: since})
	if err != nil {
		return nil, fmt.Errorf("cannot search mailbox: %w", err)
	}
	return uids, nil
}

// FetchMessages retrieves the given uids, with the full body when full is
// set. The body section is peeked so fetching doesn't mark messages as
// read.
func (s *Session) FetchMessages(uids []uint32, full bool) ([]*Message, error) {
	if s.selected == "" {
		return nil, lib.ErrNotSelected
	}
	if len(uids) == 0 {
		return nil, nil
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	return s.fetch(seqset, full)
}

// FetchNewer retrieves every message with a uid strictly greater than
// lastUID, body included.
func (s *Session) FetchNewer(lastUID uint32) ([]*Message, error) {
	if s.selected == "" {
		return nil, lib.ErrNotSelected
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(lastUID+1, 0)
	messages, err := s.fetch(seqset, true)
	if err != nil {
		return nil, err
	}
	// servers interpret the open range loosely and can return the newest
	// message again when nothing arrived
	newer := messages[:0]
	for _, msg := range messages {
		if msg.Uid > lastUID {
			newer = append(newer, msg)
		}
	}
	return newer, nil
}

func (s *Session) fetch(seqset *imap.SeqSet, full bool) ([]*Message, error) {
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, imap.FetchInternalDate}
	if full {
		items = append(items, section.FetchItem())
	}

	receiver := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.client.UidFetch(seqset, items, receiver)
	}()

	messages := make([]*Message, 0, 10)
	for msg := range receiver {
		s.log.Printf("Received IMAP message uid=%d seq=%d date=%q", msg.Uid, msg.SeqNum, msg.InternalDate)
		message := &Message{
			Uid:          msg.Uid,
			SeqNum:       msg.SeqNum,
			Envelope:     msg.Envelope,
			InternalDate: msg.InternalDate,
		}
		if full {
			if literal := msg.GetBody(section); literal != nil {
				message.Body = s.limitReader(literal)
			}
		}
		messages = append(messages, message)
		if msg.SeqNum > s.messages {
			s.messages = msg.SeqNum
		}
	}
	if err := <-done; err != nil {
		return messages, fmt.Errorf("cannot fetch messages: %w", err)
	}
	return messages, nil
}

func (s *Session) limitReader(source io.Reader) io.Reader {
	if s.downloadRate <= 0 {
		return source
	}
	reader := limitio.NewReader(source)
	reader.SetRateLimit(s.downloadRate, downloadBurst)
	return reader
}

// WaitForUpdate blocks until the mailbox grows, the connection errors, or
// stop is closed. It returns true when new mail arrived and false when the
// wait was stopped. Falls back to NOOP polling when the server doesn't
// support IDLE.
func (s *Session) WaitForUpdate(stop <-chan struct{}) (bool, error) {
	if s.selected == "" {
		return false, lib.ErrNotSelected
	}

	updates := make(chan client.Update, 16)
	s.client.Updates = updates
	defer func() {
		s.client.Updates = nil
	}()

	idleStop := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.client.Idle(idleStop, &client.IdleOptions{PollInterval: s.pollInterval})
	}()

	for {
		select {
		case update := <-updates:
			mbox, ok := update.(*client.MailboxUpdate)
			if !ok {
				continue
			}
			if mbox.Mailbox.Messages <= s.messages {
				// expunge or flag noise, keep waiting
				s.messages = mbox.Mailbox.Messages
				continue
			}
			s.log.Printf("Mailbox %q grew to %d messages", s.selected, mbox.Mailbox.Messages)
			s.messages = mbox.Mailbox.Messages
			s.terminateIdle(idleStop, updates, done)
			return true, nil

		case err := <-done:
			return false, fmt.Errorf("wait interrupted: %w", err)

		case <-stop:
			s.terminateIdle(idleStop, updates, done)
			return false, nil
		}
	}
}

// terminateIdle stops the idle command and drains updates until it
// returns, so the client read loop can never block on the updates channel.
func (s *Session) terminateIdle(idleStop chan struct{}, updates chan client.Update, done chan error) {
	close(idleStop)
	for {
		select {
		case <-updates:
		case err := <-done:
			if err != nil {
				s.log.Printf("error terminating idle: %s", err)
			}
			return
		}
	}
}

func (s *Session) Close() error {
	s.log.Print("Closing connection")
	return s.client.Logout()
}
