package syncer

import (
	"sync"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/cfg"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/notify"
)

type SupervisorConfig struct {
	Account    cfg.Account
	Dial       Dialer
	Normalizer *Normalizer
	Events     notify.Broadcaster
	Sync       cfg.SyncConfig
	// Proceed gates the backfill: the supervisor reports its connect
	// outcome on Connected() and waits for this channel to close before
	// fetching anything
	Proceed <-chan struct{}
	Logger  lib.Logger
}

// Supervisor runs the connection state machine of one account:
//
//	Disconnected -> Connecting -> Backfilling -> Idling
//	Idling -> Reconnecting -> Idling | Terminated
//	Connecting failure -> Terminated
//
// Each supervisor runs in its own goroutine; a failure in one account
// never reaches another. A Terminated account stays terminated for the
// process lifetime.
type Supervisor struct {
	account    cfg.Account
	dial       Dialer
	normalizer *Normalizer
	events     notify.Broadcaster
	sync       cfg.SyncConfig
	proceed    <-chan struct{}
	log        lib.Logger

	mu      sync.Mutex
	state   State
	mailbox Mailbox
	lastUID uint32
	started bool

	connected chan bool
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

func NewSupervisor(config SupervisorConfig) *Supervisor {
	logger := config.Logger
	if logger == nil {
		logger = &lib.NoLog{}
	}
	events := config.Events
	if events == nil {
		events = notify.NoBroadcast{}
	}
	return &Supervisor{
		account:    config.Account,
		dial:       config.Dial,
		normalizer: config.Normalizer,
		events:     events,
		sync:       config.Sync.WithDefaults(),
		proceed:    config.Proceed,
		log:        logger,
		state:      Disconnected,
		connected:  make(chan bool, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the state machine and returns immediately. The connect
// outcome is reported once on Connected().
func (s *Supervisor) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.run()
}

// Stop unwinds the wait or backfill in flight, waits for the state machine
// to finish and closes the session. Close errors are logged, never
// propagated.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done

	mailbox := s.currentMailbox()
	if mailbox == nil {
		return
	}
	s.setMailbox(nil)
	if err := mailbox.Close(); err != nil {
		s.log.Printf("account %s: error closing session: %s", s.account.ID, err)
	}
}

// Connected reports the initial connect outcome, exactly once.
func (s *Supervisor) Connected() <-chan bool {
	return s.connected
}

func (s *Supervisor) Account() string {
	return s.account.ID
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) run() {
	defer close(s.done)

	s.setState(Connecting)
	mailbox, err := s.connect()
	if err != nil {
		s.log.Printf("%s", &Error{Kind: ConnectFailed, Account: s.account.ID, Err: err})
		s.setState(Terminated)
		s.connected <- false
		return
	}
	s.setMailbox(mailbox)
	s.connected <- true

	select {
	case <-s.proceed:
	case <-s.stop:
		return
	}

	s.setState(Backfilling)
	count, err := s.backfill()
	if err != nil {
		// per-message failures were already absorbed, this is the listing
		// itself failing: log and fall through to idling
		s.log.Printf("account %s: backfill failed: %s", s.account.ID, err)
	}
	s.log.Printf("account %s: backfill indexed %d messages", s.account.ID, count)
	if s.stopped() {
		return
	}

	s.idleLoop()
}

// connect dials the account and selects its inbox.
func (s *Supervisor) connect() (Mailbox, error) {
	mailbox, err := s.dial(s.account)
	if err != nil {
		return nil, err
	}
	if err = mailbox.SelectMailbox(email.FolderInbox); err != nil {
		if closeErr := mailbox.Close(); closeErr != nil {
			s.log.Printf("account %s: error closing session: %s", s.account.ID, closeErr)
		}
		return nil, err
	}
	return mailbox, nil
}

// idleLoop is the long lived wait of §idle: suspend until the server
// pushes a mailbox change, fetch the uid delta, re-enter the wait. A wait
// error triggers a single immediate reconnect attempt; a second failure
// terminates the account.
func (s *Supervisor) idleLoop() {
	s.setState(Idling)
	for {
		newMail, err := s.currentMailbox().WaitForUpdate(s.stop)
		if err != nil {
			if s.stopped() {
				return
			}
			s.log.Printf("%s", &Error{Kind: WaitFailed, Account: s.account.ID, Err: err})
			s.setState(Reconnecting)
			if !s.reconnect() {
				s.setState(Terminated)
				return
			}
			// pick up anything that arrived while disconnected
			s.fetchDelta()
			s.setState(Idling)
			continue
		}
		if !newMail {
			// stopped
			return
		}
		s.fetchDelta()
	}
}

// reconnect closes the broken session and dials once. There is no backoff
// loop: one attempt, then Terminated.
func (s *Supervisor) reconnect() bool {
	if old := s.currentMailbox(); old != nil {
		s.setMailbox(nil)
		if err := old.Close(); err != nil {
			s.log.Printf("account %s: error closing session: %s", s.account.ID, err)
		}
	}
	mailbox, err := s.connect()
	if err != nil {
		s.log.Printf("%s", &Error{Kind: ConnectFailed, Account: s.account.ID, Err: err})
		return false
	}
	s.setMailbox(mailbox)
	return true
}

// fetchDelta ingests every message above the high-water mark and emits one
// new-mail event per document.
func (s *Supervisor) fetchDelta() {
	mailbox := s.currentMailbox()
	mailbox.Lock()
	messages, err := mailbox.FetchNewer(s.highWaterMark())
	mailbox.Unlock()
	if err != nil {
		s.log.Printf("account %s: cannot fetch new messages: %s", s.account.ID, err)
		return
	}
	for _, msg := range messages {
		if _, err := s.normalizer.Ingest(s.account.ID, email.FolderInbox, msg); err != nil {
			s.log.Printf("%s", err)
		}
		s.advance(msg.Uid)
		s.events.Emit(notify.NewMail(s.account.ID))
	}
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Supervisor) setMailbox(mailbox Mailbox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mailbox = mailbox
}

func (s *Supervisor) currentMailbox() Mailbox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mailbox
}

func (s *Supervisor) highWaterMark() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUID
}

func (s *Supervisor) advance(uid uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uid > s.lastUID {
		s.lastUID = uid
	}
}

func (s *Supervisor) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}
