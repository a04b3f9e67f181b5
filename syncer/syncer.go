package syncer

import (
	"sync"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/cfg"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/index"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/notify"
)

type Config struct {
	Accounts []cfg.Account
	Sink     index.Sink
	Events   notify.Broadcaster
	Archive  Archiver
	Sync     cfg.SyncConfig
	// Dial defaults to the IMAP dialer
	Dial   Dialer
	Logger lib.Logger
}

// Syncer owns the set of account supervisors and the sample-data
// decision: no usable account means the index is seeded with sample
// documents, the first real connection evicts them.
type Syncer struct {
	accounts   []cfg.Account
	sink       index.Sink
	events     notify.Broadcaster
	normalizer *Normalizer
	sync       cfg.SyncConfig
	dial       Dialer
	log        lib.Logger

	proceed chan struct{}

	mu          sync.Mutex
	supervisors map[string]*Supervisor
	started     bool
}

func NewSyncer(config Config) *Syncer {
	logger := config.Logger
	if logger == nil {
		logger = &lib.NoLog{}
	}
	events := config.Events
	if events == nil {
		events = notify.NoBroadcast{}
	}
	syncConfig := config.Sync.WithDefaults()
	dial := config.Dial
	if dial == nil {
		dial = IMAPDialer(syncConfig, logger)
	}
	return &Syncer{
		accounts: config.Accounts,
		sink:     config.Sink,
		events:   events,
		normalizer: &Normalizer{
			Sink:    config.Sink,
			Archive: config.Archive,
			Log:     logger,
		},
		sync:        syncConfig,
		dial:        dial,
		log:         logger,
		proceed:     make(chan struct{}),
		supervisors: make(map[string]*Supervisor),
	}
}

// StartSync brings every account up and returns once startup has
// resolved: each account either reached its idle wait or terminated. It
// never returns an error, per-account failures are logged and contained.
func (s *Syncer) StartSync() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	if len(s.accounts) == 0 {
		s.log.Print("no account configured, seeding sample documents")
		s.seedMockData()
		return
	}

	for _, account := range s.accounts {
		supervisor := NewSupervisor(SupervisorConfig{
			Account:    account,
			Dial:       s.dial,
			Normalizer: s.normalizer,
			Events:     s.events,
			Sync:       s.sync,
			Proceed:    s.proceed,
			Logger:     s.log,
		})
		s.mu.Lock()
		s.supervisors[account.ID] = supervisor
		s.mu.Unlock()
		supervisor.Start()
	}

	anyConnected := false
	for _, supervisor := range s.allSupervisors() {
		if <-supervisor.Connected() {
			anyConnected = true
		}
	}
	if anyConnected {
		// real mail is coming, evict any seeded sample documents before
		// the supervisors start indexing
		if err := s.sink.ClearAll(); err != nil {
			s.log.Printf("cannot clear the index: %s", err)
		}
	} else {
		s.log.Print("no account could connect, seeding sample documents")
		s.seedMockData()
	}
	close(s.proceed)
}

// StopSync tears down every supervisor. Individual close failures are
// collected in the logs, never propagated, and never prevent the other
// sessions from closing.
func (s *Syncer) StopSync() {
	for _, supervisor := range s.allSupervisors() {
		supervisor.Stop()
	}
}

// States reports the lifecycle state of every account.
func (s *Syncer) States() map[string]State {
	states := make(map[string]State)
	for id, supervisor := range s.supervisorsByID() {
		states[id] = supervisor.State()
	}
	return states
}

func (s *Syncer) seedMockData() {
	for _, doc := range email.MockDocuments() {
		if err := s.sink.Put(doc); err != nil {
			s.log.Printf("cannot seed sample document %q: %s", doc.ID, err)
		}
	}
}

func (s *Syncer) allSupervisors() []*Supervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	supervisors := make([]*Supervisor, 0, len(s.supervisors))
	for _, supervisor := range s.supervisors {
		supervisors = append(supervisors, supervisor)
	}
	return supervisors
}

func (s *Syncer) supervisorsByID() map[string]*Supervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	supervisors := make(map[string]*Supervisor, len(s.supervisors))
	for id, supervisor := range s.supervisors {
		supervisors[id] = supervisor
	}
	return supervisors
}
