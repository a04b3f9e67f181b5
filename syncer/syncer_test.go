package syncer

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/cfg"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/index/mem"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// opsSink records the order of operations on top of a live memory sink.
type opsSink struct {
	*mem.Sink
	mu  sync.Mutex
	ops []string
}

func newOpsSink() *opsSink {
	return &opsSink{Sink: mem.New()}
}

func (o *opsSink) record(op string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, op)
}

func (o *opsSink) Put(doc email.Document) error {
	o.record("put")
	return o.Sink.Put(doc)
}

func (o *opsSink) ClearAll() error {
	o.record("clear")
	return o.Sink.ClearAll()
}

func (o *opsSink) operations() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string{}, o.ops...)
}

func countingDialer(t *testing.T, dial Dialer) (Dialer, *int) {
	t.Helper()
	count := 0
	var mu sync.Mutex
	return func(account cfg.Account) (Mailbox, error) {
		mu.Lock()
		count++
		mu.Unlock()
		return dial(account)
	}, &count
}

func TestSyncerNoAccountSeedsSampleData(t *testing.T) {
	sink := mem.New()
	dial, dials := countingDialer(t, func(cfg.Account) (Mailbox, error) {
		return newFakeMailbox(), nil
	})
	syncer := NewSyncer(Config{
		Sink:   sink,
		Dial:   dial,
		Logger: lib.NewTestLogger(t, "syncer"),
	})
	syncer.StartSync()
	defer syncer.StopSync()

	assert.Equal(t, 0, *dials)
	results, err := sink.Search(email.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 5)

	ids := make([]string, 0, len(results))
	for _, doc := range results {
		ids = append(ids, doc.ID)
		assert.Equal(t, email.MockAccountID, doc.AccountID)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{
		"mock:INBOX:1", "mock:INBOX:2", "mock:INBOX:3", "mock:INBOX:4", "mock:INBOX:5",
	}, ids)
}

func TestSyncerFailureIsolation(t *testing.T) {
	sink := newOpsSink()
	healthy := newFakeMailbox()
	healthy.addMessage(1, "Still standing", time.Now().Add(-time.Hour), "some content")
	dial := func(account cfg.Account) (Mailbox, error) {
		if account.ID == "broken@example.com" {
			return nil, errors.New("connection refused")
		}
		return healthy, nil
	}
	syncer := NewSyncer(Config{
		Accounts: []cfg.Account{
			{ID: "broken@example.com", Host: "imap.example.com", Port: 993},
			{ID: "healthy@example.com", Host: "imap.example.com", Port: 993},
		},
		Sink:   sink,
		Dial:   dial,
		Logger: lib.NewTestLogger(t, "syncer"),
	})
	syncer.StartSync()
	defer syncer.StopSync()

	require.Eventually(t, func() bool {
		return syncer.States()["healthy@example.com"] == Idling
	}, waitFor, tick)
	assert.Equal(t, Terminated, syncer.States()["broken@example.com"])

	// the healthy account's mail is indexed, no sample data in sight
	results, err := sink.Search(email.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "healthy@example.com", results[0].AccountID)
}

func TestSyncerAllAccountsFailSeedsSampleData(t *testing.T) {
	sink := newOpsSink()
	dial := func(cfg.Account) (Mailbox, error) {
		return nil, errors.New("connection refused")
	}
	syncer := NewSyncer(Config{
		Accounts: []cfg.Account{
			{ID: "first@example.com", Host: "imap.example.com", Port: 993},
			{ID: "second@example.com", Host: "imap.example.com", Port: 993},
		},
		Sink:   sink,
		Dial:   dial,
		Logger: lib.NewTestLogger(t, "syncer"),
	})
	syncer.StartSync()
	defer syncer.StopSync()

	results, err := sink.Search(email.Filter{AccountID: email.MockAccountID})
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.NotContains(t, sink.operations(), "clear")
}

func TestSyncerClearsBeforeFirstDocument(t *testing.T) {
	sink := newOpsSink()
	// seeded leftovers from a previous run without accounts
	require.NoError(t, sink.Put(email.MockDocuments()[0]))

	box := newFakeMailbox()
	box.addMessage(1, "The real thing", time.Now().Add(-time.Hour), "some content")
	syncer := NewSyncer(Config{
		Accounts: []cfg.Account{{ID: "acct@example.com", Host: "imap.example.com", Port: 993}},
		Sink:     sink,
		Dial:     dialTo(box),
		Logger:   lib.NewTestLogger(t, "syncer"),
	})
	syncer.StartSync()
	defer syncer.StopSync()

	require.Eventually(t, func() bool {
		return syncer.States()["acct@example.com"] == Idling
	}, waitFor, tick)

	results, err := sink.Search(email.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "acct@example.com:INBOX:1", results[0].ID)

	// exactly one clear, and it precedes every real document
	operations := sink.operations()
	clears := 0
	for index, op := range operations {
		if op == "clear" {
			clears++
			assert.Equal(t, 1, index, "clear must follow only the seeded put")
		}
	}
	assert.Equal(t, 1, clears)
}

func TestSyncerStartSyncIsIdempotent(t *testing.T) {
	sink := mem.New()
	syncer := NewSyncer(Config{
		Sink:   sink,
		Logger: lib.NewTestLogger(t, "syncer"),
	})
	syncer.StartSync()
	syncer.StartSync()
	defer syncer.StopSync()

	results, err := sink.Search(email.Filter{})
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestSyncerStopSync(t *testing.T) {
	box := newFakeMailbox()
	syncer := NewSyncer(Config{
		Accounts: []cfg.Account{{ID: "acct@example.com", Host: "imap.example.com", Port: 993}},
		Sink:     mem.New(),
		Dial:     dialTo(box),
		Logger:   lib.NewTestLogger(t, "syncer"),
	})
	syncer.StartSync()

	require.Eventually(t, func() bool {
		return syncer.States()["acct@example.com"] == Idling
	}, waitFor, tick)

	syncer.StopSync()
	assert.True(t, box.isClosed())
	// stopping twice is safe
	syncer.StopSync()
}

func TestSyncerStatesBeforeStart(t *testing.T) {
	syncer := NewSyncer(Config{Sink: mem.New()})
	assert.Empty(t, syncer.States())
}
