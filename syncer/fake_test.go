package syncer

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/notify"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/remote"
	"github.com/emersion/go-imap"
)

type scriptedWait struct {
	newMail bool
	err     error
}

type fakeMessage struct {
	uid          uint32
	envelope     *imap.Envelope
	internalDate time.Time
	raw          []byte
}

// fakeMailbox is a scripted Mailbox: messages are served from a map and
// WaitForUpdate consumes queued results, blocking like the real idle when
// the queue is empty.
type fakeMailbox struct {
	mu        sync.Mutex
	uids      []uint32
	messages  map[uint32]*fakeMessage
	selected  string
	selectErr error
	searchErr error
	fetchErr  error
	closeErr  error
	closed    bool
	locks     int
	unlocks   int

	waits chan scriptedWait
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{
		messages: make(map[uint32]*fakeMessage),
		waits:    make(chan scriptedWait, 10),
	}
}

func (f *fakeMailbox) addMessage(uid uint32, subject string, date time.Time, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uids = append(f.uids, uid)
	sort.Slice(f.uids, func(i, j int) bool { return f.uids[i] < f.uids[j] })
	f.messages[uid] = &fakeMessage{
		uid: uid,
		envelope: &imap.Envelope{
			Date:    date,
			Subject: subject,
			From:    []*imap.Address{{MailboxName: "contact", HostName: "example.org"}},
			To:      []*imap.Address{{MailboxName: "acct", HostName: "example.com"}},
		},
		internalDate: date,
		raw:          lib.GenerateTextEmail("contact@example.org", "acct@example.com", subject, date, body, uid),
	}
}

func (f *fakeMailbox) queueWait(newMail bool, err error) {
	f.waits <- scriptedWait{newMail: newMail, err: err}
}

func (f *fakeMailbox) Lock() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks++
}

func (f *fakeMailbox) Unlock() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocks++
}

func (f *fakeMailbox) lockReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locks == f.unlocks
}

func (f *fakeMailbox) SelectMailbox(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectErr != nil {
		return f.selectErr
	}
	f.selected = name
	return nil
}

// SearchSince ignores the date like a day-granular SINCE would: the
// engine filters on the internal date after fetching.
func (f *fakeMailbox) SearchSince(since time.Time) ([]uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return append([]uint32{}, f.uids...), nil
}

func (f *fakeMailbox) FetchMessages(uids []uint32, full bool) ([]*remote.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	messages := make([]*remote.Message, 0, len(uids))
	for _, uid := range uids {
		if msg, ok := f.messages[uid]; ok {
			messages = append(messages, msg.toRemote(full))
		}
	}
	return messages, nil
}

func (f *fakeMailbox) FetchNewer(lastUID uint32) ([]*remote.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	messages := make([]*remote.Message, 0)
	for _, uid := range f.uids {
		if uid > lastUID {
			messages = append(messages, f.messages[uid].toRemote(true))
		}
	}
	return messages, nil
}

func (f *fakeMailbox) WaitForUpdate(stop <-chan struct{}) (bool, error) {
	select {
	case <-stop:
		return false, nil
	default:
	}
	select {
	case wait := <-f.waits:
		return wait.newMail, wait.err
	case <-stop:
		return false, nil
	}
}

func (f *fakeMailbox) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

func (f *fakeMailbox) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// toRemote builds a fresh message handle with its own body reader, so the
// same fake message can be fetched any number of times.
func (m *fakeMessage) toRemote(full bool) *remote.Message {
	msg := &remote.Message{
		Uid:          m.uid,
		SeqNum:       m.uid,
		Envelope:     m.envelope,
		InternalDate: m.internalDate,
	}
	if full {
		msg.Body = bytes.NewReader(m.raw)
	}
	return msg
}

// recordingBroadcaster collects the emitted events.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingBroadcaster) Emit(event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingBroadcaster) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event{}, r.events...)
}
