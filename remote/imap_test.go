package remote

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	compress "github.com/emersion/go-imap-compress"
	"github.com/emersion/go-imap/backend/memory"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-imap/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
)

// the memory backend comes pre-loaded with one message (uid 6) in INBOX
// for user "username"
const preloadedUID = 6

func startTestServer(t *testing.T) string {
	t.Helper()

	backend := memory.New()
	imapServer := server.New(backend)
	// testing only: plain text authentication over a local socket
	imapServer.AllowInsecureAuth = true
	imapServer.Enable(compress.NewExtension())

	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)

	t.Logf("Starting IMAP server at %s", listener.Addr().String())
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = imapServer.Serve(listener)
	}()
	t.Cleanup(func() {
		_ = imapServer.Close()
		wg.Wait()
	})

	time.Sleep(100 * time.Millisecond)
	return listener.Addr().String()
}

func newTestSession(t *testing.T, addr string) *Session {
	t.Helper()

	session, err := NewSession(Config{
		ServerURL:    addr,
		Username:     "username",
		Password:     "password",
		NoTLS:        true,
		DebugLogger:  lib.NewTestLogger(t, "session"),
		PollInterval: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	return session
}

// appendMessage delivers a new message through a second connection, the
// way another mail client would
func appendMessage(t *testing.T, addr, subject string) {
	t.Helper()

	sender, err := client.Dial(addr)
	require.NoError(t, err)
	defer func() {
		_ = sender.Logout()
	}()
	require.NoError(t, sender.Login("username", "password"))

	raw := lib.GenerateTextEmail("sender@example.org", "username@example.org", subject, time.Now(), "You have new mail", 99)
	require.NoError(t, sender.Append("INBOX", nil, time.Now(), strings.NewReader(string(raw))))
}

func TestSessionMissingConfig(t *testing.T) {
	_, err := NewSession(Config{ServerURL: "localhost:143"})
	require.Error(t, err)
}

func TestSessionFetching(t *testing.T) {
	addr := startTestServer(t)
	session := newTestSession(t, addr)
	defer func() {
		assert.NoError(t, session.Close())
	}()

	t.Run("FetchBeforeSelect", func(t *testing.T) {
		_, err := session.SearchSince(time.Now())
		assert.ErrorIs(t, err, lib.ErrNotSelected)
		_, err = session.FetchMessages([]uint32{1}, false)
		assert.ErrorIs(t, err, lib.ErrNotSelected)
		_, err = session.FetchNewer(0)
		assert.ErrorIs(t, err, lib.ErrNotSelected)
	})

	t.Run("SelectMailbox", func(t *testing.T) {
		require.NoError(t, session.SelectMailbox("INBOX"))
	})

	t.Run("SelectMailboxDoesNotExist", func(t *testing.T) {
		err := session.SelectMailbox("No mailbox at that name")
		assert.Error(t, err)
		// reselect for the remaining tests
		require.NoError(t, session.SelectMailbox("INBOX"))
	})

	t.Run("SearchSince", func(t *testing.T) {
		session.Lock()
		defer session.Unlock()

		// the preloaded message has an internal date of "now"
		uids, err := session.SearchSince(time.Now().AddDate(0, 0, -7))
		require.NoError(t, err)
		assert.Equal(t, []uint32{preloadedUID}, uids)
	})

	t.Run("FetchEnvelopeOnly", func(t *testing.T) {
		session.Lock()
		defer session.Unlock()

		messages, err := session.FetchMessages([]uint32{preloadedUID}, false)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, uint32(preloadedUID), messages[0].Uid)
		require.NotNil(t, messages[0].Envelope)
		assert.Equal(t, "A little message, just for you", messages[0].Envelope.Subject)
		assert.Nil(t, messages[0].Body)
	})

	t.Run("FetchFullBody", func(t *testing.T) {
		session.Lock()
		defer session.Unlock()

		messages, err := session.FetchMessages([]uint32{preloadedUID}, true)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		require.NotNil(t, messages[0].Body)
		body, err := io.ReadAll(messages[0].Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Hi there")
	})

	t.Run("FetchEmptyList", func(t *testing.T) {
		session.Lock()
		defer session.Unlock()

		messages, err := session.FetchMessages(nil, true)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("FetchNewerNothingNew", func(t *testing.T) {
		session.Lock()
		defer session.Unlock()

		messages, err := session.FetchNewer(preloadedUID)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("FetchNewerAfterDelivery", func(t *testing.T) {
		appendMessage(t, addr, "Fresh arrival")

		session.Lock()
		defer session.Unlock()

		messages, err := session.FetchNewer(preloadedUID)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Greater(t, messages[0].Uid, uint32(preloadedUID))
		require.NotNil(t, messages[0].Envelope)
		assert.Equal(t, "Fresh arrival", messages[0].Envelope.Subject)
	})
}

func TestWaitForUpdateStopped(t *testing.T) {
	addr := startTestServer(t)
	session := newTestSession(t, addr)
	defer func() {
		assert.NoError(t, session.Close())
	}()
	require.NoError(t, session.SelectMailbox("INBOX"))

	stop := make(chan struct{})
	go func() {
		time.Sleep(100 * time.Millisecond)
		close(stop)
	}()

	finished := make(chan struct{})
	var newMail bool
	var err error
	go func() {
		defer close(finished)
		newMail, err = session.WaitForUpdate(stop)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForUpdate did not unwind after stop")
	}
	assert.NoError(t, err)
	assert.False(t, newMail)
}

func TestWaitForUpdateNewMail(t *testing.T) {
	addr := startTestServer(t)
	session := newTestSession(t, addr)
	defer func() {
		assert.NoError(t, session.Close())
	}()
	require.NoError(t, session.SelectMailbox("INBOX"))

	go func() {
		time.Sleep(300 * time.Millisecond)
		appendMessage(t, addr, "Wake up")
	}()

	stop := make(chan struct{})
	finished := make(chan struct{})
	var newMail bool
	var err error
	go func() {
		defer close(finished)
		newMail, err = session.WaitForUpdate(stop)
	}()

	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		close(stop)
		t.Fatal("WaitForUpdate never noticed the new message")
	}
	require.NoError(t, err)
	assert.True(t, newMail)
}
