package test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/index"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseDate = time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

func sampleDocument(uid uint32, subject, text string, age time.Duration) email.Document {
	return email.Document{
		ID:        email.DocumentID("acct@example.com", "INBOX", uid, 0),
		AccountID: "acct@example.com",
		Folder:    "INBOX",
		Subject:   subject,
		From:      []string{"contact@example.org"},
		To:        []string{"acct@example.com"},
		Date:      baseDate.Add(-age),
		Text:      text,
		Category:  email.DefaultCategory,
	}
}

// RunTestsOnSink is the unit tests runner called by the concrete
// implementations of index.Sink
func RunTestsOnSink(t *testing.T, sink index.Sink) {
	require.NotNil(t, sink)

	t.Run("ClearAllOnEmpty", func(t *testing.T) {
		require.NoError(t, sink.ClearAll())
	})

	t.Run("SearchOnEmpty", func(t *testing.T) {
		results, err := sink.Search(email.Filter{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("PutAndSearchNewestFirst", func(t *testing.T) {
		require.NoError(t, sink.Put(sampleDocument(1, "Quarterly budget review", "the numbers are in", 48*time.Hour)))
		require.NoError(t, sink.Put(sampleDocument(2, "Lunch on Friday?", "pizza place around the corner", 24*time.Hour)))
		require.NoError(t, sink.Put(sampleDocument(3, "Welcome aboard", "glad to have you with us", 0)))

		results, err := sink.Search(email.Filter{})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "Welcome aboard", results[0].Subject)
		assert.Equal(t, "Lunch on Friday?", results[1].Subject)
		assert.Equal(t, "Quarterly budget review", results[2].Subject)
	})

	t.Run("DocumentRoundTrip", func(t *testing.T) {
		expected := sampleDocument(1, "Quarterly budget review", "the numbers are in", 48*time.Hour)
		results, err := sink.Search(email.Filter{IDs: []string{expected.ID}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		doc := results[0]
		assert.Equal(t, expected.ID, doc.ID)
		assert.Equal(t, expected.AccountID, doc.AccountID)
		assert.Equal(t, expected.Folder, doc.Folder)
		assert.Equal(t, expected.Subject, doc.Subject)
		assert.Equal(t, expected.From, doc.From)
		assert.Equal(t, expected.To, doc.To)
		assert.Equal(t, expected.Text, doc.Text)
		assert.Equal(t, expected.Category, doc.Category)
		assert.WithinDuration(t, expected.Date, doc.Date, time.Second)
	})

	t.Run("UpsertIsIdempotent", func(t *testing.T) {
		doc := sampleDocument(2, "Lunch on Friday?", "pizza place around the corner", 24*time.Hour)
		doc.Subject = "Lunch moved to Monday"
		require.NoError(t, sink.Put(doc))

		results, err := sink.Search(email.Filter{})
		require.NoError(t, err)
		assert.Len(t, results, 3)

		results, err = sink.Search(email.Filter{IDs: []string{doc.ID}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Lunch moved to Monday", results[0].Subject)
	})

	t.Run("FilterByAccount", func(t *testing.T) {
		other := sampleDocument(10, "From the other account", "hello", 12*time.Hour)
		other.ID = email.DocumentID("second@example.com", "INBOX", 10, 0)
		other.AccountID = "second@example.com"
		require.NoError(t, sink.Put(other))

		results, err := sink.Search(email.Filter{AccountID: "second@example.com"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, other.ID, results[0].ID)

		results, err = sink.Search(email.Filter{AccountID: "acct@example.com"})
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("UpdateCategory", func(t *testing.T) {
		id := email.DocumentID("acct@example.com", "INBOX", 1, 0)
		require.NoError(t, sink.UpdateCategory(id, "Interested"))

		results, err := sink.Search(email.Filter{Category: "Interested"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, id, results[0].ID)
		// the rest of the document is untouched
		assert.Equal(t, "Quarterly budget review", results[0].Subject)
	})

	t.Run("UpdateCategoryUnknownDocument", func(t *testing.T) {
		err := sink.UpdateCategory("acct@example.com:INBOX:9999", "Spam")
		require.Error(t, err)
		assert.ErrorIs(t, err, lib.ErrDocumentNotFound)
	})

	t.Run("QueryMatchesSubject", func(t *testing.T) {
		results, err := sink.Search(email.Filter{Query: "budget"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Quarterly budget review", results[0].Subject)
	})

	t.Run("QueryMatchesBody", func(t *testing.T) {
		results, err := sink.Search(email.Filter{Query: "pizza"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Lunch moved to Monday", results[0].Subject)
	})

	t.Run("QueryMatchesNothing", func(t *testing.T) {
		results, err := sink.Search(email.Filter{Query: "zeppelin"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Limit", func(t *testing.T) {
		results, err := sink.Search(email.Filter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, results, 2)
		// still newest first
		assert.Equal(t, "Welcome aboard", results[0].Subject)
		assert.Equal(t, "From the other account", results[1].Subject)
	})

	t.Run("LongBodyRoundTrip", func(t *testing.T) {
		doc := sampleDocument(20, "A very long story", strings.Repeat("once upon a time ", 3000), 72*time.Hour)
		require.NoError(t, sink.Put(doc))

		results, err := sink.Search(email.Filter{IDs: []string{doc.ID}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, doc.Text, results[0].Text)
	})

	t.Run("ConcurrentPuts", func(t *testing.T) {
		require.NoError(t, sink.ClearAll())

		workers := 4
		each := 25
		wg := sync.WaitGroup{}
		wg.Add(workers)
		for worker := 0; worker < workers; worker++ {
			go func(worker int) {
				defer wg.Done()
				for i := 0; i < each; i++ {
					uid := uint32(worker*each + i + 1)
					assert.NoError(t, sink.Put(sampleDocument(uid, "Message", "body", time.Duration(uid)*time.Minute)))
				}
			}(worker)
		}
		wg.Wait()

		results, err := sink.Search(email.Filter{})
		require.NoError(t, err)
		assert.Len(t, results, workers*each)
	})

	t.Run("ClearAll", func(t *testing.T) {
		require.NoError(t, sink.ClearAll())

		results, err := sink.Search(email.Filter{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
