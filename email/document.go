package email

import (
	"strconv"
	"time"
	"unicode/utf8"
)

// MaxTextLength is the bound on the text body of a document, in characters.
// Longer bodies are truncated at normalization time, never rejected.
const MaxTextLength = 50_000

// DefaultCategory is assigned to every freshly normalized document.
const DefaultCategory = "Uncategorized"

// FolderInbox is the folder every account synchronizes.
const FolderInbox = "INBOX"

// Document is the canonical representation of one mail message. Normalizing
// the same message twice yields the same ID, so indexing a document is an
// upsert, never a duplicate.
type Document struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Folder    string    `json:"folder"`
	Subject   string    `json:"subject"`
	From      []string  `json:"from"`
	To        []string  `json:"to"`
	Date      time.Time `json:"date"`
	Text      string    `json:"text,omitempty"`
	Category  string    `json:"category"`
}

// DocumentID derives the stable identity accountID:folder:uid. A message
// without a UID falls back to its sequence number.
func DocumentID(accountID, folder string, uid, seqNum uint32) string {
	num := uid
	if num == 0 {
		num = seqNum
	}
	return accountID + ":" + folder + ":" + strconv.FormatUint(uint64(num), 10)
}

// TruncateText caps a body at MaxTextLength characters without splitting
// a rune.
func TruncateText(text string) string {
	if len(text) <= MaxTextLength {
		// cannot be more runes than bytes
		return text
	}
	if utf8.RuneCountInString(text) <= MaxTextLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxTextLength])
}
