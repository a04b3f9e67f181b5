package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleDoc() Document {
	return Document{
		ID:        "user@example.com:INBOX:12",
		AccountID: "user@example.com",
		Folder:    "INBOX",
		Subject:   "Quarterly roadmap review",
		From:      []string{"alice@example.org"},
		To:        []string{"user@example.com"},
		Date:      time.Date(2023, 5, 10, 9, 0, 0, 0, time.UTC),
		Text:      "Please find the roadmap attached, feedback welcome.",
		Category:  DefaultCategory,
	}
}

func TestFilterMatches(t *testing.T) {
	doc := sampleDoc()

	testCases := []struct {
		name    string
		filter  Filter
		matches bool
	}{
		{"Empty", Filter{}, true},
		{"AccountMatch", Filter{AccountID: "user@example.com"}, true},
		{"AccountMismatch", Filter{AccountID: "other@example.com"}, false},
		{"FolderMatch", Filter{Folder: "INBOX"}, true},
		{"FolderMismatch", Filter{Folder: "Archive"}, false},
		{"CategoryMatch", Filter{Category: DefaultCategory}, true},
		{"CategoryMismatch", Filter{Category: "Spam"}, false},
		{"IDMatch", Filter{IDs: []string{"someone:INBOX:1", "user@example.com:INBOX:12"}}, true},
		{"IDMismatch", Filter{IDs: []string{"someone:INBOX:1"}}, false},
		{"QueryInSubject", Filter{Query: "roadmap"}, true},
		{"QueryCaseInsensitive", Filter{Query: "ROADMAP"}, true},
		{"QueryInBody", Filter{Query: "feedback"}, true},
		{"QueryInSender", Filter{Query: "alice@example.org"}, true},
		{"QueryMiss", Filter{Query: "invoice"}, false},
		{"Combined", Filter{AccountID: "user@example.com", Query: "roadmap"}, true},
		{"CombinedMiss", Filter{AccountID: "other@example.com", Query: "roadmap"}, false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.matches, testCase.filter.Matches(doc))
		})
	}
}
