// Package categorize assigns one of a fixed set of categories to an email
// document based on keyword rules. The rules are deliberately simple: they
// only look at the subject and body text.
package categorize

import (
	"strings"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
)

const (
	Interested    = "Interested"
	MeetingBooked = "Meeting Booked"
	NotInterested = "Not Interested"
	Spam          = "Spam"
	OutOfOffice   = "Out of Office"
	Uncategorized = email.DefaultCategory
)

var categories = []string{
	Interested,
	MeetingBooked,
	NotInterested,
	Spam,
	OutOfOffice,
	Uncategorized,
}

// Categories returns the full category set, in display order.
func Categories() []string {
	return append([]string{}, categories...)
}

// Valid reports whether the name is a known category.
func Valid(category string) bool {
	for _, known := range categories {
		if category == known {
			return true
		}
	}
	return false
}

// rule maps any of its keywords to a category. Rules are evaluated in
// order and the first match wins, so rejection phrasings must come before
// the broader "interested" match.
type rule struct {
	keywords []string
	category string
}

var rules = []rule{
	{[]string{"out of office", "on vacation", "annual leave", "auto-reply", "automatic reply"}, OutOfOffice},
	{[]string{"not interested", "no longer interested", "unsubscribe", "remove me", "stop emailing"}, NotInterested},
	{[]string{"meeting confirmed", "meeting booked", "invitation accepted", "calendar invite", "see you at", "confirmed for"}, MeetingBooked},
	{[]string{"lottery", "prize", "winner", "congratulations you", "viagra", "crypto giveaway", "act now"}, Spam},
	{[]string{"interested", "sounds good", "tell me more", "schedule a demo", "book a demo", "let's talk", "happy to chat"}, Interested},
}

// Suggest returns the category the keyword rules assign to the document,
// or Uncategorized when nothing matches.
func Suggest(doc email.Document) string {
	content := strings.ToLower(doc.Subject + "\n" + doc.Text)
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(content, keyword) {
				return r.category
			}
		}
	}
	return Uncategorized
}
