// Package reply produces a canned reply suggestion for an email document.
// Pure keyword rules, no external calls.
package reply

import (
	"fmt"
	"strings"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
)

// BookingLink is included in replies to scheduling requests.
const BookingLink = "https://cal.example.com/onebox/30min"

// Suggest returns a reply draft for the document. The rules mirror the
// categorizer's: scheduling requests get the booking link, expressions of
// interest get a follow-up, everything else a polite acknowledgement.
func Suggest(doc email.Document) string {
	content := strings.ToLower(doc.Subject + "\n" + doc.Text)
	greeting := greetingFor(doc)

	switch {
	case containsAny(content, "interview", "meeting", "schedule a call", "available for a call", "when are you free"):
		return fmt.Sprintf("%s\n\nThank you for reaching out. I'd be glad to meet - you can pick any slot that works for you here: %s\n\nLooking forward to it.", greeting, BookingLink)
	case containsAny(content, "interested", "tell me more", "demo", "pricing", "learn more"):
		return fmt.Sprintf("%s\n\nGreat to hear you're interested! I'll send over the details shortly. In the meantime, feel free to share any questions you'd like covered.", greeting)
	default:
		return fmt.Sprintf("%s\n\nThank you for your email. I'll get back to you as soon as possible.", greeting)
	}
}

func greetingFor(doc email.Document) string {
	if len(doc.From) > 0 {
		if name := nameFromAddress(doc.From[0]); name != "" {
			return "Hi " + name + ","
		}
	}
	return "Hi,"
}

// nameFromAddress derives a salutation from the local part of an address:
// "jane.doe@example.com" becomes "Jane".
func nameFromAddress(address string) string {
	local, _, found := strings.Cut(address, "@")
	if !found || local == "" {
		return ""
	}
	first := local
	for _, sep := range []string{".", "_", "-", "+"} {
		if head, _, ok := strings.Cut(first, sep); ok {
			first = head
		}
	}
	if first == "" {
		return ""
	}
	return strings.ToUpper(first[:1]) + first[1:]
}

func containsAny(content string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(content, keyword) {
			return true
		}
	}
	return false
}
