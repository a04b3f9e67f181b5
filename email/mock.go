package email

import "time"

// MockAccountID tags the documents seeded when no real account is
// available.
const MockAccountID = "mock"

// MockDocuments returns the fixed set of sample documents seeded into the
// index when no account is configured or none could connect. IDs follow
// the usual identity scheme, so a later bulk-clear removes them cleanly.
func MockDocuments() []Document {
	now := time.Now().UTC()
	seeds := []struct {
		subject string
		from    string
		text    string
		age     time.Duration
	}{
		{
			subject: "Welcome to your onebox",
			from:    "hello@onebox.example.com",
			text: "Your onebox is up and running. Connect an IMAP account to replace " +
				"these sample messages with your real mail.",
			age: 2 * time.Hour,
		},
		{
			subject: "Interview availability next week",
			from:    "recruiting@acme.example.com",
			text: "Hi, thanks for applying. We were impressed by your profile and would " +
				"like to schedule a technical round. Could you share your availability " +
				"for next week?",
			age: 26 * time.Hour,
		},
		{
			subject: "Meeting confirmed: product walkthrough",
			from:    "calendar@meetings.example.com",
			text: "Your meeting has been confirmed for Thursday at 10:00 UTC. A calendar " +
				"invite is attached.",
			age: 2 * 24 * time.Hour,
		},
		{
			subject: "Re: pricing for the team plan",
			from:    "dana@customer.example.org",
			text: "We are interested in the team plan. Could you send over a quote for " +
				"25 seats? A short demo would help too.",
			age: 4 * 24 * time.Hour,
		},
		{
			subject: "Out of office: back on Monday",
			from:    "lee@partner.example.net",
			text: "I am out of office with limited access to email. I will reply when I " +
				"am back on Monday.",
			age: 6 * 24 * time.Hour,
		},
	}

	docs := make([]Document, 0, len(seeds))
	for i, seed := range seeds {
		docs = append(docs, Document{
			ID:        DocumentID(MockAccountID, FolderInbox, uint32(i+1), 0),
			AccountID: MockAccountID,
			Folder:    FolderInbox,
			Subject:   seed.subject,
			From:      []string{seed.from},
			To:        []string{"you@onebox.example.com"},
			Date:      now.Add(-seed.age),
			Text:      seed.text,
			Category:  DefaultCategory,
		})
	}
	return docs
}
