package email

import "strings"

// Filter selects documents from an index. Zero-valued fields match
// everything.
type Filter struct {
	AccountID string
	Folder    string
	Category  string
	IDs       []string
	Query     string
	Limit     int
}

// Matches reports whether the document passes every set field of the
// filter. The query is a case-insensitive substring match over subject,
// body and sender addresses.
func (f Filter) Matches(doc Document) bool {
	if f.AccountID != "" && doc.AccountID != f.AccountID {
		return false
	}
	if f.Folder != "" && doc.Folder != f.Folder {
		return false
	}
	if f.Category != "" && doc.Category != f.Category {
		return false
	}
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == doc.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Query != "" {
		query := strings.ToLower(f.Query)
		content := strings.ToLower(doc.Subject + "\n" + doc.Text + "\n" + strings.Join(doc.From, "\n"))
		if !strings.Contains(content, query) {
			return false
		}
	}
	return true
}
