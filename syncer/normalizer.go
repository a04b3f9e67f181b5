package syncer

import (
	"bytes"
	"io"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/index"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/remote"
	"github.com/emersion/go-imap"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Normalizer converts raw protocol messages into canonical documents and
// hands them to the sink. Body failures are never fatal: the metadata-only
// document is still indexed and the failure is returned as a warning.
type Normalizer struct {
	Sink    index.Sink
	Archive Archiver
	Log     lib.Logger
}

// Ingest produces exactly one document from a fetched message and writes
// it to the sink. A non-nil error alongside a valid document is a warning:
// the document was still indexed, only the body is missing or partial. A
// SinkWriteFailed error means the document was not stored.
func (n *Normalizer) Ingest(accountID, folder string, msg *remote.Message) (email.Document, error) {
	doc := email.Document{
		ID:        email.DocumentID(accountID, folder, msg.Uid, msg.SeqNum),
		AccountID: accountID,
		Folder:    folder,
		From:      []string{},
		To:        []string{},
		Date:      msg.InternalDate,
		Category:  email.DefaultCategory,
	}
	if envelope := msg.Envelope; envelope != nil {
		doc.Subject = envelope.Subject
		doc.From = addresses(envelope.From)
		doc.To = addresses(envelope.To)
		if !envelope.Date.IsZero() {
			doc.Date = envelope.Date
		}
	}

	var warn error
	if msg.Body != nil {
		raw, err := io.ReadAll(msg.Body)
		if err != nil {
			warn = &Error{Kind: DownloadFailed, Account: accountID, Err: err}
		} else {
			n.archive(accountID, folder, msg, raw)
			text, err := extractText(raw)
			if err != nil {
				warn = &Error{Kind: NormalizeFailed, Account: accountID, Err: err}
			}
			doc.Text = email.TruncateText(text)
		}
	}

	if err := n.Sink.Put(doc); err != nil {
		return doc, &Error{Kind: SinkWriteFailed, Account: accountID, Err: err}
	}
	return doc, warn
}

func (n *Normalizer) archive(accountID, folder string, msg *remote.Message, raw []byte) {
	if n.Archive == nil {
		return
	}
	err := n.Archive.Store(accountID, folder, msg.Uid, msg.InternalDate, bytes.NewReader(raw))
	if err != nil && n.Log != nil {
		n.Log.Printf("account %s: cannot archive message %d: %s", accountID, msg.Uid, err)
	}
}

func addresses(source []*imap.Address) []string {
	output := make([]string, 0, len(source))
	for _, addr := range source {
		if addr == nil {
			continue
		}
		output = append(output, addr.Address())
	}
	return output
}

// extractText returns the first text/plain inline part of the message,
// falling back to the first text/html part, then to the raw bytes when the
// message doesn't parse as MIME.
func extractText(raw []byte) (string, error) {
	reader, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw), err
	}

	html := ""
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return html, err
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil {
			continue
		}
		switch contentType {
		case "text/plain":
			content, err := io.ReadAll(part.Body)
			if err != nil {
				return "", err
			}
			return string(content), nil
		case "text/html":
			if html == "" {
				content, err := io.ReadAll(part.Body)
				if err != nil {
					return "", err
				}
				html = string(content)
			}
		}
	}
	return html, nil
}
