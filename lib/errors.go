package lib

import "errors"

var (
	ErrNotSelected      = errors.New("mailbox not selected")
	ErrDocumentNotFound = errors.New("document not found")
)
