package bolt

import (
	"bytes"
	"compress/zlib"
	"encoding/gob"
	"errors"
	"io"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
)

// docRecord is the stored form of a document: the metadata gob encoded as
// is, the text body compressed separately since it dominates the size.
type docRecord struct {
	Meta email.Document
	Body []byte
}

func newRecord(doc email.Document) (*docRecord, error) {
	record := &docRecord{Meta: doc}
	if doc.Text == "" {
		return record, nil
	}
	record.Meta.Text = ""

	buffer := &bytes.Buffer{}
	writer := zlib.NewWriter(buffer)
	if _, err := writer.Write([]byte(doc.Text)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	record.Body = buffer.Bytes()
	return record, nil
}

func (r *docRecord) document() (email.Document, error) {
	doc := r.Meta
	if len(r.Body) == 0 {
		return doc, nil
	}
	reader, err := zlib.NewReader(bytes.NewReader(r.Body))
	if err != nil {
		return doc, err
	}
	defer reader.Close()
	text, err := io.ReadAll(reader)
	if err != nil {
		return doc, err
	}
	doc.Text = string(text)
	return doc, nil
}

func SerializeInt(value int) ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := gob.NewEncoder(buffer)
	err := encoder.Encode(value)
	return buffer.Bytes(), err
}

func DeserializeInt(input []byte) (int, error) {
	output := 0
	decoder := gob.NewDecoder(bytes.NewBuffer(input))
	err := decoder.Decode(&output)
	return output, err
}

func SerializeObject[T any](data *T) ([]byte, error) {
	if data == nil {
		return nil, errors.New("cannot serialize nil object")
	}
	buffer := &bytes.Buffer{}
	encoder := gob.NewEncoder(buffer)
	err := encoder.Encode(data)
	return buffer.Bytes(), err
}

func DeserializeObject[T any](input []byte) (*T, error) {
	output := new(T)
	decoder := gob.NewDecoder(bytes.NewBuffer(input))
	err := decoder.Decode(&output)
	return output, err
}
