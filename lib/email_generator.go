package lib

import (
	"fmt"
	"math/rand"
	"time"
)

const charset = "abcdefghijklmnopqrstuvwxyz " +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 " +
	",./;'\\ \" []{}<>?:|!@£$%^&*()_+-= " +
	"\r\n\r\n\r\n "

const template = "From: %s\r\n" +
	"To: %s\r\n" +
	"Subject: %s\r\n" +
	"Date: %s\r\n" +
	"Message-ID: <%d@localhost/>\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n%s"

var seededRand *rand.Rand = rand.New(
	rand.NewSource(time.Now().UnixMilli()))

func stringWithCharset(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[seededRand.Intn(len(charset))]
	}
	return string(b)
}

// GenerateEmail returns a plain text message of random size, up to well
// past the document body bound.
func GenerateEmail(from, to string, uid uint32) []byte {
	length := seededRand.Intn(300000)
	return GenerateTextEmail(from, to, "A little message, just for you", time.Now(), stringWithCharset(length, charset), uid)
}

// GenerateTextEmail returns a deterministic single part message with the
// given header fields and body.
func GenerateTextEmail(from, to, subject string, date time.Time, body string, uid uint32) []byte {
	msg := fmt.Sprintf(template, from, to, subject, date.Format(time.RFC1123Z), uid, body)
	return []byte(msg)
}
