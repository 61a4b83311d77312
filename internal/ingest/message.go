package ingest

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/mailmind/internal/identity"
)

// ParseMessage parses an RFC 5322 message into the upload shape. The
// plain-text part is preferred; an HTML-only message is stripped to text.
func ParseMessage(r io.Reader) (identity.RawEmail, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return identity.RawEmail{}, fmt.Errorf("reading message: %w", err)
	}
	defer mr.Close()

	email := identity.RawEmail{}
	h := mr.Header

	if id, err := h.MessageID(); err == nil {
		email.ID = id
	}
	if subject, err := h.Subject(); err == nil {
		email.Subject = subject
	}
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		email.Sender = from[0].Address
	}
	if date, err := h.Date(); err == nil && !date.IsZero() {
		email.Timestamp = date.UTC().Format(time.RFC3339)
	}

	textBody, htmlBody := readBodies(mr)
	email.Body = strings.TrimSpace(textBody)
	if email.Body == "" && htmlBody != "" {
		email.Body = stripHTML(htmlBody)
	}

	return email, nil
}

func readBodies(mr *mail.Reader) (textBody, htmlBody string) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && textBody == "":
			textBody = string(body)
		case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
			htmlBody = string(body)
		}
	}
	return textBody, htmlBody
}

var (
	htmlTagRe = regexp.MustCompile(`<[^>]*>`)
	spaceRe   = regexp.MustCompile(`[ \t]+`)
	blankRe   = regexp.MustCompile(`\n{3,}`)
)

// stripHTML reduces an HTML body to readable text.
func stripHTML(s string) string {
	s = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n\n").Replace(s)
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`).Replace(s)
	s = spaceRe.ReplaceAllString(s, " ")
	s = blankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
