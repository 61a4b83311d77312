// Package ingest turns local mail into the JSON upload format accepted by
// the backend: .json files pass through, .eml files are parsed here, and
// a mailbox can be imported over IMAP.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nhle/mailmind/internal/identity"
)

// ErrUnsupportedFile is returned for files that cannot be uploaded. It is
// raised before any request is made.
var ErrUnsupportedFile = errors.New("unsupported upload file")

// Payload is a ready-to-send upload body.
type Payload struct {
	Filename string
	Data     []byte
}

// CheckExtension reports ErrUnsupportedFile unless path ends in .json or
// .eml (case-insensitive).
func CheckExtension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".eml":
		return nil
	default:
		return fmt.Errorf("%w: %s (want .json or .eml)", ErrUnsupportedFile, filepath.Base(path))
	}
}

// Prepare reads path and returns its upload payload.
func Prepare(path string) (Payload, error) {
	if err := CheckExtension(path); err != nil {
		return Payload{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("reading %s: %w", path, err)
	}

	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if !json.Valid(data) {
			return Payload{}, fmt.Errorf("%w: %s is not valid JSON", ErrUnsupportedFile, name)
		}
		return Payload{Filename: name, Data: data}, nil
	}

	email, err := ParseMessage(strings.NewReader(string(data)))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedFile, name, err)
	}
	return Encode(strings.TrimSuffix(name, filepath.Ext(name))+".json", []identity.RawEmail{email})
}

// uploadEmail is one entry of the upload file.
type uploadEmail struct {
	ID        string `json:"id,omitempty"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// Encode renders emails in the upload file format, a JSON array.
func Encode(filename string, emails []identity.RawEmail) (Payload, error) {
	entries := make([]uploadEmail, 0, len(emails))
	for _, e := range emails {
		entries = append(entries, uploadEmail{
			ID:        e.ID,
			Sender:    e.Sender,
			Subject:   e.Subject,
			Body:      e.Body,
			Timestamp: e.Timestamp,
		})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return Payload{}, fmt.Errorf("encoding upload: %w", err)
	}
	return Payload{Filename: filename, Data: data}, nil
}
