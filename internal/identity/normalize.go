// Package identity reconciles the two identity field names the backend
// uses for the same entity ("id" and "_id") into a single key. It runs
// once, at the ingestion boundary, before an entity reaches any other
// component.
package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/nhle/mailmind/internal/model"
)

// ErrMissingIdentity is returned for entities that carry neither "id" nor
// "_id". Such entities cannot be keyed and are excluded from every list.
var ErrMissingIdentity = errors.New("entity has neither id nor _id")

// RawEmail is an email exactly as decoded from the backend.
type RawEmail struct {
	ID         string         `json:"id,omitempty"`
	MongoID    string         `json:"_id,omitempty"`
	Sender     string         `json:"sender"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	Timestamp  string         `json:"timestamp"`
	Category   string         `json:"category"`
	Actions    []model.Action `json:"actions"`
	Summary    string         `json:"summary,omitempty"`
	DraftReply string         `json:"draft_reply,omitempty"`
}

// RawDraft is a draft exactly as decoded from the backend.
type RawDraft struct {
	ID        string `json:"id,omitempty"`
	MongoID   string `json:"_id,omitempty"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Reconcile fills whichever of the two identity fields is empty from the
// other. When both are set "id" wins and "_id" is overwritten so the pair
// always agrees. Whitespace-only values count as empty.
func Reconcile(id, mongoID string) (string, string, error) {
	id = strings.TrimSpace(id)
	mongoID = strings.TrimSpace(mongoID)

	switch {
	case id != "":
		return id, id, nil
	case mongoID != "":
		return mongoID, mongoID, nil
	default:
		return "", "", ErrMissingIdentity
	}
}

// Key returns the reconciled identity of r, both fields synthesized.
func (r *RawEmail) Key() (string, error) {
	id, mongoID, err := Reconcile(r.ID, r.MongoID)
	if err != nil {
		return "", err
	}
	r.ID, r.MongoID = id, mongoID
	return id, nil
}

// Fill returns a copy of r with both identity fields present and equal.
func Fill(r RawEmail) (RawEmail, error) {
	if _, err := r.Key(); err != nil {
		return r, err
	}
	return r, nil
}

// Normalize converts a raw backend email into the canonical model. The
// category is lowercased (unknown → other) and the timestamp parsed.
func Normalize(r RawEmail) (model.Email, error) {
	key, err := r.Key()
	if err != nil {
		return model.Email{}, err
	}

	actions := r.Actions
	if actions == nil {
		actions = []model.Action{}
	}

	return model.Email{
		ID:         key,
		Sender:     r.Sender,
		Subject:    r.Subject,
		Body:       r.Body,
		Timestamp:  r.Timestamp,
		Category:   model.ParseCategory(r.Category),
		Actions:    actions,
		Summary:    r.Summary,
		DraftReply: r.DraftReply,
		Time:       ParseTimestamp(r.Timestamp),
	}, nil
}

// NormalizeAll normalizes every entity, dropping (and counting) those
// without any identity.
func NormalizeAll(raws []RawEmail) ([]model.Email, int) {
	out := make([]model.Email, 0, len(raws))
	dropped := 0
	for _, r := range raws {
		e, err := Normalize(r)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, e)
	}
	return out, dropped
}

// NormalizeDraft applies the same identity rule to a draft.
func NormalizeDraft(r RawDraft) (model.Draft, error) {
	id, _, err := Reconcile(r.ID, r.MongoID)
	if err != nil {
		return model.Draft{}, err
	}
	return model.Draft{
		ID:        id,
		Recipient: r.Recipient,
		Subject:   r.Subject,
		Body:      r.Body,
		Timestamp: r.Timestamp,
		Time:      ParseTimestamp(r.Timestamp),
	}, nil
}

// NormalizeDrafts normalizes every draft, dropping those without identity.
func NormalizeDrafts(raws []RawDraft) ([]model.Draft, int) {
	out := make([]model.Draft, 0, len(raws))
	dropped := 0
	for _, r := range raws {
		d, err := NormalizeDraft(r)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, d)
	}
	return out, dropped
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses the ISO-ish timestamps the backend emits. It
// returns the zero time when s is empty or in no known layout.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
