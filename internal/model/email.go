package model

import (
	"strings"
	"time"
)

// Category is the classification label assigned to an email by the backend.
type Category string

const (
	CategoryImportant  Category = "important"
	CategoryPersonal   Category = "personal"
	CategoryWork       Category = "work"
	CategoryMeeting    Category = "meeting"
	CategoryNewsletter Category = "newsletter"
	CategorySpam       Category = "spam"
	CategoryOther      Category = "other"
)

// CategoryOrder is the fixed priority order used when sorting by category.
var CategoryOrder = []Category{
	CategoryImportant,
	CategoryPersonal,
	CategoryWork,
	CategoryMeeting,
	CategoryNewsletter,
	CategorySpam,
	CategoryOther,
}

// ParseCategory maps a raw label onto a known Category. Matching is
// case-insensitive; empty or unrecognized labels become CategoryOther.
func ParseCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range CategoryOrder {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// Rank returns the position of c in CategoryOrder.
func (c Category) Rank() int {
	for i, known := range CategoryOrder {
		if c == known {
			return i
		}
	}
	return len(CategoryOrder) - 1
}

// Label returns the display label for the category.
func (c Category) Label() string {
	c = ParseCategory(string(c))
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Action is a follow-up task extracted from an email.
type Action struct {
	Task     string `json:"task"`
	Deadline string `json:"deadline"`
}

// Email is the canonical email entity. ID is the single logical identity
// key and is never empty once the entity has passed through the
// identity normalizer.
type Email struct {
	ID         string   `json:"id" db:"id"`
	Sender     string   `json:"sender" db:"sender"`
	Subject    string   `json:"subject" db:"subject"`
	Body       string   `json:"body" db:"body"`
	Timestamp  string   `json:"timestamp" db:"timestamp"`
	Category   Category `json:"category" db:"category"`
	Actions    []Action `json:"actions" db:"-"`
	Summary    string   `json:"summary,omitempty" db:"summary"`
	DraftReply string   `json:"draft_reply,omitempty" db:"draft_reply"`

	// Time is Timestamp parsed; zero when the timestamp is missing or
	// unparsable, which sorts the email last.
	Time time.Time `json:"-" db:"-"`
}

// Matches reports whether term occurs (case-insensitively) in the subject,
// sender, or body. term must already be lowercased.
func (e Email) Matches(term string) bool {
	return strings.Contains(strings.ToLower(e.Subject), term) ||
		strings.Contains(strings.ToLower(e.Sender), term) ||
		strings.Contains(strings.ToLower(e.Body), term)
}
