package model

import "time"

// Draft is a saved outgoing message. Drafts are created by the client but
// otherwise read-only.
type Draft struct {
	ID        string `json:"id" db:"id"`
	Recipient string `json:"recipient" db:"recipient"`
	Subject   string `json:"subject" db:"subject"`
	Body      string `json:"body" db:"body"`
	Timestamp string `json:"timestamp,omitempty" db:"timestamp"`

	Time time.Time `json:"-" db:"-"`
}

// DisplayTime returns the creation time, falling back to now when the
// backend did not provide one. The fallback is never stored.
func (d Draft) DisplayTime(now time.Time) time.Time {
	if d.Time.IsZero() {
		return now
	}
	return d.Time
}
