package calllog

import "time"

// Entry is one inbound call. CallSID is the telephony platform's correlation
// id; later webhook callbacks use it to attach the selected code and the
// collected id number to the row created on answer.
type Entry struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number"`
	Timestamp time.Time `json:"timestamp"`
	CallSID   string    `json:"call_sid"`

	// Code is the digit string the caller selected; nil until the
	// digit-collection callback arrives.
	Code *string `json:"code,omitempty"`

	// IDNumber is the collected caller id; nil unless the flow reached the
	// id-collection step.
	IDNumber *string `json:"id_number,omitempty"`
}

// AggregateRow is the reporting projection of an entry.
type AggregateRow struct {
	Number    string    `json:"number"`
	Timestamp time.Time `json:"timestamp"`
	Code      *string   `json:"code"`
}
