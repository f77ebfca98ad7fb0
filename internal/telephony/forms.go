package telephony

import (
	"net/http"
	"strings"

	"ivr-gateway/internal/flow"
)

// Webhook field names posted by the platform. The continuation parameters
// arrive in the action URL query while Digits and CallSid arrive in the POST
// body, so all reads go through http.Request.FormValue, which merges both.
//
// Missing fields parse to empty strings on purpose: a malformed callback
// still has to produce a script.

// AnswerForm is the entry webhook payload.
type AnswerForm struct {
	Caller  string
	CallSID string
}

func ParseAnswerForm(r *http.Request) AnswerForm {
	return AnswerForm{
		Caller:  strings.TrimSpace(r.FormValue("Caller")),
		CallSID: strings.TrimSpace(r.FormValue("CallSid")),
	}
}

// DigitsForm is the digit-collection callback payload.
type DigitsForm struct {
	Digits  string
	CallSID string
}

func ParseDigitsForm(r *http.Request) DigitsForm {
	return DigitsForm{
		Digits:  r.FormValue("Digits"),
		CallSID: strings.TrimSpace(r.FormValue("CallSid")),
	}
}

// IDForm is the id-collection callback payload: the collected id digits plus
// the round-tripped continuation.
type IDForm struct {
	IDNumber string
	CallSID  string
	Cont     flow.Continuation
}

func ParseIDForm(r *http.Request) IDForm {
	return IDForm{
		IDNumber: r.FormValue("Digits"),
		CallSID:  strings.TrimSpace(r.FormValue("CallSid")),
		Cont:     flow.ParseContinuation(r.FormValue),
	}
}
