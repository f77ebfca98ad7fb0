package flow

import (
	"net/url"
	"strconv"
)

// Script is the ordered list of actions returned to the telephony platform
// for one webhook callback. The telephony adapter renders it to the
// provider's markup; the engine itself stays provider-agnostic.
type Script []Verb

type Verb interface{ verb() }

// Say speaks text to the caller.
type Say struct {
	Text string
}

// Play streams audio fetched from URL.
type Play struct {
	URL string
}

// Gather collects digits and posts them to Action. Nested verbs play while
// the platform listens.
type Gather struct {
	Action      string
	FinishOnKey string
	Verbs       []Verb
}

// Redirect hands control to another callback URL.
type Redirect struct {
	URL string
}

func (Say) verb()      {}
func (Play) verb()     {}
func (Gather) verb()   {}
func (Redirect) verb() {}

// Continuation is the state threaded through the id-collection round trip.
// The platform is the only party guaranteed to deliver it back: it rides the
// Gather action URL as query parameters and comes back verbatim on the next
// callback. Nothing is kept server-side.
type Continuation struct {
	OriginalCode string
	RequireID    bool
	RegisterID   bool
}

const (
	paramOriginalDigits = "original_digits"
	paramRequireID      = "require_id"
	paramRegisterID     = "register_id"
)

// EncodeQuery serializes the continuation for the Gather action URL.
func (c Continuation) EncodeQuery() string {
	v := url.Values{
		paramOriginalDigits: {c.OriginalCode},
		paramRequireID:      {flagString(c.RequireID)},
		paramRegisterID:     {flagString(c.RegisterID)},
	}
	return v.Encode()
}

// ParseContinuation reads the round-tripped parameters back. get should
// merge URL query and POST body values, since the platform echoes the query
// parameters of the action URL while posting the collected digits.
func ParseContinuation(get func(name string) string) Continuation {
	return Continuation{
		OriginalCode: get(paramOriginalDigits),
		RequireID:    parseFlag(get(paramRequireID)),
		RegisterID:   parseFlag(get(paramRegisterID)),
	}
}

func flagString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseFlag(s string) bool {
	if s == "" {
		return false
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return false
}
