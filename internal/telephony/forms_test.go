package telephony

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postForm(t *testing.T, target, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestParseAnswerForm(t *testing.T) {
	r := postForm(t, "/answer", "Caller=%2B15551234567&CallSid=CA123")
	form := ParseAnswerForm(r)
	if form.Caller != "+15551234567" {
		t.Fatalf("unexpected caller %q", form.Caller)
	}
	if form.CallSID != "CA123" {
		t.Fatalf("unexpected call sid %q", form.CallSID)
	}
}

func TestParseAnswerForm_MissingFieldsAreEmpty(t *testing.T) {
	form := ParseAnswerForm(postForm(t, "/answer", ""))
	if form.Caller != "" || form.CallSID != "" {
		t.Fatalf("expected empty fields, got %+v", form)
	}
}

func TestParseIDForm_MergesQueryAndBody(t *testing.T) {
	// The continuation rides the action URL query; the collected digits and
	// call sid arrive in the POST body.
	r := postForm(t,
		"/answer/id?original_digits=7&require_id=0&register_id=1",
		"Digits=424242&CallSid=CA9")
	form := ParseIDForm(r)

	if form.IDNumber != "424242" {
		t.Fatalf("unexpected id digits %q", form.IDNumber)
	}
	if form.CallSID != "CA9" {
		t.Fatalf("unexpected call sid %q", form.CallSID)
	}
	if form.Cont.OriginalCode != "7" || form.Cont.RequireID || !form.Cont.RegisterID {
		t.Fatalf("unexpected continuation %+v", form.Cont)
	}
}
