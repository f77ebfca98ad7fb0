package flow

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"ivr-gateway/internal/calllog"
	"ivr-gateway/internal/hours"
	"ivr-gateway/internal/messages"
	"ivr-gateway/internal/registry"
	"ivr-gateway/internal/settings"
)

type recordingNotifier struct {
	mu      sync.Mutex
	numbers []string
}

func (n *recordingNotifier) WelcomeCall(ctx context.Context, number string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.numbers = append(n.numbers, number)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.numbers)
}

type testEnv struct {
	engine   *Engine
	msgs     *messages.MemoryRepo
	calls    *calllog.MemoryRepo
	registry *registry.MemoryRepo
	hours    *hours.MemoryRepo
	settings *settings.MemoryStore
	notifier *recordingNotifier
}

func newTestEnv() *testEnv {
	env := &testEnv{
		msgs:     messages.NewMemoryRepo(),
		calls:    calllog.NewMemoryRepo(),
		registry: registry.NewMemoryRepo(),
		hours:    hours.NewMemoryRepo(),
		settings: settings.NewMemoryStore(),
		notifier: &recordingNotifier{},
	}
	env.engine = &Engine{
		Messages: messages.NewService(env.msgs, nil),
		Hours:    hours.NewGate(env.hours, time.UTC),
		Registry: env.registry,
		Calls:    env.calls,
		Settings: env.settings,
		Notifier: env.notifier,
		Now:      func() time.Time { return time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC) }, // Wednesday noon
		Dispatch: func(f func()) { f() },                                                   // run welcome inline for assertions
	}
	return env
}

// closeWednesday makes the fixed test clock fall outside open hours.
func (env *testEnv) closeWednesday() {
	var s hours.Schedule
	s[2] = &hours.Window{Open: "14:00", Close: "17:00"}
	_ = env.hours.Replace(context.Background(), s)
}

func sayTexts(verbs []Verb) []string {
	var out []string
	for _, v := range verbs {
		if s, ok := v.(Say); ok {
			out = append(out, s.Text)
		}
	}
	return out
}

func hasGather(s Script) bool {
	for _, v := range s {
		if _, ok := v.(Gather); ok {
			return true
		}
	}
	return false
}

func TestAnswer_OpenWithPrompt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.msgs.SetText(ctx, messages.CodePrompt, "Enter a code, then press pound.", messages.Options{})

	s := env.engine.Answer(ctx, AnswerRequest{Caller: "+15551230000", CallSID: "CA1"})

	if len(s) != 2 {
		t.Fatalf("expected gather plus redirect, got %d verbs", len(s))
	}
	g, ok := s[0].(Gather)
	if !ok {
		t.Fatalf("expected first verb Gather, got %T", s[0])
	}
	if g.Action != "/answer/digits" || g.FinishOnKey != "#" {
		t.Fatalf("unexpected gather target: %+v", g)
	}
	if texts := sayTexts(g.Verbs); len(texts) != 1 || !strings.Contains(texts[0], "Enter a code") {
		t.Fatalf("expected prompt spoken inside gather, got %v", texts)
	}
	r, ok := s[1].(Redirect)
	if !ok || r.URL != "/answer/digits" {
		t.Fatalf("expected fallback redirect to digits, got %+v", s[1])
	}
}

func TestAnswer_OpenWithoutPromptRedirectsOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	s := env.engine.Answer(ctx, AnswerRequest{Caller: "+15551230000", CallSID: "CA1"})

	if len(s) != 1 {
		t.Fatalf("expected only the fallback redirect, got %d verbs", len(s))
	}
	if r, ok := s[0].(Redirect); !ok || r.URL != "/answer/digits" {
		t.Fatalf("expected redirect to digit collection, got %+v", s[0])
	}
}

func TestAnswer_ClosedWithoutClosedCodeIsEmpty(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.closeWednesday()

	s := env.engine.Answer(ctx, AnswerRequest{Caller: "+15551230000", CallSID: "CA1"})
	if len(s) != 0 {
		t.Fatalf("expected empty script on closed day without closed message, got %d verbs", len(s))
	}
}

func TestAnswer_ClosedPlainMessage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.closeWednesday()
	_ = env.msgs.SetText(ctx, messages.CodeClosed, "We are closed.", messages.Options{})

	s := env.engine.Answer(ctx, AnswerRequest{Caller: "+15551230000", CallSID: "CA1"})
	if hasGather(s) {
		t.Fatalf("expected no gather without a prompt message")
	}
	if texts := sayTexts(s); len(texts) != 1 || texts[0] != "We are closed." {
		t.Fatalf("expected closed message spoken, got %v", texts)
	}
}

func TestAnswer_ClosedWrapsInGatherWhenPromptExists(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.closeWednesday()
	_ = env.msgs.SetText(ctx, messages.CodeClosed, "We are closed.", messages.Options{})
	_ = env.msgs.SetText(ctx, messages.CodePrompt, "Enter a code.", messages.Options{})

	s := env.engine.Answer(ctx, AnswerRequest{Caller: "+15551230000", CallSID: "CA1"})
	if len(s) != 1 {
		t.Fatalf("expected a single gather, got %d verbs", len(s))
	}
	g, ok := s[0].(Gather)
	if !ok {
		t.Fatalf("expected gather wrapping closed message, got %T", s[0])
	}
	if texts := sayTexts(g.Verbs); len(texts) != 1 || texts[0] != "We are closed." {
		t.Fatalf("expected closed message inside gather, got %v", texts)
	}
}

func TestAnswer_WelcomeNotificationOnceOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	env.engine.Answer(ctx, AnswerRequest{Caller: "+15551230000", CallSID: "CA1"})
	if env.notifier.count() != 1 {
		t.Fatalf("expected exactly one welcome attempt, got %d", env.notifier.count())
	}

	env.engine.Answer(ctx, AnswerRequest{Caller: "+15551230000", CallSID: "CA2"})
	if env.notifier.count() != 1 {
		t.Fatalf("expected no welcome attempt on repeat call, got %d", env.notifier.count())
	}

	env.engine.Answer(ctx, AnswerRequest{Caller: "+15559998888", CallSID: "CA3"})
	if env.notifier.count() != 2 {
		t.Fatalf("expected welcome attempt for a different number, got %d", env.notifier.count())
	}
}

func TestAnswer_RecordsCall(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	env.engine.Answer(ctx, AnswerRequest{Caller: "+15551230000", CallSID: "CA1"})
	entries := env.calls.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one log row, got %d", len(entries))
	}
	if entries[0].Number != "+15551230000" || entries[0].CallSID != "CA1" {
		t.Fatalf("unexpected log row: %+v", entries[0])
	}

	// Missing caller or correlation id must not create a row.
	env.engine.Answer(ctx, AnswerRequest{Caller: "", CallSID: "CA2"})
	if len(env.calls.Entries()) != 1 {
		t.Fatalf("expected malformed answer not to be logged")
	}
}

func TestCollectDigits_PlainCodeIsTerminal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.msgs.SetText(ctx, "42", "You win.", messages.Options{})
	_ = env.calls.RecordStart(ctx, "+15551230000", time.Now(), "CA1")

	s := env.engine.CollectDigits(ctx, DigitsRequest{Digits: "42", CallSID: "CA1"})

	if hasGather(s) {
		t.Fatalf("expected terminal response, got gather")
	}
	if texts := sayTexts(s); len(texts) != 1 || texts[0] != "You win." {
		t.Fatalf("expected code message, got %v", texts)
	}

	entries := env.calls.Entries()
	if entries[0].Code == nil || *entries[0].Code != "42" {
		t.Fatalf("expected code attached to log row, got %+v", entries[0].Code)
	}
}

func TestCollectDigits_UnknownCodeFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.msgs.SetText(ctx, messages.CodeDefault, "No such code.", messages.Options{})

	s := env.engine.CollectDigits(ctx, DigitsRequest{Digits: "777", CallSID: "CA1"})
	if texts := sayTexts(s); len(texts) != 1 || texts[0] != "No such code." {
		t.Fatalf("expected default message for unknown code, got %v", texts)
	}

	// Empty digits resolve the same way.
	s = env.engine.CollectDigits(ctx, DigitsRequest{Digits: "", CallSID: "CA1"})
	if texts := sayTexts(s); len(texts) != 1 || texts[0] != "No such code." {
		t.Fatalf("expected default message for empty digits, got %v", texts)
	}
}

func TestCollectDigits_AudioCodeEmitsPlay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.msgs.SetAudio(ctx, "9", []byte("mp3"), "nine.mp3", messages.Options{})

	s := env.engine.CollectDigits(ctx, DigitsRequest{Digits: "9", CallSID: "CA1"})
	if len(s) != 1 {
		t.Fatalf("expected a single play verb, got %d", len(s))
	}
	p, ok := s[0].(Play)
	if !ok {
		t.Fatalf("expected play verb, got %T", s[0])
	}
	if p.URL != "/answer/audio?code=9" {
		t.Fatalf("unexpected audio url %q", p.URL)
	}
}

func TestCollectDigits_FlaggedCodeGathersID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.msgs.SetText(ctx, "7", "Premium info.", messages.Options{RegisterID: true})
	_ = env.msgs.SetText(ctx, messages.CodeIDPrompt, "Enter your id.", messages.Options{})

	s := env.engine.CollectDigits(ctx, DigitsRequest{Digits: "7", CallSID: "CA1"})
	if len(s) != 1 {
		t.Fatalf("expected a single gather, got %d verbs", len(s))
	}
	g, ok := s[0].(Gather)
	if !ok {
		t.Fatalf("expected gather, got %T", s[0])
	}
	if !strings.HasPrefix(g.Action, "/answer/id?") {
		t.Fatalf("expected id callback target, got %q", g.Action)
	}
	for _, want := range []string{"original_digits=7", "register_id=1", "require_id=0"} {
		if !strings.Contains(g.Action, want) {
			t.Fatalf("expected %q in action url %q", want, g.Action)
		}
	}
	if texts := sayTexts(g.Verbs); len(texts) != 1 || texts[0] != "Enter your id." {
		t.Fatalf("expected id prompt inside gather, got %v", texts)
	}
}

func TestCollectID_RegisterWithoutPatternAccepts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.msgs.SetText(ctx, "7", "Premium info.", messages.Options{RegisterID: true})
	_ = env.msgs.SetText(ctx, messages.CodeGoodID, "Registered.", messages.Options{})

	s := env.engine.CollectID(ctx, IDRequest{
		IDNumber: "314159",
		CallSID:  "CA1",
		Cont:     Continuation{OriginalCode: "7", RegisterID: true},
	})

	if ok, _ := env.registry.Contains(ctx, "314159"); !ok {
		t.Fatalf("expected id registered")
	}
	texts := sayTexts(s)
	if len(texts) != 2 || texts[0] != "Registered." || texts[1] != "Premium info." {
		t.Fatalf("expected good-id then code message, got %v", texts)
	}
	if hasGather(s) {
		t.Fatalf("id collection must be terminal")
	}
}

func TestCollectID_RegisterWithPatternRejects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.settings.Set(ctx, settings.KeyIDPattern, `^[0-9]{6}$`)
	_ = env.msgs.SetText(ctx, "7", "Premium info.", messages.Options{RegisterID: true})
	_ = env.msgs.SetText(ctx, messages.CodeBadID, "Invalid id.", messages.Options{})

	s := env.engine.CollectID(ctx, IDRequest{
		IDNumber: "12",
		CallSID:  "CA1",
		Cont:     Continuation{OriginalCode: "7", RegisterID: true},
	})

	if ok, _ := env.registry.Contains(ctx, "12"); ok {
		t.Fatalf("expected invalid id not registered")
	}
	if texts := sayTexts(s); len(texts) != 1 || texts[0] != "Invalid id." {
		t.Fatalf("expected bad-id only, got %v", texts)
	}
}

func TestCollectID_RequireUnknownID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.msgs.SetText(ctx, "8", "Members only.", messages.Options{RequireID: true})
	_ = env.msgs.SetText(ctx, messages.CodeUnknownID, "Unknown id.", messages.Options{})

	s := env.engine.CollectID(ctx, IDRequest{
		IDNumber: "000",
		CallSID:  "CA1",
		Cont:     Continuation{OriginalCode: "8", RequireID: true},
	})
	if texts := sayTexts(s); len(texts) != 1 || texts[0] != "Unknown id." {
		t.Fatalf("expected unknown-id only, got %v", texts)
	}
}

func TestCollectID_RequireKnownID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.registry.Add(ctx, "424242")
	_ = env.msgs.SetText(ctx, "8", "Members only.", messages.Options{RequireID: true})

	s := env.engine.CollectID(ctx, IDRequest{
		IDNumber: "424242",
		CallSID:  "CA1",
		Cont:     Continuation{OriginalCode: "8", RequireID: true},
	})
	if texts := sayTexts(s); len(texts) != 1 || texts[0] != "Members only." {
		t.Fatalf("expected code message for known id, got %v", texts)
	}
}

func TestCollectID_RegisterTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.msgs.SetText(ctx, "6", "Both flags.", messages.Options{RequireID: true, RegisterID: true})
	_ = env.msgs.SetText(ctx, messages.CodeGoodID, "Registered.", messages.Options{})

	// The id is unknown to the registry; the require branch would say
	// unknown-id, so reaching good-id proves register ran first.
	s := env.engine.CollectID(ctx, IDRequest{
		IDNumber: "555",
		CallSID:  "CA1",
		Cont:     Continuation{OriginalCode: "6", RequireID: true, RegisterID: true},
	})
	texts := sayTexts(s)
	if len(texts) != 2 || texts[0] != "Registered." {
		t.Fatalf("expected register branch to win, got %v", texts)
	}
	if ok, _ := env.registry.Contains(ctx, "555"); !ok {
		t.Fatalf("expected id registered via precedence branch")
	}
}

func TestCollectID_AttachesIDNumber(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_ = env.calls.RecordStart(ctx, "+15551230000", time.Now(), "CA1")

	env.engine.CollectID(ctx, IDRequest{
		IDNumber: "777",
		CallSID:  "CA1",
		Cont:     Continuation{OriginalCode: "8", RequireID: true},
	})
	entries := env.calls.Entries()
	if entries[0].IDNumber == nil || *entries[0].IDNumber != "777" {
		t.Fatalf("expected id number attached, got %+v", entries[0].IDNumber)
	}
}

func TestContinuationRoundTrip(t *testing.T) {
	for _, cont := range []Continuation{
		{},
		{OriginalCode: "42"},
		{OriginalCode: "7", RequireID: true},
		{OriginalCode: "7", RegisterID: true},
		{OriginalCode: "6", RequireID: true, RegisterID: true},
	} {
		q := cont.EncodeQuery()
		vals, err := parseQueryForTest(q)
		if err != nil {
			t.Fatalf("parse %q: %v", q, err)
		}
		got := ParseContinuation(func(name string) string { return vals.Get(name) })
		if got != cont {
			t.Fatalf("round trip mismatch: %+v -> %+v", cont, got)
		}
	}
}
