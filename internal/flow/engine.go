// Package flow implements the IVR state machine. Each webhook callback maps
// to one engine method; the engine re-reads its stores on every call and
// keeps no per-call state beyond what the platform's correlation id lets it
// look up. A broken callback must still produce a script: dead air is the
// worst acceptable outcome, an HTTP error is not.
package flow

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	"ivr-gateway/internal/messages"
	"ivr-gateway/internal/settings"
	"ivr-gateway/pkg/logger"
)

// Ports. The engine accepts narrow interfaces so tests can substitute plain
// in-memory doubles.

type MessageStore interface {
	Contains(ctx context.Context, code string) (bool, error)
	ResponseIsText(ctx context.Context, code string) (bool, error)
	ResponseText(ctx context.Context, code string) (string, error)
	ResponseOptions(ctx context.Context, code string) (messages.Options, error)
}

type HoursGate interface {
	IsOpenNow(ctx context.Context, now time.Time) (bool, error)
}

type IDRegistry interface {
	Contains(ctx context.Context, id string) (bool, error)
	Add(ctx context.Context, id string) error
}

type CallLog interface {
	RecordStart(ctx context.Context, number string, ts time.Time, callSID string) error
	HasEverCalled(ctx context.Context, number string) (bool, error)
	AttachCode(ctx context.Context, callSID, code string) error
	AttachIDNumber(ctx context.Context, callSID, idNumber string) error
}

type SettingsReader interface {
	Get(ctx context.Context, name string) (string, bool, error)
}

type Notifier interface {
	WelcomeCall(ctx context.Context, number string) error
}

// Paths are the callback URLs baked into emitted scripts.
type Paths struct {
	Digits string
	ID     string
	Audio  string
}

func DefaultPaths() Paths {
	return Paths{
		Digits: "/answer/digits",
		ID:     "/answer/id",
		Audio:  "/answer/audio",
	}
}

// Engine decides, per callback, what script to return.
type Engine struct {
	Messages MessageStore
	Hours    HoursGate
	Registry IDRegistry
	Calls    CallLog
	Settings SettingsReader
	Notifier Notifier

	Paths Paths

	// Now supplies the wall clock; overridable in tests.
	Now func() time.Time

	// Dispatch runs the welcome notification off the request path. The
	// default spawns a goroutine; tests run inline.
	Dispatch func(func())
}

type AnswerRequest struct {
	Caller  string
	CallSID string
}

type DigitsRequest struct {
	Digits  string
	CallSID string
}

type IDRequest struct {
	IDNumber string
	CallSID  string
	Cont     Continuation
}

// Answer handles the entry webhook: welcome dispatch for first-time callers,
// call logging, then the open/closed greeting decision.
func (e *Engine) Answer(ctx context.Context, req AnswerRequest) Script {
	log := logger.From(ctx)
	now := e.now()

	if req.Caller != "" && req.CallSID != "" {
		// The first-call check runs before RecordStart so it reflects
		// "never called until now".
		ever, err := e.Calls.HasEverCalled(ctx, req.Caller)
		if err != nil {
			log.Error("first-call lookup failed", "err", err)
		} else if !ever {
			e.dispatchWelcome(req.Caller)
		}
		if err := e.Calls.RecordStart(ctx, req.Caller, now, req.CallSID); err != nil {
			log.Error("call log write failed", "err", err)
		}
	}

	open := true
	if e.Hours != nil {
		var err error
		open, err = e.Hours.IsOpenNow(ctx, now)
		if err != nil {
			// Answer the call rather than go silent on a store failure.
			log.Error("open-hours lookup failed", "err", err)
			open = true
		}
	}

	if open {
		var s Script
		if e.contains(ctx, messages.CodePrompt) {
			s = append(s, Gather{
				Action:      e.paths().Digits,
				FinishOnKey: "#",
				Verbs:       e.deliver(ctx, messages.CodePrompt),
			})
		}
		// Fallback for callers who enter nothing: continue to digit
		// collection with empty digits.
		s = append(s, Redirect{URL: e.paths().Digits})
		return s
	}

	// Closed. Without a closed message there is nothing to deliver; the
	// empty response is the stored behavior, not an oversight to paper over.
	if !e.contains(ctx, messages.CodeClosed) {
		return nil
	}
	closedVerbs := e.deliver(ctx, messages.CodeClosed)
	if e.contains(ctx, messages.CodePrompt) {
		// A prompt exists, so let the caller act during the closed message.
		return Script{Gather{
			Action:      e.paths().Digits,
			FinishOnKey: "#",
			Verbs:       closedVerbs,
		}}
	}
	return Script(closedVerbs)
}

// CollectDigits handles the digit-collection callback.
func (e *Engine) CollectDigits(ctx context.Context, req DigitsRequest) Script {
	log := logger.From(ctx)

	if req.CallSID != "" {
		if err := e.Calls.AttachCode(ctx, req.CallSID, req.Digits); err != nil {
			log.Error("attach code failed", "err", err)
		}
	}

	opts, err := e.Messages.ResponseOptions(ctx, req.Digits)
	if err != nil {
		log.Error("options lookup failed", "code", req.Digits, "err", err)
		opts = messages.Options{}
	}

	if !opts.RequireID && !opts.RegisterID {
		// Terminal: deliver the coded message and end.
		return Script(e.deliver(ctx, req.Digits))
	}

	cont := Continuation{
		OriginalCode: req.Digits,
		RequireID:    opts.RequireID,
		RegisterID:   opts.RegisterID,
	}
	return Script{Gather{
		Action:      e.paths().ID + "?" + cont.EncodeQuery(),
		FinishOnKey: "#",
		Verbs:       e.deliver(ctx, messages.CodeIDPrompt),
	}}
}

// CollectID handles the id-collection callback. Terminal in every branch.
func (e *Engine) CollectID(ctx context.Context, req IDRequest) Script {
	log := logger.From(ctx)

	if req.CallSID != "" {
		if err := e.Calls.AttachIDNumber(ctx, req.CallSID, req.IDNumber); err != nil {
			log.Error("attach id number failed", "err", err)
		}
	}

	switch {
	// register_id wins when both flags are set: the caller registers and
	// never hits the unknown-id branch.
	case req.Cont.RegisterID:
		if !e.idValid(ctx, req.IDNumber) {
			return Script(e.deliver(ctx, messages.CodeBadID))
		}
		if err := e.Registry.Add(ctx, req.IDNumber); err != nil {
			log.Error("id registration failed", "err", err)
		}
		s := Script(e.deliver(ctx, messages.CodeGoodID))
		return append(s, e.deliver(ctx, req.Cont.OriginalCode)...)

	case req.Cont.RequireID:
		known, err := e.Registry.Contains(ctx, req.IDNumber)
		if err != nil {
			log.Error("id lookup failed", "err", err)
		}
		if known {
			return Script(e.deliver(ctx, req.Cont.OriginalCode))
		}
		return Script(e.deliver(ctx, messages.CodeUnknownID))

	default:
		// Round-trip parameters were lost or mangled; deliver the original
		// code rather than fail the response.
		return Script(e.deliver(ctx, req.Cont.OriginalCode))
	}
}

// deliver resolves the message for a code into verbs: a Say for text, a Play
// referencing the audio endpoint for audio. A safe-empty text resolution
// delivers nothing.
func (e *Engine) deliver(ctx context.Context, code string) []Verb {
	log := logger.From(ctx)

	isText, err := e.Messages.ResponseIsText(ctx, code)
	if err != nil {
		log.Error("message kind lookup failed", "code", code, "err", err)
		return nil
	}
	if isText {
		text, err := e.Messages.ResponseText(ctx, code)
		if err != nil {
			log.Error("message text lookup failed", "code", code, "err", err)
			return nil
		}
		if text == "" {
			return nil
		}
		return []Verb{Say{Text: text}}
	}
	return []Verb{Play{URL: e.audioURL(code)}}
}

// idValid applies the configured validation pattern. No configured pattern
// means every id is valid; an uncompilable pattern is treated the same way.
func (e *Engine) idValid(ctx context.Context, id string) bool {
	if e.Settings == nil {
		return true
	}
	pattern, ok, err := e.Settings.Get(ctx, settings.KeyIDPattern)
	if err != nil {
		logger.From(ctx).Error("id pattern lookup failed", "err", err)
		return true
	}
	if !ok || pattern == "" {
		return true
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.From(ctx).Warn("configured id pattern does not compile", "pattern", pattern, "err", err)
		return true
	}
	return re.MatchString(id)
}

func (e *Engine) dispatchWelcome(number string) {
	if e.Notifier == nil {
		return
	}
	dispatch := e.Dispatch
	if dispatch == nil {
		dispatch = func(f func()) { go f() }
	}
	dispatch(func() {
		// Detached from the request: the Answer response never waits on this.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Notifier.WelcomeCall(ctx, number); err != nil {
			slog.Default().Warn("welcome notification failed", "number", number, "err", err)
		}
	})
}

func (e *Engine) contains(ctx context.Context, code string) bool {
	ok, err := e.Messages.Contains(ctx, code)
	if err != nil {
		logger.From(ctx).Error("message lookup failed", "code", code, "err", err)
		return false
	}
	return ok
}

func (e *Engine) audioURL(code string) string {
	return e.paths().Audio + "?code=" + url.QueryEscape(code)
}

func (e *Engine) paths() Paths {
	p := e.Paths
	if p.Digits == "" || p.ID == "" || p.Audio == "" {
		d := DefaultPaths()
		if p.Digits == "" {
			p.Digits = d.Digits
		}
		if p.ID == "" {
			p.ID = d.ID
		}
		if p.Audio == "" {
			p.Audio = d.Audio
		}
	}
	return p
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}
