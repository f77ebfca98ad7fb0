// Package hours implements the weekly open-hours gate.
//
// Weekday indexing follows the Monday-first convention used by the stored
// schedule (Monday=0 .. Sunday=6). The gate evaluates against a fixed UTC
// offset; there is no tz-database zone and no daylight-saving adjustment.
package hours

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Window is one weekday's open interval, zero-padded 24h "HH:MM" strings.
// Lexicographic comparison over this format is the intended ordering; no
// overnight-spanning window is representable.
type Window struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Schedule holds exactly one optional window per weekday, Monday=0.
type Schedule [7]*Window

// Repository is the persistence contract for the schedule.
// Replace is the only mutation: the whole week is written at once.
type Repository interface {
	Load(ctx context.Context) (Schedule, error)
	Replace(ctx context.Context, s Schedule) error
}

// Gate answers "are we open right now" for the configured locale.
type Gate struct {
	Repo Repository
	Zone *time.Location
}

func NewGate(repo Repository, zone *time.Location) *Gate {
	if zone == nil {
		zone = time.UTC
	}
	return &Gate{Repo: repo, Zone: zone}
}

// IsOpenNow reports whether now falls inside today's window. A weekday
// without a window is always open. The stored data is assumed valid; window
// validation happens at the write boundary.
func (g *Gate) IsOpenNow(ctx context.Context, now time.Time) (bool, error) {
	s, err := g.Repo.Load(ctx)
	if err != nil {
		return false, err
	}

	local := now.In(g.Zone)
	w := s[MondayIndex(local.Weekday())]
	if w == nil {
		return true, nil
	}
	hm := local.Format("15:04")
	return w.Open <= hm && hm < w.Close, nil
}

// MondayIndex converts Go's Sunday-first weekday to the stored Monday-first
// index.
func MondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

var hhmmRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidateWindow checks an admin-submitted window: both fields zero-padded
// HH:MM with close strictly after open.
func ValidateWindow(w Window) error {
	if !hhmmRe.MatchString(w.Open) {
		return fmt.Errorf("hours: invalid opening time %q, want HH:MM", w.Open)
	}
	if !hhmmRe.MatchString(w.Close) {
		return fmt.Errorf("hours: invalid closing time %q, want HH:MM", w.Close)
	}
	if w.Close <= w.Open {
		return fmt.Errorf("hours: closing time %q must be after opening time %q", w.Close, w.Open)
	}
	return nil
}

// ValidateSchedule validates every present window of a full-week submission.
func ValidateSchedule(s Schedule) error {
	for day, w := range s {
		if w == nil {
			continue
		}
		if err := ValidateWindow(*w); err != nil {
			return fmt.Errorf("weekday %d: %w", day, err)
		}
	}
	return nil
}
