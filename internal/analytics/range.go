package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AnshRaj112/journal-backend/internal/models"
)

var ErrInvalidRange = errors.New("invalid date range")

// Range is a half-open interval [From, To) on updatedAt. A zero bound is unbounded.
type Range struct {
	From time.Time
	To   time.Time
}

// ParseRange reads from/to as YYYY-MM-DD days in loc. Both days are inclusive.
func ParseRange(from, to string, loc *time.Location) (Range, error) {
	var r Range
	if from = strings.TrimSpace(from); from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return Range{}, fmt.Errorf("%w: from %q", ErrInvalidRange, from)
		}
		r.From = t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return Range{}, fmt.Errorf("%w: to %q", ErrInvalidRange, to)
		}
		r.To = t.AddDate(0, 0, 1)
	}
	if !r.From.IsZero() && !r.To.IsZero() && !r.From.Before(r.To) {
		return Range{}, fmt.Errorf("%w: from is after to", ErrInvalidRange)
	}
	return r, nil
}

func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

func (r Range) Filter(entries []models.Journal) []models.Journal {
	if r.From.IsZero() && r.To.IsZero() {
		return entries
	}
	out := make([]models.Journal, 0, len(entries))
	for _, j := range entries {
		if r.Contains(j.UpdatedAt) {
			out = append(out, j)
		}
	}
	return out
}

func (r Range) fromString(loc *time.Location) string {
	if r.From.IsZero() {
		return ""
	}
	return r.From.In(loc).Format(dateLayout)
}

func (r Range) toString(loc *time.Location) string {
	if r.To.IsZero() {
		return ""
	}
	return r.To.AddDate(0, 0, -1).In(loc).Format(dateLayout)
}

// Key identifies the range and zone for caching.
func (r Range) Key(loc *time.Location) string {
	from, to := r.fromString(loc), r.toString(loc)
	if from == "" {
		from = "start"
	}
	if to == "" {
		to = "now"
	}
	return from + ".." + to + "@" + loc.String()
}
