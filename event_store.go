package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// EventStore is the single capability interface both backend variants
// implement. The request/response backend supports FetchAll/Create/
// Update/Delete; the realtime backend supports ReplaceAll/Subscribe.
// Operations outside a variant's capability return ErrUnsupported.
// Calendar and year lookups work on both variants.
type EventStore interface {
	FetchYears(ctx context.Context) ([]int, error)
	FetchCalendar(ctx context.Context, year, month int) (*MonthData, error)

	// Request/response backend only.
	FetchAll(ctx context.Context) ([]UserEvent, error)
	Create(ctx context.Context, event UserEvent) (string, error)
	Update(ctx context.Context, id string, event UserEvent) error
	Delete(ctx context.Context, id string) error

	// Realtime backend only. ReplaceAll overwrites the entire remote
	// user-event document; there is no per-event write at the wire level.
	// Subscribe delivers the full current set on attach and again on
	// every remote mutation, the local writer's own echo included.
	ReplaceAll(ctx context.Context, set UserEventSet) error
	Subscribe(onChange func(UserEventSet)) (func(), error)

	Realtime() bool
	Close() error
}

// PresetEvent is a server-supplied, read-only calendar entry. An empty
// Title means the display name is derived from the type.
type PresetEvent struct {
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// UserEvent is a user-created entry. ID is assigned by the
// request/response backend on creation; under the realtime backend the
// date is the key and ID stays empty.
type UserEvent struct {
	ID    string `json:"id,omitempty"`
	Date  string `json:"date"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// UserEventSet maps an ISO date to the single user event on that date.
type UserEventSet map[string]UserEvent

func (s UserEventSet) clone() UserEventSet {
	out := make(UserEventSet, len(s))
	for date, event := range s {
		out[date] = event
	}
	return out
}

// MonthData is one month of the backend calendar payload. Calendar is a
// Sunday-first week matrix where 0 marks a cell outside the month; the
// field names are a contract with the backend.
type MonthData struct {
	Year         int                    `json:"year"`
	Month        int                    `json:"month"`
	MonthName    string                 `json:"month_name"`
	Calendar     [][]int                `json:"calendar"`
	PresetEvents map[string]PresetEvent `json:"presetEvents"`
}

var (
	// ErrUnsupported marks an operation outside the active backend's
	// capabilities.
	ErrUnsupported = errors.New("operation not supported by this backend")

	// ErrDataAbsent means the remote has no data yet for the requested
	// resource; callers treat it as an empty set, not a failure.
	ErrDataAbsent = errors.New("no data for requested resource")
)

// NetworkError wraps a transport or HTTP failure. Operations that hit
// one are abandoned; there are no automatic retries.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError reports bad form input; no network call is attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// RangeWriteError aggregates the per-date failures of a range write.
// Dates not listed in Failed were persisted and stay persisted; there is
// no rollback.
type RangeWriteError struct {
	Failed map[string]error
}

func (e *RangeWriteError) Error() string {
	dates := make([]string, 0, len(e.Failed))
	for date := range e.Failed {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return fmt.Sprintf("range write failed for %d of the requested dates: %s",
		len(dates), strings.Join(dates, ", "))
}
