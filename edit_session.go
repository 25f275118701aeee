package main

import (
	"context"
	"errors"
	"sync"
)

// ErrNotDeletable is returned when the effective event at the target
// date is a preset event or there is nothing to delete. Presets are
// server-authoritative and never deletable through this flow.
var ErrNotDeletable = errors.New("only user events can be deleted")

// EditSession owns the transient selection state of the edit form and
// turns one form submission into per-day upserts or a single deletion.
type EditSession struct {
	store  EventStore
	cache  *CalendarCache
	render func()

	mu       sync.Mutex
	selected string // empty means the session is closed
}

// EditForm is what the form is pre-populated with when a date is opened.
type EditForm struct {
	Date          string
	Title         string
	Type          string
	StartDate     string
	EndDate       string
	DeleteEnabled bool
}

func NewEditSession(store EventStore, cache *CalendarCache, render func()) *EditSession {
	return &EditSession{store: store, cache: cache, render: render}
}

// Open enters the session for one date, prefilled with the effective
// event there. Deletion stays disabled when that event is a preset.
func (s *EditSession) Open(date string) EditForm {
	s.mu.Lock()
	s.selected = date
	s.mu.Unlock()

	form := EditForm{
		Date:      date,
		Type:      "other",
		StartDate: date,
		EndDate:   date,
	}
	if event, ok := s.cache.EffectiveEvent(date); ok {
		form.Title = event.Title
		form.Type = event.Type
		form.DeleteEnabled = !event.IsPreset
	}
	return form
}

func (s *EditSession) Close() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()
}

// Selected reports the currently open date, if any.
func (s *EditSession) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}

// CommitRange writes one event per day of the inclusive range. Invalid
// input fails before any network call. Under the request/response
// backend the per-date writes are issued concurrently and a partial
// failure surfaces as one aggregate error without rollback; under the
// realtime backend all dates go out in a single document replacement.
func (s *EditSession) CommitRange(ctx context.Context, title, eventType, startDate, endDate string) error {
	if startDate == "" || endDate == "" {
		return &ValidationError{Reason: "start and end dates are required"}
	}
	start, err := parseDate(startDate)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	end, err := parseDate(endDate)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	if start.After(end) {
		return &ValidationError{Reason: "start date must not be after end date"}
	}
	if !validEventType(eventType) {
		return &ValidationError{Reason: "unknown event type: " + eventType}
	}

	dates := datesInRange(start, end)

	var commitErr error
	if s.store.Realtime() {
		commitErr = s.commitRangeRealtime(ctx, title, eventType, dates)
	} else {
		commitErr = s.commitRangeREST(ctx, title, eventType, dates)
	}

	// The cache reflects whatever subset actually persisted, so the
	// year view is re-derived even after a partial failure.
	s.render()
	s.Close()
	return commitErr
}

func (s *EditSession) commitRangeRealtime(ctx context.Context, title, eventType string, dates []string) error {
	set := s.cache.UserEvents()
	for _, date := range dates {
		set[date] = UserEvent{Date: date, Title: title, Type: eventType}
	}
	if err := s.store.ReplaceAll(ctx, set); err != nil {
		return err
	}
	// The subscription echo will confirm this; apply it locally so the
	// next render does not wait for the round trip.
	s.cache.ReplaceUserEvents(set)
	return nil
}

func (s *EditSession) commitRangeREST(ctx context.Context, title, eventType string, dates []string) error {
	existing := s.cache.UserEvents()

	type result struct {
		date  string
		event UserEvent
		err   error
	}
	results := make(chan result, len(dates))

	// One independent call per date, no ordering guarantee between them.
	for _, date := range dates {
		go func(date string) {
			event := UserEvent{Date: date, Title: title, Type: eventType}
			if old, ok := existing[date]; ok && old.ID != "" {
				event.ID = old.ID
				results <- result{date, event, s.store.Update(ctx, old.ID, event)}
				return
			}
			id, err := s.store.Create(ctx, event)
			event.ID = id
			results <- result{date, event, err}
		}(date)
	}

	failed := map[string]error{}
	for range dates {
		res := <-results
		if res.err != nil {
			failed[res.date] = res.err
			continue
		}
		printVerbosely(2, "  ✨ Saved event %q on %s\n", title, res.date)
		s.cache.UpsertUserEvent(res.date, res.event)
	}

	if len(failed) > 0 {
		return &RangeWriteError{Failed: failed}
	}
	return nil
}

// CommitDeletion removes the single user event at date. It is a no-op
// error when the effective event there is a preset or absent.
func (s *EditSession) CommitDeletion(ctx context.Context, date string) error {
	event, ok := s.cache.UserEvents()[date]
	if !ok {
		return ErrNotDeletable
	}

	if s.store.Realtime() {
		set := s.cache.UserEvents()
		delete(set, date)
		if err := s.store.ReplaceAll(ctx, set); err != nil {
			return err
		}
		s.cache.ReplaceUserEvents(set)
	} else {
		if err := s.store.Delete(ctx, event.ID); err != nil {
			return err
		}
		s.cache.RemoveUserEvent(date)
	}

	s.render()
	s.Close()
	return nil
}
