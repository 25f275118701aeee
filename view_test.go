package main

import (
	"context"
	"strings"
	"testing"
)

func newViewTestCache(t *testing.T) *CalendarCache {
	t.Helper()
	store := newFakeStore()
	store.setMonth(2026, 3, map[string]PresetEvent{
		"2026-03-20": {Type: "holiday", Title: "Eid al-Fitr"},
	})
	cache := NewCalendarCache(store)
	cache.SetYear(context.Background(), 2026)
	cache.UpsertUserEvent("2026-03-05", UserEvent{Date: "2026-03-05", Title: "Trip", Type: "personal"})
	return cache
}

func TestRenderYearViewMarksEventDates(t *testing.T) {
	view := renderYearView(newViewTestCache(t))

	if !strings.Contains(view, "2026") {
		t.Error("View must carry the year header")
	}
	if !strings.Contains(view, "March") {
		t.Error("View must carry month names")
	}
	if !strings.Contains(view, " 5*") {
		t.Error("Event dates must be marked in the grid")
	}
	if !strings.Contains(view, "Trip (personal)") {
		t.Error("Month list must carry the user event")
	}
	if !strings.Contains(view, "Eid al-Fitr (holiday) [preset]") {
		t.Error("Month list must flag preset events")
	}
}

func TestRenderYearViewTwelveMonths(t *testing.T) {
	view := renderYearView(newViewTestCache(t))

	for _, name := range []string{"January", "June", "December"} {
		if !strings.Contains(view, name) {
			t.Errorf("View missing month %s", name)
		}
	}
}

func TestBuildICS(t *testing.T) {
	ics := buildICS(newViewTestCache(t))

	if !strings.Contains(ics, "BEGIN:VCALENDAR") || !strings.Contains(ics, "END:VCALENDAR") {
		t.Fatal("Output is not an iCalendar document")
	}
	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("Expected one VEVENT per displayed event, got %d", got)
	}
	if !strings.Contains(ics, "SUMMARY:Trip") {
		t.Error("Missing user event summary")
	}
	if !strings.Contains(ics, "SUMMARY:Eid al-Fitr") {
		t.Error("Missing preset event summary")
	}
	if !strings.Contains(ics, "DTSTART;VALUE=DATE:20260305") {
		t.Error("Events must be exported as all-day entries")
	}
}
