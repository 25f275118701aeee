package main

import (
	"context"
	"errors"
	"log"
	"sync"
)

// CalendarCache is the single source of truth for rendering: twelve
// months of structural and preset data for the current year, plus the
// flat user-event set spanning all years. Reads of "the event on date D"
// go through the merge methods in merge.go, never through the maps
// directly.
type CalendarCache struct {
	store EventStore

	mu          sync.RWMutex
	currentYear int
	months      map[int]*MonthData
	userEvents  UserEventSet
}

func NewCalendarCache(store EventStore) *CalendarCache {
	return &CalendarCache{
		store:      store,
		months:     map[int]*MonthData{},
		userEvents: UserEventSet{},
	}
}

func (c *CalendarCache) Year() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentYear
}

// SetYear replaces the year's calendar data wholesale: twelve month
// fetches issued concurrently and joined. A month that fails is
// substituted with an empty preset map and logged; it never blocks the
// other eleven. In-flight fetches are not cancelled on a newer SetYear;
// their results are discarded by the year tag check in applyMonth.
func (c *CalendarCache) SetYear(ctx context.Context, year int) {
	c.mu.Lock()
	c.currentYear = year
	c.months = map[int]*MonthData{}
	c.mu.Unlock()

	printVerbosely(2, "  📥 Loading calendar data for %d…\n", year)

	var wg sync.WaitGroup
	for month := 1; month <= 12; month++ {
		wg.Add(1)
		go func(month int) {
			defer wg.Done()
			data, err := c.store.FetchCalendar(ctx, year, month)
			if err != nil {
				if !errors.Is(err, ErrDataAbsent) {
					log.Printf("Error loading calendar data for %d-%02d: %v", year, month, err)
				}
				data = emptyMonth(year, month)
			}
			c.applyMonth(year, month, data)
		}(month)
	}
	wg.Wait()
}

// applyMonth stores one fetched month unless the batch it belongs to has
// gone stale. Without this guard a slow fetch for a previous year could
// overwrite a freshly loaded one.
func (c *CalendarCache) applyMonth(year, month int, data *MonthData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if year != c.currentYear {
		printVerbosely(3, "  ⚠️ Discarding stale calendar fetch for %d-%02d (current year is %d)\n",
			year, month, c.currentYear)
		return
	}
	if data.PresetEvents == nil {
		data.PresetEvents = map[string]PresetEvent{}
	}
	c.months[month] = data
}

// MonthData returns the cached entry for a month of the current year,
// or nil while it is still loading.
func (c *CalendarCache) MonthData(month int) *MonthData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.months[month]
}

// ReplaceUserEvents swaps in a full set atomically. Used by the initial
// load and by every live-sync push; the pushed value is authoritative
// and is not diffed against the prior local state.
func (c *CalendarCache) ReplaceUserEvents(set UserEventSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userEvents = set.clone()
}

// UpsertUserEvent is a local-only mutation; it does not talk to the
// network.
func (c *CalendarCache) UpsertUserEvent(date string, event UserEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userEvents[date] = event
}

func (c *CalendarCache) RemoveUserEvent(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.userEvents, date)
}

// UserEvents returns a snapshot copy of the set.
func (c *CalendarCache) UserEvents() UserEventSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userEvents.clone()
}
