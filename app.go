package main

import (
	"context"
	"errors"
	"log"
	"time"
)

// App owns the application state explicitly: the configured backend,
// the cache, and the edit session all hang off one controller instead
// of package-level globals.
type App struct {
	config   *Config
	store    EventStore
	cache    *CalendarCache
	session  *EditSession
	render   func()
	stopSync func()
	years    []int
}

func newApp(config *Config, render func()) (*App, error) {
	store, err := newEventStore(config)
	if err != nil {
		return nil, err
	}
	return newAppWithStore(config, store, render), nil
}

func newAppWithStore(config *Config, store EventStore, render func()) *App {
	if render == nil {
		render = func() {}
	}
	cache := NewCalendarCache(store)
	return &App{
		config:  config,
		store:   store,
		cache:   cache,
		session: NewEditSession(store, cache, render),
		render:  render,
	}
}

// Start loads the year selector range, the current year's calendar
// data, and the user-event set, then renders once. Under the realtime
// backend the initial set arrives through the subscription instead of a
// fetch.
func (a *App) Start(ctx context.Context) error {
	years, err := a.store.FetchYears(ctx)
	if err != nil {
		// The selector range is non-critical; keep the configured year.
		log.Printf("Error loading available years: %v", err)
	}
	a.years = years

	year := a.config.Year
	if year == 0 {
		year = time.Now().Year()
	}
	a.cache.SetYear(ctx, year)

	if a.store.Realtime() {
		listener := NewLiveSyncListener(a.store, a.cache, a.render)
		stop, err := listener.Start()
		if err != nil {
			return err
		}
		a.stopSync = stop
	} else {
		events, err := a.store.FetchAll(ctx)
		if err != nil && !errors.Is(err, ErrDataAbsent) {
			log.Printf("Error loading user events: %v", err)
		}
		set := UserEventSet{}
		for _, event := range events {
			// The backend may hold several rows per date; the last one
			// observed wins, keeping the one-event-per-date invariant.
			set[event.Date] = event
		}
		a.cache.ReplaceUserEvents(set)
	}

	a.render()
	return nil
}

// SetYear switches the displayed year. Only preset data is refetched;
// the user-event set and its subscription are untouched.
func (a *App) SetYear(ctx context.Context, year int) {
	a.cache.SetYear(ctx, year)
	a.render()
}

func (a *App) Close() {
	if a.stopSync != nil {
		a.stopSync()
	}
	if err := a.store.Close(); err != nil {
		log.Printf("Error closing event store: %v", err)
	}
}
