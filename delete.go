package main

import (
	"context"
	"errors"
	"fmt"
)

// deleteEvent removes the single user event on one date. Preset events
// cannot be removed this way; the date falls back to its preset after a
// successful deletion.
func deleteEvent(config *Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: calender del <date>")
	}
	date := args[0]

	app, err := newApp(config, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}

	if err := app.session.CommitDeletion(ctx, date); err != nil {
		if errors.Is(err, ErrNotDeletable) {
			fmt.Printf("❌ No user event on %s (presets cannot be deleted)\n", date)
		}
		return err
	}

	printVerbosely(1, "✅ Event on %s deleted\n", date)
	return nil
}

// clearEvents wipes every user event: one empty document replacement
// under the realtime backend, one delete call per event otherwise.
func clearEvents(config *Config) error {
	app, err := newApp(config, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}

	events := app.cache.UserEvents()
	if len(events) == 0 {
		fmt.Println("📋 No user events to clear")
		return nil
	}

	if app.store.Realtime() {
		if err := app.store.ReplaceAll(ctx, UserEventSet{}); err != nil {
			return err
		}
	} else {
		for date, event := range events {
			if err := app.store.Delete(ctx, event.ID); err != nil {
				return fmt.Errorf("error deleting event on %s: %w", date, err)
			}
			printVerbosely(2, "  🗑 Deleted event on %s\n", date)
		}
	}
	app.cache.ReplaceUserEvents(UserEventSet{})

	printVerbosely(1, "✅ Cleared %d user events\n", len(events))
	return nil
}
