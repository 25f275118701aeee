package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// setEvent commits one range write: every day from start to end gets a
// user event with the given type and title, overriding any preset shown
// on those dates.
func setEvent(config *Config, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: calender set <start-date> <end-date> <type> <title>")
	}
	startDate, endDate, eventType := args[0], args[1], args[2]
	title := strings.Join(args[3:], " ")

	app, err := newApp(config, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}

	err = app.session.CommitRange(ctx, title, eventType, startDate, endDate)

	var rangeErr *RangeWriteError
	if errors.As(err, &rangeErr) {
		// The dates outside Failed were persisted and stay persisted.
		fmt.Printf("❗️ Some dates could not be saved: %v\n", rangeErr)
		return err
	}
	if err != nil {
		return err
	}

	printVerbosely(1, "✅ Event %q (%s) saved for %s..%s\n", title, eventType, startDate, endDate)
	return nil
}
