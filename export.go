package main

import (
	"context"
	"fmt"
	"os"
	"time"

	ics "github.com/arran4/golang-ical"
)

// buildICS renders the merged year as an iCalendar document with one
// all-day event per displayed date.
func buildICS(cache *CalendarCache) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//operation-calender//Annual Calendar//EN")

	for month := 1; month <= 12; month++ {
		for _, event := range cache.MonthEventList(month) {
			day, err := parseDate(event.Date)
			if err != nil {
				continue
			}
			entry := cal.AddEvent(event.Date + "@operation-calender")
			entry.SetDtStampTime(time.Now())
			entry.SetAllDayStartAt(day)
			entry.SetAllDayEndAt(day.AddDate(0, 0, 1))
			entry.SetSummary(event.Title)
			entry.SetDescription(eventTypeName(event.Type))
		}
	}
	return cal.Serialize()
}

func exportCalendar(config *Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: calender export <file.ics>")
	}
	path := args[0]

	app, err := newApp(config, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Start(context.Background()); err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(buildICS(app.cache)), 0644); err != nil {
		return fmt.Errorf("error writing ICS file: %w", err)
	}

	printVerbosely(1, "✅ Calendar for %d exported to %s\n", app.cache.Year(), path)
	return nil
}
