package main

import (
	"context"
	"fmt"
	"strings"
)

// renderYearView prints the merged year as text: twelve structural
// grids with event dates marked, each followed by the month's ordered
// event list. It is a pure function of the cache.
func renderYearView(cache *CalendarCache) string {
	var b strings.Builder
	year := cache.Year()
	fmt.Fprintf(&b, "📅 %d\n", year)

	for month := 1; month <= 12; month++ {
		data := cache.MonthData(month)
		if data == nil {
			data = emptyMonth(year, month)
		}

		fmt.Fprintf(&b, "\n%s\n", data.MonthName)
		b.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")
		for _, week := range data.Calendar {
			for i, day := range week {
				if i > 0 {
					b.WriteString(" ")
				}
				if day == 0 {
					b.WriteString("   ")
					continue
				}
				marker := " "
				date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
				if _, ok := cache.EffectiveEvent(date); ok {
					marker = "*"
				}
				fmt.Fprintf(&b, "%2d%s", day, marker)
			}
			b.WriteString("\n")
		}

		for _, event := range cache.MonthEventList(month) {
			origin := ""
			if event.IsPreset {
				origin = " [preset]"
			}
			fmt.Fprintf(&b, "  %2d  %s (%s)%s\n", event.Day, event.Title, event.Type, origin)
		}
	}
	return b.String()
}

func viewCalendar(config *Config) error {
	app, err := newApp(config, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Start(context.Background()); err != nil {
		return err
	}

	fmt.Print(renderYearView(app.cache))
	return nil
}
