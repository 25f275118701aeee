package main

import "sort"

// DisplayEvent is the one event shown for a date after applying
// precedence between preset and user events.
type DisplayEvent struct {
	Date     string
	Day      int
	Title    string
	Type     string
	Color    string
	IsPreset bool
}

// EffectiveEvent merges the preset and user layers for one date. A user
// event always wins over a preset event on the same date; the display
// title falls back to the type's default name when the winning event
// carries none.
func (c *CalendarCache) EffectiveEvent(date string) (DisplayEvent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.effectiveEventLocked(date)
}

func (c *CalendarCache) effectiveEventLocked(date string) (DisplayEvent, bool) {
	if event, ok := c.userEvents[date]; ok {
		return newDisplayEvent(date, event.Title, event.Type, false), true
	}

	_, month, _, err := splitDate(date)
	if err != nil {
		return DisplayEvent{}, false
	}
	if data := c.months[month]; data != nil {
		if preset, ok := data.PresetEvents[date]; ok {
			return newDisplayEvent(date, preset.Title, preset.Type, true), true
		}
	}
	return DisplayEvent{}, false
}

// MonthEventList returns the merged events of one month of the current
// year, sorted ascending by day, at most one entry per date.
func (c *CalendarCache) MonthEventList(month int) []DisplayEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	merged := map[string]DisplayEvent{}

	if data := c.months[month]; data != nil {
		for date, preset := range data.PresetEvents {
			if year, m, _, err := splitDate(date); err == nil && year == c.currentYear && m == month {
				merged[date] = newDisplayEvent(date, preset.Title, preset.Type, true)
			}
		}
	}
	// User events override presets date by date, never as a second entry.
	for date, event := range c.userEvents {
		if year, m, _, err := splitDate(date); err == nil && year == c.currentYear && m == month {
			merged[date] = newDisplayEvent(date, event.Title, event.Type, false)
		}
	}

	events := make([]DisplayEvent, 0, len(merged))
	for _, event := range merged {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Day < events[j].Day })
	return events
}

func newDisplayEvent(date, title, eventType string, isPreset bool) DisplayEvent {
	if title == "" {
		title = eventTypeName(eventType)
	}
	_, _, day, _ := splitDate(date)
	return DisplayEvent{
		Date:     date,
		Day:      day,
		Title:    title,
		Type:     eventType,
		Color:    eventTypeColor(eventType),
		IsPreset: isPreset,
	}
}

func splitDate(date string) (year, month, day int, err error) {
	parsed, err := parseDate(date)
	if err != nil {
		return 0, 0, 0, err
	}
	return parsed.Year(), int(parsed.Month()), parsed.Day(), nil
}
