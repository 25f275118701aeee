package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	_ "github.com/mattn/go-sqlite3"
)

type Config struct {
	Backend        string `toml:"backend"`
	APIURL         string `toml:"api_url"`
	StreamURL      string `toml:"stream_url"`
	Year           int    `toml:"year"`
	VerbosityLevel int    `toml:"verbosity_level"`

	Server ServerConfig `toml:"server"`
}

type ServerConfig struct {
	Listen  string `toml:"listen"`
	DBFile  string `toml:"db_file"`
	MinYear int    `toml:"min_year"`
	MaxYear int    `toml:"max_year"`
}

var verbosityLevel int
var configDir string

func readConfig(filename string) (*Config, error) {
	// Try first current dir, then `$HOME/.config/calender/`
	data, err := os.ReadFile(filename)
	if err != nil {
		data, err = os.ReadFile(os.Getenv("HOME") + "/.config/calender/" + filename)
		if err != nil {
			return nil, err
		}
		configDir = os.Getenv("HOME") + "/.config/calender/"
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	config.applyDefaults()

	verbosityLevel = config.VerbosityLevel

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = "rest"
	}
	if c.APIURL == "" {
		c.APIURL = "http://localhost:5000"
	}
	if c.StreamURL == "" {
		c.StreamURL = "ws://localhost:5000/api/stream"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":5000"
	}
	if c.Server.DBFile == "" {
		c.Server.DBFile = ".calender.db"
	}
	if c.Server.MinYear == 0 {
		c.Server.MinYear = 2025
	}
	if c.Server.MaxYear == 0 {
		c.Server.MaxYear = 2035
	}
}

func openDB(filename string) (*sql.DB, error) {
	// Try first the same dir, where the config file was found
	db, err := sql.Open("sqlite3", configDir+filename)
	if err != nil {
		db, err = sql.Open("sqlite3", filename)
		if err != nil {
			return nil, err
		}
	}
	return db, nil
}

func printVerbosely(verbosity int, format string, a ...interface{}) {
	// Print only if verbosity is higher than verbosityLevel
	// verbosityLevel is set in the config file
	// 0 - no output, other than critical errors
	// 1 - report commands and their outcome
	// 2 - report per-month and per-date progress
	// 3 - report everything, discarded stale fetches included
	if verbosity <= verbosityLevel {
		fmt.Printf(format, a...)
	}
}

// Event type tags form a closed enumeration; every tag has exactly one
// display color and one default display name.
var eventTypeNames = map[string]string{
	"holiday":     "Holiday",
	"work":        "Workday",
	"personal":    "Personal",
	"meeting":     "Meeting",
	"birthday":    "Birthday",
	"anniversary": "Anniversary",
	"other":       "Other",
}

var eventTypeColors = map[string]string{
	"holiday":     "#ff6b6b",
	"work":        "#4ecdc4",
	"personal":    "#45b7d1",
	"meeting":     "#96ceb4",
	"birthday":    "#feca57",
	"anniversary": "#ff9ff3",
	"other":       "#a8a8a8",
}

func validEventType(eventType string) bool {
	_, ok := eventTypeNames[eventType]
	return ok
}

func eventTypeName(eventType string) string {
	if name, ok := eventTypeNames[eventType]; ok {
		return name
	}
	return eventTypeNames["other"]
}

func eventTypeColor(eventType string) string {
	if color, ok := eventTypeColors[eventType]; ok {
		return color
	}
	return eventTypeColors["other"]
}

const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	day, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return day, nil
}

// datesInRange expands an inclusive date span into ISO date strings.
func datesInRange(start, end time.Time) []string {
	var dates []string
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day.Format(dateLayout))
	}
	return dates
}

// monthMatrix builds the structural grid for a month: Sunday-first week
// rows with 0 in the cells that fall outside the month.
func monthMatrix(year, month int) [][]int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := int(first.Weekday())

	var matrix [][]int
	week := make([]int, 7)
	cell := offset
	for day := 1; day <= daysInMonth; day++ {
		week[cell] = day
		cell++
		if cell == 7 {
			matrix = append(matrix, week)
			week = make([]int, 7)
			cell = 0
		}
	}
	if cell > 0 {
		matrix = append(matrix, week)
	}
	return matrix
}

func emptyMonth(year, month int) *MonthData {
	return &MonthData{
		Year:         year,
		Month:        month,
		MonthName:    time.Month(month).String(),
		Calendar:     monthMatrix(year, month),
		PresetEvents: map[string]PresetEvent{},
	}
}
