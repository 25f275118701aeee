package main

import (
	"database/sql"
	"fmt"
)

// Preset holiday entries seeded on first run. Server-authoritative; the
// client never writes these.
var presetSeed = map[string]PresetEvent{
	"2025-02-22": {Type: "holiday", Title: "Founding Day"},
	"2025-03-30": {Type: "holiday", Title: "Eid al-Fitr"},
	"2025-03-31": {Type: "holiday", Title: "Eid al-Fitr"},
	"2025-06-06": {Type: "holiday", Title: "Eid al-Adha"},
	"2025-06-07": {Type: "holiday", Title: "Eid al-Adha"},
	"2025-06-08": {Type: "holiday", Title: "Eid al-Adha"},
	"2025-09-23": {Type: "holiday", Title: "National Day"},
	"2026-02-22": {Type: "holiday", Title: "Founding Day"},
	"2026-03-20": {Type: "holiday", Title: "Eid al-Fitr"},
	"2026-03-21": {Type: "holiday", Title: "Eid al-Fitr"},
	"2026-05-27": {Type: "holiday", Title: "Eid al-Adha"},
	"2026-05-28": {Type: "holiday", Title: "Eid al-Adha"},
	"2026-05-29": {Type: "holiday", Title: "Eid al-Adha"},
	"2026-09-23": {Type: "holiday", Title: "National Day"},
}

func dbInit(db *sql.DB) error {
	var dbVersion int
	err := db.QueryRow("SELECT version FROM db_version WHERE name='calender'").Scan(&dbVersion)
	if err != nil {
		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS db_version (
			name TEXT PRIMARY KEY,
			version INTEGER
		)`)
		if err != nil {
			return fmt.Errorf("error creating db_version table: %w", err)
		}
		_, err = db.Exec(`INSERT INTO db_version (name, version) VALUES ('calender', 0)`)
		if err != nil {
			return fmt.Errorf("error initializing db_version table: %w", err)
		}
		dbVersion = 0
	}

	if dbVersion == 0 {
		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS preset_events (
			date TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '')`)
		if err != nil {
			return fmt.Errorf("error creating preset_events table: %w", err)
		}

		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS user_events (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			title TEXT NOT NULL,
			type TEXT NOT NULL)`)
		if err != nil {
			return fmt.Errorf("error creating user_events table: %w", err)
		}

		for date, preset := range presetSeed {
			_, err = db.Exec(`INSERT OR REPLACE INTO preset_events (date, type, title) VALUES (?, ?, ?)`,
				date, preset.Type, preset.Title)
			if err != nil {
				return fmt.Errorf("error seeding preset events: %w", err)
			}
		}

		dbVersion = 1
		_, err = db.Exec(`UPDATE db_version SET version = 1 WHERE name = 'calender'`)
		if err != nil {
			return fmt.Errorf("error updating db_version table: %w", err)
		}
	}

	return nil
}
