package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// backendServer is the bundled backend: the request/response API and
// the realtime document stream over one sqlite store, so either client
// variant can be pointed at it.
type backendServer struct {
	db      *sql.DB
	minYear int
	maxYear int

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newBackendServer(db *sql.DB, minYear, maxYear int) *backendServer {
	return &backendServer{
		db:      db,
		minYear: minYear,
		maxYear: maxYear,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: map[*websocket.Conn]bool{},
	}
}

func (s *backendServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/years", s.handleYears)
	mux.HandleFunc("/api/calendar/", s.handleCalendar)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/events/", s.handleEvent)
	mux.HandleFunc("/api/stream", s.handleStream)
	return mux
}

func serveBackend(config *Config) error {
	db, err := openDB(config.Server.DBFile)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	if err := dbInit(db); err != nil {
		return err
	}

	server := newBackendServer(db, config.Server.MinYear, config.Server.MaxYear)
	log.Printf("Starting calendar backend on %s", config.Server.Listen)
	return http.ListenAndServe(config.Server.Listen, server.routes())
}

func (s *backendServer) handleYears(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	years := make([]int, 0, s.maxYear-s.minYear+1)
	for year := s.minYear; year <= s.maxYear; year++ {
		years = append(years, year)
	}
	writeJSON(w, years)
}

func (s *backendServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/calendar/"), "/")
	if len(parts) != 2 {
		http.Error(w, "Invalid calendar path", http.StatusBadRequest)
		return
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		http.Error(w, "Invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		http.Error(w, "Invalid month", http.StatusBadRequest)
		return
	}
	if year < s.minYear || year > s.maxYear || month < 1 || month > 12 {
		http.Error(w, "Invalid year or month", http.StatusBadRequest)
		return
	}

	presets, err := s.loadPresets(year, month)
	if err != nil {
		log.Printf("Error loading preset events: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, &MonthData{
		Year:         year,
		Month:        month,
		MonthName:    time.Month(month).String(),
		Calendar:     monthMatrix(year, month),
		PresetEvents: presets,
	})
}

func (s *backendServer) loadPresets(year, month int) (map[string]PresetEvent, error) {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	rows, err := s.db.Query("SELECT date, type, title FROM preset_events WHERE date LIKE ?", prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	presets := map[string]PresetEvent{}
	for rows.Next() {
		var date string
		var preset PresetEvent
		if err := rows.Scan(&date, &preset.Type, &preset.Title); err != nil {
			return nil, err
		}
		presets[date] = preset
	}
	return presets, rows.Err()
}

func (s *backendServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		events, err := s.loadUserEvents()
		if err != nil {
			log.Printf("Error loading user events: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, events)

	case http.MethodPost:
		var event UserEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if event.Title == "" || event.Date == "" {
			http.Error(w, "Title and date are required", http.StatusBadRequest)
			return
		}
		if _, err := parseDate(event.Date); err != nil {
			http.Error(w, "Invalid date format", http.StatusBadRequest)
			return
		}

		event.ID = uuid.NewString()
		_, err := s.db.Exec("INSERT INTO user_events (id, date, title, type) VALUES (?, ?, ?, ?)",
			event.ID, event.Date, event.Title, event.Type)
		if err != nil {
			log.Printf("Error inserting user event: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, event)
		s.broadcast()

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *backendServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/events/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Invalid event path", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var event UserEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		result, err := s.db.Exec("UPDATE user_events SET date = ?, title = ?, type = ? WHERE id = ?",
			event.Date, event.Title, event.Type, id)
		if err != nil {
			log.Printf("Error updating user event: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		event.ID = id
		writeJSON(w, event)
		s.broadcast()

	case http.MethodDelete:
		result, err := s.db.Exec("DELETE FROM user_events WHERE id = ?", id)
		if err != nil {
			log.Printf("Error deleting user event: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]bool{"success": true})
		s.broadcast()

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleStream upgrades to a websocket, pushes the full document on
// attach, and accepts whole-document set frames. Every mutation is
// broadcast to all subscribers, the writer included.
func (s *backendServer) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading stream connection: %v", err)
		return
	}

	doc, err := s.document()
	if err != nil {
		log.Printf("Error loading user event document: %v", err)
		conn.Close()
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	err = conn.WriteJSON(streamDocument{Events: doc})
	s.mu.Unlock()
	if err != nil {
		s.dropClient(conn)
		return
	}

	for {
		var frame streamSetFrame
		if err := conn.ReadJSON(&frame); err != nil {
			s.dropClient(conn)
			return
		}
		if frame.Action != "set" {
			continue
		}
		if err := s.replaceAllEvents(frame.Events); err != nil {
			log.Printf("Error replacing user event document: %v", err)
			continue
		}
		s.broadcast()
	}
}

func (s *backendServer) loadUserEvents() ([]UserEvent, error) {
	rows, err := s.db.Query("SELECT id, date, title, type FROM user_events ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []UserEvent{}
	for rows.Next() {
		var event UserEvent
		if err := rows.Scan(&event.ID, &event.Date, &event.Title, &event.Type); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// document folds the stored rows into the keyed-by-date form the stream
// uses; when duplicates exist the most recently written row wins.
func (s *backendServer) document() (UserEventSet, error) {
	events, err := s.loadUserEvents()
	if err != nil {
		return nil, err
	}
	doc := UserEventSet{}
	for _, event := range events {
		doc[event.Date] = event
	}
	return doc, nil
}

func (s *backendServer) replaceAllEvents(set UserEventSet) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM user_events"); err != nil {
		tx.Rollback()
		return err
	}
	for date, event := range set {
		id := event.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.Exec("INSERT INTO user_events (id, date, title, type) VALUES (?, ?, ?, ?)",
			id, date, event.Title, event.Type); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *backendServer) broadcast() {
	doc, err := s.document()
	if err != nil {
		log.Printf("Error loading user event document: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(streamDocument{Events: doc}); err != nil {
			delete(s.clients, conn)
			conn.Close()
		}
	}
}

func (s *backendServer) dropClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

func writeJSON(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
