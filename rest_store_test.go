package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFakeBackend(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var requests []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/years", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)
		json.NewEncoder(w).Encode([]int{2025, 2026})
	})
	mux.HandleFunc("/api/calendar/2026/3", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)
		json.NewEncoder(w).Encode(MonthData{
			Year:      2026,
			Month:     3,
			MonthName: "March",
			Calendar:  monthMatrix(2026, 3),
			PresetEvents: map[string]PresetEvent{
				"2026-03-20": {Type: "holiday", Title: "Eid al-Fitr"},
			},
		})
	})
	mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]UserEvent{
				{ID: "abc", Date: "2026-03-05", Title: "Trip", Type: "personal"},
			})
		case http.MethodPost:
			var event UserEvent
			json.NewDecoder(r.Body).Decode(&event)
			event.ID = "new-id"
			json.NewEncoder(w).Encode(event)
		}
	})
	mux.HandleFunc("/api/events/abc", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	mux.HandleFunc("/api/events/broken", func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &requests
}

func TestRESTStoreFetchYears(t *testing.T) {
	server, _ := newFakeBackend(t)
	store := NewRESTStore(server.URL)

	years, err := store.FetchYears(context.Background())
	if err != nil {
		t.Fatalf("FetchYears failed: %v", err)
	}
	if len(years) != 2 || years[0] != 2025 || years[1] != 2026 {
		t.Errorf("Unexpected years: %v", years)
	}
}

func TestRESTStoreFetchCalendar(t *testing.T) {
	server, _ := newFakeBackend(t)
	store := NewRESTStore(server.URL)

	data, err := store.FetchCalendar(context.Background(), 2026, 3)
	if err != nil {
		t.Fatalf("FetchCalendar failed: %v", err)
	}
	if data.MonthName != "March" {
		t.Errorf("Unexpected month name %q", data.MonthName)
	}
	if preset, ok := data.PresetEvents["2026-03-20"]; !ok || preset.Title != "Eid al-Fitr" {
		t.Error("presetEvents field was not decoded")
	}
	if len(data.Calendar) == 0 {
		t.Error("calendar field was not decoded")
	}
}

func TestRESTStoreCreateReturnsIdentifier(t *testing.T) {
	server, requests := newFakeBackend(t)
	store := NewRESTStore(server.URL)

	id, err := store.Create(context.Background(), UserEvent{Date: "2026-03-05", Title: "Trip", Type: "personal"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != "new-id" {
		t.Errorf("Expected backend-assigned identifier, got %q", id)
	}
	if (*requests)[len(*requests)-1] != "POST /api/events" {
		t.Errorf("Unexpected request log: %v", *requests)
	}
}

func TestRESTStoreUpdateAndDelete(t *testing.T) {
	server, requests := newFakeBackend(t)
	store := NewRESTStore(server.URL)
	ctx := context.Background()

	if err := store.Update(ctx, "abc", UserEvent{Date: "2026-03-05", Title: "Trip", Type: "personal"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got := *requests
	if got[len(got)-2] != "PUT /api/events/abc" || got[len(got)-1] != "DELETE /api/events/abc" {
		t.Errorf("Unexpected request log: %v", got)
	}
}

func TestRESTStoreSurfacesNetworkError(t *testing.T) {
	server, _ := newFakeBackend(t)
	store := NewRESTStore(server.URL)

	err := store.Delete(context.Background(), "broken")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected NetworkError on HTTP 500, got %v", err)
	}
}

func TestRESTStoreMapsMissingToDataAbsent(t *testing.T) {
	server, _ := newFakeBackend(t)
	store := NewRESTStore(server.URL)

	_, err := store.FetchCalendar(context.Background(), 1999, 1)
	if !errors.Is(err, ErrDataAbsent) {
		t.Fatalf("Expected ErrDataAbsent on 404, got %v", err)
	}
}

func TestRESTStoreRealtimeCapabilitiesUnsupported(t *testing.T) {
	server, _ := newFakeBackend(t)
	store := NewRESTStore(server.URL)

	if err := store.ReplaceAll(context.Background(), UserEventSet{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ReplaceAll must be unsupported, got %v", err)
	}
	if _, err := store.Subscribe(func(UserEventSet) {}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Subscribe must be unsupported, got %v", err)
	}
	if store.Realtime() {
		t.Error("RESTStore must not report realtime capability")
	}
}
