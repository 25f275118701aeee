package main

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// RealtimeStore talks to the push-subscription backend: one addressable
// document holding the full user-event set, written with whole-document
// set frames and read through a value subscription. Calendar and year
// lookups still go over the request/response API.
type RealtimeStore struct {
	rest *RESTStore
	conn *websocket.Conn

	writeMu sync.Mutex // gorilla allows one concurrent writer

	mu       sync.Mutex
	onChange func(UserEventSet)
	latest   UserEventSet
	hasDoc   bool
}

type streamDocument struct {
	Events UserEventSet `json:"events"`
}

type streamSetFrame struct {
	Action string       `json:"action"`
	Events UserEventSet `json:"events"`
}

// NewRealtimeStore dials the document stream; the connection is
// long-lived for the life of the process and never re-established per
// year switch.
func NewRealtimeStore(baseURL, streamURL string) (*RealtimeStore, error) {
	conn, _, err := websocket.DefaultDialer.Dial(streamURL, nil)
	if err != nil {
		return nil, &NetworkError{Op: "DIAL", URL: streamURL, Err: err}
	}

	s := &RealtimeStore{
		rest: NewRESTStore(baseURL),
		conn: conn,
	}
	go s.readPump()
	return s, nil
}

func (s *RealtimeStore) FetchYears(ctx context.Context) ([]int, error) {
	return s.rest.FetchYears(ctx)
}

func (s *RealtimeStore) FetchCalendar(ctx context.Context, year, month int) (*MonthData, error) {
	return s.rest.FetchCalendar(ctx, year, month)
}

func (s *RealtimeStore) FetchAll(ctx context.Context) ([]UserEvent, error) {
	return nil, ErrUnsupported
}

func (s *RealtimeStore) Create(ctx context.Context, event UserEvent) (string, error) {
	return "", ErrUnsupported
}

func (s *RealtimeStore) Update(ctx context.Context, id string, event UserEvent) error {
	return ErrUnsupported
}

func (s *RealtimeStore) Delete(ctx context.Context, id string) error {
	return ErrUnsupported
}

// ReplaceAll overwrites the remote document. The write is acknowledged
// through the subscription echo, not through a response here.
func (s *RealtimeStore) ReplaceAll(ctx context.Context, set UserEventSet) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(streamSetFrame{Action: "set", Events: set}); err != nil {
		return &NetworkError{Op: "SET", URL: s.conn.RemoteAddr().String(), Err: err}
	}
	return nil
}

// Subscribe registers the single change callback. The full current set
// is delivered immediately when the stream has already pushed one.
func (s *RealtimeStore) Subscribe(onChange func(UserEventSet)) (func(), error) {
	s.mu.Lock()
	if s.onChange != nil {
		s.mu.Unlock()
		return nil, errors.New("document stream already has a subscriber")
	}
	s.onChange = onChange
	deliver := s.hasDoc
	snapshot := s.latest
	s.mu.Unlock()

	if deliver {
		onChange(snapshot.clone())
	}

	unsubscribe := func() {
		s.mu.Lock()
		s.onChange = nil
		s.mu.Unlock()
	}
	return unsubscribe, nil
}

func (s *RealtimeStore) Realtime() bool { return true }

func (s *RealtimeStore) Close() error {
	return s.conn.Close()
}

func (s *RealtimeStore) readPump() {
	for {
		var doc streamDocument
		if err := s.conn.ReadJSON(&doc); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Document stream closed: %v", err)
			}
			return
		}
		if doc.Events == nil {
			doc.Events = UserEventSet{}
		}

		s.mu.Lock()
		s.latest = doc.Events
		s.hasDoc = true
		callback := s.onChange
		s.mu.Unlock()

		printVerbosely(3, "  📡 Document stream pushed %d user events\n", len(doc.Events))
		if callback != nil {
			callback(doc.Events.clone())
		}
	}
}
