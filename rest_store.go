package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RESTStore talks to the request/response backend. Every write is one
// independent network call; there is no transaction spanning dates.
type RESTStore struct {
	baseURL string
	client  *http.Client
}

func NewRESTStore(baseURL string) *RESTStore {
	return &RESTStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
}

func (s *RESTStore) FetchYears(ctx context.Context) ([]int, error) {
	var years []int
	if err := s.do(ctx, http.MethodGet, "/api/years", nil, &years); err != nil {
		return nil, err
	}
	return years, nil
}

func (s *RESTStore) FetchCalendar(ctx context.Context, year, month int) (*MonthData, error) {
	var data MonthData
	path := fmt.Sprintf("/api/calendar/%d/%d", year, month)
	if err := s.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	if data.PresetEvents == nil {
		data.PresetEvents = map[string]PresetEvent{}
	}
	return &data, nil
}

func (s *RESTStore) FetchAll(ctx context.Context) ([]UserEvent, error) {
	var events []UserEvent
	if err := s.do(ctx, http.MethodGet, "/api/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *RESTStore) Create(ctx context.Context, event UserEvent) (string, error) {
	var created UserEvent
	if err := s.do(ctx, http.MethodPost, "/api/events", event, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (s *RESTStore) Update(ctx context.Context, id string, event UserEvent) error {
	return s.do(ctx, http.MethodPut, "/api/events/"+id, event, nil)
}

func (s *RESTStore) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/events/"+id, nil, nil)
}

func (s *RESTStore) ReplaceAll(ctx context.Context, set UserEventSet) error {
	return ErrUnsupported
}

func (s *RESTStore) Subscribe(onChange func(UserEventSet)) (func(), error) {
	return nil, ErrUnsupported
}

func (s *RESTStore) Realtime() bool { return false }

func (s *RESTStore) Close() error { return nil }

// do issues one JSON request and decodes the response into out when out
// is non-nil. Transport failures and non-2xx statuses come back as
// NetworkError; 404 maps to ErrDataAbsent.
func (s *RESTStore) do(ctx context.Context, method, path string, body, out interface{}) error {
	url := s.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &NetworkError{Op: method, URL: url, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &NetworkError{Op: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &NetworkError{Op: method, URL: url, Err: ErrDataAbsent}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{Op: method, URL: url,
			Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &NetworkError{Op: method, URL: url,
				Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	return nil
}
