package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// fakeStore is an in-memory EventStore for tests. Failure injection is
// per date (writes) or per month (calendar fetches); networkCalls
// counts every write-capable operation so tests can assert that
// validation failures never touch the network.
type fakeStore struct {
	mu       sync.Mutex
	realtime bool

	years  []int
	months map[[2]int]*MonthData
	events map[string]UserEvent // by id
	nextID int

	failDates  map[string]bool
	failMonths map[[2]int]bool
	blockYears map[int]chan struct{}
	fetchBegun chan struct{}
	begunOnce  sync.Once

	networkCalls int
	replaced     []UserEventSet
	deletedIDs   []string
	updatedIDs   []string

	onChange func(UserEventSet)
	initial  UserEventSet
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		years:      []int{2025, 2026},
		months:     map[[2]int]*MonthData{},
		events:     map[string]UserEvent{},
		failDates:  map[string]bool{},
		failMonths: map[[2]int]bool{},
		blockYears: map[int]chan struct{}{},
	}
}

func (f *fakeStore) setMonth(year, month int, presets map[string]PresetEvent) {
	data := emptyMonth(year, month)
	data.PresetEvents = presets
	f.months[[2]int{year, month}] = data
}

func (f *fakeStore) FetchYears(ctx context.Context) ([]int, error) {
	return append([]int(nil), f.years...), nil
}

func (f *fakeStore) FetchCalendar(ctx context.Context, year, month int) (*MonthData, error) {
	f.mu.Lock()
	gate := f.blockYears[year]
	begun := f.fetchBegun
	f.mu.Unlock()

	if begun != nil {
		f.begunOnce.Do(func() { close(begun) })
	}
	if gate != nil {
		<-gate
	}
	if f.failMonths[[2]int{year, month}] {
		return nil, &NetworkError{Op: "GET", URL: "fake", Err: errors.New("month unavailable")}
	}
	if data, ok := f.months[[2]int{year, month}]; ok {
		copied := *data
		return &copied, nil
	}
	return emptyMonth(year, month), nil
}

func (f *fakeStore) FetchAll(ctx context.Context) ([]UserEvent, error) {
	if f.realtime {
		return nil, ErrUnsupported
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	events := []UserEvent{}
	for _, event := range f.events {
		events = append(events, event)
	}
	return events, nil
}

func (f *fakeStore) Create(ctx context.Context, event UserEvent) (string, error) {
	if f.realtime {
		return "", ErrUnsupported
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.networkCalls++
	if f.failDates[event.Date] {
		return "", &NetworkError{Op: "POST", URL: "fake", Err: errors.New("create failed")}
	}
	f.nextID++
	id := fmt.Sprintf("id-%d", f.nextID)
	event.ID = id
	f.events[id] = event
	return id, nil
}

func (f *fakeStore) Update(ctx context.Context, id string, event UserEvent) error {
	if f.realtime {
		return ErrUnsupported
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.networkCalls++
	if f.failDates[event.Date] {
		return &NetworkError{Op: "PUT", URL: "fake", Err: errors.New("update failed")}
	}
	if _, ok := f.events[id]; !ok {
		return &NetworkError{Op: "PUT", URL: "fake", Err: ErrDataAbsent}
	}
	event.ID = id
	f.events[id] = event
	f.updatedIDs = append(f.updatedIDs, id)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if f.realtime {
		return ErrUnsupported
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.networkCalls++
	if _, ok := f.events[id]; !ok {
		return &NetworkError{Op: "DELETE", URL: "fake", Err: ErrDataAbsent}
	}
	delete(f.events, id)
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeStore) ReplaceAll(ctx context.Context, set UserEventSet) error {
	if !f.realtime {
		return ErrUnsupported
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.networkCalls++
	f.replaced = append(f.replaced, set.clone())
	return nil
}

func (f *fakeStore) Subscribe(onChange func(UserEventSet)) (func(), error) {
	if !f.realtime {
		return nil, ErrUnsupported
	}
	f.mu.Lock()
	f.onChange = onChange
	initial := f.initial
	f.mu.Unlock()
	if initial != nil {
		onChange(initial.clone())
	}
	return func() {
		f.mu.Lock()
		f.onChange = nil
		f.mu.Unlock()
	}, nil
}

// push simulates a remote change notification.
func (f *fakeStore) push(set UserEventSet) {
	f.mu.Lock()
	callback := f.onChange
	f.mu.Unlock()
	if callback != nil {
		callback(set.clone())
	}
}

func (f *fakeStore) Realtime() bool { return f.realtime }

func (f *fakeStore) Close() error { return nil }
