package main

import "fmt"

// newEventStore creates the backend variant selected in the config. The
// two variants are mutually exclusive deployments of the same client;
// everything above this point is written against the EventStore
// interface and never branches on the concrete type.
func newEventStore(config *Config) (EventStore, error) {
	switch config.Backend {
	case "rest":
		return NewRESTStore(config.APIURL), nil

	case "realtime":
		store, err := NewRealtimeStore(config.APIURL, config.StreamURL)
		if err != nil {
			return nil, fmt.Errorf("error connecting to document stream: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s (must be 'rest' or 'realtime')", config.Backend)
	}
}
