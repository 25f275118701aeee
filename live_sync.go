package main

// LiveSyncListener reconciles pushed user-event documents into the
// cache. The remote value is authoritative: the set is replaced
// wholesale without diffing, so a stale echo can transiently overwrite a
// fresh optimistic update until the next push corrects it.
type LiveSyncListener struct {
	store  EventStore
	cache  *CalendarCache
	render func()
}

func NewLiveSyncListener(store EventStore, cache *CalendarCache, render func()) *LiveSyncListener {
	return &LiveSyncListener{store: store, cache: cache, render: render}
}

// Start attaches the single long-lived subscription. Year switches do
// not touch it; it lives until the returned stop function is called.
func (l *LiveSyncListener) Start() (func(), error) {
	return l.store.Subscribe(func(set UserEventSet) {
		l.cache.ReplaceUserEvents(set)
		l.render()
	})
}
