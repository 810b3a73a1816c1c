package fetch

import "sync"

// Feed pings subscribers when an owner's state changes. A ping carries no
// payload; subscribers re-read the state they care about.
type Feed struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]struct{}
	closed    bool
}

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	return &Feed{
		listeners: make(map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives a ping per change. Callers
// must Unsubscribe when done. Subscribing to a closed feed returns a
// closed channel.
func (f *Feed) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch
	}
	f.listeners[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (f *Feed) Unsubscribe(ch chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listeners[ch]; !ok {
		return
	}
	delete(f.listeners, ch)
	close(ch)
}

// Broadcast pings every listener without blocking. A listener whose
// buffer is full already has a pending ping and loses nothing.
func (f *Feed) Broadcast() {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of current listeners.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.listeners)
}

// Close closes all listener channels. Later subscriptions get closed channels.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for ch := range f.listeners {
		delete(f.listeners, ch)
		close(ch)
	}
}
