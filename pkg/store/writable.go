package store

import "sync"

// Writable holds the latest value pushed into it and fans it out to subscribers.
// Safe for concurrent use.
type Writable[T any] struct {
	mu          sync.RWMutex
	value       T
	set         bool
	version     uint64
	subscribers map[chan T]struct{}
}

// NewWritable creates an empty Writable.
func NewWritable[T any]() *Writable[T] {
	return &Writable[T]{
		subscribers: make(map[chan T]struct{}),
	}
}

// Set replaces the held value and notifies subscribers. It never blocks.
func (w *Writable[T]) Set(v T) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.value = v
	w.set = true
	w.version++

	for ch := range w.subscribers {
		select {
		case ch <- v:
		default:
			// Replace the stale pending value with the latest one.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

// Get returns the held value and whether one was ever set.
func (w *Writable[T]) Get() (T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.value, w.set
}

// Version returns the number of Set calls so far.
func (w *Writable[T]) Version() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

// Subscribe returns a channel that receives every subsequent value (latest wins)
// and a cancel function that closes it. When a value is already held it is
// delivered immediately.
func (w *Writable[T]) Subscribe() (<-chan T, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan T, 1)
	if w.set {
		ch <- w.value
	}
	w.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.subscribers, ch)
			close(ch)
		})
	}
}
