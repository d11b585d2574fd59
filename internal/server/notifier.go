package server

import "sync"

// notifier broadcasts schema reloads to subscribed event streams. Listeners
// receive the new schema fingerprint and should re-run their analyses.
type notifier struct {
	mu        sync.RWMutex
	listeners map[chan string]struct{}
}

func newNotifier() *notifier {
	return &notifier{
		listeners: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives fingerprints after each reload.
// The caller must call Unsubscribe when done.
func (n *notifier) Subscribe() chan string {
	ch := make(chan string, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *notifier) Unsubscribe(ch chan string) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends fingerprint to all listeners without blocking. A listener
// that has not drained its previous value skips this one.
func (n *notifier) Broadcast(fingerprint string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- fingerprint:
		default:
		}
	}
}

func (n *notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
