// Package hub keeps every connected subscriber's mirror consistent with the
// catalog. Each new connection gets one full-snapshot event; after that,
// every committed mutation is fanned out as an incremental event.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"

	"github.com/shelfstream-dev/shelfstream/pkg/schema"
)

// Hub routes change events to subscribers. All registration, unregistration
// and fan-out runs on the single Run loop, which is what guarantees that each
// subscriber sees the snapshot first and then mutations in commit order.
type Hub struct {
	snapshot func() []schema.Book

	register    chan *subscriber
	unregister  chan *subscriber
	broadcast   chan schema.Event
	done        chan struct{}
	subscribers map[*subscriber]struct{}
	count       atomic.Int32
}

// NewHub creates a hub. snapshot is called from the run loop whenever a new
// subscriber connects and must return the current committed catalog.
func NewHub(snapshot func() []schema.Book) *Hub {
	return &Hub{
		snapshot:    snapshot,
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		broadcast:   make(chan schema.Event),
		done:        make(chan struct{}),
		subscribers: make(map[*subscriber]struct{}),
	}
}

// Publish fans an event out to every connected subscriber. It implements
// catalog.Publisher. Run must be started before the first Publish; events
// published after shutdown are dropped.
func (h *Hub) Publish(ev schema.Event) {
	select {
	case h.broadcast <- ev:
	case <-h.done:
	}
}

// Count returns the number of live subscriber connections. Safe on a nil hub
// so handlers can run without a push channel.
func (h *Hub) Count() int {
	if h == nil {
		return 0
	}
	return int(h.count.Load())
}

// Run owns the subscriber set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for sub := range h.subscribers {
				close(sub.send)
				delete(h.subscribers, sub)
			}
			h.count.Store(0)
			return

		case sub := <-h.register:
			h.subscribers[sub] = struct{}{}
			h.count.Store(int32(len(h.subscribers)))
			// Queued from the run loop so the snapshot lands ahead of any
			// broadcast this subscriber will receive.
			if msg, err := encode(schema.EventSnapshot, h.snapshot()); err != nil {
				log.Printf("Warning: could not encode snapshot: %v", err)
			} else {
				sub.send <- msg
			}

		case sub := <-h.unregister:
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.send)
				h.count.Store(int32(len(h.subscribers)))
			}

		case ev := <-h.broadcast:
			msg, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Warning: could not encode %s event: %v", ev.Type, err)
				continue
			}
			for sub := range h.subscribers {
				select {
				case sub.send <- msg:
				default:
					// A subscriber that cannot drain its buffer is dropped;
					// it will get a fresh snapshot on reconnect.
					delete(h.subscribers, sub)
					close(sub.send)
				}
			}
			h.count.Store(int32(len(h.subscribers)))
		}
	}
}

func encode(eventType string, payload any) ([]byte, error) {
	ev, err := schema.NewEvent(eventType, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ev)
}
