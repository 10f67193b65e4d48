package core

import "sync"

// Event names a notification the editor emits while processing keys.
type Event string

const (
	// EventKeypress fires for every key the emulation handles as a vi key.
	// The payload is the key symbol (see KeyEvent.Symbol).
	EventKeypress Event = "vim-keypress"

	// EventCommandDone fires when a command completes. The payload is a CommandDone.
	//
	// For the key that completes a command, EventCommandDone is emitted before the
	// EventKeypress of that same key.
	EventCommandDone Event = "vim-command-done"
)

// Command names carried by CommandDone.
const (
	CommandMotion     = "motion"
	CommandYank       = "yank"
	CommandDelete     = "delete"
	CommandChange     = "change"
	CommandPut        = "put"
	CommandUndo       = "undo"
	CommandRedo       = "redo"
	CommandModeChange = "mode"
	CommandInsert     = "insert"
	CommandEx         = "ex"
	CommandCancel     = "cancel"
	// CommandInvalid ends a key sequence that did not form a valid command.
	CommandInvalid = "invalid"
)

// CommandDone is the payload of EventCommandDone.
type CommandDone struct {
	Name string
}

// ListenerID identifies a registered handler so it can be removed with Off.
type ListenerID uint64

// Handler receives an event payload.
type Handler func(payload any)

type listener struct {
	id      ListenerID
	handler Handler
}

// Emitter is a small synchronous event registry. Handlers run on the goroutine
// that calls Emit, in registration order.
type Emitter struct {
	mu        sync.RWMutex
	nextID    ListenerID
	listeners map[Event][]listener
}

func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[Event][]listener)}
}

// On registers handler for event and returns its id.
func (em *Emitter) On(event Event, handler Handler) ListenerID {
	em.mu.Lock()
	defer em.mu.Unlock()

	em.nextID++
	em.listeners[event] = append(em.listeners[event], listener{id: em.nextID, handler: handler})

	return em.nextID
}

// Off removes the handler registered under id. It reports whether one was removed.
func (em *Emitter) Off(event Event, id ListenerID) bool {
	em.mu.Lock()
	defer em.mu.Unlock()

	ls := em.listeners[event]
	for i, l := range ls {
		if l.id == id {
			em.listeners[event] = append(ls[:i:i], ls[i+1:]...)
			return true
		}
	}

	return false
}

// Emit calls every handler registered for event.
func (em *Emitter) Emit(event Event, payload any) {
	em.mu.RLock()
	ls := make([]listener, len(em.listeners[event]))
	copy(ls, em.listeners[event])
	em.mu.RUnlock()

	for _, l := range ls {
		l.handler(payload)
	}
}

// ListenerCount returns the number of handlers registered for event.
func (em *Emitter) ListenerCount(event Event) int {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return len(em.listeners[event])
}
