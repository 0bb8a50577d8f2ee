package doc

import (
	"sort"
	"sync"
)

// Priority orders command handlers. Higher priorities run first.
type Priority int

// Handler priorities.
const (
	PriorityEditor Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Command identifies a command carrying a payload of type P.
type Command[P any] struct {
	name string
}

// NewCommand creates a command. Commands are compared by identity of their
// name, so names should be unique.
func NewCommand[P any](name string) Command[P] {
	return Command[P]{name: name}
}

// Name returns the command name.
func (c Command[P]) Name() string { return c.name }

// Handler handles a command and reports whether it was handled.
type Handler[P any] func(tx *Txn, payload P) bool

type registeredHandler struct {
	id       uint64
	priority Priority
	fn       any
}

// commandRegistry manages handlers by command name.
type commandRegistry struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]registeredHandler // command name -> handlers (sorted by priority)
}

func newCommandRegistry() *commandRegistry {
	return &commandRegistry{handlers: make(map[string][]registeredHandler)}
}

func (r *commandRegistry) register(name string, fn any, p Priority) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	handlers := append(r.handlers[name], registeredHandler{id: id, priority: p, fn: fn})

	// Sort by priority (descending), registration order within a priority.
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].priority > handlers[j].priority
	})
	r.handlers[name] = handlers

	return func() { r.unregister(name, id) }
}

func (r *commandRegistry) unregister(name string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := r.handlers[name]
	for i, h := range handlers {
		if h.id == id {
			r.handlers[name] = append(handlers[:i:i], handlers[i+1:]...)
			break
		}
	}
	if len(r.handlers[name]) == 0 {
		delete(r.handlers, name)
	}
}

func (r *commandRegistry) snapshot(name string) []registeredHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handlers := r.handlers[name]
	out := make([]registeredHandler, len(handlers))
	copy(out, handlers)
	return out
}

func (r *commandRegistry) has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[name]) > 0
}

// RegisterCommand adds a handler for cmd and returns a function removing it.
func RegisterCommand[P any](d *Document, cmd Command[P], h Handler[P], p Priority) func() {
	return d.commands.register(cmd.name, h, p)
}

// Dispatch runs the handlers of cmd from the highest priority down and stops
// at the first one that returns true.
func Dispatch[P any](tx *Txn, cmd Command[P], payload P) bool {
	for _, h := range tx.doc.commands.snapshot(cmd.name) {
		fn, ok := h.fn.(Handler[P])
		if !ok {
			continue
		}
		if fn(tx, payload) {
			return true
		}
	}
	return false
}

// DispatchCommand opens an update and dispatches cmd inside it.
func DispatchCommand[P any](d *Document, cmd Command[P], payload P, opts ...UpdateOption) (bool, error) {
	var handled bool
	err := d.Update(func(tx *Txn) error {
		handled = Dispatch(tx, cmd, payload)
		return nil
	}, opts...)
	return handled, err
}

// HasHandlers reports whether any handler is registered for the command name.
func (d *Document) HasHandlers(name string) bool {
	return d.commands.has(name)
}

// MergeRegister combines unregister functions into one that calls them in
// reverse order.
func MergeRegister(fns ...func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			if fns[i] != nil {
				fns[i]()
			}
		}
	}
}
