package doc

import "sync"

// DecoratorState is the view state of one decorator node.
type DecoratorState struct {
	Props map[string]any
	// Dirty is set when the view was (re)created and not yet acknowledged.
	Dirty bool
	// Created is the revision at which the view was last created.
	Created uint64
}

// DecoratorTable associates decorator nodes with their view state. It is
// owned by a Document and kept in sync after every commit.
type DecoratorTable struct {
	mu     sync.RWMutex
	states map[Key]*DecoratorState
}

func newDecoratorTable() *DecoratorTable {
	return &DecoratorTable{states: make(map[Key]*DecoratorState)}
}

// Get returns a copy of the state of a decorator node.
func (t *DecoratorTable) Get(k Key) (DecoratorState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.states[k]
	if !ok {
		return DecoratorState{}, false
	}
	props := make(map[string]any, len(s.Props))
	for pk, pv := range s.Props {
		props[pk] = pv
	}
	return DecoratorState{Props: props, Dirty: s.Dirty, Created: s.Created}, true
}

// TakeDirty returns the keys whose view was recreated and clears their flag.
func (t *DecoratorTable) TakeDirty() []Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Key
	for k, s := range t.states {
		if s.Dirty {
			out = append(out, k)
			s.Dirty = false
		}
	}
	return out
}

// Len returns the number of tracked decorators.
func (t *DecoratorTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.states)
}

func (t *DecoratorTable) sync(d *Document, event UpdateEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, k := range event.Removed {
		delete(t.states, k)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, k := range event.Dirty {
		n := d.nodes[k]
		if n == nil || n.kind != KindDecorator {
			continue
		}
		c, ok := d.registry.Lookup(n.typ)
		if !ok || c.CreateDecorator == nil {
			continue
		}
		s, ok := t.states[k]
		if ok && (c.UpdateDecorator == nil || !c.UpdateDecorator(n, s.Props)) {
			continue
		}
		t.states[k] = &DecoratorState{Props: c.CreateDecorator(n), Dirty: true, Created: event.Revision}
	}
}
