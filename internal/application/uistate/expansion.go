// Package uistate holds UI-only state that survives page reloads: the set of
// centers whose program list is expanded in the grouped directory view.
package uistate

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Slot is the single durable key holding the serialized expansion set.
// Implementations are read once per page load and rewritten after every change.
type Slot interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Set is the set of expanded center identifiers.
type Set map[string]struct{}

// NewSet builds a set from identifiers, ignoring blanks.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether the center is expanded.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in sorted order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Expansion owns the expansion set and writes it through to its slot.
type Expansion struct {
	slot Slot
	set  Set
}

// LoadExpansion reads the persisted set. A missing or unreadable slot yields
// an empty set rather than an error so a corrupt value never blocks a page.
// PRE: slot is non-nil
// POST: returned Expansion has a non-nil set
func LoadExpansion(slot Slot) *Expansion {
	e := &Expansion{slot: slot, set: Set{}}
	data, err := slot.Load()
	if err != nil || len(data) == 0 {
		return e
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return e
	}
	e.set = NewSet(ids...)
	return e
}

// Set returns the current expansion set.
func (e *Expansion) Set() Set {
	return e.set
}

// Toggle flips one center's membership and persists the result.
// POST: membership of id is inverted; slot holds the new set
func (e *Expansion) Toggle(id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("toggle: empty center id")
	}
	expanded := !e.set.Has(id)
	if expanded {
		e.set[id] = struct{}{}
	} else {
		delete(e.set, id)
	}
	return expanded, e.persist()
}

// ToggleAll expands every center in allIDs when any rendered group is
// collapsed, otherwise collapses all. The set is replaced wholesale.
// PRE: allIDs is the full, unfiltered center list
// POST: slot holds the new set; returns true when the result is "all expanded"
func (e *Expansion) ToggleAll(anyCollapsed bool, allIDs []string) (bool, error) {
	if anyCollapsed {
		e.set = NewSet(allIDs...)
	} else {
		e.set = Set{}
	}
	return anyCollapsed, e.persist()
}

func (e *Expansion) persist() error {
	data, err := json.Marshal(e.set.IDs())
	if err != nil {
		return err
	}
	if err := e.slot.Save(data); err != nil {
		return fmt.Errorf("save expansion state: %w", err)
	}
	return nil
}

// MemorySlot keeps the serialized set in memory.
type MemorySlot struct {
	Data []byte
	Err  error
}

// Load returns the stored bytes.
func (m *MemorySlot) Load() ([]byte, error) {
	return m.Data, m.Err
}

// Save replaces the stored bytes.
func (m *MemorySlot) Save(data []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.Data = append(m.Data[:0:0], data...)
	return nil
}
