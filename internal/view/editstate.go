package view

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when an edit action does not fit the record's current mode.
var ErrInvalidTransition = errors.New("invalid edit transition")

// Mode is the edit mode of one listed record.
type Mode int

const (
	// Viewing shows the record's content with Delete and Modify actions.
	Viewing Mode = iota
	// Editing shows a text area pre-filled with the current content.
	Editing
	// Saving is held while the modified content is written.
	Saving
)

func (m Mode) String() string {
	switch m {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// EditStates tracks the edit mode per record id: Viewing -> Editing -> Saving -> Viewing.
// Records without an entry are Viewing. Safe for concurrent use.
type EditStates struct {
	mu    sync.Mutex
	modes map[uint64]Mode
}

// NewEditStates returns an empty state table.
func NewEditStates() *EditStates {
	return &EditStates{modes: make(map[uint64]Mode)}
}

// Mode returns the current mode of id.
func (e *EditStates) Mode(id uint64) Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modes[id]
}

// BeginEdit moves id from Viewing to Editing.
func (e *EditStates) BeginEdit(id uint64) error {
	return e.transition(id, Viewing, Editing)
}

// BeginSave moves id from Editing to Saving. The caller must follow with Finish or Fail.
func (e *EditStates) BeginSave(id uint64) error {
	return e.transition(id, Editing, Saving)
}

// Cancel moves id from Editing back to Viewing without writing.
func (e *EditStates) Cancel(id uint64) error {
	return e.transition(id, Editing, Viewing)
}

// Finish moves id from Saving to Viewing after a successful write.
func (e *EditStates) Finish(id uint64) error {
	return e.transition(id, Saving, Viewing)
}

// Fail moves id from Saving back to Editing so the write can be retried.
func (e *EditStates) Fail(id uint64) error {
	return e.transition(id, Saving, Editing)
}

// Forget drops any state for id, e.g. after the record is deleted.
func (e *EditStates) Forget(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.modes, id)
}

// Retain drops state for every id not in keep.
func (e *EditStates) Retain(keep map[uint64]struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id := range e.modes {
		if _, ok := keep[id]; !ok {
			delete(e.modes, id)
		}
	}
}

func (e *EditStates) transition(id uint64, from, to Mode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	current := e.modes[id]
	if current != from {
		return fmt.Errorf("%w: document %d is %s, not %s", ErrInvalidTransition, id, current, from)
	}
	if to == Viewing {
		delete(e.modes, id)
		return nil
	}
	e.modes[id] = to
	return nil
}
