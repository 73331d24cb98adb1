package ui

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// EventKind names a lifecycle event slot.
type EventKind int

const (
	EventTimeout EventKind = iota + 1
	EventError
	EventCheck
	EventSubmit
	EventChange
)

func (k EventKind) String() string {
	switch k {
	case EventTimeout:
		return "on_timeout"
	case EventError:
		return "on_error"
	case EventCheck:
		return "on_check"
	case EventSubmit:
		return "on_submit"
	case EventChange:
		return "on_change"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ParseEventKind accepts "on_timeout" or "timeout" spellings.
func ParseEventKind(s string) (EventKind, bool) {
	for k := EventTimeout; k <= EventChange; k++ {
		if s == k.String() || "on_"+s == k.String() {
			return k, true
		}
	}
	return 0, false
}

// Pager is the menu state an on_change handler observes.
type Pager interface {
	Len() int
	ActivePage() int
	FrontPage() int
}

type (
	TimeoutFunc func(ctx context.Context, c Container)
	ErrorFunc   func(ctx context.Context, c Container, in *Interaction, err error, item *Item)
	CheckFunc   func(ctx context.Context, c Container, in *Interaction) bool
	SubmitFunc  func(ctx context.Context, m *Modal, in *Interaction) error
	ChangeFunc  func(ctx context.Context, p Pager)
)

// Events is a partial table of event handlers. A missing slot falls back
// to its default: no-op, a logged error, or true for the check gate. The
// zero value is an empty table.
type Events struct {
	slots map[EventKind]any
}

// NewEvents builds a table from loosely typed handlers, as callers pass
// them to a render call. Each value must be the func type for its kind.
func NewEvents(handlers map[EventKind]any) (*Events, error) {
	e := &Events{}
	kinds := make([]EventKind, 0, len(handlers))
	for k := range handlers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		if err := e.Set(k, handlers[k]); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Set fills a slot. A nil fn clears it.
func (e *Events) Set(k EventKind, fn any) error {
	if fn == nil {
		delete(e.slots, k)
		return nil
	}
	ok := false
	switch k {
	case EventTimeout:
		fn, ok = asTimeout(fn)
	case EventError:
		fn, ok = asError(fn)
	case EventCheck:
		fn, ok = asCheck(fn)
	case EventSubmit:
		fn, ok = asSubmit(fn)
	case EventChange:
		fn, ok = asChange(fn)
	default:
		return fmt.Errorf("ui: unknown event kind %v", k)
	}
	if !ok {
		return fmt.Errorf("ui: %v handler has type %T", k, fn)
	}
	if e.slots == nil {
		e.slots = make(map[EventKind]any)
	}
	e.slots[k] = fn
	return nil
}

func asTimeout(fn any) (any, bool) {
	switch f := fn.(type) {
	case TimeoutFunc:
		return f, true
	case func(context.Context, Container):
		return TimeoutFunc(f), true
	}
	return fn, false
}

func asError(fn any) (any, bool) {
	switch f := fn.(type) {
	case ErrorFunc:
		return f, true
	case func(context.Context, Container, *Interaction, error, *Item):
		return ErrorFunc(f), true
	}
	return fn, false
}

func asCheck(fn any) (any, bool) {
	switch f := fn.(type) {
	case CheckFunc:
		return f, true
	case func(context.Context, Container, *Interaction) bool:
		return CheckFunc(f), true
	}
	return fn, false
}

func asSubmit(fn any) (any, bool) {
	switch f := fn.(type) {
	case SubmitFunc:
		return f, true
	case func(context.Context, *Modal, *Interaction) error:
		return SubmitFunc(f), true
	}
	return fn, false
}

func asChange(fn any) (any, bool) {
	switch f := fn.(type) {
	case ChangeFunc:
		return f, true
	case func(context.Context, Pager):
		return ChangeFunc(f), true
	}
	return fn, false
}

func (e *Events) OnTimeout(fn TimeoutFunc) *Events {
	if fn == nil {
		delete(e.slots, EventTimeout)
		return e
	}
	e.put(EventTimeout, fn)
	return e
}

func (e *Events) OnError(fn ErrorFunc) *Events {
	if fn == nil {
		delete(e.slots, EventError)
		return e
	}
	e.put(EventError, fn)
	return e
}

func (e *Events) OnCheck(fn CheckFunc) *Events {
	if fn == nil {
		delete(e.slots, EventCheck)
		return e
	}
	e.put(EventCheck, fn)
	return e
}

func (e *Events) OnSubmit(fn SubmitFunc) *Events {
	if fn == nil {
		delete(e.slots, EventSubmit)
		return e
	}
	e.put(EventSubmit, fn)
	return e
}

func (e *Events) OnChange(fn ChangeFunc) *Events {
	if fn == nil {
		delete(e.slots, EventChange)
		return e
	}
	e.put(EventChange, fn)
	return e
}

func (e *Events) put(k EventKind, fn any) {
	if e.slots == nil {
		e.slots = make(map[EventKind]any)
	}
	e.slots[k] = fn
}

// Has reports whether a slot is filled.
func (e *Events) Has(k EventKind) bool {
	if e == nil {
		return false
	}
	_, ok := e.slots[k]
	return ok
}

// Clone copies the table so two containers can diverge.
func (e *Events) Clone() *Events {
	out := &Events{}
	if e == nil {
		return out
	}
	for k, v := range e.slots {
		out.put(k, v)
	}
	return out
}

func (e *Events) get(k EventKind) any {
	if e == nil {
		return nil
	}
	return e.slots[k]
}

// Timeout fires on_timeout.
func (e *Events) Timeout(ctx context.Context, c Container) {
	if fn, ok := e.get(EventTimeout).(TimeoutFunc); ok {
		fn(ctx, c)
	}
}

// Error fires on_error, or logs when the slot is empty.
func (e *Events) Error(ctx context.Context, c Container, in *Interaction, err error, item *Item) {
	if fn, ok := e.get(EventError).(ErrorFunc); ok {
		fn(ctx, c, in, err, item)
		return
	}
	key := ""
	if item != nil {
		key = item.Key
	}
	log.Printf("ui: interaction %s on item %q failed: %v", in.CustomID, key, err)
}

// Check runs the on_check gate. An empty slot lets everything through.
func (e *Events) Check(ctx context.Context, c Container, in *Interaction) bool {
	if fn, ok := e.get(EventCheck).(CheckFunc); ok {
		return fn(ctx, c, in)
	}
	return true
}

// Submit fires on_submit.
func (e *Events) Submit(ctx context.Context, m *Modal, in *Interaction) error {
	if fn, ok := e.get(EventSubmit).(SubmitFunc); ok {
		return fn(ctx, m, in)
	}
	return nil
}

// Change fires on_change.
func (e *Events) Change(ctx context.Context, p Pager) {
	if fn, ok := e.get(EventChange).(ChangeFunc); ok {
		fn(ctx, p)
	}
}
