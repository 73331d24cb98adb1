package component

import (
	"time"

	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/ui"
)

// DefaultTimeout is the inactivity timeout of a view or modal whose
// template does not set one.
const DefaultTimeout = 180 * time.Second

// Callables maps component keys to callbacks. Keys with no matching
// component are ignored.
type Callables map[string]ui.Callback

// Assembler builds views and modals. The zero value uses DefaultTimeout.
type Assembler struct {
	Timeout time.Duration
}

func (a Assembler) timeout(seconds *float64) time.Duration {
	if seconds != nil {
		return time.Duration(*seconds * float64(time.Second))
	}
	if a.Timeout > 0 {
		return a.Timeout
	}
	return DefaultTimeout
}

// View builds every component in document order and attaches events.
func (a Assembler) View(v *model.View, callables Callables, events *ui.Events) (*ui.View, error) {
	view := ui.NewView(a.timeout(v.Timeout), events)
	if err := addAll(v.Components, callables, view.Add); err != nil {
		return nil, err
	}
	return view, nil
}

// Modal builds a modal form. A modal without a custom id gets a random one.
func (a Assembler) Modal(m *model.Modal, callables Callables, events *ui.Events) (*ui.Modal, error) {
	id := m.CustomID
	if id == "" {
		id = NewCustomID()
	}
	modal := ui.NewModal(m.Title, id, a.timeout(m.Timeout), events)
	if err := addAll(m.Components, callables, modal.Add); err != nil {
		return nil, err
	}
	return modal, nil
}

func addAll(comps []model.Component, callables Callables, add func(*ui.Item)) error {
	seen := make(map[string]bool, len(comps))
	for _, c := range comps {
		if c.Key != "" {
			if seen[c.Key] {
				return tmplerr.New(tmplerr.Validation, "duplicate component key %q", c.Key)
			}
			seen[c.Key] = true
		}
		it, err := FromModel(c, callables[c.Key])
		if err != nil {
			return err
		}
		add(it)
	}
	return nil
}
