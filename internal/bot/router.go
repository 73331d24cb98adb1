// Package bot routes incoming interactions to the rendered views, menus and
// modals that own them. It is host-agnostic: adapters translate platform
// events into ui.Interaction and call Dispatch.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lojasmm/cartaz/internal/component"
	"github.com/lojasmm/cartaz/internal/session"
	"github.com/lojasmm/cartaz/internal/ui"
)

// ErrConflict is returned by Attach when a custom id is already owned by
// another attached container.
var ErrConflict = errors.New("bot: custom id already attached")

// Router maps custom ids to their containers and owns the inactivity
// timers. Each container handles one interaction at a time.
type Router struct {
	mu       sync.Mutex
	byID     map[string]*entry
	entries  map[string]*entry
	sessions *session.Manager
}

type entry struct {
	handle    string
	container ui.Container
	ids       []string
	timer     *time.Timer
	// once marks single-use containers (modals) detached after a submit.
	once bool
}

func NewRouter(sessions *session.Manager) *Router {
	if sessions == nil {
		sessions = session.NewManager()
	}
	return &Router{
		byID:     make(map[string]*entry),
		entries:  make(map[string]*entry),
		sessions: sessions,
	}
}

// Attach registers every item of c and starts its inactivity timer. The
// returned handle detaches it again.
func (r *Router) Attach(c ui.Container) (string, error) {
	e := &entry{handle: component.NewCustomID(), container: c}
	for _, it := range c.Items() {
		if id := it.CustomID(); id != "" {
			e.ids = append(e.ids, id)
		}
	}
	if m, ok := c.(*ui.Modal); ok {
		e.ids = append(e.ids, m.CustomID)
		e.once = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range e.ids {
		if _, taken := r.byID[id]; taken {
			return "", fmt.Errorf("%w: %q", ErrConflict, id)
		}
	}
	for _, id := range e.ids {
		r.byID[id] = e
	}
	r.entries[e.handle] = e
	if d := c.Timeout(); d > 0 {
		e.timer = time.AfterFunc(d, func() { r.expire(e) })
	}
	return e.handle, nil
}

// Detach forgets the container behind handle without firing on_timeout.
func (r *Router) Detach(handle string) {
	r.mu.Lock()
	e, ok := r.entries[handle]
	if ok {
		r.remove(e)
	}
	r.mu.Unlock()
	if ok {
		r.sessions.Forget(handle)
	}
}

// remove must be called with r.mu held.
func (r *Router) remove(e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	for _, id := range e.ids {
		if r.byID[id] == e {
			delete(r.byID, id)
		}
	}
	delete(r.entries, e.handle)
}

func (r *Router) expire(e *entry) {
	r.mu.Lock()
	if _, live := r.entries[e.handle]; !live {
		r.mu.Unlock()
		return
	}
	r.remove(e)
	r.mu.Unlock()

	err := r.sessions.WithLock(e.handle, func() error {
		e.container.Events().Timeout(context.Background(), e.container)
		return nil
	})
	if err != nil {
		log.Printf("bot: timeout handler for %s failed: %v", e.handle, err)
	}
	r.sessions.Forget(e.handle)
}

// Dispatch hands in to the container owning in.CustomID. Interactions on
// the same container are serialized and each one restarts its timer.
func (r *Router) Dispatch(ctx context.Context, in *ui.Interaction) error {
	r.mu.Lock()
	e, ok := r.byID[in.CustomID]
	if ok && e.timer != nil {
		e.timer.Reset(e.container.Timeout())
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ui.ErrUnknownItem, in.CustomID)
	}

	err := r.sessions.WithLock(e.handle, func() error {
		return e.container.Dispatch(ctx, in)
	})
	if e.once {
		r.Detach(e.handle)
	}
	return err
}

// Len is the number of attached containers.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Owns reports whether a custom id is routed.
func (r *Router) Owns(customID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[customID]
	return ok
}
