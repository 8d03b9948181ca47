package drafts

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/meur/dtwiki/internal/debounce"
	"github.com/meur/dtwiki/internal/errors"
)

const writeTimeout = 5 * time.Second

// Autosaver writes the latest state of one builder session to a Store.
//
// Nothing is written until Hydrate has run, so an empty initial state can
// never overwrite a stored draft. Writes are debounced and best effort:
// failures are logged and dropped.
type Autosaver struct {
	store     Store
	key       string
	debouncer *debounce.Debouncer

	mu       sync.Mutex
	hydrated bool
}

// NewAutosaver creates an autosaver for key that waits delay after the last
// change before writing
func NewAutosaver(store Store, key string, delay time.Duration) *Autosaver {
	return &Autosaver{
		store:     store,
		key:       key,
		debouncer: debounce.New(delay),
	}
}

// Key returns the draft key this autosaver writes to
func (a *Autosaver) Key() string { return a.key }

// Hydrate loads the stored draft, if any, and opens the write gate. A
// missing or unreadable draft yields ok=false.
func (a *Autosaver) Hydrate(ctx context.Context) (data []byte, ok bool) {
	defer a.markHydrated()

	data, err := a.store.Load(ctx, a.key)
	if err != nil {
		if !errors.IsNotFound(err) {
			log.Printf("drafts: failed to load %s: %v", a.key, err)
		}
		return nil, false
	}
	return data, true
}

func (a *Autosaver) markHydrated() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hydrated = true
}

// Hydrated reports whether writes are allowed yet
func (a *Autosaver) Hydrated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hydrated
}

// Schedule queues data for writing. Only the latest scheduled data is
// written. Calls before hydration are ignored.
func (a *Autosaver) Schedule(data []byte) {
	if !a.Hydrated() {
		return
	}
	a.debouncer.Trigger(func() { a.write(data) })
}

// Flush writes any pending data now
func (a *Autosaver) Flush() {
	a.debouncer.Flush()
}

// Close flushes pending data and stops accepting new writes
func (a *Autosaver) Close() {
	a.debouncer.Flush()
	a.debouncer.Stop()
}

// Discard drops pending data and deletes the stored draft
func (a *Autosaver) Discard(ctx context.Context) {
	a.debouncer.Stop()
	if err := a.store.Delete(ctx, a.key); err != nil {
		log.Printf("drafts: failed to delete %s: %v", a.key, err)
	}
}

func (a *Autosaver) write(data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := a.store.Save(ctx, a.key, data); err != nil {
		log.Printf("drafts: failed to save %s: %v", a.key, err)
	}
}
