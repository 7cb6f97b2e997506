package application

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/bnema/pony-express-cli/internal/domain"
)

// Status of a cached resource.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Key identifies a logical remote resource as an ordered tuple of scalars.
// Identity is structural: two keys built from equal elements address the
// same cache entry regardless of call site. Distinct resources never
// collide because their leading element differs.
type Key []string

func (k Key) id() string {
	return strings.Join(k, "\x1f")
}

func (k Key) String() string {
	return "(" + strings.Join(k, ", ") + ")"
}

func ChatsKey() Key {
	return Key{"chats"}
}

func MessagesKey(chatID domain.ChatID) Key {
	return Key{"messages", string(chatID)}
}

func UserKey(token string) Key {
	return Key{"user", token}
}

// FetchFunc performs the network read for one resource.
type FetchFunc func(ctx context.Context) (any, error)

// Entry is a point-in-time snapshot of a cached resource. Data survives
// refetches and fetch errors until overwritten by a newer successful
// fetch, so consumers can keep rendering the previous payload while a
// replacement is on its way. Stale marks an invalidated entry whose next
// Request will refetch.
type Entry struct {
	Key    Key
	Status Status
	Data   any
	Err    error
	Stale  bool
}

type cacheEntry struct {
	key         Key
	status      Status
	data        any
	err         error
	stale       bool
	generation  uint64
	subscribers int
	inflight    chan struct{}
}

func (e *cacheEntry) snapshot() Entry {
	return Entry{
		Key:    append(Key(nil), e.key...),
		Status: e.status,
		Data:   e.data,
		Err:    e.err,
		Stale:  e.stale,
	}
}

// Cache is a keyed store of remote resource states. It guarantees at most
// one in-flight fetch per key (concurrent requests attach to the running
// fetch) and serializes result application per key by fetch generation:
// only the most recently issued fetch may commit, so a superseded fetch
// that resolves late is discarded rather than clobbering fresher data.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	watchers map[string]map[int]func(Entry)
	nextID   int
}

func NewCache() *Cache {
	return &Cache{
		entries:  map[string]*cacheEntry{},
		watchers: map[string]map[int]func(Entry){},
	}
}

// Request returns the entry for key, fetching when the entry is absent,
// idle, or stale. A fresh success or error entry is served without any
// network call; retry after an error is the caller's decision via
// Invalidate. Fetch failures are captured into the returned entry, never
// propagated as the error return, which reports only context
// cancellation: either while waiting on another caller's fetch, or when
// the caller's own context aborts the fetch it issued. A fetch aborted
// that way is not committed — the caller's cancellation is not the
// resource's error — and the entry stays refetchable for attached
// waiters.
func (c *Cache) Request(ctx context.Context, key Key, fetch FetchFunc) (Entry, error) {
	id := key.id()

	c.mu.Lock()
	for {
		e := c.ensure(id, key)

		if !e.stale && (e.status == StatusSuccess || e.status == StatusError) {
			snap := e.snapshot()
			c.mu.Unlock()
			return snap, nil
		}

		if e.inflight != nil && !e.stale {
			done := e.inflight
			c.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return Entry{}, ctx.Err()
			}
			c.mu.Lock()
			continue
		}

		// Issue a new fetch. Bumping the generation supersedes any fetch
		// still running for this key; its completion will be discarded.
		e.generation++
		gen := e.generation
		e.stale = false
		e.status = StatusLoading
		done := make(chan struct{})
		e.inflight = done
		c.mu.Unlock()

		data, err := fetch(ctx)

		c.mu.Lock()
		canceled := err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err())
		applied := gen == e.generation && !canceled
		if applied {
			if err != nil {
				e.status = StatusError
				e.err = err
			} else {
				e.status = StatusSuccess
				e.data = data
				e.err = nil
			}
		}
		if gen == e.generation && canceled {
			e.status = StatusIdle
		}
		if e.inflight == done {
			e.inflight = nil
		}
		close(done)
		snap := e.snapshot()
		var notify []func(Entry)
		if applied {
			notify = c.watcherList(id)
		}
		c.mu.Unlock()

		for _, fn := range notify {
			fn(snap)
		}
		if canceled {
			return Entry{}, ctx.Err()
		}
		return snap, nil
	}
}

// Invalidate marks the entry stale. Cached data is retained for display
// until a refetch commits, and the next Request issues a new fetch even
// while an older one is still in flight. Unknown keys are a no-op.
func (c *Cache) Invalidate(key Key) {
	id := key.id()

	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	e.stale = true
	snap := e.snapshot()
	notify := c.watcherList(id)
	c.mu.Unlock()

	for _, fn := range notify {
		fn(snap)
	}
}

// Peek reads the current entry without triggering a fetch.
func (c *Cache) Peek(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.id()]
	if !ok {
		return Entry{}, false
	}
	return e.snapshot(), true
}

// Subscribe registers fn for commit and invalidation notifications on key
// and counts the caller as an active consumer. The returned cancel is
// idempotent. Callbacks run outside the cache lock, on the goroutine that
// caused the transition.
func (c *Cache) Subscribe(key Key, fn func(Entry)) (cancel func()) {
	id := key.id()

	c.mu.Lock()
	e := c.ensure(id, key)
	e.subscribers++
	watcherID := c.nextID
	c.nextID++
	m := c.watchers[id]
	if m == nil {
		m = map[int]func(Entry){}
		c.watchers[id] = m
	}
	m[watcherID] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			if e, ok := c.entries[id]; ok && e.subscribers > 0 {
				e.subscribers--
			}
			delete(c.watchers[id], watcherID)
			if len(c.watchers[id]) == 0 {
				delete(c.watchers, id)
			}
		})
	}
}

func (c *Cache) SubscriberCount(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.id()]
	if !ok {
		return 0
	}
	return e.subscribers
}

// Prune drops entries with no subscribers and no in-flight fetch and
// returns how many were removed. Eviction is never implicit; callers
// decide when garbage-eligible entries actually go.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, e := range c.entries {
		if e.subscribers == 0 && e.inflight == nil {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

func (c *Cache) ensure(id string, key Key) *cacheEntry {
	e, ok := c.entries[id]
	if !ok {
		e = &cacheEntry{key: append(Key(nil), key...), status: StatusIdle}
		c.entries[id] = e
	}
	return e
}

func (c *Cache) watcherList(id string) []func(Entry) {
	m := c.watchers[id]
	if len(m) == 0 {
		return nil
	}
	list := make([]func(Entry), 0, len(m))
	for _, fn := range m {
		list = append(list, fn)
	}
	return list
}
