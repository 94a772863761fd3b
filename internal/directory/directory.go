package directory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/dshills/taggable/internal/logging"
	"github.com/dshills/taggable/internal/tag"
)

// DefaultKinds maps the stock prefixes to entity kinds.
func DefaultKinds() map[string]string {
	return map[string]string{
		"@": "person",
		"#": "topic",
	}
}

// Directory is an in-memory, searchable set of entities. It is safe for
// concurrent use and may be reloaded while sessions query it.
type Directory struct {
	mu      sync.RWMutex
	path    string
	kinds   map[string]string
	byKind  map[string][]candidate
	byKey   map[string]Entity
	count   int
	version uint64

	limit   int
	matcher *matcher
	log     *logging.Logger
}

// Option configures a Directory.
type Option func(*Directory)

// WithLimit caps the number of search results. Zero means no cap.
func WithLimit(n int) Option {
	return func(d *Directory) {
		if n >= 0 {
			d.limit = n
		}
	}
}

// WithKinds replaces the prefix to kind mapping.
func WithKinds(kinds map[string]string) Option {
	return func(d *Directory) {
		d.kinds = make(map[string]string, len(kinds))
		for p, k := range kinds {
			d.kinds[p] = k
		}
	}
}

// WithScorer replaces the default scoring weights.
func WithScorer(s Scorer) Option {
	return func(d *Directory) {
		d.matcher.setScorer(s)
	}
}

// WithCacheSize sets the result cache size. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(d *Directory) {
		d.matcher = newMatcher(d.matcher.scorer, n)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.log = l
		}
	}
}

// New creates an empty directory.
func New(opts ...Option) *Directory {
	d := &Directory{
		kinds:   DefaultKinds(),
		byKind:  make(map[string][]candidate),
		byKey:   make(map[string]Entity),
		limit:   8,
		matcher: newMatcher(DefaultWeights(), 256),
		log:     logging.Default().WithComponent("directory"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open creates a directory and loads it from path.
func Open(path string, opts ...Option) (*Directory, error) {
	d := New(opts...)
	if err := d.Load(path); err != nil {
		return nil, err
	}
	return d, nil
}

// Load replaces the contents with the entities in the JSON file at path
// and remembers path for Reload and Watch.
func (d *Directory) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading directory: %w", err)
	}
	entities, err := Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	d.mu.Lock()
	d.path = path
	d.mu.Unlock()

	d.Replace(entities)
	d.log.Info("loaded %d entities from %s", len(entities), path)
	return nil
}

// Reload re-reads the file given to Load. On error the current contents
// are kept.
func (d *Directory) Reload() error {
	d.mu.RLock()
	path := d.path
	d.mu.RUnlock()
	if path == "" {
		return fmt.Errorf("reload: no directory file loaded")
	}
	return d.Load(path)
}

// Path returns the file last loaded, if any.
func (d *Directory) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// Replace swaps in a new entity set. Later duplicates of a kind and id
// replace earlier ones.
func (d *Directory) Replace(entities []Entity) {
	byKey := make(map[string]Entity, len(entities))
	for _, e := range entities {
		byKey[entityKey(e.Kind, e.ID)] = e
	}

	byKind := make(map[string][]candidate)
	for _, e := range byKey {
		byKind[e.Kind] = append(byKind[e.Kind], candidate{entity: e, text: e.Name})
	}
	for _, list := range byKind {
		sort.Slice(list, func(i, j int) bool {
			if list[i].entity.Name != list[j].entity.Name {
				return list[i].entity.Name < list[j].entity.Name
			}
			return list[i].entity.ID < list[j].entity.ID
		})
	}

	d.mu.Lock()
	d.byKey = byKey
	d.byKind = byKind
	d.count = len(byKey)
	d.version++
	d.mu.Unlock()

	d.matcher.reset()
}

// Len returns the number of entities.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.count
}

// Entities returns every entity of kind, sorted by name.
func (d *Directory) Entities(kind string) []Entity {
	d.mu.RLock()
	defer d.mu.RUnlock()
	list := d.byKind[kind]
	out := make([]Entity, len(list))
	for i, c := range list {
		out[i] = c.entity
	}
	return out
}

// Kind returns the entity kind bound to prefix.
func (d *Directory) Kind(prefix string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	k, ok := d.kinds[prefix]
	return k, ok
}

// Search returns the entities of the prefix's kind whose names fuzzily
// match query, best first. An empty query lists entities by name.
func (d *Directory) Search(ctx context.Context, prefix, query string) ([]Entity, error) {
	matches, err := d.SearchMatches(ctx, prefix, query)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, len(matches))
	for i, m := range matches {
		out[i] = m.Entity
	}
	return out, nil
}

// SearchMatches is Search with scores and matched positions.
func (d *Directory) SearchMatches(ctx context.Context, prefix, query string) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	kind, ok := d.kinds[prefix]
	items := d.byKind[kind]
	version := d.version
	limit := d.limit
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, prefix)
	}

	matches := d.matcher.match(fmt.Sprintf("%d/%s", version, kind), query, items)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	d.log.Debug("search %s%q: %d results", prefix, query, len(matches))
	return matches, nil
}

// Resolve finds the entity with canonical id under prefix. It has the
// shape of a reverse lookup for canonical decoding.
func (d *Directory) Resolve(ctx context.Context, prefix, id string) (Entity, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entity{}, false, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	kind, ok := d.kinds[prefix]
	if !ok {
		return Entity{}, false, nil
	}
	e, ok := d.byKey[entityKey(kind, id)]
	return e, ok, nil
}

// Converter renders entities by name for display and by id in canonical
// text.
func (d *Directory) Converter() tag.Converter[Entity] {
	return tag.Converter[Entity]{
		Display:   func(e Entity) string { return e.Name },
		Canonical: func(e Entity) string { return e.ID },
	}
}
