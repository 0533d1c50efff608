package registry

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/emberhaus/hotswap/pkg/compatibility"
	"github.com/emberhaus/hotswap/pkg/version"
)

var (
	// ErrAlreadyExists is returned when the identical (module, version) pair
	// is already registered.
	ErrAlreadyExists = errors.New("version already registered")

	// ErrNotFound is returned when a module or version is unknown.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for empty module names.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Entry is one registered version of a module.
type Entry struct {
	Module       string
	Version      version.Version
	ArtifactPath string

	// ArtifactHash is an identity token over the artifact path. Content
	// hashing belongs to the loader, which has the bytes.
	ArtifactHash uint64

	RegisteredAt time.Time
	LoadCount    uint32
}

// Config holds registry tunables.
type Config struct {
	// HistoryLimit caps entries per module; the oldest is evicted past it.
	HistoryLimit int

	// CompatCacheSize and CompatCacheTTL size the memoization cache for
	// FindCompatible lookups.
	CompatCacheSize int
	CompatCacheTTL  time.Duration
}

// DefaultConfig returns the default registry tunables.
func DefaultConfig() Config {
	return Config{
		HistoryLimit:    128,
		CompatCacheSize: 256,
		CompatCacheTTL:  time.Minute,
	}
}

// Registry is the per-module version catalog. A single mutex serializes all
// operations.
type Registry struct {
	mu      sync.Mutex
	cfg     Config
	modules map[string][]*Entry

	compatCache *lru.LRU[string, version.Version]
}

// New creates an empty registry.
func New(cfg Config) *Registry {
	def := DefaultConfig()
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	if cfg.CompatCacheSize <= 0 {
		cfg.CompatCacheSize = def.CompatCacheSize
	}
	if cfg.CompatCacheTTL <= 0 {
		cfg.CompatCacheTTL = def.CompatCacheTTL
	}
	return &Registry{
		cfg:         cfg,
		modules:     make(map[string][]*Entry),
		compatCache: lru.NewLRU[string, version.Version](cfg.CompatCacheSize, nil, cfg.CompatCacheTTL),
	}
}

// Register adds a version for a module. The identical (module, version) pair
// may only be registered once. Past the history cap the oldest entry for the
// module is evicted.
func (r *Registry) Register(module string, v version.Version, artifactPath string) error {
	if module == "" {
		return fmt.Errorf("%w: empty module name", ErrInvalidArgument)
	}
	if err := v.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.modules[module]
	for _, e := range entries {
		if e.Version.Equal(v) {
			return fmt.Errorf("%w: %s %s", ErrAlreadyExists, module, v)
		}
	}

	if len(entries) >= r.cfg.HistoryLimit {
		entries = entries[1:]
	}
	r.modules[module] = append(entries, &Entry{
		Module:       module,
		Version:      v,
		ArtifactPath: artifactPath,
		ArtifactHash: hashPath(artifactPath),
		RegisteredAt: time.Now().UTC(),
	})

	r.compatCache.Purge()
	return nil
}

// Unregister removes one version of a module.
func (r *Registry) Unregister(module string, v version.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.modules[module]
	for i, e := range entries {
		if e.Version.Equal(v) {
			r.modules[module] = append(entries[:i], entries[i+1:]...)
			if len(r.modules[module]) == 0 {
				delete(r.modules, module)
			}
			r.compatCache.Purge()
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s", ErrNotFound, module, v)
}

// Latest returns the maximum registered version by the numeric total order.
// Flags do not participate.
func (r *Registry) Latest(module string) (version.Version, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.modules[module]
	if len(entries) == 0 {
		return version.Version{}, false
	}
	best := entries[0].Version
	for _, e := range entries[1:] {
		if best.Less(e.Version) {
			best = e.Version
		}
	}
	return best, true
}

// List returns the registered versions for a module. Order is registration
// order, not version order; callers sort if they need to.
func (r *Registry) List(module string) []version.Version {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.modules[module]
	out := make([]version.Version, len(entries))
	for i, e := range entries {
		out[i] = e.Version
	}
	return out
}

// Entries returns copies of the full registry entries for a module.
func (r *Registry) Entries(module string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.modules[module]
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = *e
	}
	return out
}

// FindCompatible returns the newest registered version whose compatibility
// classification against required is Compatible or MigrationRequired. Ties
// break toward the newest.
func (r *Registry) FindCompatible(module string, required version.Version) (version.Version, bool) {
	key := module + "|" + required.String()
	if v, ok := r.compatCache.Get(key); ok {
		return v, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var best version.Version
	found := false
	for _, e := range r.modules[module] {
		if !compatibility.Check(required, e.Version).Classification.OK() {
			continue
		}
		if !found || best.Less(e.Version) {
			best = e.Version
			found = true
		}
	}

	if found {
		r.compatCache.Add(key, best)
	}
	return best, found
}

// FindBest returns the newest version carrying all preferred flag bits,
// falling back to the plain latest when nothing matches.
func (r *Registry) FindBest(module string, preferred version.Flags) (version.Version, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.modules[module]
	if len(entries) == 0 {
		return version.Version{}, false
	}

	var best version.Version
	found := false
	for _, e := range entries {
		if !e.Version.Flags.Has(preferred) {
			continue
		}
		if !found || best.Less(e.Version) {
			best = e.Version
			found = true
		}
	}
	if found {
		return best, true
	}

	best = entries[0].Version
	for _, e := range entries[1:] {
		if best.Less(e.Version) {
			best = e.Version
		}
	}
	return best, true
}

// FindSatisfying returns the newest version satisfying a constraint.
func (r *Registry) FindSatisfying(module string, c version.Constraint) (version.Version, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best version.Version
	found := false
	for _, e := range r.modules[module] {
		if !c.Satisfies(e.Version) {
			continue
		}
		if !found || best.Less(e.Version) {
			best = e.Version
			found = true
		}
	}
	return best, found
}

// RecordLoad bumps the load counter for a version. The loader calls this
// after a successful swap.
func (r *Registry) RecordLoad(module string, v version.Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.modules[module] {
		if e.Version.Equal(v) {
			e.LoadCount++
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s", ErrNotFound, module, v)
}

// Len returns the total entry count across all modules.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, entries := range r.modules {
		n += len(entries)
	}
	return n
}

// Modules returns the module names with at least one registered version.
func (r *Registry) Modules() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.modules))
	for m := range r.modules {
		out = append(out, m)
	}
	return out
}

func hashPath(path string) uint64 {
	sum := sha256.Sum256([]byte(path))
	return binary.BigEndian.Uint64(sum[:8])
}
