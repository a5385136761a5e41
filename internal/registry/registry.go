// Package registry discovers capability descriptors across a set of
// filesystem roots and caches the result.
//
// Roots are scanned in order; when two roots define the same capability
// name, the later root wins. This lets project-local descriptor
// directories override globally installed ones.
package registry

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arenahq/arena/internal/descriptor"
)

// DefaultTTL is how long a discovery snapshot stays fresh before the
// next Discover triggers a rescan.
const DefaultTTL = 5 * time.Minute

// EnvRoots overrides the default search roots with an
// os.PathListSeparator-joined list of directories.
const EnvRoots = "ARENA_AGENT_PATHS"

// Root is one descriptor search directory. Label identifies the root in
// warnings and in Descriptor.SourceRoot.
type Root struct {
	Path  string
	Label string
}

// Warning records a non-fatal problem met during a scan: an unreadable
// root or a descriptor file that failed to parse.
type Warning struct {
	Root    string `json:"root"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Snapshot is the result of one scan. It is immutable once returned;
// concurrent readers share it freely.
type Snapshot struct {
	ByName    map[string]*descriptor.Descriptor
	Names     []string
	Warnings  []Warning
	ScannedAt time.Time
}

// Lookup returns the descriptor with the given name, if present.
func (s *Snapshot) Lookup(name string) (*descriptor.Descriptor, bool) {
	d, ok := s.ByName[name]
	return d, ok
}

// Categories returns the sorted set of categories present in the snapshot.
func (s *Snapshot) Categories() []string {
	seen := map[string]bool{}
	for _, d := range s.ByName {
		seen[d.Category] = true
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// TechStacks returns the sorted union of tech-stack tags in the snapshot.
func (s *Snapshot) TechStacks() []string {
	seen := map[string]bool{}
	for _, d := range s.ByName {
		for _, t := range d.TechStack {
			seen[t] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Registry scans roots for descriptors and caches the snapshot for a TTL.
type Registry struct {
	roots  []Root
	loader *descriptor.Loader
	ttl    time.Duration
	log    zerolog.Logger

	// now is injected by tests to control cache expiry.
	now func() time.Time

	mu      sync.Mutex
	cached  *Snapshot
	expires time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL overrides the snapshot TTL. Zero or negative disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.ttl = ttl }
}

// WithLoader replaces the descriptor loader.
func WithLoader(l *descriptor.Loader) Option {
	return func(r *Registry) { r.loader = l }
}

// WithLogger sets the registry's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// WithClock injects the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New creates a Registry over the given roots, scanned in order with
// later roots taking precedence.
func New(roots []Root, opts ...Option) *Registry {
	r := &Registry{
		roots:  roots,
		loader: descriptor.NewLoader(nil),
		ttl:    DefaultTTL,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Loader exposes the descriptor loader, whose classifier the
// recommendation engine shares.
func (r *Registry) Loader() *descriptor.Loader { return r.loader }

// Roots returns the configured search roots in scan order.
func (r *Registry) Roots() []Root { return r.roots }

// DefaultRoots returns the standard search roots, lowest precedence
// first: the per-user global directory, then ./agents, then
// ./custom_agents. EnvRoots, when set, replaces the whole list.
func DefaultRoots() []Root {
	if env := os.Getenv(EnvRoots); env != "" {
		var roots []Root
		for _, p := range filepath.SplitList(env) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			roots = append(roots, Root{Path: p, Label: p})
		}
		return roots
	}

	var roots []Root
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, Root{
			Path:  filepath.Join(home, ".claude", "agents"),
			Label: "global",
		})
	}
	roots = append(roots,
		Root{Path: "agents", Label: "project"},
		Root{Path: "custom_agents", Label: "custom"},
	)
	return roots
}

// Discover returns the current snapshot, rescanning the roots when the
// cache is stale or force is set. A registry with no readable roots
// yields an empty snapshot, not an error.
func (r *Registry) Discover(force bool) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !force && r.cached != nil && r.now().Before(r.expires) {
		return r.cached, nil
	}

	snap := r.scan()
	r.cached = snap
	r.expires = r.now().Add(r.ttl)
	return snap, nil
}

// Invalidate drops the cached snapshot so the next Discover rescans.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
}

func (r *Registry) scan() *Snapshot {
	snap := &Snapshot{
		ByName:    map[string]*descriptor.Descriptor{},
		ScannedAt: r.now(),
	}

	for _, root := range r.roots {
		info, err := os.Stat(root.Path)
		if err != nil || !info.IsDir() {
			if err != nil && !os.IsNotExist(err) {
				snap.Warnings = append(snap.Warnings, Warning{
					Root:    root.Label,
					Message: "root unreadable: " + err.Error(),
				})
				r.log.Warn().Str("root", root.Path).Err(err).Msg("skipping unreadable root")
			}
			continue
		}

		walkErr := filepath.WalkDir(root.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				snap.Warnings = append(snap.Warnings, Warning{
					Root:    root.Label,
					Path:    path,
					Message: err.Error(),
				})
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
				return nil
			}

			desc, perr := r.loader.ParseFile(path, root.Path)
			if perr != nil {
				snap.Warnings = append(snap.Warnings, Warning{
					Root:    root.Label,
					Path:    path,
					Message: perr.Error(),
				})
				r.log.Warn().Str("path", path).Err(perr).Msg("skipping descriptor")
				return nil
			}

			desc.SourceRoot = root.Label
			// Later roots override earlier ones for the same name.
			snap.ByName[desc.Name] = desc
			return nil
		})
		if walkErr != nil {
			snap.Warnings = append(snap.Warnings, Warning{
				Root:    root.Label,
				Message: walkErr.Error(),
			})
		}
	}

	snap.Names = make([]string, 0, len(snap.ByName))
	for name := range snap.ByName {
		snap.Names = append(snap.Names, name)
	}
	sort.Strings(snap.Names)

	r.log.Debug().
		Int("capabilities", len(snap.Names)).
		Int("warnings", len(snap.Warnings)).
		Msg("descriptor scan complete")
	return snap
}
