// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/donor-match/internal/alleles"
	"github.com/pdiddy/donor-match/internal/logging"
	"github.com/pdiddy/donor-match/pkg/types"
)

// ErrNotFound is returned (wrapped) by a Persister that holds no dictionary
// for the requested version.
var ErrNotFound = errors.New("dictionary not found")

// Source supplies the reference dataset of a version.
type Source interface {
	Load(ctx context.Context, version string) (*types.Dataset, error)
}

// Persister stores compiled dictionaries between runs.
type Persister interface {
	Load(ctx context.Context, version string) (*Dictionary, error)
	Save(ctx context.Context, dict *Dictionary) error
}

// Manager serves compiled dictionaries by version. A request is answered
// from memory, then from the persister, then by compiling from the source;
// concurrent requests for one version share a single build. Compiled
// dictionaries are never mutated: a new version is made current with
// Activate, which swaps a pointer.
type Manager struct {
	source    Source
	persister Persister
	opts      Options

	mu    sync.RWMutex
	cache map[string]*Dictionary

	builds singleflight.Group
	active atomic.Pointer[Dictionary]
}

// NewManager returns a Manager. persister may be nil. The resolver in opts
// is shared across every version the manager compiles.
func NewManager(source Source, persister Persister, opts Options) *Manager {
	if opts.Resolver == nil {
		opts.Resolver = alleles.NewResolver()
	}
	return &Manager{
		source:    source,
		persister: persister,
		opts:      opts,
		cache:     make(map[string]*Dictionary),
	}
}

// Dictionary returns the compiled dictionary for version, building it if
// no copy exists yet. Compilation failures are not retried. Callers share
// one build per version; the build ignores any one caller's cancellation,
// while each caller stops waiting when its own ctx is done.
func (m *Manager) Dictionary(ctx context.Context, version string) (*Dictionary, error) {
	if d := m.cached(version); d != nil {
		m.opts.Metrics.CountFetch("memory")
		return d, nil
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := m.builds.DoChan(version, func() (any, error) {
		if d := m.cached(version); d != nil {
			return d, nil
		}
		d, err := m.fetchOrCompile(buildCtx, version)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.cache[version] = d
		m.mu.Unlock()
		return d, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dictionary), nil
	}
}

func (m *Manager) cached(version string) *Dictionary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache[version]
}

func (m *Manager) fetchOrCompile(ctx context.Context, version string) (*Dictionary, error) {
	log := logging.Component(m.opts.Logger, "manager")

	if m.persister != nil {
		d, err := m.persister.Load(ctx, version)
		switch {
		case err == nil:
			m.opts.Metrics.CountFetch("store")
			log.Debug().Str("version", version).Msg("dictionary loaded from store")
			return d, nil
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("loading stored dictionary %s: %w", version, err)
		}
	}

	if m.source == nil {
		return nil, fmt.Errorf("no dataset source configured for version %s", version)
	}
	ds, err := m.source.Load(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", version, err)
	}

	d, _, err := Compile(ctx, ds, m.opts)
	if err != nil {
		return nil, err
	}
	m.opts.Metrics.CountFetch("compiled")

	if m.persister != nil {
		if err := m.persister.Save(ctx, d); err != nil {
			log.Warn().Err(err).Str("version", version).Msg("compiled dictionary not persisted")
		}
	}
	return d, nil
}

// Activate makes version the current dictionary. Readers holding the
// previous dictionary keep a consistent view of it.
func (m *Manager) Activate(ctx context.Context, version string) (*Dictionary, error) {
	d, err := m.Dictionary(ctx, version)
	if err != nil {
		return nil, err
	}
	m.active.Store(d)
	return d, nil
}

// Active returns the current dictionary, or nil before the first Activate.
func (m *Manager) Active() *Dictionary {
	return m.active.Load()
}
