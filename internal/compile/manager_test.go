// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/donor-match/internal/fixtures"
	"github.com/pdiddy/donor-match/pkg/types"
)

type countingSource struct {
	loads atomic.Int32
	err   error
}

func (s *countingSource) Load(_ context.Context, version string) (*types.Dataset, error) {
	s.loads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	ds := fixtures.Dataset()
	ds.Version = version
	return ds, nil
}

// blockingSource holds every load until release is closed, failing early
// if the loading context is cancelled.
type blockingSource struct {
	countingSource
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingSource) Load(ctx context.Context, version string) (*types.Dataset, error) {
	s.once.Do(func() { close(s.started) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.release:
	}
	return s.countingSource.Load(ctx, version)
}

type memoryPersister struct {
	mu      sync.Mutex
	dicts   map[string]*Dictionary
	saves   int
	loadErr error
	saveErr error
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{dicts: make(map[string]*Dictionary)}
}

func (p *memoryPersister) Load(_ context.Context, version string) (*Dictionary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	d, ok := p.dicts[version]
	if !ok {
		return nil, fmt.Errorf("version %s: %w", version, ErrNotFound)
	}
	return d, nil
}

func (p *memoryPersister) Save(_ context.Context, d *Dictionary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.dicts[d.Version()] = d
	return nil
}

func TestManagerCompilesOncePerVersion(t *testing.T) {
	src := &countingSource{}
	m := NewManager(src, nil, Options{Workers: 2})

	var wg sync.WaitGroup
	dicts := make([]*Dictionary, 8)
	for i := range dicts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := m.Dictionary(context.Background(), fixtures.Version)
			assert.NoError(t, err)
			dicts[i] = d
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.loads.Load())
	for _, d := range dicts {
		assert.Same(t, dicts[0], d)
	}
}

func TestManagerPrefersPersister(t *testing.T) {
	stored, _, err := Compile(context.Background(), fixtures.Dataset(), Options{})
	require.NoError(t, err)

	p := newMemoryPersister()
	p.dicts[fixtures.Version] = stored
	src := &countingSource{}

	d, err := NewManager(src, p, Options{}).Dictionary(context.Background(), fixtures.Version)
	require.NoError(t, err)
	assert.Same(t, stored, d)
	assert.Zero(t, src.loads.Load())
}

func TestManagerSavesCompiledDictionary(t *testing.T) {
	p := newMemoryPersister()
	m := NewManager(&countingSource{}, p, Options{})

	d, err := m.Dictionary(context.Background(), "3410")
	require.NoError(t, err)
	assert.Equal(t, "3410", d.Version())
	assert.Same(t, d, p.dicts["3410"])
}

func TestManagerToleratesSaveFailure(t *testing.T) {
	p := newMemoryPersister()
	p.saveErr = errors.New("disk full")

	d, err := NewManager(&countingSource{}, p, Options{}).Dictionary(context.Background(), fixtures.Version)
	require.NoError(t, err)
	assert.NotNil(t, d)
	assert.Equal(t, 1, p.saves)
}

func TestManagerErrors(t *testing.T) {
	t.Run("persister failure", func(t *testing.T) {
		p := newMemoryPersister()
		p.loadErr = errors.New("database locked")
		_, err := NewManager(&countingSource{}, p, Options{}).Dictionary(context.Background(), fixtures.Version)
		assert.ErrorContains(t, err, "database locked")
	})

	t.Run("source failure", func(t *testing.T) {
		src := &countingSource{err: errors.New("no such version")}
		_, err := NewManager(src, nil, Options{}).Dictionary(context.Background(), "9999")
		assert.ErrorContains(t, err, "no such version")
	})

	t.Run("no source", func(t *testing.T) {
		_, err := NewManager(nil, nil, Options{}).Dictionary(context.Background(), fixtures.Version)
		assert.Error(t, err)
	})
}

func TestManagerActivate(t *testing.T) {
	m := NewManager(&countingSource{}, nil, Options{})
	assert.Nil(t, m.Active())

	first, err := m.Activate(context.Background(), "3400")
	require.NoError(t, err)
	assert.Same(t, first, m.Active())

	second, err := m.Activate(context.Background(), "3410")
	require.NoError(t, err)
	assert.Same(t, second, m.Active())

	// A reader that fetched the earlier version still sees it unchanged.
	assert.Equal(t, "3400", first.Version())
	_, ok := first.Lookup(types.LocusA, "01:01", types.MethodMolecular)
	assert.True(t, ok)
}

func TestManagerSharesResolverCache(t *testing.T) {
	m := NewManager(&countingSource{}, nil, Options{})
	_, err := m.Dictionary(context.Background(), "3400")
	require.NoError(t, err)
	_, err = m.Dictionary(context.Background(), "3410")
	require.NoError(t, err)

	assert.Equal(t, 2, m.opts.Resolver.Cache().Len())
}

func TestManagerBuildSurvivesCallerCancel(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	m := NewManager(src, nil, Options{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := m.Dictionary(ctx, fixtures.Version)
		firstErr <- err
	}()
	<-src.started

	type result struct {
		dict *Dictionary
		err  error
	}
	second := make(chan result, 1)
	go func() {
		d, err := m.Dictionary(context.Background(), fixtures.Version)
		second <- result{d, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, fixtures.Version, res.dict.Version())
	assert.Equal(t, int32(1), src.loads.Load())
}
