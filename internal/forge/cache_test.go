package forge

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

type countingProvider struct {
	calls atomic.Int32
	gate  chan struct{}
	err   error
}

func (p *countingProvider) Kind() Kind { return KindGitHub }

func (p *countingProvider) FetchRepositoryInfo(_ context.Context, ref reference.Reference) (*RepositoryInfo, error) {
	p.calls.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	if p.err != nil {
		return nil, p.err
	}
	return &RepositoryInfo{FullName: ref.FullName(), Source: KindGitHub}, nil
}

func TestCachingProviderReusesLookups(t *testing.T) {
	next := &countingProvider{}
	c := NewCachingProvider(next, time.Minute)
	ref := mustRef(t, "https://github.com/org/repo")

	for range 3 {
		info, err := c.FetchRepositoryInfo(t.Context(), ref)
		require.NoError(t, err)
		assert.Equal(t, "org/repo", info.FullName)
	}
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, KindGitHub, c.Kind())

	_, err := c.FetchRepositoryInfo(t.Context(), mustRef(t, "https://github.com/org/other"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachingProviderExpires(t *testing.T) {
	next := &countingProvider{}
	c := NewCachingProvider(next, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ref := mustRef(t, "https://github.com/org/repo")

	_, err := c.FetchRepositoryInfo(t.Context(), ref)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = c.FetchRepositoryInfo(t.Context(), ref)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachingProviderDoesNotCacheFailures(t *testing.T) {
	next := &countingProvider{err: errors.NetworkError("forge unreachable").Build()}
	c := NewCachingProvider(next, time.Minute)
	ref := mustRef(t, "https://github.com/org/repo")

	for range 2 {
		_, err := c.FetchRepositoryInfo(t.Context(), ref)
		require.Error(t, err)
		assert.Equal(t, errors.CategoryNetwork, errors.GetCategory(err))
	}
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachingProviderCollapsesConcurrentLookups(t *testing.T) {
	next := &countingProvider{gate: make(chan struct{})}
	c := NewCachingProvider(next, time.Minute)
	ref := mustRef(t, "https://github.com/org/repo")

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := c.FetchRepositoryInfo(context.Background(), ref)
			assert.NoError(t, err)
			assert.NotNil(t, info)
		}()
	}
	require.Eventually(t, func() bool { return next.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(next.gate)
	wg.Wait()
	assert.Equal(t, int32(1), next.calls.Load())
}
