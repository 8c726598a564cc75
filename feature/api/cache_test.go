package api

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cosmos-isolation/feature/admin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCache_TTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := newStatusCache(time.Minute)
	cache.now = func() time.Time { return now }

	var builds int
	build := func(context.Context) (*admin.StatusReport, error) {
		builds++
		return &admin.StatusReport{Database: "orders", TotalItems: builds}, nil
	}

	first, err := cache.Get(context.Background(), build)
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), build)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)

	now = now.Add(2 * time.Minute)
	third, err := cache.Get(context.Background(), build)
	require.NoError(t, err)
	assert.Equal(t, 2, third.TotalItems)

	cache.Invalidate()
	_, err = cache.Get(context.Background(), build)
	require.NoError(t, err)
	assert.Equal(t, 3, builds)
}

func TestStatusCache_Disabled(t *testing.T) {
	cache := newStatusCache(0)
	var builds int
	build := func(context.Context) (*admin.StatusReport, error) {
		builds++
		return &admin.StatusReport{}, nil
	}

	for i := 0; i < 3; i++ {
		_, err := cache.Get(context.Background(), build)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, builds)
}

func TestStatusCache_ErrorNotCached(t *testing.T) {
	cache := newStatusCache(time.Minute)
	fail := true
	build := func(context.Context) (*admin.StatusReport, error) {
		if fail {
			return nil, errors.New("unavailable")
		}
		return &admin.StatusReport{Database: "orders"}, nil
	}

	_, err := cache.Get(context.Background(), build)
	require.Error(t, err)

	fail = false
	report, err := cache.Get(context.Background(), build)
	require.NoError(t, err)
	assert.Equal(t, "orders", report.Database)
}

func TestStatusCache_SharedBuild(t *testing.T) {
	cache := newStatusCache(time.Minute)
	var builds int32
	release := make(chan struct{})
	build := func(context.Context) (*admin.StatusReport, error) {
		atomic.AddInt32(&builds, 1)
		<-release
		return &admin.StatusReport{}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cache.Get(context.Background(), build)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}
