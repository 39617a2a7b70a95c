package storecache

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/model"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) StoreDirectory(ctx context.Context, chain string) ([]model.Store, error) {
	args := m.Called(ctx, chain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Store), args.Error(1)
}

// gatedSource blocks every fetch until release is closed.
type gatedSource struct {
	calls   atomic.Int32
	release chan struct{}
	stores  []model.Store
}

func (g *gatedSource) StoreDirectory(context.Context, string) ([]model.Store, error) {
	g.calls.Add(1)
	<-g.release
	return g.stores, nil
}

func store(name string, lat, lon float64) model.Store {
	return model.Store{Chain: "narvesen", Name: name, Lat: &lat, Lon: &lon}
}

var osloS = geo.Coordinate{Lat: 59.9111, Lon: 10.7528}

func TestGet_ConcurrentCallersShareOneFetch(t *testing.T) {
	src := &gatedSource{
		release: make(chan struct{}),
		stores:  []model.Store{store("Oslo S", 59.9111, 10.7528)},
	}
	cache := New(src)

	const callers = 20
	var wg sync.WaitGroup
	results := make([][]model.Store, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Get(context.Background(), "narvesen")
		}(i)
	}

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], 1)
	}

	// Served from memory afterwards.
	_, err := cache.Get(context.Background(), "narvesen")
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.True(t, cache.Cached("narvesen"))
}

func TestGet_FailureIsNotMemoized(t *testing.T) {
	src := new(mockSource)
	boom := errors.New("upstream returned 502")
	src.On("StoreDirectory", mock.Anything, "narvesen").Return(nil, boom).Once()
	src.On("StoreDirectory", mock.Anything, "narvesen").Return([]model.Store{store("Oslo S", 59.9111, 10.7528)}, nil).Once()

	cache := New(src)

	_, err := cache.Get(context.Background(), "narvesen")
	require.ErrorIs(t, err, boom)
	assert.False(t, cache.Cached("narvesen"))

	stores, err := cache.Get(context.Background(), "narvesen")
	require.NoError(t, err)
	assert.Len(t, stores, 1)

	src.AssertNumberOfCalls(t, "StoreDirectory", 2)
}

func TestGet_ChainsAreIndependent(t *testing.T) {
	src := new(mockSource)
	src.On("StoreDirectory", mock.Anything, "narvesen").Return([]model.Store{store("A", 60, 10)}, nil).Once()
	src.On("StoreDirectory", mock.Anything, "7eleven").Return(nil, errors.New("down")).Once()

	cache := New(src)
	_, err := cache.Get(context.Background(), "narvesen")
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "7eleven")
	require.Error(t, err)

	assert.True(t, cache.Cached("narvesen"))
	assert.False(t, cache.Cached("7eleven"))
	src.AssertExpectations(t)
}

func TestGet_CallerContextDoesNotCancelSharedFetch(t *testing.T) {
	src := &gatedSource{
		release: make(chan struct{}),
		stores:  []model.Store{store("Oslo S", 59.9111, 10.7528)},
	}
	cache := New(src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, "narvesen")
		done <- err
	}()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(src.release)
	require.Eventually(t, func() bool { return cache.Cached("narvesen") }, time.Second, time.Millisecond)
}

func TestNearby(t *testing.T) {
	src := new(mockSource)
	src.On("StoreDirectory", mock.Anything, "narvesen").Return([]model.Store{
		store("Bergen", 60.3920, 5.3242),
		store("Nationaltheatret", 59.9146, 10.7335),
		{Chain: "narvesen", Name: "No coords"},
		store("Oslo S", 59.9111, 10.7528),
	}, nil)

	cache := New(src)

	near, err := cache.Nearby(context.Background(), "narvesen", osloS, 5)
	require.NoError(t, err)
	require.Len(t, near, 2)
	assert.Equal(t, "Oslo S", near[0].Item.Name)
	assert.InDelta(t, 0, near[0].DistanceKm, 1e-9)
	assert.Equal(t, "Nationaltheatret", near[1].Item.Name)
	assert.LessOrEqual(t, near[1].DistanceKm, 5.0)

	all, err := cache.Nearby(context.Background(), "narvesen", osloS, math.Inf(1))
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].DistanceKm, all[i].DistanceKm)
	}

	zero, err := cache.Nearby(context.Background(), "narvesen", osloS, 0)
	require.NoError(t, err)
	require.Len(t, zero, 1)
	assert.Equal(t, "Oslo S", zero[0].Item.Name)

	src.AssertNumberOfCalls(t, "StoreDirectory", 1)
}

func TestNearby_PropagatesFailure(t *testing.T) {
	src := new(mockSource)
	src.On("StoreDirectory", mock.Anything, "narvesen").Return(nil, errors.New("down"))

	_, err := New(src).Nearby(context.Background(), "narvesen", osloS, 5)
	assert.Error(t, err)
}
