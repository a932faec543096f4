package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk/internal/models"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, Key("leads/stage/qualified"), LeadsKey(models.StageQualified))
	assert.Equal(t, Key("leads/stage/all"), LeadsKey(StageAll))
	assert.Equal(t, LeadsKey(StageAll), LeadsKey(""))
	assert.Equal(t, Key("contacts/company/42"), ContactsKey(42))
	assert.Equal(t, Key("interventions/lead/7"), InterventionsKey(7))
	assert.Equal(t, Key("activity-log/page/3"), ActivityLogKey(3))

	assert.True(t, LeadsKey(models.StageWon).IsLeadList())
	assert.False(t, ContactsKey(1).IsLeadList())
}

func TestFetchCachesUntilInvalidated(t *testing.T) {
	s := NewStore()
	key := LeadsKey(models.StageUniverse)
	calls := 0

	fetch := func(ctx context.Context) ([]models.Lead, error) {
		calls++
		return []models.Lead{{ID: int64(calls)}}, nil
	}

	first, err := Fetch(context.Background(), s, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Fresh entry: served locally.
	second, err := Fetch(context.Background(), s, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	// Invalidation forces a refetch.
	s.Invalidate(key)
	third, err := Fetch(context.Background(), s, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(2), third[0].ID)
}

func TestReadAfterWrite(t *testing.T) {
	s := NewStore()
	key := LeadsKey(models.StagePitching)

	written := []models.Lead{{ID: 9, Stage: models.StagePitching}}
	s.Set(key, written)

	got, err := Fetch(context.Background(), s, key, func(ctx context.Context) ([]models.Lead, error) {
		t.Fatal("fetch must not run for a fresh local write")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, written, got)
}

func TestFetchError(t *testing.T) {
	s := NewStore()
	boom := errors.New("boom")

	_, err := Fetch(context.Background(), s, UsersKey(), func(ctx context.Context) ([]models.User, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing cached on failure.
	_, ok := s.Get(UsersKey())
	assert.False(t, ok)
}

func TestFetchDeduplicatesConcurrentCalls(t *testing.T) {
	s := NewStore()
	key := MetricsKey()
	var calls atomic.Int32
	release := make(chan struct{})

	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(context.Background(), s, key, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestInvalidateMatching(t *testing.T) {
	s := NewStore()
	s.Set(ActivityLogKey(1), "a")
	s.Set(ActivityLogKey(2), "b")
	s.Set(UsersKey(), "c")

	s.InvalidateMatching(func(k Key) bool {
		return k.IsLeadList() == false && k != UsersKey()
	})

	_, ok := s.Get(ActivityLogKey(1))
	assert.False(t, ok)
	_, ok = s.Get(ActivityLogKey(2))
	assert.False(t, ok)
	_, ok = s.Get(UsersKey())
	assert.True(t, ok)
}

func TestSubscribe(t *testing.T) {
	s := NewStore()
	var mu sync.Mutex
	var seen []Key

	unsub := s.Subscribe(func(k Key) {
		mu.Lock()
		seen = append(seen, k)
		mu.Unlock()
	})

	s.Set(UsersKey(), "x")
	s.Invalidate(UsersKey())

	mu.Lock()
	assert.Equal(t, []Key{UsersKey()}, seen)
	mu.Unlock()

	unsub()
	s.Invalidate(UsersKey())

	mu.Lock()
	assert.Len(t, seen, 1)
	mu.Unlock()
}

func TestPrime(t *testing.T) {
	s := NewStore()
	key := LeadsKey(models.StageUniverse)

	s.Prime(key, []models.Lead{{ID: 1}})

	// Primed data is visible to Peek but never served as fresh.
	_, ok := s.Get(key)
	assert.False(t, ok)
	v, ok := s.Peek(key)
	require.True(t, ok)
	assert.Len(t, v.([]models.Lead), 1)

	// Prime never clobbers an existing entry.
	s.Set(key, []models.Lead{{ID: 2}})
	s.Prime(key, []models.Lead{{ID: 3}})
	v, _ = s.Peek(key)
	assert.Equal(t, int64(2), v.([]models.Lead)[0].ID)
}
