package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nutrimind_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageGenerator struct {
	calls int32
	fail  bool
	block chan struct{} // when non-nil, generation waits on it
}

func (f *fakeImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		<-f.block
	}
	if f.fail {
		return "", "", ErrGenerationUnavailable
	}
	return "aW1hZ2U=", "image/png", nil
}

func (f *fakeImageGenerator) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

func TestNormalizeMealKey(t *testing.T) {
	assert.Equal(t, "poulet_rôti", NormalizeMealKey("  Poulet   Rôti "))
	assert.Equal(t, NormalizeMealKey("poulet rôti"), NormalizeMealKey("Poulet  Rôti"))
	assert.Equal(t, "", NormalizeMealKey("   "))
}

func TestGetMealImageMemoizesResult(t *testing.T) {
	gen := &fakeImageGenerator{}
	svc := newImageService(gen, nil, 0)

	first, err := svc.GetMealImage(context.Background(), "Poulet Rôti", models.LanguageFrench)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "data:image/png;base64,"))

	second, err := svc.GetMealImage(context.Background(), "poulet  rôti", models.LanguageFrench)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.callCount())

	stats := svc.Stats()
	assert.Equal(t, 1, stats.MemoryEntries)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
}

func TestConcurrentRequestsCoalesceIntoOneCall(t *testing.T) {
	gen := &fakeImageGenerator{block: make(chan struct{})}
	svc := newImageService(gen, nil, 0)

	const waiters = 8
	results := make([]string, waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, err := svc.GetMealImage(context.Background(), "Salade César", models.LanguageFrench)
			assert.NoError(t, err)
			results[i] = value
		}(i)
	}

	// let the requests pile up behind the single in-flight generation
	time.Sleep(50 * time.Millisecond)
	close(gen.block)
	wg.Wait()

	assert.Equal(t, 1, gen.callCount())
	for _, value := range results {
		assert.Equal(t, results[0], value)
	}
}

func TestFailureCachesPlaceholderWithoutRetry(t *testing.T) {
	gen := &fakeImageGenerator{fail: true}
	svc := newImageService(gen, nil, 0)

	value, err := svc.GetMealImage(context.Background(), "Plat Maudit", models.LanguageFrench)
	require.NoError(t, err)
	assert.Equal(t, placeholderImage, value)

	// second request hits the cached placeholder, no second backend call
	value, err = svc.GetMealImage(context.Background(), "Plat Maudit", models.LanguageFrench)
	require.NoError(t, err)
	assert.Equal(t, placeholderImage, value)
	assert.Equal(t, 1, gen.callCount())
}

func TestContextExpiryServesPlaceholderButFinishesGeneration(t *testing.T) {
	gen := &fakeImageGenerator{block: make(chan struct{})}
	svc := newImageService(gen, nil, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	value, err := svc.GetMealImage(ctx, "Gratin Dauphinois", models.LanguageFrench)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, placeholderImage, value)

	// the in-flight generation still completes and fills the cache
	close(gen.block)
	require.Eventually(t, func() bool {
		_, ok := svc.memory.Get(NormalizeMealKey("Gratin Dauphinois"))
		return ok
	}, time.Second, 10*time.Millisecond)

	cached, err := svc.GetMealImage(context.Background(), "Gratin Dauphinois", models.LanguageFrench)
	require.NoError(t, err)
	assert.NotEqual(t, placeholderImage, cached)
	assert.Equal(t, 1, gen.callCount())
}

func TestQueueFullReleasesEveryRequester(t *testing.T) {
	gen := &fakeImageGenerator{}
	// one-slot queue, pre-filled, and no worker draining it: every
	// enqueue attempt must fail without stranding a waiter
	svc := &ImageService{
		generator: gen,
		memory:    NewMemoryStore(),
		pending:   make(map[string][]chan string),
		queue:     make(chan imageRequest, 1),
	}
	svc.queue <- imageRequest{key: "occupant"}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	const requesters = 6
	var wg sync.WaitGroup
	for i := 0; i < requesters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := svc.GetMealImage(ctx, "Blanquette de Veau", models.LanguageFrench)
			assert.NoError(t, err)
			assert.Equal(t, placeholderImage, value)
		}()
	}
	wg.Wait()

	svc.mu.Lock()
	assert.Empty(t, svc.pending)
	svc.mu.Unlock()
	assert.Zero(t, gen.callCount())
}

func TestPersistTierPromotesToMemory(t *testing.T) {
	persist := NewMemoryStore()
	persist.Set("lasagne", "data:image/png;base64,cached")

	gen := &fakeImageGenerator{}
	svc := newImageService(gen, persist, 0)

	value, err := svc.GetMealImage(context.Background(), "Lasagne", models.LanguageFrench)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,cached", value)
	assert.Zero(t, gen.callCount())
	assert.True(t, svc.memory.Has("lasagne"))
}

func TestLegacyCacheMigrationRunsOnce(t *testing.T) {
	persist := NewMemoryStore()
	persist.Set(legacyCachePrefix+"old_meal", "stale")
	persist.Set("fresh_meal", "kept")

	newImageService(&fakeImageGenerator{}, persist, 0)

	assert.False(t, persist.Has(legacyCachePrefix+"old_meal"))
	assert.True(t, persist.Has("fresh_meal"))
	assert.True(t, persist.Has(cacheCleanedSentinel))

	// a second startup with the sentinel present must not purge again
	persist.Set(legacyCachePrefix+"written_later", "v")
	newImageService(&fakeImageGenerator{}, persist, 0)
	assert.True(t, persist.Has(legacyCachePrefix+"written_later"))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Set("key", "value-1")
	store.Set("key", "value-2") // upsert
	value, ok := store.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value-2", value)

	store.Set(legacyCachePrefix+"a", "x")
	store.Set(legacyCachePrefix+"b", "y")
	store.PurgePrefix(legacyCachePrefix)
	assert.False(t, store.Has(legacyCachePrefix+"a"))
	assert.True(t, store.Has("key"))
}

func TestImagePromptMentionsMeal(t *testing.T) {
	for _, lang := range []string{models.LanguageFrench, models.LanguageEnglish} {
		prompt := ImagePrompt("Tarte Tatin", lang)
		assert.Contains(t, prompt, "Tarte Tatin", fmt.Sprintf("lang %s", lang))
	}
}
