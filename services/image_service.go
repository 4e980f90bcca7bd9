package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"nutrimind_server/models"
)

// placeholderImage is served (and cached) when generation fails, so a
// broken meal name never hammers the backend twice.
const placeholderImage = "data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHdpZHRoPSI0MDAiIGhlaWdodD0iMzAwIiB2aWV3Qm94PSIwIDAgNDAwIDMwMCI+PHJlY3Qgd2lkdGg9IjQwMCIgaGVpZ2h0PSIzMDAiIGZpbGw9IiNmM2Y0ZjYiLz48dGV4dCB4PSI1MCUiIHk9IjUwJSIgZm9udC1mYW1pbHk9InNhbnMtc2VyaWYiIGZvbnQtc2l6ZT0iNDgiIHRleHQtYW5jaG9yPSJtaWRkbGUiIGR5PSIuM2VtIj7wn421PC90ZXh0Pjwvc3ZnPg=="

const (
	legacyCachePrefix    = "nutrimind_image_cache_"
	cacheCleanedSentinel = "nutrimind_cache_cleaned_v2"

	// imageQueueDelay spaces out backend calls; applied after every
	// completed generation, successful or not.
	imageQueueDelay = 1500 * time.Millisecond

	imageQueueCapacity = 256
)

// ImageGenerator is the image side of the generation backend.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (data, mimeType string, err error)
}

var mealKeyCleaner = regexp.MustCompile(`\s+`)

// NormalizeMealKey canonicalizes a meal name into a cache key so that
// "Poulet  Rôti " and "poulet rôti" share one entry.
func NormalizeMealKey(mealName string) string {
	key := strings.ToLower(strings.TrimSpace(mealName))
	return mealKeyCleaner.ReplaceAllString(key, "_")
}

type imageRequest struct {
	key      string
	mealName string
	language string
}

// ImageService resolves meal images through a tiered cache backed by a
// single throttled generation worker. Concurrent requests for the same
// meal coalesce into one backend call.
type ImageService struct {
	generator ImageGenerator
	memory    *MemoryStore
	persist   CacheStore
	delay     time.Duration

	mu      sync.Mutex
	pending map[string][]chan string
	queue   chan imageRequest

	misses int
	hits   int
}

// ImageCacheStats is a point-in-time view of cache effectiveness.
type ImageCacheStats struct {
	MemoryEntries int `json:"memoryEntries"`
	Hits          int `json:"hits"`
	Misses        int `json:"misses"`
	QueueLength   int `json:"queueLength"`
}

// NewImageService wires the tiers and starts the generation worker.
// persist may be nil when no durable tier is configured.
func NewImageService(generator ImageGenerator, persist CacheStore) *ImageService {
	return newImageService(generator, persist, imageQueueDelay)
}

func newImageService(generator ImageGenerator, persist CacheStore, delay time.Duration) *ImageService {
	s := &ImageService{
		generator: generator,
		memory:    NewMemoryStore(),
		persist:   persist,
		delay:     delay,
		pending:   make(map[string][]chan string),
		queue:     make(chan imageRequest, imageQueueCapacity),
	}
	s.migrateLegacyCache()
	go s.processQueue()
	return s
}

// GetMealImage returns a data URL for the meal, from cache when possible,
// otherwise queueing a generation and waiting for it. If ctx expires
// first the placeholder is returned with the context error while the
// generation continues in the background for future requests.
func (s *ImageService) GetMealImage(ctx context.Context, mealName, language string) (string, error) {
	key := NormalizeMealKey(mealName)
	if key == "" {
		return placeholderImage, fmt.Errorf("empty meal name")
	}

	if value, ok := s.memory.Get(key); ok {
		s.mu.Lock()
		s.hits++
		s.mu.Unlock()
		return value, nil
	}

	if s.persist != nil {
		if value, ok := s.persist.Get(key); ok {
			s.memory.Set(key, value)
			s.mu.Lock()
			s.hits++
			s.mu.Unlock()
			return value, nil
		}
	}

	wait := make(chan string, 1)

	// a waiter is only registered once work for the key is actually
	// queued (or already in flight); a full queue must never leave a
	// waiter behind with nothing to signal it
	s.mu.Lock()
	s.misses++
	waiters, inFlight := s.pending[key]
	if !inFlight {
		select {
		case s.queue <- imageRequest{key: key, mealName: mealName, language: language}:
		default:
			s.mu.Unlock()
			log.Printf("⚠️ Image queue full, serving placeholder for %q", mealName)
			return placeholderImage, nil
		}
	}
	s.pending[key] = append(waiters, wait)
	s.mu.Unlock()

	select {
	case value := <-wait:
		return value, nil
	case <-ctx.Done():
		s.removeWaiter(key, wait)
		return placeholderImage, ctx.Err()
	}
}

func (s *ImageService) removeWaiter(key string, wait chan string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	waiters := s.pending[key]
	for i, w := range waiters {
		if w == wait {
			s.pending[key] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(s.pending[key]) == 0 {
		delete(s.pending, key)
	}
}

// processQueue is the single worker draining generation requests. One
// request at a time, with a fixed pause after each completion.
func (s *ImageService) processQueue() {
	for req := range s.queue {
		// another request may have filled the cache while queued
		value, ok := s.memory.Get(req.key)
		if !ok {
			value = s.generate(req)
			s.memory.Set(req.key, value)
			if s.persist != nil {
				s.persist.Set(req.key, value)
			}
		}
		s.resolve(req.key, value)

		if s.delay > 0 {
			time.Sleep(s.delay)
		}
	}
}

func (s *ImageService) generate(req imageRequest) string {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	data, mimeType, err := s.generator.GenerateImage(ctx, ImagePrompt(req.mealName, req.language))
	if err != nil {
		log.Printf("❌ Image generation failed for %q: %v", req.mealName, err)
		return placeholderImage
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, data)
}

func (s *ImageService) resolve(key, value string) {
	s.mu.Lock()
	waiters := s.pending[key]
	delete(s.pending, key)
	s.mu.Unlock()

	for _, wait := range waiters {
		wait <- value
	}
}

// Stats reports cache effectiveness counters.
func (s *ImageService) Stats() ImageCacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ImageCacheStats{
		MemoryEntries: s.memory.Len(),
		Hits:          s.hits,
		Misses:        s.misses,
		QueueLength:   len(s.queue),
	}
}

// Clear drops the in-memory tier. The durable tier is left untouched.
func (s *ImageService) Clear() {
	s.memory.Clear()
}

// migrateLegacyCache purges entries written under the pre-v2 key scheme.
// Runs once per store, guarded by a sentinel key.
func (s *ImageService) migrateLegacyCache() {
	if s.persist == nil {
		return
	}
	if s.persist.Has(cacheCleanedSentinel) {
		return
	}
	if purger, ok := s.persist.(prefixPurger); ok {
		purger.PurgePrefix(legacyCachePrefix)
		log.Printf("🧹 Purged legacy image cache entries")
	}
	s.persist.Set(cacheCleanedSentinel, "1")
}

// Warm preloads images for every meal of a plan without blocking; misses
// are queued behind the normal throttle.
func (s *ImageService) Warm(plan models.WeeklyPlan, language string) {
	for _, day := range plan.Plan {
		for _, meal := range day.Meals {
			key := NormalizeMealKey(meal.Name)
			if key == "" || s.memory.Has(key) {
				continue
			}
			go func(name string) {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				s.GetMealImage(ctx, name, language)
			}(meal.Name)
		}
	}
}
