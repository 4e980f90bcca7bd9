package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	_ "modernc.org/sqlite"
)

// CacheStore is one tier of the image cache. Implementations must be safe
// for concurrent use. Set is fail-soft: a tier that cannot persist logs
// and moves on, it never blocks image delivery.
type CacheStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Has(key string) bool
}

// prefixPurger is implemented by tiers that can drop a whole key prefix,
// used for legacy cache migration.
type prefixPurger interface {
	PurgePrefix(prefix string)
}

// ---- In-memory tier ----

// MemoryStore is the fast first tier, a plain map under a RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-memory tier.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok
}

// Len reports the number of cached entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// PurgePrefix drops every entry whose key starts with prefix.
func (m *MemoryStore) PurgePrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
}

// Clear drops every entry.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]string)
}

// ---- SQLite tier ----

// SQLiteStore is the durable local tier, backed by a single-table
// database on disk.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the cache database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("⚠️ Cache read failed for %s: %v", key, err)
		}
		return "", false
	}
	return value, true
}

func (s *SQLiteStore) Set(key, value string) {
	_, err := s.db.Exec(
		`INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		log.Printf("⚠️ Cache write failed for %s: %v", key, err)
	}
}

func (s *SQLiteStore) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// PurgePrefix deletes every row whose key starts with prefix.
func (s *SQLiteStore) PurgePrefix(prefix string) {
	if _, err := s.db.Exec(`DELETE FROM cache_entries WHERE key LIKE ? || '%'`, prefix); err != nil {
		log.Printf("⚠️ Cache purge failed for prefix %s: %v", prefix, err)
	}
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---- S3 tier ----

// InitializeS3Client initializes the S3 client for the shared cache tier
func InitializeS3Client() *s3.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return s3.NewFromConfig(cfg)
}

// S3Store is the shared durable tier for deployments where cached images
// should survive instance replacement.
type S3Store struct {
	Client *s3.Client
	Bucket string
	Prefix string
}

// NewS3Store creates an S3-backed tier writing under the given key prefix.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{Client: client, Bucket: bucket, Prefix: prefix}
}

func (s *S3Store) objectKey(key string) string {
	return s.Prefix + key
}

func (s *S3Store) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if !errors.As(err, &noSuchKey) {
			log.Printf("⚠️ S3 cache read failed for %s: %v", key, err)
		}
		return "", false
	}
	defer out.Body.Close()

	var builder strings.Builder
	if _, err := io.Copy(&builder, out.Body); err != nil {
		log.Printf("⚠️ S3 cache body read failed for %s: %v", key, err)
		return "", false
	}
	return builder.String(), true
}

func (s *S3Store) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        strings.NewReader(value),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		log.Printf("⚠️ S3 cache write failed for %s: %v", key, err)
	}
}

func (s *S3Store) Has(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	return err == nil
}
