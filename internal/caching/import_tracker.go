package caching

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"dealerdir/internal/models"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	importLockKey   = "dealerdir:import:lock"
	importResultKey = "dealerdir:import:last"
)

// ErrImportInProgress is returned by Acquire while another run holds the lock
var ErrImportInProgress = errors.New("an import is already running")

// ImportTracker guards against overlapping imports and remembers the last run
type ImportTracker interface {
	Acquire(ctx context.Context, runID uuid.UUID, ttl time.Duration) error
	Release(ctx context.Context, runID uuid.UUID) error
	SaveResult(ctx context.Context, result *models.ImportResult) error
	// LastResult returns nil without error when no import has been recorded.
	LastResult(ctx context.Context) (*models.ImportResult, error)
}

type redisImportTracker struct {
	client *redis.Client
}

// releaseScript deletes the lock only if it still belongs to the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient builds a client from a bare host:port or a redis:// address
func NewRedisClient(addr, password string, db int, logger *zap.Logger) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping failed on initialization", zap.String("addr", parsedAddr), zap.Error(err))
	} else {
		logger.Debug("redis connection established", zap.String("addr", parsedAddr))
	}
	return client
}

func NewRedisImportTracker(client *redis.Client) ImportTracker {
	return &redisImportTracker{client: client}
}

func (r *redisImportTracker) Acquire(ctx context.Context, runID uuid.UUID, ttl time.Duration) error {
	ok, err := r.client.SetNX(ctx, importLockKey, runID.String(), ttl).Result()
	if err != nil {
		return errors.Wrap(err, "acquire import lock")
	}
	if !ok {
		return ErrImportInProgress
	}
	return nil
}

func (r *redisImportTracker) Release(ctx context.Context, runID uuid.UUID) error {
	if err := releaseScript.Run(ctx, r.client, []string{importLockKey}, runID.String()).Err(); err != nil {
		return errors.Wrap(err, "release import lock")
	}
	return nil
}

func (r *redisImportTracker) SaveResult(ctx context.Context, result *models.ImportResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "encode import result")
	}
	return errors.Wrap(r.client.Set(ctx, importResultKey, data, 0).Err(), "save import result")
}

func (r *redisImportTracker) LastResult(ctx context.Context) (*models.ImportResult, error) {
	data, err := r.client.Get(ctx, importResultKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load import result")
	}

	var result models.ImportResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(err, "decode import result")
	}
	return &result, nil
}

type memoryImportTracker struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewMemoryImportTracker keeps the lock and last result in process. It is
// used when no Redis address is configured and only guards a single replica.
func NewMemoryImportTracker() ImportTracker {
	return &memoryImportTracker{cache: cache.New(cache.NoExpiration, time.Minute)}
}

func (m *memoryImportTracker) Acquire(_ context.Context, runID uuid.UUID, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cache.Add(importLockKey, runID, ttl); err != nil {
		return ErrImportInProgress
	}
	return nil
}

func (m *memoryImportTracker) Release(_ context.Context, runID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if holder, ok := m.cache.Get(importLockKey); ok && holder.(uuid.UUID) == runID {
		m.cache.Delete(importLockKey)
	}
	return nil
}

func (m *memoryImportTracker) SaveResult(_ context.Context, result *models.ImportResult) error {
	stored := *result
	m.cache.Set(importResultKey, stored, cache.NoExpiration)
	return nil
}

func (m *memoryImportTracker) LastResult(_ context.Context) (*models.ImportResult, error) {
	v, ok := m.cache.Get(importResultKey)
	if !ok {
		return nil, nil
	}
	result := v.(models.ImportResult)
	return &result, nil
}
