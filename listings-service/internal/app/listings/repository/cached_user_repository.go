package repository

import (
	"context"
	"encoding/json"
	"time"

	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const userProfileKeyPrefix = "user:profile:"

// CachedUserRepository - TTL кеш профилей в Redis перед справочником пользователей
// Ошибки Redis не пробрасываются: при сбое кеша запрос идет напрямую в справочник
type CachedUserRepository struct {
	next   UserRepository
	client *redis.Client
	ttl    time.Duration
}

// NewCachedUserRepository оборачивает справочник кешем
func NewCachedUserRepository(next UserRepository, client *redis.Client, ttl time.Duration) *CachedUserRepository {
	return &CachedUserRepository{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

func userProfileKey(id string) string {
	return userProfileKeyPrefix + id
}

// GetByIDs отдает профили из кеша, недостающие догружает из справочника
func (r *CachedUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]entity.UserProfile, error) {
	ids = uniqueIDs(ids)
	profiles := make(map[string]entity.UserProfile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	missing := r.readCached(ctx, ids, profiles)
	if len(missing) == 0 {
		return profiles, nil
	}

	loaded, err := r.next.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	for id, p := range loaded {
		profiles[id] = p
	}
	r.store(ctx, loaded)

	return profiles, nil
}

// readCached заполняет profiles из кеша и возвращает ID, которых там нет
func (r *CachedUserRepository) readCached(ctx context.Context, ids []string, profiles map[string]entity.UserProfile) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userProfileKey(id)
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpMGet)
	values, err := r.client.MGet(ctx, keys...).Result()
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpMGet)
		logger.Warn().Err(err).Msg("Failed to read user profiles from cache")
		return ids
	}

	var missing []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			metrics.RecordCacheMiss(serviceName, userProfileKeyPrefix)
			missing = append(missing, ids[i])
			continue
		}

		var profile entity.UserProfile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			metrics.RecordCacheMiss(serviceName, userProfileKeyPrefix)
			missing = append(missing, ids[i])
			continue
		}

		metrics.RecordCacheHit(serviceName, userProfileKeyPrefix)
		profiles[ids[i]] = profile
	}

	return missing
}

func (r *CachedUserRepository) store(ctx context.Context, profiles map[string]entity.UserProfile) {
	if len(profiles) == 0 {
		return
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	pipe := r.client.Pipeline()
	for id, p := range profiles {
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.Set(ctx, userProfileKey(id), data, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		logger.Warn().Err(err).Msg("Failed to cache user profiles")
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
