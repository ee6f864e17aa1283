package redis

import (
	"context"
	"intake-service/internal/app/contracts"
	"intake-service/internal/pkg/exceptions"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// compareAndDelete returns -1 when the key is gone, 0 when it holds another
// value and 1 when it was deleted.
var compareAndDelete = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if not current then
	return -1
end
if current == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) contracts.RedisRepository {
	return &redisRepository{client: client}
}

func (r *redisRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		return exceptions.ErrRedisDelete(err)
	}
	return nil
}

func (r *redisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	err = r.client.Set(ctx, key, jsonValue, exp).Err()
	if err != nil {
		return exceptions.ErrRedisSet(err)
	}
	return nil
}

// Get returns an empty string without error when the key does not exist.
func (r *redisRepository) Get(ctx context.Context, key string) (string, error) {
	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	} else if err != nil {
		return "", exceptions.ErrRedisGetNoData(err, key)
	}

	return data, nil
}

func (r *redisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return false, exceptions.ErrCannotMarshalJSON(err)
	}

	acquired, err := r.client.SetNX(ctx, key, jsonValue, exp).Result()
	if err != nil {
		return false, exceptions.ErrRedisSet(err)
	}
	return acquired, nil
}

// CompareAndDelete deletes key only while it still holds expected, encoded the
// same way Set and TrySetNX encode values.
func (r *redisRepository) CompareAndDelete(ctx context.Context, key string, expected interface{}) (contracts.CompareAndDeleteResult, error) {
	jsonValue, err := json.Marshal(expected)
	if err != nil {
		return contracts.CompareAndDeleteMissing, exceptions.ErrCannotMarshalJSON(err)
	}

	result, err := compareAndDelete.Run(ctx, r.client, []string{key}, string(jsonValue)).Int64()
	if err != nil {
		return contracts.CompareAndDeleteMissing, exceptions.ErrRedisDelete(err)
	}

	switch result {
	case 1:
		return contracts.CompareAndDeleteDeleted, nil
	case 0:
		return contracts.CompareAndDeleteMismatch, nil
	default:
		return contracts.CompareAndDeleteMissing, nil
	}
}
