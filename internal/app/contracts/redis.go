package contracts

import (
	"context"
	"time"
)

type CompareAndDeleteResult int

const (
	CompareAndDeleteMissing CompareAndDeleteResult = iota
	CompareAndDeleteMismatch
	CompareAndDeleteDeleted
)

type RedisRepository interface {
	Delete(ctx context.Context, key string) error
	Set(ctx context.Context, key string, value interface{}, exp time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key string, expected interface{}) (CompareAndDeleteResult, error)
}
