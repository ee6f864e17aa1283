package locker

import (
	"context"
	"errors"
	"intake-service/internal/app/contracts"
	"intake-service/internal/pkg/constvars"
	"intake-service/internal/pkg/exceptions"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errLockNotOwned = errors.New("lock is held by another owner")

// lockService hands out redis locks whose value is a per-acquisition token, so
// a holder whose lock expired can never release the next holder's lock.
type lockService struct {
	redisRepo contracts.RedisRepository
	Log       *zap.Logger
}

func NewLockService(repo contracts.RedisRepository, logger *zap.Logger) contracts.LockerService {
	return &lockService{
		redisRepo: repo,
		Log:       logger,
	}
}

func (s *lockService) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	logger := s.Log.With(
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRedisKey, key),
	)
	logger.Debug("lockService.TryLock called", zap.Duration(constvars.LoggingLockExpirationTimeKey, expiration))

	token := uuid.NewString()
	acquired, err := s.redisRepo.TrySetNX(ctx, key, token, expiration)
	if err != nil {
		logger.Error("lockService.TryLock error calling redisRepo.TrySetNX", zap.Error(err))
		return false, "", err
	}
	if !acquired {
		logger.Info("lockService.TryLock held elsewhere")
		return false, "", nil
	}

	logger.Debug("lockService.TryLock succeeded", zap.String(constvars.LoggingLockValueKey, token))
	return true, token, nil
}

// Unlock releases key only while it still carries token. A lock that already
// expired is not an error.
func (s *lockService) Unlock(ctx context.Context, key, token string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	logger := s.Log.With(
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRedisKey, key),
		zap.String(constvars.LoggingLockValueKey, token),
	)

	result, err := s.redisRepo.CompareAndDelete(ctx, key, token)
	if err != nil {
		logger.Error("lockService.Unlock error calling redisRepo.CompareAndDelete", zap.Error(err))
		return err
	}

	switch result {
	case contracts.CompareAndDeleteMissing:
		logger.Warn("lockService.Unlock lock already expired")
		return nil
	case contracts.CompareAndDeleteMismatch:
		logger.Error("lockService.Unlock lock taken over after expiry")
		return exceptions.ErrRedisUnlock(errLockNotOwned)
	}

	logger.Debug("lockService.Unlock succeeded")
	return nil
}
