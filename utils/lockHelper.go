package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/warungdata/hpp_backend/config"
)

// ImportLock serializes bulk ingestion jobs (xlsx import) so two concurrent
// uploads cannot interleave their create/update sequences.
// Returns a release func on success.
func ImportLock(ctx context.Context, scope string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// Avoid nil-pointer panics when the Redis lock isn't initialized yet.
		config.LogError(logger, moduleName, functionName, "Redis lock not initialized", scope, errors.New("redis lock is nil"))
		return nil, errors.New("service not ready (redis lock not initialized)")
	}
	lockKey := fmt.Sprintf("import:%s", scope)
	lock, err := locker.Obtain(ctx, lockKey, 60*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain import lock", scope, err)
		return nil, errors.New("another import is already running")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining import lock", scope, err)
		return nil, err
	}

	return func() { _ = lock.Release(ctx) }, nil
}
