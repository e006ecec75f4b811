package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Per-campaign run leases. Overlapping scheduled runs for the same campaign
// are serialized by a Redis SET NX lease held for the duration of a run; the
// TTL is a backstop against a crashed holder.

const (
	campaignLockKeyPrefix = "outreach:campaign_run_lock:"
	campaignLockTTL       = 30 * time.Minute
)

// CampaignRunLocker acquires per-campaign mutual exclusion for pipeline runs
type CampaignRunLocker struct {
	redis *redis.Client
}

// NewCampaignRunLocker creates a run locker backed by the given Redis client
func NewCampaignRunLocker(rc *redis.Client) *CampaignRunLocker {
	return &CampaignRunLocker{redis: rc}
}

// Acquire attempts to take the run lease for a campaign. On success it
// returns a release func; when the lease is already held it returns
// ErrCampaignRunInProgress.
func (l *CampaignRunLocker) Acquire(ctx context.Context, campaignID uint) (func(), error) {
	key := fmt.Sprintf("%s%d", campaignLockKeyPrefix, campaignID)
	token := uuid.New().String()

	ok, err := l.redis.SetNX(ctx, key, token, campaignLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire campaign run lock: %w", err)
	}
	if !ok {
		return nil, ErrCampaignRunInProgress
	}

	release := func() {
		// Only delete our own lease; a stale delete after TTL expiry must not
		// remove a newer holder's lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		_ = l.redis.Eval(releaseCtx, script, []string{key}, token).Err()
	}

	return release, nil
}
