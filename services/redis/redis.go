package redis

import (
	redis_utils "Recit/services/redis/utils"
	"fmt"
)

// DeleteActivity removes the whole activity set of the given users
func (rc *RedisClient) DeleteActivity(userIDs ...uint) error {
	for _, userID := range userIDs {
		key := redis_utils.FormatActivityKey(userID)
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
