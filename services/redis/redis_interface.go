package redis

import (
	redis_models "Recit/models/redis"
	redis_utils "Recit/services/redis/utils"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActivityTTL bounds how long a user keeps badges nobody refreshed
const ActivityTTL = 30 * 24 * time.Hour

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance. Addr is either a
// redis:// URL or a host:port pair
func NewRedisClient(Addr string, DB int) (*RedisClient, error) {
	var client *redis.Client
	if strings.Contains(Addr, "://") {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			return nil, fmt.Errorf("error parsing Redis URL: %v", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}, nil
}

// RecordActivity bumps the conversation in the badges of every user
// Key format: "user:{id}:activity"
// TTL: 30 days, refreshed on every write
func (rc *RedisClient) RecordActivity(conversationID uint, userIDs []uint, at time.Time) error {
	if len(userIDs) == 0 {
		return nil
	}
	member := redis_utils.FormatConversationMember(conversationID)
	score := float64(at.UnixMilli())

	pipe := rc.client.TxPipeline()
	for _, userID := range userIDs {
		key := redis_utils.FormatActivityKey(userID)
		pipe.ZAdd(rc.ctx, key, redis.Z{Score: score, Member: member})
		pipe.Expire(rc.ctx, key, ActivityTTL)
	}
	if _, err := pipe.Exec(rc.ctx); err != nil {
		return fmt.Errorf("error recording activity of conversation %d: %v", conversationID, err)
	}
	return nil
}

// RecentConversations returns the user's conversations, freshest first
func (rc *RedisClient) RecentConversations(userID uint, limit int) ([]redis_models.ConversationActivity, error) {
	key := redis_utils.FormatActivityKey(userID)
	entries, err := rc.client.ZRevRangeWithScores(rc.ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting activity of user %d: %v", userID, err)
	}

	out := make([]redis_models.ConversationActivity, 0, len(entries))
	for _, entry := range entries {
		member, ok := entry.Member.(string)
		if !ok {
			continue
		}
		id, err := redis_utils.ParseConversationMember(member)
		if err != nil {
			log.Printf("[REDIS-ERROR] %v", err)
			continue
		}
		out = append(out, redis_models.ConversationActivity{
			ConversationID: id,
			LastActivity:   time.UnixMilli(int64(entry.Score)),
		})
	}
	return out, nil
}

// ClearActivity drops a conversation from the user's badges once seen
func (rc *RedisClient) ClearActivity(userID, conversationID uint) error {
	key := redis_utils.FormatActivityKey(userID)
	member := redis_utils.FormatConversationMember(conversationID)
	if err := rc.client.ZRem(rc.ctx, key, member).Err(); err != nil {
		return fmt.Errorf("error clearing activity of user %d: %v", userID, err)
	}
	return nil
}

// ForgetConversation drops a deleted conversation from the given users
func (rc *RedisClient) ForgetConversation(conversationID uint, userIDs []uint) error {
	member := redis_utils.FormatConversationMember(conversationID)
	pipe := rc.client.Pipeline()
	for _, userID := range userIDs {
		pipe.ZRem(rc.ctx, redis_utils.FormatActivityKey(userID), member)
	}
	if _, err := pipe.Exec(rc.ctx); err != nil {
		return fmt.Errorf("error forgetting conversation %d: %v", conversationID, err)
	}
	return nil
}
