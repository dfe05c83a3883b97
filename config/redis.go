package config

import (
	"Recit/services/redis"
	"log"
	"os"
)

// Connect to Redis. Without REDIS_URL the activity badges are disabled and
// a nil client is returned
func Connect_redis() (*redis.RedisClient, error) {
	redisUri := os.Getenv("REDIS_URL")
	if redisUri == "" {
		log.Println("REDIS_URL not set, activity badges disabled")
		return nil, nil
	}
	redisClient, err := redis.InitRedis(redisUri, 0)
	if err != nil {
		log.Printf("Error connecting to Redis: %v", err)
		return nil, err
	}
	log.Println("Redis connection established")
	return redisClient, nil
}
