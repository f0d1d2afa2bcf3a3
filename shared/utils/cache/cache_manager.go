package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"petrosmart-backend/shared/config"
)

// CacheManager wraps the shared Redis connection used for short-lived
// security state (token blacklist entries, revocation floors).
type CacheManager struct {
	client *redis.Client
	ctx    context.Context
}

var globalCacheManager *CacheManager

// NewCacheManager connects to Redis at the given address and verifies the
// connection before returning.
func NewCacheManager(addr, password string, db int) (*CacheManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &CacheManager{
		client: client,
		ctx:    ctx,
	}, nil
}

// InitCacheManager initializes the global cache manager from configuration
func InitCacheManager() error {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	addr := fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)
	cm, err := NewCacheManager(addr, cfg.RedisPassword, redisDB)
	if err != nil {
		return err
	}

	globalCacheManager = cm
	log.Printf("✅ Redis Cache Manager initialized successfully - %s DB:%d", addr, redisDB)

	return nil
}

// GetCacheManager returns the global cache manager instance
func GetCacheManager() *CacheManager {
	if globalCacheManager == nil {
		if err := InitCacheManager(); err != nil {
			log.Printf("❌ Failed to initialize cache manager: %v", err)
			return nil
		}
	}
	return globalCacheManager
}

// Set stores a string value with a TTL
func (cm *CacheManager) Set(key, value string, ttl time.Duration) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}
	return cm.client.Set(cm.ctx, key, value, ttl).Err()
}

// Get retrieves a string value; the second return is false on a miss
func (cm *CacheManager) Get(key string) (string, bool, error) {
	if cm == nil || cm.client == nil {
		return "", false, fmt.Errorf("cache manager not initialized")
	}

	result, err := cm.client.Get(cm.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return result, true, nil
}

// Del removes a key
func (cm *CacheManager) Del(key string) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}
	return cm.client.Del(cm.ctx, key).Err()
}

// TestConnection tests the Redis connection
func (cm *CacheManager) TestConnection() error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	testKey := "test:connection"
	testValue := "connection_test_ok"

	if err := cm.client.Set(cm.ctx, testKey, testValue, time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set test value: %v", err)
	}

	result, err := cm.client.Get(cm.ctx, testKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get test value: %v", err)
	}

	if result != testValue {
		return fmt.Errorf("test value mismatch: expected %s, got %s", testValue, result)
	}

	if err := cm.client.Del(cm.ctx, testKey).Err(); err != nil {
		return fmt.Errorf("failed to delete test value: %v", err)
	}

	return nil
}

// Close closes the cache manager connection
func (cm *CacheManager) Close() error {
	if cm != nil && cm.client != nil {
		return cm.client.Close()
	}
	return nil
}
