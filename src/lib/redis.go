package lib

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// GetRedisClient returns nil when REDIS_HOST is not configured.
func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

const lockValue = "locked"

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(c *redis.Client) *RedisLocker {
	return &RedisLocker{client: c}
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, lockKey(key), lockValue, ttl).Result()
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, lockKey(key)).Err()
}

// NoopLocker always grants the lock. Used when Redis is not configured.
type NoopLocker struct{}

func (NoopLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (NoopLocker) Release(ctx context.Context, key string) error {
	return nil
}

func GetLocker() Locker {
	if rd := GetRedisClient(); rd != nil {
		return NewRedisLocker(rd)
	}
	return NoopLocker{}
}

var ErrOTPNotFound = errors.New("otp not found or expired")

type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOTPStore(c *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: c, ttl: ttl}
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", strings.ToLower(strings.TrimSpace(email)))
}

func otpAttemptsKey(email string) string {
	return fmt.Sprintf("otp:attempts:%s", strings.ToLower(strings.TrimSpace(email)))
}

// Save stores a fresh code and clears the failure count of the previous one.
func (s *OTPStore) Save(ctx context.Context, email, code string) error {
	if err := s.client.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return err
	}
	return s.client.Del(ctx, otpAttemptsKey(email)).Err()
}

func (s *OTPStore) Get(ctx context.Context, email string) (string, error) {
	val, err := s.client.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// RecordFailure counts a wrong code for the email and returns the failures so far. The
// counter expires with the code.
func (s *OTPStore) RecordFailure(ctx context.Context, email string) (int64, error) {
	key := otpAttemptsKey(email)
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, otpKey(email), otpAttemptsKey(email)).Err()
}
