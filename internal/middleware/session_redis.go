package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const redisTimeout = 3 * time.Second

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ConnectRedis opens a client and checks the server answers.
func ConnectRedis(conf RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Addr,
		Password:     conf.Password,
		DB:           conf.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  redisTimeout,
		WriteTimeout: redisTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("Redis connected: %s", conf.Addr)
	return client, nil
}

// RedisSessionStore keeps sessions in Redis so several server instances
// share operator logins. Redis expires the keys.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: "prodreg:session:"}
}

func (s *RedisSessionStore) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.prefix+id, time.Now().Unix(), SessionTTL).Err(); err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	return id, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (Session, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, s.prefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, false
	}
	if err != nil {
		log.Printf("session get: %v", err)
		return Session{}, false
	}

	created, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return Session{}, false
	}
	return newSession(time.Unix(created, 0)), true
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		log.Printf("session delete: %v", err)
	}
}
