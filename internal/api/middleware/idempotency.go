package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	maxIdempotencyKey = 128
	redisKeyPrefix    = "idempotency:"
	redisLockPrefix   = "idempotency:lock:"

	// inFlightTTL сколько живёт резерв ключа, если запрос так и не завершился
	inFlightTTL = time.Minute

	msgIdempotencyKeyTooLong = "слишком длинный Idempotency-Key"
	msgIdempotencyInFlight   = "запрос с этим Idempotency-Key уже выполняется"
)

// IdempotencyStore хранилище первых ответов по ключу
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	// Reserve помечает ключ как выполняющийся. false, если ключ уже занят
	Reserve(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, response *CachedResponse) error
	Release(ctx context.Context, key string) error
}

type CachedResponse struct {
	StatusCode int         `json:"statusCode"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// MemoryIdempotencyStore используется, когда redis выключен
type MemoryIdempotencyStore struct {
	mu       sync.RWMutex
	store    map[string]*CachedResponse
	inFlight map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	s := &MemoryIdempotencyStore{
		store:    make(map[string]*CachedResponse),
		inFlight: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	go s.cleanup()

	return s
}

func (s *MemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool, error) {
	s.mu.RLock()
	resp, ok := s.store[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if s.now().Sub(resp.CreatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.store, key)
		s.mu.Unlock()
		return nil, false, nil
	}

	return resp, true, nil
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if resp, ok := s.store[key]; ok && now.Sub(resp.CreatedAt) <= s.ttl {
		return false, nil
	}
	if started, ok := s.inFlight[key]; ok && now.Sub(started) < inFlightTTL {
		return false, nil
	}

	s.inFlight[key] = now
	return true, nil
}

func (s *MemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = s.now()
	s.store[key] = response
	return nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *MemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for key, resp := range s.store {
				if now.Sub(resp.CreatedAt) > s.ttl {
					delete(s.store, key)
				}
			}
			for key, started := range s.inFlight {
				if now.Sub(started) >= inFlightTTL {
					delete(s.inFlight, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

// redisCmdable подмножество *redis.Client
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisIdempotencyStore ответы живут в redis с TTL, общие для всех инстансов
type RedisIdempotencyStore struct {
	client redisCmdable
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client redisCmdable, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var resp CachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, fmt.Errorf("decode cached response: %w", err)
	}

	return &resp, true, nil
}

// Reserve ставит короткоживущий lock-ключ через SETNX
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, redisLockPrefix+key, 1, inFlightTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisLockPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) error {
	response.CreatedAt = time.Now()

	raw, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("encode cached response: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency повторяет первый успешный ответ для того же ключа того же вызывающего.
// Пока первый запрос выполняется, дубликат получает 409.
// Ставится после Auth; ошибки хранилища не блокируют запрос
func Idempotency(store IdempotencyStore, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKey {
				handlers.RespondBadRequest(w, msgIdempotencyKeyTooLong)
				return
			}

			scoped := scopedKey(r, key)

			cached, found, err := store.Get(r.Context(), scoped)
			if err != nil {
				logger.Error("%s %s - Idempotency store get failed: %v", r.Method, r.URL.Path, err)
			}
			if found {
				logger.Info("%s %s - Replaying cached response: key=%s", r.Method, r.URL.Path, key)
				replayCachedResponse(w, cached)
				return
			}

			reserved, err := store.Reserve(r.Context(), scoped)
			if err != nil {
				logger.Error("%s %s - Idempotency store reserve failed: %v", r.Method, r.URL.Path, err)
			} else if !reserved {
				// первый запрос мог завершиться между Get и Reserve
				if cached, found, _ := store.Get(r.Context(), scoped); found {
					logger.Info("%s %s - Replaying cached response: key=%s", r.Method, r.URL.Path, key)
					replayCachedResponse(w, cached)
					return
				}
				logger.Warn("%s %s - Request with the same key in flight: key=%s", r.Method, r.URL.Path, key)
				handlers.RespondConflict(w, msgIdempotencyInFlight)
				return
			}

			if reserved {
				defer func() {
					if err := store.Release(context.WithoutCancel(r.Context()), scoped); err != nil {
						logger.Error("%s %s - Idempotency store release failed: %v", r.Method, r.URL.Path, err)
					}
				}()
			}

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
			next.ServeHTTP(capture, r)

			if capture.statusCode < 200 || capture.statusCode >= 300 {
				return
			}

			resp := &CachedResponse{
				StatusCode: capture.statusCode,
				Headers:    w.Header().Clone(),
				Body:       capture.body.Bytes(),
			}
			if err := store.Set(r.Context(), scoped, resp); err != nil {
				logger.Error("%s %s - Idempotency store set failed: %v", r.Method, r.URL.Path, err)
			}
		})
	}
}

// scopedKey один и тот же ключ разных клиентов не пересекается
func scopedKey(r *http.Request, key string) string {
	owner := "anonymous"
	if p, ok := GetPrincipal(r.Context()); ok {
		owner = p.UserID
	}
	return owner + ":" + r.Method + ":" + r.URL.Path + ":" + key
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
