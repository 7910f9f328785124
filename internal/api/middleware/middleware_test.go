package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/logger"
)

type fakeParser struct {
	principals map[string]domain.Principal
}

func (p *fakeParser) ParseToken(raw string) (domain.Principal, error) {
	principal, ok := p.principals[raw]
	if !ok {
		return domain.Principal{}, errors.New("bad token")
	}
	return principal, nil
}

func newParser() *fakeParser {
	return &fakeParser{principals: map[string]domain.Principal{
		"customer-token": {UserID: "user-1", Role: domain.RoleCustomer},
		"operator-token": {UserID: "operator", Role: domain.RoleOperator},
	}}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth(t *testing.T) {
	log := logger.NewNop()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic customer-token", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer customer-token", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.Principal
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = GetPrincipal(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Auth(newParser(), log)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "user-1", got.UserID)
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestRequireOperator(t *testing.T) {
	log := logger.NewNop()
	chain := Auth(newParser(), log)(RequireOperator(log)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/bookings", nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/bookings", nil)
	req.Header.Set("Authorization", "Bearer operator-token")
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recovery(logger.NewNop())(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	defer limiter.Stop()

	h := RateLimit(limiter, logger.NewNop())(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// другой IP со своим бакетом
	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:1234"
	assert.Equal(t, "192.168.1.5", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

type fakeRecorder struct {
	method string
	route  string
	status int
}

func (f *fakeRecorder) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	f.method, f.route, f.status = method, route, status
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	recorder := &fakeRecorder{}

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(recorder))
	r.HandleFunc("/api/v1/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/abc", nil))

	assert.Equal(t, http.MethodGet, recorder.method)
	assert.Equal(t, "/api/v1/bookings/{bookingId}", recorder.route)
	assert.Equal(t, http.StatusNotFound, recorder.status)
}

func countingHandler(calls *int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"n":` + string(rune('0'+n)) + `}`))
	})
}

func idempotentRequest(token, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	return req
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	log := logger.NewNop()
	var calls int32
	h := Auth(newParser(), log)(Idempotency(store, log)(countingHandler(&calls, http.StatusCreated)))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, idempotentRequest("customer-token", "key-1"))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, idempotentRequest("customer-token", "key-1"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))

	// тот же ключ другого клиента не пересекается
	other := httptest.NewRecorder()
	h.ServeHTTP(other, idempotentRequest("operator-token", "key-1"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_DoesNotCacheErrors(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	log := logger.NewNop()
	var calls int32
	h := Auth(newParser(), log)(Idempotency(store, log)(countingHandler(&calls, http.StatusConflict)))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, idempotentRequest("customer-token", "key-2"))
		assert.Equal(t, http.StatusConflict, rec.Code)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	log := logger.NewNop()
	var calls int32
	h := Auth(newParser(), log)(Idempotency(store, log)(countingHandler(&calls, http.StatusCreated)))

	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("customer-token", ""))
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_ConcurrentDuplicateGetsConflict(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	log := logger.NewNop()
	var calls int32
	entered := make(chan struct{})
	proceed := make(chan struct{})

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		close(entered)
		<-proceed
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"b-1"}`))
	})
	h := Auth(newParser(), log)(Idempotency(store, log)(slow))

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(first, idempotentRequest("customer-token", "key-3"))
	}()
	<-entered

	// первый запрос ещё выполняется
	second := httptest.NewRecorder()
	h.ServeHTTP(second, idempotentRequest("customer-token", "key-3"))
	assert.Equal(t, http.StatusConflict, second.Code)

	close(proceed)
	<-done
	assert.Equal(t, http.StatusCreated, first.Code)

	third := httptest.NewRecorder()
	h.ServeHTTP(third, idempotentRequest("customer-token", "key-3"))
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.Equal(t, "true", third.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, `{"id":"b-1"}`, third.Body.String())

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIdempotency_ErrorReleasesKey(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	ctx := context.Background()
	log := logger.NewNop()
	var calls int32
	h := Auth(newParser(), log)(Idempotency(store, log)(countingHandler(&calls, http.StatusConflict)))

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("customer-token", "key-4"))

	// после неуспешного ответа ключ снова свободен
	reserved, err := store.Reserve(ctx, "user-1:POST:/api/v1/bookings:key-4")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestMemoryIdempotencyStore_Reserve(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	now := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// зависший резерв истекает
	now = now.Add(inFlightTTL)
	ok, err = store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Release(ctx, "k"))
	require.NoError(t, store.Set(ctx, "k", &CachedResponse{StatusCode: http.StatusCreated}))
	ok, err = store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryIdempotencyStore_Expires(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	now := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", &CachedResponse{StatusCode: http.StatusCreated}))

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

type fakeRedis struct {
	data map[string]string
	ttl  time.Duration
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = "1"
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisIdempotencyStore(t *testing.T) {
	client := &fakeRedis{data: map[string]string{}}
	store := NewRedisIdempotencyStore(client, 24*time.Hour)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	resp := &CachedResponse{
		StatusCode: http.StatusCreated,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(`{"id":"b-1"}`),
	}
	require.NoError(t, store.Set(ctx, "user-1:POST:/api/v1/bookings:k", resp))
	assert.Equal(t, 24*time.Hour, client.ttl)
	assert.Contains(t, client.data, "idempotency:user-1:POST:/api/v1/bookings:k")

	got, found, err := store.Get(ctx, "user-1:POST:/api/v1/bookings:k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, http.StatusCreated, got.StatusCode)
	assert.Equal(t, `{"id":"b-1"}`, string(got.Body))
	assert.Equal(t, "application/json", got.Headers.Get("Content-Type"))
}

func TestRedisIdempotencyStore_ReserveRelease(t *testing.T) {
	client := &fakeRedis{data: map[string]string{}}
	store := NewRedisIdempotencyStore(client, time.Hour)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, client.data, "idempotency:lock:k")

	ok, err = store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "k"))
	assert.NotContains(t, client.data, "idempotency:lock:k")

	ok, err = store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
