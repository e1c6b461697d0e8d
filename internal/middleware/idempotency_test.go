package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	internalRedis "parking/internal/redis"
)

type idempotencyServer struct {
	router     *gin.Engine
	redis      *miniredis.Miniredis
	stopCalls  atomic.Int32
	busyCalls  atomic.Int32
	readCalls  atomic.Int32
	startCalls atomic.Int32
}

func newIdempotencyServer(t *testing.T) *idempotencyServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	s := &idempotencyServer{redis: mr}
	router := gin.New()
	router.Use(IdempotencyMiddleware(internalRedis.NewIdempotencyStore(client, 0), log))

	router.PUT("/v1/sessions/:id/stop", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "call": s.stopCalls.Add(1)})
	})
	router.PUT("/v1/sessions/plate/:plate/stop", func(c *gin.Context) {
		if s.busyCalls.Add(1) == 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "resource is busy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"call": s.busyCalls.Load()})
	})
	router.POST("/v1/sessions/start", func(c *gin.Context) {
		s.startCalls.Add(1)
		c.Status(http.StatusNoContent)
	})
	router.GET("/v1/sessions/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"call": s.readCalls.Add(1)})
	})

	s.router = router
	return s
}

func (s *idempotencyServer) do(method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_RepeatedStopIsReplayed(t *testing.T) {
	s := newIdempotencyServer(t)

	first := s.do(http.MethodPut, "/v1/sessions/session-1/stop", "key-1")
	second := s.do(http.MethodPut, "/v1/sessions/session-1/stop", "key-1")

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200 twice, got %d and %d", first.Code, second.Code)
	}
	if got := s.stopCalls.Load(); got != 1 {
		t.Errorf("expected handler to run once, ran %d times", got)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("expected replayed body %q, got %q", first.Body.String(), second.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("expected replay to be flagged")
	}
	if first.Header().Get("Idempotent-Replayed") != "" {
		t.Error("expected first response not to be flagged")
	}
	if ct := second.Header().Get("Content-Type"); ct != first.Header().Get("Content-Type") {
		t.Errorf("expected content type %q, got %q", first.Header().Get("Content-Type"), ct)
	}
	if !s.redis.Exists("idempotency:PUT:/v1/sessions/session-1/stop:key-1") {
		t.Error("expected response to be stored under method, path and key")
	}
}

func TestIdempotency_KeyIsScopedToRoute(t *testing.T) {
	s := newIdempotencyServer(t)

	s.do(http.MethodPut, "/v1/sessions/session-1/stop", "key-1")
	s.do(http.MethodPut, "/v1/sessions/session-1/stop", "key-2")
	s.do(http.MethodPut, "/v1/sessions/session-2/stop", "key-1")

	if got := s.stopCalls.Load(); got != 3 {
		t.Errorf("expected 3 executions, got %d", got)
	}
}

func TestIdempotency_ConflictIsExecutedAgain(t *testing.T) {
	s := newIdempotencyServer(t)

	if w := s.do(http.MethodPut, "/v1/sessions/plate/AB-123/stop", "key-1"); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	retry := s.do(http.MethodPut, "/v1/sessions/plate/AB-123/stop", "key-1")
	if retry.Code != http.StatusOK {
		t.Fatalf("expected retry to execute and succeed, got %d", retry.Code)
	}
	replay := s.do(http.MethodPut, "/v1/sessions/plate/AB-123/stop", "key-1")
	if replay.Code != http.StatusOK || replay.Body.String() != retry.Body.String() {
		t.Errorf("expected success to be replayed, got %d %q", replay.Code, replay.Body.String())
	}
	if got := s.busyCalls.Load(); got != 2 {
		t.Errorf("expected 2 executions, got %d", got)
	}
}

func TestIdempotency_EmptyBodyIsReplayed(t *testing.T) {
	s := newIdempotencyServer(t)

	s.do(http.MethodPost, "/v1/sessions/start", "key-1")
	w := s.do(http.MethodPost, "/v1/sessions/start", "key-1")

	if w.Code != http.StatusNoContent {
		t.Errorf("expected replayed 204, got %d", w.Code)
	}
	if got := s.startCalls.Load(); got != 1 {
		t.Errorf("expected handler to run once, ran %d times", got)
	}
}

func TestIdempotency_PassThrough(t *testing.T) {
	s := newIdempotencyServer(t)

	s.do(http.MethodGet, "/v1/sessions/session-1", "key-1")
	s.do(http.MethodGet, "/v1/sessions/session-1", "key-1")
	if got := s.readCalls.Load(); got != 2 {
		t.Errorf("expected reads to bypass replay, got %d executions", got)
	}

	s.do(http.MethodPut, "/v1/sessions/session-1/stop", "")
	s.do(http.MethodPut, "/v1/sessions/session-1/stop", "")
	if got := s.stopCalls.Load(); got != 2 {
		t.Errorf("expected requests without a key to execute, got %d executions", got)
	}
}

func TestIdempotency_RedisUnavailable_ExecutesRequest(t *testing.T) {
	s := newIdempotencyServer(t)
	s.redis.Close()

	for i := 0; i < 2; i++ {
		if w := s.do(http.MethodPut, "/v1/sessions/session-1/stop", "key-1"); w.Code != http.StatusOK {
			t.Fatalf("expected 200 without redis, got %d", w.Code)
		}
	}
	if got := s.stopCalls.Load(); got != 2 {
		t.Errorf("expected both requests to execute, got %d", got)
	}
}

func TestIdempotency_NilStoreDisablesReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)

	calls := 0
	router := gin.New()
	router.Use(IdempotencyMiddleware(nil, logrus.New()))
	router.PUT("/v1/sessions/:id/stop", func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPut, "/v1/sessions/session-1/stop", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Errorf("expected 2 executions, got %d", calls)
	}
}
