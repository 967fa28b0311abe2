package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIdempotentRouter(t *testing.T, calls *int) (*gin.Engine, redismock.ClientMock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock := redismock.NewClientMock()
	r := gin.New()
	r.POST("/leaves/apply", func(c *gin.Context) {
		c.Set(ContextUserID, "user-1")
		c.Next()
	}, Idempotency(db, zap.NewNop()), func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	return r, mock
}

func TestIdempotency_FirstRequestIsCached(t *testing.T) {
	calls := 0
	r, mock := newIdempotentRouter(t, &calls)

	cacheKey := "idemp:/leaves/apply:user-1:key-1"
	lockKey := cacheKey + ":lock"
	payload, _ := json.Marshal(CachedResponse{Status: http.StatusCreated, Body: `{"ok":true}`})

	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(lockKey, "locked", idempotencyLockTTL).SetVal(true)
	mock.ExpectSet(cacheKey, string(payload), idempotencyCacheTTL).SetVal("OK")
	mock.ExpectDel(lockKey).SetVal(1)

	req := httptest.NewRequest(http.MethodPost, "/leaves/apply", nil)
	req.Header.Set(HeaderIdempotencyKey, "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	calls := 0
	r, mock := newIdempotentRouter(t, &calls)

	cacheKey := "idemp:/leaves/apply:user-1:key-1"
	payload, _ := json.Marshal(CachedResponse{Status: http.StatusCreated, Body: `{"ok":true,"data":{"id":"lr-1"}}`})
	mock.ExpectGet(cacheKey).SetVal(string(payload))

	req := httptest.NewRequest(http.MethodPost, "/leaves/apply", nil)
	req.Header.Set(HeaderIdempotencyKey, "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get(HeaderIdempotentHit))
	assert.JSONEq(t, `{"ok":true,"data":{"id":"lr-1"}}`, w.Body.String())
	assert.Equal(t, 0, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ConcurrentDuplicate(t *testing.T) {
	calls := 0
	r, mock := newIdempotentRouter(t, &calls)

	cacheKey := "idemp:/leaves/apply:user-1:key-1"
	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "locked", idempotencyLockTTL).SetVal(false)

	req := httptest.NewRequest(http.MethodPost, "/leaves/apply", nil)
	req.Header.Set(HeaderIdempotencyKey, "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, calls)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PROCESSING", body["error"].(map[string]any)["code"])
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	calls := 0
	r, mock := newIdempotentRouter(t, &calls)

	req := httptest.NewRequest(http.MethodPost, "/leaves/apply", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
