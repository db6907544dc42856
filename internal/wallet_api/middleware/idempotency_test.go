package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-ledger/internal/domain/user"
)

type idempotencyFixture struct {
	redis     *miniredis.Miniredis
	router    *gin.Engine
	principal user.Principal
	calls     int
	status    int
}

func newIdempotencyFixture(t *testing.T, principal user.Principal) *idempotencyFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &idempotencyFixture{redis: mr, principal: principal, status: http.StatusCreated}
	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		c.Set(PrincipalKey, f.principal)
		c.Next()
	})
	f.router.Use(Idempotency(client, time.Hour, newTestLogger()))
	f.router.POST("/wallets/:id/deposit", func(c *gin.Context) {
		f.calls++
		c.JSON(f.status, gin.H{"call": f.calls})
	})
	return f
}

func (f *idempotencyFixture) send(key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/wallets/w1/deposit", nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestIdempotency(t *testing.T) {
	principal := user.Principal{UserID: uuid.New(), Role: user.RoleUser}

	t.Run("WithoutKeyAlwaysExecutes", func(t *testing.T) {
		f := newIdempotencyFixture(t, principal)
		f.send("")
		f.send("")
		assert.Equal(t, 2, f.calls)
	})

	t.Run("ReplaysStoredResponse", func(t *testing.T) {
		f := newIdempotencyFixture(t, principal)

		first := f.send("k1")
		second := f.send("k1")

		assert.Equal(t, 1, f.calls)
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get(IdempotentReplayHeader))
		assert.Empty(t, first.Header().Get(IdempotentReplayHeader))
	})

	t.Run("ReplaysClientErrors", func(t *testing.T) {
		f := newIdempotencyFixture(t, principal)
		f.status = http.StatusUnprocessableEntity

		f.send("k2")
		second := f.send("k2")

		assert.Equal(t, 1, f.calls)
		assert.Equal(t, http.StatusUnprocessableEntity, second.Code)
	})

	t.Run("ServerErrorReleasesKey", func(t *testing.T) {
		f := newIdempotencyFixture(t, principal)
		f.status = http.StatusInternalServerError

		f.send("k3")
		f.status = http.StatusCreated
		second := f.send("k3")

		assert.Equal(t, 2, f.calls)
		assert.Equal(t, http.StatusCreated, second.Code)
	})

	t.Run("InProgressConflicts", func(t *testing.T) {
		f := newIdempotencyFixture(t, principal)
		key := idempotencyKeyPrefix + principal.UserID.String() + ":POST:/wallets/w1/deposit:k4"
		require.NoError(t, f.redis.Set(key, `{"state":"in_progress"}`))

		rr := f.send("k4")
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Zero(t, f.calls)
	})

	t.Run("KeysAreScopedPerUser", func(t *testing.T) {
		f := newIdempotencyFixture(t, principal)
		f.send("shared")
		f.principal = user.Principal{UserID: uuid.New(), Role: user.RoleUser}
		f.send("shared")

		assert.Equal(t, 2, f.calls)
		assert.Len(t, f.redis.Keys(), 2)
	})

	t.Run("StoreUnavailable", func(t *testing.T) {
		f := newIdempotencyFixture(t, principal)
		f.redis.Close()

		rr := f.send("k5")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Zero(t, f.calls)
	})

	t.Run("KeyExpiresWithTTL", func(t *testing.T) {
		f := newIdempotencyFixture(t, principal)
		f.send("k6")
		f.redis.FastForward(2 * time.Hour)
		f.send("k6")
		assert.Equal(t, 2, f.calls)
	})
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	principal := user.Principal{UserID: uuid.New(), Role: user.RoleUser}
	calls := 0

	router := gin.New()
	router.Use(Recovery(newTestLogger()))
	router.Use(func(c *gin.Context) {
		c.Set(PrincipalKey, principal)
		c.Next()
	})
	router.Use(Idempotency(client, time.Hour, newTestLogger()))
	router.POST("/wallets/:id/deposit", func(c *gin.Context) {
		calls++
		if calls == 1 {
			panic("ledger exploded")
		}
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/wallets/w1/deposit", nil)
		req.Header.Set(IdempotencyKeyHeader, "k-panic")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	first := send()
	assert.Equal(t, http.StatusInternalServerError, first.Code)
	storeKey := idempotencyKeyPrefix + principal.UserID.String() + ":POST:/wallets/w1/deposit:k-panic"
	assert.False(t, mr.Exists(storeKey))

	second := send()
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, 2, calls)
}
