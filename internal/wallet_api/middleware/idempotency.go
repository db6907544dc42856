package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader carries the client-chosen key of a mutating request
	IdempotencyKeyHeader = "Idempotency-Key"

	// IdempotentReplayHeader is set on responses served from the idempotency store
	IdempotentReplayHeader = "Idempotent-Replayed"

	idempotencyKeyPrefix    = "idempotency:v1:"
	maxIdempotencyKeyLength = 255

	stateInProgress = "in_progress"
	stateCompleted  = "completed"
)

// storedResponse is the Redis value for one idempotency key
type storedResponse struct {
	State       string `json:"state"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// responseRecorder tees the handler's body so it can be stored for replay
type responseRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency makes a mutating request with an Idempotency-Key header execute at most once per
// user and route. A repeat while the first is running gets 409; a repeat after it finished gets
// the stored 2xx/4xx response. 5xx responses and handler panics release the key so the client may retry.
// Requests without the header pass through. Must run after Auth.
func Idempotency(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Idempotency-Key is too long")
			return
		}

		storeKey := idempotencyStoreKey(c, key)
		ctx := c.Request.Context()

		marker, _ := json.Marshal(storedResponse{State: stateInProgress})
		acquired, err := client.SetNX(ctx, storeKey, marker, ttl).Result()
		if err != nil {
			logger.Error("Idempotency store unavailable", "correlation_id", GetCorrelationID(c), "error", err)
			abortWithError(c, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE", "Request cannot be deduplicated right now")
			return
		}
		if !acquired {
			replayStored(c, client, storeKey, logger)
			return
		}

		// Request context may already be cancelled once the handler returned
		saveCtx := context.WithoutCancel(ctx)
		release := func() {
			if err := client.Del(saveCtx, storeKey).Err(); err != nil {
				logger.Warn("Failed to release idempotency key", "key", storeKey, "error", err)
			}
		}
		defer func() {
			// a panicking handler never produced a response worth replaying
			if r := recover(); r != nil {
				release()
				panic(r)
			}
		}()

		recorder := &responseRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		c.Next()

		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			release()
			return
		}

		value, _ := json.Marshal(storedResponse{
			State:       stateCompleted,
			Status:      status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		})
		if err := client.Set(saveCtx, storeKey, value, ttl).Err(); err != nil {
			logger.Warn("Failed to store idempotent response", "key", storeKey, "error", err)
		}
	}
}

func replayStored(c *gin.Context, client redis.UniversalClient, storeKey string, logger *slog.Logger) {
	raw, err := client.Get(c.Request.Context(), storeKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Released by a failed first attempt between SetNX and Get
		abortWithError(c, http.StatusConflict, "IDEMPOTENCY_KEY_IN_USE", "A request with this Idempotency-Key is being processed")
		return
	}
	if err != nil {
		logger.Error("Idempotency store unavailable", "correlation_id", GetCorrelationID(c), "error", err)
		abortWithError(c, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE", "Request cannot be deduplicated right now")
		return
	}

	var stored storedResponse
	if err := json.Unmarshal(raw, &stored); err != nil || stored.State != stateCompleted {
		abortWithError(c, http.StatusConflict, "IDEMPOTENCY_KEY_IN_USE", "A request with this Idempotency-Key is being processed")
		return
	}

	c.Header(IdempotentReplayHeader, "true")
	contentType := stored.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Data(stored.Status, contentType, stored.Body)
	c.Abort()
}

// idempotencyStoreKey scopes a client key to the caller and the route it was sent to
func idempotencyStoreKey(c *gin.Context, key string) string {
	owner := "anonymous"
	if principal, ok := GetPrincipal(c); ok {
		owner = principal.UserID.String()
	}
	return idempotencyKeyPrefix + owner + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key
}
