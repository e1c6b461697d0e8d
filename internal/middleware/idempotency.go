package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	internalRedis "parking/internal/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
)

// teeWriter copies everything the handler writes so it can be stored afterwards.
type teeWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the stored response when a POST, PUT or PATCH
// repeats an Idempotency-Key on the same route. A nil store disables it.
func IdempotencyMiddleware(store internalRedis.IdempotencyStoreInterface, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if store == nil || key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storeKey := c.Request.Method + ":" + c.Request.URL.Path + ":" + key
		entry := log.WithFields(logrus.Fields{"idempotency_key": key, "path": c.Request.URL.Path})

		stored, err := store.GetResponse(ctx, storeKey)
		if err != nil {
			entry.WithError(err).Warn("idempotency lookup failed")
			c.Next()
			return
		}
		if stored != nil {
			c.Header(replayedHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		tee := &teeWriter{ResponseWriter: c.Writer}
		c.Writer = tee
		c.Next()

		status := tee.Status()
		if !replayable(status) {
			return
		}
		resp := &internalRedis.StoredResponse{
			Status:      status,
			ContentType: tee.Header().Get("Content-Type"),
			Body:        tee.body.Bytes(),
		}
		if err := store.SaveResponse(ctx, storeKey, resp); err != nil {
			entry.WithError(err).Warn("failed to store idempotent response")
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// replayable reports whether a response with status may be replayed.
// Server errors and lock contention are left for the client to retry.
func replayable(status int) bool {
	return status >= 200 && status < 500 && status != http.StatusConflict
}
