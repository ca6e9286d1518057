package ginmw

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reoring/flatcsv"
	"github.com/reoring/flatcsv/metrics"
	"github.com/reoring/flatcsv/middleware"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// ConvertJSON reads the request body as JSON text and parses it with opt (or
// middleware.DefaultOptions when zero value), stores the Dataset in the
// request context, and on failure aborts with the error payload. m may be
// nil.
func ConvertJSON(opt flatcsv.Options, m *metrics.Metrics) gin.HandlerFunc {
	// merge defaults if caller passed zero
	if opt.MaxBytes == 0 && opt.MaxDepth == 0 {
		def := middleware.DefaultOptions()
		opt.MaxBytes, opt.MaxDepth = def.MaxBytes, def.MaxDepth
	}
	return func(c *gin.Context) {
		start := time.Now()
		reqOpt := opt
		reqOpt.Lang = middleware.Lang(c.Query("lang"), c.GetHeader("Accept-Language"), opt.Lang)

		body := c.Request.Body
		if reqOpt.MaxBytes > 0 {
			body = http.MaxBytesReader(c.Writer, body, reqOpt.MaxBytes)
		}
		data, err := io.ReadAll(body)
		var ds *flatcsv.Dataset
		if err == nil {
			ds, err = flatcsv.ParseBytes(data, reqOpt)
		}
		m.Observe("http", start, len(data), ds, err)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(middleware.StatusFor(err), middleware.ErrorPayload(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithDataset(c.Request.Context(), ds))
		c.Next()
	}
}

// GetDataset fetches the Dataset stored by ConvertJSON.
func GetDataset(c *gin.Context) (*flatcsv.Dataset, bool) {
	return middleware.DatasetFromContext(c.Request.Context())
}

// RequestID propagates an incoming X-Request-ID or assigns a new UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger writes one structured line per request.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.Last().Error())
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("request failed", attrs...)
		case status >= 400:
			logger.Warn("request rejected", attrs...)
		default:
			logger.Info("request served", attrs...)
		}
	}
}
