package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/arturoeanton/blueprint-intel/internal/domain"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// AuditWriter defines how audit records are persisted.
type AuditWriter interface {
	WriteAudit(ctx context.Context, l domain.AuditLog) error
}

// RequestID returns the id assigned by AuditMiddleware, or "".
func RequestID(c fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// AuditMiddleware assigns a request id and logs every request.
func AuditMiddleware(writer AuditWriter) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		} else {
			reqID = strings.Clone(reqID)
		}
		c.Locals(requestIDKey, reqID)
		c.Set(RequestIDHeader, reqID)

		// Capture request data BEFORE handler execution (Fiber reuses context objects)
		method := strings.Clone(c.Method())
		path := strings.Clone(c.Path())
		ip := strings.Clone(c.IP())
		userAgent := strings.Clone(c.Get("User-Agent"))

		err := c.Next()

		status := c.Response().StatusCode()
		details, _ := json.Marshal(map[string]any{
			"method":      method,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		entry := domain.AuditLog{
			RequestID:   reqID,
			Action:      actionFor(path),
			BlueprintID: blueprintIDFrom(path),
			Path:        path,
			Details:     string(details),
			IP:          ip,
			UserAgent:   userAgent,
		}

		// All values are captured, safe to use in goroutine
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if writeErr := writer.WriteAudit(ctx, entry); writeErr != nil {
				slog.Error("failed to write audit log", "request_id", entry.RequestID, "error", writeErr)
			}
		}()

		return err
	}
}

func actionFor(path string) string {
	switch {
	case strings.HasSuffix(path, "/chat"):
		return domain.AuditActionChat
	case strings.HasSuffix(path, "/edits/confirm"):
		return domain.AuditActionEditConfirm
	case strings.HasSuffix(path, "/index"):
		return domain.AuditActionIndex
	}
	return domain.AuditActionHTTPRequest
}

// blueprintIDFrom extracts the id from paths like /api/v1/blueprints/{id}/...
// Route params are not available to global middleware.
func blueprintIDFrom(path string) string {
	const marker = "/blueprints/"
	i := strings.Index(path, marker)
	if i < 0 {
		return ""
	}
	rest := path[i+len(marker):]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
