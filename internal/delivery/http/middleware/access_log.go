package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger *log.Logger
	skip   map[string]bool
}

// NewAccessLogMiddleware logs one line per request. Probe paths such as
// /health can be left out with skipPaths.
func NewAccessLogMiddleware(logger *log.Logger, skipPaths ...string) *AccessLogMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &AccessLogMiddleware{logger: logger, skip: skip}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()
		if m.skip[c.Path()] {
			return err
		}

		// The error middleware runs outside this one, so a returned error
		// has not been rendered yet.
		status := c.Response().StatusCode()
		if err != nil {
			status, _, _ = normalizeError(err)
		}
		owner, _ := OwnerID(c)

		m.logger.Printf(
			"[HTTP] rid=%s method=%s path=%s status=%d latency=%s owner=%s ip=%s resp_bytes=%d",
			rid, c.Method(), c.OriginalURL(), status, time.Since(start).Round(time.Microsecond),
			owner, c.IP(), len(c.Response().Body()),
		)
		return err
	}
}
