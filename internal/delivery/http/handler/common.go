package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"skill-swap/internal/async"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/pkg/response"
	"skill-swap/internal/search"
	"skill-swap/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const defaultQueryTimeout = 10 * time.Second

// first waits for the first update of a live query and closes it. The
// value must have been started with ctx.
func first[T any](ctx context.Context, v *async.Value[T]) (T, error) {
	defer v.Close()
	u, err := v.Await(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return u.Value, u.Err
}

func queryContext(c fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return context.WithTimeout(c.Context(), timeout)
}

func ownerID(c fiber.Ctx) (string, error) {
	id, ok := middleware.OwnerID(c)
	if !ok {
		return "", middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return id, nil
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func parseCriteria(c fiber.Ctx) (search.Criteria, error) {
	minLevel, err := parseQueryIntStrict(c, "min_level", 0)
	if err != nil {
		return search.Criteria{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid min_level", nil, err)
	}
	if minLevel < 0 {
		return search.Criteria{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid min_level", nil, nil)
	}
	return search.Criteria{
		Text:       c.Query("q"),
		CategoryID: c.Query("category"),
		MinLevel:   minLevel,
	}, nil
}

func mapDirectoryError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	case errors.Is(err, usecase.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
