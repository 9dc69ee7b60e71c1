package usecase

import (
	"context"
	"errors"
	"fmt"

	"skill-swap/internal/domain/category"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/infrastructure/cache"
	"skill-swap/internal/infrastructure/objectstore"
	"skill-swap/internal/relation"
	"skill-swap/internal/repository"
	"skill-swap/internal/store"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("service unavailable")
	ErrInternal     = errors.New("internal error")
)

// translate maps lower layer failures onto the usecase error set. The
// original error stays in the chain.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrInternal),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, skill.ErrNotFound),
		errors.Is(err, category.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, relation.ErrValidation),
		errors.Is(err, relation.ErrUnsupported),
		errors.Is(err, repository.ErrInvalidField),
		errors.Is(err, store.ErrInvalidPath):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, store.ErrUnavailable),
		errors.Is(err, cache.ErrUnavailable),
		errors.Is(err, objectstore.ErrNotConfigured):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
