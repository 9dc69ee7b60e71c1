package handler

import (
	"strings"
	"time"

	"skill-swap/internal/async"
	"skill-swap/internal/delivery/http/dto"
	"skill-swap/internal/domain/category"
	"skill-swap/internal/pkg/response"
	"skill-swap/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// DirectoryHandler serves the read side: searches and single lookups.
type DirectoryHandler struct {
	uc      usecase.DirectoryUsecase
	timeout time.Duration
}

func NewDirectoryHandler(uc usecase.DirectoryUsecase, timeout time.Duration) *DirectoryHandler {
	return &DirectoryHandler{uc: uc, timeout: timeout}
}

func (h *DirectoryHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/users", h.SearchUsers)
	r.Get("/users/:id", h.GetUser)
	r.Get("/skills", h.SearchSkills)
	r.Get("/skills/:id", h.GetSkill)
	r.Get("/skills/:id/teachers", h.SkillTeachers)
	r.Get("/categories", h.SearchCategories)
	r.Get("/categories/:id", h.GetCategory)
}

func (h *DirectoryHandler) SearchUsers(c fiber.Ctx) error {
	criteria, err := parseCriteria(c)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext(c, h.timeout)
	defer cancel()

	users, err := first(ctx, h.uc.SearchUsers(ctx, criteria))
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserListResponse(users))
}

func (h *DirectoryHandler) GetUser(c fiber.Ctx) error {
	ctx, cancel := queryContext(c, h.timeout)
	defer cancel()

	u, err := first(ctx, h.uc.GetUser(ctx, c.Params("id")))
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(u))
}

func (h *DirectoryHandler) SearchSkills(c fiber.Ctx) error {
	criteria, err := parseCriteria(c)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext(c, h.timeout)
	defer cancel()

	skills, err := first(ctx, h.uc.SearchSkills(ctx, criteria))
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillListResponse(skills))
}

func (h *DirectoryHandler) GetSkill(c fiber.Ctx) error {
	ctx, cancel := queryContext(c, h.timeout)
	defer cancel()

	s, err := first(ctx, h.uc.GetSkill(ctx, c.Params("id")))
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSkillResponse(s))
}

func (h *DirectoryHandler) SkillTeachers(c fiber.Ctx) error {
	ctx, cancel := queryContext(c, h.timeout)
	defer cancel()

	users, err := first(ctx, h.uc.SkillTeachers(ctx, c.Params("id")))
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserListResponse(users))
}

func (h *DirectoryHandler) SearchCategories(c fiber.Ctx) error {
	ctx, cancel := queryContext(c, h.timeout)
	defer cancel()

	var v *async.Value[[]category.Category]
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		v = h.uc.SearchCategories(ctx, q)
	} else {
		v = h.uc.ListCategories(ctx)
	}
	items, err := first(ctx, v)
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCategoryListResponse(items))
}

func (h *DirectoryHandler) GetCategory(c fiber.Ctx) error {
	ctx, cancel := queryContext(c, h.timeout)
	defer cancel()

	item, err := first(ctx, h.uc.GetCategory(ctx, c.Params("id")))
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCategoryResponse(item))
}
