package handler

import (
	"skill-swap/internal/delivery/http/dto"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/domain/category"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/pkg/response"
	"skill-swap/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// CatalogHandler serves writes to the global skill and category records.
type CatalogHandler struct {
	uc usecase.DirectoryUsecase
}

type skillRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Level       int    `json:"level"`
	ImageURL    string `json:"image_url"`
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
}

func NewCatalogHandler(uc usecase.DirectoryUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

func (h *CatalogHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/skills", h.CreateSkill)
	r.Put("/skills/:id", h.UpdateSkill)
	r.Delete("/skills/:id", h.DeleteSkill)
	r.Post("/categories", h.CreateCategory)
	r.Put("/categories/:id", h.UpdateCategory)
	r.Delete("/categories/:id", h.DeleteCategory)
}

func (h *CatalogHandler) CreateSkill(c fiber.Ctx) error {
	return h.saveSkill(c, "", fiber.StatusCreated)
}

func (h *CatalogHandler) UpdateSkill(c fiber.Ctx) error {
	return h.saveSkill(c, c.Params("id"), fiber.StatusOK)
}

func (h *CatalogHandler) saveSkill(c fiber.Ctx, id string, status int) error {
	var req skillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	saved, err := h.uc.SaveSkill(c.Context(), skill.Skill{
		ID:          id,
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Level:       req.Level,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, status, "", dto.NewSkillResponse(saved))
}

func (h *CatalogHandler) DeleteSkill(c fiber.Ctx) error {
	if err := h.uc.DeleteSkill(c.Context(), c.Params("id")); err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *CatalogHandler) CreateCategory(c fiber.Ctx) error {
	return h.saveCategory(c, "", fiber.StatusCreated)
}

func (h *CatalogHandler) UpdateCategory(c fiber.Ctx) error {
	return h.saveCategory(c, c.Params("id"), fiber.StatusOK)
}

func (h *CatalogHandler) saveCategory(c fiber.Ctx, id string, status int) error {
	var req categoryRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	saved, err := h.uc.SaveCategory(c.Context(), category.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IconURL:     req.IconURL,
	})
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, status, "", dto.NewCategoryResponse(saved))
}

func (h *CatalogHandler) DeleteCategory(c fiber.Ctx) error {
	if err := h.uc.DeleteCategory(c.Context(), c.Params("id")); err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
