package handler

import (
	"time"

	"skill-swap/internal/delivery/http/dto"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/pkg/response"
	"skill-swap/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// RelationHandler serves the authenticated user's favorites and recent
// contacts.
type RelationHandler struct {
	uc      usecase.DirectoryUsecase
	timeout time.Duration
}

type favoriteRequest struct {
	Note string `json:"note"`
}

func NewRelationHandler(uc usecase.DirectoryUsecase, timeout time.Duration) *RelationHandler {
	return &RelationHandler{uc: uc, timeout: timeout}
}

func (h *RelationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	fav := r.Group("/me/favorites")
	fav.Get("/", h.FavoriteUsers)
	fav.Get("/entries", h.FavoriteEntries)
	fav.Get("/:targetId", h.IsFavorite)
	fav.Put("/:targetId", h.AddFavorite)
	fav.Patch("/:targetId", h.UpdateFavoriteNote)
	fav.Delete("/:targetId", h.RemoveFavorite)

	recent := r.Group("/me/recent-contacts")
	recent.Get("/", h.RecentContactUsers)
	recent.Get("/entries", h.RecentContactEntries)
	recent.Put("/:targetId", h.AddRecentContact)
	recent.Delete("/:targetId", h.RemoveRecentContact)
}

func (h *RelationHandler) FavoriteUsers(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext(c, h.timeout)
	defer cancel()

	users, err := first(ctx, h.uc.FavoriteUsers(ctx, owner))
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserListResponse(users))
}

func (h *RelationHandler) FavoriteEntries(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.FavoriteEntries(c.Context(), owner)
	if err != nil {
		return mapDirectoryError(err)
	}
	res := make([]dto.FavoriteResponse, 0, len(items))
	for _, it := range items {
		res = append(res, dto.FavoriteResponse{TargetID: it.TargetID, CreatedAt: it.CreatedAt.UTC(), Note: it.Note})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *RelationHandler) IsFavorite(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	target := c.Params("targetId")

	ok, err := h.uc.IsFavorite(c.Context(), owner, target)
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.MembershipResponse{TargetID: target, Member: ok})
}

func (h *RelationHandler) AddFavorite(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	var req favoriteRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
	}

	if _, err := h.uc.AddFavorite(c.Context(), owner, c.Params("targetId"), req.Note); err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *RelationHandler) UpdateFavoriteNote(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	var req favoriteRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	found, err := h.uc.UpdateFavoriteNote(c.Context(), owner, c.Params("targetId"), req.Note)
	if err != nil {
		return mapDirectoryError(err)
	}
	if !found {
		return middleware.NewAppError(fiber.StatusNotFound, "Favorite not found", nil, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *RelationHandler) RemoveFavorite(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if _, err := h.uc.RemoveFavorite(c.Context(), owner, c.Params("targetId")); err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *RelationHandler) RecentContactUsers(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext(c, h.timeout)
	defer cancel()

	users, err := first(ctx, h.uc.RecentContactUsers(ctx, owner))
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserListResponse(users))
}

func (h *RelationHandler) RecentContactEntries(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.RecentContactEntries(c.Context(), owner)
	if err != nil {
		return mapDirectoryError(err)
	}
	res := make([]dto.RecentContactResponse, 0, len(items))
	for _, it := range items {
		res = append(res, dto.RecentContactResponse{TargetID: it.TargetID, LastContactedAt: it.LastContactedAt.UTC()})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *RelationHandler) AddRecentContact(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if _, err := h.uc.AddRecentContact(c.Context(), owner, c.Params("targetId")); err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *RelationHandler) RemoveRecentContact(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if _, err := h.uc.RemoveRecentContact(c.Context(), owner, c.Params("targetId")); err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
