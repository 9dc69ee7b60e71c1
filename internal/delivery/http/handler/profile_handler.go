package handler

import (
	"errors"
	"strings"
	"time"

	"skill-swap/internal/delivery/http/dto"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/pkg/response"
	"skill-swap/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const maxProfileImageBytes = 5 << 20

// ProfileHandler serves writes to the authenticated user's own record.
type ProfileHandler struct {
	uc      usecase.DirectoryUsecase
	timeout time.Duration
}

type profileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photo_url"`
	Bio      string `json:"bio"`
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type teachSkillRequest struct {
	SkillID     string `json:"skill_id"`
	Title       string `json:"title"`
	Level       int    `json:"level"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type learnSkillRequest struct {
	SkillID  string `json:"skill_id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

type skillIDResponse struct {
	SkillID string `json:"skill_id"`
}

type photoResponse struct {
	Key string `json:"key,omitempty"`
	URL string `json:"url,omitempty"`
}

func NewProfileHandler(uc usecase.DirectoryUsecase, timeout time.Duration) *ProfileHandler {
	return &ProfileHandler{uc: uc, timeout: timeout}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	me := r.Group("/me")
	me.Get("/", h.Me)
	me.Put("/", h.SaveMe)
	me.Put("/profile", h.UpdateProfile)
	me.Patch("/fields", h.UpdateField)
	me.Post("/skills/teach", h.AddSkillToTeach)
	me.Delete("/skills/teach/:skillId", h.RemoveSkillToTeach)
	me.Post("/skills/learn", h.AddSkillToLearn)
	me.Delete("/skills/learn/:skillId", h.RemoveSkillToLearn)
	me.Post("/photo", h.UploadPhoto)

	r.Get("/users/:id/photo", h.PhotoURL)
}

func (h *ProfileHandler) Me(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	ctx, cancel := queryContext(c, h.timeout)
	defer cancel()

	u, err := first(ctx, h.uc.GetUser(ctx, owner))
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(u))
}

// SaveMe creates or replaces the caller's profile. Skill lists already on
// record are kept.
func (h *ProfileHandler) SaveMe(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	err = h.uc.UpdateProfile(c.Context(), owner, req.toProfile())
	if err == nil {
		return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
	}
	if !errors.Is(err, usecase.ErrNotFound) {
		return mapDirectoryError(err)
	}

	saved, err := h.uc.SaveUser(c.Context(), user.User{ID: owner, Profile: req.toProfile()})
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewUserResponse(saved))
}

func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := h.uc.UpdateProfile(c.Context(), owner, req.toProfile()); err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *ProfileHandler) UpdateField(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req updateFieldRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := h.uc.UpdateUserField(c.Context(), owner, req.Field, req.Value); err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *ProfileHandler) AddSkillToTeach(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req teachSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	id, err := h.uc.AddSkillToTeach(c.Context(), owner, usecase.TeachSkillInput{
		SkillID:     req.SkillID,
		Title:       req.Title,
		Level:       req.Level,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, skillIDResponse{SkillID: id})
}

func (h *ProfileHandler) RemoveSkillToTeach(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if err := h.uc.RemoveSkillToTeach(c.Context(), owner, c.Params("skillId")); err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *ProfileHandler) AddSkillToLearn(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req learnSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	id, err := h.uc.AddSkillToLearn(c.Context(), owner, usecase.LearnSkillInput{
		SkillID:  req.SkillID,
		Title:    req.Title,
		Priority: req.Priority,
	})
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, skillIDResponse{SkillID: id})
}

func (h *ProfileHandler) RemoveSkillToLearn(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if err := h.uc.RemoveSkillToLearn(c.Context(), owner, c.Params("skillId")); err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

// UploadPhoto expects a multipart form with the image in the "image" field.
func (h *ProfileHandler) UploadPhoto(c fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing image", nil, err)
	}
	if fh.Size <= 0 || fh.Size > maxProfileImageBytes {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid image size", nil, nil)
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unsupported image type", nil, nil)
	}

	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	defer f.Close()

	key, err := h.uc.UploadProfileImage(c.Context(), owner, f, fh.Size, contentType)
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, photoResponse{Key: key})
}

func (h *ProfileHandler) PhotoURL(c fiber.Ctx) error {
	url, err := h.uc.ProfileImageURL(c.Context(), c.Params("id"))
	if err != nil {
		return mapDirectoryError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, photoResponse{URL: url})
}

func (r profileRequest) toProfile() user.Profile {
	return user.Profile{
		Name:     strings.TrimSpace(r.Name),
		Email:    strings.TrimSpace(r.Email),
		PhotoURL: strings.TrimSpace(r.PhotoURL),
		Bio:      r.Bio,
	}
}
