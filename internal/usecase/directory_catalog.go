package usecase

import (
	"context"
	"strings"

	"skill-swap/internal/domain/category"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
)

func (d *Directory) SaveSkill(ctx context.Context, s skill.Skill) (skill.Skill, error) {
	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		return skill.Skill{}, ErrInvalidInput
	}
	s.Level = user.ClampLevel(s.Level)
	saved, err := d.skills.Save(ctx, s)
	if err != nil {
		return skill.Skill{}, translate(err)
	}
	return saved, nil
}

// DeleteSkill removes the catalog entry only. Users keep their own copies.
func (d *Directory) DeleteSkill(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return translate(d.skills.Delete(ctx, id))
}

func (d *Directory) SaveCategory(ctx context.Context, c category.Category) (category.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return category.Category{}, ErrInvalidInput
	}
	saved, err := d.categories.Save(ctx, c)
	if err != nil {
		return category.Category{}, translate(err)
	}
	return saved, nil
}

func (d *Directory) DeleteCategory(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return translate(d.categories.Delete(ctx, id))
}
