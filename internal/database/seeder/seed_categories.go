package seeder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"skill-swap/internal/domain/category"
	"skill-swap/internal/infrastructure/cache"
)

const categoriesLockKey = "seed:categories:lock"

// DefaultCategories is the catalog a fresh deployment starts with.
var DefaultCategories = []category.Category{
	{Name: "Technology", Description: "Programming, design, digital tools and computing"},
	{Name: "Languages", Description: "Learning and practicing foreign languages"},
	{Name: "Music", Description: "Instruments, singing, production and music theory"},
	{Name: "Art", Description: "Drawing, painting, sculpture and other visual arts"},
	{Name: "Sports", Description: "Physical activities, training and sports"},
	{Name: "Cooking", Description: "Recipes, culinary techniques and gastronomy"},
	{Name: "Education", Description: "Tutoring, academic subjects and study skills"},
	{Name: "Business", Description: "Entrepreneurship, marketing, finance and management"},
	{Name: "Health", Description: "Wellness, nutrition, mental health and first aid"},
	{Name: "Home", Description: "Repairs, gardening, crafts and home care"},
}

// CategoriesSeeder writes DefaultCategories only when no category exists.
type CategoriesSeeder struct {
	Repo   category.Repository
	Locks  cache.Cache
	Logger *log.Logger
}

func (CategoriesSeeder) Name() string { return "categories" }

func (s CategoriesSeeder) Run(ctx context.Context) error {
	if s.Repo == nil {
		return fmt.Errorf("nil category repository")
	}

	if s.Locks != nil {
		ok, err := s.Locks.SetIfNotExists(ctx, categoriesLockKey, "1", time.Minute)
		switch {
		case errors.Is(err, cache.ErrUnavailable):
			// Single instance assumption without a shared lock.
		case err != nil:
			return err
		case !ok:
			s.logf("[Seeder] categories seeding in progress elsewhere, skipping")
			return nil
		default:
			defer func() {
				_ = s.Locks.Delete(context.Background(), categoriesLockKey)
			}()
		}
	}

	n, err := s.Repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logf("[Seeder] categories already present count=%d", n)
		return nil
	}

	for _, c := range DefaultCategories {
		if _, err := s.Repo.Save(ctx, c); err != nil {
			return fmt.Errorf("save category %s: %w", c.Name, err)
		}
	}
	s.logf("[Seeder] categories created count=%d", len(DefaultCategories))
	return nil
}

func (s CategoriesSeeder) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
