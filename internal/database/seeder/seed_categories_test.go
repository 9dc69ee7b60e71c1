package seeder

import (
	"context"
	"testing"
	"time"

	"skill-swap/internal/domain/category"
	"skill-swap/internal/infrastructure/cache"
	"skill-swap/internal/repository"
	"skill-swap/internal/store/memstore"
)

func TestCategoriesSeeder_SeedsOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewStoreCategoryRepository(memstore.New(nil))
	r := Runner{Seeders: Defaults(repo, cache.NewMemory(), nil)}

	if err := r.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	n, _ := repo.Count(ctx)
	if n != len(DefaultCategories) {
		t.Fatalf("expected %d categories, got %d", len(DefaultCategories), n)
	}

	if err := r.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n2, _ := repo.Count(ctx); n2 != n {
		t.Fatalf("second run must not duplicate, got %d", n2)
	}
}

func TestCategoriesSeeder_SkipsExistingCatalog(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewStoreCategoryRepository(memstore.New(nil))
	_, _ = repo.Save(ctx, category.Category{Name: "Custom"})

	if err := (CategoriesSeeder{Repo: repo}).Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Fatalf("expected untouched catalog, got %d", n)
	}
}

func TestCategoriesSeeder_HeldLockSkips(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewStoreCategoryRepository(memstore.New(nil))
	locks := cache.NewMemory()
	_, _ = locks.SetIfNotExists(ctx, categoriesLockKey, "other", time.Minute)

	if err := (CategoriesSeeder{Repo: repo, Locks: locks}).Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Fatalf("expected no seeding while lock held, got %d", n)
	}
}
