package seeder

import (
	"log"

	"skill-swap/internal/domain/category"
	"skill-swap/internal/infrastructure/cache"
)

func Defaults(categories category.Repository, locks cache.Cache, logger *log.Logger) []Seeder {
	return []Seeder{
		CategoriesSeeder{Repo: categories, Locks: locks, Logger: logger},
	}
}
