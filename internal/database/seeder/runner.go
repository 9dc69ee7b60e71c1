package seeder

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Seeder fills one part of the tree with reference data. Run must be safe
// to repeat.
type Seeder interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner applies seeders in order and stops at the first failure.
type Runner struct {
	Seeders []Seeder
	Logger  *log.Logger
}

func (r Runner) Run(ctx context.Context) error {
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Run(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		if r.Logger != nil {
			r.Logger.Printf("[Seeder] done seeder=%s took=%s", s.Name(), time.Since(start).Round(time.Millisecond))
		}
	}
	return nil
}
