package repository

import (
	"context"
	"fmt"
	"strings"

	"skill-swap/internal/async"
	"skill-swap/internal/codec"
	"skill-swap/internal/domain/category"
	"skill-swap/internal/store"
)

const categoriesRoot = "categories"

type StoreCategoryRepository struct {
	store store.Store
}

var _ category.Repository = (*StoreCategoryRepository)(nil)

func NewStoreCategoryRepository(s store.Store) *StoreCategoryRepository {
	return &StoreCategoryRepository{store: s}
}

func CategoryPath(id string) string {
	return store.Join(categoriesRoot, id)
}

func (r *StoreCategoryRepository) Save(ctx context.Context, c category.Category) (category.Category, error) {
	if r == nil || r.store == nil {
		return category.Category{}, fmt.Errorf("nil store")
	}
	if strings.TrimSpace(c.ID) == "" {
		c.ID = r.store.NewID()
	}
	if err := r.store.Set(ctx, CategoryPath(c.ID), codec.EncodeCategory(c)); err != nil {
		return category.Category{}, err
	}
	return c, nil
}

func (r *StoreCategoryRepository) Get(ctx context.Context, id string) (category.Category, error) {
	return getEntity(ctx, r.store, CategoryPath(id), codec.DecodeCategory, category.ErrNotFound)
}

func (r *StoreCategoryRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CategoryPath(id))
}

func (r *StoreCategoryRepository) Count(ctx context.Context) (int, error) {
	snap, err := r.store.Get(ctx, store.Join(categoriesRoot))
	if err != nil {
		return 0, err
	}
	return len(snap.Children()), nil
}

func (r *StoreCategoryRepository) Watch(ctx context.Context, id string) *async.Value[category.Category] {
	return watchEntity(ctx, r.store, CategoryPath(id), codec.DecodeCategory, category.ErrNotFound)
}

func (r *StoreCategoryRepository) SubscribeAll(ctx context.Context, fn store.Listener) (store.Subscription, error) {
	return r.store.Subscribe(ctx, store.Join(categoriesRoot), fn)
}
