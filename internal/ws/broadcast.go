package ws

import (
	"context"

	"skill-swap/internal/async"
	"skill-swap/internal/delivery/http/dto"
	"skill-swap/internal/domain/category"
	"skill-swap/internal/usecase"
)

// BroadcastCategories pushes the category catalog to every connected client
// whenever it changes, until ctx ends.
func BroadcastCategories(ctx context.Context, hub *Hub, uc usecase.DirectoryUsecase) {
	if hub == nil || uc == nil {
		return
	}
	v := uc.ListCategories(ctx)
	v.Subscribe(func(u async.Update[[]category.Category]) {
		b, err := encodeUpdate(FeedCategories, u, dto.NewCategoryListResponse)
		if err != nil {
			return
		}
		hub.Broadcast(b)
	})
}
