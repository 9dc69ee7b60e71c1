package ws

import (
	"context"
	"encoding/json"

	"skill-swap/internal/async"
	"skill-swap/internal/delivery/http/dto"
	"skill-swap/internal/domain/category"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
)

// encodeUpdate renders one async update as a feed frame.
func encodeUpdate[T any, R any](feed string, u async.Update[T], render func(T) R) ([]byte, error) {
	evt := dto.FeedEvent{Type: "update", Feed: feed, Data: render(u.Value)}
	if u.Err != nil {
		evt.Error = u.Err.Error()
	}
	return json.Marshal(evt)
}

// stream forwards every update of v to client. A client that cannot keep up
// is disconnected rather than sent a stale backlog.
func stream[T any, R any](ctx context.Context, client *Client, feed string, v *async.Value[T], render func(T) R) {
	unsubscribe := v.Subscribe(func(u async.Update[T]) {
		b, err := encodeUpdate(feed, u, render)
		if err != nil {
			return
		}
		if !client.Enqueue(b) {
			client.hub.Unregister(client)
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		v.Close()
	}()
}

func streamUsers(ctx context.Context, client *Client, feed string, v *async.Value[[]user.User]) {
	stream(ctx, client, feed, v, dto.NewUserListResponse)
}

func streamSkills(ctx context.Context, client *Client, feed string, v *async.Value[[]skill.Skill]) {
	stream(ctx, client, feed, v, dto.NewSkillListResponse)
}

func streamCategories(ctx context.Context, client *Client, feed string, v *async.Value[[]category.Category]) {
	stream(ctx, client, feed, v, dto.NewCategoryListResponse)
}
