package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"skill-swap/internal/async"
	"skill-swap/internal/delivery/http/dto"
	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/domain/category"

	"github.com/gofiber/fiber/v3"
)

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatalf("send channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("no message delivered")
	}
	return nil
}

func TestHub_BroadcastReachesRegisteredClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	a, b := NewClient(hub, nil), NewClient(hub, nil)
	hub.Register(a)
	hub.Register(b)
	waitUntil(t, func() bool { return hub.ClientCount() == 2 })

	hub.Broadcast([]byte("hello"))
	if got := string(receive(t, a)); got != "hello" {
		t.Fatalf("client a got %q", got)
	}
	if got := string(receive(t, b)); got != "hello" {
		t.Fatalf("client b got %q", got)
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	slow := NewClient(hub, nil)
	hub.Register(slow)
	waitUntil(t, func() bool { return hub.ClientCount() == 1 })

	for i := 0; i <= sendBuffer; i++ {
		hub.Broadcast([]byte("x"))
	}
	waitUntil(t, func() bool { return hub.ClientCount() == 0 })
	if slow.Enqueue([]byte("late")) {
		t.Fatalf("expected enqueue to fail after disconnect")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := NewClient(hub, nil)
	hub.Register(c)
	waitUntil(t, func() bool { return hub.ClientCount() == 1 })

	cancel()
	<-done
	if _, ok := <-c.send; ok {
		t.Fatalf("expected send channel closed")
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("expected no clients after shutdown")
	}
}

func TestStream_ForwardsUpdatesAsFeedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	c := NewClient(hub, nil)
	v := async.New[[]category.Category]()
	streamCategories(ctx, c, FeedCategories, v)

	v.Publish([]category.Category{{ID: "c1", Name: "Music"}})

	var evt struct {
		Type string                 `json:"type"`
		Feed string                 `json:"feed"`
		Data []dto.CategoryResponse `json:"data"`
	}
	if err := json.Unmarshal(receive(t, c), &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt.Type != "update" || evt.Feed != FeedCategories || len(evt.Data) != 1 || evt.Data[0].Name != "Music" {
		t.Fatalf("unexpected event: %+v", evt)
	}

	cancel()
	select {
	case <-v.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("value not closed after ctx end")
	}
}

func TestParseFeedRequest(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c fiber.Ctx, err error) error {
		if appErr, ok := err.(*middleware.AppError); ok {
			return c.SendStatus(appErr.StatusCode)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}})
	app.Get("/feed", func(c fiber.Ctx) error {
		if c.Query("as") != "" {
			c.Locals(middleware.CtxUserIDKey, c.Query("as"))
		}
		req, err := parseFeedRequest(c)
		if err != nil {
			return err
		}
		return c.SendString(req.feed + "|" + req.owner + "|" + req.criteria.Text)
	})

	cases := []struct {
		name   string
		query  string
		status int
		body   string
	}{
		{"users with criteria", "feed=users&q=go&min_level=2", fiber.StatusOK, "users||go"},
		{"bad min level", "feed=skills&min_level=abc", fiber.StatusBadRequest, ""},
		{"favorites need owner", "feed=favorites", fiber.StatusUnauthorized, ""},
		{"favorites with owner", "feed=favorites&as=u1", fiber.StatusOK, "favorites|u1|"},
		{"teachers need skill", "feed=skill_teachers", fiber.StatusBadRequest, ""},
		{"unknown feed", "feed=jobs", fiber.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/feed?"+tc.query, nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
			if tc.body == "" {
				return
			}
			buf := make([]byte, 256)
			n, _ := resp.Body.Read(buf)
			if got := string(buf[:n]); got != tc.body {
				t.Fatalf("expected body %q, got %q", tc.body, got)
			}
		})
	}
}
