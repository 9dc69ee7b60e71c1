package ws

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"skill-swap/internal/delivery/http/middleware"
	"skill-swap/internal/search"
	"skill-swap/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
)

const (
	FeedUsers          = "users"
	FeedSkills         = "skills"
	FeedCategories     = "categories"
	FeedFavorites      = "favorites"
	FeedRecentContacts = "recent_contacts"
	FeedSkillTeachers  = "skill_teachers"
)

type Handler struct {
	hub    *Hub
	uc     usecase.DirectoryUsecase
	logger *log.Logger
}

func NewHandler(hub *Hub, uc usecase.DirectoryUsecase, logger *log.Logger) *Handler {
	return &Handler{hub: hub, uc: uc, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type feedRequest struct {
	feed     string
	owner    string
	skillID  string
	text     string
	criteria search.Criteria
}

// HandleFeed upgrades the connection and streams every update of the
// requested live query until the client goes away. The feed is chosen with
// ?feed= and narrowed with the same q, category and min_level parameters
// the HTTP search endpoints take.
func (h *Handler) HandleFeed(c fiber.Ctx) error {
	if h == nil || h.hub == nil || h.uc == nil {
		return fiber.ErrServiceUnavailable
	}

	req, err := parseFeedRequest(c)
	if err != nil {
		return err
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("[WS] upgrade error feed=%s err=%v", req.feed, err)
			}
			return
		}

		client := NewClient(h.hub, conn)
		h.hub.Register(client)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-client.Done()
			cancel()
		}()
		h.start(ctx, client, req)

		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}

func (h *Handler) start(ctx context.Context, client *Client, req feedRequest) {
	switch req.feed {
	case FeedUsers:
		streamUsers(ctx, client, req.feed, h.uc.SearchUsers(ctx, req.criteria))
	case FeedSkills:
		streamSkills(ctx, client, req.feed, h.uc.SearchSkills(ctx, req.criteria))
	case FeedCategories:
		streamCategories(ctx, client, req.feed, h.uc.SearchCategories(ctx, req.text))
	case FeedFavorites:
		streamUsers(ctx, client, req.feed, h.uc.FavoriteUsers(ctx, req.owner))
	case FeedRecentContacts:
		streamUsers(ctx, client, req.feed, h.uc.RecentContactUsers(ctx, req.owner))
	case FeedSkillTeachers:
		streamUsers(ctx, client, req.feed, h.uc.SkillTeachers(ctx, req.skillID))
	}
}

func parseFeedRequest(c fiber.Ctx) (feedRequest, error) {
	req := feedRequest{
		feed:    strings.TrimSpace(c.Query("feed")),
		skillID: strings.TrimSpace(c.Query("skill_id")),
		text:    c.Query("q"),
	}
	req.owner, _ = middleware.OwnerID(c)

	switch req.feed {
	case FeedUsers, FeedSkills:
		criteria, err := parseCriteria(c)
		if err != nil {
			return feedRequest{}, err
		}
		req.criteria = criteria
	case FeedCategories:
	case FeedFavorites, FeedRecentContacts:
		if req.owner == "" {
			return feedRequest{}, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
	case FeedSkillTeachers:
		if req.skillID == "" {
			return feedRequest{}, middleware.NewAppError(fiber.StatusBadRequest, "Missing skill_id", nil, nil)
		}
	default:
		return feedRequest{}, middleware.NewAppError(fiber.StatusBadRequest, "Unknown feed", nil, nil)
	}
	return req, nil
}

func parseCriteria(c fiber.Ctx) (search.Criteria, error) {
	criteria := search.Criteria{Text: c.Query("q"), CategoryID: c.Query("category")}
	if s := strings.TrimSpace(c.Query("min_level")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return search.Criteria{}, middleware.NewAppError(fiber.StatusBadRequest, "Invalid min_level", nil, nil)
		}
		criteria.MinLevel = n
	}
	return criteria, nil
}
