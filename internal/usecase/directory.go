package usecase

import (
	"context"
	"io"
	"log"
	"time"

	"skill-swap/internal/async"
	"skill-swap/internal/domain/category"
	"skill-swap/internal/domain/contact"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/infrastructure/cache"
	"skill-swap/internal/infrastructure/objectstore"
	"skill-swap/internal/relation"
	"skill-swap/internal/resolver"
	"skill-swap/internal/search"
)

// Relations is the slice of relation.Synchronizer the directory needs.
type Relations interface {
	Add(ctx context.Context, ownerID, targetID, note string) (bool, error)
	Remove(ctx context.Context, ownerID, targetID string) (bool, error)
	UpdateNote(ctx context.Context, ownerID, targetID, note string) (bool, error)
	IsMember(ctx context.Context, ownerID, targetID string) (bool, error)
	List(ctx context.Context, ownerID string) ([]string, error)
	Entries(ctx context.Context, ownerID string) ([]relation.Entry, error)
	Watch(ownerID string, fn func(ids []string)) (cancel func())
}

var _ Relations = (*relation.Synchronizer)(nil)

type TeachSkillInput struct {
	SkillID     string
	Title       string
	Level       int
	Category    string
	Description string
}

type LearnSkillInput struct {
	SkillID  string
	Title    string
	Priority int
}

// DirectoryUsecase is the read and write surface over users, skills,
// categories and relationship lists. Query methods return live values that
// keep updating until closed or until ctx ends.
type DirectoryUsecase interface {
	SearchUsers(ctx context.Context, c search.Criteria) *async.Value[[]user.User]
	SearchSkills(ctx context.Context, c search.Criteria) *async.Value[[]skill.Skill]
	SearchCategories(ctx context.Context, text string) *async.Value[[]category.Category]
	ListCategories(ctx context.Context) *async.Value[[]category.Category]
	GetUser(ctx context.Context, id string) *async.Value[user.User]
	GetSkill(ctx context.Context, id string) *async.Value[skill.Skill]
	GetCategory(ctx context.Context, id string) *async.Value[category.Category]
	FavoriteUsers(ctx context.Context, ownerID string) *async.Value[[]user.User]
	RecentContactUsers(ctx context.Context, ownerID string) *async.Value[[]user.User]
	SkillTeachers(ctx context.Context, skillID string) *async.Value[[]user.User]

	AddFavorite(ctx context.Context, ownerID, targetID, note string) (bool, error)
	RemoveFavorite(ctx context.Context, ownerID, targetID string) (bool, error)
	IsFavorite(ctx context.Context, ownerID, targetID string) (bool, error)
	UpdateFavoriteNote(ctx context.Context, ownerID, targetID, note string) (bool, error)
	FavoriteEntries(ctx context.Context, ownerID string) ([]contact.Favorite, error)
	AddRecentContact(ctx context.Context, ownerID, targetID string) (bool, error)
	RemoveRecentContact(ctx context.Context, ownerID, targetID string) (bool, error)
	RecentContactEntries(ctx context.Context, ownerID string) ([]contact.RecentContact, error)

	SaveUser(ctx context.Context, u user.User) (user.User, error)
	UpdateProfile(ctx context.Context, userID string, p user.Profile) error
	UpdateUserField(ctx context.Context, userID, field string, value any) error
	AddSkillToTeach(ctx context.Context, userID string, in TeachSkillInput) (string, error)
	RemoveSkillToTeach(ctx context.Context, userID, skillID string) error
	AddSkillToLearn(ctx context.Context, userID string, in LearnSkillInput) (string, error)
	RemoveSkillToLearn(ctx context.Context, userID, skillID string) error
	UploadProfileImage(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error)
	ProfileImageURL(ctx context.Context, userID string) (string, error)

	SaveSkill(ctx context.Context, s skill.Skill) (skill.Skill, error)
	DeleteSkill(ctx context.Context, id string) error
	SaveCategory(ctx context.Context, c category.Category) (category.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type DirectoryDeps struct {
	Users      user.Repository
	Skills     skill.Repository
	Categories category.Repository

	Favorites Relations
	Recents   Relations

	UserResolver *resolver.Resolver[user.User]
	Engine       *search.Engine

	// Cache holds presigned profile image URLs. Objects may be nil when no
	// object store is configured.
	Cache         cache.Cache
	Objects       objectstore.ObjectStore
	PresignExpiry time.Duration

	NewID  func() string
	Logger *log.Logger
}

type Directory struct {
	users      user.Repository
	skills     skill.Repository
	categories category.Repository
	favorites  Relations
	recents    Relations
	resolver   *resolver.Resolver[user.User]
	engine     *search.Engine

	cache         cache.Cache
	objects       objectstore.ObjectStore
	presignExpiry time.Duration

	newID  func() string
	logger *log.Logger
}

var _ DirectoryUsecase = (*Directory)(nil)

func NewDirectory(d DirectoryDeps) *Directory {
	out := &Directory{
		users:         d.Users,
		skills:        d.Skills,
		categories:    d.Categories,
		favorites:     d.Favorites,
		recents:       d.Recents,
		resolver:      d.UserResolver,
		engine:        d.Engine,
		cache:         d.Cache,
		objects:       d.Objects,
		presignExpiry: d.PresignExpiry,
		newID:         d.NewID,
		logger:        d.Logger,
	}
	if out.engine == nil {
		out.engine = search.NewEngine(d.Logger)
	}
	if out.presignExpiry <= 0 {
		out.presignExpiry = time.Hour
	}
	return out
}

func (d *Directory) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}
