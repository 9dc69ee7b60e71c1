package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"skill-swap/internal/codec"
	"skill-swap/internal/config"
	"skill-swap/internal/database/migration"
	dbpostgres "skill-swap/internal/database/postgres"
	"skill-swap/internal/database/seeder"
	"skill-swap/internal/delivery/http/handler"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/infrastructure/cache"
	"skill-swap/internal/infrastructure/objectstore"
	"skill-swap/internal/mirror"
	"skill-swap/internal/relation"
	"skill-swap/internal/repository"
	"skill-swap/internal/resolver"
	"skill-swap/internal/search"
	"skill-swap/internal/store"
	"skill-swap/internal/store/memstore"
	"skill-swap/internal/store/pgstore"
	"skill-swap/internal/usecase"
	"skill-swap/internal/ws"
)

// MigrationsDir is resolved relative to the working directory.
const MigrationsDir = "migrations"

type closableStore interface {
	store.Store
	Close() error
}

// Container builds every long-lived component once and hands out
// references. Nothing in it is a package-level singleton.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB      *dbpostgres.Pool
	Store   closableStore
	pgStore *pgstore.Store

	Cache   cache.Cache
	Redis   *cache.Redis
	Objects objectstore.ObjectStore
	Mirror  *mirror.Pool

	Users      *repository.StoreUserRepository
	Skills     *repository.StoreSkillRepository
	Categories *repository.StoreCategoryRepository
	Favorites  *relation.Synchronizer
	Recents    *relation.Synchronizer

	Directory *usecase.Directory
	Hub       *ws.Hub

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initStore(); err != nil {
		return nil, err
	}
	c.initCache()
	c.initObjects()

	c.Mirror = mirror.NewPool(cfg.Relations.MirrorWorkers, cfg.Relations.MirrorBuffer, cfg.Relations.MirrorTimeout, logger)
	c.Mirror.SetRateLimit(cfg.Relations.MirrorRateLimit)

	c.Users = repository.NewStoreUserRepository(c.Store)
	c.Skills = repository.NewStoreSkillRepository(c.Store)
	c.Categories = repository.NewStoreCategoryRepository(c.Store)

	c.Favorites = relation.NewSynchronizer(relation.Favorites, c.Cache, c.Store,
		relation.WithMirror(c.Mirror), relation.WithLogger(logger))
	c.Recents = relation.NewSynchronizer(relation.RecentContacts, c.Cache, c.Store,
		relation.WithMirror(c.Mirror), relation.WithLogger(logger), relation.WithCap(cfg.Relations.RecentCap))

	users := resolver.New[user.User](c.Store, "user", repository.UserPath, codec.DecodeUser,
		resolver.WithTimeout[user.User](cfg.Resolver.Timeout),
		resolver.WithLogger[user.User](logger),
	)

	c.Directory = usecase.NewDirectory(usecase.DirectoryDeps{
		Users:         c.Users,
		Skills:        c.Skills,
		Categories:    c.Categories,
		Favorites:     c.Favorites,
		Recents:       c.Recents,
		UserResolver:  users,
		Engine:        search.NewEngine(logger),
		Cache:         c.Cache,
		Objects:       c.Objects,
		PresignExpiry: cfg.ObjectStore.PresignExpiry,
		NewID:         c.Store.NewID,
		Logger:        logger,
	})
	c.Hub = ws.NewHub(logger)

	return c, nil
}

func (c *Container) initStore() error {
	if c.Config.Store.Driver != config.StoreDriverPostgres {
		c.Store = memstore.New(c.Logger)
		c.Logger.Printf("[Store] using in-memory tree")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, c.Config.Database, c.Config.App.AppName)
	if err != nil {
		return err
	}
	c.DB = db
	c.pgStore = pgstore.New(db, db, c.Logger)
	c.Store = c.pgStore
	return nil
}

func (c *Container) initCache() {
	if !c.Config.Redis.Enabled() {
		c.Cache = cache.NewMemory()
		c.Logger.Printf("[Cache] REDIS_HOST not set, relationship lists kept in memory")
		return
	}
	c.Redis = cache.NewRedis(c.Config.Redis, c.Logger)
	c.Cache = c.Redis
}

func (c *Container) initObjects() {
	objects, err := objectstore.NewMinioStore(c.Config.ObjectStore, c.Logger)
	switch {
	case errors.Is(err, objectstore.ErrNotConfigured):
		c.Logger.Printf("[ObjectStore] not configured, profile image upload disabled")
	case err != nil:
		c.Logger.Printf("[ObjectStore] unavailable, profile image upload disabled: %v", err)
	default:
		c.Objects = objects
	}
}

// Migrate applies SQL migrations and verifies the tree table. It is a no-op
// for the in-memory store.
func (c *Container) Migrate(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	r := migration.Runner{Dir: MigrationsDir, Logger: c.Logger}
	if err := r.Run(ctx, c.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return migration.VerifyColumns(ctx, c.DB, pgstore.Table, "root", "key", "doc", "updated_at")
}

func (c *Container) Seed(ctx context.Context) error {
	r := seeder.Runner{Seeders: seeder.Defaults(c.Categories, c.Cache, c.Logger), Logger: c.Logger}
	return r.Run(ctx)
}

// Start launches the background workers: store change listener, mirror
// pool, WebSocket hub and the catalog broadcaster.
func (c *Container) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if c.pgStore != nil {
		c.pgStore.Start(ctx)
	}

	results := c.Mirror.Run(ctx)
	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		mirror.Drain(results, c.Logger)
	}()
	go func() {
		defer c.wg.Done()
		c.Hub.Run(ctx)
	}()

	ws.BroadcastCategories(ctx, c.Hub, c.Directory)
}

func (c *Container) HealthChecks() map[string]handler.Check {
	checks := map[string]handler.Check{
		"store": func(ctx context.Context) error {
			_, err := c.Store.Get(ctx, "/categories")
			return err
		},
	}
	if c.DB != nil {
		checks["database"] = c.DB.Ping
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Ping
	}
	return checks
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	// Queued mirror writes finish before the workers' context ends.
	if c.Mirror != nil {
		c.Mirror.Close()
		c.Mirror.Wait()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
