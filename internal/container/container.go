package container

import (
	"context"
	"time"

	"votedesk/internal/apiclient"
	"votedesk/internal/config"
	"votedesk/internal/location"
	"votedesk/internal/poller"
	"votedesk/internal/service"
	"votedesk/internal/service/admin"
	"votedesk/internal/service/auth"
	"votedesk/internal/service/voting"
	"votedesk/internal/session"
	"votedesk/internal/workspace"
	"votedesk/pkg/logger"
	"votedesk/pkg/redis"
)

// sweepInterval is how often idle workspaces and expired tokens are dropped
const sweepInterval = time.Minute

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	RedisClient *redis.Client
	Tokens      session.TokenStore
	Services    *service.Services
	Workspaces  *workspace.Registry
	Locations   *location.Table
	Debouncer   *admin.Debouncer

	userAPI  *apiclient.Client
	adminAPI *apiclient.Client
	tasks    []*poller.Task
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *logger.Logger) (*Container, error) {
	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Named("redis").Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding with in-memory sessions")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding with in-memory sessions")
	}

	locations, err := location.Default()
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		RedisClient: redisClient,
		Locations:   locations,
		Debouncer:   admin.NewDebouncer(cfg.SearchDebounce),
	}

	if redisClient != nil {
		c.Tokens = session.NewRedisStore(redisClient, cfg.SessionTTL)
	} else {
		memory := session.NewMemoryStore(cfg.SessionTTL)
		c.Tokens = memory
		c.tasks = append(c.tasks, poller.New("token-sweep", sweepInterval, func(ctx context.Context) error {
			if n := memory.Sweep(ctx); n > 0 {
				logger.WithField("count", n).Debug("Swept expired tokens")
			}
			return nil
		}, logger))
	}

	// One client per channel; the session id in each request's context picks the token
	base := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, logger.Named("api"))
	c.userAPI = base.WithTokenSourceFunc(session.ContextTokenSource(c.Tokens, session.ChannelUser))
	c.adminAPI = base.WithTokenSourceFunc(session.ContextTokenSource(c.Tokens, session.ChannelAdmin))

	var cache *service.CacheService
	if redisClient != nil {
		cache = service.NewCacheService(redisClient, logger.Named("cache").Logger)
	}

	c.Services = &service.Services{
		UserAuth:   auth.NewFlow(c.userAPI, c.Tokens, logger),
		AdminAuth:  auth.NewAdminFlow(c.adminAPI, c.Tokens, logger),
		Elections:  admin.NewElections(c.adminAPI, logger),
		Candidates: admin.NewCandidates(c.adminAPI, logger),
		Users:      admin.NewUsers(c.adminAPI, logger),
		Results:    service.NewResultsFeed(base, cache, cfg.Environment, logger),
		Cache:      cache,
	}

	c.Workspaces = workspace.NewRegistry(cfg.SessionTTL, func() *voting.Machine {
		return voting.NewMachine(c.userAPI, logger)
	}, logger)
	c.Workspaces.OnEvict(func(sid string) {
		c.Debouncer.ForgetPrefix(workspace.Key(sid, ""))
	})

	c.tasks = append(c.tasks,
		c.Services.Results.Task(cfg.PollInterval),
		c.Workspaces.Sweeper(sweepInterval),
	)

	return c, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// GetCacheService returns the cache service (nil if Redis is not available)
func (c *Container) GetCacheService() *service.CacheService {
	return c.Services.Cache
}

// Tasks returns the background tasks main starts and stops
func (c *Container) Tasks() []*poller.Task {
	return c.tasks
}
