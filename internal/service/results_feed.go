package service

import (
	"context"
	"sync"
	"time"

	"votedesk/internal/domain"
	"votedesk/internal/poller"
	"votedesk/internal/service/admin"
	"votedesk/pkg/logger"
	"votedesk/pkg/redis"
)

// ResultsAPI is the public results part of the REST client
type ResultsAPI interface {
	PublishedList(ctx context.Context) ([]domain.Election, error)
	GetPublicResults(ctx context.Context, id string) (*domain.ElectionResults, error)
}

// ResultsFeed keeps the published-results list fresh for the public pages.
// It is refreshed by a poller task and backed by the Redis cache when one
// is configured.
type ResultsFeed struct {
	api    ResultsAPI
	cache  *CacheService
	keys   *redis.KeyBuilder
	logger *logger.Logger

	mu        sync.RWMutex
	elections []domain.Election
	updatedAt time.Time
}

// NewResultsFeed creates an empty feed. cache may be nil.
func NewResultsFeed(api ResultsAPI, cache *CacheService, environment string, log *logger.Logger) *ResultsFeed {
	return &ResultsFeed{
		api:    api,
		cache:  cache,
		keys:   redis.NewKeyBuilder(environment),
		logger: log.Named("results_feed"),
	}
}

func (f *ResultsFeed) fetch(ctx context.Context) ([]domain.Election, error) {
	return GetWithCache(ctx, f.cache, f.keys.KeyPublishedResults(), redis.TTLPublishedResults, f.api.PublishedList)
}

func (f *ResultsFeed) apply(elections []domain.Election) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elections = elections
	f.updatedAt = time.Now()
}

// Refresh reloads the list once
func (f *ResultsFeed) Refresh(ctx context.Context) error {
	return poller.Refresh(f.fetch, f.apply)(ctx)
}

// Task refreshes the list every interval
func (f *ResultsFeed) Task(interval time.Duration) *poller.Task {
	return poller.New("results-feed", interval, poller.Refresh(f.fetch, f.apply), f.logger)
}

// Published returns the last loaded list and when it was loaded
func (f *ResultsFeed) Published() ([]domain.Election, time.Time) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.elections, f.updatedAt
}

// PublicResults returns the results of a published election with shares.
// Shares are not cached and are computed on every call.
func (f *ResultsFeed) PublicResults(ctx context.Context, id string) (*domain.ElectionResults, error) {
	r, err := GetWithCache(ctx, f.cache, f.keys.KeyElectionResults(id), redis.TTLElectionResults,
		func(ctx context.Context) (*domain.ElectionResults, error) {
			return f.api.GetPublicResults(ctx, id)
		})
	if err != nil {
		return nil, err
	}
	admin.ComputeShares(r)
	return r, nil
}

// Invalidate forgets cached data after electionID's results were published,
// then reloads the list.
func (f *ResultsFeed) Invalidate(ctx context.Context, electionID string) error {
	if err := f.cache.Invalidate(ctx, f.keys.KeyPublishedResults(), f.keys.KeyElectionResults(electionID)); err != nil {
		f.logger.WithError(err).Warn("Failed to invalidate results cache")
	}
	return f.Refresh(ctx)
}
