package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votedesk/internal/domain"
	"votedesk/pkg/logger"
)

type fakeResultsAPI struct {
	mu        sync.Mutex
	published []domain.Election
	results   map[string]*domain.ElectionResults
	listCalls int
	err       error
}

func (f *fakeResultsAPI) PublishedList(ctx context.Context) ([]domain.Election, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Election(nil), f.published...), nil
}

func (f *fakeResultsAPI) GetPublicResults(ctx context.Context, id string) (*domain.ElectionResults, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.results[id]
	if !ok {
		return nil, errors.New("not found")
	}
	c := *r
	c.Results = append([]domain.CandidateTally(nil), r.Results...)
	return &c, nil
}

func (f *fakeResultsAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func TestResultsFeed_RefreshWithoutCache(t *testing.T) {
	api := &fakeResultsAPI{published: []domain.Election{{ID: "e1", Title: "Ward 4"}}}
	feed := NewResultsFeed(api, nil, "test", logger.Nop())

	list, at := feed.Published()
	assert.Empty(t, list)
	assert.True(t, at.IsZero())

	require.NoError(t, feed.Refresh(context.Background()))
	list, at = feed.Published()
	require.Len(t, list, 1)
	assert.Equal(t, "e1", list[0].ID)
	assert.False(t, at.IsZero())
}

func TestResultsFeed_FailedRefreshKeepsList(t *testing.T) {
	api := &fakeResultsAPI{published: []domain.Election{{ID: "e1"}}}
	feed := NewResultsFeed(api, nil, "test", logger.Nop())
	require.NoError(t, feed.Refresh(context.Background()))

	api.mu.Lock()
	api.err = errors.New("down")
	api.mu.Unlock()

	assert.Error(t, feed.Refresh(context.Background()))
	list, _ := feed.Published()
	assert.Len(t, list, 1)
}

func TestResultsFeed_CachedListAndInvalidate(t *testing.T) {
	mr, cache := setupCache(t)
	api := &fakeResultsAPI{published: []domain.Election{{ID: "e1"}}}
	feed := NewResultsFeed(api, cache, "test", logger.Nop())
	ctx := context.Background()

	require.NoError(t, feed.Refresh(ctx))
	assert.Eventually(t, func() bool { return mr.Exists("prod:results:published") }, time.Second, 10*time.Millisecond)

	api.mu.Lock()
	api.published = append(api.published, domain.Election{ID: "e2"})
	api.mu.Unlock()

	require.NoError(t, feed.Refresh(ctx))
	list, _ := feed.Published()
	assert.Len(t, list, 1, "list should come from cache")
	assert.Equal(t, 1, api.calls())

	require.NoError(t, feed.Invalidate(ctx, "e2"))
	list, _ = feed.Published()
	assert.Len(t, list, 2)
	assert.Equal(t, 2, api.calls())
}

func TestResultsFeed_PublicResultsComputesShares(t *testing.T) {
	mr, cache := setupCache(t)
	api := &fakeResultsAPI{results: map[string]*domain.ElectionResults{
		"e1": {
			Election:   domain.Election{ID: "e1"},
			TotalVotes: 4,
			Results: []domain.CandidateTally{
				{Candidate: domain.Candidate{ID: "a"}, Votes: 1},
				{Candidate: domain.Candidate{ID: "b"}, Votes: 3},
			},
		},
	}}
	feed := NewResultsFeed(api, cache, "test", logger.Nop())
	ctx := context.Background()

	r, err := feed.PublicResults(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, r.Results, 2)
	assert.Equal(t, "b", r.Results[0].Candidate.ID)
	assert.True(t, r.Results[0].IsWinner)
	assert.InDelta(t, 75.0, r.Results[0].Share, 0.01)

	assert.Eventually(t, func() bool { return mr.Exists("prod:results:e1") }, time.Second, 10*time.Millisecond)

	cached, err := feed.PublicResults(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, cached.Results[0].IsWinner)
	assert.InDelta(t, 75.0, cached.Results[0].Share, 0.01)
}

func TestResultsFeed_Task(t *testing.T) {
	api := &fakeResultsAPI{published: []domain.Election{{ID: "e1"}}}
	feed := NewResultsFeed(api, nil, "test", logger.Nop())

	task := feed.Task(10 * time.Millisecond)
	task.Start(context.Background())
	defer task.Stop()

	assert.Eventually(t, func() bool { return api.calls() >= 2 }, time.Second, 5*time.Millisecond)
	list, _ := feed.Published()
	assert.Len(t, list, 1)
}
