package apiclient

import (
	"context"
	"net/http"

	"votedesk/internal/domain"
)

type electionResponse struct {
	envelope
	Election domain.Election `json:"election"`
}

type electionsResponse struct {
	envelope
	Elections  []domain.Election `json:"elections"`
	Pagination pagination        `json:"pagination"`
}

type resultsResponse struct {
	envelope
	Results domain.ElectionResults `json:"results"`
}

type candidatesResponse struct {
	envelope
	Candidates []domain.Candidate `json:"candidates"`
	Pagination pagination         `json:"pagination"`
}

func toPage[T any](items []T, p pagination, q domain.ListQuery) domain.Page[T] {
	page := domain.Page[T]{Items: items, Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages}
	if page.Page == 0 {
		page.Page = max(q.Page, 1)
	}
	if page.Limit == 0 {
		page.Limit = q.Limit
	}
	if page.Total == 0 {
		page.Total = len(items)
	}
	if page.TotalPages == 0 && len(items) > 0 {
		page.TotalPages = 1
	}
	return page
}

func (c *Client) ListElections(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Election], error) {
	var resp electionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/elections", q.Values(), nil, &resp); err != nil {
		return domain.Page[domain.Election]{}, err
	}
	return toPage(resp.Elections, resp.Pagination, q), nil
}

func (c *Client) GetElection(ctx context.Context, id string) (*domain.Election, error) {
	var resp electionResponse
	if err := c.do(ctx, http.MethodGet, pathf("/api/elections/%s", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Election, nil
}

func (c *Client) CreateElection(ctx context.Context, in domain.ElectionInput) (*domain.Election, error) {
	var resp electionResponse
	if err := c.do(ctx, http.MethodPost, "/api/elections", nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Election, nil
}

func (c *Client) UpdateElection(ctx context.Context, id string, in domain.ElectionInput) (*domain.Election, error) {
	var resp electionResponse
	if err := c.do(ctx, http.MethodPut, pathf("/api/elections/%s", id), nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Election, nil
}

func (c *Client) DeleteElection(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathf("/api/elections/%s", id), nil, nil, nil)
}

func (c *Client) ArchiveElection(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, pathf("/api/elections/%s/archive", id), nil, nil, nil)
}

func (c *Client) RestoreElection(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, pathf("/api/elections/%s/restore", id), nil, nil, nil)
}

func (c *Client) PermanentDeleteElection(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathf("/api/elections/%s/permanent", id), nil, nil, nil)
}

func (c *Client) PublishResults(ctx context.Context, id string) (*domain.Election, error) {
	var resp electionResponse
	if err := c.do(ctx, http.MethodPost, pathf("/api/elections/%s/publish-results", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Election, nil
}

func (c *Client) GetResults(ctx context.Context, id string) (*domain.ElectionResults, error) {
	var resp resultsResponse
	if err := c.do(ctx, http.MethodGet, pathf("/api/elections/%s/results", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Results, nil
}

func (c *Client) GetPublicResults(ctx context.Context, id string) (*domain.ElectionResults, error) {
	var resp resultsResponse
	if err := c.do(ctx, http.MethodGet, pathf("/api/elections/%s/results-public", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Results, nil
}

// PublishedList returns elections whose results are declared
func (c *Client) PublishedList(ctx context.Context) ([]domain.Election, error) {
	var resp electionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/elections/published-list", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Elections, nil
}

func (c *Client) ElectionCandidates(ctx context.Context, electionID string) ([]domain.Candidate, error) {
	var resp candidatesResponse
	if err := c.do(ctx, http.MethodGet, pathf("/api/elections/%s/candidates", electionID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Candidates, nil
}

// AssignCandidate gives candidateID a slot in electionID
func (c *Client) AssignCandidate(ctx context.Context, electionID, candidateID string) error {
	body := map[string]string{"candidateId": candidateID}
	return c.do(ctx, http.MethodPost, pathf("/api/elections/%s/candidates", electionID), nil, body, nil)
}

func (c *Client) RemoveCandidate(ctx context.Context, electionID, candidateID string) error {
	return c.do(ctx, http.MethodDelete, pathf("/api/elections/%s/candidates/%s", electionID, candidateID), nil, nil, nil)
}
