package apiclient

import (
	"context"
	"net/http"

	"votedesk/internal/domain"
)

type candidateResponse struct {
	envelope
	Candidate domain.Candidate `json:"candidate"`
}

func (c *Client) ListCandidates(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Candidate], error) {
	var resp candidatesResponse
	if err := c.do(ctx, http.MethodGet, "/api/candidates", q.Values(), nil, &resp); err != nil {
		return domain.Page[domain.Candidate]{}, err
	}
	return toPage(resp.Candidates, resp.Pagination, q), nil
}

func (c *Client) GetCandidate(ctx context.Context, id string) (*domain.Candidate, error) {
	var resp candidateResponse
	if err := c.do(ctx, http.MethodGet, pathf("/api/candidates/%s", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Candidate, nil
}

func (c *Client) CreateCandidate(ctx context.Context, in domain.CandidateInput) (*domain.Candidate, error) {
	var resp candidateResponse
	if err := c.do(ctx, http.MethodPost, "/api/candidates", nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Candidate, nil
}

func (c *Client) UpdateCandidate(ctx context.Context, id string, in domain.CandidateInput) (*domain.Candidate, error) {
	var resp candidateResponse
	if err := c.do(ctx, http.MethodPut, pathf("/api/candidates/%s", id), nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Candidate, nil
}

func (c *Client) DeleteCandidate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathf("/api/candidates/%s", id), nil, nil, nil)
}
