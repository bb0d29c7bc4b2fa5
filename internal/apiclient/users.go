package apiclient

import (
	"context"
	"net/http"

	"votedesk/internal/domain"
)

func (c *Client) GetProfile(ctx context.Context) (*domain.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, p domain.ProfileUpdate) (*domain.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodPut, "/api/users/profile", nil, p, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}
