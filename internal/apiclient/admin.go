package apiclient

import (
	"context"
	"net/http"

	"votedesk/internal/domain"
)

type usersResponse struct {
	envelope
	Users      []domain.User `json:"users"`
	Pagination pagination    `json:"pagination"`
}

// UserUpdate is the admin-side edit of an account
type UserUpdate struct {
	IsActive *bool       `json:"isActive,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context, q domain.ListQuery) (domain.Page[domain.User], error) {
	var resp usersResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", q.Values(), nil, &resp); err != nil {
		return domain.Page[domain.User]{}, err
	}
	return toPage(resp.Users, resp.Pagination, q), nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, u UserUpdate) (*domain.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodPut, pathf("/api/admin/users/%s", id), nil, u, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathf("/api/admin/users/%s", id), nil, nil, nil)
}

// AssignAdmin promotes all userIDs in one request
func (c *Client) AssignAdmin(ctx context.Context, userIDs []string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/users/assign-admin", nil, map[string][]string{"userIds": userIDs}, nil)
}

// RemoveAdmin demotes all userIDs in one request
func (c *Client) RemoveAdmin(ctx context.Context, userIDs []string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/users/remove-admin", nil, map[string][]string{"userIds": userIDs}, nil)
}

// SendNotification returns how many recipients the API reached
func (c *Client) SendNotification(ctx context.Context, n domain.Notification) (int, error) {
	var resp struct {
		envelope
		SentCount int `json:"sentCount"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/notifications/send", nil, n, &resp); err != nil {
		return 0, err
	}
	return resp.SentCount, nil
}
