package apiclient

import (
	"context"
	"net/http"

	"votedesk/internal/domain"
)

type adminResponse struct {
	envelope
	Token string      `json:"token"`
	Admin domain.User `json:"admin"`
}

// SendAdminOTP starts the admin login channel
func (c *Client) SendAdminOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/admin-auth/send-otp", nil, map[string]string{"email": email}, nil)
}

func (c *Client) VerifyAdminOTP(ctx context.Context, email, otp string) (*Session, error) {
	var resp adminResponse
	body := map[string]string{"email": email, "otp": otp}
	if err := c.do(ctx, http.MethodPost, "/api/admin-auth/verify-otp", nil, body, &resp); err != nil {
		return nil, err
	}
	return &Session{Token: resp.Token, User: resp.Admin}, nil
}

func (c *Client) AdminMe(ctx context.Context) (*domain.User, error) {
	var resp adminResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin-auth/me", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Admin, nil
}
