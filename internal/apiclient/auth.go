package apiclient

import (
	"context"
	"net/http"

	"votedesk/internal/domain"
)

// Session is what a successful OTP verification returns
type Session struct {
	Token string
	User  domain.User
}

type sessionResponse struct {
	envelope
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type userResponse struct {
	envelope
	User domain.User `json:"user"`
}

// Login submits credentials; the API emails a login OTP.
// It returns the address the OTP was sent to.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		envelope
		Email string `json:"email"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &resp); err != nil {
		return "", err
	}
	if resp.Email == "" {
		resp.Email = email
	}
	return resp.Email, nil
}

// VerifyLogin exchanges the emailed OTP for a token
func (c *Client) VerifyLogin(ctx context.Context, email, otp string) (*Session, error) {
	var resp sessionResponse
	body := map[string]string{"email": email, "otp": otp}
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify-login", nil, body, &resp); err != nil {
		return nil, err
	}
	return &Session{Token: resp.Token, User: resp.User}, nil
}

// GenerateRegistrationOTP starts registration of a new account
func (c *Client) GenerateRegistrationOTP(ctx context.Context, r domain.Registration) error {
	return c.do(ctx, http.MethodPost, "/api/auth/generate-registration-otp", nil, r, nil)
}

// VerifyRegistration creates the account once the OTP is confirmed
func (c *Client) VerifyRegistration(ctx context.Context, r domain.Registration, otp string) (*Session, error) {
	body := struct {
		domain.Registration
		OTP string `json:"otp"`
	}{Registration: r, OTP: otp}

	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify-registration", nil, body, &resp); err != nil {
		return nil, err
	}
	return &Session{Token: resp.Token, User: resp.User}, nil
}

// Me rehydrates the user behind the current token
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ForgotPassword emails a password reset OTP
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", nil, map[string]string{"email": email}, nil)
}

// ResetPassword sets a new password using the reset OTP
func (c *Client) ResetPassword(ctx context.Context, email, otp, password string) error {
	body := map[string]string{"email": email, "otp": otp, "newPassword": password}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", nil, body, nil)
}
