package apiclient

import (
	"context"
	"net/http"

	"votedesk/internal/domain"
)

func (c *Client) CheckStatus(ctx context.Context, electionID string) (*domain.VoteStatus, error) {
	var resp struct {
		envelope
		domain.VoteStatus
	}
	if err := c.do(ctx, http.MethodGet, pathf("/api/voting/check-status/%s", electionID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.VoteStatus, nil
}

// RequestPassword asks the API to email a one-time voting password
func (c *Client) RequestPassword(ctx context.Context, electionID, email, cardNumber string) error {
	body := map[string]string{
		"electionId":         electionID,
		"email":              email,
		"electionCardNumber": cardNumber,
	}
	return c.do(ctx, http.MethodPost, "/api/voting/request-password", nil, body, nil)
}

// VerifyCredentials unlocks the ballot with the emailed voting password
func (c *Client) VerifyCredentials(ctx context.Context, electionID, cardNumber, votingPassword string) (*domain.BallotPaper, error) {
	body := map[string]string{
		"electionId":         electionID,
		"electionCardNumber": cardNumber,
		"votingPassword":     votingPassword,
	}
	var resp struct {
		envelope
		domain.BallotPaper
	}
	if err := c.do(ctx, http.MethodPost, "/api/voting/verify-credentials", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.BallotPaper, nil
}

func (c *Client) CastVote(ctx context.Context, req domain.CastRequest) error {
	return c.do(ctx, http.MethodPost, "/api/voting/cast-vote", nil, req, nil)
}

// ViewVote discloses the already cast choice and counts the view
func (c *Client) ViewVote(ctx context.Context, electionID string) (*domain.Disclosure, error) {
	var resp struct {
		envelope
		domain.Disclosure
	}
	if err := c.do(ctx, http.MethodPost, pathf("/api/voting/view-vote/%s", electionID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Disclosure, nil
}
