package auth

import (
	"context"
	"strings"
	"time"

	"votedesk/internal/apiclient"
	"votedesk/internal/domain"
	"votedesk/internal/session"
	"votedesk/internal/validation"
	apperrors "votedesk/pkg/errors"
	"votedesk/pkg/logger"
)

// AdminAPI is the admin OTP channel of the REST client
type AdminAPI interface {
	SendAdminOTP(ctx context.Context, email string) error
	VerifyAdminOTP(ctx context.Context, email, otp string) (*apiclient.Session, error)
	AdminMe(ctx context.Context) (*domain.User, error)
}

// AdminFlow drives the admin channel. Its token is kept apart from the
// user channel's, so signing out of one leaves the other intact.
type AdminFlow struct {
	api    AdminAPI
	tokens session.TokenStore
	now    func() time.Time
	logger *logger.Logger
}

// NewAdminFlow creates the admin channel flow
func NewAdminFlow(api AdminAPI, tokens session.TokenStore, log *logger.Logger) *AdminFlow {
	return &AdminFlow{
		api:    api,
		tokens: tokens,
		now:    time.Now,
		logger: log.Named("admin_auth"),
	}
}

// SendOTP emails an admin login OTP
func (f *AdminFlow) SendOTP(ctx context.Context, st *Store, email string) error {
	email = strings.TrimSpace(email)
	v := validation.Violations{}
	validation.Email("email", email, v)
	if err := v.Err(); err != nil {
		return err
	}

	st.Dispatch(Action{Type: ActionAuthStart})
	if err := f.api.SendAdminOTP(ctx, email); err != nil {
		st.Dispatch(Action{Type: ActionAuthFailure, Error: apperrors.MessageOf(err, "")})
		return err
	}
	st.Dispatch(Action{Type: ActionAuthPending})
	return nil
}

// VerifyOTP signs the session in on the admin channel. Accounts without the
// admin role are refused and no token is kept.
func (f *AdminFlow) VerifyOTP(ctx context.Context, st *Store, sid, email, otp string) (*domain.User, error) {
	v := validation.Violations{}
	validation.OTP("otp", otp, v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	st.Dispatch(Action{Type: ActionAuthStart})
	sess, err := f.api.VerifyAdminOTP(ctx, strings.TrimSpace(email), otp)
	if err != nil {
		st.Dispatch(Action{Type: ActionAuthFailure, Error: apperrors.MessageOf(err, "")})
		return nil, err
	}
	if !sess.User.IsAdmin() {
		f.logger.WithField("user_id", sess.User.ID).Warn("Admin login refused for non-admin account")
		st.Dispatch(Action{Type: ActionLogout})
		return nil, ErrNotAdmin
	}
	if err := f.tokens.Set(ctx, sid, session.ChannelAdmin, sess.Token); err != nil {
		f.logger.WithError(err).Error("Failed to store admin token")
		st.Dispatch(Action{Type: ActionAuthFailure, Error: apperrors.GenericMessage})
		return nil, err
	}

	user := sess.User
	st.Dispatch(Action{Type: ActionAuthSuccess, User: &user, Token: sess.Token})
	f.logger.WithField("user_id", user.ID).Info("Admin signed in")
	return &user, nil
}

// Me confirms the admin token is still accepted and still belongs to an admin
func (f *AdminFlow) Me(ctx context.Context, st *Store, sid string) (*domain.User, error) {
	token, err := f.tokens.Get(ctx, sid, session.ChannelAdmin)
	if err != nil {
		return nil, err
	}
	if token == "" {
		st.Dispatch(Action{Type: ActionLogout})
		return nil, ErrNotAuthenticated
	}
	if session.Expired(token, f.now()) {
		return nil, f.signOut(ctx, st, sid, ErrNotAuthenticated)
	}

	user, err := f.api.AdminMe(ctx)
	if err != nil {
		if apperrors.IsAuthFailure(err) {
			return nil, f.signOut(ctx, st, sid, err)
		}
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, f.signOut(ctx, st, sid, ErrNotAdmin)
	}
	st.Dispatch(Action{Type: ActionAuthSuccess, User: user, Token: token})
	return user, nil
}

// HandleAuthFailure clears the admin token when err is a 401/403
func (f *AdminFlow) HandleAuthFailure(ctx context.Context, st *Store, sid string, err error) bool {
	if !apperrors.IsAuthFailure(err) {
		return false
	}
	_ = f.signOut(ctx, st, sid, err)
	return true
}

// Logout forgets the admin token only
func (f *AdminFlow) Logout(ctx context.Context, st *Store, sid string) error {
	if err := f.tokens.Clear(ctx, sid, session.ChannelAdmin); err != nil {
		return err
	}
	st.Dispatch(Action{Type: ActionLogout})
	return nil
}

func (f *AdminFlow) signOut(ctx context.Context, st *Store, sid string, cause error) error {
	if err := f.tokens.Clear(ctx, sid, session.ChannelAdmin); err != nil {
		f.logger.WithError(err).Warn("Failed to clear admin token")
	}
	st.Dispatch(Action{Type: ActionLogout})
	return cause
}
