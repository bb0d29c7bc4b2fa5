package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"votedesk/internal/apiclient"
	"votedesk/internal/domain"
	"votedesk/internal/session"
	"votedesk/internal/validation"
	apperrors "votedesk/pkg/errors"
	"votedesk/pkg/logger"
)

// DashboardPath is where a successful login lands
const DashboardPath = "/dashboard"

var (
	ErrNotAuthenticated = errors.New("auth: not signed in")
	ErrNotAdmin         = errors.New("auth: account is not an admin")
)

// API is the part of the REST client the user channel needs
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	VerifyLogin(ctx context.Context, email, otp string) (*apiclient.Session, error)
	GenerateRegistrationOTP(ctx context.Context, r domain.Registration) error
	VerifyRegistration(ctx context.Context, r domain.Registration, otp string) (*apiclient.Session, error)
	Me(ctx context.Context) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, password string) error
	UpdateProfile(ctx context.Context, p domain.ProfileUpdate) (*domain.User, error)
}

// Flow drives the user channel. It is stateless; per-session state lives
// in the Store passed to each call.
type Flow struct {
	api    API
	tokens session.TokenStore
	now    func() time.Time
	logger *logger.Logger
}

// NewFlow creates the user channel flow
func NewFlow(api API, tokens session.TokenStore, log *logger.Logger) *Flow {
	return &Flow{
		api:    api,
		tokens: tokens,
		now:    time.Now,
		logger: log.Named("auth"),
	}
}

func (f *Flow) fail(st *Store, err error) error {
	st.Dispatch(Action{Type: ActionAuthFailure, Error: apperrors.MessageOf(err, "")})
	return err
}

// Login submits credentials and returns the address awaiting the OTP
func (f *Flow) Login(ctx context.Context, st *Store, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validation.Login(email, password); err != nil {
		return "", err
	}

	st.Dispatch(Action{Type: ActionAuthStart})
	pending, err := f.api.Login(ctx, email, password)
	if err != nil {
		return "", f.fail(st, err)
	}
	st.Dispatch(Action{Type: ActionAuthPending})
	return pending, nil
}

// VerifyLoginOTP completes a login. On success the token is stored for the
// session and the redirect target is returned.
func (f *Flow) VerifyLoginOTP(ctx context.Context, st *Store, sid, email, otp string) (string, error) {
	v := validation.Violations{}
	validation.OTP("otp", otp, v)
	if err := v.Err(); err != nil {
		return "", err
	}

	st.Dispatch(Action{Type: ActionAuthStart})
	sess, err := f.api.VerifyLogin(ctx, email, otp)
	if err != nil {
		return "", f.fail(st, err)
	}
	if err := f.signIn(ctx, st, sid, sess); err != nil {
		return "", err
	}
	f.logger.WithField("user_id", sess.User.ID).Info("User signed in")
	return DashboardPath, nil
}

// Register validates the form and asks the API to email a registration OTP
func (f *Flow) Register(ctx context.Context, st *Store, r domain.Registration) error {
	r.Email = strings.TrimSpace(r.Email)
	if err := validation.Registration(r, f.now()); err != nil {
		return err
	}

	st.Dispatch(Action{Type: ActionAuthStart})
	if err := f.api.GenerateRegistrationOTP(ctx, r); err != nil {
		return f.fail(st, err)
	}
	st.Dispatch(Action{Type: ActionAuthPending})
	return nil
}

// VerifyRegistration creates the account and signs it in
func (f *Flow) VerifyRegistration(ctx context.Context, st *Store, sid string, r domain.Registration, otp string) (string, error) {
	v := validation.Violations{}
	validation.OTP("otp", otp, v)
	if err := v.Err(); err != nil {
		return "", err
	}

	st.Dispatch(Action{Type: ActionAuthStart})
	sess, err := f.api.VerifyRegistration(ctx, r, otp)
	if err != nil {
		return "", f.fail(st, err)
	}
	if err := f.signIn(ctx, st, sid, sess); err != nil {
		return "", err
	}
	f.logger.WithField("user_id", sess.User.ID).Info("User registered")
	return DashboardPath, nil
}

func (f *Flow) signIn(ctx context.Context, st *Store, sid string, sess *apiclient.Session) error {
	if err := f.tokens.Set(ctx, sid, session.ChannelUser, sess.Token); err != nil {
		f.logger.WithError(err).Error("Failed to store session token")
		return f.fail(st, apperrors.NewInternalError(apperrors.GenericMessage, err))
	}
	user := sess.User
	st.Dispatch(Action{Type: ActionAuthSuccess, User: &user, Token: sess.Token})
	return nil
}

// Rehydrate restores the session's user from its stored token. Expired or
// rejected tokens are cleared and the store is logged out.
func (f *Flow) Rehydrate(ctx context.Context, st *Store, sid string) (*domain.User, error) {
	token, err := f.tokens.Get(ctx, sid, session.ChannelUser)
	if err != nil {
		return nil, err
	}
	if token == "" {
		st.Dispatch(Action{Type: ActionLogout})
		return nil, ErrNotAuthenticated
	}
	if session.Expired(token, f.now()) {
		f.logger.Debug("Dropping expired token")
		return nil, f.signOut(ctx, st, sid, ErrNotAuthenticated)
	}

	st.Dispatch(Action{Type: ActionAuthStart})
	user, err := f.api.Me(ctx)
	if err != nil {
		if apperrors.IsAuthFailure(err) {
			return nil, f.signOut(ctx, st, sid, err)
		}
		return nil, f.fail(st, err)
	}
	st.Dispatch(Action{Type: ActionAuthSuccess, User: user, Token: token})
	return user, nil
}

// HandleAuthFailure logs the session out when err is a 401/403 from the API.
// It reports whether it did.
func (f *Flow) HandleAuthFailure(ctx context.Context, st *Store, sid string, err error) bool {
	if !apperrors.IsAuthFailure(err) {
		return false
	}
	_ = f.signOut(ctx, st, sid, err)
	return true
}

func (f *Flow) signOut(ctx context.Context, st *Store, sid string, cause error) error {
	if err := f.tokens.Clear(ctx, sid, session.ChannelUser); err != nil {
		f.logger.WithError(err).Warn("Failed to clear session token")
	}
	st.Dispatch(Action{Type: ActionLogout})
	return cause
}

// ForgotPassword emails a reset OTP
func (f *Flow) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	v := validation.Violations{}
	validation.Email("email", email, v)
	if err := v.Err(); err != nil {
		return err
	}
	return f.api.ForgotPassword(ctx, email)
}

// ResetPassword sets a new password with the emailed OTP
func (f *Flow) ResetPassword(ctx context.Context, email, otp, password, confirm string) error {
	email = strings.TrimSpace(email)
	if err := validation.PasswordReset(email, otp, password, confirm); err != nil {
		return err
	}
	return f.api.ResetPassword(ctx, email, otp, password)
}

// UpdateProfile saves the profile form
func (f *Flow) UpdateProfile(ctx context.Context, st *Store, p domain.ProfileUpdate) (*domain.User, error) {
	if err := validation.Profile(p); err != nil {
		return nil, err
	}

	st.Dispatch(Action{Type: ActionAuthStart})
	user, err := f.api.UpdateProfile(ctx, p)
	if err != nil {
		return nil, f.fail(st, err)
	}
	st.Dispatch(Action{Type: ActionUpdateUser, User: user})
	return user, nil
}

// Logout forgets the session's user token
func (f *Flow) Logout(ctx context.Context, st *Store, sid string) error {
	if err := f.tokens.Clear(ctx, sid, session.ChannelUser); err != nil {
		return err
	}
	st.Dispatch(Action{Type: ActionLogout})
	return nil
}
