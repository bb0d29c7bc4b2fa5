package auth

import (
	"context"

	"votedesk/internal/apiclient"
	"votedesk/internal/domain"
)

type fakeAPI struct {
	calls []string

	loginErr    error
	verifyErr   error
	session     *apiclient.Session
	me          *domain.User
	meErr       error
	registerErr error
	profile     *domain.User
	adminMe     *domain.User
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (string, error) {
	f.calls = append(f.calls, "login")
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return email, nil
}

func (f *fakeAPI) VerifyLogin(_ context.Context, _, _ string) (*apiclient.Session, error) {
	f.calls = append(f.calls, "verify-login")
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.session, nil
}

func (f *fakeAPI) GenerateRegistrationOTP(_ context.Context, _ domain.Registration) error {
	f.calls = append(f.calls, "generate-registration-otp")
	return f.registerErr
}

func (f *fakeAPI) VerifyRegistration(_ context.Context, _ domain.Registration, _ string) (*apiclient.Session, error) {
	f.calls = append(f.calls, "verify-registration")
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.session, nil
}

func (f *fakeAPI) Me(_ context.Context) (*domain.User, error) {
	f.calls = append(f.calls, "me")
	return f.me, f.meErr
}

func (f *fakeAPI) ForgotPassword(_ context.Context, _ string) error {
	f.calls = append(f.calls, "forgot-password")
	return nil
}

func (f *fakeAPI) ResetPassword(_ context.Context, _, _, _ string) error {
	f.calls = append(f.calls, "reset-password")
	return nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, _ domain.ProfileUpdate) (*domain.User, error) {
	f.calls = append(f.calls, "update-profile")
	return f.profile, nil
}

func (f *fakeAPI) SendAdminOTP(_ context.Context, _ string) error {
	f.calls = append(f.calls, "admin-send-otp")
	return nil
}

func (f *fakeAPI) VerifyAdminOTP(_ context.Context, _, _ string) (*apiclient.Session, error) {
	f.calls = append(f.calls, "admin-verify-otp")
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.session, nil
}

func (f *fakeAPI) AdminMe(_ context.Context) (*domain.User, error) {
	f.calls = append(f.calls, "admin-me")
	return f.adminMe, f.meErr
}
