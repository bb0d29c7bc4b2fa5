package handler

import (
	"errors"
	"net/http"
	"strings"

	"votedesk/internal/domain"
	"votedesk/internal/location"
	"votedesk/internal/service/auth"
	"votedesk/internal/session"
	"votedesk/internal/validation"
	apperrors "votedesk/pkg/errors"
)

type loginForm struct {
	Email string
}

// LoginPage handles GET /login
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.workspace(r).User.State().IsAuthenticated {
		redirect(w, r, auth.DashboardPath)
		return
	}
	h.render(w, r, http.StatusOK, "login", page{Title: "Sign in", Data: loginForm{}})
}

// Login handles POST /login, the first step of the OTP login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	email := strings.TrimSpace(r.PostFormValue("email"))

	pending, err := h.c.Services.UserAuth.Login(r.Context(), ws.User, email, r.PostFormValue("password"))
	if err != nil {
		h.renderFormError(w, r, "login", "Sign in", err, loginForm{Email: email})
		return
	}
	if pending == "" {
		pending = email
	}
	ws.SetPendingLogin(pending)
	h.flashRedirect(w, r, flashInfo, "We sent a 6-digit code to "+pending+".", "/login/verify")
}

// VerifyLoginPage handles GET /login/verify
func (h *Handler) VerifyLoginPage(w http.ResponseWriter, r *http.Request) {
	email := h.workspace(r).PendingLogin()
	if email == "" {
		redirect(w, r, "/login")
		return
	}
	h.render(w, r, http.StatusOK, "login_verify", page{Title: "Enter code", Data: loginForm{Email: email}})
}

// VerifyLogin handles POST /login/verify
func (h *Handler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	email := ws.PendingLogin()
	if email == "" {
		redirect(w, r, "/login")
		return
	}

	target, err := h.c.Services.UserAuth.VerifyLoginOTP(r.Context(), ws.User, ws.ID, email, strings.TrimSpace(r.PostFormValue("otp")))
	if err != nil {
		h.renderFormError(w, r, "login_verify", "Enter code", err, loginForm{Email: email})
		return
	}
	ws.SetPendingLogin("")
	redirect(w, r, target)
}

// renderFormError re-renders a form page with the failure of its submission.
// Field problems are shown inline, anything else as a message on top.
func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, name, title string, err error, form interface{}) {
	if fields := violations(err); fields != nil {
		h.render(w, r, http.StatusUnprocessableEntity, name, page{Title: title, Errors: fields, Data: form})
		return
	}
	h.render(w, r, http.StatusOK, name, page{
		Title: title,
		Flash: flash(flashError, userMessage(err)),
		Data:  form,
	})
}

type registerForm struct {
	domain.Registration
}

func registrationFromForm(r *http.Request) domain.Registration {
	return domain.Registration{
		FullName:        strings.TrimSpace(r.PostFormValue("fullName")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Mobile:          strings.TrimSpace(r.PostFormValue("mobile")),
		DateOfBirth:     strings.TrimSpace(r.PostFormValue("dateOfBirth")),
		Gender:          r.PostFormValue("gender"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
}

// RegisterPage handles GET /register
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", page{Title: "Register", Data: registerForm{}})
}

// Register handles POST /register. On success the code entry form is shown
// right away; the form itself waits in the workspace.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	reg := registrationFromForm(r)

	if err := h.c.Services.UserAuth.Register(r.Context(), ws.User, reg); err != nil {
		reg.Password, reg.ConfirmPassword = "", ""
		h.renderFormError(w, r, "register", "Register", err, registerForm{reg})
		return
	}
	ws.SetPendingRegistration(&reg)
	h.render(w, r, http.StatusOK, "register_verify", page{
		Title: "Verify your email",
		Flash: flash(flashInfo, "We sent a 6-digit code to "+reg.Email+"."),
		Data:  loginForm{Email: reg.Email},
	})
}

// VerifyRegistration handles POST /register/verify
func (h *Handler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	reg := ws.PendingRegistration()
	if reg == nil {
		h.flashRedirect(w, r, flashError, "Your registration has expired. Please fill in the form again.", "/register")
		return
	}

	target, err := h.c.Services.UserAuth.VerifyRegistration(r.Context(), ws.User, ws.ID, *reg, strings.TrimSpace(r.PostFormValue("otp")))
	if err != nil {
		h.renderFormError(w, r, "register_verify", "Verify your email", err, loginForm{Email: reg.Email})
		return
	}
	ws.SetPendingRegistration(nil)
	h.flashRedirect(w, r, flashSuccess, "Welcome! Complete your profile to be able to vote.", target)
}

// ForgotPasswordPage handles GET /forgot-password
func (h *Handler) ForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "forgot_password", page{Title: "Forgot password", Data: loginForm{}})
}

// ForgotPassword handles POST /forgot-password
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	if err := h.c.Services.UserAuth.ForgotPassword(r.Context(), email); err != nil {
		h.renderFormError(w, r, "forgot_password", "Forgot password", err, loginForm{Email: email})
		return
	}
	h.workspace(r).SetResetEmail(email)
	h.flashRedirect(w, r, flashInfo, "If the address is registered, a reset code is on its way.", "/reset-password")
}

// ResetPasswordPage handles GET /reset-password
func (h *Handler) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "reset_password", page{
		Title: "Reset password",
		Data:  loginForm{Email: h.workspace(r).ResetEmail()},
	})
}

// ResetPassword handles POST /reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	email := strings.TrimSpace(r.PostFormValue("email"))
	err := h.c.Services.UserAuth.ResetPassword(r.Context(), email,
		strings.TrimSpace(r.PostFormValue("otp")), r.PostFormValue("password"), r.PostFormValue("confirmPassword"))
	if err != nil {
		h.renderFormError(w, r, "reset_password", "Reset password", err, loginForm{Email: email})
		return
	}
	ws.SetResetEmail("")
	h.flashRedirect(w, r, flashSuccess, "Your password has been reset. Please sign in.", "/login")
}

// Logout handles POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	if err := h.c.Services.UserAuth.Logout(r.Context(), ws.User, ws.ID); err != nil {
		h.log(r).WithError(err).Error("Failed to sign out")
		h.flashRedirect(w, r, flashError, apperrors.GenericMessage, auth.DashboardPath)
		return
	}
	ws.ClearUser()
	h.flashRedirect(w, r, flashSuccess, "You have been signed out.", "/login")
}

// requireUser lets a request through only for a signed-in voter. A session
// that lost its in-memory state is restored from the stored token.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws := h.workspace(r)
		if ws.User.State().IsAuthenticated {
			next.ServeHTTP(w, r)
			return
		}

		_, err := h.c.Services.UserAuth.Rehydrate(r.Context(), ws.User, ws.ID)
		switch {
		case err == nil:
			next.ServeHTTP(w, r)
		case errors.Is(err, auth.ErrNotAuthenticated) || apperrors.IsAuthFailure(err):
			ws.ClearUser()
			h.flashRedirect(w, r, flashInfo, "Please sign in to continue.", loginPath(session.ChannelUser))
		default:
			h.log(r).WithError(err).Warn("Failed to restore session")
			h.render(w, r, http.StatusServiceUnavailable, "error", page{
				Title: "Unavailable",
				Flash: flash(flashError, userMessage(err)),
			})
		}
	})
}

type dashboardData struct {
	User     *domain.User
	Complete bool
	Missing  []string
}

// Dashboard handles GET /dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := h.workspace(r).User.State().User
	h.render(w, r, http.StatusOK, "dashboard", page{
		Title: "Dashboard",
		Data: dashboardData{
			User:     user,
			Complete: user.IsProfileComplete(),
			Missing:  user.MissingProfileFields(),
		},
	})
}

type profileForm struct {
	domain.ProfileUpdate
	Location locationField
	Missing  []string
}

func profileFrom(u *domain.User) domain.ProfileUpdate {
	return domain.ProfileUpdate{
		FullName:       u.FullName,
		Mobile:         u.Mobile,
		Gender:         u.Gender,
		Address:        u.Address,
		CurrentAddress: u.CurrentAddress,
		State:          u.State,
		District:       u.District,
		Taluka:         u.Taluka,
		City:           u.City,
		VoterID:        u.VoterID,
		Photo:          u.Photo,
	}
}

// ProfilePage handles GET /profile
func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user := h.workspace(r).User.State().User
	p := profileFrom(user)
	h.render(w, r, http.StatusOK, "profile", page{
		Title: "Profile",
		Data: profileForm{
			ProfileUpdate: p,
			Location: h.locationField(profileLocation, location.Cascade{
				State: p.State, District: p.District, Taluka: p.Taluka, Place: p.City,
			}),
			Missing: user.MissingProfileFields(),
		},
	})
}

// UpdateProfile handles POST /profile. A post from the address dropdowns
// only refreshes their options.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	cascade := cascadeFromForm(r, profileLocation)
	p := domain.ProfileUpdate{
		FullName:       strings.TrimSpace(r.PostFormValue("fullName")),
		Mobile:         strings.TrimSpace(r.PostFormValue("mobile")),
		Gender:         r.PostFormValue("gender"),
		Address:        strings.TrimSpace(r.PostFormValue("address")),
		CurrentAddress: strings.TrimSpace(r.PostFormValue("currentAddress")),
		State:          cascade.State,
		District:       cascade.District,
		Taluka:         cascade.Taluka,
		City:           cascade.Place,
		VoterID:        validation.NormalizeElectionCard(r.PostFormValue("voterId")),
		Photo:          strings.TrimSpace(r.PostFormValue("photo")),
	}
	form := profileForm{
		ProfileUpdate: p,
		Location:      h.locationField(profileLocation, cascade),
		Missing:       ws.User.State().User.MissingProfileFields(),
	}

	if r.PostFormValue("cascade") != "" {
		h.render(w, r, http.StatusOK, "profile", page{Title: "Profile", Data: form})
		return
	}

	if _, err := h.c.Services.UserAuth.UpdateProfile(r.Context(), ws.User, p); err != nil {
		if h.authFailed(w, r, session.ChannelUser, err) {
			return
		}
		h.renderFormError(w, r, "profile", "Profile", err, form)
		return
	}
	h.flashRedirect(w, r, flashSuccess, "Profile saved.", "/profile")
}
