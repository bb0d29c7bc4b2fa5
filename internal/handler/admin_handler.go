package handler

import (
	"errors"
	"net/http"
	"strings"

	"votedesk/internal/service/admin"
	"votedesk/internal/service/auth"
	"votedesk/internal/session"
	"votedesk/internal/workspace"
	apperrors "votedesk/pkg/errors"
)

const adminHome = "/admin/elections"

type adminLoginForm struct {
	Email       string
	AwaitingOTP bool
}

// AdminLoginPage handles GET /admin/login. It asks for the email first and
// for the OTP once one was sent.
func (h *Handler) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	if ws.Admin.State().IsAuthenticated {
		redirect(w, r, adminHome)
		return
	}
	email := ws.PendingAdminLogin()
	if r.URL.Query().Get("restart") == "1" {
		ws.SetPendingAdminLogin("")
		email = ""
	}
	h.render(w, r, http.StatusOK, "admin_login", page{
		Title: "Admin sign in",
		Data:  adminLoginForm{Email: email, AwaitingOTP: email != ""},
	})
}

// AdminSendOTP handles POST /admin/login
func (h *Handler) AdminSendOTP(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	email := strings.TrimSpace(r.PostFormValue("email"))

	if err := h.c.Services.AdminAuth.SendOTP(r.Context(), ws.Admin, email); err != nil {
		h.renderFormError(w, r, "admin_login", "Admin sign in", err, adminLoginForm{Email: email})
		return
	}
	ws.SetPendingAdminLogin(email)
	h.flashRedirect(w, r, flashInfo, "We sent a 6-digit code to "+email+".", "/admin/login")
}

// AdminVerifyOTP handles POST /admin/login/verify
func (h *Handler) AdminVerifyOTP(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	email := ws.PendingAdminLogin()
	if email == "" {
		redirect(w, r, "/admin/login")
		return
	}

	_, err := h.c.Services.AdminAuth.VerifyOTP(r.Context(), ws.Admin, ws.ID, email, strings.TrimSpace(r.PostFormValue("otp")))
	switch {
	case err == nil:
		ws.SetPendingAdminLogin("")
		redirect(w, r, adminHome)
	case errors.Is(err, auth.ErrNotAdmin):
		ws.SetPendingAdminLogin("")
		h.flashRedirect(w, r, flashError, userMessage(err), "/admin/login")
	default:
		h.renderFormError(w, r, "admin_login", "Admin sign in", err, adminLoginForm{Email: email, AwaitingOTP: true})
	}
}

// AdminLogout handles POST /admin/logout. The user channel stays signed in.
func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	if err := h.c.Services.AdminAuth.Logout(r.Context(), ws.Admin, ws.ID); err != nil {
		h.log(r).WithError(err).Error("Failed to sign out admin")
		h.flashRedirect(w, r, flashError, apperrors.GenericMessage, adminHome)
		return
	}
	ws.Access.Clear()
	h.c.Debouncer.ForgetPrefix(workspace.Key(ws.ID, ""))
	h.flashRedirect(w, r, flashSuccess, "Signed out of the admin console.", "/admin/login")
}

// requireAdmin checks the admin token with the API on every request, so a
// revoked admin role takes effect immediately.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws := h.workspace(r)
		_, err := h.c.Services.AdminAuth.Me(r.Context(), ws.Admin, ws.ID)
		switch {
		case err == nil:
			next.ServeHTTP(w, r)
		case errors.Is(err, auth.ErrNotAuthenticated):
			h.flashRedirect(w, r, flashInfo, "Please sign in to the admin console.", loginPath(session.ChannelAdmin))
		case errors.Is(err, auth.ErrNotAdmin) || apperrors.IsAuthFailure(err):
			h.flashRedirect(w, r, flashError, "Your admin session has ended. Please sign in again.", loginPath(session.ChannelAdmin))
		default:
			h.log(r).WithError(err).Warn("Failed to verify admin session")
			h.render(w, r, http.StatusServiceUnavailable, "error", page{
				Title: "Unavailable",
				Flash: flash(flashError, userMessage(err)),
			})
		}
	})
}

// pager is the data of the "pager" template
type pager struct {
	Page       int
	TotalPages int
	Total      int
	Prev       string
	Next       string
}

// listing is a loaded page of an admin list screen
type listing[T any] struct {
	Items   []T
	Search  string
	Filters map[string]string
	Pager   pager
}

// loadList applies the request's paging, search and filters to res and loads it
func loadList[T any](r *http.Request, res *admin.Resource[T], filterKeys ...string) (listing[T], error) {
	q := r.URL.Query()
	res.Apply(q, filterKeys...)

	l := listing[T]{Search: strings.TrimSpace(q.Get("search")), Filters: make(map[string]string, len(filterKeys))}
	for _, k := range filterKeys {
		l.Filters[k] = q.Get(k)
	}
	if err := res.Load(r.Context()); err != nil {
		return l, err
	}

	meta := res.Meta()
	l.Items = res.Items()
	l.Pager = pager{Page: meta.Page, TotalPages: meta.TotalPages, Total: meta.Total}
	if meta.HasPrev() {
		l.Pager.Prev = res.Link(meta.Page - 1)
	}
	if meta.HasNext() {
		l.Pager.Next = res.Link(meta.Page + 1)
	}
	return l, nil
}

// settle holds a live search request for the debounce window. It returns
// false, having answered 204, when a newer keystroke superseded it.
func (h *Handler) settle(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("live") != "1" {
		return true
	}
	key := workspace.Key(session.IDFromContext(r.Context()), "search", r.URL.Path)
	latest, err := h.c.Debouncer.Wait(r.Context(), key)
	if err != nil || !latest {
		w.WriteHeader(http.StatusNoContent)
		return false
	}
	return true
}

// renderList renders a list page, with the load failure as a flash
func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, name, title string, data interface{}, err error) {
	if err != nil {
		if h.authFailed(w, r, session.ChannelAdmin, err) {
			return
		}
		h.render(w, r, http.StatusOK, name, page{Title: title, Flash: flash(flashError, userMessage(err)), Data: data})
		return
	}
	h.render(w, r, http.StatusOK, name, page{Title: title, Data: data})
}

// adminAction finishes a destructive admin post: ask for confirmation, report
// the failure, or redirect with the success message.
func (h *Handler) adminAction(w http.ResponseWriter, r *http.Request, err error, prompt, done, back string) {
	switch {
	case err == nil:
		h.flashRedirect(w, r, flashSuccess, done, back)
	case errors.Is(err, admin.ErrConfirmationRequired):
		h.askConfirmation(w, r, prompt, back)
	default:
		h.fail(w, r, session.ChannelAdmin, err, back)
	}
}
