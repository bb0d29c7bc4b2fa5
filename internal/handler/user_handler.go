package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"votedesk/internal/domain"
	"votedesk/internal/session"
)

const (
	usersHome  = "/admin/users"
	accessHome = "/admin/access"
)

// Users handles GET /admin/users
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	if !h.settle(w, r) {
		return
	}
	l, err := loadList(r, h.c.Services.Users.List(), "role", "isActive")
	h.renderList(w, r, "admin_users", "Users", l, err)
}

// SetUserActive handles POST /admin/users/{id}/active
func (h *Handler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	active, err := strconv.ParseBool(r.PostFormValue("active"))
	if err != nil {
		h.flashRedirect(w, r, flashError, "Unknown account state.", usersHome)
		return
	}
	u, err := h.c.Services.Users.SetActive(r.Context(), chi.URLParam(r, "id"), active)
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, usersHome)
		return
	}
	state := "disabled"
	if u.IsActive {
		state = "enabled"
	}
	h.flashRedirect(w, r, flashSuccess, fmt.Sprintf("Account of %s %s.", u.FullName, state), usersHome)
}

// DeleteUser handles POST /admin/users/{id}/delete
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.c.Services.Users.Delete(r.Context(), chi.URLParam(r, "id"), confirmed(r))
	h.adminAction(w, r, err, "Delete this account? This cannot be undone.", "User deleted.", usersHome)
}

type accessRow struct {
	domain.User
	Selected bool
}

type accessData struct {
	listing[domain.User]
	Rows   []accessRow
	Voters int
	Admins int
	Back   string
}

// Access handles GET /admin/access. Checked users are remembered per session
// until they are promoted, demoted or the selection is cleared.
func (h *Handler) Access(w http.ResponseWriter, r *http.Request) {
	if !h.settle(w, r) {
		return
	}
	sel := h.workspace(r).Access
	l, err := loadList(r, h.c.Services.Users.List(), "role")
	data := accessData{
		listing: l,
		Rows:    make([]accessRow, 0, len(l.Items)),
		Voters:  len(sel.Voters()),
		Admins:  len(sel.Admins()),
		Back:    r.URL.RawQuery,
	}
	for _, u := range l.Items {
		data.Rows = append(data.Rows, accessRow{User: u, Selected: sel.Selected(u.ID)})
	}
	h.renderList(w, r, "admin_access", "Access", data, err)
}

// accessBack returns to the access screen keeping its list query
func accessBack(r *http.Request) string {
	if q := r.PostFormValue("back"); q != "" {
		return accessHome + "?" + q
	}
	return accessHome
}

// ToggleAccess handles POST /admin/access/toggle. The role is taken from the
// access list the form came from, never from the form.
func (h *Handler) ToggleAccess(w http.ResponseWriter, r *http.Request) {
	back := accessBack(r)
	id := r.PostFormValue("id")
	if id == "" {
		redirect(w, r, back)
		return
	}
	list := h.c.Services.Users.List()
	if q, err := url.ParseQuery(r.PostFormValue("back")); err == nil {
		list.Apply(q, "role")
	}
	if err := h.c.Services.Users.ToggleSelected(r.Context(), h.workspace(r).Access, list, id); err != nil {
		h.fail(w, r, session.ChannelAdmin, err, back)
		return
	}
	redirect(w, r, back)
}

// AssignAdmins handles POST /admin/access/assign
func (h *Handler) AssignAdmins(w http.ResponseWriter, r *http.Request) {
	sel := h.workspace(r).Access
	n := len(sel.Voters())
	if n == 0 {
		h.flashRedirect(w, r, flashInfo, "Select at least one voter to promote.", accessBack(r))
		return
	}
	err := h.c.Services.Users.AssignAdmin(r.Context(), sel, nil, confirmed(r))
	h.adminAction(w, r, err,
		fmt.Sprintf("Give admin access to %d user(s)?", n),
		fmt.Sprintf("%d user(s) are now admins.", n),
		accessBack(r))
}

// RemoveAdmins handles POST /admin/access/remove
func (h *Handler) RemoveAdmins(w http.ResponseWriter, r *http.Request) {
	sel := h.workspace(r).Access
	n := len(sel.Admins())
	if n == 0 {
		h.flashRedirect(w, r, flashInfo, "Select at least one admin to demote.", accessBack(r))
		return
	}
	err := h.c.Services.Users.RemoveAdmin(r.Context(), sel, nil, confirmed(r))
	h.adminAction(w, r, err,
		fmt.Sprintf("Remove admin access from %d user(s)?", n),
		fmt.Sprintf("Admin access removed from %d user(s).", n),
		accessBack(r))
}

// ClearAccess handles POST /admin/access/clear
func (h *Handler) ClearAccess(w http.ResponseWriter, r *http.Request) {
	h.workspace(r).Access.Clear()
	redirect(w, r, accessBack(r))
}

type notificationForm struct {
	domain.Notification
	UserIDs   string
	Audiences []domain.Audience
}

var audiences = []domain.Audience{
	domain.AudienceAll, domain.AudienceVoters, domain.AudienceAdmins, domain.AudienceUsers,
}

// NotificationsPage handles GET /admin/notifications
func (h *Handler) NotificationsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "admin_notifications", page{
		Title: "Notifications",
		Data: notificationForm{
			Notification: domain.Notification{Type: "info", Audience: domain.AudienceAll},
			Audiences:    audiences,
		},
	})
}

func splitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\r' || r == '\t'
	})
}

// SendNotification handles POST /admin/notifications
func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	form := notificationForm{
		Notification: domain.Notification{
			Title:    strings.TrimSpace(r.PostFormValue("title")),
			Message:  strings.TrimSpace(r.PostFormValue("message")),
			Type:     r.PostFormValue("type"),
			Audience: domain.Audience(r.PostFormValue("audience")),
		},
		UserIDs:   r.PostFormValue("userIds"),
		Audiences: audiences,
	}
	form.Notification.UserIDs = splitIDs(form.UserIDs)

	sent, err := h.c.Services.Users.Notify(r.Context(), form.Notification)
	if err != nil {
		if h.authFailed(w, r, session.ChannelAdmin, err) {
			return
		}
		h.renderFormError(w, r, "admin_notifications", "Notifications", err, form)
		return
	}
	h.flashRedirect(w, r, flashSuccess, fmt.Sprintf("Notification sent to %d recipient(s).", sent), "/admin/notifications")
}
