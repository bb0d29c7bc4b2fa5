// Package handler serves the voter front end and the admin console as
// server-rendered pages.
package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"time"

	"votedesk/internal/container"
	"votedesk/internal/domain"
	"votedesk/internal/middleware"
	"votedesk/internal/service/admin"
	"votedesk/internal/service/auth"
	"votedesk/internal/service/voting"
	"votedesk/internal/session"
	"votedesk/internal/validation"
	"votedesk/internal/workspace"
	apperrors "votedesk/pkg/errors"
	"votedesk/pkg/logger"
)

const (
	flashInfo    = "info"
	flashSuccess = "success"
	flashError   = "error"
)

// Handler carries what every page handler needs
type Handler struct {
	c      *container.Container
	views  *views
	now    func() time.Time
	logger *logger.Logger
}

// New parses the page templates and creates the handler set
func New(c *container.Container) (*Handler, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	return &Handler{
		c:      c,
		views:  v,
		now:    time.Now,
		logger: c.GetLogger().Named("handler"),
	}, nil
}

// page is the data every template receives
type page struct {
	Title   string
	Flash   *workspace.Flash
	User    *domain.User
	Admin   *domain.User
	Errors  validation.Violations
	Refresh int
	Data    interface{}
}

func (h *Handler) workspace(r *http.Request) *workspace.Workspace {
	return h.c.Workspaces.Get(session.IDFromContext(r.Context()))
}

func (h *Handler) log(r *http.Request) *logger.Logger {
	return middleware.LoggerFrom(r.Context(), h.logger)
}

// render writes a full page. The pending flash is consumed unless p carries one.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	if sid := session.IDFromContext(r.Context()); sid != "" {
		ws := h.c.Workspaces.Get(sid)
		if p.Flash == nil {
			p.Flash = ws.TakeFlash()
		}
		p.User = ws.User.State().User
		p.Admin = ws.Admin.State().User
	}

	var buf bytes.Buffer
	if err := h.views.render(&buf, name, p); err != nil {
		h.log(r).WithError(err).WithField("template", name).Error("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func flash(kind, message string) *workspace.Flash {
	return &workspace.Flash{Kind: kind, Message: message}
}

// redirect answers a form post with 303 See Other
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) flashRedirect(w http.ResponseWriter, r *http.Request, kind, message, target string) {
	h.workspace(r).SetFlash(kind, message)
	redirect(w, r, target)
}

// loginPath is where a channel sends signed-out sessions
func loginPath(ch session.Channel) string {
	if ch == session.ChannelAdmin {
		return "/admin/login"
	}
	return "/login"
}

// authFailed signs the channel out and redirects to its login page when err
// is a 401/403 from the API. It reports whether it responded.
func (h *Handler) authFailed(w http.ResponseWriter, r *http.Request, ch session.Channel, err error) bool {
	ws := h.workspace(r)
	var handled bool
	if ch == session.ChannelAdmin {
		handled = h.c.Services.AdminAuth.HandleAuthFailure(r.Context(), ws.Admin, ws.ID, err)
	} else {
		handled = h.c.Services.UserAuth.HandleAuthFailure(r.Context(), ws.User, ws.ID, err)
		if handled {
			ws.ClearUser()
		}
	}
	if !handled {
		return false
	}
	h.log(r).WithField("channel", string(ch)).Info("Session rejected by API, signing out")
	h.flashRedirect(w, r, flashError, "Your session has expired. Please sign in again.", loginPath(ch))
	return true
}

// fail reports err on the next page: auth failures sign out, anything else
// becomes a flash message on back.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, ch session.Channel, err error, back string) {
	if h.authFailed(w, r, ch, err) {
		return
	}
	h.flashRedirect(w, r, flashError, userMessage(err), back)
}

// violations returns the field errors carried by err, or nil
func violations(err error) validation.Violations {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return vErr.Fields
	}
	return nil
}

var messages = []struct {
	err     error
	message string
}{
	{auth.ErrNotAdmin, "This account does not have admin access."},
	{auth.ErrNotAuthenticated, "Please sign in to continue."},
	{voting.ErrProfileIncomplete, "Complete your profile before voting."},
	{voting.ErrNotVotable, "This election is not open for voting."},
	{voting.ErrCardMismatch, "Use the election card number the voting password was sent for."},
	{voting.ErrRevealLimit, "You have already viewed your vote the maximum number of times."},
	{voting.ErrMissingElection, "Election not found. Please start again from the election list."},
	{voting.ErrNoCandidates, "This election has no candidates yet."},
	{voting.ErrMissingChoice, "Select a candidate first."},
	{voting.ErrUnknownCandidate, "That candidate is not on this ballot."},
	{voting.ErrInvalidTransition, "That step is no longer available. Please start again from the election list."},
	{admin.ErrFieldLocked, "Only the status of an active election can be changed."},
	{admin.ErrStatusTransition, "An active election can only be marked completed."},
	{admin.ErrAlreadyPublished, "Results for this election are already published."},
	{admin.ErrVotingOpen, "Results can be published once voting has closed."},
	{admin.ErrNotUpcoming, "Candidates can only be changed on upcoming elections."},
	{admin.ErrUnknownUser, "That user is no longer on this list. Please select again."},
}

// userMessage is the text shown for err
func userMessage(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.message
		}
	}
	if violations(err) != nil {
		return "Please correct the highlighted fields."
	}
	return apperrors.MessageOf(err, "")
}

// confirmed reports whether the form carries the confirmation of a
// destructive action
func confirmed(r *http.Request) bool {
	return r.PostFormValue("confirmed") == "yes"
}

type confirmation struct {
	Message string
	Action  string
	Fields  url.Values
	Back    string
}

// askConfirmation renders the confirmation page, which posts the same form
// back to the same URL with confirmed=yes
func (h *Handler) askConfirmation(w http.ResponseWriter, r *http.Request, message, back string) {
	fields := url.Values{}
	for k, v := range r.PostForm {
		if k != "confirmed" {
			fields[k] = v
		}
	}
	h.render(w, r, http.StatusOK, "confirm", page{
		Title: "Please confirm",
		Data:  confirmation{Message: message, Action: r.URL.Path, Fields: fields, Back: back},
	})
}

// placeholder is shown by flow screens reached without the state they need
func (h *Handler) placeholder(w http.ResponseWriter, r *http.Request, back string) {
	h.render(w, r, http.StatusOK, "placeholder", page{Title: "Nothing to show", Data: back})
}
