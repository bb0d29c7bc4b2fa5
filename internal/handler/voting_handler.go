package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"votedesk/internal/domain"
	"votedesk/internal/service/voting"
	"votedesk/internal/session"
)

type voteRow struct {
	domain.Election
	Votable bool
}

// ElectionList handles GET /vote. Visiting the list abandons any flow in
// progress.
func (h *Handler) ElectionList(w http.ResponseWriter, r *http.Request) {
	m := h.workspace(r).Vote
	if _, ok := m.Current().(voting.Listing); !ok {
		m.Reset()
	}

	elections, err := m.ListElections(r.Context())
	if err != nil {
		if h.authFailed(w, r, session.ChannelUser, err) {
			return
		}
		h.render(w, r, http.StatusOK, "vote_list", page{
			Title:   "Elections",
			Flash:   flash(flashError, userMessage(err)),
			Refresh: h.refreshSeconds(),
			Data:    []voteRow{},
		})
		return
	}

	rows := make([]voteRow, 0, len(elections))
	for _, e := range elections {
		rows = append(rows, voteRow{Election: e, Votable: voting.Votable(e)})
	}
	h.render(w, r, http.StatusOK, "vote_list", page{Title: "Elections", Refresh: h.refreshSeconds(), Data: rows})
}

func (h *Handler) refreshSeconds() int {
	return int(h.c.GetConfig().PollInterval.Seconds())
}

// StartVote handles POST /vote/{id}/start
func (h *Handler) StartVote(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	user := ws.User.State().User

	err := ws.Vote.BeginVote(r.Context(), user, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, voting.ErrProfileIncomplete):
		h.flashRedirect(w, r, flashError, userMessage(err), "/profile")
		return
	case err != nil:
		h.fail(w, r, session.ChannelUser, err, "/vote")
		return
	}

	if _, voted := ws.Vote.Current().(voting.AlreadyVoted); voted {
		redirect(w, r, "/vote/already-voted")
		return
	}
	redirect(w, r, "/vote/credentials")
}

type credentialsForm struct {
	Election   domain.Election
	Email      string
	CardNumber string
}

// CredentialsPage handles GET /vote/credentials
func (h *Handler) CredentialsPage(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	st, ok := ws.Vote.Current().(voting.Credentials)
	if !ok {
		h.placeholder(w, r, "/vote")
		return
	}
	email := ""
	if u := ws.User.State().User; u != nil {
		email = u.Email
	}
	h.render(w, r, http.StatusOK, "vote_credentials", page{
		Title: "Verify your identity",
		Data:  credentialsForm{Election: st.Election, Email: email},
	})
}

// RequestPassword handles POST /vote/credentials
func (h *Handler) RequestPassword(w http.ResponseWriter, r *http.Request) {
	m := h.workspace(r).Vote
	st, ok := m.Current().(voting.Credentials)
	if !ok {
		h.placeholder(w, r, "/vote")
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	card := r.PostFormValue("electionCardNumber")

	if err := m.RequestPassword(r.Context(), email, card); err != nil {
		if h.authFailed(w, r, session.ChannelUser, err) {
			return
		}
		h.renderFormError(w, r, "vote_credentials", "Verify your identity", err,
			credentialsForm{Election: st.Election, Email: email, CardNumber: card})
		return
	}
	h.flashRedirect(w, r, flashInfo, "A voting password has been emailed to "+email+".", "/vote/password")
}

// PasswordPage handles GET /vote/password
func (h *Handler) PasswordPage(w http.ResponseWriter, r *http.Request) {
	st, ok := h.workspace(r).Vote.Current().(voting.Password)
	if !ok {
		h.placeholder(w, r, "/vote")
		return
	}
	h.render(w, r, http.StatusOK, "vote_password", page{
		Title: "Enter voting password",
		Data:  credentialsForm{Election: st.Election, Email: st.Email, CardNumber: st.CardNumber},
	})
}

// VerifyPassword handles POST /vote/password
func (h *Handler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	m := h.workspace(r).Vote
	st, ok := m.Current().(voting.Password)
	if !ok {
		h.placeholder(w, r, "/vote")
		return
	}
	card := r.PostFormValue("electionCardNumber")

	if err := m.VerifyPassword(r.Context(), card, r.PostFormValue("votingPassword")); err != nil {
		if h.authFailed(w, r, session.ChannelUser, err) {
			return
		}
		h.renderFormError(w, r, "vote_password", "Enter voting password", err,
			credentialsForm{Election: st.Election, Email: st.Email, CardNumber: card})
		return
	}
	redirect(w, r, "/vote/ballot")
}

type ballotData struct {
	voting.Ballot
	Chosen     *domain.Candidate
	Confirming bool
}

// BallotPage handles GET /vote/ballot. With ?confirm=1 and a selection it
// shows the confirmation prompt.
func (h *Handler) BallotPage(w http.ResponseWriter, r *http.Request) {
	st, ok := h.workspace(r).Vote.Current().(voting.Ballot)
	if !ok {
		h.placeholder(w, r, "/vote")
		return
	}
	chosen, found := st.Candidate(st.Selected)
	if !found {
		chosen = nil
	}
	h.render(w, r, http.StatusOK, "vote_ballot", page{
		Title: "Ballot",
		Data: ballotData{
			Ballot:     st,
			Chosen:     chosen,
			Confirming: found && r.URL.Query().Get("confirm") == "1",
		},
	})
}

// SelectCandidate handles POST /vote/ballot
func (h *Handler) SelectCandidate(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace(r).Vote.Select(r.PostFormValue("candidateId")); err != nil {
		h.fail(w, r, session.ChannelUser, err, "/vote/ballot")
		return
	}
	redirect(w, r, "/vote/ballot?confirm=1")
}

// CastVote handles POST /vote/cast. Nothing is sent until the voter confirmed.
func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	err := h.workspace(r).Vote.Cast(r.Context(), confirmed(r))
	switch {
	case err == nil:
		h.flashRedirect(w, r, flashSuccess, "Your vote has been recorded.", "/vote/confirmation")
	case errors.Is(err, voting.ErrConfirmationRequired):
		redirect(w, r, "/vote/ballot?confirm=1")
	case errors.Is(err, voting.ErrInvalidTransition):
		h.placeholder(w, r, "/vote")
	default:
		h.fail(w, r, session.ChannelUser, err, "/vote/ballot")
	}
}

// ConfirmationPage handles GET /vote/confirmation
func (h *Handler) ConfirmationPage(w http.ResponseWriter, r *http.Request) {
	st, ok := h.workspace(r).Vote.Current().(voting.Confirmation)
	if !ok {
		h.placeholder(w, r, "/vote")
		return
	}
	h.render(w, r, http.StatusOK, "vote_confirmation", page{Title: "Vote recorded", Data: st})
}

type alreadyVotedData struct {
	voting.AlreadyVoted
	CanReveal   bool
	RevealsLeft int
}

// AlreadyVotedPage handles GET /vote/already-voted
func (h *Handler) AlreadyVotedPage(w http.ResponseWriter, r *http.Request) {
	st, ok := h.workspace(r).Vote.Current().(voting.AlreadyVoted)
	if !ok {
		h.placeholder(w, r, "/vote")
		return
	}
	h.render(w, r, http.StatusOK, "vote_already_voted", page{
		Title: "Already voted",
		Data:  alreadyVotedData{AlreadyVoted: st, CanReveal: st.CanReveal(), RevealsLeft: st.RevealsLeft()},
	})
}

// RevealVote handles POST /vote/reveal
func (h *Handler) RevealVote(w http.ResponseWriter, r *http.Request) {
	if _, err := h.workspace(r).Vote.Reveal(r.Context()); err != nil {
		if errors.Is(err, voting.ErrInvalidTransition) {
			h.placeholder(w, r, "/vote")
			return
		}
		h.fail(w, r, session.ChannelUser, err, "/vote/already-voted")
		return
	}
	redirect(w, r, "/vote/already-voted")
}

// ResetVote handles POST /vote/reset
func (h *Handler) ResetVote(w http.ResponseWriter, r *http.Request) {
	h.workspace(r).Vote.Reset()
	redirect(w, r, "/vote")
}
