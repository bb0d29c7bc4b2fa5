package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"votedesk/internal/domain"
	"votedesk/internal/location"
	"votedesk/internal/service/admin"
	"votedesk/internal/session"
	"votedesk/internal/validation"
	apperrors "votedesk/pkg/errors"
)

const (
	candidatesHome = "/admin/candidates"
	// assignableLimit bounds the upcoming elections offered for assignment
	assignableLimit = 100
)

// Candidates handles GET /admin/candidates
func (h *Handler) Candidates(w http.ResponseWriter, r *http.Request) {
	if !h.settle(w, r) {
		return
	}
	l, err := loadList(r, h.c.Services.Candidates.List(), "status")
	h.renderList(w, r, "admin_candidates", "Candidates", l, err)
}

type candidateForm struct {
	ID       string
	Input    domain.CandidateInput
	Location locationField
}

func (h *Handler) newCandidateForm(id string, in domain.CandidateInput) candidateForm {
	return candidateForm{
		ID:    id,
		Input: in,
		Location: h.locationField(candidateLocation, location.Cascade{
			State: in.State, District: in.District, Taluka: in.Taluka, Place: in.Village,
		}),
	}
}

func candidateFromForm(r *http.Request, c location.Cascade) domain.CandidateInput {
	return domain.CandidateInput{
		Name:               strings.TrimSpace(r.PostFormValue("name")),
		Village:            c.Place,
		Taluka:             c.Taluka,
		District:           c.District,
		State:              c.State,
		ElectionCardNumber: validation.NormalizeElectionCard(r.PostFormValue("electionCardNumber")),
		PartyName:          strings.TrimSpace(r.PostFormValue("partyName")),
		PartySymbol:        strings.TrimSpace(r.PostFormValue("partySymbol")),
		CandidatePhoto:     strings.TrimSpace(r.PostFormValue("candidatePhoto")),
		ElectionCardPhoto:  strings.TrimSpace(r.PostFormValue("electionCardPhoto")),
		ContactNumber:      strings.TrimSpace(r.PostFormValue("contactNumber")),
		Email:              strings.TrimSpace(r.PostFormValue("email")),
		Notes:              strings.TrimSpace(r.PostFormValue("notes")),
	}
}

func inputFromCandidate(c *domain.Candidate) domain.CandidateInput {
	return domain.CandidateInput{
		Name:               c.Name,
		Village:            c.Village,
		Taluka:             c.Taluka,
		District:           c.District,
		State:              c.State,
		ElectionCardNumber: c.ElectionCardNumber,
		PartyName:          c.PartyName,
		PartySymbol:        c.PartySymbol,
		CandidatePhoto:     c.CandidatePhoto,
		ElectionCardPhoto:  c.ElectionCardPhoto,
		ContactNumber:      c.ContactNumber,
		Email:              c.Email,
		Notes:              c.Notes,
	}
}

// NewCandidatePage handles GET /admin/candidates/new
func (h *Handler) NewCandidatePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "admin_candidate_form", page{
		Title: "New candidate",
		Data:  h.newCandidateForm("", domain.CandidateInput{}),
	})
}

// CreateCandidate handles POST /admin/candidates
func (h *Handler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	h.saveCandidate(w, r, "", "New candidate")
}

// EditCandidatePage handles GET /admin/candidates/{id}/edit
func (h *Handler) EditCandidatePage(w http.ResponseWriter, r *http.Request) {
	d, err := h.c.Services.Candidates.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, candidatesHome)
		return
	}
	h.render(w, r, http.StatusOK, "admin_candidate_form", page{
		Title: "Edit candidate",
		Data:  h.newCandidateForm(d.Candidate.ID, inputFromCandidate(&d.Candidate)),
	})
}

// UpdateCandidate handles POST /admin/candidates/{id}
func (h *Handler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	h.saveCandidate(w, r, chi.URLParam(r, "id"), "Edit candidate")
}

func (h *Handler) saveCandidate(w http.ResponseWriter, r *http.Request, id, title string) {
	cascade := cascadeFromForm(r, candidateLocation)
	in := candidateFromForm(r, cascade)
	form := candidateForm{ID: id, Input: in, Location: h.locationField(candidateLocation, cascade)}

	if r.PostFormValue("cascade") != "" {
		h.render(w, r, http.StatusOK, "admin_candidate_form", page{Title: title, Data: form})
		return
	}

	var (
		saved *domain.Candidate
		err   error
	)
	if id == "" {
		saved, err = h.c.Services.Candidates.Create(r.Context(), in)
	} else {
		saved, err = h.c.Services.Candidates.Update(r.Context(), id, in)
	}
	if err != nil {
		if h.authFailed(w, r, session.ChannelAdmin, err) {
			return
		}
		h.renderFormError(w, r, "admin_candidate_form", title, err, form)
		return
	}
	h.flashRedirect(w, r, flashSuccess, "Candidate saved.", candidatesHome+"/"+saved.ID)
}

type candidateDetail struct {
	*admin.Detail
	Assignable []domain.Election
}

// CandidateDetail handles GET /admin/candidates/{id}: the candidate, the
// elections it is assigned to and the upcoming ones it could join
func (h *Handler) CandidateDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.c.Services.Candidates.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, candidatesHome)
		return
	}

	upcoming := h.c.Services.Elections.List()
	upcoming.SetFilter("status", string(domain.StatusUpcoming))
	upcoming.SetLimit(assignableLimit)
	data := candidateDetail{Detail: d}
	if err := upcoming.Load(r.Context()); err != nil {
		if h.authFailed(w, r, session.ChannelAdmin, err) {
			return
		}
		h.render(w, r, http.StatusOK, "admin_candidate", page{
			Title: d.Candidate.Name,
			Flash: flash(flashError, userMessage(err)),
			Data:  data,
		})
		return
	}
	data.Assignable = admin.AssignableElections(&d.Candidate, upcoming.Items())
	h.render(w, r, http.StatusOK, "admin_candidate", page{Title: d.Candidate.Name, Data: data})
}

// DeleteCandidate handles POST /admin/candidates/{id}/delete
func (h *Handler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	err := h.c.Services.Candidates.Delete(r.Context(), chi.URLParam(r, "id"), confirmed(r))
	if err != nil {
		h.adminAction(w, r, err, "Delete this candidate? This cannot be undone.", "", candidatesHome+"/"+chi.URLParam(r, "id"))
		return
	}
	h.flashRedirect(w, r, flashSuccess, "Candidate deleted.", candidatesHome)
}

// AssignCandidate handles POST /admin/candidates/{id}/assign. Every checked
// electionId is loaded and assigned in turn.
func (h *Handler) AssignCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := candidatesHome + "/" + id
	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, flashError, apperrors.GenericMessage, back)
		return
	}
	ids := r.PostForm["electionId"]
	if len(ids) == 0 {
		h.flashRedirect(w, r, flashError, "Select at least one election.", back)
		return
	}

	d, err := h.c.Services.Candidates.Detail(r.Context(), id)
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, candidatesHome)
		return
	}
	targets := make([]domain.Election, 0, len(ids))
	for _, eid := range ids {
		e, err := h.c.Services.Elections.Get(r.Context(), eid)
		if err != nil {
			h.fail(w, r, session.ChannelAdmin, err, back)
			return
		}
		targets = append(targets, *e)
	}

	res, err := h.c.Services.Candidates.Assign(r.Context(), &d.Candidate, targets)
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, back)
		return
	}
	msg := fmt.Sprintf("Assigned to %d election(s).", len(res.Assigned))
	if len(res.Skipped) > 0 {
		msg += fmt.Sprintf(" %d already assigned.", len(res.Skipped))
	}
	h.flashRedirect(w, r, flashSuccess, msg, back)
}

// UnassignCandidate handles POST /admin/candidates/{id}/unassign/{electionID}
func (h *Handler) UnassignCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := candidatesHome + "/" + id

	d, err := h.c.Services.Candidates.Detail(r.Context(), id)
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, candidatesHome)
		return
	}
	e, err := h.c.Services.Elections.Get(r.Context(), chi.URLParam(r, "electionID"))
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, back)
		return
	}

	err = h.c.Services.Candidates.RemoveAssignment(r.Context(), &d.Candidate, e, confirmed(r))
	h.adminAction(w, r, err, "Remove "+d.Candidate.Name+" from "+e.Title+"?", "Assignment removed.", back)
}
