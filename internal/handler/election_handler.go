package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"votedesk/internal/domain"
	"votedesk/internal/location"
	"votedesk/internal/service/admin"
	"votedesk/internal/session"
)

type electionRow struct {
	domain.Election
	Locked bool
}

type electionList struct {
	listing[domain.Election]
	Rows []electionRow
}

// Elections handles GET /admin/elections
func (h *Handler) Elections(w http.ResponseWriter, r *http.Request) {
	if !h.settle(w, r) {
		return
	}
	l, err := loadList(r, h.c.Services.Elections.List(), "status", "isArchived")
	data := electionList{listing: l, Rows: make([]electionRow, 0, len(l.Items))}
	for i := range l.Items {
		data.Rows = append(data.Rows, electionRow{Election: l.Items[i], Locked: admin.Locked(&l.Items[i])})
	}
	h.renderList(w, r, "admin_elections", "Elections", data, err)
}

type electionForm struct {
	ID       string
	Input    domain.ElectionInput
	Locked   bool
	Editable []string
	Statuses []domain.ElectionStatus
	Location locationField
}

func (h *Handler) newElectionForm(id string, in domain.ElectionInput, current *domain.Election) electionForm {
	f := electionForm{
		ID:       id,
		Input:    in,
		Editable: admin.EditableFields(&domain.Election{}),
		Statuses: domain.ElectionStatuses,
		Location: h.locationField(electionLocation, location.Cascade{
			State: in.State, District: in.District, Taluka: in.Taluka, Place: in.VillageCity,
		}),
	}
	if current != nil {
		f.Locked = admin.Locked(current)
		f.Editable = admin.EditableFields(current)
		f.Statuses = admin.AllowedStatuses(current)
	}
	return f
}

func parseDateInput(value string) time.Time {
	t, err := time.ParseInLocation(dateTimeLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func electionFromForm(r *http.Request, c location.Cascade) domain.ElectionInput {
	return domain.ElectionInput{
		Title:                 strings.TrimSpace(r.PostFormValue("title")),
		Type:                  strings.TrimSpace(r.PostFormValue("type")),
		Level:                 strings.TrimSpace(r.PostFormValue("level")),
		PanchayatName:         strings.TrimSpace(r.PostFormValue("panchayatName")),
		State:                 c.State,
		District:              c.District,
		Taluka:                c.Taluka,
		VillageCity:           c.Place,
		Description:           strings.TrimSpace(r.PostFormValue("description")),
		VotingStartDate:       parseDateInput(r.PostFormValue("votingStartDate")),
		VotingEndDate:         parseDateInput(r.PostFormValue("votingEndDate")),
		ResultDeclarationDate: parseDateInput(r.PostFormValue("resultDeclarationDate")),
		Status:                domain.ElectionStatus(r.PostFormValue("status")),
	}
}

// NewElectionPage handles GET /admin/elections/new
func (h *Handler) NewElectionPage(w http.ResponseWriter, r *http.Request) {
	in := domain.ElectionInput{Status: domain.StatusUpcoming}
	h.render(w, r, http.StatusOK, "admin_election_form", page{Title: "New election", Data: h.newElectionForm("", in, nil)})
}

// CreateElection handles POST /admin/elections
func (h *Handler) CreateElection(w http.ResponseWriter, r *http.Request) {
	cascade := cascadeFromForm(r, electionLocation)
	in := electionFromForm(r, cascade)
	form := h.newElectionForm("", in, nil)
	form.Location = h.locationField(electionLocation, cascade)

	if r.PostFormValue("cascade") != "" {
		h.render(w, r, http.StatusOK, "admin_election_form", page{Title: "New election", Data: form})
		return
	}
	if _, err := h.c.Services.Elections.Create(r.Context(), in); err != nil {
		if h.authFailed(w, r, session.ChannelAdmin, err) {
			return
		}
		h.renderFormError(w, r, "admin_election_form", "New election", err, form)
		return
	}
	h.flashRedirect(w, r, flashSuccess, "Election created.", adminHome)
}

// EditElectionPage handles GET /admin/elections/{id}/edit
func (h *Handler) EditElectionPage(w http.ResponseWriter, r *http.Request) {
	current, err := h.c.Services.Elections.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, adminHome)
		return
	}
	form := h.newElectionForm(current.ID, domain.InputFrom(current), current)
	h.render(w, r, http.StatusOK, "admin_election_form", page{Title: "Edit election", Data: form})
}

// lockedOverlay keeps every field of current the form may not change.
// Disabled inputs are not posted, so their values come from current.
func lockedOverlay(current *domain.Election, posted domain.ElectionInput) domain.ElectionInput {
	if !admin.Locked(current) {
		return posted
	}
	in := domain.InputFrom(current)
	for _, field := range admin.EditableFields(current) {
		if field == "status" {
			in.Status = posted.Status
		}
	}
	return in
}

// UpdateElection handles POST /admin/elections/{id}
func (h *Handler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	current, err := h.c.Services.Elections.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, adminHome)
		return
	}

	cascade := cascadeFromForm(r, electionLocation)
	in := lockedOverlay(current, electionFromForm(r, cascade))
	form := h.newElectionForm(current.ID, in, current)
	if !form.Locked {
		form.Location = h.locationField(electionLocation, cascade)
	}

	if r.PostFormValue("cascade") != "" {
		h.render(w, r, http.StatusOK, "admin_election_form", page{Title: "Edit election", Data: form})
		return
	}
	if _, err := h.c.Services.Elections.Update(r.Context(), current, in); err != nil {
		if h.authFailed(w, r, session.ChannelAdmin, err) {
			return
		}
		h.renderFormError(w, r, "admin_election_form", "Edit election", err, form)
		return
	}
	h.flashRedirect(w, r, flashSuccess, "Election updated.", adminHome)
}

// DeleteElection handles POST /admin/elections/{id}/delete
func (h *Handler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	err := h.c.Services.Elections.Delete(r.Context(), chi.URLParam(r, "id"), confirmed(r))
	h.adminAction(w, r, err, "Delete this election? This cannot be undone.", "Election deleted.", adminHome)
}

// ArchiveElection handles POST /admin/elections/{id}/archive
func (h *Handler) ArchiveElection(w http.ResponseWriter, r *http.Request) {
	err := h.c.Services.Elections.Archive(r.Context(), chi.URLParam(r, "id"), confirmed(r))
	h.adminAction(w, r, err, "Archive this election? It will move to History.", "Election archived.", adminHome)
}
