package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"votedesk/internal/domain"
	"votedesk/internal/service/admin"
	"votedesk/internal/session"
)

const (
	resultsHome = "/admin/results"
	historyHome = "/admin/history"
)

type resultsRow struct {
	domain.Election
	CanPublish bool
}

type resultsList struct {
	listing[domain.Election]
	Rows []resultsRow
}

// AdminResults handles GET /admin/results
func (h *Handler) AdminResults(w http.ResponseWriter, r *http.Request) {
	if !h.settle(w, r) {
		return
	}
	l, err := loadList(r, h.c.Services.Elections.List(), "status")
	now := h.now()
	data := resultsList{listing: l, Rows: make([]resultsRow, 0, len(l.Items))}
	for i := range l.Items {
		data.Rows = append(data.Rows, resultsRow{Election: l.Items[i], CanPublish: admin.CanPublish(&l.Items[i], now)})
	}
	h.renderList(w, r, "admin_results", "Results", data, err)
}

type resultsDetail struct {
	*domain.ElectionResults
	CanPublish bool
	Admin      bool
}

// AdminElectionResults handles GET /admin/results/{id}
func (h *Handler) AdminElectionResults(w http.ResponseWriter, r *http.Request) {
	res, err := h.c.Services.Elections.Results(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, resultsHome)
		return
	}
	h.render(w, r, http.StatusOK, "results_detail", page{
		Title: res.Election.Title,
		Data: resultsDetail{
			ElectionResults: res,
			CanPublish:      admin.CanPublish(&res.Election, h.now()),
			Admin:           true,
		},
	})
}

// PublishResults handles POST /admin/results/{id}/publish. The public
// results are refetched right after a successful publish.
func (h *Handler) PublishResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := resultsHome + "/" + id

	e, err := h.c.Services.Elections.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, session.ChannelAdmin, err, resultsHome)
		return
	}
	_, err = h.c.Services.Elections.PublishResults(r.Context(), e, confirmed(r))
	if err == nil {
		if ierr := h.c.Services.Results.Invalidate(r.Context(), id); ierr != nil {
			h.log(r).WithError(ierr).WithField("election_id", id).Warn("Failed to refresh published results")
		}
	}
	h.adminAction(w, r, err, "Publish the results of "+e.Title+"? Voters will see them immediately.", "Results published.", back)
}

// History handles GET /admin/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if !h.settle(w, r) {
		return
	}
	l, err := loadList(r, h.c.Services.Elections.History())
	h.renderList(w, r, "admin_history", "History", l, err)
}

// RestoreElection handles POST /admin/history/{id}/restore
func (h *Handler) RestoreElection(w http.ResponseWriter, r *http.Request) {
	if err := h.c.Services.Elections.Restore(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, session.ChannelAdmin, err, historyHome)
		return
	}
	h.flashRedirect(w, r, flashSuccess, "Election restored.", historyHome)
}

// PermanentDeleteElection handles POST /admin/history/{id}/delete
func (h *Handler) PermanentDeleteElection(w http.ResponseWriter, r *http.Request) {
	err := h.c.Services.Elections.PermanentDelete(r.Context(), chi.URLParam(r, "id"), confirmed(r))
	h.adminAction(w, r, err, "Delete this election permanently? Its votes and results are lost.", "Election permanently deleted.", historyHome)
}

type publishedData struct {
	Elections []domain.Election
	Updated   time.Time
}

// PublishedResults handles GET /results, the public list of elections with
// declared results. It refreshes itself on the poll interval.
func (h *Handler) PublishedResults(w http.ResponseWriter, r *http.Request) {
	feed := h.c.Services.Results
	elections, updated := feed.Published()
	p := page{Title: "Election results", Refresh: h.refreshSeconds()}

	if updated.IsZero() {
		if err := feed.Refresh(r.Context()); err != nil {
			h.log(r).WithError(err).Warn("Failed to load published results")
			p.Flash = flash(flashError, userMessage(err))
		}
		elections, updated = feed.Published()
	}
	p.Data = publishedData{Elections: elections, Updated: updated}
	h.render(w, r, http.StatusOK, "results", p)
}

// PublicElectionResults handles GET /results/{id}
func (h *Handler) PublicElectionResults(w http.ResponseWriter, r *http.Request) {
	res, err := h.c.Services.Results.PublicResults(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.flashRedirect(w, r, flashError, userMessage(err), "/results")
		return
	}
	h.render(w, r, http.StatusOK, "results_detail", page{
		Title:   res.Election.Title,
		Refresh: h.refreshSeconds(),
		Data:    resultsDetail{ElectionResults: res},
	})
}
