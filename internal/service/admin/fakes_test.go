package admin

import (
	"context"
	"fmt"

	"votedesk/internal/apiclient"
	"votedesk/internal/domain"
)

type fakeAPI struct {
	calls   []string
	queries []domain.ListQuery

	total      int
	elections  map[string]*domain.Election
	candidates map[string]*domain.Candidate
	results    *domain.ElectionResults
	users      []domain.User
	usersErr   error
	failAssign string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{elections: map[string]*domain.Election{}, candidates: map[string]*domain.Candidate{}}
}

func (f *fakeAPI) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func pageOf[T any](items []T, q domain.ListQuery, total int) domain.Page[T] {
	limit := q.Limit
	if limit < 1 {
		limit = domain.DefaultPageSize
	}
	pages := (total + limit - 1) / limit
	return domain.Page[T]{Items: items, Page: q.Page, Limit: limit, Total: total, TotalPages: pages}
}

func (f *fakeAPI) ListElections(_ context.Context, q domain.ListQuery) (domain.Page[domain.Election], error) {
	f.record("GET /api/elections")
	f.queries = append(f.queries, q)
	var items []domain.Election
	for _, e := range f.elections {
		items = append(items, *e)
	}
	return pageOf(items, q, f.total), nil
}

func (f *fakeAPI) GetElection(_ context.Context, id string) (*domain.Election, error) {
	f.record("GET /api/elections/%s", id)
	e, ok := f.elections[id]
	if !ok {
		return nil, fmt.Errorf("no election %s", id)
	}
	c := *e
	return &c, nil
}

func (f *fakeAPI) CreateElection(_ context.Context, in domain.ElectionInput) (*domain.Election, error) {
	f.record("POST /api/elections")
	return &domain.Election{ID: "new", Title: in.Title, Status: in.Status}, nil
}

func (f *fakeAPI) UpdateElection(_ context.Context, id string, in domain.ElectionInput) (*domain.Election, error) {
	f.record("PUT /api/elections/%s status=%s", id, in.Status)
	return &domain.Election{ID: id, Title: in.Title, Status: in.Status}, nil
}

func (f *fakeAPI) DeleteElection(_ context.Context, id string) error {
	f.record("DELETE /api/elections/%s", id)
	return nil
}

func (f *fakeAPI) ArchiveElection(_ context.Context, id string) error {
	f.record("PUT /api/elections/%s/archive", id)
	return nil
}

func (f *fakeAPI) RestoreElection(_ context.Context, id string) error {
	f.record("PUT /api/elections/%s/restore", id)
	return nil
}

func (f *fakeAPI) PermanentDeleteElection(_ context.Context, id string) error {
	f.record("DELETE /api/elections/%s/permanent", id)
	return nil
}

func (f *fakeAPI) PublishResults(_ context.Context, id string) (*domain.Election, error) {
	f.record("POST /api/elections/%s/publish-results", id)
	return &domain.Election{ID: id, Results: domain.ResultsInfo{IsDeclared: true}}, nil
}

func (f *fakeAPI) GetResults(_ context.Context, id string) (*domain.ElectionResults, error) {
	f.record("GET /api/elections/%s/results", id)
	return f.results, nil
}

func (f *fakeAPI) GetPublicResults(_ context.Context, id string) (*domain.ElectionResults, error) {
	f.record("GET /api/elections/%s/results-public", id)
	return f.results, nil
}

func (f *fakeAPI) PublishedList(_ context.Context) ([]domain.Election, error) {
	f.record("GET /api/elections/published-list")
	return nil, nil
}

func (f *fakeAPI) ListCandidates(_ context.Context, q domain.ListQuery) (domain.Page[domain.Candidate], error) {
	f.record("GET /api/candidates")
	f.queries = append(f.queries, q)
	return pageOf([]domain.Candidate(nil), q, f.total), nil
}

func (f *fakeAPI) GetCandidate(_ context.Context, id string) (*domain.Candidate, error) {
	f.record("GET /api/candidates/%s", id)
	c := *f.candidates[id]
	return &c, nil
}

func (f *fakeAPI) CreateCandidate(_ context.Context, in domain.CandidateInput) (*domain.Candidate, error) {
	f.record("POST /api/candidates card=%s", in.ElectionCardNumber)
	return &domain.Candidate{ID: "c-new", Name: in.Name, ElectionCardNumber: in.ElectionCardNumber}, nil
}

func (f *fakeAPI) UpdateCandidate(_ context.Context, id string, in domain.CandidateInput) (*domain.Candidate, error) {
	f.record("PUT /api/candidates/%s", id)
	return &domain.Candidate{ID: id, Name: in.Name}, nil
}

func (f *fakeAPI) DeleteCandidate(_ context.Context, id string) error {
	f.record("DELETE /api/candidates/%s", id)
	return nil
}

func (f *fakeAPI) ElectionCandidates(_ context.Context, electionID string) ([]domain.Candidate, error) {
	f.record("GET /api/elections/%s/candidates", electionID)
	return nil, nil
}

func (f *fakeAPI) AssignCandidate(_ context.Context, electionID, candidateID string) error {
	f.record("POST /api/elections/%s/candidates %s", electionID, candidateID)
	if electionID == f.failAssign {
		return fmt.Errorf("assign failed")
	}
	return nil
}

func (f *fakeAPI) RemoveCandidate(_ context.Context, electionID, candidateID string) error {
	f.record("DELETE /api/elections/%s/candidates/%s", electionID, candidateID)
	return nil
}

func (f *fakeAPI) ListUsers(_ context.Context, q domain.ListQuery) (domain.Page[domain.User], error) {
	f.record("GET /api/admin/users")
	f.queries = append(f.queries, q)
	if f.usersErr != nil {
		return domain.Page[domain.User]{}, f.usersErr
	}
	return pageOf(f.users, q, len(f.users)), nil
}

func (f *fakeAPI) UpdateUser(_ context.Context, id string, u apiclient.UserUpdate) (*domain.User, error) {
	f.record("PUT /api/admin/users/%s active=%v", id, *u.IsActive)
	return &domain.User{ID: id, IsActive: *u.IsActive}, nil
}

func (f *fakeAPI) DeleteUser(_ context.Context, id string) error {
	f.record("DELETE /api/admin/users/%s", id)
	return nil
}

func (f *fakeAPI) AssignAdmin(_ context.Context, ids []string) error {
	f.record("POST /api/admin/users/assign-admin %v", ids)
	return nil
}

func (f *fakeAPI) RemoveAdmin(_ context.Context, ids []string) error {
	f.record("POST /api/admin/users/remove-admin %v", ids)
	return nil
}

func (f *fakeAPI) SendNotification(_ context.Context, n domain.Notification) (int, error) {
	f.record("POST /api/admin/notifications/send %s %d", n.Audience, len(n.UserIDs))
	return 3, nil
}
