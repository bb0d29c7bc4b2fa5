package voting

import (
	"context"

	"votedesk/internal/domain"
)

type fakeAPI struct {
	calls   []string
	queries []domain.ListQuery

	elections []domain.Election
	status    domain.VoteStatus
	paper     *domain.BallotPaper
	castErr   error
	cast      []domain.CastRequest
	viewCount int
	voted     domain.Candidate
}

// ListElections honours the status and isArchived filters and pages by
// q.Limit like the real endpoint
func (f *fakeAPI) ListElections(_ context.Context, q domain.ListQuery) (domain.Page[domain.Election], error) {
	f.calls = append(f.calls, "list")
	f.queries = append(f.queries, q)

	var matched []domain.Election
	for _, e := range f.elections {
		if s := q.Filters["status"]; s != "" && string(e.Status) != s {
			continue
		}
		if q.Filters["isArchived"] == "false" && e.IsArchived {
			continue
		}
		matched = append(matched, e)
	}

	limit := q.Limit
	if limit < 1 {
		limit = domain.DefaultPageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	start := min((page-1)*limit, len(matched))
	end := min(start+limit, len(matched))
	return domain.Page[domain.Election]{
		Items:      matched[start:end],
		Page:       page,
		Limit:      limit,
		Total:      len(matched),
		TotalPages: (len(matched) + limit - 1) / limit,
	}, nil
}

func (f *fakeAPI) CheckStatus(_ context.Context, _ string) (*domain.VoteStatus, error) {
	f.calls = append(f.calls, "check-status")
	s := f.status
	return &s, nil
}

func (f *fakeAPI) RequestPassword(_ context.Context, _, _, _ string) error {
	f.calls = append(f.calls, "request-password")
	return nil
}

func (f *fakeAPI) VerifyCredentials(_ context.Context, _, _, _ string) (*domain.BallotPaper, error) {
	f.calls = append(f.calls, "verify-credentials")
	return f.paper, nil
}

func (f *fakeAPI) CastVote(_ context.Context, req domain.CastRequest) error {
	f.calls = append(f.calls, "cast-vote")
	if f.castErr != nil {
		return f.castErr
	}
	f.cast = append(f.cast, req)
	return nil
}

func (f *fakeAPI) ViewVote(_ context.Context, _ string) (*domain.Disclosure, error) {
	f.calls = append(f.calls, "view-vote")
	f.viewCount++
	return &domain.Disclosure{Candidate: f.voted, ViewCount: f.viewCount}, nil
}
