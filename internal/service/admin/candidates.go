package admin

import (
	"context"
	"errors"
	"fmt"

	"votedesk/internal/domain"
	"votedesk/internal/validation"
	"votedesk/pkg/logger"
)

// ErrNotUpcoming guards assignment changes on elections that have started
var ErrNotUpcoming = errors.New("admin: assignments can only change while the election is upcoming")

// CandidatesAPI is the candidate part of the REST client
type CandidatesAPI interface {
	ListCandidates(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Candidate], error)
	GetCandidate(ctx context.Context, id string) (*domain.Candidate, error)
	CreateCandidate(ctx context.Context, in domain.CandidateInput) (*domain.Candidate, error)
	UpdateCandidate(ctx context.Context, id string, in domain.CandidateInput) (*domain.Candidate, error)
	DeleteCandidate(ctx context.Context, id string) error
	GetElection(ctx context.Context, id string) (*domain.Election, error)
	ElectionCandidates(ctx context.Context, electionID string) ([]domain.Candidate, error)
	AssignCandidate(ctx context.Context, electionID, candidateID string) error
	RemoveCandidate(ctx context.Context, electionID, candidateID string) error
}

// Candidates backs the candidates screen
type Candidates struct {
	api    CandidatesAPI
	logger *logger.Logger
}

func NewCandidates(api CandidatesAPI, log *logger.Logger) *Candidates {
	return &Candidates{api: api, logger: log.Named("candidates")}
}

func (s *Candidates) List() *Resource[domain.Candidate] {
	return NewResource[domain.Candidate](s.api.ListCandidates, nil)
}

func (s *Candidates) Create(ctx context.Context, in domain.CandidateInput) (*domain.Candidate, error) {
	if err := validation.Candidate(&in); err != nil {
		return nil, err
	}
	return s.api.CreateCandidate(ctx, in)
}

func (s *Candidates) Update(ctx context.Context, id string, in domain.CandidateInput) (*domain.Candidate, error) {
	if err := validation.Candidate(&in); err != nil {
		return nil, err
	}
	return s.api.UpdateCandidate(ctx, id, in)
}

func (s *Candidates) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	return s.api.DeleteCandidate(ctx, id)
}

// AssignableElections keeps the upcoming elections c is not yet part of
func AssignableElections(c *domain.Candidate, elections []domain.Election) []domain.Election {
	out := make([]domain.Election, 0, len(elections))
	for _, e := range elections {
		if e.Status == domain.StatusUpcoming && !c.AssignedTo(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

// AssignResult tells which elections were assigned and which were skipped
// because the candidate already had a slot there.
type AssignResult struct {
	Assigned []string
	Skipped  []string
}

// Assign puts c on the ballot of every target election, one request at a
// time. All targets must be upcoming; nothing is sent otherwise.
func (s *Candidates) Assign(ctx context.Context, c *domain.Candidate, targets []domain.Election) (AssignResult, error) {
	var res AssignResult
	for _, e := range targets {
		if e.Status != domain.StatusUpcoming {
			return res, fmt.Errorf("%w: %s", ErrNotUpcoming, e.Title)
		}
	}

	seen := make(map[string]struct{}, len(targets))
	for _, e := range targets {
		if _, dup := seen[e.ID]; dup || c.AssignedTo(e.ID) {
			res.Skipped = append(res.Skipped, e.ID)
			continue
		}
		seen[e.ID] = struct{}{}

		if err := s.api.AssignCandidate(ctx, e.ID, c.ID); err != nil {
			return res, err
		}
		res.Assigned = append(res.Assigned, e.ID)
	}

	s.logger.WithFields(map[string]interface{}{
		"candidate_id": c.ID,
		"assigned":     len(res.Assigned),
		"skipped":      len(res.Skipped),
	}).Info("Candidate assigned")
	return res, nil
}

// RemoveAssignment takes c off the ballot of e while e is still upcoming
func (s *Candidates) RemoveAssignment(ctx context.Context, c *domain.Candidate, e *domain.Election, confirmed bool) error {
	if e.Status != domain.StatusUpcoming {
		return ErrNotUpcoming
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	return s.api.RemoveCandidate(ctx, e.ID, c.ID)
}

// Detail is a candidate with the full record of each assigned election
type Detail struct {
	Candidate domain.Candidate
	Elections []domain.Election
}

// Detail loads a candidate and then each assigned election in turn
func (s *Candidates) Detail(ctx context.Context, id string) (*Detail, error) {
	c, err := s.api.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{Candidate: *c, Elections: make([]domain.Election, 0, len(c.AssignedElections))}
	for _, a := range c.AssignedElections {
		e, err := s.api.GetElection(ctx, a.ElectionID)
		if err != nil {
			return nil, err
		}
		d.Elections = append(d.Elections, *e)
	}
	return d, nil
}

// Ballot lists the candidates assigned to an election
func (s *Candidates) Ballot(ctx context.Context, electionID string) ([]domain.Candidate, error) {
	return s.api.ElectionCandidates(ctx, electionID)
}
