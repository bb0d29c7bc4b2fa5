package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"votedesk/internal/domain"
	"votedesk/internal/validation"
	"votedesk/pkg/logger"
)

var (
	ErrFieldLocked      = errors.New("admin: field is locked while the election is active")
	ErrStatusTransition = errors.New("admin: an active election can only move to completed")
	ErrAlreadyPublished = errors.New("admin: results are already published")
	ErrVotingOpen       = errors.New("admin: results can be published once voting has closed")
)

// Election form fields, in form order
var electionFields = []string{
	"title", "type", "level", "panchayatName", "state", "district", "taluka",
	"villageCity", "description", "votingStartDate", "votingEndDate",
	"resultDeclarationDate", "status",
}

// ElectionsAPI is the election part of the REST client
type ElectionsAPI interface {
	ListElections(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Election], error)
	GetElection(ctx context.Context, id string) (*domain.Election, error)
	CreateElection(ctx context.Context, in domain.ElectionInput) (*domain.Election, error)
	UpdateElection(ctx context.Context, id string, in domain.ElectionInput) (*domain.Election, error)
	DeleteElection(ctx context.Context, id string) error
	ArchiveElection(ctx context.Context, id string) error
	RestoreElection(ctx context.Context, id string) error
	PermanentDeleteElection(ctx context.Context, id string) error
	PublishResults(ctx context.Context, id string) (*domain.Election, error)
	GetResults(ctx context.Context, id string) (*domain.ElectionResults, error)
	GetPublicResults(ctx context.Context, id string) (*domain.ElectionResults, error)
	PublishedList(ctx context.Context) ([]domain.Election, error)
}

// Elections backs the elections, results and history screens
type Elections struct {
	api    ElectionsAPI
	now    func() time.Time
	logger *logger.Logger
}

func NewElections(api ElectionsAPI, log *logger.Logger) *Elections {
	return &Elections{api: api, now: time.Now, logger: log.Named("elections")}
}

// List is the elections screen, filterable by status and archived flag
func (s *Elections) List() *Resource[domain.Election] {
	return NewResource[domain.Election](s.api.ListElections, nil)
}

// History lists archived elections, which can be restored or deleted for good
func (s *Elections) History() *Resource[domain.Election] {
	return NewResource[domain.Election](s.api.ListElections, map[string]string{"isArchived": "true"})
}

func (s *Elections) Get(ctx context.Context, id string) (*domain.Election, error) {
	return s.api.GetElection(ctx, id)
}

func (s *Elections) Create(ctx context.Context, in domain.ElectionInput) (*domain.Election, error) {
	if in.Status == "" {
		in.Status = domain.StatusUpcoming
	}
	if err := validation.Election(in); err != nil {
		return nil, err
	}
	e, err := s.api.CreateElection(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.WithField("election_id", e.ID).Info("Election created")
	return e, nil
}

// Locked reports whether e is past the point where it can be edited freely
func Locked(e *domain.Election) bool {
	return e.Status == domain.StatusActive
}

// EditableFields lists the form fields that may be changed on e
func EditableFields(e *domain.Election) []string {
	if Locked(e) {
		return []string{"status"}
	}
	return append([]string(nil), electionFields...)
}

// AllowedStatuses lists the statuses the edit form offers for e
func AllowedStatuses(e *domain.Election) []domain.ElectionStatus {
	if Locked(e) {
		return []domain.ElectionStatus{domain.StatusActive, domain.StatusCompleted}
	}
	return append([]domain.ElectionStatus(nil), domain.ElectionStatuses...)
}

// ApplyUpdate checks in against the status lock of current and returns the
// body to send. An active election keeps every field except status, and
// status may only stay active or become completed.
func ApplyUpdate(current *domain.Election, in domain.ElectionInput) (domain.ElectionInput, error) {
	if !Locked(current) {
		return in, nil
	}

	was := domain.InputFrom(current)
	for _, field := range changedFields(was, in) {
		if field != "status" {
			return domain.ElectionInput{}, fmt.Errorf("%w: %s", ErrFieldLocked, field)
		}
	}
	switch in.Status {
	case domain.StatusActive, domain.StatusCompleted:
	default:
		return domain.ElectionInput{}, ErrStatusTransition
	}
	was.Status = in.Status
	return was, nil
}

func changedFields(a, b domain.ElectionInput) []string {
	var changed []string
	diff := func(name string, same bool) {
		if !same {
			changed = append(changed, name)
		}
	}
	diff("title", a.Title == b.Title)
	diff("type", a.Type == b.Type)
	diff("level", a.Level == b.Level)
	diff("panchayatName", a.PanchayatName == b.PanchayatName)
	diff("state", a.State == b.State)
	diff("district", a.District == b.District)
	diff("taluka", a.Taluka == b.Taluka)
	diff("villageCity", a.VillageCity == b.VillageCity)
	diff("description", a.Description == b.Description)
	diff("votingStartDate", a.VotingStartDate.Equal(b.VotingStartDate))
	diff("votingEndDate", a.VotingEndDate.Equal(b.VotingEndDate))
	diff("resultDeclarationDate", a.ResultDeclarationDate.Equal(b.ResultDeclarationDate))
	diff("status", a.Status == b.Status)
	return changed
}

// Update saves the edit form of current
func (s *Elections) Update(ctx context.Context, current *domain.Election, in domain.ElectionInput) (*domain.Election, error) {
	body, err := ApplyUpdate(current, in)
	if err != nil {
		return nil, err
	}
	if !Locked(current) {
		if err := validation.Election(body); err != nil {
			return nil, err
		}
	}
	return s.api.UpdateElection(ctx, current.ID, body)
}

func (s *Elections) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	return s.api.DeleteElection(ctx, id)
}

func (s *Elections) Archive(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	return s.api.ArchiveElection(ctx, id)
}

func (s *Elections) Restore(ctx context.Context, id string) error {
	return s.api.RestoreElection(ctx, id)
}

func (s *Elections) PermanentDelete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.api.PermanentDeleteElection(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("election_id", id).Warn("Election permanently deleted")
	return nil
}

// CanPublish reports whether the publish action is offered for e
func CanPublish(e *domain.Election, now time.Time) bool {
	return !e.Results.IsDeclared && e.VotingClosed(now)
}

// PublishResults declares the results of e. Once declared, publishing again
// is refused without contacting the API.
func (s *Elections) PublishResults(ctx context.Context, e *domain.Election, confirmed bool) (*domain.Election, error) {
	if e.Results.IsDeclared {
		return nil, ErrAlreadyPublished
	}
	if !e.VotingClosed(s.now()) {
		return nil, ErrVotingOpen
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}
	published, err := s.api.PublishResults(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	s.logger.WithField("election_id", e.ID).Info("Results published")
	return published, nil
}

// Results returns the admin view of an election's results with shares
func (s *Elections) Results(ctx context.Context, id string) (*domain.ElectionResults, error) {
	r, err := s.api.GetResults(ctx, id)
	if err != nil {
		return nil, err
	}
	ComputeShares(r)
	return r, nil
}

// PublicResults returns the results of a published election
func (s *Elections) PublicResults(ctx context.Context, id string) (*domain.ElectionResults, error) {
	r, err := s.api.GetPublicResults(ctx, id)
	if err != nil {
		return nil, err
	}
	ComputeShares(r)
	return r, nil
}

func (s *Elections) PublishedList(ctx context.Context) ([]domain.Election, error) {
	return s.api.PublishedList(ctx)
}
