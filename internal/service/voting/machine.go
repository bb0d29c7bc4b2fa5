package voting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"votedesk/internal/domain"
	"votedesk/internal/validation"
	"votedesk/pkg/logger"
)

// listLimit is the page size used for the voter's election listing
const listLimit = 100

// maxListingPages bounds how far the listing follows pagination per status
const maxListingPages = 20

var (
	ErrInvalidTransition    = errors.New("voting: invalid transition")
	ErrProfileIncomplete    = errors.New("voting: complete your profile before voting")
	ErrNotVotable           = errors.New("voting: election is not open for voting")
	ErrConfirmationRequired = errors.New("voting: confirmation required")
	ErrUnknownCandidate     = errors.New("voting: candidate is not on the ballot")
	ErrCardMismatch         = errors.New("voting: use the election card the password was sent for")
	ErrRevealLimit          = errors.New("voting: reveal limit reached")
)

// API is the part of the REST client the voting flow calls
type API interface {
	ListElections(ctx context.Context, q domain.ListQuery) (domain.Page[domain.Election], error)
	CheckStatus(ctx context.Context, electionID string) (*domain.VoteStatus, error)
	RequestPassword(ctx context.Context, electionID, email, cardNumber string) error
	VerifyCredentials(ctx context.Context, electionID, cardNumber, votingPassword string) (*domain.BallotPaper, error)
	CastVote(ctx context.Context, req domain.CastRequest) error
	ViewVote(ctx context.Context, electionID string) (*domain.Disclosure, error)
}

// Machine is the voting flow of one session. Operations hold the machine
// for the duration of their API call, so a session cannot cast twice
// concurrently.
type Machine struct {
	mu     sync.Mutex
	api    API
	state  State
	logger *logger.Logger
}

// NewMachine starts at an empty listing
func NewMachine(api API, log *logger.Logger) *Machine {
	return &Machine{
		api:    api,
		state:  Listing{},
		logger: log.Named("voting"),
	}
}

// Current returns the current state
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) invalid(op string) error {
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, op, m.state.Name())
}

func (m *Machine) set(s State) {
	m.logger.WithFields(map[string]interface{}{
		"from": m.state.Name(),
		"to":   s.Name(),
	}).Debug("Voting state changed")
	m.state = s
}

// Votable reports whether the Vote action is offered for e
func Votable(e domain.Election) bool {
	return e.Status == domain.StatusActive
}

// ListElections loads the active and upcoming elections into the listing.
// Only allowed while listing.
func (m *Machine) ListElections(ctx context.Context) ([]domain.Election, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.(Listing); !ok {
		return nil, m.invalid("list")
	}

	elections, err := m.fetchListing(ctx)
	if err != nil {
		return nil, err
	}
	m.state = Listing{Elections: elections}
	return elections, nil
}

// fetchListing asks the API for active and upcoming elections, one status at
// a time, following every page
func (m *Machine) fetchListing(ctx context.Context) ([]domain.Election, error) {
	var elections []domain.Election
	for _, status := range []domain.ElectionStatus{domain.StatusActive, domain.StatusUpcoming} {
		q := domain.ListQuery{
			Page:  1,
			Limit: listLimit,
			Filters: map[string]string{
				"status":     string(status),
				"isArchived": "false",
			},
		}
		for {
			page, err := m.api.ListElections(ctx, q)
			if err != nil {
				return nil, err
			}
			for _, e := range page.Items {
				if e.IsArchived || e.Status != status {
					continue
				}
				elections = append(elections, e)
			}
			if q.Page >= page.TotalPages || q.Page >= maxListingPages || len(page.Items) == 0 {
				break
			}
			q.Page++
		}
	}
	return elections, nil
}

// BeginVote checks the vote status of an election from the listing. A voter
// who already voted goes to AlreadyVoted and never sees the credentials step.
func (m *Machine) BeginVote(ctx context.Context, user *domain.User, electionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state.(type) {
	case Listing, Confirmation, AlreadyVoted:
	default:
		return m.invalid("begin")
	}
	if !user.IsProfileComplete() {
		return ErrProfileIncomplete
	}

	election, err := m.lookup(ctx, electionID)
	if err != nil {
		return err
	}
	if !Votable(*election) {
		return ErrNotVotable
	}

	status, err := m.api.CheckStatus(ctx, election.ID)
	if err != nil {
		return err
	}
	if status.HasVoted {
		next, err := NewAlreadyVoted(election, status.ViewCount)
		if err != nil {
			return err
		}
		m.set(next)
		return nil
	}

	next, err := NewCredentials(election)
	if err != nil {
		return err
	}
	m.set(next)
	return nil
}

// lookup finds electionID in the listing, refreshing it once when absent
func (m *Machine) lookup(ctx context.Context, electionID string) (*domain.Election, error) {
	if electionID == "" {
		return nil, ErrMissingElection
	}
	find := func(list []domain.Election) *domain.Election {
		for i := range list {
			if list[i].ID == electionID {
				return &list[i]
			}
		}
		return nil
	}
	if listing, ok := m.state.(Listing); ok {
		if e := find(listing.Elections); e != nil {
			return e, nil
		}
	}
	elections, err := m.fetchListing(ctx)
	if err != nil {
		return nil, err
	}
	if e := find(elections); e != nil {
		return e, nil
	}
	return nil, ErrMissingElection
}

// RequestPassword asks the API to email a voting password
func (m *Machine) RequestPassword(ctx context.Context, email, card string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.state.(Credentials)
	if !ok {
		return m.invalid("request password")
	}

	email = strings.TrimSpace(email)
	v := validation.Violations{}
	validation.Email("email", email, v)
	card = validation.ElectionCard("electionCardNumber", card, v)
	if err := v.Err(); err != nil {
		return err
	}

	if err := m.api.RequestPassword(ctx, cur.Election.ID, email, card); err != nil {
		return err
	}
	next, err := NewPassword(&cur.Election, email, card)
	if err != nil {
		return err
	}
	m.set(next)
	return nil
}

// VerifyPassword unlocks the ballot
func (m *Machine) VerifyPassword(ctx context.Context, card, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.state.(Password)
	if !ok {
		return m.invalid("verify password")
	}

	v := validation.Violations{}
	card = validation.ElectionCard("electionCardNumber", card, v)
	if v.Empty() && card != cur.CardNumber {
		v.Add("electionCardNumber", ErrCardMismatch.Error())
	}
	password = strings.TrimSpace(password)
	validation.VotingPassword("votingPassword", password, v)
	if err := v.Err(); err != nil {
		return err
	}

	paper, err := m.api.VerifyCredentials(ctx, cur.Election.ID, card, password)
	if err != nil {
		return err
	}
	election := paper.Election
	if election.ID == "" {
		election = cur.Election
	}
	next, err := NewBallot(&election, card, paper.Candidates)
	if err != nil {
		return err
	}
	m.set(next)
	return nil
}

// Select picks exactly one candidate on the ballot
func (m *Machine) Select(candidateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.state.(Ballot)
	if !ok {
		return m.invalid("select")
	}
	if _, found := cur.Candidate(candidateID); !found {
		return ErrUnknownCandidate
	}
	cur.Selected = candidateID
	m.state = cur
	return nil
}

// Cast submits the selected candidate. Without confirmation no request is
// made. A failed cast leaves the ballot and its selection in place.
func (m *Machine) Cast(ctx context.Context, confirmed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.state.(Ballot)
	if !ok {
		return m.invalid("cast")
	}
	chosen, found := cur.Candidate(cur.Selected)
	if !found {
		return ErrMissingChoice
	}
	if !confirmed {
		return ErrConfirmationRequired
	}

	req := domain.CastRequest{
		ElectionID:         cur.Election.ID,
		CandidateID:        chosen.ID,
		ElectionCardNumber: cur.CardNumber,
	}
	if err := m.api.CastVote(ctx, req); err != nil {
		m.logger.WithError(err).WithField("election_id", cur.Election.ID).Warn("Vote cast failed")
		return err
	}

	next, err := NewConfirmation(&cur.Election, chosen)
	if err != nil {
		return err
	}
	m.set(next)
	m.logger.WithField("election_id", cur.Election.ID).Info("Vote cast")
	return nil
}

// Reveal discloses the previously cast choice, at most MaxReveals times
func (m *Machine) Reveal(ctx context.Context) (*domain.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.state.(AlreadyVoted)
	if !ok {
		return nil, m.invalid("reveal")
	}
	if !cur.CanReveal() {
		return nil, ErrRevealLimit
	}

	disclosure, err := m.api.ViewVote(ctx, cur.Election.ID)
	if err != nil {
		return nil, err
	}
	candidate := disclosure.Candidate
	cur.Disclosed = &candidate
	cur.ViewCount = max(cur.ViewCount+1, disclosure.ViewCount)
	m.state = cur
	return &candidate, nil
}

// Reset returns to an empty listing from any state
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(Listing{})
}
