// Package voting is the vote-casting flow of a voter session as an explicit
// state machine. Every state carries the payload its screen needs; states
// are only built through constructors that refuse missing payloads.
package voting

import (
	"errors"

	"votedesk/internal/domain"
)

// StateName identifies a screen of the flow
type StateName string

const (
	StateListing      StateName = "listing"
	StateCredentials  StateName = "credentials"
	StatePassword     StateName = "password"
	StateBallot       StateName = "ballot"
	StateConfirmation StateName = "confirmation"
	StateAlreadyVoted StateName = "already_voted"
)

var (
	ErrMissingElection = errors.New("voting: election is required")
	ErrNoCandidates    = errors.New("voting: ballot has no candidates")
	ErrMissingChoice   = errors.New("voting: candidate is required")
)

// State is one of Listing, Credentials, Password, Ballot, Confirmation or
// AlreadyVoted.
type State interface {
	Name() StateName
}

// Listing shows the elections the voter can see
type Listing struct {
	Elections []domain.Election
}

// Credentials asks for email and election card
type Credentials struct {
	Election domain.Election
}

// Password asks for the emailed voting password
type Password struct {
	Election   domain.Election
	Email      string
	CardNumber string
}

// Ballot lists the candidates; Selected is "" until one is picked
type Ballot struct {
	Election   domain.Election
	CardNumber string
	Candidates []domain.Candidate
	Selected   string
}

// Confirmation is shown after a successful cast
type Confirmation struct {
	Election  domain.Election
	Candidate domain.Candidate
}

// AlreadyVoted replaces the flow when the voter has voted in the election
type AlreadyVoted struct {
	Election  domain.Election
	ViewCount int
	Disclosed *domain.Candidate
}

func (Listing) Name() StateName      { return StateListing }
func (Credentials) Name() StateName  { return StateCredentials }
func (Password) Name() StateName     { return StatePassword }
func (Ballot) Name() StateName       { return StateBallot }
func (Confirmation) Name() StateName { return StateConfirmation }
func (AlreadyVoted) Name() StateName { return StateAlreadyVoted }

func checkElection(e *domain.Election) error {
	if e == nil || e.ID == "" {
		return ErrMissingElection
	}
	return nil
}

// NewCredentials enters the credentials step for e
func NewCredentials(e *domain.Election) (Credentials, error) {
	if err := checkElection(e); err != nil {
		return Credentials{}, err
	}
	return Credentials{Election: *e}, nil
}

// NewPassword enters the password step
func NewPassword(e *domain.Election, email, card string) (Password, error) {
	if err := checkElection(e); err != nil {
		return Password{}, err
	}
	return Password{Election: *e, Email: email, CardNumber: card}, nil
}

// NewBallot opens the ballot. An empty candidate list is refused.
func NewBallot(e *domain.Election, card string, candidates []domain.Candidate) (Ballot, error) {
	if err := checkElection(e); err != nil {
		return Ballot{}, err
	}
	if len(candidates) == 0 {
		return Ballot{}, ErrNoCandidates
	}
	return Ballot{Election: *e, CardNumber: card, Candidates: candidates}, nil
}

// NewConfirmation records the cast choice
func NewConfirmation(e *domain.Election, c *domain.Candidate) (Confirmation, error) {
	if err := checkElection(e); err != nil {
		return Confirmation{}, err
	}
	if c == nil || c.ID == "" {
		return Confirmation{}, ErrMissingChoice
	}
	return Confirmation{Election: *e, Candidate: *c}, nil
}

// NewAlreadyVoted enters the disclosure screen
func NewAlreadyVoted(e *domain.Election, viewCount int) (AlreadyVoted, error) {
	if err := checkElection(e); err != nil {
		return AlreadyVoted{}, err
	}
	return AlreadyVoted{Election: *e, ViewCount: viewCount}, nil
}

// Candidate returns the ballot entry with id
func (b Ballot) Candidate(id string) (*domain.Candidate, bool) {
	for i := range b.Candidates {
		if b.Candidates[i].ID == id {
			return &b.Candidates[i], true
		}
	}
	return nil, false
}

// CanReveal reports whether another disclosure is allowed
func (a AlreadyVoted) CanReveal() bool {
	return a.ViewCount < domain.MaxReveals
}

// RevealsLeft is shown next to the reveal button
func (a AlreadyVoted) RevealsLeft() int {
	if left := domain.MaxReveals - a.ViewCount; left > 0 {
		return left
	}
	return 0
}
