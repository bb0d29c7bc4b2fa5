package domain

// MaxReveals is how often a voter may re-reveal an already cast choice.
const MaxReveals = 2

// VoteStatus is the answer of GET /api/voting/check-status/{electionId}
type VoteStatus struct {
	HasVoted  bool `json:"hasVoted"`
	ViewCount int  `json:"viewCount"`
}

// BallotPaper is what verify-credentials unlocks
type BallotPaper struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
}

// CastRequest is the body of POST /api/voting/cast-vote
type CastRequest struct {
	ElectionID         string `json:"electionId"`
	CandidateID        string `json:"candidateId"`
	ElectionCardNumber string `json:"electionCardNumber"`
}

// Disclosure is the answer of POST /api/voting/view-vote/{electionId}
type Disclosure struct {
	Candidate Candidate `json:"candidate"`
	ViewCount int       `json:"viewCount"`
}
