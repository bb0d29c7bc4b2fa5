package domain

import "time"

// Assignment is a candidate's slot in one election
type Assignment struct {
	ElectionID string         `json:"electionId"`
	Title      string         `json:"title"`
	Status     ElectionStatus `json:"status"`
}

// Candidate as returned by the API
type Candidate struct {
	ID                 string       `json:"_id"`
	Name               string       `json:"name"`
	Village            string       `json:"village"`
	Taluka             string       `json:"taluka"`
	District           string       `json:"district"`
	State              string       `json:"state"`
	ElectionCardNumber string       `json:"electionCardNumber"`
	PartyName          string       `json:"partyName"`
	PartySymbol        string       `json:"partySymbol"`
	CandidatePhoto     string       `json:"candidatePhoto"`
	ElectionCardPhoto  string       `json:"electionCardPhoto"`
	ContactNumber      string       `json:"contactNumber"`
	Email              string       `json:"email"`
	Notes              string       `json:"notes"`
	Status             string       `json:"status"`
	IsAssigned         bool         `json:"isAssigned"`
	AssignedElections  []Assignment `json:"assignedElections"`
	CreatedAt          time.Time    `json:"createdAt"`
}

// AssignedTo reports whether the candidate already has a slot in electionID
func (c *Candidate) AssignedTo(electionID string) bool {
	for _, a := range c.AssignedElections {
		if a.ElectionID == electionID {
			return true
		}
	}
	return false
}

// CandidateInput is the create/update body for a candidate
type CandidateInput struct {
	Name               string `json:"name"`
	Village            string `json:"village"`
	Taluka             string `json:"taluka"`
	District           string `json:"district"`
	State              string `json:"state"`
	ElectionCardNumber string `json:"electionCardNumber"`
	PartyName          string `json:"partyName"`
	PartySymbol        string `json:"partySymbol"`
	CandidatePhoto     string `json:"candidatePhoto,omitempty"`
	ElectionCardPhoto  string `json:"electionCardPhoto,omitempty"`
	ContactNumber      string `json:"contactNumber"`
	Email              string `json:"email"`
	Notes              string `json:"notes,omitempty"`
}
