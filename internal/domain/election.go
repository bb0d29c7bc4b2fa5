package domain

import "time"

// ElectionStatus is mostly computed by the API from the voting window
type ElectionStatus string

const (
	StatusDraft     ElectionStatus = "draft"
	StatusUpcoming  ElectionStatus = "upcoming"
	StatusActive    ElectionStatus = "active"
	StatusCompleted ElectionStatus = "completed"
	StatusCancelled ElectionStatus = "cancelled"
	StatusPostponed ElectionStatus = "postponed"
)

// ElectionStatuses in the order the admin screens list them
var ElectionStatuses = []ElectionStatus{
	StatusDraft, StatusUpcoming, StatusActive, StatusCompleted, StatusCancelled, StatusPostponed,
}

// Valid reports a known status
func (s ElectionStatus) Valid() bool {
	for _, known := range ElectionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ResultsInfo is the publication state of an election's results
type ResultsInfo struct {
	IsDeclared bool       `json:"isDeclared"`
	DeclaredAt *time.Time `json:"declaredAt,omitempty"`
}

// Election as returned by the API
type Election struct {
	ID                    string         `json:"_id"`
	Title                 string         `json:"title"`
	Type                  string         `json:"type"`
	Level                 string         `json:"level"`
	PanchayatName         string         `json:"panchayatName,omitempty"`
	State                 string         `json:"state"`
	District              string         `json:"district"`
	Taluka                string         `json:"taluka"`
	VillageCity           string         `json:"villageCity"`
	Description           string         `json:"description"`
	VotingStartDate       time.Time      `json:"votingStartDate"`
	VotingEndDate         time.Time      `json:"votingEndDate"`
	ResultDeclarationDate time.Time      `json:"resultDeclarationDate"`
	Status                ElectionStatus `json:"status"`
	IsArchived            bool           `json:"isArchived"`
	TotalVotesCast        int            `json:"totalVotesCast"`
	Results               ResultsInfo    `json:"results"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}

// VotingClosed reports whether the voting window is over
func (e *Election) VotingClosed(now time.Time) bool {
	if e.Status == StatusCompleted {
		return true
	}
	return !e.VotingEndDate.IsZero() && now.After(e.VotingEndDate)
}

// ElectionInput is the create/update body for an election
type ElectionInput struct {
	Title                 string         `json:"title"`
	Type                  string         `json:"type"`
	Level                 string         `json:"level"`
	PanchayatName         string         `json:"panchayatName,omitempty"`
	State                 string         `json:"state"`
	District              string         `json:"district"`
	Taluka                string         `json:"taluka"`
	VillageCity           string         `json:"villageCity"`
	Description           string         `json:"description"`
	VotingStartDate       time.Time      `json:"votingStartDate"`
	VotingEndDate         time.Time      `json:"votingEndDate"`
	ResultDeclarationDate time.Time      `json:"resultDeclarationDate"`
	Status                ElectionStatus `json:"status,omitempty"`
}

// InputFrom copies the editable fields of e
func InputFrom(e *Election) ElectionInput {
	return ElectionInput{
		Title:                 e.Title,
		Type:                  e.Type,
		Level:                 e.Level,
		PanchayatName:         e.PanchayatName,
		State:                 e.State,
		District:              e.District,
		Taluka:                e.Taluka,
		VillageCity:           e.VillageCity,
		Description:           e.Description,
		VotingStartDate:       e.VotingStartDate,
		VotingEndDate:         e.VotingEndDate,
		ResultDeclarationDate: e.ResultDeclarationDate,
		Status:                e.Status,
	}
}

// CandidateTally is one row of an election's results
type CandidateTally struct {
	Candidate Candidate `json:"candidate"`
	Votes     int       `json:"votes"`
	Share     float64   `json:"-"`
	IsWinner  bool      `json:"-"`
}

// ElectionResults as returned by the results endpoints
type ElectionResults struct {
	Election   Election         `json:"election"`
	Results    []CandidateTally `json:"results"`
	TotalVotes int              `json:"totalVotes"`
}
