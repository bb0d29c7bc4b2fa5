package validation

import (
	"strings"
	"time"

	"votedesk/internal/domain"
)

// Login validates the first login step
func Login(email, password string) error {
	v := Violations{}
	Email("email", email, v)
	Required("password", password, v)
	return v.Err()
}

// Registration validates a new account before the OTP is requested
func Registration(r domain.Registration, now time.Time) error {
	v := Violations{}
	Required("fullName", r.FullName, v)
	Email("email", r.Email, v)
	Mobile("mobile", r.Mobile, v)
	Adult("dateOfBirth", r.DateOfBirth, now, v)
	Password("password", r.Password, v)
	PasswordMatch("confirmPassword", r.Password, r.ConfirmPassword, v)
	return v.Err()
}

// PasswordReset validates the second step of the forgot-password flow
func PasswordReset(email, otp, password, confirm string) error {
	v := Violations{}
	Email("email", email, v)
	OTP("otp", otp, v)
	Password("password", password, v)
	PasswordMatch("confirmPassword", password, confirm, v)
	return v.Err()
}

// Profile validates a profile update. Only filled fields are checked, except name.
func Profile(p domain.ProfileUpdate) error {
	v := Violations{}
	Required("fullName", p.FullName, v)
	if strings.TrimSpace(p.Mobile) != "" {
		Mobile("mobile", p.Mobile, v)
	}
	if strings.TrimSpace(p.VoterID) != "" {
		ElectionCard("voterId", p.VoterID, v)
	}
	return v.Err()
}

// Candidate validates and normalizes a candidate form in place
func Candidate(c *domain.CandidateInput) error {
	v := Violations{}
	Required("name", c.Name, v)
	Required("partyName", c.PartyName, v)
	Required("state", c.State, v)
	Required("district", c.District, v)
	c.ElectionCardNumber = ElectionCard("electionCardNumber", c.ElectionCardNumber, v)
	if strings.TrimSpace(c.ContactNumber) != "" {
		Mobile("contactNumber", c.ContactNumber, v)
	}
	if strings.TrimSpace(c.Email) != "" {
		Email("email", c.Email, v)
	}
	return v.Err()
}

// Election validates an election form
func Election(e domain.ElectionInput) error {
	v := Violations{}
	Required("title", e.Title, v)
	Required("type", e.Type, v)
	Required("level", e.Level, v)
	Required("state", e.State, v)
	if e.VotingStartDate.IsZero() {
		v.Add("votingStartDate", "Voting start date is required")
	}
	if e.VotingEndDate.IsZero() {
		v.Add("votingEndDate", "Voting end date is required")
	} else if !e.VotingEndDate.After(e.VotingStartDate) {
		v.Add("votingEndDate", "Voting must end after it starts")
	}
	if e.ResultDeclarationDate.IsZero() {
		v.Add("resultDeclarationDate", "Result declaration date is required")
	} else if e.ResultDeclarationDate.Before(e.VotingEndDate) {
		v.Add("resultDeclarationDate", "Results cannot be declared before voting ends")
	}
	if e.Status != "" && !e.Status.Valid() {
		v.Add("status", "Unknown status")
	}
	return v.Err()
}

// Notification validates an admin notification
func Notification(n domain.Notification) error {
	v := Violations{}
	Required("title", n.Title, v)
	Required("message", n.Message, v)
	switch n.Audience {
	case domain.AudienceAll, domain.AudienceVoters, domain.AudienceAdmins:
	case domain.AudienceUsers:
		if len(n.UserIDs) == 0 {
			v.Add("userIds", "Select at least one user")
		}
	default:
		v.Add("audience", "Choose who receives the notification")
	}
	return v.Err()
}
