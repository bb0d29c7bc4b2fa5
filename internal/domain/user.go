package domain

import (
	"strings"
	"time"
)

// Role of a user account
type Role string

const (
	RoleVoter Role = "voter"
	RoleAdmin Role = "admin"
)

// GenderUndisclosed does not count towards profile completeness.
const GenderUndisclosed = "prefer-not-to-say"

// User is the account as returned by the API
type User struct {
	ID              string    `json:"_id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Mobile          string    `json:"mobile"`
	Gender          string    `json:"gender"`
	DateOfBirth     string    `json:"dateOfBirth,omitempty"`
	Address         string    `json:"address"`
	CurrentAddress  string    `json:"currentAddress"`
	State           string    `json:"state"`
	District        string    `json:"district"`
	Taluka          string    `json:"taluka"`
	City            string    `json:"city"`
	VoterID         string    `json:"voterId"`
	Photo           string    `json:"photo"`
	Role            Role      `json:"role"`
	IsActive        bool      `json:"isActive"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsAdmin reports the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// MissingProfileFields lists the required profile fields that are still empty.
func (u *User) MissingProfileFields() []string {
	if u == nil {
		return nil
	}
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("fullName", u.FullName)
	check("mobile", u.Mobile)
	if strings.TrimSpace(u.Gender) == "" || u.Gender == GenderUndisclosed {
		missing = append(missing, "gender")
	}
	check("address", u.Address)
	check("currentAddress", u.CurrentAddress)
	check("state", u.State)
	check("city", u.City)
	check("voterId", u.VoterID)
	check("photo", u.Photo)
	return missing
}

// IsProfileComplete gates access to voting
func (u *User) IsProfileComplete() bool {
	return u != nil && len(u.MissingProfileFields()) == 0
}

// ProfileUpdate is the body of PUT /api/users/profile
type ProfileUpdate struct {
	FullName       string `json:"fullName"`
	Mobile         string `json:"mobile"`
	Gender         string `json:"gender"`
	Address        string `json:"address"`
	CurrentAddress string `json:"currentAddress"`
	State          string `json:"state"`
	District       string `json:"district"`
	Taluka         string `json:"taluka"`
	City           string `json:"city"`
	VoterID        string `json:"voterId"`
	Photo          string `json:"photo"`
}

// Registration is the body of the two registration calls
type Registration struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
	DateOfBirth     string `json:"dateOfBirth"`
	Gender          string `json:"gender,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}
