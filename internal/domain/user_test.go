package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func completeUser() *User {
	return &User{
		FullName:       "Asha Patil",
		Mobile:         "9876543210",
		Gender:         "female",
		Address:        "12 Main Road",
		CurrentAddress: "12 Main Road",
		State:          "Maharashtra",
		City:           "Baramati",
		VoterID:        "ABC1234567",
		Photo:          "https://cdn.example.org/p.jpg",
	}
}

func TestIsProfileComplete(t *testing.T) {
	assert.True(t, completeUser().IsProfileComplete())

	u := completeUser()
	u.Gender = GenderUndisclosed
	assert.False(t, u.IsProfileComplete())
	assert.Equal(t, []string{"gender"}, u.MissingProfileFields())

	u = completeUser()
	u.Photo = "  "
	u.VoterID = ""
	assert.Equal(t, []string{"voterId", "photo"}, u.MissingProfileFields())

	var nilUser *User
	assert.False(t, nilUser.IsProfileComplete())
}

func TestVotingClosed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := &Election{Status: StatusActive, VotingEndDate: now.Add(time.Hour)}
	assert.False(t, e.VotingClosed(now))

	e.VotingEndDate = now.Add(-time.Hour)
	assert.True(t, e.VotingClosed(now))

	e = &Election{Status: StatusCompleted}
	assert.True(t, e.VotingClosed(now))
}

func TestListQueryValues(t *testing.T) {
	q := ListQuery{Search: "gram", Filters: map[string]string{"status": "active", "empty": ""}}
	assert.Equal(t, "limit=10&page=1&search=gram&status=active", q.Values().Encode())
}
