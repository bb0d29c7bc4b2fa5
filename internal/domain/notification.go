package domain

// Audience of an admin notification
type Audience string

const (
	AudienceAll    Audience = "all"
	AudienceVoters Audience = "voters"
	AudienceAdmins Audience = "admins"
	AudienceUsers  Audience = "users"
)

// Notification is the body of POST /api/admin/notifications/send
type Notification struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Type     string   `json:"type"`
	Audience Audience `json:"audience"`
	UserIDs  []string `json:"userIds,omitempty"`
}
