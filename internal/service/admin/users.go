package admin

import (
	"context"
	"errors"
	"sort"
	"sync"

	"votedesk/internal/apiclient"
	"votedesk/internal/domain"
	"votedesk/internal/validation"
	"votedesk/pkg/logger"
)

// UsersAPI is the user administration part of the REST client
type UsersAPI interface {
	ListUsers(ctx context.Context, q domain.ListQuery) (domain.Page[domain.User], error)
	UpdateUser(ctx context.Context, id string, u apiclient.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	AssignAdmin(ctx context.Context, userIDs []string) error
	RemoveAdmin(ctx context.Context, userIDs []string) error
	SendNotification(ctx context.Context, n domain.Notification) (int, error)
}

// Users backs the users, access and notifications screens
type Users struct {
	api    UsersAPI
	logger *logger.Logger
}

func NewUsers(api UsersAPI, log *logger.Logger) *Users {
	return &Users{api: api, logger: log.Named("users")}
}

// List is filterable by role and isActive
func (s *Users) List() *Resource[domain.User] {
	return NewResource[domain.User](s.api.ListUsers, nil)
}

// SetActive enables or disables an account
func (s *Users) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	return s.api.UpdateUser(ctx, id, apiclient.UserUpdate{IsActive: &active})
}

func (s *Users) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	return s.api.DeleteUser(ctx, id)
}

// ErrUnknownUser is returned when a toggled id is not on the loaded list
var ErrUnknownUser = errors.New("admin: user is not on this page")

// Selection is the checkbox state of the access screen. A user is selected
// either as a voter to promote or as an admin to demote, never both.
type Selection struct {
	mu     sync.Mutex
	voters map[string]struct{}
	admins map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{
		voters: make(map[string]struct{}),
		admins: make(map[string]struct{}),
	}
}

func toggle(set map[string]struct{}, id string) {
	if _, ok := set[id]; ok {
		delete(set, id)
		return
	}
	set[id] = struct{}{}
}

// Toggle flips the selection of u in the list matching its role
func (s *Selection) Toggle(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.IsAdmin() {
		delete(s.voters, u.ID)
		toggle(s.admins, u.ID)
		return
	}
	delete(s.admins, u.ID)
	toggle(s.voters, u.ID)
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Selection) Voters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sorted(s.voters)
}

func (s *Selection) Admins() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sorted(s.admins)
}

func (s *Selection) Selected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, v := s.voters[id]
	_, a := s.admins[id]
	return v || a
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters = make(map[string]struct{})
	s.admins = make(map[string]struct{})
}

// AssignAdmin promotes every selected voter in one request, then clears the
// selection and reloads list when one is given. A failed reload does not
// undo the promotion and is only logged.
func (s *Users) AssignAdmin(ctx context.Context, sel *Selection, list *Resource[domain.User], confirmed bool) error {
	ids := sel.Voters()
	if len(ids) == 0 {
		return nil
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.api.AssignAdmin(ctx, ids); err != nil {
		return err
	}
	s.logger.WithField("count", len(ids)).Info("Admins assigned")
	sel.Clear()
	s.reload(ctx, list)
	return nil
}

// RemoveAdmin demotes every selected admin in one request
func (s *Users) RemoveAdmin(ctx context.Context, sel *Selection, list *Resource[domain.User], confirmed bool) error {
	ids := sel.Admins()
	if len(ids) == 0 {
		return nil
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.api.RemoveAdmin(ctx, ids); err != nil {
		return err
	}
	s.logger.WithField("count", len(ids)).Info("Admins removed")
	sel.Clear()
	s.reload(ctx, list)
	return nil
}

func (s *Users) reload(ctx context.Context, list *Resource[domain.User]) {
	if list == nil {
		return
	}
	if err := list.Load(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to reload users after role change")
	}
}

// ToggleSelected checks or unchecks the user id on list. The user's role
// decides the side of the selection, so list is loaded first and an id
// that is not on it is refused.
func (s *Users) ToggleSelected(ctx context.Context, sel *Selection, list *Resource[domain.User], id string) error {
	if err := list.Load(ctx); err != nil {
		return err
	}
	for _, u := range list.Items() {
		if u.ID == id {
			sel.Toggle(u)
			return nil
		}
	}
	return ErrUnknownUser
}

// Notify sends a notification and returns the number of recipients
func (s *Users) Notify(ctx context.Context, n domain.Notification) (int, error) {
	if err := validation.Notification(n); err != nil {
		return 0, err
	}
	if n.Audience != domain.AudienceUsers {
		n.UserIDs = nil
	}
	return s.api.SendNotification(ctx, n)
}
