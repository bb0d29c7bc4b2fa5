package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votedesk/internal/domain"
	"votedesk/pkg/logger"
)

func TestSelection_Disjoint(t *testing.T) {
	sel := NewSelection()
	voter := domain.User{ID: "u1", Role: domain.RoleVoter}
	admin := domain.User{ID: "u2", Role: domain.RoleAdmin}

	sel.Toggle(voter)
	sel.Toggle(admin)
	assert.Equal(t, []string{"u1"}, sel.Voters())
	assert.Equal(t, []string{"u2"}, sel.Admins())

	// the same account after a role change moves lists
	sel.Toggle(domain.User{ID: "u1", Role: domain.RoleAdmin})
	assert.Empty(t, sel.Voters())
	assert.Equal(t, []string{"u1", "u2"}, sel.Admins())

	sel.Toggle(admin)
	assert.Equal(t, []string{"u1"}, sel.Admins())
	assert.True(t, sel.Selected("u1"))
	assert.False(t, sel.Selected("u2"))
}

func TestAssignAdmin_OneBatchedRequest(t *testing.T) {
	api := newFakeAPI()
	api.users = []domain.User{
		{ID: "u1", Role: domain.RoleVoter},
		{ID: "u2", Role: domain.RoleVoter},
		{ID: "u3", Role: domain.RoleVoter},
		{ID: "a1", Role: domain.RoleAdmin},
	}
	svc := NewUsers(api, logger.Nop())
	list := svc.List()
	sel := NewSelection()
	ctx := context.Background()
	require.NoError(t, list.Load(ctx))

	for _, u := range api.users[:3] {
		sel.Toggle(u)
	}
	sel.Toggle(api.users[3])

	assert.ErrorIs(t, svc.AssignAdmin(ctx, sel, list, false), ErrConfirmationRequired)
	require.NoError(t, svc.AssignAdmin(ctx, sel, list, true))

	assert.Equal(t, []string{
		"GET /api/admin/users",
		"POST /api/admin/users/assign-admin [u1 u2 u3]",
		"GET /api/admin/users",
	}, api.calls)
	assert.Empty(t, sel.Voters())
	assert.Empty(t, sel.Admins())
}

func TestAssignAdmin_ReloadFailureIsNotAnError(t *testing.T) {
	api := newFakeAPI()
	api.users = []domain.User{{ID: "u1", Role: domain.RoleVoter}}
	svc := NewUsers(api, logger.Nop())
	list := svc.List()
	sel := NewSelection()
	ctx := context.Background()
	require.NoError(t, list.Load(ctx))
	sel.Toggle(api.users[0])

	api.usersErr = errors.New("network down")
	require.NoError(t, svc.AssignAdmin(ctx, sel, list, true))

	assert.Contains(t, api.calls, "POST /api/admin/users/assign-admin [u1]")
	assert.Empty(t, sel.Voters())
}

func TestRemoveAdmin_WithoutListSkipsReload(t *testing.T) {
	api := newFakeAPI()
	svc := NewUsers(api, logger.Nop())
	sel := NewSelection()
	sel.Toggle(domain.User{ID: "a1", Role: domain.RoleAdmin})

	require.NoError(t, svc.RemoveAdmin(context.Background(), sel, nil, true))
	assert.Equal(t, []string{"POST /api/admin/users/remove-admin [a1]"}, api.calls)
	assert.Empty(t, sel.Admins())
}

func TestToggleSelected_RoleComesFromList(t *testing.T) {
	api := newFakeAPI()
	api.users = []domain.User{
		{ID: "u1", Role: domain.RoleVoter},
		{ID: "a1", Role: domain.RoleAdmin},
	}
	svc := NewUsers(api, logger.Nop())
	sel := NewSelection()
	ctx := context.Background()

	require.NoError(t, svc.ToggleSelected(ctx, sel, svc.List(), "a1"))
	assert.Equal(t, []string{"a1"}, sel.Admins())
	assert.Empty(t, sel.Voters())

	assert.ErrorIs(t, svc.ToggleSelected(ctx, sel, svc.List(), "ghost"), ErrUnknownUser)
	assert.False(t, sel.Selected("ghost"))
}

func TestRemoveAdmin_EmptySelectionIsNoop(t *testing.T) {
	api := newFakeAPI()
	svc := NewUsers(api, logger.Nop())
	require.NoError(t, svc.RemoveAdmin(context.Background(), NewSelection(), svc.List(), true))
	assert.Empty(t, api.calls)
}

func TestUsers_ActiveAndDelete(t *testing.T) {
	api := newFakeAPI()
	svc := NewUsers(api, logger.Nop())
	ctx := context.Background()

	u, err := svc.SetActive(ctx, "u1", false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	assert.ErrorIs(t, svc.Delete(ctx, "u1", false), ErrConfirmationRequired)
	require.NoError(t, svc.Delete(ctx, "u1", true))
	assert.Equal(t, []string{"PUT /api/admin/users/u1 active=false", "DELETE /api/admin/users/u1"}, api.calls)
}

func TestNotify(t *testing.T) {
	api := newFakeAPI()
	svc := NewUsers(api, logger.Nop())
	ctx := context.Background()

	_, err := svc.Notify(ctx, domain.Notification{Title: "Hi", Audience: domain.AudienceAll})
	require.Error(t, err)
	_, err = svc.Notify(ctx, domain.Notification{Title: "Hi", Message: "m", Audience: domain.AudienceUsers})
	require.Error(t, err)
	assert.Empty(t, api.calls)

	n, err := svc.Notify(ctx, domain.Notification{Title: "Hi", Message: "m", Audience: domain.AudienceVoters, UserIDs: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"POST /api/admin/notifications/send voters 0"}, api.calls)
}
