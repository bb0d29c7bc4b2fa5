package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"votedesk/internal/domain"
	"votedesk/internal/session"
	apperrors "votedesk/pkg/errors"
	"votedesk/pkg/logger"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	ctype  string
	body   map[string]interface{}
}

func newTestServer(t *testing.T, status int, response interface{}) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			ctype:  r.Header.Get("Content-Type"),
		}
		if r.ContentLength > 0 {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		calls = append(calls, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestLogin_PostsCredentials(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, map[string]interface{}{"success": true, "email": "a@b.com"})
	client := New(srv.URL, 5*time.Second, logger.Nop())

	email, err := client.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/api/auth/login", call.path)
	assert.Equal(t, "application/json", call.ctype)
	assert.Equal(t, map[string]interface{}{"email": "a@b.com", "password": "x"}, call.body)
	assert.Empty(t, call.auth)
}

func TestWithTokenSource_AttachesBearer(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, map[string]interface{}{"success": true, "user": map[string]interface{}{"_id": "u1", "email": "a@b.com"}})
	base := New(srv.URL, 5*time.Second, logger.Nop())

	store := session.NewMemoryStore(time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "sid", session.ChannelUser, "tok-123"))

	user, err := base.WithTokenSource(session.TokenSource(ctx, store, "sid", session.ChannelUser)).Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = base.WithTokenSource(session.TokenSource(ctx, store, "other", session.ChannelUser)).Me(ctx)
	require.NoError(t, err)

	require.Len(t, *calls, 2)
	assert.Equal(t, "Bearer tok-123", (*calls)[0].auth)
	assert.Empty(t, (*calls)[1].auth)
}

func TestWithTokenSourceFunc_PerSession(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, map[string]interface{}{"success": true, "user": map[string]interface{}{"_id": "u1"}})
	store := session.NewMemoryStore(time.Hour)
	require.NoError(t, store.Set(context.Background(), "s1", session.ChannelUser, "user-tok"))
	require.NoError(t, store.Set(context.Background(), "s1", session.ChannelAdmin, "admin-tok"))

	base := New(srv.URL, 5*time.Second, logger.Nop())
	users := base.WithTokenSourceFunc(session.ContextTokenSource(store, session.ChannelUser))
	admins := base.WithTokenSourceFunc(session.ContextTokenSource(store, session.ChannelAdmin))

	ctx := session.WithID(context.Background(), "s1")
	_, err := users.Me(ctx)
	require.NoError(t, err)
	_, err = admins.AdminMe(ctx)
	require.NoError(t, err)
	_, err = users.Me(context.Background())
	require.NoError(t, err)

	require.Len(t, *calls, 3)
	assert.Equal(t, "Bearer user-tok", (*calls)[0].auth)
	assert.Equal(t, "Bearer admin-tok", (*calls)[1].auth)
	assert.Empty(t, (*calls)[2].auth)
}

type failingSource struct{ err error }

func (f failingSource) Token() (*oauth2.Token, error) { return nil, f.err }

func TestWithTokenSource_MissingVersusBrokenSource(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, map[string]interface{}{"success": true, "user": map[string]interface{}{"_id": "u1"}})
	base := New(srv.URL, 5*time.Second, logger.Nop())
	ctx := context.Background()

	_, err := base.WithTokenSource(failingSource{err: session.ErrNoToken}).Me(ctx)
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Empty(t, (*calls)[0].auth)

	_, err = base.WithTokenSource(failingSource{err: errors.New("store down")}).Me(ctx)
	assert.Error(t, err)
	assert.Len(t, *calls, 1)
}

func TestErrorsAreNormalized(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "Token expired"})
	client := New(srv.URL, 5*time.Second, logger.Nop())

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthFailure(err))
	assert.Equal(t, "Token expired", apperrors.MessageOf(err, "fallback"))
}

func TestTimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, 20*time.Millisecond, logger.Nop())
	err := client.DeleteCandidate(context.Background(), "c1")

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNetwork, appErr.Type)
	assert.Equal(t, apperrors.GenericMessage, appErr.Message)
}

func TestListElections_QueryAndPage(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, map[string]interface{}{
		"success":    true,
		"elections":  []map[string]interface{}{{"_id": "e1", "title": "Gram Panchayat", "status": "active"}},
		"pagination": map[string]interface{}{"page": 2, "limit": 5, "total": 6, "totalPages": 2},
	})
	client := New(srv.URL, 5*time.Second, logger.Nop())

	page, err := client.ListElections(context.Background(), domain.ListQuery{Page: 2, Limit: 5, Filters: map[string]string{"status": "active"}})
	require.NoError(t, err)

	assert.Equal(t, "limit=5&page=2&status=active", (*calls)[0].query)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.StatusActive, page.Items[0].Status)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasNext())
	assert.True(t, page.HasPrev())
}

func TestPathsAreEscaped(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusNoContent, nil)
	client := New(srv.URL, 5*time.Second, logger.Nop())

	require.NoError(t, client.RemoveCandidate(context.Background(), "e/1", "c1"))
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "/api/elections/e/1/candidates/c1", (*calls)[0].path)
}

func TestVotingEndpoints(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, map[string]interface{}{
		"success":    true,
		"hasVoted":   true,
		"viewCount":  1,
		"election":   map[string]interface{}{"_id": "e1"},
		"candidates": []map[string]interface{}{{"_id": "c1", "name": "Ravi"}},
		"candidate":  map[string]interface{}{"_id": "c1", "name": "Ravi"},
	})
	client := New(srv.URL, 5*time.Second, logger.Nop())
	ctx := context.Background()

	status, err := client.CheckStatus(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, status.HasVoted)
	assert.Equal(t, 1, status.ViewCount)

	ballot, err := client.VerifyCredentials(ctx, "e1", "ABC1234567", "Ab3$efgh")
	require.NoError(t, err)
	assert.Equal(t, "e1", ballot.Election.ID)
	require.Len(t, ballot.Candidates, 1)

	disclosure, err := client.ViewVote(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", disclosure.Candidate.Name)

	assert.Equal(t, "/api/voting/check-status/e1", (*calls)[0].path)
	assert.Equal(t, "/api/voting/verify-credentials", (*calls)[1].path)
	assert.Equal(t, "ABC1234567", (*calls)[1].body["electionCardNumber"])
	assert.Equal(t, "/api/voting/view-vote/e1", (*calls)[2].path)
}

func TestAssignAdmin_Batched(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusOK, map[string]interface{}{"success": true})
	client := New(srv.URL, 5*time.Second, logger.Nop())

	require.NoError(t, client.AssignAdmin(context.Background(), []string{"u1", "u2", "u3"}))
	require.Len(t, *calls, 1)
	assert.Equal(t, "/api/admin/users/assign-admin", (*calls)[0].path)
	assert.Equal(t, []interface{}{"u1", "u2", "u3"}, (*calls)[0].body["userIds"])
}
