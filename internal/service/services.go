// Package service holds the cross-screen services of the console: the
// Redis cache and the public results feed. Screen-specific services live
// in the auth, voting and admin subpackages.
package service

import (
	"votedesk/internal/service/admin"
	"votedesk/internal/service/auth"
)

// Services aggregates every service the handlers use
type Services struct {
	UserAuth   *auth.Flow
	AdminAuth  *auth.AdminFlow
	Elections  *admin.Elections
	Candidates *admin.Candidates
	Users      *admin.Users
	Results    *ResultsFeed
	Cache      *CacheService
}
