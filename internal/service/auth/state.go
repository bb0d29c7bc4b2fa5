// Package auth holds the authentication state of a browser session and the
// login, registration and admin OTP flows that change it.
package auth

import (
	"sync"

	"votedesk/internal/domain"
)

// ActionType names a state transition
type ActionType string

const (
	ActionAuthStart   ActionType = "AUTH_START"
	ActionAuthSuccess ActionType = "AUTH_SUCCESS"
	ActionAuthFailure ActionType = "AUTH_FAILURE"
	ActionLogout      ActionType = "LOGOUT"
	ActionUpdateUser  ActionType = "UPDATE_USER"
	// ActionAuthPending ends a step that is waiting on an emailed OTP
	ActionAuthPending ActionType = "AUTH_PENDING"
)

// Action is dispatched to a Store
type Action struct {
	Type  ActionType
	User  *domain.User
	Token string
	Error string
}

// State is the authentication state of one session
type State struct {
	User            *domain.User
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// Reduce applies a to s. Unknown actions leave s unchanged.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionAuthStart:
		s.Loading = true
		s.Error = ""
	case ActionAuthSuccess:
		s = State{
			User:            copyUser(a.User),
			Token:           a.Token,
			IsAuthenticated: true,
		}
	case ActionAuthFailure:
		s.Loading = false
		s.Error = a.Error
	case ActionAuthPending:
		s.Loading = false
		s.Error = ""
	case ActionLogout:
		s = State{}
	case ActionUpdateUser:
		if a.User != nil {
			s.User = copyUser(a.User)
		}
		s.Loading = false
	}
	return s
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Store serializes dispatches for one session
type Store struct {
	mu        sync.RWMutex
	state     State
	nextID    int
	listeners map[int]func(State, Action)
}

// NewStore creates an unauthenticated store
func NewStore() *Store {
	return &Store{listeners: make(map[int]func(State, Action))}
}

// State returns a snapshot
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.User = copyUser(st.User)
	return st
}

// Dispatch reduces a into the state and notifies subscribers
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	listeners := make([]func(State, Action), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next, a)
	}
	return next
}

// Subscribe registers fn for every subsequent dispatch
func (s *Store) Subscribe(fn func(State, Action)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
