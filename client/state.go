package client

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"devconnect/models"

	"github.com/google/uuid"
)

type EventType string

const (
	SetAlert    EventType = "SET_ALERT"
	RemoveAlert EventType = "REMOVE_ALERT"

	RegisterSuccess EventType = "REGISTER_SUCCESS"
	RegisterFail    EventType = "REGISTER_FAIL"
	LoginSuccess    EventType = "LOGIN_SUCCESS"
	LoginFail       EventType = "LOGIN_FAIL"
	UserLoaded      EventType = "USER_LOADED"
	AuthError       EventType = "AUTH_ERROR"
	Logout          EventType = "LOGOUT"
	AccountDeleted  EventType = "ACCOUNT_DELETED"

	GetProfile    EventType = "GET_PROFILE"
	GetProfiles   EventType = "GET_PROFILES"
	UpdateProfile EventType = "UPDATE_PROFILE"
	GetRepos      EventType = "GET_REPOS"
	ProfileError  EventType = "PROFILE_ERROR"
	ClearProfile  EventType = "CLEAR_PROFILE"

	GetPosts      EventType = "GET_POSTS"
	GetPost       EventType = "GET_POST"
	AddPost       EventType = "ADD_POST"
	DeletePost    EventType = "DELETE_POST"
	UpdateLikes   EventType = "UPDATE_LIKES"
	AddComment    EventType = "ADD_COMMENT"
	RemoveComment EventType = "REMOVE_COMMENT"
	PostError     EventType = "POST_ERROR"
)

// Event is a single state transition. Payload's concrete type depends on
// Type; see Reduce.
type Event struct {
	Type    EventType
	Payload any
}

type Alert struct {
	ID        string
	Msg       string
	AlertType string
}

// LikesUpdate replaces the likes of one post in the list.
type LikesUpdate struct {
	PostID string
	Likes  []models.Like
}

type AuthState struct {
	Token           string
	IsAuthenticated bool
	Loading         bool
	User            *models.User
}

type ProfileState struct {
	Profile  *models.Profile
	Profiles []*models.Profile
	Repos    json.RawMessage
	Loading  bool
	Error    *APIError
}

type PostState struct {
	Posts   []*models.Post
	Post    *models.Post
	Loading bool
	Error   *APIError
}

type State struct {
	Alerts  []Alert
	Auth    AuthState
	Profile ProfileState
	Post    PostState
}

// InitialState is the state before anything has been fetched.
func InitialState() State {
	return State{
		Alerts:  []Alert{},
		Auth:    AuthState{Loading: true},
		Profile: ProfileState{Profiles: []*models.Profile{}, Loading: true},
		Post:    PostState{Posts: []*models.Post{}, Loading: true},
	}
}

// Reduce returns the state after ev. It never modifies s; slices that change
// are rebuilt. Unknown events and mismatched payloads return s unchanged.
func Reduce(s State, ev Event) State {
	switch ev.Type {
	case SetAlert:
		if a, ok := ev.Payload.(Alert); ok {
			s.Alerts = append(slices.Clip(s.Alerts), a)
		}
	case RemoveAlert:
		if id, ok := ev.Payload.(string); ok {
			s.Alerts = slices.DeleteFunc(slices.Clone(s.Alerts), func(a Alert) bool { return a.ID == id })
		}

	case RegisterSuccess, LoginSuccess:
		if token, ok := ev.Payload.(string); ok {
			s.Auth = AuthState{Token: token, IsAuthenticated: true, User: s.Auth.User}
		}
	case UserLoaded:
		if u, ok := ev.Payload.(*models.User); ok {
			s.Auth.User = u
			s.Auth.IsAuthenticated = true
			s.Auth.Loading = false
		}
	case RegisterFail, LoginFail, AuthError, Logout, AccountDeleted:
		s.Auth = AuthState{}

	case GetProfile, UpdateProfile:
		if p, ok := ev.Payload.(*models.Profile); ok {
			s.Profile.Profile = p
			s.Profile.Loading = false
		}
	case GetProfiles:
		if ps, ok := ev.Payload.([]*models.Profile); ok {
			s.Profile.Profiles = ps
			s.Profile.Loading = false
		}
	case GetRepos:
		if r, ok := ev.Payload.(json.RawMessage); ok {
			s.Profile.Repos = r
			s.Profile.Loading = false
		}
	case ProfileError:
		if e, ok := ev.Payload.(*APIError); ok {
			s.Profile.Error = e
			s.Profile.Profile = nil
			s.Profile.Loading = false
		}
	case ClearProfile:
		s.Profile.Profile = nil
		s.Profile.Repos = nil
		s.Profile.Loading = false

	case GetPosts:
		if ps, ok := ev.Payload.([]*models.Post); ok {
			s.Post.Posts = ps
			s.Post.Loading = false
		}
	case GetPost:
		if p, ok := ev.Payload.(*models.Post); ok {
			s.Post.Post = p
			s.Post.Loading = false
		}
	case AddPost:
		if p, ok := ev.Payload.(*models.Post); ok {
			s.Post.Posts = append([]*models.Post{p}, s.Post.Posts...)
			s.Post.Loading = false
		}
	case DeletePost:
		if id, ok := ev.Payload.(string); ok {
			s.Post.Posts = slices.DeleteFunc(slices.Clone(s.Post.Posts), func(p *models.Post) bool { return p.ID.Hex() == id })
			s.Post.Loading = false
		}
	case UpdateLikes:
		if u, ok := ev.Payload.(LikesUpdate); ok {
			posts := make([]*models.Post, len(s.Post.Posts))
			for i, p := range s.Post.Posts {
				if p.ID.Hex() == u.PostID {
					cp := *p
					cp.Likes = u.Likes
					p = &cp
				}
				posts[i] = p
			}
			s.Post.Posts = posts
			s.Post.Loading = false
		}
	case AddComment:
		if cs, ok := ev.Payload.([]models.Comment); ok && s.Post.Post != nil {
			cp := *s.Post.Post
			cp.Comments = cs
			s.Post.Post = &cp
			s.Post.Loading = false
		}
	case RemoveComment:
		if id, ok := ev.Payload.(string); ok && s.Post.Post != nil {
			cp := *s.Post.Post
			cp.Comments = slices.DeleteFunc(slices.Clone(cp.Comments), func(c models.Comment) bool { return c.ID.Hex() == id })
			s.Post.Post = &cp
			s.Post.Loading = false
		}
	case PostError:
		if e, ok := ev.Payload.(*APIError); ok {
			s.Post.Error = e
			s.Post.Loading = false
		}
	}
	return s
}

// Store holds the current State and applies events to it. It is safe for
// concurrent use.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers []func(State)
}

func NewStore() *Store {
	return &Store{state: InitialState()}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies ev and notifies subscribers with the new state.
func (s *Store) Dispatch(ev Event) {
	s.mu.Lock()
	s.state = Reduce(s.state, ev)
	state := s.state
	subs := slices.Clone(s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// Subscribe registers fn to run after every dispatch.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// SetAlert shows an alert and removes it again after timeout. It returns
// the alert id.
func (s *Store) SetAlert(msg, alertType string, timeout time.Duration) string {
	id := uuid.NewString()
	s.Dispatch(Event{Type: SetAlert, Payload: Alert{ID: id, Msg: msg, AlertType: alertType}})
	time.AfterFunc(timeout, func() {
		s.Dispatch(Event{Type: RemoveAlert, Payload: id})
	})
	return id
}
