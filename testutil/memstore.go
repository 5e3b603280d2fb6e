// Package testutil holds in-memory stores used by service and handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"

	"devconnect/models"
	"devconnect/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stores bundles one of each in-memory store.
type Stores struct {
	Users    *UserStore
	Profiles *ProfileStore
	Posts    *PostStore
}

func NewStores() *Stores {
	return &Stores{
		Users:    &UserStore{byID: map[primitive.ObjectID]models.User{}},
		Profiles: &ProfileStore{byUser: map[primitive.ObjectID]models.Profile{}},
		Posts:    &PostStore{byID: map[primitive.ObjectID]models.Post{}},
	}
}

type UserStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.User
}

var _ repository.UserStore = (*UserStore)(nil)

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.byID[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[primitive.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (s *UserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

type ProfileStore struct {
	mu     sync.Mutex
	byUser map[primitive.ObjectID]models.Profile
}

var _ repository.ProfileStore = (*ProfileStore)(nil)

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func cloneProfile(p models.Profile) models.Profile {
	p.Skills = cloneSlice(p.Skills)
	p.Experience = cloneSlice(p.Experience)
	p.Education = cloneSlice(p.Education)
	return p
}

func (s *ProfileStore) Create(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[profile.UserID]; ok {
		return repository.ErrDuplicate
	}
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	s.byUser[profile.UserID] = cloneProfile(*profile)
	return nil
}

func (s *ProfileStore) GetByUserID(_ context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byUser[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = cloneProfile(p)
	return &p, nil
}

func (s *ProfileStore) List(_ context.Context) ([]*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Profile{}
	for _, p := range s.byUser {
		p = cloneProfile(p)
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *ProfileStore) Update(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[profile.UserID]; !ok {
		return repository.ErrNotFound
	}
	s.byUser[profile.UserID] = cloneProfile(*profile)
	return nil
}

func (s *ProfileStore) DeleteByUserID(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}

type PostStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Post
}

var _ repository.PostStore = (*PostStore)(nil)

func clonePost(p models.Post) models.Post {
	p.Likes = append([]models.Like{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}

func (s *PostStore) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	s.byID[post.ID] = clonePost(*post)
	return nil
}

func (s *PostStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (s *PostStore) List(_ context.Context) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Post{}
	for _, p := range s.byID {
		p = clonePost(p)
		out = append(out, &p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *PostStore) Update(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[post.ID]; !ok {
		return repository.ErrNotFound
	}
	s.byID[post.ID] = clonePost(*post)
	return nil
}

func (s *PostStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *PostStore) DeleteByUserID(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, p := range s.byID {
		if p.UserID == userID {
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}
