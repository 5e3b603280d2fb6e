package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"devconnect/models"
	"devconnect/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgNoProfile       = "There is no profile for this user"
	msgProfileNotFound = "Profile not found"
)

type ProfileService struct {
	profiles repository.ProfileStore
	users    repository.UserStore
	posts    repository.PostStore
	now      func() time.Time
}

func NewProfileService(profiles repository.ProfileStore, users repository.UserStore, posts repository.PostStore) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		users:    users,
		posts:    posts,
		now:      time.Now,
	}
}

type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        string
	To          string
	Current     bool
	Description string
}

type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         string
	To           string
	Current      bool
	Description  string
}

// Upsert creates the caller's profile on first call and afterwards patches
// only the fields present in the input. Calling it twice with the same input
// leaves the profile unchanged.
func (s *ProfileService) Upsert(ctx context.Context, userID string, in models.ProfileInput) (*models.Profile, error) {
	var status string
	if in.Status != nil {
		status = *in.Status
	}
	if err := collect(required(status, "status", "Status is required")); err != nil {
		return nil, err
	}

	uid, err := parseID(userID, "User not found")
	if err != nil {
		return nil, err
	}

	profile, err := s.upsert(ctx, uid, in)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with a concurrent first submission; patch theirs.
		profile, err = s.upsert(ctx, uid, in)
	}
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	return s.populate(ctx, profile)
}

// upsert makes one create-or-patch attempt. A create that hits the unique
// user index returns repository.ErrDuplicate.
func (s *ProfileService) upsert(ctx context.Context, uid primitive.ObjectID, in models.ProfileInput) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, uid)
	switch {
	case err == nil:
		in.Apply(profile)
		if err := s.profiles.Update(ctx, profile); err != nil {
			return nil, storeError(err, msgNoProfile)
		}
		return profile, nil
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, err
	}

	if in.Skills == nil || len(models.ParseSkills(*in.Skills)) == 0 {
		return nil, models.NewValidationError(models.FieldError{Msg: "Skills is required", Param: "skills"})
	}
	profile = &models.Profile{
		UserID:     uid,
		Experience: []models.Experience{},
		Education:  []models.Education{},
		Date:       s.now(),
	}
	in.Apply(profile)
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Me returns the caller's own profile.
func (s *ProfileService) Me(ctx context.Context, userID string) (*models.Profile, error) {
	return s.byUser(ctx, userID, msgNoProfile)
}

// ByUserID is the public lookup; a malformed id reads as not found.
func (s *ProfileService) ByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return s.byUser(ctx, userID, msgProfileNotFound)
}

func (s *ProfileService) byUser(ctx context.Context, userID, notFound string) (*models.Profile, error) {
	uid, err := parseID(userID, notFound)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUserID(ctx, uid)
	if err != nil {
		return nil, storeError(err, notFound)
	}
	return s.populate(ctx, profile)
}

func (s *ProfileService) All(ctx context.Context) ([]*models.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]primitive.ObjectID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range profiles {
		attachUser(p, users[p.UserID])
	}
	return profiles, nil
}

func (s *ProfileService) AddExperience(ctx context.Context, userID string, in ExperienceInput) (*models.Profile, error) {
	from, fromErr := dateField(in.From, "from", "From date is required")
	to, toErr := optionalDateField(in.To, "to")
	if err := collect(
		required(in.Title, "title", "Title is required"),
		required(in.Company, "company", "Company is required"),
		fromErr,
		toErr,
	); err != nil {
		return nil, err
	}

	exp := models.Experience{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}
	return s.mutate(ctx, userID, func(p *models.Profile) error {
		p.Experience = append([]models.Experience{exp}, p.Experience...)
		return nil
	})
}

func (s *ProfileService) RemoveExperience(ctx context.Context, userID, expID string) (*models.Profile, error) {
	id, err := parseID(expID, "Experience not found")
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(p *models.Profile) error {
		for i, e := range p.Experience {
			if e.ID == id {
				p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
				return nil
			}
		}
		return models.NewNotFoundError("Experience not found")
	})
}

func (s *ProfileService) AddEducation(ctx context.Context, userID string, in EducationInput) (*models.Profile, error) {
	from, fromErr := dateField(in.From, "from", "From date is required")
	to, toErr := optionalDateField(in.To, "to")
	if err := collect(
		required(in.School, "school", "School is required"),
		required(in.Degree, "degree", "Degree is required"),
		required(in.FieldOfStudy, "fieldofstudy", "Field of study is required"),
		fromErr,
		toErr,
	); err != nil {
		return nil, err
	}

	edu := models.Education{
		ID:           primitive.NewObjectID(),
		School:       in.School,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}
	return s.mutate(ctx, userID, func(p *models.Profile) error {
		p.Education = append([]models.Education{edu}, p.Education...)
		return nil
	})
}

func (s *ProfileService) RemoveEducation(ctx context.Context, userID, eduID string) (*models.Profile, error) {
	id, err := parseID(eduID, "Education not found")
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(p *models.Profile) error {
		for i, e := range p.Education {
			if e.ID == id {
				p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
				return nil
			}
		}
		return models.NewNotFoundError("Education not found")
	})
}

// DeleteAccount removes the caller's user record, profile and posts, in that
// order. Likes and comments left on other people's posts stay; they carry
// their own author snapshot.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	uid, err := parseID(userID, "User not found")
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, uid); err != nil {
		return models.NewInternalError(err)
	}
	if err := s.profiles.DeleteByUserID(ctx, uid); err != nil {
		return models.NewInternalError(err)
	}
	removed, err := s.posts.DeleteByUserID(ctx, uid)
	if err != nil {
		return models.NewInternalError(err)
	}

	slog.InfoContext(ctx, "account deleted", "user_id", userID, "posts_removed", removed)
	return nil
}

// mutate is a read-modify-write on the caller's profile document.
func (s *ProfileService) mutate(ctx context.Context, userID string, fn func(*models.Profile) error) (*models.Profile, error) {
	uid, err := parseID(userID, msgNoProfile)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUserID(ctx, uid)
	if err != nil {
		return nil, storeError(err, msgNoProfile)
	}
	if err := fn(profile); err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, storeError(err, msgNoProfile)
	}
	return s.populate(ctx, profile)
}

func (s *ProfileService) populate(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewInternalError(err)
	}
	attachUser(p, user)
	return p, nil
}

func attachUser(p *models.Profile, u *models.User) {
	if u == nil {
		p.User = models.UserSummary{ID: p.UserID}
		return
	}
	p.User = u.Summary()
}

func dateField(raw, param, missing string) (time.Time, *models.FieldError) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, &models.FieldError{Msg: missing, Param: param}
	}
	t, ok := parseDate(raw)
	if !ok {
		return time.Time{}, &models.FieldError{Msg: "Invalid date", Param: param}
	}
	return t, nil
}

func optionalDateField(raw, param string) (*time.Time, *models.FieldError) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, ok := parseDate(raw)
	if !ok {
		return nil, &models.FieldError{Msg: "Invalid date", Param: param}
	}
	return &t, nil
}
