package service

import (
	"context"
	"errors"
	"testing"

	"devconnect/models"
	"devconnect/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProfileService_UpsertCreates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "Alice", "a@x.com")

	p, err := f.profiles.Upsert(ctx, uid, models.ProfileInput{
		Status: ptr("Developer"),
		Skills: ptr("js, go"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"js", "go"}, p.Skills)
	assert.Equal(t, "Developer", p.Status)
	assert.Equal(t, "Alice", p.User.Name)
	assert.Empty(t, p.Experience)
}

func TestProfileService_UpsertValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "Alice", "a@x.com")

	_, err := f.profiles.Upsert(ctx, uid, models.ProfileInput{Skills: ptr("go")})
	assertCode(t, err, models.CodeValidation)

	_, err = f.profiles.Upsert(ctx, uid, models.ProfileInput{Status: ptr("  "), Skills: ptr("go")})
	assertCode(t, err, models.CodeValidation)

	// Skills are required for the first submission only.
	_, err = f.profiles.Upsert(ctx, uid, models.ProfileInput{Status: ptr("Dev")})
	assertCode(t, err, models.CodeValidation)

	_, err = f.profiles.Upsert(ctx, uid, models.ProfileInput{Status: ptr("Dev"), Skills: ptr(" , ")})
	assertCode(t, err, models.CodeValidation)
}

func TestProfileService_UpsertIsSparsePatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "Alice", "a@x.com")

	_, err := f.profiles.Upsert(ctx, uid, models.ProfileInput{
		Status:   ptr("Developer"),
		Skills:   ptr("js,go"),
		Company:  ptr("Acme"),
		Twitter:  ptr("https://twitter.com/alice"),
		Location: ptr("Berlin"),
	})
	require.NoError(t, err)

	p, err := f.profiles.Upsert(ctx, uid, models.ProfileInput{
		Status:  ptr("Senior Developer"),
		YouTube: ptr("https://youtube.com/alice"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Senior Developer", p.Status)
	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, "Berlin", p.Location)
	assert.Equal(t, []string{"js", "go"}, p.Skills)
	assert.Equal(t, "https://twitter.com/alice", p.Social.Twitter)
	assert.Equal(t, "https://youtube.com/alice", p.Social.YouTube)
}

func TestProfileService_UpsertIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "Alice", "a@x.com")

	in := models.ProfileInput{
		Status:         ptr("Developer"),
		Skills:         ptr("js, go, sql"),
		Bio:            ptr("hi"),
		GithubUsername: ptr("alice"),
	}
	first, err := f.profiles.Upsert(ctx, uid, in)
	require.NoError(t, err)
	second, err := f.profiles.Upsert(ctx, uid, in)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	all, err := f.profiles.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProfileService_Lookups(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "a@x.com")
	bob := f.register(t, "Bob", "b@x.com")

	_, err := f.profiles.Me(ctx, alice)
	assertCode(t, err, models.CodeNotFound)

	_, err = f.profiles.Upsert(ctx, alice, models.ProfileInput{Status: ptr("Dev"), Skills: ptr("go")})
	require.NoError(t, err)
	_, err = f.profiles.Upsert(ctx, bob, models.ProfileInput{Status: ptr("Ops"), Skills: ptr("k8s")})
	require.NoError(t, err)

	p, err := f.profiles.ByUserID(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, "Ops", p.Status)
	assert.Equal(t, "Bob", p.User.Name)

	_, err = f.profiles.ByUserID(ctx, "garbage")
	assertCode(t, err, models.CodeNotFound)

	all, err := f.profiles.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, p := range all {
		assert.NotEmpty(t, p.User.Name)
	}
}

func TestProfileService_ExperienceAddRemove(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "Alice", "a@x.com")

	_, err := f.profiles.AddExperience(ctx, uid, ExperienceInput{Title: "Dev", Company: "Acme", From: "2020-01-01"})
	assertCode(t, err, models.CodeNotFound)

	_, err = f.profiles.Upsert(ctx, uid, models.ProfileInput{Status: ptr("Dev"), Skills: ptr("go")})
	require.NoError(t, err)

	p, err := f.profiles.AddExperience(ctx, uid, ExperienceInput{Title: "Junior", Company: "Acme", From: "2018-01-01", To: "2019-12-31"})
	require.NoError(t, err)
	p, err = f.profiles.AddExperience(ctx, uid, ExperienceInput{Title: "Senior", Company: "Acme", From: "2020-01-01", Current: true})
	require.NoError(t, err)
	require.Len(t, p.Experience, 2)
	assert.Equal(t, "Senior", p.Experience[0].Title, "newest entry goes first")
	before := append([]models.Experience(nil), p.Experience...)

	p, err = f.profiles.AddExperience(ctx, uid, ExperienceInput{Title: "Lead", Company: "Acme", From: "2023-01-01T00:00:00Z"})
	require.NoError(t, err)
	added := p.Experience[0].ID.Hex()

	p, err = f.profiles.RemoveExperience(ctx, uid, added)
	require.NoError(t, err)
	assert.Equal(t, before, p.Experience)

	_, err = f.profiles.RemoveExperience(ctx, uid, added)
	assertCode(t, err, models.CodeNotFound)

	_, err = f.profiles.RemoveExperience(ctx, uid, "bogus")
	assertCode(t, err, models.CodeNotFound)
}

func TestProfileService_ExperienceValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "Alice", "a@x.com")
	_, err := f.profiles.Upsert(ctx, uid, models.ProfileInput{Status: ptr("Dev"), Skills: ptr("go")})
	require.NoError(t, err)

	_, err = f.profiles.AddExperience(ctx, uid, ExperienceInput{})
	assertCode(t, err, models.CodeValidation)

	_, err = f.profiles.AddExperience(ctx, uid, ExperienceInput{Title: "Dev", Company: "Acme", From: "yesterday"})
	assertCode(t, err, models.CodeValidation)
}

func TestProfileService_EducationAddRemove(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "Alice", "a@x.com")
	_, err := f.profiles.Upsert(ctx, uid, models.ProfileInput{Status: ptr("Dev"), Skills: ptr("go")})
	require.NoError(t, err)

	_, err = f.profiles.AddEducation(ctx, uid, EducationInput{School: "MIT", Degree: "BSc", From: "2010-09-01"})
	assertCode(t, err, models.CodeValidation)

	p, err := f.profiles.AddEducation(ctx, uid, EducationInput{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01"})
	require.NoError(t, err)
	require.Len(t, p.Education, 1)

	p, err = f.profiles.RemoveEducation(ctx, uid, p.Education[0].ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, p.Education)
}

func TestProfileService_DeleteAccountCascades(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "a@x.com")
	bob := f.register(t, "Bob", "b@x.com")

	_, err := f.profiles.Upsert(ctx, alice, models.ProfileInput{Status: ptr("Dev"), Skills: ptr("go")})
	require.NoError(t, err)
	alicePost, err := f.posts.Create(ctx, alice, "mine")
	require.NoError(t, err)
	bobPost, err := f.posts.Create(ctx, bob, "his")
	require.NoError(t, err)
	_, err = f.posts.AddComment(ctx, alice, bobPost.ID.Hex(), "nice")
	require.NoError(t, err)

	require.NoError(t, f.profiles.DeleteAccount(ctx, alice))

	_, err = f.profiles.Me(ctx, alice)
	assertCode(t, err, models.CodeNotFound)
	_, err = f.auth.CurrentUser(ctx, alice)
	assertCode(t, err, models.CodeNotFound)
	_, err = f.posts.Get(ctx, alicePost.ID.Hex())
	assertCode(t, err, models.CodeNotFound)

	kept, err := f.posts.Get(ctx, bobPost.ID.Hex())
	require.NoError(t, err)
	require.Len(t, kept.Comments, 1)
	assert.Equal(t, "Alice", kept.Comments[0].Name)
}

// racingProfiles never finds a profile and always loses the unique-index race.
type racingProfiles struct {
	repository.ProfileStore
	creates int
}

func (r *racingProfiles) GetByUserID(context.Context, primitive.ObjectID) (*models.Profile, error) {
	return nil, repository.ErrNotFound
}

func (r *racingProfiles) Create(context.Context, *models.Profile) error {
	r.creates++
	return repository.ErrDuplicate
}

func TestProfileService_UpsertRetriesDuplicateOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	uid := f.register(t, "Alice", "a@x.com")

	profiles := &racingProfiles{ProfileStore: f.stores.Profiles}
	svc := NewProfileService(profiles, f.stores.Users, f.stores.Posts)

	_, err := svc.Upsert(context.Background(), uid, models.ProfileInput{Status: ptr("Dev"), Skills: ptr("go")})
	assertCode(t, err, models.CodeInternal)
	assert.Equal(t, 2, profiles.creates)
}

type failingProfileDelete struct {
	repository.ProfileStore
}

func (failingProfileDelete) DeleteByUserID(context.Context, primitive.ObjectID) error {
	return errors.New("connection reset")
}

func TestProfileService_DeleteAccountKeepsPostsOnFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	uid := f.register(t, "Alice", "a@x.com")
	_, err := f.posts.Create(ctx, uid, "hello")
	require.NoError(t, err)

	svc := NewProfileService(failingProfileDelete{f.stores.Profiles}, f.stores.Users, f.stores.Posts)
	err = svc.DeleteAccount(ctx, uid)
	assertCode(t, err, models.CodeInternal)

	posts, err := f.stores.Posts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Zero(t, f.stores.Users.Len())
}
