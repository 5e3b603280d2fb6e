package service

import (
	"context"
	"errors"
	"testing"

	"devconnect/models"
	"devconnect/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubTokens struct {
	err error
}

func (s stubTokens) Issue(userID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + userID, nil
}

type fixture struct {
	stores   *testutil.Stores
	auth     *AuthService
	profiles *ProfileService
	posts    *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := testutil.NewStores()
	f := &fixture{
		stores:   stores,
		auth:     NewAuthService(stores.Users, stubTokens{}),
		profiles: NewProfileService(stores.Profiles, stores.Users, stores.Posts),
		posts:    NewPostService(stores.Posts, stores.Users),
	}
	f.auth.hashCost = bcrypt.MinCost
	return f
}

// register creates a user and returns its hex id.
func (f *fixture) register(t *testing.T, name, email string) string {
	t.Helper()
	_, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	u, err := f.stores.Users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u.ID.Hex()
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func ptr(s string) *string { return &s }
