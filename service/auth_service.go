package service

import (
	"context"
	"errors"
	"time"

	"devconnect/models"
	"devconnect/repository"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthService struct {
	users    repository.UserStore
	tokens   TokenIssuer
	hashCost int
	now      func() time.Time
}

func NewAuthService(users repository.UserStore, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func validEmail(email string) *models.FieldError {
	if validate.Var(email, "required,email") != nil {
		return &models.FieldError{Msg: "Please include a valid email", Param: "email"}
	}
	return nil
}

func validPassword(password string) *models.FieldError {
	switch {
	case len(password) < minPasswordLen:
		return &models.FieldError{Msg: "Please enter a password with 6 or more characters", Param: "password"}
	case len(password) > maxPasswordBytes:
		return &models.FieldError{Msg: "Password must be at most 72 bytes", Param: "password"}
	}
	return nil
}

// Register creates the account and returns a token so the caller is signed in
// straight away.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	if err := collect(
		required(in.Name, "name", "Name is required"),
		validEmail(in.Email),
		validPassword(in.Password),
	); err != nil {
		return "", err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return "", models.NewConflictError(models.CodeUserExists, "User already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", models.NewInternalError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Avatar:   gravatarURL(in.Email),
		Date:     s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", models.NewConflictError(models.CodeUserExists, "User already exists")
		}
		return "", models.NewInternalError(err)
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if err := collect(
		validEmail(email),
		required(password, "password", "Password is required"),
	); err != nil {
		return "", err
	}

	invalid := models.NewConflictError(models.CodeInvalidCredentials, "Invalid Credentials")

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", invalid
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", invalid
	}
	return s.issue(user)
}

// CurrentUser loads the caller's record. The password hash never leaves the
// process because models.User does not serialize it.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID, "User not found")
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (string, error) {
	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}
