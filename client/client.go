// Package client is a Go SDK for the DevConnect API. Every call dispatches
// the outcome into a Store, so a UI can render from Store.State alone.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"devconnect/models"
)

const alertTimeout = 5 * time.Second

// APIError is a non-2xx response.
type APIError struct {
	Status int                 `json:"-"`
	Msg    string              `json:"msg"`
	Errors []models.FieldError `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Msg)
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Msg)
	}
	return fmt.Sprintf("%d: %s", e.Status, strings.Join(msgs, "; "))
}

// messages returns every user-facing message in the error body.
func (e *APIError) messages() []string {
	if len(e.Errors) == 0 {
		if e.Msg == "" {
			return []string{http.StatusText(e.Status)}
		}
		return []string{e.Msg}
	}
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Msg)
	}
	return out
}

type Client struct {
	baseURL string
	http    *http.Client
	store   *Store
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithStore(s *Store) Option {
	return func(c *Client) { c.store = s }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   NewStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Store() *Store {
	return c.store
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.store.State().Auth.Token; token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// asAPIError wraps transport failures so error events always carry an
// APIError.
func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Msg: err.Error()}
}

func (c *Client) alertAll(err error) {
	for _, msg := range asAPIError(err).messages() {
		c.store.SetAlert(msg, "danger", alertTimeout)
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates an account, signs in and loads the user.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	var res tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/users", map[string]string{
		"name": name, "email": email, "password": password,
	}, &res)
	if err != nil {
		c.alertAll(err)
		c.store.Dispatch(Event{Type: RegisterFail})
		return err
	}
	c.store.Dispatch(Event{Type: RegisterSuccess, Payload: res.Token})
	return c.LoadUser(ctx)
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var res tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth", map[string]string{
		"email": email, "password": password,
	}, &res)
	if err != nil {
		c.alertAll(err)
		c.store.Dispatch(Event{Type: LoginFail})
		return err
	}
	c.store.Dispatch(Event{Type: LoginSuccess, Payload: res.Token})
	return c.LoadUser(ctx)
}

// UseToken restores a session from a previously issued token.
func (c *Client) UseToken(ctx context.Context, token string) error {
	c.store.Dispatch(Event{Type: LoginSuccess, Payload: token})
	return c.LoadUser(ctx)
}

func (c *Client) LoadUser(ctx context.Context) error {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth", nil, &user); err != nil {
		c.store.Dispatch(Event{Type: AuthError})
		return err
	}
	c.store.Dispatch(Event{Type: UserLoaded, Payload: &user})
	return nil
}

func (c *Client) Logout() {
	c.store.Dispatch(Event{Type: ClearProfile})
	c.store.Dispatch(Event{Type: Logout})
}

// profile calls that return a single profile share one error path.
func (c *Client) profileCall(ctx context.Context, method, path string, body any, ev EventType, alert string) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, method, path, body, &p); err != nil {
		if apiErr := asAPIError(err); len(apiErr.Errors) > 0 {
			c.alertAll(err)
		}
		c.store.Dispatch(Event{Type: ProfileError, Payload: asAPIError(err)})
		return nil, err
	}
	c.store.Dispatch(Event{Type: ev, Payload: &p})
	if alert != "" {
		c.store.SetAlert(alert, "success", alertTimeout)
	}
	return &p, nil
}

func (c *Client) CurrentProfile(ctx context.Context) (*models.Profile, error) {
	return c.profileCall(ctx, http.MethodGet, "/api/profile/me", nil, GetProfile, "")
}

func (c *Client) Profiles(ctx context.Context) ([]*models.Profile, error) {
	c.store.Dispatch(Event{Type: ClearProfile})
	var ps []*models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &ps); err != nil {
		c.store.Dispatch(Event{Type: ProfileError, Payload: asAPIError(err)})
		return nil, err
	}
	c.store.Dispatch(Event{Type: GetProfiles, Payload: ps})
	return ps, nil
}

func (c *Client) ProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	return c.profileCall(ctx, http.MethodGet, "/api/profile/user/"+userID, nil, GetProfile, "")
}

func (c *Client) GithubRepos(ctx context.Context, username string) (json.RawMessage, error) {
	var repos json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/profile/github/"+username, nil, &repos); err != nil {
		c.store.Dispatch(Event{Type: ProfileError, Payload: asAPIError(err)})
		return nil, err
	}
	c.store.Dispatch(Event{Type: GetRepos, Payload: repos})
	return repos, nil
}

// ProfileFields is the profile form. Nil fields are left unchanged on edit.
type ProfileFields struct {
	Company        *string `json:"company,omitempty"`
	Website        *string `json:"website,omitempty"`
	Location       *string `json:"location,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	Status         *string `json:"status,omitempty"`
	GithubUsername *string `json:"githubusername,omitempty"`
	Skills         *string `json:"skills,omitempty"`
	YouTube        *string `json:"youtube,omitempty"`
	Twitter        *string `json:"twitter,omitempty"`
	Facebook       *string `json:"facebook,omitempty"`
	LinkedIn       *string `json:"linkedin,omitempty"`
	Instagram      *string `json:"instagram,omitempty"`
}

// SaveProfile creates or edits the caller's profile.
func (c *Client) SaveProfile(ctx context.Context, fields ProfileFields, edit bool) (*models.Profile, error) {
	msg := "Profile Created"
	if edit {
		msg = "Profile Updated"
	}
	return c.profileCall(ctx, http.MethodPost, "/api/profile", fields, GetProfile, msg)
}

type ExperienceFields struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	From        string `json:"from"`
	To          string `json:"to,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

type EducationFields struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to,omitempty"`
	Current      bool   `json:"current"`
	Description  string `json:"description,omitempty"`
}

func (c *Client) AddExperience(ctx context.Context, f ExperienceFields) (*models.Profile, error) {
	return c.profileCall(ctx, http.MethodPut, "/api/profile/experience", f, UpdateProfile, "Experience Added")
}

func (c *Client) AddEducation(ctx context.Context, f EducationFields) (*models.Profile, error) {
	return c.profileCall(ctx, http.MethodPut, "/api/profile/education", f, UpdateProfile, "Education Added")
}

func (c *Client) DeleteExperience(ctx context.Context, id string) (*models.Profile, error) {
	return c.profileCall(ctx, http.MethodDelete, "/api/profile/experience/"+id, nil, UpdateProfile, "Experience Removed")
}

func (c *Client) DeleteEducation(ctx context.Context, id string) (*models.Profile, error) {
	return c.profileCall(ctx, http.MethodDelete, "/api/profile/education/"+id, nil, UpdateProfile, "Education Removed")
}

// DeleteAccount removes the account with its profile and posts, then
// signs out.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/api/profile", nil, nil); err != nil {
		c.store.Dispatch(Event{Type: ProfileError, Payload: asAPIError(err)})
		return err
	}
	c.store.Dispatch(Event{Type: ClearProfile})
	c.store.Dispatch(Event{Type: AccountDeleted})
	c.store.SetAlert("Your account has been permanently deleted", "", alertTimeout)
	return nil
}

func (c *Client) postError(err error) error {
	c.store.Dispatch(Event{Type: PostError, Payload: asAPIError(err)})
	return err
}

func (c *Client) Posts(ctx context.Context) ([]*models.Post, error) {
	var ps []*models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &ps); err != nil {
		return nil, c.postError(err)
	}
	c.store.Dispatch(Event{Type: GetPosts, Payload: ps})
	return ps, nil
}

func (c *Client) Post(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+id, nil, &p); err != nil {
		return nil, c.postError(err)
	}
	c.store.Dispatch(Event{Type: GetPost, Payload: &p})
	return &p, nil
}

func (c *Client) AddPost(ctx context.Context, text string) (*models.Post, error) {
	var p models.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", map[string]string{"text": text}, &p); err != nil {
		return nil, c.postError(err)
	}
	c.store.Dispatch(Event{Type: AddPost, Payload: &p})
	c.store.SetAlert("Post Created", "success", alertTimeout)
	return &p, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/posts/"+id, nil, nil); err != nil {
		return c.postError(err)
	}
	c.store.Dispatch(Event{Type: DeletePost, Payload: id})
	c.store.SetAlert("Post Removed", "success", alertTimeout)
	return nil
}

func (c *Client) Like(ctx context.Context, postID string) ([]models.Like, error) {
	return c.likes(ctx, "/api/posts/like/", postID)
}

func (c *Client) Unlike(ctx context.Context, postID string) ([]models.Like, error) {
	return c.likes(ctx, "/api/posts/unlike/", postID)
}

func (c *Client) likes(ctx context.Context, prefix, postID string) ([]models.Like, error) {
	var likes []models.Like
	if err := c.do(ctx, http.MethodPut, prefix+postID, nil, &likes); err != nil {
		return nil, c.postError(err)
	}
	c.store.Dispatch(Event{Type: UpdateLikes, Payload: LikesUpdate{PostID: postID, Likes: likes}})
	return likes, nil
}

func (c *Client) AddComment(ctx context.Context, postID, text string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.do(ctx, http.MethodPost, "/api/posts/comment/"+postID, map[string]string{"text": text}, &comments); err != nil {
		return nil, c.postError(err)
	}
	c.store.Dispatch(Event{Type: AddComment, Payload: comments})
	c.store.SetAlert("Comment Added", "success", alertTimeout)
	return comments, nil
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/posts/comment/"+postID+"/"+commentID, nil, nil); err != nil {
		return c.postError(err)
	}
	c.store.Dispatch(Event{Type: RemoveComment, Payload: commentID})
	c.store.SetAlert("Comment Removed", "success", alertTimeout)
	return nil
}
