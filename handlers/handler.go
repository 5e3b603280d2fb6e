// Package handlers exposes the account, profile and post operations over
// HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"time"

	"devconnect/service"

	"github.com/gin-gonic/gin"
)

// RepoFetcher returns the raw repository list for a GitHub user.
type RepoFetcher interface {
	Repos(ctx context.Context, username string) (json.RawMessage, error)
}

type Handler struct {
	auth     *service.AuthService
	profiles *service.ProfileService
	posts    *service.PostService
	github   RepoFetcher
	timeout  time.Duration
}

func New(auth *service.AuthService, profiles *service.ProfileService, posts *service.PostService, github RepoFetcher, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		auth:     auth,
		profiles: profiles,
		posts:    posts,
		github:   github,
		timeout:  timeout,
	}
}

// ctx bounds store calls made on behalf of one request.
func (h *Handler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}
