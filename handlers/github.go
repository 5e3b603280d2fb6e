package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"devconnect/github"

	"github.com/gin-gonic/gin"
)

// GithubRepos handles GET /api/profile/github/:username.
func (h *Handler) GithubRepos(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	repos, err := h.github.Repos(ctx, c.Param("username"))
	if err != nil {
		if !errors.Is(err, github.ErrNotFound) {
			// Upstream failures read the same as an unknown user.
			slog.WarnContext(ctx, "github lookup failed", "username", c.Param("username"), "error", err)
		}
		c.JSON(http.StatusNotFound, gin.H{"msg": "No Github profile found"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", repos)
}
