package handlers

import (
	"net/http"

	"devconnect/middleware"

	"github.com/gin-gonic/gin"
)

type PostRequest struct {
	Text string `json:"text" binding:"max=5000"`
}

// CreatePost handles POST /api/posts.
func (h *Handler) CreatePost(c *gin.Context) {
	var req PostRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.posts.Create(ctx, middleware.UserID(c), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListPosts handles GET /api/posts.
func (h *Handler) ListPosts(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	posts, err := h.posts.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost handles GET /api/posts/:id.
func (h *Handler) GetPost(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	post, err := h.posts.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:id.
func (h *Handler) DeletePost(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.posts.Delete(ctx, middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Post removed"})
}

// LikePost handles PUT /api/posts/like/:id and returns the updated likes.
func (h *Handler) LikePost(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	likes, err := h.posts.Like(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, likes)
}

// UnlikePost handles PUT /api/posts/unlike/:id.
func (h *Handler) UnlikePost(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	likes, err := h.posts.Unlike(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, likes)
}

// AddComment handles POST /api/posts/comment/:id and returns the updated
// comments.
func (h *Handler) AddComment(c *gin.Context) {
	var req PostRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	comments, err := h.posts.AddComment(ctx, middleware.UserID(c), c.Param("id"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// RemoveComment handles DELETE /api/posts/comment/:id/:comment_id.
func (h *Handler) RemoveComment(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	comments, err := h.posts.RemoveComment(ctx, middleware.UserID(c), c.Param("id"), c.Param("comment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}
