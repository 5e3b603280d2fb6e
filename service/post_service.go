package service

import (
	"context"
	"time"

	"devconnect/models"
	"devconnect/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgPostNotFound    = "Post not found"
	msgCommentNotFound = "Comment does not exist"
)

type PostService struct {
	posts repository.PostStore
	users repository.UserStore
	now   func() time.Time
}

func NewPostService(posts repository.PostStore, users repository.UserStore) *PostService {
	return &PostService{posts: posts, users: users, now: time.Now}
}

// Create stores a post with the author's current name and avatar copied in.
func (s *PostService) Create(ctx context.Context, userID, text string) (*models.Post, error) {
	if err := collect(required(text, "text", "Text is required")); err != nil {
		return nil, err
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:   author.ID,
		Text:     text,
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []models.Like{},
		Comments: []models.Comment{},
		Date:     s.now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	id, err := parseID(postID, msgPostNotFound)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, msgPostNotFound)
	}
	return post, nil
}

// Delete removes a post. Only its author may do so.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID.Hex() != userID {
		return models.ErrForbidden
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return storeError(err, msgPostNotFound)
	}
	return nil
}

// Like adds the caller's like at the head of the list. A user may like a
// post once.
func (s *PostService) Like(ctx context.Context, userID, postID string) ([]models.Like, error) {
	uid, err := parseID(userID, "User not found")
	if err != nil {
		return nil, err
	}
	post, err := s.mutate(ctx, postID, func(p *models.Post) error {
		if p.LikedBy(uid) >= 0 {
			return models.ErrAlreadyLiked
		}
		p.Likes = append([]models.Like{{ID: primitive.NewObjectID(), UserID: uid}}, p.Likes...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// Unlike removes exactly one like belonging to the caller.
func (s *PostService) Unlike(ctx context.Context, userID, postID string) ([]models.Like, error) {
	uid, err := parseID(userID, "User not found")
	if err != nil {
		return nil, err
	}
	post, err := s.mutate(ctx, postID, func(p *models.Post) error {
		i := p.LikedBy(uid)
		if i < 0 {
			return models.ErrNotLiked
		}
		p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

func (s *PostService) AddComment(ctx context.Context, userID, postID, text string) ([]models.Comment, error) {
	if err := collect(required(text, "text", "Text is required")); err != nil {
		return nil, err
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:     primitive.NewObjectID(),
		UserID: author.ID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   s.now(),
	}
	post, err := s.mutate(ctx, postID, func(p *models.Post) error {
		p.Comments = append([]models.Comment{comment}, p.Comments...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// RemoveComment deletes the comment with commentID. Only the comment's author
// may remove it.
func (s *PostService) RemoveComment(ctx context.Context, userID, postID, commentID string) ([]models.Comment, error) {
	cid, err := parseID(commentID, msgCommentNotFound)
	if err != nil {
		return nil, err
	}
	post, err := s.mutate(ctx, postID, func(p *models.Post) error {
		i := p.CommentIndex(cid)
		if i < 0 {
			return models.NewNotFoundError(msgCommentNotFound)
		}
		if p.Comments[i].UserID.Hex() != userID {
			return models.ErrForbidden
		}
		p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// mutate is a read-modify-write on a single post document.
func (s *PostService) mutate(ctx context.Context, postID string, fn func(*models.Post) error) (*models.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := fn(post); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, storeError(err, msgPostNotFound)
	}
	return post, nil
}

func (s *PostService) author(ctx context.Context, userID string) (*models.User, error) {
	uid, err := parseID(userID, "User not found")
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}
