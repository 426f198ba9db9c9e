package services

import (
	"errors"

	"github.com/nightowl/sleepsite/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSleepNotFound   = errors.New("sleep not found")
	ErrBlogNotFound    = errors.New("blog not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrImageNotFound   = errors.New("image not found")
	ErrUnauthorized    = errors.New("unauthorized to modify this record")
)

// UserStore holds user records and their avatar images.
type UserStore interface {
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// UpsertByEmail creates a user for an unknown email or refreshes the
	// provider-supplied fields of an existing one. Keyed by email, not by
	// provider id.
	UpsertByEmail(profile *models.GoogleProfile) (*models.User, error)
	UpdateProfile(id string, req *models.ProfileRequest) error
	UpdateConsent(id string, req *models.ConsentRequest) error
	Image(id string) (*models.UserImage, error)
}

// SleepStore holds sleep entries. Delete intentionally takes no actor: the
// exposed route performs no ownership check.
type SleepStore interface {
	Create(sleeperID string, req *models.SleepRequest) (*models.Sleep, error)
	GetByID(id string) (*models.Sleep, error)
	Update(actorID, id string, req *models.SleepRequest) (*models.Sleep, error)
	Delete(id string) (*models.Sleep, error)
	ListAll() ([]*models.Sleep, error)
}

// ForumStore holds blogs and their comments. Deleting a blog cascades to
// its comments; deleting a comment cascades to its replies.
type ForumStore interface {
	CreateBlog(authorID, authorName string, req *models.BlogRequest) (*models.Blog, error)
	GetBlog(id string) (*models.Blog, error)
	UpdateBlog(actorID, id string, req *models.BlogRequest) (*models.Blog, error)
	DeleteBlog(actorID, id string) error
	ListBlogs() ([]*models.Blog, error)

	CreateComment(authorID, authorName, blogID string, req *models.CommentRequest) (*models.Comment, error)
	GetComment(id string) (*models.Comment, error)
	UpdateComment(actorID, id string, req *models.CommentRequest) (*models.Comment, error)
	DeleteComment(id string) (*models.Comment, error)
	ListComments(blogID string) ([]*models.Comment, error)
}
