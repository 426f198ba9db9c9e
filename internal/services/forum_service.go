package services

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nightowl/sleepsite/internal/models"
)

// ForumService is the in-memory ForumStore used for local dev and tests.
type ForumService struct {
	mu       sync.RWMutex
	blogs    map[string]*models.Blog
	comments map[string]*models.Comment
}

func NewForumService() *ForumService {
	return &ForumService{
		blogs:    make(map[string]*models.Blog),
		comments: make(map[string]*models.Comment),
	}
}

func (s *ForumService) CreateBlog(authorID, authorName string, req *models.BlogRequest) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	blog := &models.Blog{
		ID:         uuid.New().String(),
		AuthorID:   authorID,
		AuthorName: authorName,
		Subject:    req.Subject,
		Content:    req.Content,
		Tag:        req.Tag,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	s.blogs[blog.ID] = blog

	blogCopy := *blog
	return &blogCopy, nil
}

func (s *ForumService) GetBlog(id string) (*models.Blog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blog, exists := s.blogs[id]
	if !exists {
		return nil, ErrBlogNotFound
	}

	blogCopy := *blog
	return &blogCopy, nil
}

func (s *ForumService) UpdateBlog(actorID, id string, req *models.BlogRequest) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blog, exists := s.blogs[id]
	if !exists {
		return nil, ErrBlogNotFound
	}

	if blog.AuthorID != actorID {
		return nil, ErrUnauthorized
	}

	blog.Subject = req.Subject
	blog.Content = req.Content
	blog.Tag = req.Tag
	blog.ModifiedAt = time.Now().UTC()

	blogCopy := *blog
	return &blogCopy, nil
}

func (s *ForumService) DeleteBlog(actorID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blog, exists := s.blogs[id]
	if !exists {
		return ErrBlogNotFound
	}

	if blog.AuthorID != actorID {
		return ErrUnauthorized
	}

	// Cascade: drop every comment on this blog.
	for commentID, comment := range s.comments {
		if comment.BlogID == id {
			delete(s.comments, commentID)
		}
	}

	delete(s.blogs, id)
	return nil
}

func (s *ForumService) ListBlogs() ([]*models.Blog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*models.Blog, 0, len(s.blogs))
	for _, blog := range s.blogs {
		blogCopy := *blog
		results = append(results, &blogCopy)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	return results, nil
}

func (s *ForumService) CreateComment(authorID, authorName, blogID string, req *models.CommentRequest) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blogs[blogID]; !exists {
		return nil, ErrBlogNotFound
	}

	now := time.Now().UTC()
	comment := &models.Comment{
		ID:         uuid.New().String(),
		AuthorID:   authorID,
		AuthorName: authorName,
		BlogID:     blogID,
		ParentID:   req.ParentID,
		Content:    req.Content,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	s.comments[comment.ID] = comment

	commentCopy := *comment
	return &commentCopy, nil
}

func (s *ForumService) GetComment(id string) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, exists := s.comments[id]
	if !exists {
		return nil, ErrCommentNotFound
	}

	commentCopy := *comment
	return &commentCopy, nil
}

func (s *ForumService) UpdateComment(actorID, id string, req *models.CommentRequest) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, exists := s.comments[id]
	if !exists {
		return nil, ErrCommentNotFound
	}

	if comment.AuthorID != actorID {
		return nil, ErrUnauthorized
	}

	comment.Content = req.Content
	comment.ModifiedAt = time.Now().UTC()

	commentCopy := *comment
	return &commentCopy, nil
}

// DeleteComment removes a comment and, recursively, any replies hanging
// off it. No ownership check, matching the exposed route.
func (s *ForumService) DeleteComment(id string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, exists := s.comments[id]
	if !exists {
		return nil, ErrCommentNotFound
	}

	s.deleteCommentTree(id)

	commentCopy := *comment
	return &commentCopy, nil
}

func (s *ForumService) deleteCommentTree(id string) {
	for childID, child := range s.comments {
		if child.ParentID == id {
			s.deleteCommentTree(childID)
		}
	}
	delete(s.comments, id)
}

func (s *ForumService) ListComments(blogID string) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*models.Comment
	for _, comment := range s.comments {
		if comment.BlogID == blogID {
			commentCopy := *comment
			results = append(results, &commentCopy)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	return results, nil
}
