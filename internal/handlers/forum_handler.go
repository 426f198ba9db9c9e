package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nightowl/sleepsite/internal/middleware"
	"github.com/nightowl/sleepsite/internal/models"
	"github.com/nightowl/sleepsite/internal/services"
	"github.com/nightowl/sleepsite/internal/session"
)

type ForumHandler struct {
	*Renderer
	forum    services.ForumStore
	sessions *session.Manager
}

func NewForumHandler(renderer *Renderer, forum services.ForumStore, sessions *session.Manager) *ForumHandler {
	return &ForumHandler{
		Renderer: renderer,
		forum:    forum,
		sessions: sessions,
	}
}

type blogsView struct {
	Blogs []*models.Blog
}

func (h *ForumHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.forum.ListBlogs()
	if err != nil {
		log.Printf("[ListBlogs] %v", err)
		http.Error(w, "Failed to load blogs.", http.StatusInternalServerError)
		return
	}

	h.Render(w, r, http.StatusOK, "blogs", blogsView{Blogs: blogs})
}

type blogView struct {
	Blog     *models.Blog
	Comments []*models.Comment
}

func (h *ForumHandler) ShowBlog(w http.ResponseWriter, r *http.Request) {
	blogID := chi.URLParam(r, "blogID")

	blog, err := h.forum.GetBlog(blogID)
	if err != nil {
		if err == services.ErrBlogNotFound {
			http.NotFound(w, r)
			return
		}
		log.Printf("[ShowBlog] load %s: %v", blogID, err)
		http.Error(w, "Failed to load blog.", http.StatusInternalServerError)
		return
	}

	comments, err := h.forum.ListComments(blogID)
	if err != nil {
		log.Printf("[ShowBlog] comments for %s: %v", blogID, err)
		http.Error(w, "Failed to load comments.", http.StatusInternalServerError)
		return
	}

	h.Render(w, r, http.StatusOK, "blog", blogView{Blog: blog, Comments: comments})
}

type blogFormView struct {
	Form   *models.BlogRequest
	Errors map[string]string
}

func (h *ForumHandler) NewBlog(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if r.Method == http.MethodGet {
		h.Render(w, r, http.StatusOK, "blogform", blogFormView{Form: &models.BlogRequest{}})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission.", http.StatusBadRequest)
		return
	}

	req := &models.BlogRequest{
		Subject: r.FormValue("subject"),
		Content: r.FormValue("content"),
		Tag:     r.FormValue("tag"),
	}

	if errs := req.Validate(); len(errs) > 0 {
		h.Render(w, r, http.StatusOK, "blogform", blogFormView{Form: req, Errors: errs})
		return
	}

	blog, err := h.forum.CreateBlog(user.ID, user.GName, req)
	if err != nil {
		log.Printf("[NewBlog] create for %s: %v", user.ID, err)
		http.Error(w, "Failed to save blog.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/blog/"+blog.ID, http.StatusFound)
}

func (h *ForumHandler) EditBlog(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	blogID := chi.URLParam(r, "blogID")

	blog, err := h.forum.GetBlog(blogID)
	if err != nil {
		if err == services.ErrBlogNotFound {
			http.NotFound(w, r)
			return
		}
		log.Printf("[EditBlog] load %s: %v", blogID, err)
		http.Error(w, "Failed to load blog.", http.StatusInternalServerError)
		return
	}

	if blog.AuthorID != user.ID {
		h.sessions.Flash(w, r, "You can't edit a blog you don't own.")
		http.Redirect(w, r, "/blog/"+blogID, http.StatusFound)
		return
	}

	if r.Method == http.MethodGet {
		form := &models.BlogRequest{
			Subject: blog.Subject,
			Content: blog.Content,
			Tag:     blog.Tag,
		}
		h.Render(w, r, http.StatusOK, "blogform", blogFormView{Form: form})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission.", http.StatusBadRequest)
		return
	}

	req := &models.BlogRequest{
		Subject: r.FormValue("subject"),
		Content: r.FormValue("content"),
		Tag:     r.FormValue("tag"),
	}

	if errs := req.Validate(); len(errs) > 0 {
		h.Render(w, r, http.StatusOK, "blogform", blogFormView{Form: req, Errors: errs})
		return
	}

	if _, err := h.forum.UpdateBlog(user.ID, blogID, req); err != nil {
		if err == services.ErrUnauthorized {
			h.sessions.Flash(w, r, "You can't edit a blog you don't own.")
			http.Redirect(w, r, "/blog/"+blogID, http.StatusFound)
			return
		}
		log.Printf("[EditBlog] update %s: %v", blogID, err)
		http.Error(w, "Failed to update blog.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/blog/"+blogID, http.StatusFound)
}

// DeleteBlog is author-only and cascades to the blog's comments.
func (h *ForumHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	blogID := chi.URLParam(r, "blogID")

	err := h.forum.DeleteBlog(user.ID, blogID)
	switch {
	case err == nil:
		h.sessions.Flash(w, r, "The Blog was deleted.")
	case err == services.ErrUnauthorized:
		h.sessions.Flash(w, r, "You can't delete a blog you don't own.")
	case err == services.ErrBlogNotFound:
		http.NotFound(w, r)
		return
	default:
		log.Printf("[DeleteBlog] %s: %v", blogID, err)
		http.Error(w, "Failed to delete blog.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/blogs", http.StatusFound)
}

type commentFormView struct {
	Blog   *models.Blog
	Form   *models.CommentRequest
	Errors map[string]string
}

func (h *ForumHandler) NewComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	blogID := chi.URLParam(r, "blogID")

	blog, err := h.forum.GetBlog(blogID)
	if err != nil {
		if err == services.ErrBlogNotFound {
			http.NotFound(w, r)
			return
		}
		log.Printf("[NewComment] load blog %s: %v", blogID, err)
		http.Error(w, "Failed to load blog.", http.StatusInternalServerError)
		return
	}

	if r.Method == http.MethodGet {
		h.Render(w, r, http.StatusOK, "commentform", commentFormView{Blog: blog, Form: &models.CommentRequest{}})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission.", http.StatusBadRequest)
		return
	}

	req := &models.CommentRequest{Content: r.FormValue("content")}

	if errs := req.Validate(); len(errs) > 0 {
		h.Render(w, r, http.StatusOK, "commentform", commentFormView{Blog: blog, Form: req, Errors: errs})
		return
	}

	if _, err := h.forum.CreateComment(user.ID, user.GName, blogID, req); err != nil {
		log.Printf("[NewComment] create on %s: %v", blogID, err)
		http.Error(w, "Failed to save comment.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/blog/"+blogID, http.StatusFound)
}

func (h *ForumHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	commentID := chi.URLParam(r, "commentID")

	comment, err := h.forum.GetComment(commentID)
	if err != nil {
		if err == services.ErrCommentNotFound {
			http.NotFound(w, r)
			return
		}
		log.Printf("[EditComment] load %s: %v", commentID, err)
		http.Error(w, "Failed to load comment.", http.StatusInternalServerError)
		return
	}

	if comment.AuthorID != user.ID {
		h.sessions.Flash(w, r, "You can't edit a comment you didn't write.")
		http.Redirect(w, r, "/blog/"+comment.BlogID, http.StatusFound)
		return
	}

	blog, err := h.forum.GetBlog(comment.BlogID)
	if err != nil {
		log.Printf("[EditComment] load blog %s: %v", comment.BlogID, err)
		http.Error(w, "Failed to load blog.", http.StatusInternalServerError)
		return
	}

	if r.Method == http.MethodGet {
		form := &models.CommentRequest{Content: comment.Content}
		h.Render(w, r, http.StatusOK, "commentform", commentFormView{Blog: blog, Form: form})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission.", http.StatusBadRequest)
		return
	}

	req := &models.CommentRequest{Content: r.FormValue("content")}

	if errs := req.Validate(); len(errs) > 0 {
		h.Render(w, r, http.StatusOK, "commentform", commentFormView{Blog: blog, Form: req, Errors: errs})
		return
	}

	if _, err := h.forum.UpdateComment(user.ID, commentID, req); err != nil {
		if err == services.ErrUnauthorized {
			h.sessions.Flash(w, r, "You can't edit a comment you didn't write.")
			http.Redirect(w, r, "/blog/"+comment.BlogID, http.StatusFound)
			return
		}
		log.Printf("[EditComment] update %s: %v", commentID, err)
		http.Error(w, "Failed to update comment.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/blog/"+comment.BlogID, http.StatusFound)
}

// DeleteComment performs no ownership check; any logged-in member can
// remove a comment. Replies cascade.
func (h *ForumHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")

	comment, err := h.forum.DeleteComment(commentID)
	if err != nil {
		if err == services.ErrCommentNotFound {
			http.NotFound(w, r)
			return
		}
		log.Printf("[DeleteComment] %s: %v", commentID, err)
		http.Error(w, "Failed to delete comment.", http.StatusInternalServerError)
		return
	}

	h.sessions.Flash(w, r, "The comment was deleted.")
	http.Redirect(w, r, "/blog/"+comment.BlogID, http.StatusFound)
}
