package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightowl/sleepsite/internal/services"
)

func blogForm(subject, content, tag string) url.Values {
	return url.Values{
		"subject": {subject},
		"content": {content},
		"tag":     {tag},
	}
}

// createBlog posts a new blog as the given client and returns its id.
func createBlog(t *testing.T, env *testEnv, c *http.Client, subject string) string {
	t.Helper()

	resp, _ := env.postForm(c, "/blog/new", blogForm(subject, "Some thoughts about sleep.", "sleep"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/blog/"))
	return strings.TrimPrefix(location, "/blog/")
}

func TestCreateBlogAndList(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))

	blogID := createBlog(t, env, c, "Why naps help")

	resp, body := env.get(c, "/blog/"+blogID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Why naps help")
	assert.Contains(t, body, "by Sam Ng")
	assert.Contains(t, body, "No comments yet.")

	_, body = env.get(c, "/blogs")
	assert.Contains(t, body, "Why naps help")
}

func TestNewBlogValidation(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))

	resp, body := env.postForm(c, "/blog/new", blogForm("", "content", "tag"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Subject is required")

	blogs, err := env.forum.ListBlogs()
	require.NoError(t, err)
	assert.Empty(t, blogs)
}

func TestEditBlogNotOwner(t *testing.T) {
	env := newTestEnv(t)

	owner := env.client()
	env.login(owner, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))
	blogID := createBlog(t, env, owner, "Why naps help")

	other := env.client()
	env.login(other, studentProfile("Ana", "Cruz", "ana.cruz@ousd.org"))

	resp, _ := env.get(other, "/blog/edit/"+blogID)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/blog/"+blogID, resp.Header.Get("Location"))

	_, body := env.get(other, "/blog/"+blogID)
	assert.Contains(t, body, "You can&#39;t edit a blog you don&#39;t own.")
}

func TestEditBlogUpdatesFields(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))
	blogID := createBlog(t, env, c, "Why naps help")

	// Edit form is prefilled with the stored blog.
	resp, body := env.get(c, "/blog/edit/"+blogID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Why naps help"`)

	resp, _ = env.postForm(c, "/blog/edit/"+blogID, blogForm("Why naps really help", "Updated text.", "naps"))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	_, body = env.get(c, "/blog/"+blogID)
	assert.Contains(t, body, "Why naps really help")
	assert.Contains(t, body, "Updated text.")
	assert.Contains(t, body, "tagged naps")
}

func TestDeleteBlogNotOwner(t *testing.T) {
	env := newTestEnv(t)

	owner := env.client()
	env.login(owner, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))
	blogID := createBlog(t, env, owner, "Why naps help")

	other := env.client()
	env.login(other, studentProfile("Ana", "Cruz", "ana.cruz@ousd.org"))

	resp, _ := env.get(other, "/blog/delete/"+blogID)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/blogs", resp.Header.Get("Location"))

	_, body := env.get(other, "/blogs")
	assert.Contains(t, body, "You can&#39;t delete a blog you don&#39;t own.")

	// The blog survives.
	_, err := env.forum.GetBlog(blogID)
	assert.NoError(t, err)
}

func TestDeleteBlogCascadesComments(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))
	blogID := createBlog(t, env, c, "Why naps help")

	resp, _ := env.postForm(c, "/comment/new/"+blogID, url.Values{"content": {"Agreed!"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, _ = env.get(c, "/blog/delete/"+blogID)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	_, body := env.get(c, "/blogs")
	assert.Contains(t, body, "The Blog was deleted.")

	_, err := env.forum.GetBlog(blogID)
	assert.ErrorIs(t, err, services.ErrBlogNotFound)
	comments, err := env.forum.ListComments(blogID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))
	blogID := createBlog(t, env, c, "Why naps help")

	// The comment form shows which blog it targets.
	resp, body := env.get(c, "/comment/new/"+blogID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Why naps help")

	resp, _ = env.postForm(c, "/comment/new/"+blogID, url.Values{"content": {"Agreed, naps are great."}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/blog/"+blogID, resp.Header.Get("Location"))

	_, body = env.get(c, "/blog/"+blogID)
	assert.Contains(t, body, "Agreed, naps are great.")
	assert.NotContains(t, body, "No comments yet.")
}

func TestCommentOnMissingBlogIs404(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))

	resp, _ := env.postForm(c, "/comment/new/no-such-blog", url.Values{"content": {"hello"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEditCommentNotAuthor(t *testing.T) {
	env := newTestEnv(t)

	author := env.client()
	env.login(author, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))
	blogID := createBlog(t, env, author, "Why naps help")
	env.postForm(author, "/comment/new/"+blogID, url.Values{"content": {"Agreed!"}})

	comments, err := env.forum.ListComments(blogID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	commentID := comments[0].ID

	other := env.client()
	env.login(other, studentProfile("Ana", "Cruz", "ana.cruz@ousd.org"))

	resp, _ := env.get(other, "/comment/edit/"+commentID)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/blog/"+blogID, resp.Header.Get("Location"))

	_, body := env.get(other, "/blog/"+blogID)
	assert.Contains(t, body, "You can&#39;t edit a comment you didn&#39;t write.")
}

func TestDeleteCommentSkipsOwnershipCheck(t *testing.T) {
	env := newTestEnv(t)

	author := env.client()
	env.login(author, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))
	blogID := createBlog(t, env, author, "Why naps help")
	env.postForm(author, "/comment/new/"+blogID, url.Values{"content": {"Agreed!"}})

	comments, err := env.forum.ListComments(blogID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	// A different logged-in user can delete the comment.
	other := env.client()
	env.login(other, studentProfile("Ana", "Cruz", "ana.cruz@ousd.org"))

	resp, _ := env.get(other, "/comment/delete/"+comments[0].ID)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/blog/"+blogID, resp.Header.Get("Location"))

	_, body := env.get(other, "/blog/"+blogID)
	assert.Contains(t, body, "The comment was deleted.")

	remaining, err := env.forum.ListComments(blogID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
