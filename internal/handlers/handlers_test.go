package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	appmw "github.com/nightowl/sleepsite/internal/middleware"
	"github.com/nightowl/sleepsite/internal/models"
	"github.com/nightowl/sleepsite/internal/services"
	"github.com/nightowl/sleepsite/internal/session"
)

// fakeOAuth stands in for the identity provider so handler tests can sign
// users in without a network round trip.
type fakeOAuth struct {
	profile *models.GoogleProfile
	err     error
}

func (f *fakeOAuth) AuthCodeURL(_ context.Context, redirectURI string) (string, error) {
	return "https://id.example.org/auth?redirect_uri=" + url.QueryEscape(redirectURI), nil
}

func (f *fakeOAuth) Exchange(_ context.Context, _, _ string) (*models.GoogleProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type testEnv struct {
	t         *testing.T
	users     *services.UserService
	sleeps    *services.SleepService
	forum     *services.ForumService
	sessions  *session.Manager
	oauth     *fakeOAuth
	chartPath string
	server    *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		t:         t,
		users:     services.NewUserService(),
		sleeps:    services.NewSleepService(),
		forum:     services.NewForumService(),
		sessions:  session.NewManager("test-secret"),
		oauth:     &fakeOAuth{},
		chartPath: filepath.Join(t.TempDir(), "graphs", "sleep.png"),
	}

	chart := services.NewChartService(env.chartPath)

	renderer := NewRenderer(env.sessions)
	authHandler := NewAuthHandler(renderer, env.oauth, env.users, env.sessions)
	profileHandler := NewProfileHandler(renderer, env.users, nil, env.sessions)
	sleepHandler := NewSleepHandler(renderer, env.sleeps, chart, "/static/graphs/sleep.png", env.sessions)
	forumHandler := NewForumHandler(renderer, env.forum, env.sessions)

	r := chi.NewRouter()
	r.Get("/", authHandler.Home)
	r.Get("/overview", authHandler.Overview)
	r.Get("/login", authHandler.Login)
	r.Get("/login/callback", authHandler.Callback)

	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireLogin(env.sessions, env.users))

		r.Get("/logout", authHandler.Logout)

		r.Get("/myprofile", profileHandler.MyProfile)
		r.Get("/myprofile/edit", profileHandler.EditProfile)
		r.Post("/myprofile/edit", profileHandler.EditProfile)
		r.Get("/consent", profileHandler.Consent)
		r.Post("/consent", profileHandler.Consent)

		r.Get("/sleep/new", sleepHandler.New)
		r.Post("/sleep/new", sleepHandler.New)
		r.Get("/sleep/edit/{sleepID}", sleepHandler.Edit)
		r.Post("/sleep/edit/{sleepID}", sleepHandler.Edit)
		r.Get("/sleep/delete/{sleepID}", sleepHandler.Delete)
		r.Get("/sleep/{sleepID}", sleepHandler.Show)
		r.Get("/sleeps", sleepHandler.List)
		r.Get("/sleepgraph", sleepHandler.Graph)

		r.Get("/blogs", forumHandler.ListBlogs)
		r.Get("/blog/new", forumHandler.NewBlog)
		r.Post("/blog/new", forumHandler.NewBlog)
		r.Get("/blog/edit/{blogID}", forumHandler.EditBlog)
		r.Post("/blog/edit/{blogID}", forumHandler.EditBlog)
		r.Get("/blog/delete/{blogID}", forumHandler.DeleteBlog)
		r.Get("/blog/{blogID}", forumHandler.ShowBlog)

		r.Get("/comment/new/{blogID}", forumHandler.NewComment)
		r.Post("/comment/new/{blogID}", forumHandler.NewComment)
		r.Get("/comment/edit/{commentID}", forumHandler.EditComment)
		r.Post("/comment/edit/{commentID}", forumHandler.EditComment)
		r.Get("/comment/delete/{commentID}", forumHandler.DeleteComment)
	})

	env.server = httptest.NewServer(r)
	t.Cleanup(env.server.Close)
	return env
}

// client returns a browser stand-in: its own cookie jar, no automatic
// redirect following so tests can assert on the 302s themselves.
func (env *testEnv) client() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(env.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func studentProfile(given, family, email string) *models.GoogleProfile {
	return &models.GoogleProfile{
		Sub:           "sub-" + email,
		Name:          given + " " + family,
		GivenName:     given,
		FamilyName:    family,
		Email:         email,
		EmailVerified: true,
		HostedDomain:  "ousd.org",
	}
}

// login drives the callback with the fake provider set to the given
// profile and returns the stored user. The client's jar keeps the session.
func (env *testEnv) login(c *http.Client, profile *models.GoogleProfile) *models.User {
	env.t.Helper()

	env.oauth.profile = profile
	env.oauth.err = nil

	resp, err := c.Get(env.server.URL + "/login/callback?code=test-code")
	require.NoError(env.t, err)
	resp.Body.Close()
	require.Equal(env.t, http.StatusFound, resp.StatusCode)
	require.Equal(env.t, "/myprofile", resp.Header.Get("Location"))

	user, err := env.users.GetByEmail(profile.Email)
	require.NoError(env.t, err)
	return user
}

func (env *testEnv) get(c *http.Client, path string) (*http.Response, string) {
	env.t.Helper()

	resp, err := c.Get(env.server.URL + path)
	require.NoError(env.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(env.t, err)
	return resp, string(body)
}

func (env *testEnv) postForm(c *http.Client, path string, form url.Values) (*http.Response, string) {
	env.t.Helper()

	resp, err := c.Post(env.server.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(env.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(env.t, err)
	return resp, string(body)
}

func sleepForm(sleepDate, startTime, wakeDate, endTime, rating, feel, minsToSleep string) url.Values {
	return url.Values{
		"sleep_date":  {sleepDate},
		"starttime":   {startTime},
		"wake_date":   {wakeDate},
		"endtime":     {endTime},
		"rating":      {rating},
		"feel":        {feel},
		"minstosleep": {minsToSleep},
	}
}
