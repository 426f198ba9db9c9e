package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postMultipart submits the profile form, optionally with an avatar file.
func (env *testEnv) postMultipart(c *http.Client, path string, fields map[string]string, imageName string, imageData []byte) (*http.Response, string) {
	env.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(env.t, mw.WriteField(name, value))
	}
	if imageName != "" {
		part, err := mw.CreateFormFile("image", imageName)
		require.NoError(env.t, err)
		_, err = part.Write(imageData)
		require.NoError(env.t, err)
	}
	require.NoError(env.t, mw.Close())

	resp, err := c.Post(env.server.URL+path, mw.FormDataContentType(), &buf)
	require.NoError(env.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(env.t, err)
	return resp, string(body)
}

func TestMyProfileShowsProviderPicture(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	profile := studentProfile("Sam", "Ng", "sam.ng@ousd.org")
	profile.Picture = "https://lh3.example.org/photo.jpg"
	env.login(c, profile)

	resp, body := env.get(c, "/myprofile")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "https://lh3.example.org/photo.jpg")
	assert.Contains(t, body, "sam.ng@ousd.org")
	assert.Contains(t, body, "Not granted")
}

func TestEditProfileUpdatesNameAndPronouns(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))

	resp, _ := env.postMultipart(c, "/myprofile/edit", map[string]string{
		"fname":    "Samuel",
		"lname":    "Ng",
		"pronouns": "they/them",
	}, "", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/myprofile", resp.Header.Get("Location"))

	_, body := env.get(c, "/myprofile")
	assert.Contains(t, body, "Samuel Ng")
	assert.Contains(t, body, "they/them")
}

func TestEditProfileValidation(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))

	resp, body := env.postMultipart(c, "/myprofile/edit", map[string]string{
		"fname": "",
		"lname": "Ng",
	}, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "First name is required")
}

func TestEditProfileStoresAvatar(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	user := env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))

	avatar := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	resp, _ := env.postMultipart(c, "/myprofile/edit", map[string]string{
		"fname": "Sam",
		"lname": "Ng",
	}, "me.png", avatar)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	img, err := env.users.Image(user.ID)
	require.NoError(t, err)
	assert.Equal(t, avatar, img.Data)

	// The uploaded avatar replaces the provider picture on the page.
	_, body := env.get(c, "/myprofile")
	assert.Contains(t, body, "data:")
}

func TestConsentSaveAndPrefill(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	user := env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))

	resp, _ := env.postForm(c, "/consent", url.Values{
		"consent":     {"True"},
		"adult_fname": {"Pat"},
		"adult_lname": {"Ng"},
		"adult_email": {"pat.ng@example.org"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/myprofile", resp.Header.Get("Location"))

	updated, err := env.users.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, updated.Consent)
	assert.Equal(t, "pat.ng@example.org", updated.AdultEmail)

	_, body := env.get(c, "/myprofile")
	assert.Contains(t, body, "Granted")

	// The form comes back prefilled.
	resp, body = env.get(c, "/consent")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="pat.ng@example.org"`)
}

func TestConsentOnlyExactTrueCounts(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	user := env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))

	resp, _ := env.postForm(c, "/consent", url.Values{
		"consent":     {"true"},
		"adult_fname": {"Pat"},
		"adult_lname": {"Ng"},
		"adult_email": {"pat.ng@example.org"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	updated, err := env.users.GetByID(user.ID)
	require.NoError(t, err)
	assert.False(t, updated.Consent)
}

func TestConsentValidation(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	env.login(c, studentProfile("Sam", "Ng", "sam.ng@ousd.org"))

	resp, body := env.postForm(c, "/consent", url.Values{
		"consent":     {"True"},
		"adult_fname": {"Pat"},
		"adult_lname": {"Ng"},
		"adult_email": {"not-an-email"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "A valid email is required")
}
