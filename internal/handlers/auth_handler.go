package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/nightowl/sleepsite/internal/services"
	"github.com/nightowl/sleepsite/internal/session"
)

type AuthHandler struct {
	*Renderer
	oauth    services.OAuthProvider
	users    services.UserStore
	sessions *session.Manager
}

func NewAuthHandler(renderer *Renderer, oauth services.OAuthProvider, users services.UserStore, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		Renderer: renderer,
		oauth:    oauth,
		users:    users,
		sessions: sessions,
	}
}

// Home is the landing page and the place flash notices surface for
// anonymous visitors.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "home", nil)
}

func (h *AuthHandler) Overview(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusOK, "overview", nil)
}

// Login begins the handshake: discover the provider endpoints and bounce
// the browser to the authorization URL.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.oauth.AuthCodeURL(r.Context(), h.callbackURL(r))
	if err != nil {
		log.Printf("[Login] provider discovery failed: %v", err)
		http.Error(w, "Login is unavailable right now.", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the handshake. Rejections (unverified email, wrong
// hosted domain) end the flow with a 400 and touch no user record.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code.", http.StatusBadRequest)
		return
	}

	profile, err := h.oauth.Exchange(r.Context(), h.callbackURL(r), code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailNotVerified):
			http.Error(w, "User email not available or not verified by Google.", http.StatusBadRequest)
		case errors.Is(err, services.ErrDomainNotAllowed):
			http.Error(w, "You must have an allowed email account to access this site.", http.StatusBadRequest)
		default:
			log.Printf("[Callback] exchange failed: %v", err)
			http.Error(w, "Login failed.", http.StatusBadRequest)
		}
		return
	}

	user, err := h.users.UpsertByEmail(profile)
	if err != nil {
		log.Printf("[Callback] upsert user %s: %v", profile.Email, err)
		http.Error(w, "Login failed.", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SignIn(w, r, user.ID); err != nil {
		log.Printf("[Callback] sign in %s: %v", user.ID, err)
		http.Error(w, "Login failed.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/myprofile", http.StatusFound)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		log.Printf("[Logout] %v", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/login/callback"
}
