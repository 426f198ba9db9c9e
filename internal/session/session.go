// Package session binds the logged-in user to a browser cookie and carries
// one-time flash notices between requests.
package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "sleepsite_session"
	userIDKey   = "user_id"
)

type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret string) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, sessionName)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// UserID returns the bound user id, or "" for anonymous requests.
func (m *Manager) UserID(r *http.Request) string {
	sess, _ := m.store.Get(r, sessionName)
	id, _ := sess.Values[userIDKey].(string)
	return id
}

// Flash queues a one-time notice for the next rendered page.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, message string) {
	sess, _ := m.store.Get(r, sessionName)
	sess.AddFlash(message)
	_ = sess.Save(r, w)
}

// Flashes pops all queued notices. Reading clears them.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	sess, _ := m.store.Get(r, sessionName)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w)

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}
