package middleware

import (
	"context"
	"net/http"

	"github.com/nightowl/sleepsite/internal/models"
	"github.com/nightowl/sleepsite/internal/services"
	"github.com/nightowl/sleepsite/internal/session"
)

type contextKey string

const UserKey contextKey = "user"

// RequireLogin gates a route group on a live session. Anonymous requests
// are bounced home with a notice instead of a hard 401; a session whose
// user has vanished from the store gets the same treatment.
func RequireLogin(sessions *session.Manager, users services.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sessions.UserID(r)
			if userID == "" {
				sessions.Flash(w, r, "You must be logged in to access that content.")
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			user, err := users.GetByID(userID)
			if err != nil {
				sessions.Flash(w, r, "Something strange has happened. This user doesn't exist. Please click logout.")
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the logged-in user placed in context by RequireLogin.
func GetUser(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
