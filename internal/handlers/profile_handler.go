package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/nightowl/sleepsite/internal/middleware"
	"github.com/nightowl/sleepsite/internal/models"
	"github.com/nightowl/sleepsite/internal/services"
	"github.com/nightowl/sleepsite/internal/session"
)

const maxAvatarBytes = 10 << 20

type ProfileHandler struct {
	*Renderer
	users    services.UserStore
	mailer   *services.SendGridMailer
	sessions *session.Manager
}

func NewProfileHandler(renderer *Renderer, users services.UserStore, mailer *services.SendGridMailer, sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{
		Renderer: renderer,
		users:    users,
		mailer:   mailer,
		sessions: sessions,
	}
}

type profileView struct {
	Image *models.UserImage
}

func (h *ProfileHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	img, err := h.users.Image(user.ID)
	if err != nil && err != services.ErrImageNotFound {
		log.Printf("[MyProfile] load image for %s: %v", user.ID, err)
	}

	h.Render(w, r, http.StatusOK, "profile", profileView{Image: img})
}

type profileFormView struct {
	Form   *models.ProfileRequest
	Errors map[string]string
}

func (h *ProfileHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if r.Method == http.MethodGet {
		// Prefill with the current record.
		form := &models.ProfileRequest{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Pronouns:  user.Pronouns,
		}
		h.Render(w, r, http.StatusOK, "profileform", profileFormView{Form: form})
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		http.Error(w, "Invalid form submission.", http.StatusBadRequest)
		return
	}

	req := &models.ProfileRequest{
		FirstName: r.FormValue("fname"),
		LastName:  r.FormValue("lname"),
		Pronouns:  r.FormValue("pronouns"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
		if err != nil {
			http.Error(w, "Failed to read uploaded image.", http.StatusBadRequest)
			return
		}
		req.Image = data
		req.ImageContentType = header.Header.Get("Content-Type")
		if req.ImageContentType == "" {
			req.ImageContentType = "image/jpeg"
		}
	}

	if errs := req.Validate(); len(errs) > 0 {
		h.Render(w, r, http.StatusOK, "profileform", profileFormView{Form: req, Errors: errs})
		return
	}

	if err := h.users.UpdateProfile(user.ID, req); err != nil {
		log.Printf("[EditProfile] update %s: %v", user.ID, err)
		http.Error(w, "Failed to update profile.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/myprofile", http.StatusFound)
}

type consentFormView struct {
	Form   *models.ConsentRequest
	Errors map[string]string
}

func (h *ProfileHandler) Consent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if r.Method == http.MethodGet {
		consent := "False"
		if user.Consent {
			consent = "True"
		}
		form := &models.ConsentRequest{
			Consent:        consent,
			AdultFirstName: user.AdultFirstName,
			AdultLastName:  user.AdultLastName,
			AdultEmail:     user.AdultEmail,
		}
		h.Render(w, r, http.StatusOK, "consentform", consentFormView{Form: form})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission.", http.StatusBadRequest)
		return
	}

	req := &models.ConsentRequest{
		Consent:        r.FormValue("consent"),
		AdultFirstName: r.FormValue("adult_fname"),
		AdultLastName:  r.FormValue("adult_lname"),
		AdultEmail:     r.FormValue("adult_email"),
	}

	if errs := req.Validate(); len(errs) > 0 {
		h.Render(w, r, http.StatusOK, "consentform", consentFormView{Form: req, Errors: errs})
		return
	}

	if err := h.users.UpdateConsent(user.ID, req); err != nil {
		log.Printf("[Consent] update %s: %v", user.ID, err)
		http.Error(w, "Failed to save consent.", http.StatusInternalServerError)
		return
	}

	// Best effort. The guardian notice failing should not fail the save.
	if h.mailer != nil {
		updated, err := h.users.GetByID(user.ID)
		if err == nil {
			if err := h.mailer.SendConsentNotice(r.Context(), updated); err != nil {
				log.Printf("[Consent] notice for %s: %v", user.ID, err)
			}
		}
	}

	http.Redirect(w, r, "/myprofile", http.StatusFound)
}
