package models

import (
	"strings"
	"time"
)

// User is a community member. Google identity fields (GID, GName,
// GProfilePic) are refreshed on every login; the rest are user-edited.
type User struct {
	ID          string    `json:"id"`
	GID         string    `json:"gid"`
	GName       string    `json:"gname"`
	GProfilePic string    `json:"gprofile_pic"`
	FirstName   string    `json:"fname"`
	LastName    string    `json:"lname"`
	Email       string    `json:"email"`
	Pronouns    string    `json:"pronouns"`

	Consent        bool   `json:"consent"`
	AdultFirstName string `json:"adult_fname"`
	AdultLastName  string `json:"adult_lname"`
	AdultEmail     string `json:"adult_email"`

	CreatedAt time.Time `json:"created_at"`
}

// GoogleProfile holds the verified claims returned by the provider's
// userinfo endpoint.
type GoogleProfile struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	HostedDomain  string `json:"hd"`
}

// UserImage is an uploaded avatar stored alongside the user record.
type UserImage struct {
	Data        []byte `json:"-"`
	ContentType string `json:"content_type"`
}

type ProfileRequest struct {
	FirstName string
	LastName  string
	Pronouns  string

	// Optional replacement avatar. Empty means keep the current one.
	Image            []byte
	ImageContentType string
}

func (r *ProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.FirstName) == "" {
		errors["fname"] = "First name is required"
	}
	if strings.TrimSpace(r.LastName) == "" {
		errors["lname"] = "Last name is required"
	}

	return errors
}

type ConsentRequest struct {
	// Consent arrives as the raw radio value from the form.
	Consent        string
	AdultFirstName string
	AdultLastName  string
	AdultEmail     string
}

func (r *ConsentRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.AdultFirstName) == "" {
		errors["adult_fname"] = "First name is required"
	}
	if strings.TrimSpace(r.AdultLastName) == "" {
		errors["adult_lname"] = "Last name is required"
	}
	if !strings.Contains(r.AdultEmail, "@") {
		errors["adult_email"] = "A valid email is required"
	}

	return errors
}

// ConsentValue normalizes the radio choice. Only the exact literal "True"
// counts as consent; anything else, malformed input included, is false.
func (r *ConsentRequest) ConsentValue() bool {
	return r.Consent == "True"
}
