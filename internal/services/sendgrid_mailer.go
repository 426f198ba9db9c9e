package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nightowl/sleepsite/internal/models"
)

type SendGridMailer struct {
	APIKey     string
	FromEmail  string
	ToEmail    string
	HTTPClient *http.Client
	Endpoint   string
}

// NewSendGridMailer builds the consent-notice mailer. toEmail is the site
// notification address copied on every notice.
func NewSendGridMailer(apiKey string, fromEmail string, toEmail string) *SendGridMailer {
	return &SendGridMailer{
		APIKey:    strings.TrimSpace(apiKey),
		FromEmail: strings.TrimSpace(fromEmail),
		ToEmail:   strings.TrimSpace(toEmail),
		Endpoint:  "https://api.sendgrid.com/v3/mail/send",
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendGridEmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPersonalization struct {
	To      []sendGridEmailAddress `json:"to"`
	Subject string                 `json:"subject"`
}

type sendGridMailSendRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridEmailAddress      `json:"from"`
	Content          []sendGridContent         `json:"content"`
}

// SendConsentNotice tells the guardian on record what the student chose.
// Failures are the caller's to log; consent itself is already saved.
func (m *SendGridMailer) SendConsentNotice(ctx context.Context, user *models.User) error {
	if m == nil {
		return fmt.Errorf("sendgrid mailer not configured")
	}
	if m.APIKey == "" {
		return fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if m.FromEmail == "" {
		return fmt.Errorf("missing NOTIFY_FROM_EMAIL")
	}
	if strings.TrimSpace(user.AdultEmail) == "" {
		return fmt.Errorf("user %s has no guardian email on record", user.ID)
	}

	choice := "declined"
	if user.Consent {
		choice = "granted"
	}

	subject := fmt.Sprintf("Sleep data consent %s for %s %s", choice, user.FirstName, user.LastName)
	plain := fmt.Sprintf(
		"Hello %s %s,\n\n%s %s (%s) has %s consent for sharing their sleep data on the class sleep site.\n",
		strings.TrimSpace(user.AdultFirstName),
		strings.TrimSpace(user.AdultLastName),
		user.FirstName, user.LastName, user.Email,
		choice,
	)

	to := []sendGridEmailAddress{{
		Email: strings.TrimSpace(user.AdultEmail),
		Name:  strings.TrimSpace(user.AdultFirstName + " " + user.AdultLastName),
	}}
	if m.ToEmail != "" {
		to = append(to, sendGridEmailAddress{Email: m.ToEmail})
	}

	reqBody := sendGridMailSendRequest{
		Personalizations: []sendGridPersonalization{
			{
				To:      to,
				Subject: subject,
			},
		},
		From: sendGridEmailAddress{
			Email: m.FromEmail,
			Name:  "Sleep Site",
		},
		Content: []sendGridContent{
			{Type: "text/plain", Value: plain},
		},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
