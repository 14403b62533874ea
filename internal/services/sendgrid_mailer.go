package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bengalmatrimony/backend/internal/models"
)

// MessageForwarder delivers a stored contact message to the site team.
type MessageForwarder interface {
	ForwardContactMessage(ctx context.Context, m *models.ContactMessage) error
}

// SendGridMailer sends through the SendGrid v3 mail/send API.
type SendGridMailer struct {
	APIKey     string
	FromEmail  string
	ToEmail    string
	HTTPClient *http.Client
	Endpoint   string
}

func NewSendGridMailer(apiKey, fromEmail, toEmail string) *SendGridMailer {
	return &SendGridMailer{
		APIKey:     strings.TrimSpace(apiKey),
		FromEmail:  strings.TrimSpace(fromEmail),
		ToEmail:    strings.TrimSpace(toEmail),
		Endpoint:   "https://api.sendgrid.com/v3/mail/send",
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
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
	To         []sendGridEmailAddress `json:"to"`
	Subject    string                 `json:"subject"`
	CustomArgs map[string]string      `json:"custom_args,omitempty"`
}

type sendGridMailSendRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridEmailAddress      `json:"from"`
	ReplyTo          *sendGridEmailAddress     `json:"reply_to,omitempty"`
	Content          []sendGridContent         `json:"content"`
}

func (m *SendGridMailer) ForwardContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	switch {
	case m.APIKey == "":
		return fmt.Errorf("missing SENDGRID_API_KEY")
	case m.FromEmail == "":
		return fmt.Errorf("missing SUPPORT_FROM_EMAIL")
	case m.ToEmail == "":
		return fmt.Errorf("missing SUPPORT_TO_EMAIL")
	}

	plain := fmt.Sprintf(
		"Contact message %s\nFrom: %s <%s>\nDate: %s\n\n%s\n",
		msg.ID,
		msg.Name,
		msg.Email,
		msg.Date.Format(time.RFC1123),
		msg.Message,
	)

	reqBody := sendGridMailSendRequest{
		Personalizations: []sendGridPersonalization{{
			To:         []sendGridEmailAddress{{Email: m.ToEmail}},
			Subject:    "New contact message from " + msg.Name,
			CustomArgs: map[string]string{"messageId": msg.ID},
		}},
		From:    sendGridEmailAddress{Email: m.FromEmail, Name: "Bengal Matrimony Contact Form"},
		ReplyTo: &sendGridEmailAddress{Email: msg.Email, Name: msg.Name},
		Content: []sendGridContent{{Type: "text/plain", Value: plain}},
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

	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// SendGrid returns 202 Accepted on success.
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sendgrid mail send http %d", resp.StatusCode)
	}
	return nil
}
