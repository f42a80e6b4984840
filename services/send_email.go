package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rs/zerolog/log"
)

const (
	MailerConsole = "console"
	MailerResend  = "resend"

	defaultResendEndpoint = "https://api.resend.com/emails"
)

// Email is a single outgoing message.
type Email struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers outgoing email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// NewMailerFromConfig picks the mailer named by MAILER (console by default).
func NewMailerFromConfig(c map[string]string) (Mailer, error) {
	switch kind := strings.ToLower(config.GetString(c, "MAILER", MailerConsole)); kind {
	case MailerConsole:
		return &ConsoleMailer{Out: os.Stdout}, nil
	case MailerResend:
		apiKey := config.GetString(c, "RESEND_API_KEY", "")
		if apiKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required when MAILER=resend")
		}
		from := config.GetString(c, "RESEND_FROM_EMAIL", "")
		if from == "" {
			return nil, fmt.Errorf("RESEND_FROM_EMAIL is required when MAILER=resend")
		}
		return NewResendMailer(apiKey, from), nil
	default:
		return nil, fmt.Errorf("unknown MAILER %q", kind)
	}
}

// PasswordResetEmail builds the message that carries a reset link.
func PasswordResetEmail(to, resetURL string) Email {
	var text strings.Builder
	text.WriteString("To reset your password, visit the following link:\n")
	text.WriteString(resetURL + "\n\n")
	text.WriteString("This link expires in 1 hour.\n")
	text.WriteString("If you did not make this request, simply ignore this email and no changes will be made.\n")

	return Email{
		To:      []string{to},
		Subject: "Password Reset Request",
		Text:    text.String(),
	}
}

// ConsoleMailer writes messages to Out instead of sending them.
type ConsoleMailer struct {
	Out io.Writer
}

func (m *ConsoleMailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintf(out, "\n===== EMAIL =====\nTo: %s\nSubject: %s\n\n%s=================\n",
		strings.Join(email.To, ", "), email.Subject, email.Text)
	return err
}

// resendEmailRequest represents the request payload for Resend API
type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	Message string `json:"message"`
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	apiKey   string
	from     string
	Endpoint string
	Client   *http.Client
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		apiKey:   apiKey,
		from:     from,
		Endpoint: defaultResendEndpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := resendEmailRequest{
		From:    m.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp resendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse resendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}

	return nil
}
