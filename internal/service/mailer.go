package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// Mailer delivers password-reset codes.
type Mailer interface {
	SendOTP(ctx context.Context, to, username, code string) error
}

const (
	brevoEndpoint = "https://api.brevo.com/v3/smtp/email"
	brevoTimeout  = 10 * time.Second
)

// BrevoMailer sends transactional email through the Brevo HTTP API.
type BrevoMailer struct {
	apiKey    string
	fromName  string
	fromEmail string
	codeTTL   time.Duration
	endpoint  string
	timeout   time.Duration
	client    *fasthttp.Client
}

func NewBrevoMailer(apiKey, fromName, fromEmail string, codeTTL time.Duration) *BrevoMailer {
	return &BrevoMailer{
		apiKey:    apiKey,
		fromName:  fromName,
		fromEmail: fromEmail,
		codeTTL:   codeTTL,
		endpoint:  brevoEndpoint,
		timeout:   brevoTimeout,
		client: &fasthttp.Client{
			ReadTimeout:  brevoTimeout,
			WriteTimeout: brevoTimeout,
		},
	}
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoMessage struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	TextContent string         `json:"textContent"`
}

var otpEmail = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; background: #000; color: #fff;">
<div style="max-width: 600px; margin: 0 auto; padding: 32px;">
<h1 style="letter-spacing: 3px;">{{.App}}</h1>
<p>Hello {{.Username}},</p>
<p>Use this code to reset your password:</p>
<p style="font-size: 36px; font-weight: bold; letter-spacing: 8px;">{{.Code}}</p>
<p>The code expires in {{.Minutes}} minutes. If you did not request a reset, ignore this email.</p>
</div></body></html>`))

func (b *BrevoMailer) SendOTP(ctx context.Context, to, username, code string) error {
	minutes := int(b.codeTTL.Minutes())
	var html bytes.Buffer
	err := otpEmail.Execute(&html, map[string]any{
		"App": b.fromName, "Username": username, "Code": code, "Minutes": minutes,
	})
	if err != nil {
		return err
	}

	body, err := json.Marshal(brevoMessage{
		Sender:      brevoContact{Name: b.fromName, Email: b.fromEmail},
		To:          []brevoContact{{Name: username, Email: to}},
		Subject:     "Password Reset OTP - " + b.fromName,
		HTMLContent: html.String(),
		TextContent: fmt.Sprintf("Your %s password reset code is %s. It expires in %d minutes.", b.fromName, code, minutes),
	})
	if err != nil {
		return err
	}

	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(b.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", b.apiKey)
	req.SetBody(body)

	if err := b.client.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	if status := resp.StatusCode(); status >= 300 {
		msg := resp.Body()
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return fmt.Errorf("brevo returned %d: %s", status, bytes.TrimSpace(msg))
	}
	log.Info().Str("to_domain", emailDomain(to)).Msg("otp email sent")
	return nil
}

// LogMailer logs codes instead of sending them. Used when no email provider
// is configured.
type LogMailer struct{}

func (LogMailer) SendOTP(_ context.Context, to, username, code string) error {
	log.Warn().Str("to", to).Str("username", username).Str("code", code).Msg("email disabled, logging otp")
	return nil
}

func emailDomain(email string) string {
	for i := len(email) - 1; i >= 0; i-- {
		if email[i] == '@' {
			return email[i+1:]
		}
	}
	return ""
}
