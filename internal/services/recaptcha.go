package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrCaptchaRejected means the visitor's challenge token was refused.
var ErrCaptchaRejected = errors.New("captcha rejected")

// CaptchaVerifier checks the challenge token sent with the public contact
// form. A refused token is reported as ErrCaptchaRejected; any other error
// means the check itself could not run.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

const (
	recaptchaEndpoint = "https://www.google.com/recaptcha/api/siteverify"
	recaptchaTimeout  = 8 * time.Second
)

// RecaptchaVerifier checks tokens against Google's siteverify API. With a
// hostname allow-list the token must also have been solved on one of those
// sites.
type RecaptchaVerifier struct {
	secret    string
	hostnames map[string]struct{}
	endpoint  string
	client    *http.Client
}

type siteverifyResult struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

func NewRecaptchaVerifier(secret string, hostnames ...string) *RecaptchaVerifier {
	v := &RecaptchaVerifier{
		secret:    strings.TrimSpace(secret),
		hostnames: make(map[string]struct{}),
		endpoint:  recaptchaEndpoint,
		client:    &http.Client{Timeout: recaptchaTimeout},
	}
	for _, h := range hostnames {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			v.hostnames[h] = struct{}{}
		}
	}
	return v
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: missing token", ErrCaptchaRejected)
	}

	form := url.Values{"secret": {v.secret}, "response": {token}}
	if ip := strings.TrimSpace(remoteIP); ip != "" {
		form.Set("remoteip", ip)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("recaptcha: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("recaptcha: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recaptcha: siteverify status %d", resp.StatusCode)
	}

	var res siteverifyResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("recaptcha: decode: %w", err)
	}

	if !res.Success {
		reason := "verification failed"
		if len(res.ErrorCodes) > 0 {
			reason = strings.Join(res.ErrorCodes, ",")
		}
		// Secret problems are ours, not the visitor's.
		if secretMisconfigured(res.ErrorCodes) {
			return fmt.Errorf("recaptcha: %s", reason)
		}
		return fmt.Errorf("%w: %s", ErrCaptchaRejected, reason)
	}
	if len(v.hostnames) > 0 {
		if _, ok := v.hostnames[strings.ToLower(res.Hostname)]; !ok {
			return fmt.Errorf("%w: solved on %q", ErrCaptchaRejected, res.Hostname)
		}
	}
	return nil
}

func secretMisconfigured(codes []string) bool {
	for _, c := range codes {
		if c == "missing-input-secret" || c == "invalid-input-secret" {
			return true
		}
	}
	return false
}
