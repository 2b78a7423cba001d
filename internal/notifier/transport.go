package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"auction-service/utils"
)

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// sendEmail posts a message to the Resend API.
func (n *EmailSMSNotifier) sendEmail(ctx context.Context, to, subject, html string) error {
	if n.cfg.ResendAPIKey == "" {
		utils.Warn("email credentials not configured, skipping email", map[string]any{"subject": subject})
		return nil
	}

	payload, err := json.Marshal(resendRequest{
		From:    n.cfg.EmailFrom,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.ResendAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("send email: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// sendSMS posts a message to the Twilio API. Missing credentials skip
// the send with a warning, mirroring the storefront's behavior.
func (n *EmailSMSNotifier) sendSMS(ctx context.Context, to, body string) error {
	if n.cfg.TwilioAccountSID == "" || n.cfg.TwilioAuthToken == "" || n.cfg.TwilioPhoneNumber == "" {
		utils.Warn("twilio credentials not configured, skipping SMS", nil)
		return nil
	}

	normalized := normalizePhone(to)
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioBaseURL, n.cfg.TwilioAccountSID)

	form := url.Values{}
	form.Set("To", normalized)
	form.Set("From", n.cfg.TwilioPhoneNumber)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build SMS request: %w", err)
	}
	req.SetBasicAuth(n.cfg.TwilioAccountSID, n.cfg.TwilioAuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("send SMS: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	utils.Info("SMS sent", map[string]any{"to": maskPhone(normalized)})
	return nil
}
